package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/central-university-dev/go-hhh-bot/internal/domain/models"
)

func TestParseCommand(t *testing.T) {
	cmd, ok := models.ParseCommand("/Mute@hhh_bot  Петя 5 спам в чате")
	require.True(t, ok)

	assert.Equal(t, "mute", cmd.Name)
	assert.Equal(t, "Петя", cmd.Arg(0))
	assert.Equal(t, "5", cmd.Arg(1))
	assert.Equal(t, "спам в чате", cmd.Rest(2))
	assert.Equal(t, "", cmd.Arg(10))
	assert.Equal(t, "", cmd.Rest(10))
}

func TestParseCommand_NotACommand(t *testing.T) {
	for _, text := range []string{"", "привет", "/", "/@bot"} {
		_, ok := models.ParseCommand(text)
		assert.False(t, ok, text)
	}
}
