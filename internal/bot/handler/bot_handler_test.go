package handler_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/central-university-dev/go-hhh-bot/internal/bot/domain"
	"github.com/central-university-dev/go-hhh-bot/internal/bot/handler"
)

func TestBotHandler_RoutesCommandsAndEvents(t *testing.T) {
	e := newEnv(t)

	var handled []string

	record := func(name string) handler.HandlerFunc {
		return func(context.Context, *domain.Request) error {
			handled = append(handled, name)
			return nil
		}
	}

	h := handler.NewBotHandler(e.mw,
		[]handler.Route{{Command: "status", Handler: record("status")}},
		map[domain.EventKind]handler.EventRoute{
			domain.EventNewTitle: {Handler: record("new_title")},
		},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)

	e.store.On("Write", mock.Anything, e.reg).Return(nil).Times(4)

	require.NoError(t, h.HandleEvent(context.Background(), groupCommand("status")))

	unknown := groupCommand("start")
	require.NoError(t, h.HandleEvent(context.Background(), unknown))
	assert.Equal(t, domain.EventUnknownCommand, unknown.Kind)

	titled := groupCommand("")
	titled.Kind = domain.EventNewTitle
	titled.NewTitle = "Golang"
	require.NoError(t, h.HandleEvent(context.Background(), titled))

	plain := groupCommand("")
	plain.Kind = domain.EventMessage
	plain.MessageID = 12
	require.NoError(t, h.HandleEvent(context.Background(), plain))

	assert.Equal(t, []string{"status", "new_title"}, handled)

	chat, ok := e.reg.Chat(groupID)
	require.True(t, ok)

	user, ok := chat.User(senderID)
	require.True(t, ok)
	assert.Equal(t, []int{11, 11, 11, 12}, user.Messages())
}
