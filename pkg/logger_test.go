package pkg_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/central-university-dev/go-hhh-bot/pkg"
)

const token = "bot8462697481:AAEJSXuTcb2F1Js2sWiK0TVWvxbHL9xX05Q"

func TestNewLogger_MasksToken(t *testing.T) {
	tests := []struct {
		name string
		log  func(logger *slog.Logger)
	}{
		{
			name: "сообщение",
			log: func(logger *slog.Logger) {
				logger.Info("Post https://api.telegram.org/" + token + "/getUpdates")
			},
		},
		{
			name: "строковый атрибут",
			log: func(logger *slog.Logger) {
				logger.Info("запрос", "url", "https://api.telegram.org/"+token+"/getMe")
			},
		},
		{
			name: "ошибка",
			log: func(logger *slog.Logger) {
				logger.Error("сбой", "error", errors.New("Get \"https://api.telegram.org/"+token+"\": timeout"))
			},
		},
		{
			name: "группа",
			log: func(logger *slog.Logger) {
				logger.Info("запрос", slog.Group("http", slog.String("url", token)))
			},
		},
		{
			name: "With",
			log: func(logger *slog.Logger) {
				logger.With("token", token).Info("старт")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			tt.log(pkg.NewLogger(&buf, "info"))

			assert.NotContains(t, buf.String(), "AAEJSXuTcb2F1Js2sWiK0TVWvxbHL9xX05Q")
			assert.Contains(t, buf.String(), "bot***:***")
		})
	}
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer

	logger := pkg.NewLogger(&buf, "warn")
	logger.Info("не попадёт")
	logger.Warn("попадёт")

	assert.NotContains(t, buf.String(), "не попадёт")
	assert.Contains(t, buf.String(), "попадёт")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, pkg.ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, pkg.ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, pkg.ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, pkg.ParseLevel(""))
}

func TestBotLogger(t *testing.T) {
	var buf bytes.Buffer

	bl := pkg.NewBotLogger(pkg.NewLogger(&buf, "debug"))
	bl.Printf("Endpoint: %s", "https://api.telegram.org/"+token+"/getMe")
	bl.Println("ответ", 200)

	out := buf.String()
	assert.Contains(t, out, "telegram-bot-api")
	assert.Contains(t, out, "ответ 200")
	assert.NotContains(t, out, "AAEJSXuTcb2F1Js2sWiK0TVWvxbHL9xX05Q")
}
