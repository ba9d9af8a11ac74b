package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-faster/errors"

	"github.com/central-university-dev/go-hhh-bot/internal/bot/repository"
	"github.com/central-university-dev/go-hhh-bot/internal/domain/models"
)

var ErrQueueNotDrained = errors.New("очередь задач не завершилась, состояние не сохранено")

// State owns the in-memory registry and its backing store. It is only touched
// from the worker goroutine.
type State struct {
	reg    *models.Registry
	store  repository.StateStore
	logger *slog.Logger
}

func NewState(reg *models.Registry, store repository.StateStore, logger *slog.Logger) *State {
	return &State{
		reg:    reg,
		store:  store,
		logger: logger,
	}
}

// Load reads the initial registry. The bot cannot start without it.
func Load(ctx context.Context, store repository.StateStore, logger *slog.Logger) (*State, error) {
	reg, err := store.Read(ctx)
	if err != nil {
		return nil, err
	}

	// The delayed flag reset does not survive a restart. Telegram lifts the
	// restriction on its own, so a stale flag would only block the next mute.
	reset := 0

	for _, chat := range reg.Chats() {
		for _, user := range chat.Users() {
			if user.Muted {
				user.Muted = false
				reset++
			}
		}
	}

	logger.Info("Состояние загружено",
		"chats", reg.Len(),
		"directory_messages", len(reg.Directory.MessageIDs),
		"muted_reset", reset,
	)

	return NewState(reg, store, logger), nil
}

func (s *State) Registry() *models.Registry {
	return s.reg
}

// Persist writes the registry. On failure the in-memory registry stays as is
// and the next successful write carries the change.
func (s *State) Persist(ctx context.Context) error {
	if err := s.store.Write(ctx, s.reg); err != nil {
		s.logger.Error("Ошибка при сохранении состояния",
			"error", err,
			"chats", s.reg.Len(),
		)

		return err
	}

	return nil
}

// PersistWhenDrained waits for the worker to close done and then writes the
// registry. After timeout the write is skipped: a running task may still be
// mutating the registry.
func (s *State) PersistWhenDrained(ctx context.Context, done <-chan struct{}, timeout time.Duration) error {
	select {
	case <-done:
	case <-time.After(timeout):
		s.logger.Warn("Очередь задач не завершилась вовремя, состояние не сохранено")
		return ErrQueueNotDrained
	}

	return s.Persist(ctx)
}
