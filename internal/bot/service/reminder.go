package service

import (
	"context"

	"github.com/central-university-dev/go-hhh-bot/internal/bot/domain"
)

var reminderPhrases = []string{
	"Тук-тук",
	"Я скучаю по людям :(",
	"Есть кто живой?",
}

// RefreshDirectory republishes the directory and persists the result.
func (s *BotService) RefreshDirectory(ctx context.Context) error {
	reg := s.Registry()

	if err := s.directory.Update(ctx, reg, nil); err != nil {
		s.logger.Error("Ошибка при плановом обновлении справочника", "error", err)
	}

	return s.state.Persist(ctx)
}

// RemindStaleGroup posts a reminder into one random group that has been idle
// for longer than the configured age.
func (s *BotService) RemindStaleGroup(ctx context.Context) error {
	now := s.now()

	stale := s.Registry().StaleGroups(now, s.opts.ReminderAge)
	if len(stale) == 0 {
		s.logger.Info("Нет групп без активности", "threshold", s.opts.ReminderAge.String())
		return nil
	}

	chat := stale[s.pick(len(stale))]
	phrase := reminderPhrases[s.pick(len(reminderPhrases))]

	if _, err := s.messenger.SendMessage(ctx, chat.ID, phrase, domain.SendOptions{}); err != nil {
		s.logger.Error("Не удалось отправить напоминание", "error", err, "chat_id", chat.ID, "title", chat.Title)
		return nil
	}

	s.logger.Info("Отправлено напоминание", "chat_id", chat.ID, "title", chat.Title)

	chat.Touch(now)

	return s.state.Persist(ctx)
}
