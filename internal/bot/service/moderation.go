package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/central-university-dev/go-hhh-bot/internal/bot/domain"
	"github.com/central-university-dev/go-hhh-bot/internal/bot/worker"
	"github.com/central-university-dev/go-hhh-bot/internal/domain/models"
)

const (
	everyone = "@all"

	chatCreatorMarker = "can't demote chat creator"
)

// MuteUser restricts user in chatID for d and schedules the muted flag reset.
// A user already marked as muted is left alone.
func (s *BotService) MuteUser(ctx context.Context, chatID int64, user *models.User, d time.Duration, reason string) bool {
	if user.Muted {
		return true
	}

	s.logger.Info("Ограничение пользователя", "chat_id", chatID, "user_id", user.ID, "reason", reason)

	if err := s.messenger.RestrictMember(ctx, chatID, user.ID, domain.MutedPermissions(), s.now().Add(d)); err != nil {
		s.logger.Error("Ошибка при ограничении пользователя", "error", err, "chat_id", chatID, "user_id", user.ID)

		if strings.Contains(strings.ToLower(err.Error()), chatCreatorMarker) {
			s.send(ctx, chatID,
				fmt.Sprintf("Пользователя %s не удалось ограничить: Can't demote chat creator. Позор %s", user.Name, user.Name),
				domain.SendOptions{})
		}

		return false
	}

	user.Muted = true

	text := fmt.Sprintf("%s ограничен на %s.", user.Name, formatDuration(d))
	if reason != "" {
		text += "\nПричина: " + reason
	}

	s.send(ctx, chatID, text, domain.SendOptions{DisableNotification: true})

	s.scheduleUnmuteFlag(chatID, user.ID, d)

	return true
}

func (s *BotService) scheduleUnmuteFlag(chatID, userID int64, d time.Duration) {
	if s.scheduler == nil {
		return
	}

	s.scheduler.Schedule(d, worker.Task{
		Name: "unmute_flag",
		Run: func(ctx context.Context) error {
			return s.ResetMuted(ctx, chatID, userID)
		},
	})
}

// ResetMuted clears the muted flag once the restriction has expired on the
// platform side.
func (s *BotService) ResetMuted(ctx context.Context, chatID, userID int64) error {
	chat, ok := s.Registry().Chat(chatID)
	if !ok {
		return nil
	}

	user, ok := chat.User(userID)
	if !ok || !user.Muted {
		return nil
	}

	user.Muted = false

	s.logger.Debug("Флаг ограничения снят", "chat_id", chatID, "user_id", userID)

	return s.state.Persist(ctx)
}

func (s *BotService) UnmuteUser(ctx context.Context, chatID int64, user *models.User) bool {
	if err := s.messenger.RestrictMember(ctx, chatID, user.ID, domain.DefaultPermissions(), time.Time{}); err != nil {
		s.logger.Error("Ошибка при снятии ограничения", "error", err, "chat_id", chatID, "user_id", user.ID)
		return false
	}

	user.Muted = false

	return true
}

// Mute handles /mute <user> [minutes] [reason].
func (s *BotService) Mute(ctx context.Context, req *domain.Request) error {
	cmd := req.Event.Command

	name := cmd.Arg(0)
	if name == "" {
		s.send(ctx, req.ChatID(), "Укажите пользователя и, при желании, время и причину (`/mute <user> [<минуты>] [<причина>]`)",
			domain.SendOptions{ParseMode: domain.ParseModeMarkdown, ReplyToMessageID: req.Event.MessageID})

		return nil
	}

	duration := s.opts.MuteDuration
	reasonFrom := 1

	if minutes, err := strconv.Atoi(cmd.Arg(1)); err == nil && minutes > 0 {
		duration = time.Duration(minutes) * time.Minute
		reasonFrom = 2
	}

	reason := cmd.Rest(reasonFrom)

	if name == everyone {
		for _, user := range req.Chat.Users() {
			if req.User != nil && user.ID == req.User.ID {
				continue
			}

			s.MuteUser(ctx, req.ChatID(), user, duration, reason)
		}

		return nil
	}

	user, ok := req.Chat.UserByName(name)
	if !ok {
		s.reply(ctx, req, fmt.Sprintf("Не удалось ограничить %s (пользователь не найден в этом чате)", name))
		return nil
	}

	s.MuteUser(ctx, req.ChatID(), user, duration, reason)

	return nil
}

// Unmute handles /unmute <user|@all>.
func (s *BotService) Unmute(ctx context.Context, req *domain.Request) error {
	name := strings.TrimSpace(req.Event.Command.Arg(0))
	if name == "" {
		s.reply(ctx, req, "Укажите пользователя, с которого нужно снять ограничение")
		return nil
	}

	if name == everyone {
		for _, user := range req.Chat.Users() {
			s.UnmuteUser(ctx, req.ChatID(), user)
		}

		return nil
	}

	user, ok := req.Chat.UserByName(name)
	if !ok {
		s.reply(ctx, req, fmt.Sprintf("Не удалось снять ограничение с %s (пользователь не найден в этом чате)", name))
		return nil
	}

	if s.UnmuteUser(ctx, req.ChatID(), user) {
		s.reply(ctx, req, fmt.Sprintf("Ограничение с %s снято", name))
	} else {
		s.reply(ctx, req, fmt.Sprintf("Не удалось снять ограничение с %s", name))
	}

	return nil
}

// Kick handles /kick <user> [reason]. A short ban is how Telegram kicks.
func (s *BotService) Kick(ctx context.Context, req *domain.Request) error {
	cmd := req.Event.Command

	name := cmd.Arg(0)
	if name == "" {
		s.send(ctx, req.ChatID(), "Укажите пользователя и, при желании, причину (`/kick <user> [<причина>]`)",
			domain.SendOptions{ParseMode: domain.ParseModeMarkdown, ReplyToMessageID: req.Event.MessageID})

		return nil
	}

	user, ok := req.Chat.UserByName(name)
	if !ok {
		s.reply(ctx, req, fmt.Sprintf("Не удалось удалить %s (пользователь не найден в этом чате)", name))
		return nil
	}

	if err := s.messenger.BanMember(ctx, req.ChatID(), user.ID, s.now().Add(s.opts.KickBanDuration)); err != nil {
		s.logger.Error("Ошибка при удалении пользователя", "error", err, "chat_id", req.ChatID(), "user_id", user.ID)
		s.reply(ctx, req, fmt.Sprintf("Не удалось удалить %s из чата: %v", user.Name, err))

		return nil
	}

	req.Chat.RemoveUser(user.ID)

	text := user.Name + " удалён из чата"
	if reason := cmd.Rest(1); reason != "" {
		text += ", причина: " + reason
	}

	s.reply(ctx, req, text+".")

	return nil
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)

	hours := int(d / time.Hour)
	minutes := int(d % time.Hour / time.Minute)
	seconds := int(d % time.Minute / time.Second)

	return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
}
