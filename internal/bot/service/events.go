package service

import (
	"context"

	"github.com/central-university-dev/go-hhh-bot/internal/bot/directory"
	"github.com/central-university-dev/go-hhh-bot/internal/bot/domain"
	"github.com/central-university-dev/go-hhh-bot/internal/domain/models"
)

func (s *BotService) NewMembers(ctx context.Context, req *domain.Request) error {
	selfID := s.messenger.Self().UserID

	for _, member := range req.Event.NewMembers {
		if member.ID != selfID {
			req.Chat.AddUser(models.NewUser(member.ID, member.DisplayName()))
			continue
		}

		s.logger.Info("Бот добавлен в чат", "chat_id", req.Chat.ID, "title", req.Chat.Title)

		s.announceChat(ctx, req.Chat)
	}

	return nil
}

func (s *BotService) LeftMember(ctx context.Context, req *domain.Request) error {
	left := req.Event.LeftMember
	if left == nil {
		return nil
	}

	if left.ID != s.messenger.Self().UserID {
		if !req.Chat.RemoveUser(left.ID) {
			s.logger.Debug("Покинувший чат пользователь не найден", "chat_id", req.Chat.ID, "user_id", left.ID)
		}

		return nil
	}

	s.logger.Info("Бот удалён из чата", "chat_id", req.Chat.ID, "title", req.Chat.Title)

	s.removeChat(ctx, req.Chat)

	return nil
}

func (s *BotService) NewTitle(ctx context.Context, req *domain.Request) error {
	chat := req.Chat
	chat.Title = req.Event.NewTitle

	switch {
	case req.PreviousTitle == "":
		s.updateDirectory(ctx, directory.Added(chat))
	case req.PreviousTitle != chat.Title:
		s.updateDirectory(ctx, directory.Renamed(chat, req.PreviousTitle))
	}

	return nil
}

func (s *BotService) ChatCreated(ctx context.Context, req *domain.Request) error {
	s.announceChat(ctx, req.Chat)
	return nil
}

// Migrate moves the record of the old group to the supergroup ID. The pipeline
// may already have created a record under the new ID; it is merged in.
func (s *BotService) Migrate(_ context.Context, req *domain.Request) error {
	from := req.Event.MigrateFromChatID
	to := req.ChatID()

	moved, ok := s.Registry().Migrate(from, to)
	if !ok {
		s.logger.Warn("Миграция неизвестного чата", "from", from, "to", to)
		return nil
	}

	s.logger.Info("Чат перенесён", "from", from, "to", to, "title", moved.Title)

	req.Chat = moved

	if req.User != nil {
		req.User = moved.AddUser(req.User)
	}

	return nil
}

// Message handles plain messages. Everything useful already happened in the
// pipeline.
func (s *BotService) Message(context.Context, *domain.Request) error {
	return nil
}

func (s *BotService) announceChat(ctx context.Context, chat *models.Chat) {
	if isListed(chat) {
		s.updateDirectory(ctx, directory.Added(chat))
	}

	channelID := s.Registry().Directory.ChannelID

	messageID, err := s.messenger.SendMessage(ctx, channelID, createdText(chat), domain.SendOptions{
		ParseMode:             domain.ParseModeHTML,
		DisableWebPagePreview: true,
	})
	if err != nil {
		s.logger.Error("Ошибка при отправке сообщения о создании чата", "error", err, "chat_id", chat.ID)
		return
	}

	chat.CreatedMessageID = messageID
}
