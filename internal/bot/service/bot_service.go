package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/central-university-dev/go-hhh-bot/internal/bot/directory"
	"github.com/central-university-dev/go-hhh-bot/internal/bot/domain"
	"github.com/central-university-dev/go-hhh-bot/internal/bot/state"
	"github.com/central-university-dev/go-hhh-bot/internal/bot/worker"
	"github.com/central-university-dev/go-hhh-bot/internal/domain/models"
)

const serverTimeLayout = "02-01-2006 15-04-05"

var inviteLinkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^https://t\.me/(joinchat/)?\S+$`),
	regexp.MustCompile(`^tg://join\?invite=\S+$`),
}

type Directory interface {
	Update(ctx context.Context, reg *models.Registry, change *directory.Change) error
	Renew(ctx context.Context, reg *models.Registry) error
}

type ImageGenerator interface {
	GenerateImage(ctx context.Context, title string) ([]byte, error)
}

type TaskScheduler interface {
	Schedule(delay time.Duration, task worker.Task)
}

type Options struct {
	Version         string
	MuteDuration    time.Duration
	KickBanDuration time.Duration
	ReminderAge     time.Duration
}

type BotService struct {
	state     *State
	messenger domain.Messenger
	directory Directory
	images    ImageGenerator
	scheduler TaskScheduler
	opts      Options
	logger    *slog.Logger

	now  func() time.Time
	pick func(n int) int
}

func NewBotService(
	st *State,
	messenger domain.Messenger,
	dir Directory,
	images ImageGenerator,
	scheduler TaskScheduler,
	opts Options,
	logger *slog.Logger,
) *BotService {
	if opts.MuteDuration <= 0 {
		opts.MuteDuration = 15 * time.Minute
	}

	if opts.KickBanDuration <= 0 {
		opts.KickBanDuration = time.Minute
	}

	return &BotService{
		state:     st,
		messenger: messenger,
		directory: dir,
		images:    images,
		scheduler: scheduler,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
		pick:      rand.IntN,
	}
}

// Commands lists the commands shown in the Telegram command menu and in /help.
func Commands() []domain.BotCommand {
	return []domain.BotCommand{
		{Command: "users", Description: "Пользователи чата или группы по названию"},
		{Command: "get_invite_link", Description: "Ссылка-приглашение группы по названию"},
		{Command: "set_photo", Description: "Сгенерировать фото чата"},
		{Command: "delete_chat", Description: "Удалить чат из списка"},
		{Command: "delete_chat_by_id", Description: "Удалить чат по идентификатору"},
		{Command: "get_data", Description: "Выгрузить данные чата"},
		{Command: "mute", Description: "Запретить пользователю писать"},
		{Command: "unmute", Description: "Снять ограничение с пользователя"},
		{Command: "kick", Description: "Удалить пользователя из чата"},
		{Command: "add_invite_link", Description: "Задать ссылку-приглашение"},
		{Command: "remove_invite_link", Description: "Удалить ссылку-приглашение"},
		{Command: "renew_diff_message", Description: "Отправить справочник групп заново"},
		{Command: "set_premium_users_only", Description: "Только для premium пользователей"},
		{Command: "status", Description: "Состояние чата"},
		{Command: "server_time", Description: "Время сервера"},
		{Command: "version", Description: "Версия бота"},
		{Command: "help", Description: "Список команд"},
	}
}

func (s *BotService) Registry() *models.Registry {
	return s.state.Registry()
}

func (s *BotService) Users(ctx context.Context, req *domain.Request) error {
	chat := req.Chat

	if title := req.Event.Command.Rest(0); title != "" {
		found, ok := s.Registry().FindByTitle(strings.TrimSpace(title))
		if !ok {
			s.reply(ctx, req, "Такого чата не существует")
			return nil
		}

		chat = found
	}

	users := chat.UsersByName()
	if len(users) == 0 {
		s.reply(ctx, req, "Нет активных пользователей. Пользователь должен написать в чат сообщение, чтобы бот его узнал")
		return nil
	}

	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Name)
	}

	s.reply(ctx, req, strings.Join(names, "\n"))

	return nil
}

func (s *BotService) GetInviteLink(ctx context.Context, req *domain.Request) error {
	title := strings.TrimSpace(req.Event.Command.Rest(0))
	if title == "" {
		s.reply(ctx, req, "Укажите название группы")
		return nil
	}

	chat, ok := s.Registry().FindByTitle(title)
	if !ok {
		s.reply(ctx, req, "Такая группа мне неизвестна")
		return nil
	}

	if chat.InviteLink == "" {
		s.reply(ctx, req, "Для этой группы нет ссылки-приглашения")
		return nil
	}

	s.reply(ctx, req, chat.InviteLink)

	return nil
}

func (s *BotService) SetPhoto(ctx context.Context, req *domain.Request) error {
	outcome, err := models.GroupOnly(req.Chat, func() error {
		return s.setPhoto(ctx, req)
	})

	if outcome == models.OutcomeSkipped {
		s.reply(ctx, req, "Команда доступна только в группах")
	}

	return err
}

func (s *BotService) setPhoto(ctx context.Context, req *domain.Request) error {
	chat := req.Chat

	if req.Event.Command.Arg(0) != "overwrite" {
		info, err := s.messenger.GetChatInfo(ctx, chat.ID)
		if err != nil {
			s.logger.Warn("Не удалось получить информацию о чате", "error", err, "chat_id", chat.ID)
		} else if info.HasPhoto {
			s.reply(ctx, req, "Фото уже установлено, используйте /set_photo overwrite")
			return nil
		}
	}

	photo, err := s.images.GenerateImage(ctx, chat.Title)
	if err != nil {
		s.logger.Error("Ошибка при генерации фото", "error", err, "chat_id", chat.ID)
	}

	if len(photo) == 0 {
		s.reply(ctx, req, "Не удалось сгенерировать фото")
		return nil
	}

	if err := s.messenger.SetChatPhoto(ctx, chat.ID, photo); err != nil {
		s.logger.Error("Ошибка при установке фото чата", "error", err, "chat_id", chat.ID)
		s.reply(ctx, req, fmt.Sprintf("Не удалось обновить фото: %v", err))
	}

	return nil
}

func (s *BotService) DeleteChatByID(ctx context.Context, req *domain.Request) error {
	chatID, err := strconv.ParseInt(req.Event.Command.Arg(0), 10, 64)
	if err != nil {
		s.reply(ctx, req, "Укажите корректный chat_id")
		return nil
	}

	chat, ok := s.Registry().Chat(chatID)
	if !ok {
		s.reply(ctx, req, "Неизвестный chat_id")
		return nil
	}

	s.removeChat(ctx, chat)
	s.reply(ctx, req, fmt.Sprintf("Чат %d удалён", chatID))

	return nil
}

func (s *BotService) DeleteChat(ctx context.Context, req *domain.Request) error {
	s.removeChat(ctx, req.Chat)
	s.reply(ctx, req, "Чат удалён из списка")

	return nil
}

func (s *BotService) removeChat(ctx context.Context, chat *models.Chat) {
	listed := isListed(chat)

	if !s.Registry().Delete(chat.ID) {
		return
	}

	s.logger.Info("Чат удалён из состояния", "chat_id", chat.ID, "title", chat.Title)

	if listed {
		s.updateDirectory(ctx, directory.Removed(chat))
	}
}

func (s *BotService) GetData(ctx context.Context, req *domain.Request) error {
	name := req.Chat.Title
	if name == "" {
		name = strconv.FormatInt(req.Chat.ID, 10)
	}

	if err := s.messenger.SendDocument(ctx, req.ChatID(), name+".json", state.EncodeChat(req.Chat)); err != nil {
		s.logger.Error("Ошибка при отправке данных чата", "error", err, "chat_id", req.ChatID())
		s.reply(ctx, req, "Не удалось выгрузить данные этого чата")
	}

	return nil
}

func (s *BotService) AddInviteLink(ctx context.Context, req *domain.Request) error {
	link := req.Event.Command.Arg(0)
	if link == "" {
		s.reply(ctx, req, "Укажите ссылку-приглашение")
		return nil
	}

	if !ValidInviteLink(link) {
		s.reply(ctx, req, "Ссылка-приглашение должна иметь вид tg://join?invite=... или https://t.me/...")
		return nil
	}

	chat := req.Chat
	chat.InviteLink = link

	s.reply(ctx, req, "Ссылка-приглашение добавлена")
	s.updateDirectory(ctx, nil)

	if chat.CreatedMessageID != 0 {
		reg := s.Registry()

		err := s.messenger.EditMessageText(ctx, reg.Directory.ChannelID, chat.CreatedMessageID,
			createdText(chat), domain.SendOptions{ParseMode: domain.ParseModeHTML, DisableWebPagePreview: true})
		if err != nil {
			s.logger.Warn("Не удалось обновить сообщение о создании чата",
				"error", err,
				"chat_id", chat.ID,
				"message_id", chat.CreatedMessageID,
			)
		}
	}

	return nil
}

func (s *BotService) RemoveInviteLink(ctx context.Context, req *domain.Request) error {
	req.Chat.InviteLink = ""

	s.updateDirectory(ctx, nil)
	s.reply(ctx, req, "Ссылка-приглашение удалена")

	return nil
}

func (s *BotService) RenewDirectory(ctx context.Context, req *domain.Request) error {
	if err := s.directory.Renew(ctx, s.Registry()); err != nil {
		s.logger.Error("Ошибка при повторной отправке справочника", "error", err)
		s.reply(ctx, req, "Не удалось обновить справочник групп")
	}

	return nil
}

func (s *BotService) SetPremiumUsersOnly(ctx context.Context, req *domain.Request) error {
	enabled := true
	if arg := req.Event.Command.Arg(0); arg != "" {
		enabled = strings.EqualFold(arg, "true")
	}

	req.Chat.PremiumUsersOnly = enabled

	if enabled {
		s.reply(ctx, req, "Пользователи без premium будут удалены из группы при следующем взаимодействии с чатом")
	} else {
		s.reply(ctx, req, "Ограничение для пользователей без premium снято")
	}

	return nil
}

func (s *BotService) Status(ctx context.Context, req *domain.Request) error {
	s.reply(ctx, req, req.Chat.String())
	return nil
}

func (s *BotService) ServerTime(ctx context.Context, req *domain.Request) error {
	s.reply(ctx, req, s.now().Format(serverTimeLayout))
	return nil
}

func (s *BotService) Version(ctx context.Context, req *domain.Request) error {
	version := s.opts.Version
	if version == "" {
		version = "unknown"
	}

	s.reply(ctx, req, version)

	return nil
}

func (s *BotService) Help(ctx context.Context, req *domain.Request) error {
	var b strings.Builder

	b.WriteString("Доступные команды:")

	for _, cmd := range Commands() {
		b.WriteString("\n/")
		b.WriteString(cmd.Command)
		b.WriteString(" - ")
		b.WriteString(cmd.Description)
	}

	s.reply(ctx, req, b.String())

	return nil
}

// BackfillInviteLink creates an invite link for a group that has none when the
// bot is an administrator there.
func (s *BotService) BackfillInviteLink(ctx context.Context, req *domain.Request) {
	chat := req.Chat
	if chat == nil || !chat.IsGroup() || chat.InviteLink != "" {
		return
	}

	admins, err := req.ChatAdmins(ctx, s.messenger)
	if err != nil {
		s.logger.Warn("Не удалось получить администраторов чата", "error", err, "chat_id", chat.ID)
		return
	}

	if !domain.IsMember(admins, s.messenger.Self().UserID) {
		return
	}

	link, err := s.messenger.CreateInviteLink(ctx, chat.ID)
	if err != nil {
		s.logger.Error("Не удалось создать ссылку-приглашение", "error", err, "chat_id", chat.ID)
		return
	}

	s.logger.Info("Создана ссылка-приглашение", "chat_id", chat.ID, "title", chat.Title)

	chat.InviteLink = link
	s.updateDirectory(ctx, nil)
}

func ValidInviteLink(link string) bool {
	for _, re := range inviteLinkPatterns {
		if re.MatchString(link) {
			return true
		}
	}

	return false
}

func (s *BotService) updateDirectory(ctx context.Context, change *directory.Change) {
	if err := s.directory.Update(ctx, s.Registry(), change); err != nil {
		s.logger.Error("Ошибка при обновлении справочника групп", "error", err)
	}
}

func (s *BotService) reply(ctx context.Context, req *domain.Request, text string) {
	s.send(ctx, req.ChatID(), text, domain.SendOptions{
		ReplyToMessageID:      req.Event.MessageID,
		DisableWebPagePreview: true,
	})
}

func (s *BotService) send(ctx context.Context, chatID int64, text string, opts domain.SendOptions) {
	if _, err := s.messenger.SendMessage(ctx, chatID, text, opts); err != nil {
		s.logger.Error("Ошибка при отправке сообщения",
			"error", err,
			"chat_id", chatID,
		)
	}
}

func createdText(chat *models.Chat) string {
	return "Создана " + chat.DirectoryEntry()
}

func isListed(chat *models.Chat) bool {
	return chat.Title != "" && !chat.IsPrivate()
}
