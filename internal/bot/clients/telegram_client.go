package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/central-university-dev/go-hhh-bot/internal/bot/domain"
	"github.com/central-university-dev/go-hhh-bot/internal/common/metrics"
	"github.com/central-university-dev/go-hhh-bot/internal/common/ratelimit"
	customerrors "github.com/central-university-dev/go-hhh-bot/internal/domain/errors"
)

var goneMarkers = []string{
	"message to edit not found",
	"message to delete not found",
	"message can't be edited",
	"message_id_invalid",
}

const notModifiedMarker = "message is not modified"

// TelegramClient implements domain.Messenger on top of the Bot API.
type TelegramClient struct {
	bot     *tgbotapi.BotAPI
	limiter *ratelimit.KeyedLimiter
	logger  *slog.Logger
}

// NewTelegramClient connects to the Bot API. An empty endpoint means the
// public api.telegram.org.
func NewTelegramClient(token, endpoint string, httpClient *http.Client, limiter *ratelimit.KeyedLimiter,
	logger *slog.Logger) (*TelegramClient, error) {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: time.Minute}
	}

	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, httpClient)
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании Telegram клиента: %w", err)
	}

	if limiter == nil {
		limiter = ratelimit.NewKeyedLimiter(0, 0)
	}

	logger.Info("Telegram клиент создан", "bot", bot.Self.UserName, "bot_id", bot.Self.ID)

	return &TelegramClient{
		bot:     bot,
		limiter: limiter,
		logger:  logger,
	}, nil
}

// Bot exposes the underlying API for the update poller.
func (c *TelegramClient) Bot() *tgbotapi.BotAPI {
	return c.bot
}

func (c *TelegramClient) Self() domain.ChatMember {
	return domain.ChatMember{
		UserID:   c.bot.Self.ID,
		Username: c.bot.Self.UserName,
		IsBot:    true,
	}
}

func (c *TelegramClient) SendMessage(ctx context.Context, chatID int64, text string, opts domain.SendOptions) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = string(opts.ParseMode)
	msg.DisableWebPagePreview = opts.DisableWebPagePreview
	msg.DisableNotification = opts.DisableNotification
	msg.ReplyToMessageID = opts.ReplyToMessageID

	sent, err := c.send(ctx, "sendMessage", chatID, msg)
	if err != nil {
		return 0, c.classify("sendMessage", chatID, 0, err)
	}

	return sent.MessageID, nil
}

func (c *TelegramClient) EditMessageText(ctx context.Context, chatID int64, messageID int, text string,
	opts domain.SendOptions) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = string(opts.ParseMode)
	edit.DisableWebPagePreview = opts.DisableWebPagePreview

	_, err := c.request(ctx, "editMessageText", chatID, edit)

	return c.classify("editMessageText", chatID, messageID, err)
}

func (c *TelegramClient) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	_, err := c.request(ctx, "deleteMessage", chatID, tgbotapi.NewDeleteMessage(chatID, messageID))

	return c.classify("deleteMessage", chatID, messageID, err)
}

func (c *TelegramClient) PinMessage(ctx context.Context, chatID int64, messageID int, silent bool) error {
	_, err := c.request(ctx, "pinChatMessage", chatID, tgbotapi.PinChatMessageConfig{
		ChatID:              chatID,
		MessageID:           messageID,
		DisableNotification: silent,
	})

	return c.classify("pinChatMessage", chatID, messageID, err)
}

func (c *TelegramClient) UnpinMessage(ctx context.Context, chatID int64, messageID int) error {
	_, err := c.request(ctx, "unpinChatMessage", chatID, tgbotapi.UnpinChatMessageConfig{
		ChatID:    chatID,
		MessageID: messageID,
	})

	return c.classify("unpinChatMessage", chatID, messageID, err)
}

func (c *TelegramClient) GetChatAdministrators(ctx context.Context, chatID int64) ([]domain.ChatMember, error) {
	if err := c.limiter.Wait(ctx, chatID); err != nil {
		return nil, err
	}

	admins, err := c.bot.GetChatAdministrators(tgbotapi.ChatAdministratorsConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
	})

	metrics.RecordTelegramRequest("getChatAdministrators", err)

	if err != nil {
		return nil, c.classify("getChatAdministrators", chatID, 0, err)
	}

	members := make([]domain.ChatMember, 0, len(admins))

	for _, admin := range admins {
		if admin.User == nil {
			continue
		}

		members = append(members, domain.ChatMember{
			UserID:   admin.User.ID,
			Username: admin.User.UserName,
			IsBot:    admin.User.IsBot,
			Status:   admin.Status,
		})
	}

	return members, nil
}

func (c *TelegramClient) GetChatInfo(ctx context.Context, chatID int64) (*domain.ChatInfo, error) {
	if err := c.limiter.Wait(ctx, chatID); err != nil {
		return nil, err
	}

	chat, err := c.bot.GetChat(tgbotapi.ChatInfoConfig{ChatConfig: tgbotapi.ChatConfig{ChatID: chatID}})

	metrics.RecordTelegramRequest("getChat", err)

	if err != nil {
		return nil, c.classify("getChat", chatID, 0, err)
	}

	return &domain.ChatInfo{
		ID:          chat.ID,
		Title:       chat.Title,
		Type:        chat.Type,
		Description: chat.Description,
		HasPhoto:    chat.Photo != nil,
	}, nil
}

func (c *TelegramClient) RestrictMember(ctx context.Context, chatID, userID int64, perms domain.Permissions,
	until time.Time) error {
	_, err := c.request(ctx, "restrictChatMember", chatID, tgbotapi.RestrictChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{ChatID: chatID, UserID: userID},
		UntilDate:        unixOrZero(until),
		Permissions: &tgbotapi.ChatPermissions{
			CanSendMessages:       perms.CanSendMessages,
			CanSendMediaMessages:  perms.CanSendMediaMessages,
			CanSendOtherMessages:  perms.CanSendOtherMessages,
			CanAddWebPagePreviews: perms.CanAddWebPagePreviews,
		},
	})

	return c.classify("restrictChatMember", chatID, 0, err)
}

func (c *TelegramClient) BanMember(ctx context.Context, chatID, userID int64, until time.Time) error {
	_, err := c.request(ctx, "banChatMember", chatID, tgbotapi.BanChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{ChatID: chatID, UserID: userID},
		UntilDate:        unixOrZero(until),
	})

	return c.classify("banChatMember", chatID, 0, err)
}

func (c *TelegramClient) CreateInviteLink(ctx context.Context, chatID int64) (string, error) {
	if err := c.limiter.Wait(ctx, chatID); err != nil {
		return "", err
	}

	link, err := c.bot.GetInviteLink(tgbotapi.ChatInviteLinkConfig{ChatConfig: tgbotapi.ChatConfig{ChatID: chatID}})

	metrics.RecordTelegramRequest("exportChatInviteLink", err)

	if err != nil {
		return "", c.classify("exportChatInviteLink", chatID, 0, err)
	}

	return link, nil
}

func (c *TelegramClient) SendDocument(ctx context.Context, chatID int64, filename string, data []byte) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: filename, Bytes: data})

	_, err := c.send(ctx, "sendDocument", chatID, doc)

	return c.classify("sendDocument", chatID, 0, err)
}

func (c *TelegramClient) SetChatPhoto(ctx context.Context, chatID int64, photo []byte) error {
	cfg := tgbotapi.NewChatPhoto(chatID, tgbotapi.FileBytes{Name: "photo.png", Bytes: photo})

	_, err := c.request(ctx, "setChatPhoto", chatID, cfg)

	return c.classify("setChatPhoto", chatID, 0, err)
}

func (c *TelegramClient) SetMyCommands(ctx context.Context, commands []domain.BotCommand) error {
	botCommands := make([]tgbotapi.BotCommand, 0, len(commands))
	for _, cmd := range commands {
		botCommands = append(botCommands, tgbotapi.BotCommand{
			Command:     cmd.Command,
			Description: cmd.Description,
		})
	}

	_, err := c.request(ctx, "setMyCommands", 0, tgbotapi.NewSetMyCommands(botCommands...))

	return c.classify("setMyCommands", 0, 0, err)
}

func (c *TelegramClient) send(ctx context.Context, method string, chatID int64, msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	if err := c.limiter.Wait(ctx, chatID); err != nil {
		return tgbotapi.Message{}, err
	}

	sent, err := c.bot.Send(msg)
	metrics.RecordTelegramRequest(method, err)

	return sent, err
}

func (c *TelegramClient) request(ctx context.Context, method string, chatID int64,
	cfg tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	if err := c.limiter.Wait(ctx, chatID); err != nil {
		return nil, err
	}

	resp, err := c.bot.Request(cfg)
	metrics.RecordTelegramRequest(method, err)

	return resp, err
}

// classify maps Bot API failures onto domain errors.
func (c *TelegramClient) classify(operation string, chatID int64, messageID int, err error) error {
	if err == nil {
		return nil
	}

	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		return &customerrors.ErrTelegramAPI{Operation: operation, Cause: err}
	}

	description := strings.ToLower(apiErr.Message)

	if strings.Contains(description, notModifiedMarker) {
		return &customerrors.ErrMessageNotModified{ChatID: chatID, MessageID: messageID}
	}

	for _, marker := range goneMarkers {
		if strings.Contains(description, marker) {
			return &customerrors.ErrMessageGone{ChatID: chatID, MessageID: messageID, Cause: err}
		}
	}

	c.logger.Debug("Ошибка Telegram API",
		"operation", operation,
		"chat_id", chatID,
		"code", apiErr.Code,
		"error", apiErr.Message,
	)

	return &customerrors.ErrTelegramAPI{Operation: operation, Cause: err}
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}

	return t.Unix()
}
