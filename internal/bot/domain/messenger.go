package domain

import (
	"context"
	"time"
)

type ParseMode string

const (
	ParseModeNone     ParseMode = ""
	ParseModeHTML     ParseMode = "HTML"
	ParseModeMarkdown ParseMode = "Markdown"
)

type SendOptions struct {
	ParseMode             ParseMode
	DisableWebPagePreview bool
	DisableNotification   bool
	ReplyToMessageID      int
}

type BotCommand struct {
	Command     string
	Description string
}

type ChatMember struct {
	UserID   int64
	Username string
	IsBot    bool
	Status   string
}

type ChatInfo struct {
	ID          int64
	Title       string
	Type        string
	Description string
	HasPhoto    bool
}

// Permissions mirrors the subset of Telegram chat permissions the bot toggles.
type Permissions struct {
	CanSendMessages       bool
	CanSendMediaMessages  bool
	CanSendOtherMessages  bool
	CanAddWebPagePreviews bool
}

func MutedPermissions() Permissions {
	return Permissions{}
}

func DefaultPermissions() Permissions {
	return Permissions{
		CanSendMessages:       true,
		CanSendMediaMessages:  true,
		CanSendOtherMessages:  true,
		CanAddWebPagePreviews: true,
	}
}

// Messenger is the subset of the messaging platform the bot relies on.
// Implementations translate "message gone" and "not modified" failures into the
// matching domain errors.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string, opts SendOptions) (int, error)
	EditMessageText(ctx context.Context, chatID int64, messageID int, text string, opts SendOptions) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	PinMessage(ctx context.Context, chatID int64, messageID int, silent bool) error
	UnpinMessage(ctx context.Context, chatID int64, messageID int) error

	GetChatAdministrators(ctx context.Context, chatID int64) ([]ChatMember, error)
	GetChatInfo(ctx context.Context, chatID int64) (*ChatInfo, error)
	RestrictMember(ctx context.Context, chatID, userID int64, perms Permissions, until time.Time) error
	BanMember(ctx context.Context, chatID, userID int64, until time.Time) error
	CreateInviteLink(ctx context.Context, chatID int64) (string, error)

	SendDocument(ctx context.Context, chatID int64, filename string, data []byte) error
	SetChatPhoto(ctx context.Context, chatID int64, photo []byte) error

	Self() ChatMember
	SetMyCommands(ctx context.Context, commands []BotCommand) error
}
