package domain

import (
	"context"

	"github.com/central-university-dev/go-hhh-bot/internal/domain/models"
)

type EventKind string

const (
	EventCommand        EventKind = "command"
	EventMessage        EventKind = "message"
	EventNewMembers     EventKind = "new_members"
	EventLeftMember     EventKind = "left_member"
	EventNewTitle       EventKind = "new_title"
	EventChatCreated    EventKind = "chat_created"
	EventChatMigrated   EventKind = "chat_migrated"
	EventUnknownCommand EventKind = "unknown_command"
)

const anonymousAdminUsername = "GroupAnonymousBot"

type Sender struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
	IsBot     bool
}

// DisplayName is the name users are addressed by in commands such as /mute.
func (s Sender) DisplayName() string {
	if s.FirstName != "" {
		return s.FirstName
	}

	return s.Username
}

// IsAnonymousAdmin reports whether the message was posted by a chat admin in
// anonymous mode.
func (s Sender) IsAnonymousAdmin() bool {
	return s.IsBot && s.Username == anonymousAdminUsername
}

type EventChat struct {
	ID          int64
	Type        string
	Title       string
	Description string
}

// Event is one inbound platform update, already stripped of transport details.
type Event struct {
	Kind      EventKind
	MessageID int
	Chat      EventChat
	From      Sender
	Text      string
	Command   models.Command

	NewMembers        []Sender
	LeftMember        *Sender
	NewTitle          string
	MigrateFromChatID int64
}

// Request carries the resolved records through the command pipeline.
type Request struct {
	Event *Event
	Chat  *models.Chat
	User  *models.User

	// PreviousTitle is the chat title before the pipeline backfilled it.
	PreviousTitle string
	ChatCreated   bool

	admins       []ChatMember
	adminsLoaded bool
}

func NewRequest(event *Event) *Request {
	return &Request{Event: event}
}

func (r *Request) ChatID() int64 {
	return r.Event.Chat.ID
}

// ChatAdmins fetches the chat administrators once per request.
func (r *Request) ChatAdmins(ctx context.Context, m Messenger) ([]ChatMember, error) {
	if r.adminsLoaded {
		return r.admins, nil
	}

	admins, err := m.GetChatAdministrators(ctx, r.ChatID())
	if err != nil {
		return nil, err
	}

	r.admins = admins
	r.adminsLoaded = true

	return admins, nil
}

func IsMember(members []ChatMember, userID int64) bool {
	for _, m := range members {
		if m.UserID == userID {
			return true
		}
	}

	return false
}

type Privilege int

const (
	PrivilegeNone Privilege = iota
	PrivilegeChatAdmin
	PrivilegeMainAdmin
)

func (p Privilege) String() string {
	switch p {
	case PrivilegeChatAdmin:
		return "chat_admin"
	case PrivilegeMainAdmin:
		return "main_admin"
	default:
		return "none"
	}
}
