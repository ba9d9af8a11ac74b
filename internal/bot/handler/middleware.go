package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/central-university-dev/go-hhh-bot/internal/bot/domain"
	"github.com/central-university-dev/go-hhh-bot/internal/common/metrics"
	customerrors "github.com/central-university-dev/go-hhh-bot/internal/domain/errors"
	"github.com/central-university-dev/go-hhh-bot/internal/domain/models"
)

type StateHolder interface {
	Registry() *models.Registry
	Persist(ctx context.Context) error
}

type Moderator interface {
	MuteUser(ctx context.Context, chatID int64, user *models.User, d time.Duration, reason string) bool
}

type InviteLinks interface {
	BackfillInviteLink(ctx context.Context, req *domain.Request)
}

type Middlewares struct {
	state        StateHolder
	messenger    domain.Messenger
	moderator    Moderator
	invites      InviteLinks
	mainAdmins   map[int64]struct{}
	muteCooldown time.Duration
	logger       *slog.Logger
	now          func() time.Time
}

func NewMiddlewares(
	state StateHolder,
	messenger domain.Messenger,
	moderator Moderator,
	invites InviteLinks,
	mainAdmins map[int64]struct{},
	muteCooldown time.Duration,
	logger *slog.Logger,
) *Middlewares {
	if mainAdmins == nil {
		mainAdmins = map[int64]struct{}{}
	}

	return &Middlewares{
		state:        state,
		messenger:    messenger,
		moderator:    moderator,
		invites:      invites,
		mainAdmins:   mainAdmins,
		muteCooldown: muteCooldown,
		logger:       logger,
		now:          time.Now,
	}
}

// Persist saves the registry after every request, whatever its outcome. A
// failed write is logged by the state holder and does not change the result.
func (m *Middlewares) Persist() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *domain.Request) error {
			err := next(ctx, req)

			_ = m.state.Persist(ctx)

			return err
		}
	}
}

// PermissionReply turns a permission error into a reply in the originating
// chat. Other errors are logged and returned.
func (m *Middlewares) PermissionReply() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *domain.Request) error {
			err := next(ctx, req)
			if err == nil {
				return nil
			}

			var denied *customerrors.ErrPermissionDenied
			if errors.As(err, &denied) {
				m.logger.Warn("Недостаточно прав",
					"command", denied.Command,
					"reason", denied.Reason,
					"chat_id", req.ChatID(),
					"user_id", req.Event.From.ID,
				)

				text := fmt.Sprintf("Вы (%s) не можете выполнить это действие.", req.Event.From.DisplayName())

				_, sendErr := m.messenger.SendMessage(ctx, req.ChatID(), text, domain.SendOptions{
					ReplyToMessageID: req.Event.MessageID,
				})
				if sendErr != nil {
					m.logger.Error("Ошибка при отправке отказа", "error", sendErr, "chat_id", req.ChatID())
				}

				return nil
			}

			m.logger.Error("Ошибка при обработке запроса",
				"error", err,
				"kind", req.Event.Kind,
				"command", req.Event.Command.Name,
				"chat_id", req.ChatID(),
			)

			return err
		}
	}
}

// Observe records the command outcome.
func (m *Middlewares) Observe(command string) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *domain.Request) error {
			start := time.Now()

			err := next(ctx, req)

			outcome := "ok"

			switch {
			case errors.Is(err, &customerrors.ErrPermissionDenied{}):
				outcome = "denied"
			case err != nil:
				outcome = "error"
			}

			metrics.RecordCommand(command, outcome, time.Since(start))

			return err
		}
	}
}

// ResolveChat finds or creates the chat of the event, backfills its title and
// stamps the activity time.
func (m *Middlewares) ResolveChat() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *domain.Request) error {
			ec := req.Event.Chat

			chat, created := m.state.Registry().GetOrCreate(ec.ID)
			if created {
				m.logger.Info("Новый чат", "chat_id", ec.ID, "title", ec.Title, "type", ec.Type)
			}

			req.Chat = chat
			req.ChatCreated = created
			req.PreviousTitle = chat.Title

			if chat.Title == "" && ec.Title != "" {
				m.logger.Debug("Название чата восстановлено", "chat_id", ec.ID, "title", ec.Title)
				chat.Title = ec.Title
			}

			if t := models.ParseChatType(ec.Type); t != models.ChatTypeUndefined {
				chat.Type = t
			}

			if ec.Description != "" {
				chat.Description = ec.Description
			}

			chat.Touch(m.now())

			return next(ctx, req)
		}
	}
}

// ResolveUser finds or creates the sender and makes it a member of the chat.
// Anonymous admins and updates without a sender have no user record.
func (m *Middlewares) ResolveUser() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *domain.Request) error {
			from := req.Event.From

			if from.ID != 0 && !from.IsAnonymousAdmin() {
				req.User = req.Chat.AddUser(models.NewUser(from.ID, from.DisplayName()))
			}

			return next(ctx, req)
		}
	}
}

// RequireMainAdmin lets the command through only from chats on the main admin
// list. Anyone else is muted for the cooldown.
func (m *Middlewares) RequireMainAdmin(command string) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *domain.Request) error {
			if _, ok := m.mainAdmins[req.ChatID()]; ok {
				return next(ctx, req)
			}

			reason := fmt.Sprintf("Чат %d не может выполнять команду /%s", req.ChatID(), command)

			if req.User != nil {
				m.moderator.MuteUser(ctx, req.ChatID(), req.User, m.muteCooldown, reason)
			}

			return &customerrors.ErrPermissionDenied{Command: command, Reason: reason}
		}
	}
}

// RequireChatAdmin lets the command through in private chats, from anonymous
// admins and from users listed as administrators of the chat.
func (m *Middlewares) RequireChatAdmin(command string) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *domain.Request) error {
			if req.Chat.IsPrivate() || req.Event.From.IsAnonymousAdmin() {
				return next(ctx, req)
			}

			admins, err := req.ChatAdmins(ctx, m.messenger)
			if err != nil {
				m.logger.Error("Не удалось получить администраторов чата", "error", err, "chat_id", req.ChatID())

				return &customerrors.ErrPermissionDenied{Command: command, Reason: "список администраторов недоступен"}
			}

			if !domain.IsMember(admins, req.Event.From.ID) {
				return &customerrors.ErrPermissionDenied{Command: command, Reason: "пользователь не администратор чата"}
			}

			return next(ctx, req)
		}
	}
}

func (m *Middlewares) EnsureInviteLink() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *domain.Request) error {
			m.invites.BackfillInviteLink(ctx, req)
			return next(ctx, req)
		}
	}
}

func (m *Middlewares) RecordMessage() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *domain.Request) error {
			if req.User != nil && req.Event.MessageID != 0 {
				req.User.RecordMessage(req.Event.MessageID)
			}

			return next(ctx, req)
		}
	}
}

// CommandPipeline assembles the middlewares for a command route.
func (m *Middlewares) CommandPipeline(route Route) HandlerFunc {
	mws := []Middleware{
		m.Persist(),
		m.PermissionReply(),
		m.Observe(route.Command),
		m.ResolveChat(),
		m.ResolveUser(),
	}

	switch route.Privilege {
	case domain.PrivilegeMainAdmin:
		mws = append(mws, m.RequireMainAdmin(route.Command))
	case domain.PrivilegeChatAdmin:
		mws = append(mws, m.RequireChatAdmin(route.Command))
	case domain.PrivilegeNone:
	}

	mws = append(mws, m.EnsureInviteLink(), m.RecordMessage())

	return Chain(route.Handler, mws...)
}

// EventPipeline assembles the middlewares for a non-command event.
func (m *Middlewares) EventPipeline(route EventRoute) HandlerFunc {
	mws := []Middleware{
		m.Persist(),
		m.PermissionReply(),
		m.ResolveChat(),
		m.ResolveUser(),
	}

	if route.Backfill {
		mws = append(mws, m.EnsureInviteLink())
	}

	mws = append(mws, m.RecordMessage())

	return Chain(route.Handler, mws...)
}
