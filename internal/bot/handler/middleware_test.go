package handler_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/central-university-dev/go-hhh-bot/internal/bot/domain"
	domainmocks "github.com/central-university-dev/go-hhh-bot/internal/bot/domain/mocks"
	"github.com/central-university-dev/go-hhh-bot/internal/bot/handler"
	"github.com/central-university-dev/go-hhh-bot/internal/bot/handler/mocks"
	repomocks "github.com/central-university-dev/go-hhh-bot/internal/bot/repository/mocks"
	"github.com/central-university-dev/go-hhh-bot/internal/bot/service"
	"github.com/central-university-dev/go-hhh-bot/internal/domain/models"
)

const (
	channelID   int64 = -1001
	groupID     int64 = -100200
	mainAdminID int64 = 555
	senderID    int64 = 42
)

type env struct {
	mw        *handler.Middlewares
	reg       *models.Registry
	store     *repomocks.StateStore
	messenger *domainmocks.Messenger
	moderator *mocks.Moderator
	invites   *mocks.InviteLinks
}

func newEnv(t *testing.T) *env {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	e := &env{
		reg:       models.NewRegistry(channelID),
		store:     repomocks.NewStateStore(t),
		messenger: domainmocks.NewMessenger(t),
		moderator: mocks.NewModerator(t),
		invites:   mocks.NewInviteLinks(t),
	}

	e.invites.On("BackfillInviteLink", mock.Anything, mock.Anything).Maybe()

	e.mw = handler.NewMiddlewares(
		service.NewState(e.reg, e.store, logger),
		e.messenger,
		e.moderator,
		e.invites,
		map[int64]struct{}{mainAdminID: {}},
		15*time.Minute,
		logger,
	)

	return e
}

func (e *env) expectPersist() {
	e.store.On("Write", mock.Anything, e.reg).Return(nil).Once()
}

func groupCommand(name string, args ...string) *domain.Event {
	return &domain.Event{
		Kind:      domain.EventCommand,
		MessageID: 11,
		Chat:      domain.EventChat{ID: groupID, Type: "supergroup", Title: "Go"},
		From:      domain.Sender{ID: senderID, FirstName: "Вася", Username: "vasya"},
		Command:   models.Command{Name: name, Args: args},
	}
}

func TestChain_Order(t *testing.T) {
	var calls []string

	mark := func(name string) handler.Middleware {
		return func(next handler.HandlerFunc) handler.HandlerFunc {
			return func(ctx context.Context, req *domain.Request) error {
				calls = append(calls, name)
				return next(ctx, req)
			}
		}
	}

	h := handler.Chain(func(context.Context, *domain.Request) error {
		calls = append(calls, "handler")
		return nil
	}, mark("first"), mark("second"))

	require.NoError(t, h(context.Background(), &domain.Request{}))
	assert.Equal(t, []string{"first", "second", "handler"}, calls)
}

func TestCommandPipeline_ResolvesChatAndUser(t *testing.T) {
	e := newEnv(t)
	e.expectPersist()

	var seen *domain.Request

	h := e.mw.CommandPipeline(handler.Route{
		Command: "status",
		Handler: func(_ context.Context, req *domain.Request) error {
			seen = req
			return nil
		},
	})

	require.NoError(t, h(context.Background(), domain.NewRequest(groupCommand("status"))))

	require.NotNil(t, seen)
	assert.True(t, seen.ChatCreated)
	assert.Empty(t, seen.PreviousTitle)

	chat, ok := e.reg.Chat(groupID)
	require.True(t, ok)
	assert.Equal(t, "Go", chat.Title)
	assert.Equal(t, models.ChatTypeSupergroup, chat.Type)
	assert.False(t, chat.LastActivity.IsZero())

	user, ok := chat.User(senderID)
	require.True(t, ok)
	assert.Equal(t, "Вася", user.Name)
	assert.Equal(t, []int{11}, user.Messages())
	assert.Same(t, user, seen.User)
}

func TestCommandPipeline_PersistsOnError(t *testing.T) {
	e := newEnv(t)
	e.store.On("Write", mock.Anything, e.reg).Return(errors.New("redis недоступен")).Once()

	boom := errors.New("boom")

	h := e.mw.CommandPipeline(handler.Route{
		Command: "status",
		Handler: func(context.Context, *domain.Request) error { return boom },
	})

	err := h(context.Background(), domain.NewRequest(groupCommand("status")))
	assert.ErrorIs(t, err, boom)
}

func TestCommandPipeline_MainAdmin(t *testing.T) {
	t.Run("чат из списка", func(t *testing.T) {
		e := newEnv(t)
		e.expectPersist()

		called := false

		h := e.mw.CommandPipeline(handler.Route{
			Command:   "delete_chat_by_id",
			Privilege: domain.PrivilegeMainAdmin,
			Handler: func(context.Context, *domain.Request) error {
				called = true
				return nil
			},
		})

		event := groupCommand("delete_chat_by_id", "1")
		event.Chat = domain.EventChat{ID: mainAdminID, Type: "private"}

		require.NoError(t, h(context.Background(), domain.NewRequest(event)))
		assert.True(t, called)
	})

	t.Run("чужой чат: отказ и ограничение", func(t *testing.T) {
		e := newEnv(t)
		e.expectPersist()

		e.moderator.On("MuteUser", mock.Anything, groupID, mock.MatchedBy(func(u *models.User) bool {
			return u.ID == senderID
		}), 15*time.Minute, mock.Anything).Return(true).Once()
		e.messenger.On("SendMessage", mock.Anything, groupID, "Вы (Вася) не можете выполнить это действие.",
			domain.SendOptions{ReplyToMessageID: 11}).Return(1, nil).Once()

		h := e.mw.CommandPipeline(handler.Route{
			Command:   "delete_chat_by_id",
			Privilege: domain.PrivilegeMainAdmin,
			Handler: func(context.Context, *domain.Request) error {
				t.Fatal("обработчик не должен вызываться")
				return nil
			},
		})

		require.NoError(t, h(context.Background(), domain.NewRequest(groupCommand("delete_chat_by_id", "1"))))
	})
}

func TestCommandPipeline_ChatAdmin(t *testing.T) {
	route := func(called *bool) handler.Route {
		return handler.Route{
			Command:   "mute",
			Privilege: domain.PrivilegeChatAdmin,
			Handler: func(context.Context, *domain.Request) error {
				*called = true
				return nil
			},
		}
	}

	t.Run("администратор", func(t *testing.T) {
		e := newEnv(t)
		e.expectPersist()
		e.messenger.On("GetChatAdministrators", mock.Anything, groupID).
			Return([]domain.ChatMember{{UserID: senderID, Status: "administrator"}}, nil).Once()

		called := false
		require.NoError(t, e.mw.CommandPipeline(route(&called))(context.Background(), domain.NewRequest(groupCommand("mute"))))
		assert.True(t, called)
	})

	t.Run("личный чат", func(t *testing.T) {
		e := newEnv(t)
		e.expectPersist()

		event := groupCommand("mute")
		event.Chat = domain.EventChat{ID: senderID, Type: "private"}

		called := false
		require.NoError(t, e.mw.CommandPipeline(route(&called))(context.Background(), domain.NewRequest(event)))
		assert.True(t, called)
	})

	t.Run("анонимный администратор", func(t *testing.T) {
		e := newEnv(t)
		e.expectPersist()

		event := groupCommand("mute")
		event.From = domain.Sender{ID: 1087968824, Username: "GroupAnonymousBot", FirstName: "Group", IsBot: true}

		called := false
		require.NoError(t, e.mw.CommandPipeline(route(&called))(context.Background(), domain.NewRequest(event)))
		assert.True(t, called)

		chat, _ := e.reg.Chat(groupID)
		assert.Equal(t, 0, chat.UserCount())
	})

	t.Run("не администратор", func(t *testing.T) {
		e := newEnv(t)
		e.expectPersist()
		e.messenger.On("GetChatAdministrators", mock.Anything, groupID).
			Return([]domain.ChatMember{{UserID: 1, Status: "creator"}}, nil).Once()
		e.messenger.On("SendMessage", mock.Anything, groupID, "Вы (Вася) не можете выполнить это действие.", mock.Anything).
			Return(1, nil).Once()

		called := false
		require.NoError(t, e.mw.CommandPipeline(route(&called))(context.Background(), domain.NewRequest(groupCommand("mute"))))
		assert.False(t, called)
	})

	t.Run("список администраторов недоступен", func(t *testing.T) {
		e := newEnv(t)
		e.expectPersist()
		e.messenger.On("GetChatAdministrators", mock.Anything, groupID).Return(nil, errors.New("timeout")).Once()
		e.messenger.On("SendMessage", mock.Anything, groupID, mock.Anything, mock.Anything).Return(1, nil).Once()

		called := false
		require.NoError(t, e.mw.CommandPipeline(route(&called))(context.Background(), domain.NewRequest(groupCommand("mute"))))
		assert.False(t, called)
	})
}

func TestResolveChat_KeepsExistingTitle(t *testing.T) {
	e := newEnv(t)

	chat, _ := e.reg.GetOrCreate(groupID)
	chat.Title = "Старое"

	event := groupCommand("status")
	event.Chat.Title = "Новое"

	var seen *domain.Request

	h := handler.Chain(func(_ context.Context, req *domain.Request) error {
		seen = req
		return nil
	}, e.mw.ResolveChat())

	require.NoError(t, h(context.Background(), domain.NewRequest(event)))

	assert.False(t, seen.ChatCreated)
	assert.Equal(t, "Старое", seen.PreviousTitle)
	assert.Equal(t, "Старое", chat.Title)
}
