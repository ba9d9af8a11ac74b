package service_test

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
	"github.com/central-university-dev/go-hhh-bot/internal/bot/service"
	"github.com/central-university-dev/go-hhh-bot/internal/bot/worker"
	customerrors "github.com/central-university-dev/go-hhh-bot/internal/domain/errors"
	"github.com/central-university-dev/go-hhh-bot/internal/domain/models"
)

func TestBotService_MuteSchedulesFlagReset(t *testing.T) {
	f := newFixture(t)
	chat := f.group(groupID, "Go")
	user := chat.AddUser(models.NewUser(userID, "Вася"))

	var scheduled worker.Task

	f.messenger.On("RestrictMember", mock.Anything, groupID, userID, domain.MutedPermissions(), f.now.Add(30*time.Minute)).
		Return(nil).Once()
	f.messenger.On("SendMessage", mock.Anything, groupID, "Вася ограничен на 0:30:00.\nПричина: флуд в чате", mock.Anything).
		Return(1, nil).Once()
	f.scheduler.On("Schedule", 30*time.Minute, mock.AnythingOfType("worker.Task")).
		Run(func(args mock.Arguments) { scheduled = args.Get(1).(worker.Task) }).Once()

	req := commandRequest(chat, nil, "mute", "вася", "30", "флуд", "в", "чате")
	require.NoError(t, f.svc.Mute(context.Background(), req))
	assert.True(t, user.Muted)

	f.store.On("Write", mock.Anything, f.reg).Return(nil).Once()

	require.NotNil(t, scheduled.Run)
	require.NoError(t, scheduled.Run(context.Background()))
	assert.False(t, user.Muted)
}

func TestBotService_MuteDefaultsAndAlreadyMuted(t *testing.T) {
	f := newFixture(t)
	chat := f.group(groupID, "Go")
	user := chat.AddUser(models.NewUser(userID, "Вася"))

	f.messenger.On("RestrictMember", mock.Anything, groupID, userID, domain.MutedPermissions(), f.now.Add(15*time.Minute)).
		Return(nil).Once()
	f.messenger.On("SendMessage", mock.Anything, groupID, "Вася ограничен на 0:15:00.", mock.Anything).Return(1, nil).Once()
	f.scheduler.On("Schedule", 15*time.Minute, mock.Anything).Once()

	require.NoError(t, f.svc.Mute(context.Background(), commandRequest(chat, nil, "mute", "@Вася")))
	assert.True(t, user.Muted)

	// Повторная команда не обращается к Telegram.
	require.NoError(t, f.svc.Mute(context.Background(), commandRequest(chat, nil, "mute", "Вася")))
}

func TestBotService_MuteAfterRestart(t *testing.T) {
	f := newFixture(t)
	chat := f.group(groupID, "Go")
	user := chat.AddUser(models.NewUser(userID, "Вася"))
	user.Muted = true

	f.store.On("Read", mock.Anything).Return(f.reg, nil).Once()

	_, err := service.Load(context.Background(), f.store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.False(t, user.Muted)

	f.messenger.On("RestrictMember", mock.Anything, groupID, userID, domain.MutedPermissions(), f.now.Add(time.Minute)).
		Return(nil).Once()
	f.messenger.On("SendMessage", mock.Anything, groupID, "Вася ограничен на 0:01:00.", mock.Anything).Return(1, nil).Once()
	f.scheduler.On("Schedule", time.Minute, mock.Anything).Once()

	assert.True(t, f.svc.MuteUser(context.Background(), groupID, user, time.Minute, ""))
	assert.True(t, user.Muted)
}

func TestBotService_MuteChatCreator(t *testing.T) {
	f := newFixture(t)
	chat := f.group(groupID, "Go")
	user := chat.AddUser(models.NewUser(userID, "Бо_сс*"))

	apiErr := &customerrors.ErrTelegramAPI{Operation: "restrictChatMember", Cause: errors.New("Bad Request: can't demote chat creator")}

	f.messenger.On("RestrictMember", mock.Anything, groupID, userID, mock.Anything, mock.Anything).Return(apiErr).Once()
	f.messenger.On("SendMessage", mock.Anything, groupID,
		"Пользователя Бо_сс* не удалось ограничить: Can't demote chat creator. Позор Бо_сс*",
		domain.SendOptions{}).Return(1, nil).Once()

	assert.False(t, f.svc.MuteUser(context.Background(), groupID, user, time.Minute, ""))
	assert.False(t, user.Muted)
}

func TestBotService_MuteUnknownUser(t *testing.T) {
	f := newFixture(t)
	chat := f.group(groupID, "Go")

	f.expectReply(groupID, "Не удалось ограничить Петя (пользователь не найден в этом чате)")

	require.NoError(t, f.svc.Mute(context.Background(), commandRequest(chat, nil, "mute", "Петя")))
}

func TestBotService_UnmuteAll(t *testing.T) {
	f := newFixture(t)
	chat := f.group(groupID, "Go")
	first := chat.AddUser(models.NewUser(1, "A"))
	second := chat.AddUser(models.NewUser(2, "B"))
	first.Muted, second.Muted = true, true

	f.messenger.On("RestrictMember", mock.Anything, groupID, int64(1), domain.DefaultPermissions(), time.Time{}).Return(nil).Once()
	f.messenger.On("RestrictMember", mock.Anything, groupID, int64(2), domain.DefaultPermissions(), time.Time{}).
		Return(errors.New("bad request")).Once()

	require.NoError(t, f.svc.Unmute(context.Background(), commandRequest(chat, nil, "unmute", "@all")))

	assert.False(t, first.Muted)
	assert.True(t, second.Muted)
}

func TestBotService_UnmuteSingle(t *testing.T) {
	f := newFixture(t)
	chat := f.group(groupID, "Go")
	user := chat.AddUser(models.NewUser(userID, "Вася"))
	user.Muted = true

	f.messenger.On("RestrictMember", mock.Anything, groupID, userID, domain.DefaultPermissions(), time.Time{}).Return(nil).Once()
	f.expectReply(groupID, "Ограничение с вася снято")

	require.NoError(t, f.svc.Unmute(context.Background(), commandRequest(chat, nil, "unmute", "вася")))
	assert.False(t, user.Muted)
}

func TestBotService_Kick(t *testing.T) {
	f := newFixture(t)
	chat := f.group(groupID, "Go")
	chat.AddUser(models.NewUser(userID, "Вася"))

	f.messenger.On("BanMember", mock.Anything, groupID, userID, f.now.Add(time.Minute)).Return(nil).Once()
	f.expectReply(groupID, "Вася удалён из чата, причина: спам.")

	require.NoError(t, f.svc.Kick(context.Background(), commandRequest(chat, nil, "kick", "Вася", "спам")))

	_, ok := chat.User(userID)
	assert.False(t, ok)
}

func TestBotService_KickFailureKeepsUser(t *testing.T) {
	f := newFixture(t)
	chat := f.group(groupID, "Go")
	chat.AddUser(models.NewUser(userID, "Вася"))

	f.messenger.On("BanMember", mock.Anything, groupID, userID, mock.Anything).Return(errors.New("not enough rights")).Once()
	f.expectReply(groupID, "Не удалось удалить Вася из чата: not enough rights")

	require.NoError(t, f.svc.Kick(context.Background(), commandRequest(chat, nil, "kick", "Вася")))

	_, ok := chat.User(userID)
	assert.True(t, ok)
}

func TestBotService_ResetMutedIgnoresUnknownChat(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.ResetMuted(context.Background(), groupID, userID))
}
