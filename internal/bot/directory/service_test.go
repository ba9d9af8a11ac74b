package directory_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/central-university-dev/go-hhh-bot/internal/bot/directory"
	"github.com/central-university-dev/go-hhh-bot/internal/bot/domain/mocks"
	"github.com/central-university-dev/go-hhh-bot/internal/bot/events"
	eventmocks "github.com/central-university-dev/go-hhh-bot/internal/bot/events/mocks"
	"github.com/central-university-dev/go-hhh-bot/internal/domain/models"
)

func newService(t *testing.T) (*directory.Service, *mocks.Messenger, *eventmocks.Publisher) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	messenger := mocks.NewMessenger(t)
	publisher := eventmocks.NewPublisher(t)

	svc := directory.NewService(directory.NewRenderer(), directory.NewReconciler(messenger, logger), publisher, logger)

	return svc, messenger, publisher
}

func TestChange_Text(t *testing.T) {
	chat := models.NewChat(1)
	chat.Title = "Новое"

	assert.Equal(t, "Добавлена Новое", directory.Added(chat).Text())
	assert.Equal(t, "Старое -> Новое", directory.Renamed(chat, "Старое").Text())
	assert.Equal(t, "Удалена Новое", directory.Removed(chat).Text())
}

func TestService_UpdateRecordsChangeAndPublishes(t *testing.T) {
	svc, messenger, publisher := newService(t)
	ctx := context.Background()

	reg := models.NewRegistry(channel)
	chat, _ := reg.GetOrCreate(1)
	chat.Title = "Alpha"
	chat.Type = models.ChatTypeGroup

	expected := "Всего групп: 1\nAlpha\n========\nДобавлена Alpha"

	messenger.On("SendMessage", mock.Anything, channel, expected, htmlOpts).Return(5, nil).Once()
	messenger.On("PinMessage", mock.Anything, channel, 5, true).Return(nil).Once()
	publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e events.ChangeEvent) bool {
		return e.Kind == events.ChangeAdded && e.ChatID == 1 && e.TotalChats == 1
	})).Return(nil).Once()

	require.NoError(t, svc.Update(ctx, reg, directory.Added(chat)))

	assert.Equal(t, []string{"Добавлена Alpha"}, reg.Directory.RecentChanges)
	assert.Equal(t, []int{5}, reg.Directory.MessageIDs)
}

func TestService_EscapesRecentChanges(t *testing.T) {
	svc, messenger, publisher := newService(t)
	ctx := context.Background()

	reg := models.NewRegistry(channel)
	chat, _ := reg.GetOrCreate(1)
	chat.Title = "I <3 Go & co"
	chat.Type = models.ChatTypeGroup

	expected := "Всего групп: 1\nI &lt;3 Go &amp; co\n========\nДобавлена I &lt;3 Go &amp; co"

	messenger.On("SendMessage", mock.Anything, channel, expected, htmlOpts).Return(5, nil).Once()
	messenger.On("PinMessage", mock.Anything, channel, 5, true).Return(nil).Once()
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Once()

	require.NoError(t, svc.Update(ctx, reg, directory.Added(chat)))

	assert.Equal(t, []string{"Добавлена I <3 Go & co"}, reg.Directory.RecentChanges)
}

func TestService_RenewSendsFromScratch(t *testing.T) {
	svc, messenger, _ := newService(t)
	ctx := context.Background()

	reg := models.NewRegistry(channel)
	reg.Directory.MessageIDs = []int{1}
	reg.Directory.PinnedMessageID = 1

	messenger.On("SendMessage", mock.Anything, channel, "Всего групп: 0\n========\n", htmlOpts).Return(2, nil).Once()
	messenger.On("UnpinMessage", mock.Anything, channel, 1).Return(nil).Once()
	messenger.On("PinMessage", mock.Anything, channel, 2, true).Return(nil).Once()

	require.NoError(t, svc.Renew(ctx, reg))

	assert.Equal(t, []int{2}, reg.Directory.MessageIDs)
	assert.Equal(t, 2, reg.Directory.PinnedMessageID)
}

func TestService_PublishFailureDoesNotFailUpdate(t *testing.T) {
	svc, messenger, publisher := newService(t)
	ctx := context.Background()

	reg := models.NewRegistry(channel)
	reg.Directory.MessageIDs = []int{9}
	chat := models.NewChat(3)
	chat.Title = "Gone"

	messenger.On("EditMessageText", mock.Anything, channel, 9, mock.Anything, htmlOpts).Return(nil).Once()
	publisher.On("Publish", mock.Anything, mock.Anything).Return(assert.AnError).Once()

	require.NoError(t, svc.Update(ctx, reg, directory.Removed(chat)))
	assert.Equal(t, []string{"Удалена Gone"}, reg.Directory.RecentChanges)
}
