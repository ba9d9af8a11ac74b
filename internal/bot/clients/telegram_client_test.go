package clients_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/central-university-dev/go-hhh-bot/internal/bot/clients"
	"github.com/central-university-dev/go-hhh-bot/internal/bot/domain"
	customerrors "github.com/central-university-dev/go-hhh-bot/internal/domain/errors"
)

type fakeTelegram struct {
	mu        sync.Mutex
	responses map[string]string
	requests  map[string][]map[string]string
}

func newFakeTelegram(t *testing.T) (*fakeTelegram, *httptest.Server) {
	t.Helper()

	fake := &fakeTelegram{
		responses: map[string]string{
			"getMe": `{"ok":true,"result":{"id":42,"is_bot":true,"first_name":"HHH","username":"hhh_bot"}}`,
		},
		requests: make(map[string][]map[string]string),
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method := path.Base(r.URL.Path)

		_ = r.ParseMultipartForm(1 << 20)

		params := make(map[string]string)
		for key, values := range r.Form {
			params[key] = values[0]
		}

		fake.mu.Lock()
		fake.requests[method] = append(fake.requests[method], params)
		body, ok := fake.responses[method]
		fake.mu.Unlock()

		if !ok {
			body = `{"ok":true,"result":true}`
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))

	t.Cleanup(server.Close)

	return fake, server
}

func (f *fakeTelegram) respond(method, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.responses[method] = body
}

func (f *fakeTelegram) calls(method string) []map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.requests[method]
}

func newClient(t *testing.T, server *httptest.Server) *clients.TelegramClient {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	client, err := clients.NewTelegramClient("123:secret", server.URL+"/bot%s/%s", server.Client(), nil, logger)
	require.NoError(t, err)

	return client
}

func TestTelegramClient_Self(t *testing.T) {
	_, server := newFakeTelegram(t)
	client := newClient(t, server)

	self := client.Self()
	assert.Equal(t, int64(42), self.UserID)
	assert.Equal(t, "hhh_bot", self.Username)
	assert.True(t, self.IsBot)
}

func TestTelegramClient_SendMessage(t *testing.T) {
	fake, server := newFakeTelegram(t)
	fake.respond("sendMessage", `{"ok":true,"result":{"message_id":77,"date":0,"chat":{"id":-100,"type":"channel"}}}`)

	client := newClient(t, server)

	id, err := client.SendMessage(context.Background(), -100, "<b>hi</b>", domain.SendOptions{
		ParseMode:             domain.ParseModeHTML,
		DisableWebPagePreview: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 77, id)

	calls := fake.calls("sendMessage")
	require.Len(t, calls, 1)
	assert.Equal(t, "-100", calls[0]["chat_id"])
	assert.Equal(t, "HTML", calls[0]["parse_mode"])
	assert.Equal(t, "true", calls[0]["disable_web_page_preview"])
}

func TestTelegramClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		description string
		check       func(t *testing.T, err error)
	}{
		{
			name:        "сообщение не найдено",
			description: "Bad Request: message to edit not found",
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, &customerrors.ErrMessageGone{})
			},
		},
		{
			name:        "сообщение нельзя изменить",
			description: "Bad Request: message can't be edited",
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, &customerrors.ErrMessageGone{})
			},
		},
		{
			name:        "некорректный идентификатор",
			description: "Bad Request: MESSAGE_ID_INVALID",
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, &customerrors.ErrMessageGone{})
			},
		},
		{
			name:        "текст не изменился",
			description: "Bad Request: message is not modified: specified new message content is the same",
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, &customerrors.ErrMessageNotModified{})
			},
		},
		{
			name:        "прочие ошибки",
			description: "Forbidden: bot is not a member of the channel chat",
			check: func(t *testing.T, err error) {
				var apiErr *customerrors.ErrTelegramAPI
				assert.ErrorAs(t, err, &apiErr)
				assert.Equal(t, "editMessageText", apiErr.Operation)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake, server := newFakeTelegram(t)
			fake.respond("editMessageText", `{"ok":false,"error_code":400,"description":"`+tt.description+`"}`)

			client := newClient(t, server)

			err := client.EditMessageText(context.Background(), -100, 5, "text", domain.SendOptions{})
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestTelegramClient_GetChatAdministrators(t *testing.T) {
	fake, server := newFakeTelegram(t)
	fake.respond("getChatAdministrators", `{"ok":true,"result":[
		{"user":{"id":1,"is_bot":false,"first_name":"A","username":"alice"},"status":"creator"},
		{"user":{"id":2,"is_bot":true,"first_name":"G","username":"GroupAnonymousBot"},"status":"administrator"}
	]}`)

	client := newClient(t, server)

	admins, err := client.GetChatAdministrators(context.Background(), -1)
	require.NoError(t, err)
	require.Len(t, admins, 2)

	assert.Equal(t, domain.ChatMember{UserID: 1, Username: "alice", Status: "creator"}, admins[0])
	assert.True(t, admins[1].IsBot)
}

func TestTelegramClient_GetChatInfo(t *testing.T) {
	fake, server := newFakeTelegram(t)
	fake.respond("getChat", `{"ok":true,"result":{"id":-5,"type":"supergroup","title":"Группа","description":"описание",
		"photo":{"small_file_id":"s","small_file_unique_id":"su","big_file_id":"b","big_file_unique_id":"bu"}}}`)

	client := newClient(t, server)

	info, err := client.GetChatInfo(context.Background(), -5)
	require.NoError(t, err)

	assert.Equal(t, "Группа", info.Title)
	assert.Equal(t, "supergroup", info.Type)
	assert.Equal(t, "описание", info.Description)
	assert.True(t, info.HasPhoto)
}

func TestTelegramClient_RestrictAndBan(t *testing.T) {
	fake, server := newFakeTelegram(t)
	client := newClient(t, server)

	until := time.Unix(1_700_000_000, 0)

	require.NoError(t, client.RestrictMember(context.Background(), -1, 7, domain.MutedPermissions(), until))
	require.NoError(t, client.BanMember(context.Background(), -1, 7, until))

	restrict := fake.calls("restrictChatMember")
	require.Len(t, restrict, 1)
	assert.Equal(t, "7", restrict[0]["user_id"])
	assert.Equal(t, "1700000000", restrict[0]["until_date"])

	ban := fake.calls("banChatMember")
	require.Len(t, ban, 1)
	assert.Equal(t, "-1", ban[0]["chat_id"])
}

func TestTelegramClient_CreateInviteLink(t *testing.T) {
	fake, server := newFakeTelegram(t)
	fake.respond("exportChatInviteLink", `{"ok":true,"result":"https://t.me/+abc"}`)

	client := newClient(t, server)

	link, err := client.CreateInviteLink(context.Background(), -1)
	require.NoError(t, err)
	assert.Equal(t, "https://t.me/+abc", link)
}

func TestTelegramClient_PinAndUnpin(t *testing.T) {
	fake, server := newFakeTelegram(t)
	client := newClient(t, server)

	require.NoError(t, client.PinMessage(context.Background(), -100, 3, true))
	require.NoError(t, client.UnpinMessage(context.Background(), -100, 3))

	pin := fake.calls("pinChatMessage")
	require.Len(t, pin, 1)
	assert.Equal(t, "3", pin[0]["message_id"])
	assert.Equal(t, "true", pin[0]["disable_notification"])

	require.Len(t, fake.calls("unpinChatMessage"), 1)
}
