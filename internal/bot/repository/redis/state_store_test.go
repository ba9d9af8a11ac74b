package redis_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/central-university-dev/go-hhh-bot/internal/bot/repository"
	"github.com/central-university-dev/go-hhh-bot/internal/bot/repository/redis"
	customerrors "github.com/central-university-dev/go-hhh-bot/internal/domain/errors"
	"github.com/central-university-dev/go-hhh-bot/internal/domain/models"
)

func startRedis(t *testing.T) string {
	t.Helper()

	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Ошибка при остановке Redis контейнера: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	return endpoint
}

func TestRedisStateStore(t *testing.T) {
	if testing.Short() {
		t.Skip("Пропускаем интеграционный тест в коротком режиме")
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := context.Background()
	addr := startRedis(t)

	first, err := redis.NewStateStore(ctx, addr, "", 0, "hhh:state", -100, logger)
	require.NoError(t, err)

	defer first.Close()

	second, err := redis.NewStateStore(ctx, addr, "", 0, "hhh:state", -100, logger)
	require.NoError(t, err)

	defer second.Close()

	t.Run("пустой ключ даёт пустой реестр", func(t *testing.T) {
		reg, err := first.Read(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, reg.Len())
		assert.Equal(t, int64(-100), reg.Directory.ChannelID)
	})

	reg := models.NewRegistry(-100)
	chat, _ := reg.GetOrCreate(-1)
	chat.Title = "Первая"

	t.Run("запись и чтение", func(t *testing.T) {
		require.NoError(t, first.Write(ctx, reg))

		loaded, err := second.Read(ctx)
		require.NoError(t, err)
		got, ok := loaded.Chat(-1)
		require.True(t, ok)
		assert.Equal(t, "Первая", got.Title)
	})

	t.Run("устаревшая версия даёт конфликт", func(t *testing.T) {
		other, err := second.Read(ctx)
		require.NoError(t, err)

		reg.GetOrCreate(-2)
		require.NoError(t, first.Write(ctx, reg))

		other.GetOrCreate(-3)
		err = second.Write(ctx, other)

		var conflict *customerrors.ErrStateConflict
		assert.True(t, errors.As(err, &conflict))
	})

	t.Run("повтор после конфликта", func(t *testing.T) {
		retrying := repository.WithConflictRetry(second, redis.Backend, logger)

		other := models.NewRegistry(-100)
		other.GetOrCreate(-4)
		require.NoError(t, retrying.Write(ctx, other))

		loaded, err := first.Read(ctx)
		require.NoError(t, err)
		_, ok := loaded.Chat(-4)
		assert.True(t, ok)
	})
}
