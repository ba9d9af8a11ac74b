package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/central-university-dev/go-hhh-bot/internal/bot/repository"
	"github.com/central-university-dev/go-hhh-bot/internal/bot/repository/postgres"
	"github.com/central-university-dev/go-hhh-bot/internal/database"
	customerrors "github.com/central-university-dev/go-hhh-bot/internal/domain/errors"
	"github.com/central-university-dev/go-hhh-bot/internal/domain/models"
	"github.com/central-university-dev/go-hhh-bot/pkg/txs"
)

func startPostgres(t *testing.T, logger *slog.Logger) *database.PostgresDB {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Ошибка при остановке PostgreSQL контейнера: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	dbURL := fmt.Sprintf("postgres://testuser:testpass@%s/testdb?sslmode=disable", endpoint)

	require.NoError(t, database.RunMigrations("file://../../../../migrations", dbURL, logger))

	db, err := database.NewPostgresDB(ctx, database.Options{URL: dbURL, MaxConns: 4}, logger)
	require.NoError(t, err)

	t.Cleanup(db.Close)

	return db
}

func TestPostgresStateStore(t *testing.T) {
	if testing.Short() {
		t.Skip("Пропуск интеграционного теста (используйте -short=false)")
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx := context.Background()

	db := startPostgres(t, logger)
	txManager := txs.NewTxManager(db.Pool, logger)

	first := postgres.NewStateStore(db, txManager, "main", -100, logger)
	second := postgres.NewStateStore(db, txManager, "main", -100, logger)

	reg, err := first.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, reg.Len())

	chat, _ := reg.GetOrCreate(-5)
	chat.Title = "Postgres"
	chat.Type = models.ChatTypeGroup
	reg.Directory.RecentChanges = []string{"Добавлена Postgres"}

	require.NoError(t, first.Write(ctx, reg))

	loaded, err := second.Read(ctx)
	require.NoError(t, err)
	got, ok := loaded.Chat(-5)
	require.True(t, ok)
	assert.Equal(t, "Postgres", got.Title)
	assert.Equal(t, []string{"Добавлена Postgres"}, loaded.Directory.RecentChanges)

	reg.GetOrCreate(-6)
	require.NoError(t, first.Write(ctx, reg))

	loaded.GetOrCreate(-7)
	err = second.Write(ctx, loaded)

	var conflict *customerrors.ErrStateConflict
	require.True(t, errors.As(err, &conflict), "ожидался конфликт версий, получено: %v", err)

	retrying := repository.WithConflictRetry(second, postgres.Backend, logger)
	require.NoError(t, retrying.Write(ctx, loaded))

	final, err := first.Read(ctx)
	require.NoError(t, err)
	_, ok = final.Chat(-7)
	assert.True(t, ok)

	_, ok = final.Chat(-6)
	assert.False(t, ok, "повторная запись перезаписывает документ целиком")
}
