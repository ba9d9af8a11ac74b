package repository

import (
	"context"
	"log/slog"

	"github.com/central-university-dev/go-hhh-bot/internal/bot/repository/file"
	"github.com/central-university-dev/go-hhh-bot/internal/bot/repository/postgres"
	"github.com/central-university-dev/go-hhh-bot/internal/bot/repository/redis"
	"github.com/central-university-dev/go-hhh-bot/internal/config"
	"github.com/central-university-dev/go-hhh-bot/internal/database"
	"github.com/central-university-dev/go-hhh-bot/internal/domain/errors"
	"github.com/central-university-dev/go-hhh-bot/pkg/txs"
)

// Backend is a ready state store together with its lifecycle hooks.
type Backend struct {
	Name  string
	Store StateStore
	Ping  func(ctx context.Context) error
	Close func() error
}

type Factory struct {
	config *config.Config
	logger *slog.Logger
}

func NewFactory(config *config.Config, logger *slog.Logger) *Factory {
	return &Factory{
		config: config,
		logger: logger,
	}
}

func (f *Factory) CreateStateStore(ctx context.Context) (*Backend, error) {
	channelID := f.config.DirectoryChannelID

	switch f.config.StateBackend {
	case config.FileBackend:
		f.logger.Info("Создание файлового хранилища состояния", "path", f.config.StateFilePath)

		store := file.NewStateStore(f.config.StateFilePath, channelID, f.logger)

		return &Backend{
			Name:  file.Backend,
			Store: WithConflictRetry(store, file.Backend, f.logger),
			Ping:  func(context.Context) error { return nil },
			Close: func() error { return nil },
		}, nil
	case config.RedisBackend:
		f.logger.Info("Создание Redis хранилища состояния", "key", f.config.RedisStateKey)

		store, err := redis.NewStateStore(ctx, f.config.RedisURL, f.config.RedisPassword, f.config.RedisDB,
			f.config.RedisStateKey, channelID, f.logger)
		if err != nil {
			return nil, err
		}

		return &Backend{
			Name:  redis.Backend,
			Store: WithConflictRetry(store, redis.Backend, f.logger),
			Ping:  store.Ping,
			Close: store.Close,
		}, nil
	case config.PostgresBackend:
		f.logger.Info("Создание PostgreSQL хранилища состояния", "row", f.config.DatabaseStateID)

		if err := database.RunMigrations(f.config.MigrationsPath, f.config.DatabaseURL, f.logger); err != nil {
			return nil, err
		}

		db, err := database.NewPostgresDB(ctx, database.Options{
			URL:      f.config.DatabaseURL,
			MaxConns: f.config.DatabaseMaxConn,
		}, f.logger)
		if err != nil {
			return nil, err
		}

		store := postgres.NewStateStore(db, txs.NewTxManager(db.Pool, f.logger), f.config.DatabaseStateID,
			channelID, f.logger)

		return &Backend{
			Name:  postgres.Backend,
			Store: WithConflictRetry(store, postgres.Backend, f.logger),
			Ping:  db.Ping,
			Close: func() error {
				db.Close()
				return nil
			},
		}, nil
	default:
		return nil, &errors.ErrUnknownStateBackend{Backend: string(f.config.StateBackend)}
	}
}
