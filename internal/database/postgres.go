package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"

	// postgres driver для golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	// file source для миграций.
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	maxInt32 = 1<<31 - 1

	defaultConnectTimeout = 5 * time.Second
)

type Options struct {
	URL            string
	MaxConns       int
	ConnectTimeout time.Duration
}

// PostgresDB owns the pool behind the PostgreSQL state backend.
type PostgresDB struct {
	Pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewPostgresDB(ctx context.Context, opts Options, logger *slog.Logger) (*PostgresDB, error) {
	poolConfig, err := pgxpool.ParseConfig(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("ошибка при парсинге строки подключения к PostgreSQL: %w", err)
	}

	if opts.MaxConns > 0 {
		poolConfig.MaxConns = int32(min(opts.MaxConns, maxInt32)) //nolint:gosec // ограничено maxInt32
	}

	poolConfig.ConnConfig.ConnectTimeout = opts.ConnectTimeout
	if poolConfig.ConnConfig.ConnectTimeout <= 0 {
		poolConfig.ConnConfig.ConnectTimeout = defaultConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании пула соединений PostgreSQL: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка при проверке соединения с PostgreSQL: %w", err)
	}

	logger.Info("Соединение с PostgreSQL успешно установлено", "max_conns", poolConfig.MaxConns)

	return &PostgresDB{
		Pool:   pool,
		logger: logger,
	}, nil
}

// RunMigrations applies every pending migration from sourceURL (file://...).
// A dirty schema is reported as an error and left for manual repair.
func RunMigrations(sourceURL, databaseURL string, logger *slog.Logger) error {
	m, err := migrate.New(sourceURL, databaseURL)
	if err != nil {
		return fmt.Errorf("не удалось создать инстанс миграций: %w", err)
	}

	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			logger.Warn("Ошибка при закрытии мигратора", "source_error", srcErr, "db_error", dbErr)
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("не удалось применить миграции: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("не удалось получить версию схемы: %w", err)
	}

	if dirty {
		return fmt.Errorf("схема базы данных в состоянии dirty (версия %d)", version)
	}

	logger.Info("Миграции применены", "version", version)

	return nil
}

func (db *PostgresDB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

func (db *PostgresDB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		db.logger.Info("Соединение с PostgreSQL закрыто")
	}
}
