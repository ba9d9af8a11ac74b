package redis

import (
	"bytes"
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/go-faster/errors"
	goredis "github.com/go-redis/redis/v8"

	"github.com/central-university-dev/go-hhh-bot/internal/bot/state"
	"github.com/central-university-dev/go-hhh-bot/internal/common/metrics"
	customerrors "github.com/central-university-dev/go-hhh-bot/internal/domain/errors"
	"github.com/central-university-dev/go-hhh-bot/internal/domain/models"
)

const (
	Backend = "redis"

	fieldDocument = "document"
	fieldVersion  = "version"
)

// StateStore keeps the document in a Redis hash next to a version counter.
// Writes are compare-and-set on the version under WATCH/MULTI.
type StateStore struct {
	client           *goredis.Client
	key              string
	defaultChannelID int64
	logger           *slog.Logger

	mu          sync.Mutex
	version     int64
	lastPayload []byte
}

func NewStateStore(ctx context.Context, addr, password string, db int, key string,
	defaultChannelID int64, logger *slog.Logger) (*StateStore, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "подключение к Redis")
	}

	logger.Info("Соединение с Redis успешно установлено", "key", key)

	return &StateStore{
		client:           client,
		key:              key,
		defaultChannelID: defaultChannelID,
		logger:           logger,
	}, nil
}

func (s *StateStore) Read(ctx context.Context) (*models.Registry, error) {
	start := time.Now()
	defer func() { metrics.RecordStateOperation(Backend, "read", time.Since(start)) }()

	values, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "чтение состояния из Redis (%s)", s.key)
	}

	version, err := parseVersion(values[fieldVersion])
	if err != nil {
		return nil, err
	}

	reg, err := state.Decode([]byte(values[fieldDocument]), s.defaultChannelID, s.logger)
	if err != nil {
		return nil, errors.Wrapf(err, "разбор состояния из Redis (%s)", s.key)
	}

	s.mu.Lock()
	s.version = version
	s.lastPayload = state.Encode(reg)
	s.mu.Unlock()

	s.logger.Debug("Состояние загружено из Redis", "chats", reg.Len(), "version", version)

	return reg, nil
}

func (s *StateStore) Write(ctx context.Context, reg *models.Registry) error {
	start := time.Now()
	defer func() { metrics.RecordStateOperation(Backend, "write", time.Since(start)) }()

	payload := state.Encode(reg)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastPayload != nil && bytes.Equal(payload, s.lastPayload) {
		metrics.RecordStateWrite(Backend, "skipped")
		return nil
	}

	expected := s.version

	err := s.client.Watch(ctx, func(tx *goredis.Tx) error {
		raw, err := tx.HGet(ctx, s.key, fieldVersion).Result()
		if err != nil && !errors.Is(err, goredis.Nil) {
			return errors.Wrap(err, "чтение версии состояния")
		}

		current, err := parseVersion(raw)
		if err != nil {
			return err
		}

		if current != expected {
			return &customerrors.ErrStateConflict{Backend: Backend, Version: expected}
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.HSet(ctx, s.key, fieldDocument, payload, fieldVersion, expected+1)
			return nil
		})

		return err
	}, s.key)

	if errors.Is(err, goredis.TxFailedErr) {
		err = &customerrors.ErrStateConflict{Backend: Backend, Version: expected}
	}

	var conflict *customerrors.ErrStateConflict
	if errors.As(err, &conflict) {
		metrics.RecordStateWrite(Backend, "conflict")
		return err
	}

	if err != nil {
		metrics.RecordStateWrite(Backend, metrics.StatusError)
		return errors.Wrapf(err, "запись состояния в Redis (%s)", s.key)
	}

	s.lastPayload = payload

	if err := s.refreshLocked(ctx); err != nil {
		s.logger.Warn("Не удалось обновить версию состояния после записи", "error", err)
		s.version = expected + 1
	}

	metrics.RecordStateWrite(Backend, "written")

	return nil
}

// Refresh reloads the version token without touching the registry.
func (s *StateStore) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.refreshLocked(ctx)
}

func (s *StateStore) refreshLocked(ctx context.Context) error {
	raw, err := s.client.HGet(ctx, s.key, fieldVersion).Result()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return errors.Wrap(err, "чтение версии состояния")
	}

	version, err := parseVersion(raw)
	if err != nil {
		return err
	}

	s.version = version

	return nil
}

func (s *StateStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *StateStore) Close() error {
	return s.client.Close()
}

func parseVersion(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "некорректная версия состояния %q", raw)
	}

	return v, nil
}
