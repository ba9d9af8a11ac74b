package postgres

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/central-university-dev/go-hhh-bot/internal/bot/state"
	"github.com/central-university-dev/go-hhh-bot/internal/common/metrics"
	"github.com/central-university-dev/go-hhh-bot/internal/database"
	customerrors "github.com/central-university-dev/go-hhh-bot/internal/domain/errors"
	"github.com/central-university-dev/go-hhh-bot/internal/domain/models"
	"github.com/central-university-dev/go-hhh-bot/pkg/txs"
)

const (
	Backend = "postgres"

	table = "bot_state"
)

type TxManager interface {
	WithTransaction(ctx context.Context, txFunc func(ctx context.Context) error) error
}

// StateStore keeps the document in one row of bot_state. The version column
// is compared and bumped in the same UPDATE.
type StateStore struct {
	db               *database.PostgresDB
	txManager        TxManager
	sq               sq.StatementBuilderType
	rowID            string
	defaultChannelID int64
	logger           *slog.Logger

	mu          sync.Mutex
	version     int64
	exists      bool
	lastPayload []byte
}

func NewStateStore(db *database.PostgresDB, txManager TxManager, rowID string,
	defaultChannelID int64, logger *slog.Logger) *StateStore {
	return &StateStore{
		db:               db,
		txManager:        txManager,
		sq:               sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		rowID:            rowID,
		defaultChannelID: defaultChannelID,
		logger:           logger,
	}
}

func (s *StateStore) Read(ctx context.Context) (*models.Registry, error) {
	start := time.Now()
	defer func() { metrics.RecordStateOperation(Backend, "read", time.Since(start)) }()

	document, version, exists, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	reg, err := state.Decode(document, s.defaultChannelID, s.logger)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "разбор состояния", Cause: err}
	}

	s.mu.Lock()
	s.version = version
	s.exists = exists
	s.lastPayload = state.Encode(reg)
	s.mu.Unlock()

	s.logger.Debug("Состояние загружено из PostgreSQL", "chats", reg.Len(), "version", version)

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

	expected, exists := s.version, s.exists

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if !exists {
			return s.insert(txCtx, payload)
		}

		return s.update(txCtx, payload, expected)
	})

	var conflict *customerrors.ErrStateConflict
	if errors.As(err, &conflict) {
		metrics.RecordStateWrite(Backend, "conflict")
		return conflict
	}

	if err != nil {
		metrics.RecordStateWrite(Backend, metrics.StatusError)
		return err
	}

	s.lastPayload = payload

	if err := s.refreshLocked(ctx); err != nil {
		s.logger.Warn("Не удалось обновить версию состояния после записи", "error", err)
		s.version, s.exists = expected+1, true
	}

	metrics.RecordStateWrite(Backend, "written")

	return nil
}

func (s *StateStore) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.refreshLocked(ctx)
}

func (s *StateStore) refreshLocked(ctx context.Context) error {
	querier := txs.GetQuerier(ctx, s.db.Pool)

	query, args, err := s.sq.Select("version").
		From(table).
		Where(sq.Eq{"id": s.rowID}).
		ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "получение версии состояния", Cause: err}
	}

	var version int64

	err = querier.QueryRow(ctx, query, args...).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		s.version, s.exists = 0, false
		return nil
	}

	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "получение версии состояния", Cause: err}
	}

	s.version, s.exists = version, true

	return nil
}

func (s *StateStore) load(ctx context.Context) (document []byte, version int64, exists bool, err error) {
	querier := txs.GetQuerier(ctx, s.db.Pool)

	query, args, err := s.sq.Select("document", "version").
		From(table).
		Where(sq.Eq{"id": s.rowID}).
		ToSql()
	if err != nil {
		return nil, 0, false, &customerrors.ErrBuildSQLQuery{Operation: "чтение состояния", Cause: err}
	}

	err = querier.QueryRow(ctx, query, args...).Scan(&document, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, false, nil
	}

	if err != nil {
		return nil, 0, false, &customerrors.ErrSQLExecution{Operation: "чтение состояния", Cause: err}
	}

	return document, version, true, nil
}

func (s *StateStore) insert(ctx context.Context, payload []byte) error {
	querier := txs.GetQuerier(ctx, s.db.Pool)

	query, args, err := s.sq.Insert(table).
		Columns("id", "document", "version", "updated_at").
		Values(s.rowID, string(payload), 1, time.Now()).
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "создание состояния", Cause: err}
	}

	tag, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "создание состояния", Cause: err}
	}

	if tag.RowsAffected() == 0 {
		return &customerrors.ErrStateConflict{Backend: Backend, Version: 0}
	}

	return nil
}

func (s *StateStore) update(ctx context.Context, payload []byte, expected int64) error {
	querier := txs.GetQuerier(ctx, s.db.Pool)

	query, args, err := s.sq.Update(table).
		Set("document", string(payload)).
		Set("version", sq.Expr("version + 1")).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": s.rowID, "version": expected}).
		ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "обновление состояния", Cause: err}
	}

	tag, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "обновление состояния", Cause: err}
	}

	if tag.RowsAffected() == 0 {
		return &customerrors.ErrStateConflict{Backend: Backend, Version: expected}
	}

	return nil
}
