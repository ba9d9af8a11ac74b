package txs

import (
	"context"
	"log/slog"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
)

type Beginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

type TxManager struct {
	db     Beginner
	opts   pgx.TxOptions
	logger *slog.Logger
}

// NewTxManager runs transactions with READ COMMITTED unless overridden per call.
func NewTxManager(db Beginner, logger *slog.Logger) *TxManager {
	return &TxManager{
		db:     db,
		opts:   pgx.TxOptions{IsoLevel: pgx.ReadCommitted},
		logger: logger,
	}
}

func injectTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func (t *TxManager) WithTransaction(ctx context.Context, txFunc func(ctx context.Context) error) error {
	return t.WithTransactionOptions(ctx, t.opts, txFunc)
}

// WithTransactionOptions joins the transaction already bound to ctx, if any.
func (t *TxManager) WithTransactionOptions(ctx context.Context, opts pgx.TxOptions,
	txFunc func(ctx context.Context) error) (err error) {
	if InTransaction(ctx) {
		return txFunc(ctx)
	}

	tx, err := t.db.BeginTx(ctx, opts)
	if err != nil {
		t.logger.Error("Ошибка при начале транзакции", "error", err)
		return errors.Wrap(err, "начало транзакции")
	}

	txCtx := injectTx(ctx, tx)

	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("Паника в транзакции, выполняем rollback", "panic", r)

			_ = tx.Rollback(ctx)

			panic(r)
		}
	}()

	if err := txFunc(txCtx); err != nil {
		t.logger.Debug("Ошибка в транзакции, выполняем rollback", "error", err)

		if rbErr := tx.Rollback(ctx); rbErr != nil {
			t.logger.Error("Ошибка при rollback транзакции", "error", rbErr)
			return errors.Wrapf(err, "rollback: %v", rbErr)
		}

		return err
	}

	if err := tx.Commit(ctx); err != nil {
		t.logger.Error("Ошибка при commit транзакции", "error", err)
		return errors.Wrap(err, "commit транзакции")
	}

	return nil
}
