// Package repository persists the registry as a single versioned document.
package repository

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	customerrors "github.com/central-university-dev/go-hhh-bot/internal/domain/errors"
	"github.com/central-university-dev/go-hhh-bot/internal/domain/models"
)

const tracerName = "github.com/central-university-dev/go-hhh-bot/internal/bot/repository"

// StateStore loads and saves the whole registry.
//
// Write returns *errors.ErrStateConflict when the backing document changed
// since it was last read.
type StateStore interface {
	Read(ctx context.Context) (*models.Registry, error)
	Write(ctx context.Context, reg *models.Registry) error
}

// Refresher is implemented by stores that keep a version token.
type Refresher interface {
	Refresh(ctx context.Context) error
}

type ConflictRetryStore struct {
	store   StateStore
	backend string
	logger  *slog.Logger
	tracer  trace.Tracer
}

// WithConflictRetry retries a conflicting write exactly once after refreshing
// the version token.
func WithConflictRetry(store StateStore, backend string, logger *slog.Logger) *ConflictRetryStore {
	return &ConflictRetryStore{
		store:   store,
		backend: backend,
		logger:  logger,
		tracer:  otel.Tracer(tracerName),
	}
}

func (s *ConflictRetryStore) Read(ctx context.Context) (*models.Registry, error) {
	ctx, span := s.tracer.Start(ctx, "state.read", trace.WithAttributes(
		attribute.String("state.backend", s.backend),
	))
	defer span.End()

	reg, err := s.store.Read(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	span.SetAttributes(attribute.Int("state.chats", reg.Len()))

	return reg, nil
}

func (s *ConflictRetryStore) Write(ctx context.Context, reg *models.Registry) error {
	ctx, span := s.tracer.Start(ctx, "state.write", trace.WithAttributes(
		attribute.String("state.backend", s.backend),
		attribute.Int("state.chats", reg.Len()),
	))
	defer span.End()

	err := s.store.Write(ctx, reg)

	var conflict *customerrors.ErrStateConflict
	if errors.As(err, &conflict) {
		span.AddEvent("state.conflict")

		s.logger.Warn("Конфликт версий состояния, перечитываем версию и повторяем запись",
			"backend", s.backend,
			"version", conflict.Version,
		)

		if refresher, ok := s.store.(Refresher); ok {
			if rErr := refresher.Refresh(ctx); rErr != nil {
				err = rErr
			} else {
				err = s.store.Write(ctx, reg)
			}
		}
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return err
	}

	return nil
}
