package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/central-university-dev/go-hhh-bot/internal/bot/domain"
	"github.com/central-university-dev/go-hhh-bot/internal/common/metrics"
	customerrors "github.com/central-university-dev/go-hhh-bot/internal/domain/errors"
	"github.com/central-university-dev/go-hhh-bot/internal/domain/models"
)

const tracerName = "github.com/central-university-dev/go-hhh-bot/internal/bot/directory"

// Result summarizes the platform calls issued by one reconciliation.
type Result struct {
	Sent     int
	Edited   int
	Deleted  int
	Pinned   bool
	Fallback bool
}

type Reconciler struct {
	messenger domain.Messenger
	logger    *slog.Logger
	tracer    trace.Tracer
}

func NewReconciler(messenger domain.Messenger, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		messenger: messenger,
		logger:    logger,
		tracer:    otel.Tracer(tracerName),
	}
}

// Reconcile makes the published directory messages match messages. It updates
// state.MessageIDs and state.PinnedMessageID in place and never persists them.
//
// More messages than before: the old IDs are forgotten and everything is sent
// anew. Fewer: the trailing messages are deleted. Otherwise messages are edited
// in place. When an edit hits a message that no longer exists the whole run is
// repeated once as a fresh send.
func (r *Reconciler) Reconcile(ctx context.Context, state *models.DirectoryState, messages []string) (Result, error) {
	ctx, span := r.tracer.Start(ctx, "directory.reconcile", trace.WithAttributes(
		attribute.Int("directory.messages.new", len(messages)),
		attribute.Int("directory.messages.old", len(state.MessageIDs)),
		attribute.Int64("directory.channel_id", state.ChannelID),
	))
	defer span.End()

	var res Result

	err := r.run(ctx, state, messages, true, &res)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	span.SetAttributes(
		attribute.Int("directory.sent", res.Sent),
		attribute.Int("directory.edited", res.Edited),
		attribute.Int("directory.deleted", res.Deleted),
		attribute.Bool("directory.fallback", res.Fallback),
	)

	metrics.DirectoryMessages.Set(float64(len(state.MessageIDs)))

	return res, err
}

func (r *Reconciler) run(ctx context.Context, state *models.DirectoryState, messages []string,
	allowFallback bool, res *Result) error {
	newCount, oldCount := len(messages), len(state.MessageIDs)

	switch {
	case newCount > oldCount:
		state.MessageIDs = nil
	case newCount < oldCount:
		for _, id := range state.MessageIDs[newCount:] {
			r.deleteMessage(ctx, state.ChannelID, id, res)
		}

		state.MessageIDs = append([]int(nil), state.MessageIDs[:newCount]...)
	}

	pinAttempted := false

	for i, text := range messages {
		if i >= len(state.MessageIDs) {
			id, err := r.messenger.SendMessage(ctx, state.ChannelID, text, directoryOptions())
			if err != nil {
				metrics.RecordDirectoryOperation("send", metrics.StatusError)
				return fmt.Errorf("ошибка при отправке сообщения справочника %d/%d: %w", i+1, newCount, err)
			}

			metrics.RecordDirectoryOperation("send", metrics.StatusSuccess)

			res.Sent++
			state.MessageIDs = append(state.MessageIDs, id)

			if !pinAttempted {
				pinAttempted = true
				res.Pinned = r.pinFirst(ctx, state)
			}

			continue
		}

		err := r.messenger.EditMessageText(ctx, state.ChannelID, state.MessageIDs[i], text, directoryOptions())

		var (
			gone        *customerrors.ErrMessageGone
			notModified *customerrors.ErrMessageNotModified
		)

		switch {
		case err == nil, errors.As(err, &notModified):
			metrics.RecordDirectoryOperation("edit", metrics.StatusSuccess)

			res.Edited++
		case errors.As(err, &gone) && allowFallback:
			metrics.RecordDirectoryOperation("edit", "gone")
			r.logger.Warn("Сообщение справочника не найдено, публикуем справочник заново",
				"message_id", state.MessageIDs[i],
				"error", err,
			)

			res.Fallback = true
			state.MessageIDs = nil

			return r.run(ctx, state, messages, false, res)
		default:
			metrics.RecordDirectoryOperation("edit", metrics.StatusError)
			r.logger.Error("Не удалось изменить сообщение справочника",
				"message_id", state.MessageIDs[i],
				"error", err,
			)
		}
	}

	return nil
}

func (r *Reconciler) deleteMessage(ctx context.Context, channelID int64, messageID int, res *Result) {
	if err := r.messenger.DeleteMessage(ctx, channelID, messageID); err != nil {
		metrics.RecordDirectoryOperation("delete", metrics.StatusError)
		r.logger.Warn("Не удалось удалить лишнее сообщение справочника",
			"message_id", messageID,
			"error", err,
		)

		return
	}

	metrics.RecordDirectoryOperation("delete", metrics.StatusSuccess)

	res.Deleted++
}

// pinFirst pins the first published message, unpinning the previous pin first.
func (r *Reconciler) pinFirst(ctx context.Context, state *models.DirectoryState) bool {
	target := state.MessageIDs[0]

	if state.PinnedMessageID != 0 && state.PinnedMessageID != target {
		if err := r.messenger.UnpinMessage(ctx, state.ChannelID, state.PinnedMessageID); err != nil {
			r.logger.Warn("Не удалось открепить предыдущее сообщение справочника",
				"message_id", state.PinnedMessageID,
				"error", err,
			)
		} else {
			state.PinnedMessageID = 0
		}
	}

	if err := r.messenger.PinMessage(ctx, state.ChannelID, target, true); err != nil {
		metrics.RecordDirectoryOperation("pin", metrics.StatusError)
		r.logger.Error("Не удалось закрепить сообщение справочника",
			"message_id", target,
			"error", err,
		)

		return false
	}

	metrics.RecordDirectoryOperation("pin", metrics.StatusSuccess)

	state.PinnedMessageID = target

	return true
}

func directoryOptions() domain.SendOptions {
	return domain.SendOptions{
		ParseMode:             domain.ParseModeHTML,
		DisableWebPagePreview: true,
	}
}
