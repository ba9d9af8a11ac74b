package directory

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/central-university-dev/go-hhh-bot/internal/bot/events"
	"github.com/central-university-dev/go-hhh-bot/internal/common/metrics"
	"github.com/central-university-dev/go-hhh-bot/internal/domain/models"
)

// Change describes a registry mutation worth a line in the recent changes log.
type Change struct {
	Kind     events.ChangeKind
	ChatID   int64
	Title    string
	NewTitle string
}

func Added(chat *models.Chat) *Change {
	return &Change{Kind: events.ChangeAdded, ChatID: chat.ID, Title: chat.Title}
}

func Renamed(chat *models.Chat, oldTitle string) *Change {
	return &Change{Kind: events.ChangeRenamed, ChatID: chat.ID, Title: oldTitle, NewTitle: chat.Title}
}

func Removed(chat *models.Chat) *Change {
	return &Change{Kind: events.ChangeRemoved, ChatID: chat.ID, Title: chat.Title}
}

func (c *Change) Text() string {
	switch c.Kind {
	case events.ChangeRenamed:
		return fmt.Sprintf("%s -> %s", c.Title, c.NewTitle)
	case events.ChangeRemoved:
		return "Удалена " + c.Title
	default:
		return "Добавлена " + c.Title
	}
}

type Service struct {
	renderer   *Renderer
	reconciler *Reconciler
	publisher  events.Publisher
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(renderer *Renderer, reconciler *Reconciler, publisher events.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}

	return &Service{
		renderer:   renderer,
		reconciler: reconciler,
		publisher:  publisher,
		logger:     logger,
		now:        time.Now,
	}
}

// Update records change (if any) in the recent changes log and republishes the
// directory. The registry is expected to already reflect the change; the caller
// persists it afterwards.
func (s *Service) Update(ctx context.Context, reg *models.Registry, change *Change) error {
	if change != nil {
		s.logger.Debug("Добавление записи в журнал изменений", "change", change.Text())
		reg.Directory.AddRecentChange(change.Text())
	}

	messages := s.Render(reg)

	res, err := s.reconciler.Reconcile(ctx, &reg.Directory, messages)

	metrics.RegisteredChats.Set(float64(reg.Len()))

	s.logger.Info("Справочник групп обновлён",
		"messages", len(messages),
		"sent", res.Sent,
		"edited", res.Edited,
		"deleted", res.Deleted,
		"fallback", res.Fallback,
	)

	if change != nil {
		s.publish(ctx, reg, change)
	}

	if err != nil {
		return fmt.Errorf("ошибка при обновлении справочника: %w", err)
	}

	return nil
}

// Renew forgets the published messages and sends the directory from scratch.
func (s *Service) Renew(ctx context.Context, reg *models.Registry) error {
	reg.Directory.MessageIDs = nil
	return s.Update(ctx, reg, nil)
}

func (s *Service) Render(reg *models.Registry) []string {
	prefix := fmt.Sprintf("Всего групп: %d", len(Listed(reg)))

	// Recent changes are stored as plain text; the directory is sent as HTML.
	changes := make([]string, len(reg.Directory.RecentChanges))
	for i, change := range reg.Directory.RecentChanges {
		changes[i] = html.EscapeString(change)
	}

	suffix := suffixRule + "\n" + strings.Join(changes, "\n")

	return s.renderer.Render(reg, prefix, suffix)
}

func (s *Service) publish(ctx context.Context, reg *models.Registry, change *Change) {
	event := events.ChangeEvent{
		Kind:       change.Kind,
		ChatID:     change.ChatID,
		Title:      change.Title,
		NewTitle:   change.NewTitle,
		TotalChats: len(Listed(reg)),
		OccurredAt: s.now().UTC(),
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Ошибка при публикации события справочника",
			"error", err,
			"kind", change.Kind,
			"chat_id", change.ChatID,
		)
	}
}
