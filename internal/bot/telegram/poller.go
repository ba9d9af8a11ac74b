package telegram

import (
	"context"
	"log/slog"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/central-university-dev/go-hhh-bot/internal/bot/domain"
	"github.com/central-university-dev/go-hhh-bot/internal/bot/worker"
	"github.com/central-university-dev/go-hhh-bot/internal/common/metrics"
	"github.com/central-university-dev/go-hhh-bot/internal/domain/models"
)

const updateTimeout = 60

// UpdateSource is implemented by *tgbotapi.BotAPI.
type UpdateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type EventHandler interface {
	HandleEvent(ctx context.Context, event *domain.Event) error
}

type TaskQueue interface {
	Enqueue(ctx context.Context, task worker.Task) error
}

type Poller struct {
	source  UpdateSource
	queue   TaskQueue
	handler EventHandler
	logger  *slog.Logger

	stopOnce sync.Once
	stopChan chan struct{}
	done     chan struct{}
}

func NewPoller(source UpdateSource, queue TaskQueue, handler EventHandler, logger *slog.Logger) *Poller {
	return &Poller{
		source:   source,
		queue:    queue,
		handler:  handler,
		logger:   logger,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("Запуск Telegram поллера")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = updateTimeout
	u.AllowedUpdates = []string{"message"}

	updates := p.source.GetUpdatesChan(u)

	go func() {
		defer close(p.done)

		for {
			select {
			case <-p.stopChan:
				p.logger.Info("Получен сигнал остановки поллера")
				return
			case <-ctx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					return
				}

				p.dispatch(ctx, update)
			}
		}
	}()
}

// Stop stops long polling. Updates already handed to the queue are not affected.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		p.logger.Info("Остановка Telegram поллера")
		p.source.StopReceivingUpdates()
		close(p.stopChan)
	})

	<-p.done
}

func (p *Poller) dispatch(ctx context.Context, update tgbotapi.Update) {
	event, ok := ToEvent(update)
	if !ok {
		return
	}

	metrics.RecordEvent(string(event.Kind))

	p.logger.Debug("Получено событие",
		"kind", event.Kind,
		"chat_id", event.Chat.ID,
		"user_id", event.From.ID,
		"message_id", event.MessageID,
	)

	task := worker.Task{
		Name: string(event.Kind),
		Run: func(ctx context.Context) error {
			return p.handler.HandleEvent(ctx, event)
		},
	}

	if err := p.queue.Enqueue(ctx, task); err != nil {
		p.logger.Error("Не удалось поставить событие в очередь",
			"error", err,
			"kind", event.Kind,
			"chat_id", event.Chat.ID,
		)
	}
}

// ToEvent converts a message update into a platform-neutral event. Updates
// without a message and messages announcing migrate_to_chat_id (delivered to
// the old group) are dropped.
func ToEvent(update tgbotapi.Update) (*domain.Event, bool) {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return nil, false
	}

	if msg.MigrateToChatID != 0 {
		return nil, false
	}

	event := &domain.Event{
		MessageID: msg.MessageID,
		Chat: domain.EventChat{
			ID:          msg.Chat.ID,
			Type:        msg.Chat.Type,
			Title:       msg.Chat.Title,
			Description: msg.Chat.Description,
		},
		Text: msg.Text,
	}

	if msg.From != nil {
		event.From = toSender(msg.From)
	}

	switch {
	case msg.MigrateFromChatID != 0:
		event.Kind = domain.EventChatMigrated
		event.MigrateFromChatID = msg.MigrateFromChatID
	case len(msg.NewChatMembers) > 0:
		event.Kind = domain.EventNewMembers

		for i := range msg.NewChatMembers {
			event.NewMembers = append(event.NewMembers, toSender(&msg.NewChatMembers[i]))
		}
	case msg.LeftChatMember != nil:
		event.Kind = domain.EventLeftMember
		left := toSender(msg.LeftChatMember)
		event.LeftMember = &left
	case msg.NewChatTitle != "":
		event.Kind = domain.EventNewTitle
		event.NewTitle = msg.NewChatTitle
	case msg.GroupChatCreated || msg.SuperGroupChatCreated:
		event.Kind = domain.EventChatCreated
	case msg.IsCommand():
		cmd, ok := models.ParseCommand(msg.Text)
		if !ok {
			return nil, false
		}

		event.Kind = domain.EventCommand
		event.Command = cmd
	default:
		event.Kind = domain.EventMessage
	}

	return event, true
}

func toSender(u *tgbotapi.User) domain.Sender {
	return domain.Sender{
		ID:        u.ID,
		Username:  u.UserName,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsBot:     u.IsBot,
	}
}
