package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

type KafkaPublisher struct {
	writer *kafka.Writer
	logger *slog.Logger
	topic  string
}

func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		Logger:                 kafkaLogger(logger.Debug),
		ErrorLogger:            kafkaLogger(logger.Error),
	}

	return &KafkaPublisher{
		writer: writer,
		logger: logger,
		topic:  topic,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event ChangeEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("ошибка при сериализации события: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(event.ChatID, 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(event.Kind)},
		},
		Time: event.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("ошибка при отправке события в Kafka: %w", err)
	}

	p.logger.Debug("Событие справочника отправлено в Kafka",
		"topic", p.topic,
		"kind", event.Kind,
		"chat_id", event.ChatID,
	)

	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func kafkaLogger(log func(msg string, args ...any)) kafka.LoggerFunc {
	return func(format string, args ...interface{}) {
		log(fmt.Sprintf(format, args...), "component", "kafka-writer")
	}
}
