package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/collectiva/settlement-engine/internal/config"
	"github.com/segmentio/kafka-go"
)

type SettlementEventsProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// Creates a new settlement events producer and ensures topic exists
func NewSettlementEventsProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*SettlementEventsProducer, error) {
	if cfg.EventsTopic == "" {
		return nil, fmt.Errorf("kafka settlement events topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for settlement events producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.EventsTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure events topic %s exists for settlement events producer: %w", cfg.EventsTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.EventsTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true, // Using async for high throughput
		WriteTimeout: cfg.MaxWait,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to write messages asynchronously", "topic", cfg.EventsTopic, "error", err, "count", len(messages))
			} else {
				logger.Debug("Successfully wrote messages asynchronously", "topic", cfg.EventsTopic, "count", len(messages))
			}
		},
	}

	return &SettlementEventsProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.EventsTopic,
	}, nil
}

func (p *SettlementEventsProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal message value for settlement events producer: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish message via settlement events producer",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish message to %s via settlement events producer: %w", p.topic, err)
	}

	p.logger.Debug("Published message via settlement events producer",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *SettlementEventsProducer) Close() error {
	p.logger.Info("Closing settlement events Kafka message producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close settlement events kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
