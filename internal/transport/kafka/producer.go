package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"

	"driver-companion/internal/domain"
	"driver-companion/internal/logx"
)

var newSyncProducer = sarama.NewSyncProducer

// Producer publishes workflow events keyed by order id, so one order's events keep their order.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
	logger   logx.Logger
}

// NewProducer creates a Producer. It returns nil when Kafka is not configured;
// a nil Producer drops events.
func NewProducer(logger logx.Logger, brokers []string, topic string) (*Producer, error) {
	if len(brokers) == 0 || strings.TrimSpace(topic) == "" {
		return nil, nil
	}

	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForLocal
	cfg.Producer.Return.Successes = true
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Timeout = 5 * time.Second

	p, err := newSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return NewProducerWith(p, topic, logger), nil
}

// NewProducerWith wraps an existing sarama producer.
func NewProducerWith(p sarama.SyncProducer, topic string, logger logx.Logger) *Producer {
	if logger == nil {
		logger = logx.Nop()
	}
	return &Producer{producer: p, topic: topic, logger: logger}
}

// Publish sends e and waits for the broker acknowledgement.
func (p *Producer) Publish(ctx context.Context, e domain.WorkflowEvent) error {
	if p == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(FromDomain(e))
	if err != nil {
		return fmt.Errorf("encode workflow event: %w", err)
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(e.OrderID),
		Value:     sarama.ByteEncoder(body),
		Timestamp: e.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("send workflow event %s: %w", e.Type, err)
	}

	p.logger.Debug("workflow event published",
		logx.String("type", e.Type),
		logx.OrderID(e.OrderID),
		logx.Int("partition", int(partition)),
		logx.Int64("offset", offset),
	)
	return nil
}

// Close flushes and closes the producer.
func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.producer.Close()
}
