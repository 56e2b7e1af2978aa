// Package kafka publishes domain events to Kafka.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"dental-dashboard/internal/config"
)

// EventTypeHeader carries the event name on every message.
const EventTypeHeader = "event-type"

// batchTimeout keeps synchronous publishes from waiting out the writer's
// default one-second batch window.
const batchTimeout = 10 * time.Millisecond

var ErrNoBrokers = errors.New("KAFKA_BROKERS not configured")

// Producer writes JSON events to a single topic.
type Producer struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewProducer returns ErrNoBrokers when no broker is configured so callers
// can run without event publication.
func NewProducer(cfg config.KafkaConfig, logger *zap.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrNoBrokers
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.LeadTopic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: batchTimeout,
		WriteTimeout: 5 * time.Second,
	}
	logger.Info("kafka producer created", zap.String("topic", cfg.LeadTopic), zap.Strings("brokers", cfg.Brokers))
	return &Producer{writer: writer, logger: logger}, nil
}

// Publish serializes value as JSON and writes it under key.
func (p *Producer) Publish(ctx context.Context, eventType, key string, value any) error {
	msg, err := newMessage(eventType, key, value)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	p.logger.Debug("event published",
		zap.String("topic", p.writer.Topic), zap.String("event", eventType), zap.String("key", key))
	return nil
}

func (p *Producer) Topic() string {
	return p.writer.Topic
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

func newMessage(eventType, key string, value any) (kafka.Message, error) {
	body, err := json.Marshal(value)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("serialize %s: %w", eventType, err)
	}
	return kafka.Message{
		Key:     []byte(key),
		Value:   body,
		Headers: []kafka.Header{{Key: EventTypeHeader, Value: []byte(eventType)}},
	}, nil
}
