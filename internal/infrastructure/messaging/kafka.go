// Package messaging publishes domain events to Kafka for downstream consumers.
package messaging

import (
	"context"
	"fmt"
	"strings"

	"github.com/IBM/sarama"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/bizdesk/backend/internal/infrastructure/config"
	"github.com/bizdesk/backend/internal/infrastructure/event"
	"go.uber.org/zap"
)

// KafkaPublisher forwards every domain event to <prefix>.<aggregate type>,
// keyed by aggregate id so events of one aggregate stay ordered.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	prefix   string
	logger   *zap.Logger
}

// NewSaramaConfig returns the producer settings used in production
func NewSaramaConfig(clientID string) *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.ClientID = clientID
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Idempotent = true
	cfg.Producer.Retry.Max = 5
	cfg.Net.MaxOpenRequests = 1
	cfg.Version = sarama.V2_8_0_0
	return cfg
}

func NewKafkaPublisher(cfg config.KafkaConfig, logger *zap.Logger) (*KafkaPublisher, error) {
	producer, err := sarama.NewSyncProducer(cfg.Brokers, NewSaramaConfig(cfg.ClientID))
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return NewKafkaPublisherWithProducer(producer, cfg.TopicPrefix, logger), nil
}

func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, prefix string, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, prefix: strings.TrimSuffix(prefix, "."), logger: logger}
}

// Topic returns the topic an event is written to
func (p *KafkaPublisher) Topic(ev shared.DomainEvent) string {
	return p.prefix + "." + ev.AggregateType()
}

// Handle implements shared.EventHandler
func (p *KafkaPublisher) Handle(_ context.Context, ev shared.DomainEvent) error {
	env, err := event.NewEnvelope(ev)
	if err != nil {
		return err
	}
	value, err := env.Marshal()
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	msg := &sarama.ProducerMessage{
		Topic: p.Topic(ev),
		Key:   sarama.StringEncoder(ev.AggregateID().String()),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(ev.EventType())},
			{Key: []byte("tenant_id"), Value: []byte(ev.TenantID().String())},
		},
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("publish %s to %s: %w", ev.EventType(), msg.Topic, err)
	}
	p.logger.Debug("Event published to kafka",
		zap.String("topic", msg.Topic),
		zap.String("event_type", ev.EventType()),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)
	return nil
}

// EventTypes subscribes to everything
func (p *KafkaPublisher) EventTypes() []string {
	return []string{event.Wildcard}
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

var _ shared.EventHandler = (*KafkaPublisher)(nil)
