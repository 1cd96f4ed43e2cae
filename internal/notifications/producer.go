package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"epicly/internal/shared/config"
	"epicly/pkg/logger"

	"github.com/IBM/sarama"
)

// EventProducer publishes booking lifecycle events.
type EventProducer interface {
	Publish(ctx context.Context, event *BookingEvent) error
	HealthCheck(ctx context.Context) error
	Close() error
}

// ProducerConfig contains configuration for the Kafka event producer.
type ProducerConfig struct {
	Brokers          []string
	Topic            string
	RetryMax         int
	Timeout          time.Duration
	RequiredAcks     sarama.RequiredAcks
	Compression      sarama.CompressionCodec
	IdempotentWrites bool
}

// DefaultProducerConfig returns a producer configuration derived from
// the application config.
func DefaultProducerConfig(cfg *config.Config) *ProducerConfig {
	return &ProducerConfig{
		Brokers:          cfg.Kafka.Brokers,
		Topic:            cfg.Kafka.BookingTopic,
		RetryMax:         3,
		Timeout:          10 * time.Second,
		RequiredAcks:     sarama.WaitForAll,
		Compression:      sarama.CompressionSnappy,
		IdempotentWrites: true,
	}
}

// KafkaEventProducer publishes booking events through a sarama sync
// producer.
type KafkaEventProducer struct {
	producer sarama.SyncProducer
	config   *ProducerConfig
}

func NewKafkaEventProducer(config *ProducerConfig) (EventProducer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.Compression
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = config.Timeout
	saramaConfig.Producer.Idempotent = config.IdempotentWrites
	if config.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}

	// Hash partitioner keeps per-schedule ordering.
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.GetDefault().Info("kafka event producer created",
		slog.Any("brokers", config.Brokers),
		slog.String("topic", config.Topic),
	)
	return &KafkaEventProducer{producer: producer, config: config}, nil
}

func (p *KafkaEventProducer) Publish(_ context.Context, event *BookingEvent) error {
	payload, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal booking event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     p.config.Topic,
		Key:       sarama.StringEncoder(event.PartitionKey()),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: event.OccurredAt,
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(event.Type)},
			{Key: []byte("event_id"), Value: []byte(event.ID.String())},
		},
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to publish booking event: %w", err)
	}

	logger.GetDefault().Debug("booking event published",
		slog.String("type", string(event.Type)),
		slog.Int("partition", int(partition)),
		slog.Int64("offset", offset),
	)
	return nil
}

func (p *KafkaEventProducer) HealthCheck(_ context.Context) error {
	if p.producer == nil {
		return fmt.Errorf("kafka producer not initialized")
	}
	return nil
}

func (p *KafkaEventProducer) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
