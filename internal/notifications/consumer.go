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

// EventConsumer drains the booking events topic. Delivery to end users
// (email, push) is out of scope; the consumer records what it sees so
// operators can trace lifecycle flow end to end.
type EventConsumer interface {
	Start(ctx context.Context) error
	Stop() error
}

type ConsumerConfig struct {
	Brokers        []string
	GroupID        string
	Topics         []string
	SessionTimeout time.Duration
	Heartbeat      time.Duration
	OffsetOldest   bool
}

func DefaultConsumerConfig(cfg *config.Config) *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:        cfg.Kafka.Brokers,
		GroupID:        cfg.Kafka.ConsumerGroup,
		Topics:         []string{cfg.Kafka.BookingTopic},
		SessionTimeout: 30 * time.Second,
		Heartbeat:      3 * time.Second,
		OffsetOldest:   false,
	}
}

type kafkaEventConsumer struct {
	consumerGroup sarama.ConsumerGroup
	config        *ConsumerConfig
	cancel        context.CancelFunc
}

func NewKafkaEventConsumer(config *ConsumerConfig) (EventConsumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Session.Timeout = config.SessionTimeout
	saramaConfig.Consumer.Group.Heartbeat.Interval = config.Heartbeat
	saramaConfig.Consumer.Return.Errors = true
	if config.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	consumerGroup, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &kafkaEventConsumer{consumerGroup: consumerGroup, config: config}, nil
}

func (c *kafkaEventConsumer) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	go func() {
		for err := range c.consumerGroup.Errors() {
			logger.GetDefault().Error("consumer group error", slog.Any("error", err))
		}
	}()

	go func() {
		handler := &loggingHandler{}
		for {
			if err := c.consumerGroup.Consume(runCtx, c.config.Topics, handler); err != nil {
				logger.GetDefault().Error("consumer session ended", slog.Any("error", err))
			}
			if runCtx.Err() != nil {
				return
			}
		}
	}()

	logger.GetDefault().Info("booking event consumer started",
		slog.String("group", c.config.GroupID),
		slog.Any("topics", c.config.Topics),
	)
	return nil
}

func (c *kafkaEventConsumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	return c.consumerGroup.Close()
}

// loggingHandler implements sarama.ConsumerGroupHandler.
type loggingHandler struct{}

func (h *loggingHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *loggingHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *loggingHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		event, err := BookingEventFromJSON(message.Value)
		if err != nil {
			logger.GetDefault().Warn("skipping undecodable booking event",
				slog.Int64("offset", message.Offset),
				slog.Any("error", err),
			)
			session.MarkMessage(message, "")
			continue
		}

		logger.GetDefault().Info("booking event received",
			slog.String("type", string(event.Type)),
			slog.String("schedule_id", event.ScheduleID.String()),
			slog.String("booking_ref", event.BookingRef),
			slog.String("reason", event.Reason),
		)
		session.MarkMessage(message, "")
	}
	return nil
}
