package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"contact-service/internal/config"
	"contact-service/internal/model"
	"contact-service/internal/util"
)

// KafkaPublisher emits accepted-submission events. The broker is an
// optional collaborator: the factory runs without it and the pipeline
// treats publish failures as advisory.
type KafkaPublisher struct {
	Writer *kafka.Writer
	config *config.KafkaConfig
	logger *zap.Logger
}

// NewKafkaPublisher creates a producer for the configured brokers.
func NewKafkaPublisher(cfg *config.Config, logger *zap.Logger) (*KafkaPublisher, error) {
	kafkaConfig := cfg.Kafka
	if len(kafkaConfig.Brokers) == 0 {
		return nil, fmt.Errorf("no Kafka brokers configured")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(kafkaConfig.Brokers...),
		Topic:        kafkaConfig.Topic,
		Balancer:     &kafka.LeastBytes{},
		MaxAttempts:  3,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("failed to write kafka messages",
					zap.Error(err),
					zap.Int("message_count", len(messages)),
				)
			}
		},
	}

	util.Info("Kafka publisher initialized",
		zap.Strings("brokers", kafkaConfig.Brokers),
		zap.String("topic", kafkaConfig.Topic),
	)

	return &KafkaPublisher{
		Writer: writer,
		config: &kafkaConfig,
		logger: logger,
	}, nil
}

// PublishAccepted writes one accepted-submission event, keyed by the
// submitter address so events from one client land in one partition.
func (p *KafkaPublisher) PublishAccepted(ctx context.Context, event *model.AcceptedEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode accepted event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.IP),
		Value: value,
	}); err != nil {
		return fmt.Errorf("publish accepted event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	if p.Writer != nil {
		if err := p.Writer.Close(); err != nil {
			util.Get().Error("failed to close Kafka publisher", zap.Error(err))
			return err
		}
		util.Get().Info("Kafka publisher closed")
	}
	return nil
}
