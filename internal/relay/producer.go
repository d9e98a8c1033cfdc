package relay

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	kafka "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"go-amqpheader/internal/carrier"
	"go-amqpheader/internal/observability"
	"go-amqpheader/pkg/models"
)

// ProducerClient defines the interface for Kafka producer operations
type ProducerClient interface {
	Publish(ctx context.Context, topic string, msg *models.Message) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes messages with their AMQP header attached and retries
// failed writes with exponential backoff.
type Producer struct {
	writer      messageWriter
	logger      *zap.Logger
	metrics     observability.MetricsCollector
	policy      models.EncodePolicy
	maxRetries  int
	baseBackoff time.Duration
}

type ProducerConfig struct {
	Brokers      []string `validate:"min=1,dive,required"`
	Acks         int      `validate:"oneof=-1 0 1"` // -1 for all, 0 for none, 1 for leader
	Retries      int      `validate:"gte=0"`
	Idempotent   bool
	MaxRetries   int           `validate:"gte=0"`
	BaseBackoff  time.Duration `validate:"gte=0"`
	EncodePolicy models.EncodePolicy
	Metrics      observability.MetricsCollector
	Logger       *zap.Logger
}

func (c *ProducerConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid producer config: %w", err)
	}
	return nil
}

func NewProducer(cfg ProducerConfig) (*Producer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.LeastBytes{},
		RequiredAcks:           kafka.RequiredAcks(cfg.Acks),
		MaxAttempts:            cfg.Retries,
		WriteTimeout:           10 * time.Second,
		ReadTimeout:            10 * time.Second,
		AllowAutoTopicCreation: false,
		Async:                  false,
	}

	// Idempotent delivery needs acks from every in-sync replica.
	if cfg.Idempotent {
		writer.RequiredAcks = kafka.RequireAll
		writer.MaxAttempts = 10
	}

	return newProducer(cfg, writer), nil
}

func newProducer(cfg ProducerConfig, w messageWriter) *Producer {
	if cfg.Metrics == nil {
		cfg.Metrics = observability.NewInMemoryMetrics()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.BaseBackoff == 0 {
		cfg.BaseBackoff = 100 * time.Millisecond
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	return &Producer{
		writer:      w,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
		policy:      cfg.EncodePolicy,
		maxRetries:  cfg.MaxRetries,
		baseBackoff: cfg.BaseBackoff,
	}
}

// Publish writes msg to topic. A message without an ID gets a fresh UUID
// and one without a header gets a default header; both are assigned on msg
// itself so the caller sees what went out. A message carrying
// PropertyRawAMQPHeader is sent without a header.
func (p *Producer) Publish(ctx context.Context, topic string, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	if _, rejected := msg.Properties[models.PropertyRawAMQPHeader]; !rejected {
		msg.EnsureHeader()
	}

	record, err := carrier.ToKafka(topic, msg, p.policy)
	if err != nil {
		p.metrics.IncPublishFailed()
		return &PermanentError{Err: err}
	}

	var lastErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Min(
				float64(p.baseBackoff)*math.Pow(2, float64(attempt-1)),
				float64(5*time.Second),
			))

			p.logger.Info("Retrying message publish",
				zap.Int("attempt", attempt),
				zap.String("topic", topic),
				zap.String("key", msg.Key),
				zap.Duration("backoff", backoff),
			)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		err := p.writer.WriteMessages(ctx, record)
		if err == nil {
			p.metrics.IncPublished()
			p.logger.Info("Message published successfully",
				zap.String("topic", topic),
				zap.String("key", msg.Key),
				zap.String("message_id", msg.ID),
				zap.Stringer("header", msg.Header),
				zap.Int("attempt", attempt+1),
			)
			return nil
		}

		lastErr = err
		p.logger.Warn("Failed to publish message",
			zap.String("topic", topic),
			zap.String("key", msg.Key),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
		if ctx.Err() != nil {
			break
		}
	}

	p.metrics.IncPublishFailed()
	return &RetryableError{Err: fmt.Errorf("failed to publish message after %d attempts: %w", p.maxRetries+1, lastErr)}
}

// Close gracefully shuts down the producer
func (p *Producer) Close() error {
	p.logger.Info("Closing producer")
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close producer: %w", err)
	}
	return nil
}
