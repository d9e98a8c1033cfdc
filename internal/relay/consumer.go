package relay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	kafka "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"go-amqpheader/internal/carrier"
	"go-amqpheader/internal/observability"
	"go-amqpheader/pkg/models"
)

var validate = validator.New()

// MessageHandler processes consumed messages
type MessageHandler func(ctx context.Context, msg *models.Message) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer runs a worker pool over a Kafka topic. Each record's AMQP header
// drives expiry, retry bookkeeping and dead-lettering.
type Consumer struct {
	reader           messageReader
	producer         ProducerClient
	logger           *zap.Logger
	metrics          observability.MetricsCollector
	workers          int
	retryMax         uint32
	retryTopicPrefix string
	dlqTopic         string
	expiredTopic     string
	handlerTimeout   time.Duration
	dedupeStore      DedupeStore
	now              func() time.Time
	wg               sync.WaitGroup
}

type ConsumerConfig struct {
	Brokers          []string `validate:"min=1,dive,required"`
	Topic            string   `validate:"required"`
	GroupID          string   `validate:"required"`
	Workers          int      `validate:"gte=0"`
	RetryMax         int      `validate:"gte=0"`
	FetchMinBytes    int      `validate:"gte=0"`
	FetchMaxBytes    int      `validate:"gte=0"`
	RetryTopicPrefix string   `validate:"required"`
	DLQTopic         string   `validate:"required"`
	// ExpiredTopic receives messages whose TTL elapsed before processing.
	// Empty drops them.
	ExpiredTopic   string
	HandlerTimeout time.Duration `validate:"gte=0"`
	Metrics        observability.MetricsCollector
	DedupeStore    DedupeStore
	Logger         *zap.Logger
}

func (c *ConsumerConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid consumer config: %w", err)
	}
	return nil
}

func NewConsumer(cfg ConsumerConfig, producer ProducerClient) (*Consumer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.Topic,
		GroupID:        cfg.GroupID,
		MinBytes:       cfg.FetchMinBytes,
		MaxBytes:       cfg.FetchMaxBytes,
		CommitInterval: 0, // Manual commits
		StartOffset:    kafka.LastOffset,
	})

	return newConsumer(cfg, reader, producer), nil
}

func newConsumer(cfg ConsumerConfig, reader messageReader, producer ProducerClient) *Consumer {
	if cfg.Metrics == nil {
		cfg.Metrics = observability.NewInMemoryMetrics()
	}
	if cfg.DedupeStore == nil {
		cfg.DedupeStore = NewInMemoryDedupeStore(1 * time.Hour)
	}
	if cfg.Workers == 0 {
		cfg.Workers = 5
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.HandlerTimeout == 0 {
		cfg.HandlerTimeout = 30 * time.Second
	}

	return &Consumer{
		reader:           reader,
		producer:         producer,
		logger:           cfg.Logger,
		metrics:          cfg.Metrics,
		workers:          cfg.Workers,
		retryMax:         uint32(cfg.RetryMax),
		retryTopicPrefix: cfg.RetryTopicPrefix,
		dlqTopic:         cfg.DLQTopic,
		expiredTopic:     cfg.ExpiredTopic,
		handlerTimeout:   cfg.HandlerTimeout,
		dedupeStore:      cfg.DedupeStore,
		now:              time.Now,
	}
}

// Start begins consuming messages with worker pool
func (c *Consumer) Start(ctx context.Context, handler MessageHandler) error {
	c.logger.Info("Starting consumer", zap.Int("workers", c.workers))

	msgChan := make(chan kafka.Message, c.workers*2)

	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.worker(ctx, i, msgChan, handler)
	}

	c.wg.Add(1)
	go c.fetcher(ctx, msgChan)

	c.wg.Wait()
	return nil
}

// fetcher reads messages from Kafka and sends to worker pool
func (c *Consumer) fetcher(ctx context.Context, msgChan chan<- kafka.Message) {
	defer c.wg.Done()
	defer close(msgChan)

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				c.logger.Info("Fetcher stopping due to context cancellation")
				return
			}
			c.logger.Error("Failed to fetch message", zap.Error(err))
			continue
		}

		c.metrics.IncReceived()

		select {
		case msgChan <- msg:
		case <-ctx.Done():
			return
		}
	}
}

// worker drains the channel until the fetcher closes it, so records
// already fetched are still handled after cancellation.
func (c *Consumer) worker(ctx context.Context, id int, msgChan <-chan kafka.Message, handler MessageHandler) {
	defer c.wg.Done()
	c.logger.Debug("Worker started", zap.Int("worker_id", id))

	for msg := range msgChan {
		c.processMessage(ctx, msg, handler, id)
	}
	c.logger.Debug("Worker stopping - channel closed", zap.Int("worker_id", id))
}

// processMessage applies expiry, dedupe and retry/DLQ routing to one record.
func (c *Consumer) processMessage(ctx context.Context, record kafka.Message, handler MessageHandler, workerID int) {
	msg, decodeErr := carrier.FromKafka(record)

	logger := c.logger.With(
		zap.String("topic", record.Topic),
		zap.Int("partition", record.Partition),
		zap.Int64("offset", record.Offset),
		zap.String("message_id", msg.ID),
		zap.Int("worker_id", workerID),
	)

	if decodeErr != nil {
		c.metrics.IncHeaderRejected()
		logger.Warn("Rejecting message with malformed AMQP header", zap.Error(decodeErr))
		c.sendToDLQ(ctx, msg, record.Topic, &PermanentError{Err: decodeErr})
		c.commitMessage(record)
		return
	}

	header := msg.EnsureHeader()
	logger = logger.With(zap.Stringer("header", header))

	if header.Expired(msg.Timestamp, c.now()) {
		c.metrics.IncExpired()
		logger.Info("Message expired before processing")
		if c.expiredTopic != "" {
			if err := c.forward(ctx, c.expiredTopic, msg, record.Topic, nil); err != nil {
				logger.Error("Failed to send expired message", zap.String("expired_topic", c.expiredTopic), zap.Error(err))
			}
		}
		c.commitMessage(record)
		return
	}

	if msg.ID != "" && c.dedupeStore.Exists(msg.ID) {
		logger.Info("Duplicate message detected, skipping")
		c.commitMessage(record)
		return
	}

	err := c.invoke(ctx, handler, msg)
	if err == nil {
		c.metrics.IncProcessed()
		logger.Debug("Message processed successfully")
		if msg.ID != "" {
			if addErr := c.dedupeStore.Add(msg.ID); addErr != nil {
				logger.Warn("Failed to record message id", zap.Error(addErr))
			}
		}
		c.commitMessage(record)
		return
	}

	c.metrics.IncFailed()
	logger.Error("Message processing failed", zap.Error(err))

	// The original record is committed either way; its next attempt lives
	// on a retry topic or the DLQ.
	if !IsPermanent(err) && header.DeliveryCount < c.retryMax {
		c.sendToRetry(ctx, msg, record.Topic, err)
	} else {
		c.sendToDLQ(ctx, msg, record.Topic, err)
	}
	c.commitMessage(record)
}

// invoke runs handler under the per-message timeout. A panic becomes a
// PermanentError.
func (c *Consumer) invoke(ctx context.Context, handler MessageHandler, msg *models.Message) (err error) {
	handlerCtx, cancel := context.WithTimeout(ctx, c.handlerTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Panic in handler", zap.Any("panic", r), zap.String("key", msg.Key))
			err = &PermanentError{Err: fmt.Errorf("handler panicked: %v", r)}
		}
	}()
	return handler(handlerCtx, msg)
}

// commitMessage commits the message offset
func (c *Consumer) commitMessage(msg kafka.Message) {
	if err := c.reader.CommitMessages(context.Background(), msg); err != nil {
		c.logger.Error("Failed to commit message", zap.Error(err))
	}
}

// sendToRetry records the failed attempt on the header and republishes to
// the retry topic for the new delivery count.
func (c *Consumer) sendToRetry(ctx context.Context, msg *models.Message, sourceTopic string, failureErr error) {
	c.metrics.IncRetried()

	header := msg.EnsureHeader()
	header.Redelivered()
	retryTopic := fmt.Sprintf("%s-%d", c.retryTopicPrefix, header.DeliveryCount)

	if err := c.forward(ctx, retryTopic, msg, sourceTopic, failureErr); err != nil {
		c.logger.Error("Failed to send message to retry topic",
			zap.String("topic", retryTopic),
			zap.Uint32("delivery_count", header.DeliveryCount),
			zap.Error(err),
		)
		return
	}
	c.logger.Info("Message sent to retry topic",
		zap.String("topic", retryTopic),
		zap.Uint32("delivery_count", header.DeliveryCount),
	)
}

// sendToDLQ sends message to dead letter queue
func (c *Consumer) sendToDLQ(ctx context.Context, msg *models.Message, sourceTopic string, failureErr error) {
	c.metrics.IncSentToDLQ()

	if msg.Properties == nil {
		msg.Properties = make(map[string]string)
	}
	msg.Properties[models.PropertyProcessedAt] = c.now().Format(time.RFC3339)

	if err := c.forward(ctx, c.dlqTopic, msg, sourceTopic, failureErr); err != nil {
		c.logger.Error("Failed to send message to DLQ",
			zap.String("topic", c.dlqTopic),
			zap.Error(err),
		)
		return
	}
	c.logger.Info("Message sent to DLQ", zap.String("topic", c.dlqTopic))
}

func (c *Consumer) forward(ctx context.Context, topic string, msg *models.Message, sourceTopic string, failureErr error) error {
	if msg.Properties == nil {
		msg.Properties = make(map[string]string)
	}
	if _, ok := msg.Properties[models.PropertyOriginalTopic]; !ok {
		msg.Properties[models.PropertyOriginalTopic] = sourceTopic
	}
	if failureErr != nil {
		msg.Properties[models.PropertyFailureReason] = failureErr.Error()
	}
	return c.producer.Publish(ctx, topic, msg)
}

// Close gracefully shuts down the consumer
func (c *Consumer) Close() error {
	c.logger.Info("Closing consumer")
	if err := c.reader.Close(); err != nil {
		return fmt.Errorf("failed to close consumer: %w", err)
	}
	return nil
}
