package relay

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	kafka "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"go-amqpheader/internal/observability"
)

type brokerConn interface {
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
	Close() error
}

type dialFunc func(ctx context.Context, network, address string) (brokerConn, error)

func dialKafka(ctx context.Context, network, address string) (brokerConn, error) {
	conn, err := kafka.DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// KafkaClient checks broker health and drives reconnection for the relay.
type KafkaClient struct {
	brokers     []string
	topics      []string
	logger      *logrus.Logger
	dial        dialFunc
	maxRetries  int
	baseBackoff time.Duration
	maxBackoff  time.Duration
}

// NewKafkaClient returns a client for brokers. When topics are given the
// health check also requires each of them to have partitions.
func NewKafkaClient(brokers []string, maxRetries int, topics ...string) *KafkaClient {
	return &KafkaClient{
		brokers:     brokers,
		topics:      topics,
		logger:      observability.GetLogger(),
		dial:        dialKafka,
		maxRetries:  maxRetries,
		baseBackoff: 1 * time.Second,
		maxBackoff:  30 * time.Second,
	}
}

// HealthCheck succeeds when any broker answers a metadata request.
func (c *KafkaClient) HealthCheck(ctx context.Context) error {
	if len(c.brokers) == 0 {
		return errors.New("no brokers configured")
	}

	var errs []error
	for _, broker := range c.brokers {
		err := c.checkBroker(ctx, broker)
		if err == nil {
			return nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", broker, err))
	}
	return errors.Join(errs...)
}

func (c *KafkaClient) checkBroker(ctx context.Context, broker string) error {
	conn, err := c.dial(ctx, "tcp", broker)
	if err != nil {
		return fmt.Errorf("failed to connect to broker: %w", err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions(c.topics...)
	if err != nil {
		return fmt.Errorf("failed to read partitions: %w", err)
	}

	found := make(map[string]bool, len(partitions))
	for _, p := range partitions {
		found[p.Topic] = true
	}
	for _, topic := range c.topics {
		if !found[topic] {
			return fmt.Errorf("topic %q has no partitions", topic)
		}
	}
	return nil
}

// HealthCheckLoop runs health checks periodically with reconnection logic
func (c *KafkaClient) HealthCheckLoop(ctx context.Context, interval time.Duration, onReconnect func() error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Health check loop stopped")
			return
		case <-ticker.C:
			if err := c.HealthCheck(ctx); err != nil {
				c.logger.WithError(err).Warn("Health check failed, attempting reconnection")
				if err := c.reconnectWithBackoff(ctx, onReconnect); err != nil {
					c.logger.WithError(err).Error("Reconnection failed")
				}
			}
		}
	}
}

// reconnectWithBackoff implements exponential backoff reconnection strategy
func (c *KafkaClient) reconnectWithBackoff(ctx context.Context, onReconnect func() error) error {
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		backoff := time.Duration(math.Min(
			float64(c.baseBackoff)*math.Pow(2, float64(attempt)),
			float64(c.maxBackoff),
		))

		c.logger.WithFields(logrus.Fields{
			"attempt": attempt + 1,
			"backoff": backoff,
		}).Info("Attempting reconnection")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		if err := c.HealthCheck(ctx); err != nil {
			c.logger.WithError(err).Warn("Reconnection attempt failed")
			continue
		}

		if onReconnect != nil {
			if err := onReconnect(); err != nil {
				c.logger.WithError(err).Warn("Reconnect callback failed")
				continue
			}
		}

		c.logger.Info("Reconnection successful")
		return nil
	}

	return fmt.Errorf("failed to reconnect after %d attempts", c.maxRetries)
}
