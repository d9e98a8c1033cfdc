package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"go-amqpheader/internal/observability"
	"go-amqpheader/internal/relay"
	"go-amqpheader/pkg/models"
)

// MessageProcessor handles business logic for processing messages
type MessageProcessor struct {
	logger *logrus.Logger
	now    func() time.Time
}

func NewMessageProcessor() *MessageProcessor {
	return &MessageProcessor{
		logger: observability.GetLogger(),
		now:    time.Now,
	}
}

// Process parses the payload as JSON and logs it with its delivery header.
// A payload that is not JSON can never succeed, so it fails permanently.
func (p *MessageProcessor) Process(ctx context.Context, msg *models.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h := msg.EnsureHeader()
	fields := logrus.Fields{
		"key":            msg.Key,
		"message_id":     msg.ID,
		"durable":        h.Durable,
		"priority":       h.Priority,
		"first_acquirer": h.FirstAcquirer,
		"delivery_count": h.DeliveryCount,
	}
	if expiry, ok := h.Expiry(); ok {
		fields["remaining_ttl"] = (expiry - p.now().Sub(msg.Timestamp)).String()
	}
	p.logger.WithFields(fields).Info("Processing message")

	var data map[string]interface{}
	if err := json.Unmarshal(msg.Value, &data); err != nil {
		return &relay.PermanentError{Err: fmt.Errorf("failed to parse message: %w", err)}
	}

	p.logger.WithFields(logrus.Fields{
		"key":  msg.Key,
		"data": data,
	}).Debug("Message processed successfully")

	return nil
}
