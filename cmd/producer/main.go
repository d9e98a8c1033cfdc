package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-amqpheader/internal/config"
	"go-amqpheader/internal/observability"
	"go-amqpheader/internal/profile"
	"go-amqpheader/internal/relay"
	"go-amqpheader/pkg/models"
)

func main() {
	profileName := flag.String("profile", "", "header profile to attach (needs AMQPHEADER_PROFILES)")
	hf := headerFlags{set: make(map[string]bool)}
	flag.Int64Var(&hf.ttl, "ttl", -1, "message time-to-live in milliseconds, -1 for none")
	flag.BoolVar(&hf.durable, "durable", false, "mark the message durable")
	flag.UintVar(&hf.priority, "priority", uint(models.DefaultPriority), "message priority 0-255")
	flag.Parse()
	flag.Visit(func(f *flag.Flag) { hf.set[f.Name] = true })

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	observability.InitLogger(cfg.Logging.Level)

	logger, err := observability.NewZapLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	header, err := buildHeader(cfg.Header, *profileName, hf)
	if err != nil {
		logger.Fatal("Invalid header options", zap.Error(err))
	}

	payload, err := json.Marshal(sampleOrder())
	if err != nil {
		logger.Fatal("Failed to encode payload", zap.Error(err))
	}

	producer, err := relay.NewProducer(relay.ProducerConfig{
		Brokers:      cfg.Kafka.Brokers,
		Acks:         cfg.Producer.RequiredAcks(),
		Retries:      cfg.Producer.Retries,
		Idempotent:   cfg.Producer.Idempotent,
		MaxRetries:   cfg.Producer.Retries,
		BaseBackoff:  time.Second,
		EncodePolicy: cfg.Header.Encoding,
		Logger:       logger,
	})
	if err != nil {
		logger.Fatal("Failed to create producer", zap.Error(err))
	}
	defer producer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	msg := &models.Message{
		Key:    uuid.NewString(),
		Value:  payload,
		Header: header,
	}
	if err := producer.Publish(ctx, cfg.Producer.Topic, msg); err != nil {
		logger.Error("Failed to send message", zap.Error(err))
		return
	}
	logger.Info("Send message to kafka success.",
		zap.String("message_id", msg.ID),
		zap.Stringer("header", msg.Header),
	)
}

// headerFlags holds the header overrides given on the command line; set
// names the flags that were passed explicitly.
type headerFlags struct {
	ttl      int64
	durable  bool
	priority uint
	set      map[string]bool
}

// buildHeader starts from the named profile, or a default header, and
// applies the explicitly passed flags on top. A zero TTL is kept as a
// present zero; only a negative one clears it.
func buildHeader(hc config.HeaderConfig, name string, hf headerFlags) (*models.Header, error) {
	if hf.priority > math.MaxUint8 {
		return nil, fmt.Errorf("priority %d out of range", hf.priority)
	}
	if name == "" {
		name = hc.Profile
	}
	h := models.NewHeader()
	if name != "" {
		set, err := profile.Load(hc.Profiles)
		if err != nil {
			return nil, err
		}
		if h, err = set.Header(name); err != nil {
			return nil, err
		}
	}

	if hf.set["durable"] {
		h.Durable = hf.durable
	}
	if hf.set["priority"] {
		h.Priority = uint8(hf.priority)
	}
	if hf.set["ttl"] {
		if hf.ttl >= 0 {
			h.SetTimeToLive(uint64(hf.ttl))
		} else {
			h.ClearTimeToLive()
		}
	}
	return h, nil
}

func sampleOrder() map[string]interface{} {
	return map[string]interface{}{
		"event_type":  "order_created",
		"timestamp":   time.Now().UTC().Format(time.RFC3339Nano),
		"order_id":    "ORD-2025-001234",
		"customer_id": "CUST-567890",
		"items": []interface{}{
			map[string]interface{}{
				"product_id": "PROD-111",
				"name":       "iPhone 15 Pro",
				"quantity":   1,
				"price":      42900.00,
			},
			map[string]interface{}{
				"product_id": "PROD-222",
				"name":       "AirPods Pro",
				"quantity":   1,
				"price":      8990.00,
			},
		},
		"total_amount": "51890.00",
		"currency":     "THB",
		"status":       "pending",
	}
}
