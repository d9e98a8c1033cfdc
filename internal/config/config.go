package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"go-amqpheader/internal/observability"
	"go-amqpheader/pkg/models"
)

type Config struct {
	Kafka    KafkaConfig
	Logging  LoggingConfig  `envconfig:"LOG"`
	Consumer ConsumerConfig `envconfig:"KAFKA_CONSUMER"`
	Producer ProducerConfig `envconfig:"KAFKA_PRODUCER"`
	Header   HeaderConfig   `envconfig:"AMQPHEADER"`
}

type KafkaConfig struct {
	Brokers []string `envconfig:"BROKERS" default:"localhost:9092" validate:"min=1,dive,hostname_port"`
}

type LoggingConfig struct {
	Level string `envconfig:"LEVEL" default:"info" validate:"oneof=trace debug info warn warning error fatal panic"`
}

type ConsumerConfig struct {
	Topic            string        `envconfig:"TOPIC" default:"events" validate:"required"`
	GroupID          string        `envconfig:"GROUP_ID" default:"event-processor-group" validate:"required"`
	Workers          int           `envconfig:"WORKERS" default:"5" validate:"gte=1"`
	RetryMax         int           `envconfig:"RETRY_MAX" default:"3" validate:"gte=0"`
	FetchMinBytes    int           `envconfig:"FETCH_MIN_BYTES" default:"1024" validate:"gte=1"`
	FetchMaxBytes    int           `envconfig:"FETCH_MAX_BYTES" default:"10485760" validate:"gtefield=FetchMinBytes"`
	RetryTopicPrefix string        `envconfig:"RETRY_TOPIC_PREFIX" default:"events-retry" validate:"required"`
	DLQTopic         string        `envconfig:"DLQ_TOPIC" default:"events-dlq" validate:"required"`
	ExpiredTopic     string        `envconfig:"EXPIRED_TOPIC"`
	DrainTimeout     time.Duration `envconfig:"DRAIN_TIMEOUT" default:"30s"`
}

type ProducerConfig struct {
	Topic      string `envconfig:"TOPIC" default:"events" validate:"required"`
	Acks       string `envconfig:"ACKS" default:"all" validate:"oneof=all -1 0 1"`
	Retries    int    `envconfig:"RETRIES" default:"3" validate:"gte=0"`
	Idempotent bool   `envconfig:"IDEMPOTENT" default:"true"`
}

// RequiredAcks maps the configured acknowledgement mode onto the numeric
// form used by the Kafka writer.
func (p ProducerConfig) RequiredAcks() int {
	switch strings.ToLower(p.Acks) {
	case "all", "-1":
		return -1
	case "0":
		return 0
	case "1":
		return 1
	default:
		return -1
	}
}

// HeaderConfig controls how message headers are encoded and which presets
// are available.
type HeaderConfig struct {
	Encoding     models.EncodePolicy `envconfig:"ENCODING" default:"full"`
	Profiles     string              `envconfig:"PROFILES"`
	Profile      string              `envconfig:"PROFILE"`
	CheckHandles bool                `envconfig:"CHECK_HANDLES" default:"true"`
}

// Boundary is the subset of configuration read by the foreign-caller layer.
type Boundary struct {
	CheckHandles bool
	EncodePolicy models.EncodePolicy
}

var validate = validator.New()

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load .env: %w", err)
		}
		observability.GetLogger().Debug("No .env file found, using process environment")
	}
	return FromEnv()
}

// FromEnv reads configuration from the process environment only.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// LoadBoundary reads the AMQPHEADER_* variables. It never fails: an
// unreadable environment yields checked handles and full encoding.
func LoadBoundary() Boundary {
	var hc HeaderConfig
	if err := envconfig.Process("AMQPHEADER", &hc); err != nil {
		observability.GetLogger().WithError(err).Warn("Invalid AMQPHEADER settings, using defaults")
		return Boundary{CheckHandles: true, EncodePolicy: models.EncodeFull}
	}
	return Boundary{CheckHandles: hc.CheckHandles, EncodePolicy: hc.Encoding}
}
