package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"go-amqpheader/internal/config"
	"go-amqpheader/internal/observability"
	"go-amqpheader/internal/relay"
	"go-amqpheader/internal/service"
)

func main() {
	serviceName := flag.String("service", "", "consumer group id, overrides KAFKA_CONSUMER_GROUP_ID")
	topic := flag.String("topic", "", "topic to consume, overrides KAFKA_CONSUMER_TOPIC")
	flag.Parse()

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

	if *serviceName != "" {
		cfg.Consumer.GroupID = *serviceName
	}
	if *topic != "" {
		cfg.Consumer.Topic = *topic
	}

	metrics := observability.NewInMemoryMetrics()

	producer, err := relay.NewProducer(relay.ProducerConfig{
		Brokers:      cfg.Kafka.Brokers,
		Acks:         cfg.Producer.RequiredAcks(),
		Retries:      cfg.Producer.Retries,
		Idempotent:   cfg.Producer.Idempotent,
		EncodePolicy: cfg.Header.Encoding,
		Metrics:      metrics,
		Logger:       logger,
	})
	if err != nil {
		logger.Fatal("Failed to create producer", zap.Error(err))
	}
	defer producer.Close()

	consumer, err := relay.NewConsumer(relay.ConsumerConfig{
		Brokers:          cfg.Kafka.Brokers,
		Topic:            cfg.Consumer.Topic,
		GroupID:          cfg.Consumer.GroupID,
		Workers:          cfg.Consumer.Workers,
		RetryMax:         cfg.Consumer.RetryMax,
		FetchMinBytes:    cfg.Consumer.FetchMinBytes,
		FetchMaxBytes:    cfg.Consumer.FetchMaxBytes,
		RetryTopicPrefix: cfg.Consumer.RetryTopicPrefix,
		DLQTopic:         cfg.Consumer.DLQTopic,
		ExpiredTopic:     cfg.Consumer.ExpiredTopic,
		Metrics:          metrics,
		Logger:           logger,
	}, producer)
	if err != nil {
		logger.Fatal("Failed to create consumer", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := relay.NewKafkaClient(cfg.Kafka.Brokers, 5, cfg.Consumer.Topic)
	if err := client.HealthCheck(ctx); err != nil {
		logger.Warn("Kafka not healthy at startup", zap.Error(err))
	}
	go client.HealthCheckLoop(ctx, 30*time.Second, nil)

	processor := service.NewMessageProcessor()
	logger.Info("Starting Kafka consumer",
		zap.String("group_id", cfg.Consumer.GroupID),
		zap.String("topic", cfg.Consumer.Topic),
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := consumer.Start(ctx, processor.Process); err != nil {
			logger.Error("Consumer error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	select {
	case <-done:
	case <-time.After(cfg.Consumer.DrainTimeout):
		logger.Warn("Timed out waiting for workers to drain")
	}
	if err := consumer.Close(); err != nil {
		logger.Error("Failed to close consumer", zap.Error(err))
	}
	logger.Info("Consumer stopped", zap.Any("metrics", metrics.Snapshot()))
}
