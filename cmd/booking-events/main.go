package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"clinicbook/internal/bookings/audit"
	"clinicbook/pkg/config"
	"clinicbook/pkg/kafka"
	kafka_config "clinicbook/pkg/kafka/config"
	kafka_middleware "clinicbook/pkg/kafka/middleware"
)

const ServiceName = "booking-events"

func main() {
	cfg := config.Load(ServiceName)

	if !cfg.EventsEnabled() {
		cfg.Log.Fatal("KAFKA_BROKERS must be set to consume booking events")
	}

	kafkaCfg, err := kafka_config.Load(cfg.KafkaBrokers)
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}

	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.KafkaBookingTopic,
		cfg.KafkaConsumerGroup,
		cfg.KafkaBookingDLQ,
		audit.NewHandler(cfg.Log),
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Consuming booking events",
		"topic", cfg.KafkaBookingTopic,
		"group", cfg.KafkaConsumerGroup,
		"dlq_topic", cfg.KafkaBookingDLQ,
	)

	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close consumer", "error", err)
	}
	cfg.Log.Info("Booking events consumer stopped")
}
