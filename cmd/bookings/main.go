package main

import (
	"context"

	"clinicbook/internal/bookings/events"
	"clinicbook/internal/bookings/handler"
	"clinicbook/internal/bookings/repository"
	"clinicbook/internal/bookings/service"
	"clinicbook/internal/bookings/validator"
	mongoMigration "clinicbook/internal/migrations/mongo"
	"clinicbook/pkg/app"
	"clinicbook/pkg/config"
	"clinicbook/pkg/kafka"
	kafka_config "clinicbook/pkg/kafka/config"
	kafka_middleware "clinicbook/pkg/kafka/middleware"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)

	cfg.Log.Info("Starting Bookings service")
	if cfg.UsesRedis() {
		cfg.SetRedis()
	}

	store := initStore(cfg)
	publisher := initPublisher(cfg)
	bookingService := initServices(cfg, store, publisher)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewBookingHandler(bookingService, cfg.Log),
		handler.NewHealthHandler(cfg.Client, cfg.Log),
	)
	serverApp.OnShutdown(func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	})
	serverApp.Run()
}

func initStore(cfg *config.Config) repository.ScheduleStore {
	if !cfg.UsesMongo() {
		cfg.Log.Warn("Using in-memory schedule store, bookings are lost on restart")
		return repository.NewMemoryScheduleStore()
	}

	cfg.SetMongo()
	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
	defer cancel()
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	if err := mongoMigration.RunMigration(ctx, db, cfg.Resources, cfg.Log); err != nil {
		cfg.Log.Fatal("Failed to prepare bookings collection", "error", err)
	}
	return repository.NewMongoScheduleStore(cfg)
}

func initPublisher(cfg *config.Config) events.Publisher {
	if !cfg.EventsEnabled() {
		cfg.Log.Info("Kafka brokers not configured, booking events disabled")
		return events.NoopPublisher{}
	}

	kafkaCfg, err := kafka_config.Load(cfg.KafkaBrokers)
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	producer, err := kafka.NewProducer(kafkaCfg, cfg.KafkaBookingTopic, cfg.KafkaBookingDLQ, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))

	cfg.Log.Info("Booking events enabled", "topic", cfg.KafkaBookingTopic, "brokers", cfg.KafkaBrokers)
	return events.NewKafkaPublisher(producer, ServiceName, cfg.Log)
}

func initServices(cfg *config.Config, store repository.ScheduleStore, publisher events.Publisher) service.BookingService {
	bookingValidator := validator.NewBookingValidator(
		cfg.Resources,
		cfg.BookingMinDuration,
		cfg.BookingMaxDuration,
		cfg.Log,
	)
	bookingService := service.NewBookingService(
		store,
		bookingValidator,
		publisher,
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "store", cfg.StoreBackend, "resources", cfg.Resources)
	return bookingService
}
