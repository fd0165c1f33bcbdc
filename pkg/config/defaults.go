package config

import "time"

const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

var DefaultResources = []string{"Dental", "Emergency Care", "Medicine", "Pediatrics", "Surgery"}

const (
	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultStoreBackend      = StoreMemory
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "clinicbook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisDB = 0

	DefaultBookingBuffer      = 10 * time.Minute
	DefaultBookingMinDuration = 15 * time.Minute
	DefaultBookingMaxDuration = 120 * time.Minute
	DefaultSlotWidth          = 15 * time.Minute

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 10 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultCORSAllowedOrigins = "*"

	DefaultKafkaBookingTopic  = "bookings.events"
	DefaultKafkaBookingDLQ    = "bookings.events.dlq"
	DefaultKafkaConsumerGroup = "booking-events-audit"
)
