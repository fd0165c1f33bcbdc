package config

import (
	"strings"
	"testing"
	"time"

	"clinicbook/pkg/logger"
)

func validConfig() *Config {
	return &Config{
		Port:               "8080",
		StoreBackend:       StoreMemory,
		MongoURI:           DefaultMongoURI,
		MongoDatabaseName:  DefaultMongoDatabaseName,
		MongoConnTimeout:   DefaultMongoConnTimeout,
		Resources:          DefaultResources,
		BookingBuffer:      DefaultBookingBuffer,
		BookingMinDuration: DefaultBookingMinDuration,
		BookingMaxDuration: DefaultBookingMaxDuration,
		SlotWidth:          DefaultSlotWidth,
		RateLimitRequests:  DefaultRateLimitRequests,
		RateLimitWindow:    DefaultRateLimitWindow,
		RequestTimeout:     DefaultRequestTimeout,
		IdempotencyTTL:     DefaultIdempotencyTTL,
		MaxRequestSize:     DefaultMaxRequestSize,
		ReadTimeout:        DefaultReadTimeout,
		WriteTimeout:       DefaultWriteTimeout,
		IdleTimeout:        DefaultIdleTimeout,
		ShutdownTimeout:    DefaultShutdownTimeout,
		KafkaBookingTopic:  DefaultKafkaBookingTopic,
		Log:                logger.Discard(),
	}
}

func TestValidate_Defaults(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected default configuration to be valid, got: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantMsg string
	}{
		{
			name:    "port out of range",
			mutate:  func(cfg *Config) { cfg.Port = "70000" },
			wantMsg: "Port must be between 1 and 65535",
		},
		{
			name:    "unknown store backend",
			mutate:  func(cfg *Config) { cfg.StoreBackend = "postgres" },
			wantMsg: "StoreBackend must be one of",
		},
		{
			name: "mongo backend with bad uri",
			mutate: func(cfg *Config) {
				cfg.StoreBackend = StoreMongo
				cfg.MongoURI = "http://localhost"
			},
			wantMsg: "MongoURI must start with",
		},
		{
			name:    "no resources",
			mutate:  func(cfg *Config) { cfg.Resources = nil },
			wantMsg: "Resources cannot be empty",
		},
		{
			name:    "duplicate resource",
			mutate:  func(cfg *Config) { cfg.Resources = []string{"Dental", "Dental"} },
			wantMsg: `Resource "Dental" is listed more than once`,
		},
		{
			name:    "max below min",
			mutate:  func(cfg *Config) { cfg.BookingMaxDuration = 10 * time.Minute },
			wantMsg: "BookingMaxDuration",
		},
		{
			name:    "slot width not dividing a day",
			mutate:  func(cfg *Config) { cfg.SlotWidth = 7 * time.Minute },
			wantMsg: "SlotWidth must be positive and divide a day evenly",
		},
		{
			name: "request timeout outlives write timeout",
			mutate: func(cfg *Config) {
				cfg.RequestTimeout = 30 * time.Second
				cfg.WriteTimeout = 15 * time.Second
			},
			wantMsg: "RequestTimeout (30s) must be less than WriteTimeout (15s)",
		},
		{
			name: "kafka enabled without topic",
			mutate: func(cfg *Config) {
				cfg.KafkaBrokers = []string{"localhost:9092"}
				cfg.KafkaBookingTopic = ""
			},
			wantMsg: "KafkaBookingTopic cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected error to contain %q, got: %v", tt.wantMsg, err)
			}
		})
	}
}

func TestValidate_AggregatesErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "abc"
	cfg.RateLimitRequests = 0
	cfg.ShutdownTimeout = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	for _, want := range []string{"1. Port", "2. RateLimitRequests", "3. ShutdownTimeout"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error to contain %q, got: %v", want, err)
		}
	}
}

func TestGetEnvList(t *testing.T) {
	t.Setenv(EnvBookingResources, " Dental , Surgery,,Medicine,Emergency   Care,Dental ")

	got := getEnvList(EnvBookingResources, DefaultResources)
	want := []string{"Dental", "Surgery", "Medicine", "Emergency Care"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("item %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestGetEnvList_Fallback(t *testing.T) {
	t.Setenv(EnvBookingResources, "")

	got := getEnvList(EnvBookingResources, DefaultResources)
	if len(got) != len(DefaultResources) {
		t.Errorf("expected fallback %v, got %v", DefaultResources, got)
	}
}

func TestRedactMongoURI(t *testing.T) {
	got := redactMongoURI("mongodb://admin:secret@db:27017")
	if got != "mongodb://***:***@db:27017" {
		t.Errorf("unexpected redaction: %s", got)
	}
}
