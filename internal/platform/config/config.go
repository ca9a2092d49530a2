package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures process-level configuration. Built once at startup so main
// stays lean and no component re-reads the environment per call.
type Config struct {
	Addr string

	// DatabaseURL selects the primary Postgres store when set. Empty means
	// the in-memory fallback store for every aggregate.
	DatabaseURL string

	// RedisURL selects the Redis complaint-signal store when set.
	RedisURL string

	// KafkaBrokers enables the Kafka audit sink when non-empty.
	KafkaBrokers []string
	KafkaTopic   string

	// MaxShiftDuration auto-ends shifts open longer than this. Zero disables
	// expiry, matching observed behavior.
	MaxShiftDuration time.Duration

	ShutdownTimeout time.Duration
}

// FromEnv builds a Config from environment variables. A local .env file is
// honored when present (development convenience; absent in production images).
func FromEnv() Config {
	_ = godotenv.Load()

	cfg := Config{
		Addr:            envOr("SHIFTTRUST_ADDR", ":8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		KafkaTopic:      envOr("KAFKA_AUDIT_TOPIC", "shifttrust.audit"),
		ShutdownTimeout: 10 * time.Second,
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	if raw := os.Getenv("SHIFT_MAX_DURATION"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			cfg.MaxShiftDuration = d
		}
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
