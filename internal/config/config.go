package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	applog "zando/internal/log"
)

type Config struct {
	Port          string
	DBDSN         string
	LogFile       string
	StaticDir     string // web assets, including payment logos and QR codes
	APIBaseURL    string
	APITimeout    time.Duration
	APIRate       float64 // outbound requests per second, 0 = unlimited
	DeliveryFee   float64
	SessionSecret string
	SessionTTL    time.Duration
	RedisAddr     string
	CatalogTTL    time.Duration
	KafkaBrokers  []string
	KafkaTopic    string
}

func Load() Config {
	// .env is optional; real environment wins.
	_ = godotenv.Load()

	cfg := Config{
		Port:          env("PORT", "8081"),
		DBDSN:         env("DB_DSN", "zando.db"),
		LogFile:       env("LOG_FILE", "./zando.log"),
		StaticDir:     env("STATIC_DIR", "./web/static"),
		APIBaseURL:    strings.TrimRight(env("API_BASE_URL", "http://localhost:8080/api/v1"), "/"),
		APITimeout:    duration("API_TIMEOUT", 15*time.Second),
		APIRate:       float("API_RATE", 50),
		DeliveryFee:   float("DELIVERY_FEE", 1.00),
		SessionSecret: env("SESSION_SECRET", "dev-only-session-secret-change-me"),
		SessionTTL:    duration("SESSION_TTL", 5*time.Hour),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		CatalogTTL:    duration("CATALOG_TTL", 2*time.Minute),
		KafkaTopic:    env("KAFKA_TOPIC", "zando-orders"),
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	applog.Logger().Info().
		Str("port", cfg.Port).
		Str("db_dsn", cfg.DBDSN).
		Str("api_base_url", cfg.APIBaseURL).
		Float64("delivery_fee", cfg.DeliveryFee).
		Str("redis_addr", cfg.RedisAddr).
		Strs("kafka_brokers", cfg.KafkaBrokers).
		Msg("config loaded")
	return cfg
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		applog.Logger().Warn().Str("key", key).Str("value", v).Dur("default", def).Msg("bad duration, using default")
		return def
	}
	return d
}

func float(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		applog.Logger().Warn().Str("key", key).Str("value", v).Float64("default", def).Msg("bad number, using default")
		return def
	}
	return f
}
