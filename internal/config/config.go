package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	defaultDSN         = "host=localhost user=postgres password=postgres dbname=assets port=5432 sslmode=disable"
	defaultCORSOrigins = "http://localhost:5173"
)

type Config struct {
	HTTPPort    string
	DatabaseDSN string
	CORSOrigins string
	LogLevel    string

	DBMaxOpenConns int
	DBMaxIdleConns int

	// Redis is optional; without it Idempotency-Key headers are ignored.
	RedisAddr      string
	RedisPassword  string
	IdempotencyTTL time.Duration

	ProtocolSecret   string
	ProtocolTokenTTL time.Duration

	Organization Organization

	// Empty disables the scheduled low-stock report.
	LowStockCron string
}

// Organization identity printed on every write-off protocol.
type Organization struct {
	Name    string `json:"name"`
	Code    string `json:"code"`
	Address string `json:"address"`
}

func Load() *Config {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:         getEnv("HTTP_PORT", "8080"),
		DatabaseDSN:      getEnv("DATABASE_DSN", defaultDSN),
		CORSOrigins:      getEnv("CORS_ALLOWED_ORIGINS", defaultCORSOrigins),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		DBMaxOpenConns:   getEnvInt("DB_MAX_OPEN_CONNS", 20),
		DBMaxIdleConns:   getEnvInt("DB_MAX_IDLE_CONNS", 10),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		IdempotencyTTL:   time.Duration(getEnvInt("IDEMPOTENCY_TTL_SECONDS", 86400)) * time.Second,
		ProtocolSecret:   getEnv("PROTOCOL_SECRET", ""),
		ProtocolTokenTTL: time.Duration(getEnvInt("PROTOCOL_TOKEN_TTL_MINUTES", 60)) * time.Minute,
		Organization: Organization{
			Name:    getEnv("ORG_NAME", "Enterprise"),
			Code:    getEnv("ORG_CODE", ""),
			Address: getEnv("ORG_ADDRESS", ""),
		},
		LowStockCron: strings.TrimSpace(getEnv("LOW_STOCK_CRON", "")),
	}

	if cfg.DatabaseDSN == defaultDSN {
		logrus.Warn("DATABASE_DSN not set, using the local development default")
	}
	if cfg.CORSOrigins == defaultCORSOrigins {
		logrus.Warn("CORS_ALLOWED_ORIGINS not set, using the local development default")
	}
	if cfg.ProtocolSecret == "" {
		// Tokens still work within one process lifetime but do not survive restarts.
		cfg.ProtocolSecret = uuid.NewString()
		logrus.Warn("PROTOCOL_SECRET not set, protocol confirmation tokens are signed with an ephemeral key")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logrus.WithField("key", key).Warnf("invalid integer %q, using default %d", v, def)
		return def
	}
	return n
}
