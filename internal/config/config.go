package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
	Engine       EngineConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters. Tokens are issued by the
// parent ticketing platform; this service only validates them.
type AuthConfig struct {
	JWTSecret string
}

// NotificationConfig holds notification delivery endpoints.
type NotificationConfig struct {
	EmailFrom         string
	WebhookURL        string
	WebhookTimeoutSec int
}

// EngineConfig controls escalation engine behavior.
type EngineConfig struct {
	OrgTimezone              string
	BatchLimit               int
	ActionTimeoutSeconds     int
	RuleCacheTTLSeconds      int
	SchedulerEnabled         bool
	SchedulerIntervalSeconds int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "escalation-engine"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8081"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("AUTH_JWT_SECRET", "dev-secret"),
		},
		Notification: NotificationConfig{
			EmailFrom:         getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL:        getEnv("NOTIFY_WEBHOOK_URL", ""),
			WebhookTimeoutSec: getEnvAsInt("NOTIFY_WEBHOOK_TIMEOUT_SECONDS", 5),
		},
		Engine: EngineConfig{
			OrgTimezone:              getEnv("ENGINE_ORG_TIMEZONE", "UTC"),
			BatchLimit:               getEnvAsInt("ENGINE_BATCH_LIMIT", 100),
			ActionTimeoutSeconds:     getEnvAsInt("ENGINE_ACTION_TIMEOUT_SECONDS", 10),
			RuleCacheTTLSeconds:      getEnvAsInt("ENGINE_RULE_CACHE_TTL_SECONDS", 60),
			SchedulerEnabled:         getEnvAsBool("ENGINE_SCHEDULER_ENABLED", false),
			SchedulerIntervalSeconds: getEnvAsInt("ENGINE_SCHEDULER_INTERVAL_SECONDS", 300),
		},
	}

	if _, err := time.LoadLocation(cfg.Engine.OrgTimezone); err != nil {
		return nil, fmt.Errorf("invalid ENGINE_ORG_TIMEZONE: %w", err)
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Location resolves the organizational timezone. Load validates it, so this
// falls back to UTC only when called on a hand-built config.
func (e EngineConfig) Location() *time.Location {
	loc, err := time.LoadLocation(e.OrgTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ActionTimeout returns the per-action timeout duration.
func (e EngineConfig) ActionTimeout() time.Duration {
	if e.ActionTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(e.ActionTimeoutSeconds) * time.Second
}

// RuleCacheTTL returns the active-rule cache TTL.
func (e EngineConfig) RuleCacheTTL() time.Duration {
	if e.RuleCacheTTLSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(e.RuleCacheTTLSeconds) * time.Second
}

// SchedulerInterval returns the periodic auto-run interval.
func (e EngineConfig) SchedulerInterval() time.Duration {
	if e.SchedulerIntervalSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(e.SchedulerIntervalSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
