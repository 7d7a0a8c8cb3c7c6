package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the bot.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Telegram TelegramConfig
	AI       AIConfig
}

// AppConfig controls the ops HTTP surface.
type AppConfig struct {
	Name    string
	Env     string
	Host    string
	Port    string
	Version string
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

// TelegramConfig holds transport parameters.
type TelegramConfig struct {
	Token              string
	PollTimeoutSeconds int
	SendTimeoutSeconds int
	IdleSleepMS        int
}

// AIConfig configures the optional answer generator. An empty APIKey
// disables it.
type AIConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
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
			Name:    getEnv("APP_NAME", "support-bot"),
			Env:     getEnv("APP_ENV", "development"),
			Host:    getEnv("APP_HOST", "0.0.0.0"),
			Port:    getEnv("APP_PORT", "8080"),
			Version: getEnv("APP_VERSION", "dev"),
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
		Telegram: TelegramConfig{
			Token:              os.Getenv("TELEGRAM_BOT_TOKEN"),
			PollTimeoutSeconds: getEnvAsInt("TELEGRAM_POLL_TIMEOUT_SECONDS", 25),
			SendTimeoutSeconds: getEnvAsInt("TELEGRAM_SEND_TIMEOUT_SECONDS", 20),
			IdleSleepMS:        getEnvAsInt("TELEGRAM_IDLE_SLEEP_MS", 300),
		},
		AI: AIConfig{
			APIKey:         os.Getenv("AI_API_KEY"),
			BaseURL:        getEnv("AI_BASE_URL", "https://api.deepseek.com"),
			Model:          getEnv("AI_MODEL", "deepseek-chat"),
			TimeoutSeconds: getEnvAsInt("AI_TIMEOUT_SECONDS", 25),
		},
	}

	return cfg, nil
}

// Addr returns the ops HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// PollTimeout returns the long-poll timeout duration.
func (t TelegramConfig) PollTimeout() time.Duration {
	if t.PollTimeoutSeconds <= 0 {
		return 25 * time.Second
	}
	return time.Duration(t.PollTimeoutSeconds) * time.Second
}

// SendTimeout returns the outbound send timeout duration.
func (t TelegramConfig) SendTimeout() time.Duration {
	if t.SendTimeoutSeconds <= 0 {
		return 20 * time.Second
	}
	return time.Duration(t.SendTimeoutSeconds) * time.Second
}

// IdleSleep returns the pause between poll cycles.
func (t TelegramConfig) IdleSleep() time.Duration {
	if t.IdleSleepMS <= 0 {
		return 300 * time.Millisecond
	}
	return time.Duration(t.IdleSleepMS) * time.Millisecond
}

// RequestTimeout returns the generator request timeout duration.
func (a AIConfig) RequestTimeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return 25 * time.Second
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
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
