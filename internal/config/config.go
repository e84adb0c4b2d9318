package config

import (
	"os"
	"strconv"
)

// Config holds the whole application configuration, populated from
// environment variables.
type Config struct {
	App         AppConfig
	Redis       RedisConfig
	JWT         JWTConfig
	SMTP        SMTPConfig
	Circulation CirculationConfig
	Jobs        JobConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	// Secret shared with the external identity provider that issues the
	// caller identity tokens. The backend only verifies, never issues.
	Secret string
}

type SMTPConfig struct {
	Host string
	Port string
	From string
}

// CirculationConfig carries the lending policy knobs.
type CirculationConfig struct {
	// LoanPeriodDays is the default loan length when the caller supplies
	// no explicit due date.
	LoanPeriodDays int
	// TxMaxRetries bounds optimistic-concurrency retries before an
	// operation surfaces a conflict to the caller.
	TxMaxRetries int
}

// JobConfig configures the scheduled background jobs.
type JobConfig struct {
	// OverdueNotifyCron is the cron spec for the daily overdue
	// notification sweep.
	OverdueNotifyCron string
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Library API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		},
		SMTP: SMTPConfig{
			Host: getEnv("SMTP_HOST", "localhost"),
			Port: getEnv("SMTP_PORT", "1025"),
			From: getEnv("SMTP_FROM", "noreply@library.dev"),
		},
		Circulation: CirculationConfig{
			LoanPeriodDays: getEnvInt("LOAN_PERIOD_DAYS", 14),
			TxMaxRetries:   getEnvInt("TX_MAX_RETRIES", 3),
		},
		Jobs: JobConfig{
			OverdueNotifyCron: getEnv("OVERDUE_NOTIFY_CRON", "0 2 * * *"),
		},
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
