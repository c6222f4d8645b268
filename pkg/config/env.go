package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Config holds the settings shared by every payout binary
type Config struct {
	Database DatabaseConfig
	RabbitMQ RabbitMQConfig
	Server   ServerConfig
	Payout   PayoutConfig
	Logger   LoggerConfig
}

// DatabaseConfig holds the PostgreSQL connection settings
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	TimeZone        string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// DSN returns the gorm postgres connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode, c.TimeZone)
}

// RabbitMQConfig holds the broker settings. An empty host disables messaging.
type RabbitMQConfig struct {
	Host       string
	Port       string
	User       string
	Password   string
	MaxRetries int
	RetryDelay time.Duration
	// RequeueDelay is how long a failed message is held before it is requeued
	RequeueDelay time.Duration
}

// Enabled reports whether a broker is configured
func (c RabbitMQConfig) Enabled() bool {
	return c.Host != ""
}

// URL returns the AMQP URL
func (c RabbitMQConfig) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/", c.User, c.Password, c.Host, c.Port)
}

// ServerConfig holds the HTTP API settings
type ServerConfig struct {
	Port           string
	GinMode        string
	AllowedOrigins []string
	TriggerKey     string
	RateLimitRPS   float64
	RateLimitBurst int
}

// PayoutConfig holds the engine and trigger settings
type PayoutConfig struct {
	Cron             string
	Workers          int
	RunTimeout       time.Duration
	RequestQueue     string
	CreditedQueue    string
	RunFinishedQueue string
	MigrationsDir    string
}

// LoggerConfig holds the logrus settings
type LoggerConfig struct {
	Level  string
	Format string
	File   string
}

// Load reads configuration from the environment, after loading path as a .env file if given
func Load(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	cfg := &Config{}

	cfg.Database.Host = getEnv("DB_HOST", DefaultDBHost)
	cfg.Database.Port = getEnv("DB_PORT", DefaultDBPort)
	cfg.Database.User = getEnv("DB_USER", DefaultDBUser)
	cfg.Database.Password = getEnv("DB_PASSWORD", "")
	cfg.Database.Name = getEnv("DB_NAME", DefaultDBName)
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", DefaultDBSSLMode)
	cfg.Database.TimeZone = getEnv("DB_TIMEZONE", DefaultDBTimeZone)
	cfg.Database.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", DefaultDBMaxIdleConns)
	cfg.Database.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", DefaultDBMaxOpenConns)
	cfg.Database.ConnMaxLifetime = getEnvDuration("DB_CONN_MAX_LIFETIME", DefaultDBConnMaxLifetime)
	cfg.Database.AutoMigrate = getEnvBool("DB_AUTO_MIGRATE", false)

	cfg.RabbitMQ.Host = getEnv("RABBITMQ_HOST", "")
	cfg.RabbitMQ.Port = getEnv("RABBITMQ_PORT", DefaultRabbitMQPort)
	cfg.RabbitMQ.User = getEnv("RABBITMQ_USER", "")
	cfg.RabbitMQ.Password = getEnv("RABBITMQ_PASSWORD", "")
	cfg.RabbitMQ.MaxRetries = getEnvInt("RABBITMQ_MAX_RETRIES", DefaultRabbitMQMaxRetries)
	cfg.RabbitMQ.RetryDelay = getEnvDuration("RABBITMQ_RETRY_DELAY", DefaultRabbitMQRetryDelay)
	cfg.RabbitMQ.RequeueDelay = getEnvDuration("RABBITMQ_REQUEUE_DELAY", DefaultRequeueDelay)

	cfg.Server.Port = getEnv("PORT", DefaultHTTPPort)
	cfg.Server.GinMode = getEnv("GIN_MODE", DefaultGinMode)
	cfg.Server.AllowedOrigins = getEnvList("ALLOWED_ORIGINS")
	cfg.Server.TriggerKey = getEnv("PAYOUT_TRIGGER_KEY", "")
	cfg.Server.RateLimitRPS = getEnvFloat("TRIGGER_RATE_LIMIT_RPS", DefaultRateLimitRPS)
	cfg.Server.RateLimitBurst = getEnvInt("TRIGGER_RATE_LIMIT_BURST", DefaultRateLimitBurst)

	cfg.Payout.Cron = getEnv("PAYOUT_CRON", DefaultPayoutCron)
	cfg.Payout.Workers = getEnvInt("PAYOUT_WORKERS", DefaultPayoutWorkers)
	cfg.Payout.RunTimeout = getEnvDuration("PAYOUT_RUN_TIMEOUT", DefaultPayoutRunTimeout)
	cfg.Payout.RequestQueue = getEnv("PAYOUT_REQUEST_QUEUE", DefaultRequestQueue)
	cfg.Payout.CreditedQueue = getEnv("PAYOUT_CREDITED_QUEUE", DefaultCreditedQueue)
	cfg.Payout.RunFinishedQueue = getEnv("PAYOUT_RUN_FINISHED_QUEUE", DefaultRunFinishedQueue)
	cfg.Payout.MigrationsDir = getEnv("MIGRATIONS_DIR", DefaultMigrationsDir)

	cfg.Logger.Level = getEnv("LOG_LEVEL", DefaultLogLevel)
	cfg.Logger.Format = getEnv("LOG_FORMAT", DefaultLogFormat)
	cfg.Logger.File = getEnv("LOG_FILE", "")

	return cfg, nil
}

// Validate checks the settings every binary depends on
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if _, err := logrus.ParseLevel(c.Logger.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", c.Logger.Level)
	}
	if c.Logger.Format != "text" && c.Logger.Format != "json" {
		return fmt.Errorf("invalid log format: %s", c.Logger.Format)
	}
	if _, err := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor).Parse(c.Payout.Cron); err != nil {
		return fmt.Errorf("invalid PAYOUT_CRON %q: %w", c.Payout.Cron, err)
	}
	if c.Payout.Workers <= 0 {
		return fmt.Errorf("PAYOUT_WORKERS must be positive")
	}
	if c.Payout.RunTimeout <= 0 {
		return fmt.Errorf("PAYOUT_RUN_TIMEOUT must be positive")
	}
	return nil
}

// ValidateServer checks the extra settings the HTTP API needs
func (c *Config) ValidateServer() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.Server.TriggerKey == "" {
		return fmt.Errorf("PAYOUT_TRIGGER_KEY is required")
	}
	if c.Server.RateLimitRPS <= 0 || c.Server.RateLimitBurst <= 0 {
		return fmt.Errorf("trigger rate limit must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated variable, e.g. "http://localhost:3000,http://localhost:3001"
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
