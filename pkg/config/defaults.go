package config

import "time"

// Database defaults
const (
	DefaultDBHost            = "localhost"
	DefaultDBPort            = "5432"
	DefaultDBUser            = "payout"
	DefaultDBName            = "payout"
	DefaultDBSSLMode         = "disable"
	DefaultDBTimeZone        = "UTC"
	DefaultDBMaxIdleConns    = 10
	DefaultDBMaxOpenConns    = 50
	DefaultDBConnMaxLifetime = time.Hour
)

// RabbitMQ defaults
const (
	DefaultRabbitMQPort       = "5672"
	DefaultRabbitMQMaxRetries = 10
	DefaultRabbitMQRetryDelay = 3 * time.Second
	DefaultRequeueDelay       = 5 * time.Second
)

// Server defaults
const (
	DefaultHTTPPort       = "8080"
	DefaultGinMode        = "release"
	DefaultRateLimitRPS   = 1.0
	DefaultRateLimitBurst = 3
)

// Payout defaults
const (
	DefaultPayoutCron       = "0 */5 * * * *"
	DefaultPayoutWorkers    = 4
	DefaultPayoutRunTimeout = 10 * time.Minute
	DefaultRequestQueue     = "payout_run_requests"
	DefaultCreditedQueue    = "payout_credited"
	DefaultRunFinishedQueue = "payout_run_finished"
	DefaultMigrationsDir    = "migrations"
)

// Logger defaults
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)
