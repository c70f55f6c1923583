// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// EmailConfig provides settings for the SMTP mail sender.
type EmailConfig interface {
	GetEmailEnabled() bool
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
}

// SchedulerConfig provides settings for the asynq scheduler and dispatch tick.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetDispatchTickInterval() time.Duration
}

// DispatchConfig provides tuning for one dispatch tick.
type DispatchConfig interface {
	GetDispatchBatchSize() int
	GetDispatchWorkers() int
	GetDispatchSendsPerSecond() float64
}

// TrackingConfig provides settings for tracking token issuance.
type TrackingConfig interface {
	GetTrackingBaseURL() string
	GetTrackingSecret() string
}

// UnsubscribeConfig provides settings for unsubscribe token issuance.
type UnsubscribeConfig interface {
	GetUnsubscribeBaseURL() string
	GetUnsubscribeSecret() string
}

// WebhookConfig provides settings for the outbound webhook broadcaster.
type WebhookConfig interface {
	GetWebhookConfigPath() string
	GetWebhookTimeout() time.Duration
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                    string
	HTTPAddr               string
	DatabaseURL            string
	CORSAllowAll           bool
	CORSOrigins            []string
	CORSAllowCreds         bool
	AppBaseURL             string
	EmailEnabled           bool
	SMTPHost               string
	SMTPPort               int
	SMTPUsername           string
	SMTPPassword           string
	EmailFromName          string
	EmailFromAddress       string
	RedisURL               string
	RedisTLSInsecure       bool
	AsynqQueueName         string
	AsynqConcurrency       int
	DispatchTickInterval   time.Duration
	DispatchBatchSize      int
	DispatchWorkers        int
	DispatchSendsPerSecond float64
	TrackingSecret         string
	UnsubscribeSecret      string
	WebhookConfigPath      string
	WebhookTimeout         time.Duration
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// EmailConfig implementation
func (c *Config) GetEmailEnabled() bool       { return c.EmailEnabled }
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string                    { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool              { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string              { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int               { return c.AsynqConcurrency }
func (c *Config) GetDispatchTickInterval() time.Duration { return c.DispatchTickInterval }

// DispatchConfig implementation
func (c *Config) GetDispatchBatchSize() int          { return c.DispatchBatchSize }
func (c *Config) GetDispatchWorkers() int            { return c.DispatchWorkers }
func (c *Config) GetDispatchSendsPerSecond() float64 { return c.DispatchSendsPerSecond }

// TrackingConfig implementation
func (c *Config) GetTrackingBaseURL() string { return c.AppBaseURL }
func (c *Config) GetTrackingSecret() string  { return c.TrackingSecret }

// UnsubscribeConfig implementation
func (c *Config) GetUnsubscribeBaseURL() string { return c.AppBaseURL }
func (c *Config) GetUnsubscribeSecret() string  { return c.UnsubscribeSecret }

// WebhookConfig implementation
func (c *Config) GetWebhookConfigPath() string     { return c.WebhookConfigPath }
func (c *Config) GetWebhookTimeout() time.Duration { return c.WebhookTimeout }

// =============================================================================
// Loading
// =============================================================================

// Load reads configuration from the environment (and an optional .env file).
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	emailEnabled := strings.EqualFold(getEnv("EMAIL_ENABLED", "true"), "true")
	smtpHost := getEnv("SMTP_HOST", "")

	cfg := &Config{
		Env:                    getEnv("APP_ENV", "development"),
		HTTPAddr:               getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		CORSAllowAll:           corsAllowAll,
		CORSOrigins:            corsOrigins,
		CORSAllowCreds:         strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		AppBaseURL:             getEnv("APP_BASE_URL", "http://localhost:8080"),
		EmailEnabled:           emailEnabled && smtpHost != "",
		SMTPHost:               smtpHost,
		SMTPPort:               int(mustInt64(getEnv("SMTP_PORT", "587"))),
		SMTPUsername:           getEnv("SMTP_USERNAME", ""),
		SMTPPassword:           getEnv("SMTP_PASSWORD", ""),
		EmailFromName:          getEnv("EMAIL_FROM_NAME", "Nurture"),
		EmailFromAddress:       getEnv("EMAIL_FROM_ADDRESS", ""),
		RedisURL:               getEnv("REDIS_URL", ""),
		RedisTLSInsecure:       strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:         getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:       int(mustInt64(getEnv("ASYNQ_CONCURRENCY", "10"))),
		DispatchTickInterval:   mustDuration(getEnv("DISPATCH_TICK_INTERVAL", "1m")),
		DispatchBatchSize:      int(mustInt64(getEnv("DISPATCH_BATCH_SIZE", "100"))),
		DispatchWorkers:        int(mustInt64(getEnv("DISPATCH_WORKERS", "4"))),
		DispatchSendsPerSecond: mustFloat64(getEnv("DISPATCH_SENDS_PER_SECOND", "10")),
		TrackingSecret:         getEnv("TRACKING_SECRET", ""),
		UnsubscribeSecret:      getEnv("UNSUBSCRIBE_SECRET", ""),
		WebhookConfigPath:      getEnv("WEBHOOK_CONFIG_PATH", ""),
		WebhookTimeout:         mustDuration(getEnv("WEBHOOK_TIMEOUT", "10s")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.TrackingSecret == "" {
		return nil, fmt.Errorf("TRACKING_SECRET is required")
	}
	if cfg.UnsubscribeSecret == "" {
		return nil, fmt.Errorf("UNSUBSCRIBE_SECRET is required")
	}
	if cfg.EmailEnabled && cfg.EmailFromAddress == "" {
		return nil, fmt.Errorf("EMAIL_FROM_ADDRESS is required when email is enabled")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.DispatchTickInterval <= 0 {
		cfg.DispatchTickInterval = time.Minute
	}

	return cfg, nil
}

// =============================================================================
// Helpers
// =============================================================================

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func mustFloat64(value string) float64 {
	result, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
