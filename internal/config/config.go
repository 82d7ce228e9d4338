package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port         string
	DBConn       string
	LogLevel     string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string

	DigestSchedule   string
	DigestRecipients []string
	SMTPHost         string
	SMTPPort         string
	SMTPUsername     string
	SMTPPassword     string
	SenderEmail      string
}

// NewConfig loads configuration from environment variables.
// A .env file in the working directory is loaded first when present.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	readTimeout, err := time.ParseDuration(getEnv("READ_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("WRITE_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid WRITE_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		DBConn:           getEnv("DB_CONN", "host=localhost port=5436 user=test password=test dbname=finoscope sslmode=disable"),
		LogLevel:         getEnv("LOG_LEVEL", "INFO"),
		Env:              getEnv("APP_ENV", "production"),
		ReadTimeout:      readTimeout,
		WriteTimeout:     writeTimeout,
		CORSOrigins:      splitList(getEnv("CORS_ORIGINS", "")),
		DigestSchedule:   getEnv("DIGEST_SCHEDULE", ""),
		DigestRecipients: splitList(getEnv("DIGEST_RECIPIENTS", "")),
		SMTPHost:         getEnv("SMTP_HOST", ""),
		SMTPPort:         getEnv("SMTP_PORT", "587"),
		SMTPUsername:     getEnv("SMTP_USERNAME", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
		SenderEmail:      getEnv("SENDER_EMAIL", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DigestEnabled reports whether the scheduled debt digest should run
func (c *Config) DigestEnabled() bool {
	return c.DigestSchedule != ""
}

// IsDevelopment reports whether internal error details may be exposed to clients
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

func (c *Config) validate() error {
	if c.DBConn == "" {
		return fmt.Errorf("DB_CONN is required")
	}
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.DigestEnabled() {
		if len(c.DigestRecipients) == 0 {
			return fmt.Errorf("DIGEST_RECIPIENTS is required when DIGEST_SCHEDULE is set")
		}
		if c.SMTPHost == "" {
			return fmt.Errorf("SMTP_HOST is required when DIGEST_SCHEDULE is set")
		}
		if c.SenderEmail == "" {
			return fmt.Errorf("SENDER_EMAIL is required when DIGEST_SCHEDULE is set")
		}
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
