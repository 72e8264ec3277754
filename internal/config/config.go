package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config keeps runtime settings for the tracker.
type Config struct {
	HTTPAddr        string
	TLSCertFile     string
	TLSKeyFile      string
	DatabaseURL     string
	DBDriver        string
	JWTSecret       string
	JWTIssuer       string
	LogLevel        string
	DigestInterval  time.Duration
	DigestAt        string
	TelegramToken   string
	TelegramChatID  int64
	ShutdownTimeout time.Duration
}

// TLSEnabled reports whether both certificate and key are configured.
func (c Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// TelegramEnabled reports whether digests can be delivered to Telegram.
func (c Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

// Load reads configuration from an optional .env file and environment variables with sane defaults.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		HTTPAddr:        env("HTTP_ADDR"),
		TLSCertFile:     env("TLS_CERT_FILE"),
		TLSKeyFile:      env("TLS_KEY_FILE"),
		DatabaseURL:     env("DATABASE_URL"),
		DBDriver:        strings.ToLower(env("DB_DRIVER")),
		JWTSecret:       env("AUTH_JWT_SECRET"),
		JWTIssuer:       env("AUTH_JWT_ISSUER"),
		LogLevel:        env("LOG_LEVEL"),
		DigestAt:        env("DIGEST_AT"),
		TelegramToken:   env("TELEGRAM_TOKEN"),
		ShutdownTimeout: 10 * time.Second,
		DigestInterval:  24 * time.Hour,
	}

	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "db.sqlite"
	}
	if cfg.DBDriver == "" {
		cfg.DBDriver = "sqlite"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if raw := env("DIGEST_INTERVAL_HOURS"); raw != "" {
		interval, err := parseInterval(raw)
		if err != nil {
			return cfg, fmt.Errorf("DIGEST_INTERVAL_HOURS: %w", err)
		}
		cfg.DigestInterval = interval
	}
	if raw := env("SHUTDOWN_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return cfg, fmt.Errorf("SHUTDOWN_TIMEOUT: invalid duration %q", raw)
		}
		cfg.ShutdownTimeout = d
	}
	if raw := env("TELEGRAM_CHAT_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("TELEGRAM_CHAT_ID: invalid chat id %q", raw)
		}
		cfg.TelegramChatID = id
	}

	if (cfg.TLSCertFile == "") != (cfg.TLSKeyFile == "") {
		return cfg, fmt.Errorf("TLS_CERT_FILE and TLS_KEY_FILE must be set together")
	}
	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("AUTH_JWT_SECRET is required")
	}

	return cfg, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// parseInterval reads a whole number of hours. Zero disables the job.
func parseInterval(raw string) (time.Duration, error) {
	hours, err := strconv.Atoi(raw)
	if err != nil || hours < 0 {
		return 0, fmt.Errorf("invalid hour count %q", raw)
	}
	return time.Duration(hours) * time.Hour, nil
}
