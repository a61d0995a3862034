package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppHost  string
	HTTPPort string
	AppEnv   string
	LogLevel string

	// KafkaBrokers and KafkaTopicTicket enable ticket events; either empty disables them.
	KafkaBrokers     string
	KafkaTopicTicket string

	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		Database string
		SSLMode  string
	}
}

func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	cfg := &Config{
		AppHost:          env("0.0.0.0", "APP_HOST"),
		HTTPPort:         env("8097", "APP_PORT", "HTTP_PORT"),
		AppEnv:           env("development", "APP_ENV"),
		LogLevel:         strings.ToLower(env("info", "LOG_LEVEL")),
		KafkaBrokers:     env("", "KAFKA_BROKERS"),
		KafkaTopicTicket: env("", "KAFKA_TOPIC_TICKET"),
	}
	db := &cfg.DB
	for _, v := range []struct {
		dst      *string
		key, def string
	}{
		{&db.Host, "DB_HOST", "localhost"},
		{&db.Port, "DB_PORT", "5432"},
		{&db.User, "DB_USER", "postgres"},
		{&db.Password, "DB_PASSWORD", "postgres"},
		{&db.Database, "DB_DATABASE", "tickets"},
		{&db.SSLMode, "DB_SSLMODE", "disable"},
	} {
		*v.dst = env(v.def, v.key)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.DB.Host == "":
		return errors.New("config: DB_HOST is required")
	case c.DB.Database == "":
		return errors.New("config: DB_DATABASE is required")
	case c.AppEnv == "production" && c.DB.Password == "":
		return errors.New("config: DB_PASSWORD is required when APP_ENV=production")
	}
	if _, ok := logLevels[c.LogLevel]; !ok {
		return fmt.Errorf("config: unknown LOG_LEVEL %q", c.LogLevel)
	}
	return nil
}

// DSN is the key=value form gorm's postgres driver takes.
func (c *Config) DSN() string {
	db := c.DB
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		db.Host, db.Port, db.User, db.Password, db.Database, db.SSLMode)
}

// DatabaseURL is the URL form used by lib/pq and goose.
func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DB.User, c.DB.Password),
		Host:     net.JoinHostPort(c.DB.Host, c.DB.Port),
		Path:     "/" + c.DB.Database,
		RawQuery: url.Values{"sslmode": {c.DB.SSLMode}}.Encode(),
	}
	return u.String()
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.AppHost, c.HTTPPort)
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	if l, ok := logLevels[c.LogLevel]; ok {
		return l
	}
	return slog.LevelInfo
}

// NewLogger builds the process logger: JSON to stderr at the configured level.
func (c *Config) NewLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: c.SlogLevel()})).
		With("service", "ticket-api", "env", c.AppEnv)
}

// env returns the first non-empty variable among keys, or def.
func env(def string, keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}
