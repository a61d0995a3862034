package config

import (
	"log/slog"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"APP_HOST", "APP_PORT", "HTTP_PORT", "APP_ENV", "LOG_LEVEL", "DB_HOST", "DB_DATABASE", "KAFKA_BROKERS"} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr() != "0.0.0.0:8097" {
		t.Errorf("addr = %q", cfg.Addr())
	}
	if cfg.DB.Host != "localhost" || cfg.DB.Database != "tickets" {
		t.Errorf("db defaults = %+v", cfg.DB)
	}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Errorf("level = %v, want info", cfg.SlogLevel())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("validate defaults: %v", err)
	}
}

func TestLoadPortFallback(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("HTTP_PORT", "9000")
	cfg, _ := Load()
	if cfg.HTTPPort != "9000" {
		t.Errorf("HTTPPort = %q, want 9000", cfg.HTTPPort)
	}
	t.Setenv("APP_PORT", "8000")
	cfg, _ = Load()
	if cfg.HTTPPort != "8000" {
		t.Errorf("HTTPPort = %q, want 8000", cfg.HTTPPort)
	}
}

func TestDatabaseURLEscapesPassword(t *testing.T) {
	cfg := &Config{}
	cfg.DB.Host, cfg.DB.Port, cfg.DB.User = "db", "5432", "app"
	cfg.DB.Password, cfg.DB.Database, cfg.DB.SSLMode = "p@ss word", "tickets", "disable"
	want := "postgres://app:p%40ss%20word@db:5432/tickets?sslmode=disable"
	if got := cfg.DatabaseURL(); got != want {
		t.Errorf("DatabaseURL = %q, want %q", got, want)
	}
	wantDSN := "host=db port=5432 user=app password=p@ss word dbname=tickets sslmode=disable"
	if got := cfg.DSN(); got != wantDSN {
		t.Errorf("DSN = %q, want %q", got, wantDSN)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{AppEnv: "production", LogLevel: "info"}
	cfg.DB.Host, cfg.DB.Database = "db", "tickets"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for production without password")
	}
	cfg.DB.Password = "secret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	cfg.LogLevel = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown log level")
	}
	cfg.LogLevel = "info"
	cfg.DB.Database = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty DB_DATABASE")
	}
}
