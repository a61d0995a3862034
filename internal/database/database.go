package database

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store executes one parameterized statement and scans the resulting rows into dest.
// Placeholders are positional ("?") and args are bound in order.
type Store interface {
	Execute(ctx context.Context, dest any, query string, args ...any) error
}

// GormStore is a Store over a gorm connection pool. Each call checks a connection
// out of the pool and returns it when the statement completes.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Execute(ctx context.Context, dest any, query string, args ...any) error {
	return s.db.WithContext(ctx).Raw(query, args...).Scan(dest).Error
}

// Ping reports whether the pool can reach the database.
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Open connects to postgres. logLevel follows LOG_LEVEL: only "debug" prints SQL.
func Open(dsn, logLevel string) (*gorm.DB, error) {
	level := logger.Silent
	switch logLevel {
	case "debug":
		level = logger.Info
	case "warn", "error":
		level = logger.Error
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}
