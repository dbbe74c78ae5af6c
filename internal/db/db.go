package db

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/snnyvrz/courselibrary/internal/config"
	"github.com/snnyvrz/courselibrary/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	defaultMaxAttempts     = 10
	defaultDelayBetweenTry = 2 * time.Second
)

type retryPolicy struct {
	attempts int
	delay    time.Duration
}

// Connect opens the database selected by cfg.DBDriver. Postgres is retried
// until it answers a ping, since it usually starts alongside the service.
func Connect(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel(cfg.GinMode)),
	}

	switch cfg.DBDriver {
	case config.DriverSQLite:
		return open(ctx, sqlite.Open(cfg.SQLitePath), gormCfg)
	default:
		return connectWithRetry(ctx, func() gorm.Dialector {
			return postgres.Open(cfg.DSN())
		}, gormCfg, retryPolicy{attempts: defaultMaxAttempts, delay: defaultDelayBetweenTry})
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Author{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func connectWithRetry(ctx context.Context, dialector func() gorm.Dialector, gormCfg *gorm.Config, policy retryPolicy) (*gorm.DB, error) {
	var err error

	for attempt := 1; attempt <= policy.attempts; attempt++ {
		var db *gorm.DB
		db, err = open(ctx, dialector(), gormCfg)
		if err == nil {
			return db, nil
		}

		log.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", policy.attempts).
			Msg("db not ready")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(policy.delay):
		}
	}

	return nil, fmt.Errorf("could not connect to db after %d attempts: %w", policy.attempts, err)
}

func open(ctx context.Context, dialector gorm.Dialector, gormCfg *gorm.Config) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return db, nil
}

func gormLogLevel(ginMode string) logger.LogLevel {
	if ginMode == "debug" {
		return logger.Info
	}
	return logger.Warn
}
