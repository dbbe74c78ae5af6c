package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/snnyvrz/courselibrary/internal/config"
	"github.com/snnyvrz/courselibrary/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestConnect_SQLiteAndMigrate(t *testing.T) {
	cfg := &config.Config{
		GinMode:    "test",
		DBDriver:   config.DriverSQLite,
		SQLitePath: "file:connect_" + uuid.NewString() + "?mode=memory&cache=shared",
	}

	db, err := Connect(context.Background(), cfg)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Migrate(db))
	assert.True(t, db.Migrator().HasTable(&model.Author{}))
}

// unreachablePath points into a directory that does not exist, so sqlite
// cannot create the database file.
func unreachablePath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing", "library.db")
}

func TestConnectWithRetry_GivesUp(t *testing.T) {
	calls := 0
	dialector := func() gorm.Dialector {
		calls++
		return sqlite.Open(unreachablePath(t))
	}

	_, err := connectWithRetry(context.Background(), dialector,
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
		retryPolicy{attempts: 3, delay: time.Millisecond},
	)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, 3, calls)
}

func TestConnectWithRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := connectWithRetry(ctx, func() gorm.Dialector {
		return sqlite.Open(unreachablePath(t))
	}, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
		retryPolicy{attempts: 5, delay: time.Hour},
	)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, logger.Info, gormLogLevel("debug"))
	assert.Equal(t, logger.Warn, gormLogLevel("release"))
}
