package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/snnyvrz/courselibrary/internal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a private in-memory sqlite database with the schema migrated.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db := openMemoryDB(t, "testdb_")

	if err := db.AutoMigrate(&model.Author{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// NewUnmigratedDB returns a database without tables, so every query fails.
func NewUnmigratedDB(t *testing.T) *gorm.DB {
	t.Helper()

	return openMemoryDB(t, "errdb_")
}

func openMemoryDB(t *testing.T, prefix string) *gorm.DB {
	t.Helper()

	dsn := "file:" + prefix + uuid.New().String() + "?mode=memory&cache=shared"

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB from gorm: %v", err)
	}

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

func SeedAuthor(t *testing.T, db *gorm.DB, firstName, lastName, mainCategory string) model.Author {
	t.Helper()

	author := model.Author{
		FirstName:    firstName,
		LastName:     lastName,
		MainCategory: mainCategory,
		DateOfBirth:  time.Date(1970, 5, 17, 0, 0, 0, 0, time.UTC),
	}

	if err := db.Create(&author).Error; err != nil {
		t.Fatalf("failed to seed author %s %s: %v", firstName, lastName, err)
	}

	return author
}
