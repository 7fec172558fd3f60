package testutil

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/soilq/soilq-api/config"
	"github.com/soilq/soilq-api/models"
)

// NewTestDB opens a fresh migrated in-memory SQLite database. The pool is
// capped at one connection so every query sees the same memory database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := config.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// CreateUser inserts a user with the given Auth0 id
func CreateUser(t *testing.T, db *gorm.DB, auth0ID, email string) *models.User {
	t.Helper()

	user := &models.User{
		Auth0ID:  auth0ID,
		Name:     "Test Farmer",
		Email:    email,
		Language: models.LanguageEnglish,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}
