package db

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yi-nology/showcase/biz/dal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an isolated in-memory SQLite database for testing
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent), // Reduce log noise in tests
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get underlying DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := model.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate tables: %v", err)
	}

	return db
}

// CleanupTestDB closes the database connection
func CleanupTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	sqlDB, err := db.DB()
	if err != nil {
		t.Logf("Warning: Failed to get underlying DB: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		t.Logf("Warning: Failed to close DB: %v", err)
	}
}

// CreateTestFile creates a published model with small inline payloads
func CreateTestFile(t *testing.T, db *gorm.DB, name string, year int) *model.File {
	t.Helper()
	file := &model.File{
		FileName: name,
		Banner:   model.Slot{Data: []byte("banner"), MimeType: "image/png"},
		Model:    model.Slot{Data: []byte("glTF"), MimeType: "model/gltf-binary"},
		AddedBy:  "admin@example.com",
		Location: "Test City",
		Year:     year,
	}
	if err := NewFileDAO().Create(context.Background(), db, file); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	return file
}

// CreateTestAdmin creates an admin account with the given password hash
func CreateTestAdmin(t *testing.T, db *gorm.DB, username, hash string) *model.Admin {
	t.Helper()
	admin := &model.Admin{Username: username, PasswordHash: hash}
	if err := NewAdminDAO().Create(context.Background(), db, admin); err != nil {
		t.Fatalf("Failed to create test admin: %v", err)
	}
	return admin
}

// CreateTestChallenge stores a challenge for the admin expiring after ttl
func CreateTestChallenge(t *testing.T, db *gorm.DB, userID uint, code string, ttl time.Duration) *model.TwoFactor {
	t.Helper()
	challenge := &model.TwoFactor{
		UserID:           userID,
		VerificationCode: code,
		ExpiresAt:        time.Now().Add(ttl),
	}
	if err := NewTwoFactorDAO().Create(context.Background(), db, challenge); err != nil {
		t.Fatalf("Failed to create test challenge: %v", err)
	}
	return challenge
}
