// Package testutil provides in-memory infrastructure for package tests.
package testutil

import (
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/anjiri1684/teacheron/database"
	"github.com/anjiri1684/teacheron/models"
)

// DB returns a migrated in-memory SQLite database private to the test.
// A single connection serialises writers the way row locks do in Postgres.
func DB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Redis starts a miniredis server and returns a client connected to it.
func Redis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// CreateUser inserts a user with password "password123". Tutors also get a
// pending TutorProfile, matching registration.
func CreateUser(t *testing.T, db *gorm.DB, username string, role models.Role) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hash),
		FullName: username,
		Role:     role,
		Status:   models.UserStatusActive,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	if role == models.RoleTutor {
		p := &models.TutorProfile{UserID: u.ID, ApprovalStatus: models.ApprovalPending}
		if err := db.Create(p).Error; err != nil {
			t.Fatalf("create tutor profile %s: %v", username, err)
		}
	}
	return u
}

// ApproveTutor marks the tutor's profile approved and sets searchable fields.
func ApproveTutor(t *testing.T, db *gorm.DB, tutor *models.User, subjects, location string) {
	t.Helper()

	err := db.Model(&models.TutorProfile{}).Where("user_id = ?", tutor.ID).Updates(map[string]any{
		"approval_status": models.ApprovalApproved,
		"subjects":        subjects,
		"location":        location,
	}).Error
	if err != nil {
		t.Fatalf("approve tutor %s: %v", tutor.Username, err)
	}
}

func SetStatus(t *testing.T, db *gorm.DB, u *models.User, status models.UserStatus) {
	t.Helper()

	if err := db.Model(u).Update("status", status).Error; err != nil {
		t.Fatalf("set status: %v", err)
	}
	u.Status = status
}
