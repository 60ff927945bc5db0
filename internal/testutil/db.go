// Package testutil seeds in-memory databases for package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode"

	"github.com/anonto42/capsule-social/backend/internal/models"
	"github.com/anonto42/capsule-social/backend/internal/repositories"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a fresh in-memory SQLite database with all tables migrated.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	// A named shared-cache database keeps every pooled connection on the same data.
	name := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := repositories.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// Seeder inserts fixtures and fails the test on any error.
type Seeder struct {
	t  testing.TB
	db *gorm.DB
}

// NewSeeder creates a Seeder bound to db.
func NewSeeder(t testing.TB, db *gorm.DB) *Seeder {
	return &Seeder{t: t, db: db}
}

func (s *Seeder) create(v any) {
	s.t.Helper()
	if err := s.db.Create(v).Error; err != nil {
		s.t.Fatalf("seed %T: %v", v, err)
	}
}

// User inserts a user with the given name.
func (s *Seeder) User(name string) models.User {
	s.t.Helper()
	u := models.User{Name: name, Email: fmt.Sprintf("%s-%d@example.com", name, time.Now().UnixNano())}
	s.create(&u)
	return u
}

// Capsule inserts a capsule owned by ownerID.
func (s *Seeder) Capsule(ownerID uint, title string, privacy models.Privacy) models.Capsule {
	s.t.Helper()
	c := models.Capsule{UserID: ownerID, Title: title, Privacy: privacy}
	s.create(&c)
	return c
}

// Member inserts a membership of userID on capsuleID.
func (s *Seeder) Member(capsuleID, userID uint, status models.MembershipStatus) {
	s.t.Helper()
	s.create(&models.CapsuleMember{CapsuleID: capsuleID, UserID: userID, Status: status})
}

// Friendship inserts an edge stored as userID -> friendID.
func (s *Seeder) Friendship(userID, friendID uint, status models.FriendshipStatus) models.Friendship {
	s.t.Helper()
	f := models.Friendship{UserID: userID, FriendID: friendID, Status: status}
	s.create(&f)
	return f
}

// Comment inserts a comment with an explicit creation time.
func (s *Seeder) Comment(capsuleID, userID uint, text string, at time.Time) models.CapsuleComment {
	s.t.Helper()
	c := models.CapsuleComment{CapsuleID: capsuleID, UserID: userID, Comment: text, CreatedAt: at, UpdatedAt: at}
	s.create(&c)
	return c
}

// CommentWithoutTimestamp inserts a comment whose created_at is NULL.
func (s *Seeder) CommentWithoutTimestamp(capsuleID, userID uint, text string) uint {
	s.t.Helper()
	if err := s.db.Exec(
		"INSERT INTO capsule_comments (capsule_id, user_id, comment, created_at, updated_at) VALUES (?, ?, ?, NULL, NULL)",
		capsuleID, userID, text,
	).Error; err != nil {
		s.t.Fatalf("seed comment without timestamp: %v", err)
	}
	var id uint
	if err := s.db.Raw("SELECT MAX(id) FROM capsule_comments").Scan(&id).Error; err != nil {
		s.t.Fatalf("read comment id: %v", err)
	}
	return id
}
