package repositories

import (
	"github.com/anonto42/capsule-social/backend/internal/models"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates the tables this service reads and writes
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Capsule{},
		&models.CapsuleMember{},
		&models.Friendship{},
		&models.CapsuleComment{},
	)
}
