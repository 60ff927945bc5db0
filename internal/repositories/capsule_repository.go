package repositories

import (
	"context"

	"github.com/anonto42/capsule-social/backend/internal/models"
	"gorm.io/gorm"
)

// CapsuleRepository defines read access to capsules
type CapsuleRepository interface {
	GetCapsuleByID(ctx context.Context, id uint) (*models.Capsule, error)
	GetCapsulesByIDs(ctx context.Context, ids []uint) ([]models.Capsule, error)
}

// PostgresCapsuleRepository implements CapsuleRepository for PostgreSQL
type PostgresCapsuleRepository struct {
	db *gorm.DB
}

// NewPostgresCapsuleRepository creates a new PostgresCapsuleRepository
func NewPostgresCapsuleRepository(db *gorm.DB) *PostgresCapsuleRepository {
	return &PostgresCapsuleRepository{db: db}
}

// GetCapsuleByID retrieves a capsule by ID, returning gorm.ErrRecordNotFound when absent
func (r *PostgresCapsuleRepository) GetCapsuleByID(ctx context.Context, id uint) (*models.Capsule, error) {
	var capsule models.Capsule
	if err := r.db.WithContext(ctx).First(&capsule, id).Error; err != nil {
		return nil, err
	}
	return &capsule, nil
}

// GetCapsulesByIDs retrieves the capsules with the given IDs in no particular order
func (r *PostgresCapsuleRepository) GetCapsulesByIDs(ctx context.Context, ids []uint) ([]models.Capsule, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var capsules []models.Capsule
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&capsules).Error; err != nil {
		return nil, err
	}
	return capsules, nil
}
