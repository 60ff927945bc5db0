package repositories

import (
	"context"

	"github.com/anonto42/capsule-social/backend/internal/models"
	"gorm.io/gorm"
)

// MembershipRepository defines read access to capsule memberships
type MembershipRepository interface {
	AcceptedCapsuleIDs(ctx context.Context, userID uint) ([]uint, error)
}

// PostgresMembershipRepository implements MembershipRepository for PostgreSQL
type PostgresMembershipRepository struct {
	db *gorm.DB
}

// NewPostgresMembershipRepository creates a new PostgresMembershipRepository
func NewPostgresMembershipRepository(db *gorm.DB) *PostgresMembershipRepository {
	return &PostgresMembershipRepository{db: db}
}

// AcceptedCapsuleIDs returns the capsules userID has an accepted membership on
func (r *PostgresMembershipRepository) AcceptedCapsuleIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.CapsuleMember{}).
		Where("user_id = ? AND status = ?", userID, models.MembershipAccepted).
		Distinct().
		Pluck("capsule_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
