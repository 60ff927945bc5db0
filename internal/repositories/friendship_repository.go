package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/capsule-social/backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrFriendRequestPending = errors.New("a pending friend request already exists between these users")
	ErrAlreadyFriends       = errors.New("users are already friends")
)

// FriendshipRepository defines the interface for friendship data operations
type FriendshipRepository interface {
	SendFriendRequest(ctx context.Context, f *models.Friendship) error
	GetFriendshipByID(ctx context.Context, id uint) (*models.Friendship, error)
	GetFriendshipBetween(ctx context.Context, userA, userB uint) (*models.Friendship, error)
	UpdateFriendshipStatus(ctx context.Context, id uint, status models.FriendshipStatus) error
	DeleteFriendship(ctx context.Context, id uint) error
	AcceptedFriendIDs(ctx context.Context, userID uint) ([]uint, error)
}

// PostgresFriendshipRepository implements FriendshipRepository for PostgreSQL
type PostgresFriendshipRepository struct {
	db *gorm.DB
}

// NewPostgresFriendshipRepository creates a new PostgresFriendshipRepository
func NewPostgresFriendshipRepository(db *gorm.DB) *PostgresFriendshipRepository {
	return &PostgresFriendshipRepository{db: db}
}

// SendFriendRequest creates a new pending edge unless one already exists in either direction
func (r *PostgresFriendshipRepository) SendFriendRequest(ctx context.Context, f *models.Friendship) error {
	existing, err := r.GetFriendshipBetween(ctx, f.UserID, f.FriendID)
	if err == nil {
		switch existing.Status {
		case models.FriendshipPending:
			return ErrFriendRequestPending
		case models.FriendshipAccepted:
			return ErrAlreadyFriends
		}
		// A rejected edge is replaced by the new request
		if err := r.DeleteFriendship(ctx, existing.ID); err != nil {
			return err
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	f.Status = models.FriendshipPending
	return r.db.WithContext(ctx).Create(f).Error
}

// GetFriendshipByID retrieves a friendship edge by ID
func (r *PostgresFriendshipRepository) GetFriendshipByID(ctx context.Context, id uint) (*models.Friendship, error) {
	var f models.Friendship
	if err := r.db.WithContext(ctx).First(&f, id).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

// GetFriendshipBetween retrieves the edge linking two users, whichever side sent it
func (r *PostgresFriendshipRepository) GetFriendshipBetween(ctx context.Context, userA, userB uint) (*models.Friendship, error) {
	var f models.Friendship
	err := r.db.WithContext(ctx).
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)", userA, userB, userB, userA).
		First(&f).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// UpdateFriendshipStatus updates the status of a friendship edge
func (r *PostgresFriendshipRepository) UpdateFriendshipStatus(ctx context.Context, id uint, status models.FriendshipStatus) error {
	return r.db.WithContext(ctx).Model(&models.Friendship{}).Where("id = ?", id).Update("status", status).Error
}

// DeleteFriendship deletes a friendship edge
func (r *PostgresFriendshipRepository) DeleteFriendship(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Friendship{}, id).Error
}

// AcceptedFriendIDs returns the users linked to userID by an accepted edge,
// regardless of which column userID is stored in.
func (r *PostgresFriendshipRepository) AcceptedFriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	var edges []models.Friendship
	err := r.db.WithContext(ctx).
		Where("(user_id = ? OR friend_id = ?) AND status = ?", userID, userID, models.FriendshipAccepted).
		Find(&edges).Error
	if err != nil {
		return nil, fmt.Errorf("loading accepted friendships: %w", err)
	}

	seen := make(map[uint]struct{}, len(edges))
	ids := make([]uint, 0, len(edges))
	for _, e := range edges {
		other := e.Other(userID)
		if other == userID {
			continue
		}
		if _, ok := seen[other]; ok {
			continue
		}
		seen[other] = struct{}{}
		ids = append(ids, other)
	}
	return ids, nil
}
