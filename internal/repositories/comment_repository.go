package repositories

import (
	"context"

	"github.com/anonto42/capsule-social/backend/internal/models"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for capsule comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.CapsuleComment) error
	GetCommentByID(ctx context.Context, id uint) (*models.CapsuleComment, error)
	GetCommentsByCapsuleID(ctx context.Context, capsuleID uint) ([]models.CapsuleComment, error)
	ListActivity(ctx context.Context, scope func(*gorm.DB) *gorm.DB, limit int) ([]models.CommentActivity, error)
}

// PostgresCommentRepository implements CommentRepository for PostgreSQL
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

// CreateComment inserts a comment; the database assigns its id and timestamps
func (r *PostgresCommentRepository) CreateComment(ctx context.Context, comment *models.CapsuleComment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// GetCommentByID retrieves a comment by ID
func (r *PostgresCommentRepository) GetCommentByID(ctx context.Context, id uint) (*models.CapsuleComment, error) {
	var comment models.CapsuleComment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetCommentsByCapsuleID retrieves all comments of a capsule, newest first
func (r *PostgresCommentRepository) GetCommentsByCapsuleID(ctx context.Context, capsuleID uint) ([]models.CapsuleComment, error) {
	var comments []models.CapsuleComment
	err := r.db.WithContext(ctx).
		Where("capsule_id = ?", capsuleID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// ListActivity returns the most recent comments whose capsule passes scope.
// The capsules table is joined so scope can filter on capsule columns.
// Undated rows sort last; see models.CommentActivity for the SQLite caveat.
func (r *PostgresCommentRepository) ListActivity(ctx context.Context, scope func(*gorm.DB) *gorm.DB, limit int) ([]models.CommentActivity, error) {
	var rows []models.CommentActivity
	err := r.db.WithContext(ctx).
		Table("capsule_comments").
		Select("capsule_comments.id, capsule_comments.capsule_id, capsule_comments.user_id, capsule_comments.comment, capsule_comments.created_at").
		Joins("JOIN capsules ON capsules.id = capsule_comments.capsule_id").
		Scopes(scope).
		Order("capsule_comments.created_at DESC NULLS LAST").
		Order("capsule_comments.id DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
