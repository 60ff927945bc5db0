package models

import "time"

// CapsuleComment represents a comment on a capsule
type CapsuleComment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CapsuleID uint      `json:"capsule_id" gorm:"index"`
	UserID    uint      `json:"user_id" gorm:"index"`
	Comment   string    `json:"comment" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	CapsuleID uint   `json:"capsule_id" validate:"required"`
	UserID    uint   `json:"user_id" validate:"required"`
	Comment   string `json:"comment" validate:"required,max=1000"`
}

// CommentView is a comment as listed under its capsule
type CommentView struct {
	ID        uint        `json:"id"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
	User      UserSummary `json:"user"`
}
