package models

import "time"

// Privacy is the visibility mode of a capsule
type Privacy string

const (
	PrivacyPublic  Privacy = "public"
	PrivacyFriends Privacy = "friends"
	PrivacyPrivate Privacy = "private" // Visible to the owner and accepted members only
)

// MembershipStatus is the state of a user's invitation to a capsule
type MembershipStatus string

const (
	MembershipPending  MembershipStatus = "pending"
	MembershipAccepted MembershipStatus = "accepted"
	MembershipDeclined MembershipStatus = "declined"
)

// Capsule is a privacy-scoped content container owned by a user.
// Capsules are created elsewhere; this service only reads them.
type Capsule struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index"` // Owner
	Title     string    `json:"title"`
	Privacy   Privacy   `json:"privacy" gorm:"type:varchar(20);default:'private';index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CapsuleMember links a user to a capsule they were invited to
type CapsuleMember struct {
	ID        uint             `json:"id" gorm:"primaryKey"`
	CapsuleID uint             `json:"capsule_id" gorm:"index;uniqueIndex:idx_capsule_user_member"`
	UserID    uint             `json:"user_id" gorm:"index;uniqueIndex:idx_capsule_user_member"`
	Status    MembershipStatus `json:"status" gorm:"type:varchar(20);default:'pending'"`
	CreatedAt time.Time        `json:"created_at"`
}

func (CapsuleMember) TableName() string { return "capsule_user" }
