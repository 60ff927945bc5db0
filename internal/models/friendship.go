package models

import "time"

// FriendshipStatus represents the status of a friend request
type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipRejected FriendshipStatus = "rejected"
)

// Friendship is a friend edge between two users. UserID is the user who sent
// the request and FriendID the addressee, but once accepted the edge is
// undirected.
type Friendship struct {
	ID        uint             `json:"id" gorm:"primaryKey"`
	UserID    uint             `json:"user_id" gorm:"index"`
	FriendID  uint             `json:"friend_id" gorm:"index"`
	Status    FriendshipStatus `json:"status" gorm:"type:varchar(20);default:'pending'"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Other returns the user on the opposite side of the edge from userID.
func (f Friendship) Other(userID uint) uint {
	if f.UserID == userID {
		return f.FriendID
	}
	return f.UserID
}

// Involves reports whether userID is one of the two ends of the edge.
func (f Friendship) Involves(userID uint) bool {
	return f.UserID == userID || f.FriendID == userID
}

// CreateFriendRequest defines the request body for sending a friend request
type CreateFriendRequest struct {
	FriendID uint `json:"friend_id" validate:"required"`
}

// UpdateFriendRequest defines the request body for accepting/rejecting a friend request
type UpdateFriendRequest struct {
	Status FriendshipStatus `json:"status" validate:"required,oneof=accepted rejected"`
}
