package models

import "database/sql"

// FeedUser is the author summary on a feed item
type FeedUser struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	ProfileImage *string `json:"profile_image"`
	Initials     string  `json:"initials"`
}

// FeedCapsule is the capsule summary on a feed item
type FeedCapsule struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

// FeedItem is one entry of the comment activity feed. It is built per request
// and never persisted.
type FeedItem struct {
	ID             uint        `json:"id"`
	Type           string      `json:"type"`
	User           FeedUser    `json:"user"`
	Action         string      `json:"action"`
	Capsule        FeedCapsule `json:"capsule"`
	ContentPreview string      `json:"content_preview"`
	TimeElapsed    string      `json:"time_elapsed"`
	CreatedAt      string      `json:"created_at"`
	IsCurrentUser  bool        `json:"is_current_user"`
}

// CommentActivity is the row read by the feed query. CreatedAt is nullable so
// that a bad timestamp on one row does not fail the whole scan.
//
// Rows come back newest first with NULL timestamps last. That ordering holds
// on Postgres, where created_at is a typed timestamp. SQLite stores it as
// text, so a non-time value there sorts ahead of real timestamps.
type CommentActivity struct {
	ID        uint
	CapsuleID uint
	UserID    uint
	Comment   string
	CreatedAt sql.NullTime
}
