package types

import "time"

// Post represents a user-created post.
type Post struct {
	// ID is the unique identifier of the post.
	ID int `json:"id" db:"id"`

	// OwnerID is the author of the post. It never changes after creation.
	OwnerID int `json:"owner_id" db:"owner_id"`

	// Text is the post body.
	Text string `json:"text" db:"text"`

	// Image is the object-storage key of an attached picture, if any.
	Image string `json:"image,omitempty" db:"image"`

	// LikeCount and DislikeCount are denormalized aggregates over the
	// reaction rows referencing this post. They are adjusted in the same
	// transaction as the reaction row itself.
	LikeCount    int `json:"like_count" db:"like_count"`
	DislikeCount int `json:"dislike_count" db:"dislike_count"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
