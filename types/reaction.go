package types

import "time"

// ReactionKind is the closed set of reactions a user can put on a post.
type ReactionKind string

const (
	ReactionLike    ReactionKind = "like"
	ReactionDislike ReactionKind = "dislike"
)

// Valid reports whether k is one of the known reaction kinds.
func (k ReactionKind) Valid() bool {
	return k == ReactionLike || k == ReactionDislike
}

// Reaction is a user's single like-or-dislike mark on a post, uniquely
// keyed by (UserID, PostID).
type Reaction struct {
	UserID    int          `json:"user_id" db:"user_id"`
	PostID    int          `json:"post_id" db:"post_id"`
	Kind      ReactionKind `json:"kind" db:"kind"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
}

// ReactionCounts is the aggregate counter pair carried on a post,
// returned to callers after every reaction mutation.
type ReactionCounts struct {
	Likes    int `json:"like_count"`
	Dislikes int `json:"dislike_count"`
}
