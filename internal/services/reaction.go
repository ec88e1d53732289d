package services

import (
	"context"
	"errors"

	"github.com/mingle-social/apiserver/internal/store"
	"github.com/mingle-social/apiserver/types"
)

// ReactionStore defines the atomic reaction mutations the engine builds
// on. Set and Clear adjust the reaction row and the post's counters as a
// single unit; they return store.ErrConflict when a concurrent writer
// wins, which is safe to replay once.
type ReactionStore interface {
	Get(ctx context.Context, userID, postID int) (types.Reaction, error)
	Set(ctx context.Context, userID, postID int, kind types.ReactionKind) (types.ReactionCounts, error)
	Clear(ctx context.Context, userID, postID int) (types.ReactionCounts, error)
}

// ReactionEngine enforces the reaction business rules: a user reacts at
// most once per post, never to their own post, and may flip between like
// and dislike or retract.
type ReactionEngine struct {
	posts     PostRepository
	reactions ReactionStore
}

func NewReactionEngine(posts PostRepository, reactions ReactionStore) *ReactionEngine {
	return &ReactionEngine{
		posts:     posts,
		reactions: reactions,
	}
}

// SetReaction records the actor's reaction on the post and returns the
// post's counters afterwards. Repeating the current kind is a no-op;
// reacting with the other kind flips the row and moves one count across.
func (e *ReactionEngine) SetReaction(ctx context.Context, actorID, postID int, kind types.ReactionKind) (types.ReactionCounts, error) {
	if !kind.Valid() {
		return types.ReactionCounts{}, errors.New("unknown reaction kind")
	}

	post, err := e.posts.Get(ctx, postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.ReactionCounts{}, ErrPostNotFound
		}
		return types.ReactionCounts{}, err
	}
	// The owner id is immutable, so this check holds even though it runs
	// before the store transaction begins.
	if post.OwnerID == actorID {
		return types.ReactionCounts{}, ErrSelfReaction
	}

	counts, err := e.reactions.Set(ctx, actorID, postID, kind)
	if errors.Is(err, store.ErrConflict) {
		counts, err = e.reactions.Set(ctx, actorID, postID, kind)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.ReactionCounts{}, ErrPostNotFound
		}
		return types.ReactionCounts{}, err
	}
	return counts, nil
}

// ClearReaction retracts the actor's reaction, if any, and returns the
// counters afterwards. Clearing a reaction that does not exist is a
// no-op, not an error.
func (e *ReactionEngine) ClearReaction(ctx context.Context, actorID, postID int) (types.ReactionCounts, error) {
	counts, err := e.reactions.Clear(ctx, actorID, postID)
	if errors.Is(err, store.ErrConflict) {
		counts, err = e.reactions.Clear(ctx, actorID, postID)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.ReactionCounts{}, ErrPostNotFound
		}
		return types.ReactionCounts{}, err
	}
	return counts, nil
}

// GetReaction returns the actor's current reaction on the post, if any.
func (e *ReactionEngine) GetReaction(ctx context.Context, actorID, postID int) (types.Reaction, bool, error) {
	reaction, err := e.reactions.Get(ctx, actorID, postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Reaction{}, false, nil
		}
		return types.Reaction{}, false, err
	}
	return reaction, true, nil
}
