package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mingle-social/apiserver/types"
)

// ReactionRepository handles persistence for reaction rows and the
// denormalized counters on their posts. Every mutation runs in a single
// transaction that locks the post row, so the counters can never drift
// from the reaction rows and concurrent writers on the same post cannot
// lose updates.
type ReactionRepository struct {
	db *sql.DB
}

func NewReactionRepository(db *sql.DB) *ReactionRepository {
	return &ReactionRepository{db: db}
}

// Get returns the reaction the user has on the post, or ErrNotFound.
func (r *ReactionRepository) Get(ctx context.Context, userID, postID int) (types.Reaction, error) {
	const query = `
		SELECT user_id, post_id, kind, created_at
		FROM reactions
		WHERE user_id = $1 AND post_id = $2`
	var reaction types.Reaction
	err := r.db.QueryRowContext(ctx, query, userID, postID).Scan(
		&reaction.UserID,
		&reaction.PostID,
		&reaction.Kind,
		&reaction.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Reaction{}, ErrNotFound
		}
		return types.Reaction{}, err
	}
	return reaction, nil
}

// Set records the user's reaction on the post and returns the post's
// counters after the mutation. Atomically, in one transaction:
//   - no existing row: insert one and bump the matching counter;
//   - existing row of the same kind: change nothing;
//   - existing row of the other kind: flip it and move one count across.
//
// Returns ErrNotFound when the post is gone and ErrConflict when a
// concurrent writer wins; ErrConflict is safe to retry.
func (r *ReactionRepository) Set(ctx context.Context, userID, postID int, kind types.ReactionKind) (types.ReactionCounts, error) {
	var counts types.ReactionCounts
	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		current, err := lockPostCounts(ctx, tx, postID)
		if err != nil {
			return err
		}

		const existingQuery = `
			SELECT kind
			FROM reactions
			WHERE user_id = $1 AND post_id = $2`
		var existing types.ReactionKind
		err = tx.QueryRowContext(ctx, existingQuery, userID, postID).Scan(&existing)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			const insertQuery = `
				INSERT INTO reactions (user_id, post_id, kind, created_at)
				VALUES ($1, $2, $3, $4)`
			if _, err := tx.ExecContext(ctx, insertQuery, userID, postID, kind, time.Now()); err != nil {
				// The unique (user_id, post_id) constraint is the
				// backstop against a same-user race; report it as a
				// retryable conflict, not a business duplicate.
				if errors.Is(mapError(err), ErrDuplicate) {
					return ErrConflict
				}
				return err
			}
			current = adjust(current, kind, +1)
		case err != nil:
			return err
		case existing == kind:
			// Repeating the same reaction is a no-op.
			counts = current
			return nil
		default:
			const flipQuery = `
				UPDATE reactions
				SET kind = $1,
					created_at = $2
				WHERE user_id = $3 AND post_id = $4`
			if _, err := tx.ExecContext(ctx, flipQuery, kind, time.Now(), userID, postID); err != nil {
				return err
			}
			current = adjust(adjust(current, existing, -1), kind, +1)
		}

		if err := writePostCounts(ctx, tx, postID, current); err != nil {
			return err
		}
		counts = current
		return nil
	})
	if err != nil {
		return types.ReactionCounts{}, err
	}
	return counts, nil
}

// Clear removes the user's reaction on the post, if any, and returns the
// counters after the mutation. A missing reaction is a no-op.
func (r *ReactionRepository) Clear(ctx context.Context, userID, postID int) (types.ReactionCounts, error) {
	var counts types.ReactionCounts
	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		current, err := lockPostCounts(ctx, tx, postID)
		if err != nil {
			return err
		}

		const deleteQuery = `
			DELETE FROM reactions
			WHERE user_id = $1 AND post_id = $2
			RETURNING kind`
		var removed types.ReactionKind
		err = tx.QueryRowContext(ctx, deleteQuery, userID, postID).Scan(&removed)
		if errors.Is(err, sql.ErrNoRows) {
			counts = current
			return nil
		}
		if err != nil {
			return err
		}

		current = adjust(current, removed, -1)
		if err := writePostCounts(ctx, tx, postID, current); err != nil {
			return err
		}
		counts = current
		return nil
	})
	if err != nil {
		return types.ReactionCounts{}, err
	}
	return counts, nil
}

// RecountAll recomputes every post's counters from the reaction rows and
// returns the number of posts whose stored counters were wrong.
func (r *ReactionRepository) RecountAll(ctx context.Context) (int, error) {
	const query = `
		UPDATE posts
		SET like_count = counted.likes,
			dislike_count = counted.dislikes
		FROM (
			SELECT p.id,
				COUNT(r.*) FILTER (WHERE r.kind = 'like') AS likes,
				COUNT(r.*) FILTER (WHERE r.kind = 'dislike') AS dislikes
			FROM posts p
			LEFT JOIN reactions r ON r.post_id = p.id
			GROUP BY p.id
		) AS counted
		WHERE posts.id = counted.id
		  AND (posts.like_count <> counted.likes OR posts.dislike_count <> counted.dislikes)`
	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

// lockPostCounts reads the post's counters under FOR UPDATE, serializing
// all reaction mutations touching the same post.
func lockPostCounts(ctx context.Context, tx *sql.Tx, postID int) (types.ReactionCounts, error) {
	const query = `
		SELECT like_count, dislike_count
		FROM posts
		WHERE id = $1
		FOR UPDATE`
	var counts types.ReactionCounts
	err := tx.QueryRowContext(ctx, query, postID).Scan(&counts.Likes, &counts.Dislikes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.ReactionCounts{}, ErrNotFound
		}
		return types.ReactionCounts{}, err
	}
	return counts, nil
}

func adjust(c types.ReactionCounts, kind types.ReactionKind, delta int) types.ReactionCounts {
	switch kind {
	case types.ReactionLike:
		c.Likes += delta
	case types.ReactionDislike:
		c.Dislikes += delta
	}
	return c
}

func writePostCounts(ctx context.Context, tx *sql.Tx, postID int, counts types.ReactionCounts) error {
	const query = `
		UPDATE posts
		SET like_count = $1,
			dislike_count = $2,
			updated_at = $3
		WHERE id = $4`
	_, err := tx.ExecContext(ctx, query, counts.Likes, counts.Dislikes, time.Now(), postID)
	return err
}
