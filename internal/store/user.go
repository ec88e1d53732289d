package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mingle-social/apiserver/types"
)

// UserRepository handles persistence for users.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (types.User, error) {
	const query = `
		SELECT id, username, email, name, surname, age, avatar, active, password_hash, created_at, updated_at
		FROM users
		WHERE id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `
		SELECT id, username, email, name, surname, age, avatar, active, password_hash, created_at, updated_at
		FROM users
		WHERE email = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) List(ctx context.Context, offset, limit int) ([]types.User, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}

	const countQuery = `SELECT COUNT(1) FROM users`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	const listQuery = `
		SELECT id, username, email, name, surname, age, avatar, active, password_hash, created_at, updated_at
		FROM users
		ORDER BY id
		OFFSET $1 LIMIT $2`
	rows, err := r.db.QueryContext(ctx, listQuery, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := make([]types.User, 0, limit)
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.Active = true

	const query = `
		INSERT INTO users (username, email, name, surname, age, avatar, active, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		user.Username,
		user.Email,
		user.Name,
		user.Surname,
		user.Age,
		user.Avatar,
		user.Active,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID); err != nil {
		return types.User{}, mapError(err)
	}
	return user, nil
}

func (r *UserRepository) Update(ctx context.Context, user types.User) (types.User, error) {
	user.UpdatedAt = time.Now()

	const query = `
		UPDATE users
		SET username = $1,
			email = $2,
			name = $3,
			surname = $4,
			age = $5,
			avatar = $6,
			password_hash = $7,
			updated_at = $8
		WHERE id = $9`
	result, err := r.db.ExecContext(
		ctx,
		query,
		user.Username,
		user.Email,
		user.Name,
		user.Surname,
		user.Age,
		user.Avatar,
		user.PasswordHash,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return types.User{}, mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.User{}, err
	}
	if affected == 0 {
		return types.User{}, ErrNotFound
	}
	return user, nil
}

// SetActive flips the account's active flag. Deactivated accounts keep
// their rows but cannot authenticate.
func (r *UserRepository) SetActive(ctx context.Context, id int, active bool) error {
	const query = `
		UPDATE users
		SET active = $1,
			updated_at = $2
		WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, active, time.Now(), id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the user row. Owned posts and reaction rows are removed
// by the foreign-key cascade, but the cascade alone would leave stale
// counters on other users' posts this user reacted to, so those counters
// are decremented in the same transaction before the row goes.
func (r *UserRepository) Delete(ctx context.Context, id int) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		// The single UPDATE takes the row locks the reaction writers
		// contend on, so it serializes against concurrent Set/Clear
		// calls touching the same posts. Posts owned by the departing
		// user are skipped; they cascade away with the row.
		const countersQuery = `
			UPDATE posts
			SET like_count = like_count - removed.likes,
				dislike_count = dislike_count - removed.dislikes,
				updated_at = $2
			FROM (
				SELECT post_id,
					COUNT(*) FILTER (WHERE kind = 'like') AS likes,
					COUNT(*) FILTER (WHERE kind = 'dislike') AS dislikes
				FROM reactions
				WHERE user_id = $1
				GROUP BY post_id
			) AS removed
			WHERE posts.id = removed.post_id
			  AND posts.owner_id <> $1`
		if _, err := tx.ExecContext(ctx, countersQuery, id, time.Now()); err != nil {
			return err
		}

		const deleteQuery = `DELETE FROM users WHERE id = $1`
		result, err := tx.ExecContext(ctx, deleteQuery, id)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *UserRepository) scanUser(row rowScanner) (types.User, error) {
	var user types.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Name,
		&user.Surname,
		&user.Age,
		&user.Avatar,
		&user.Active,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}
