package store

import (
	"context"
	"database/sql"
)

// inTx runs fn inside a transaction, rolling back on error. Errors are
// passed through mapError so callers see the package sentinels.
func inTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return mapError(err)
	}
	if err := tx.Commit(); err != nil {
		return mapError(err)
	}
	return nil
}
