package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// txFunc runs inside a transaction.
type txFunc func(*sql.Tx) error

// withTx runs fn in a transaction, committing on success and rolling back on
// error or panic. A panic is re-raised after the rollback.
func withTx(ctx context.Context, db *sql.DB, fn txFunc) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("transaction error: %w, rollback error: %v", err, rbErr)
			}
		} else {
			err = tx.Commit()
			if err != nil {
				err = fmt.Errorf("failed to commit transaction: %w", err)
			}
		}
	}()

	return fn(tx)
}
