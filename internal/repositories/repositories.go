package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/transx/internal/models"
)

var (
	_ models.IdentityRepository = (*IdentityRepository)(nil)
	_ models.ChapterRepository  = (*ChapterRepository)(nil)
)

// withTx runs fn inside a transaction, committing on success and rolling back otherwise.
func withTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
