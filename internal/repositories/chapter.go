package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/transx/internal/models"
)

// ChapterRepository implements [models.ChapterRepository] on the chapters table.
//
// Positions are zero-based and match translation map indices.
type ChapterRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewChapterRepository creates a new [ChapterRepository] with the given database connection
func NewChapterRepository(db *sql.DB) *ChapterRepository {
	return &ChapterRepository{db: db, now: time.Now}
}

// ReplaceAll deletes the cached list and inserts chapters in order, atomically.
func (r *ChapterRepository) ReplaceAll(chapters []models.Chapter) error {
	uploadedAt := r.now().UTC()

	return withTx(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM chapters`); err != nil {
			return fmt.Errorf("failed to clear chapters: %w", err)
		}

		stmt, err := tx.Prepare(`INSERT INTO chapters (position, title, content, uploaded_at) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for i, ch := range chapters {
			if _, err := stmt.Exec(i, ch.Title, ch.Content, uploadedAt); err != nil {
				return fmt.Errorf("failed to insert chapter %d: %w", i, err)
			}
		}
		return nil
	})
}

// List returns the cached chapters in document order.
func (r *ChapterRepository) List() ([]models.Chapter, error) {
	rows, err := r.db.Query(`SELECT title, content FROM chapters ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query chapters: %w", err)
	}
	defer rows.Close()

	chapters := []models.Chapter{}
	for rows.Next() {
		var ch models.Chapter
		if err := rows.Scan(&ch.Title, &ch.Content); err != nil {
			return nil, fmt.Errorf("failed to scan chapter: %w", err)
		}
		chapters = append(chapters, ch)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chapters: %w", err)
	}

	return chapters, nil
}
