package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/transx/internal/models"
	"github.com/desertthunder/transx/internal/shared"
)

// IdentityRepository implements [models.IdentityRepository] on the identities table.
type IdentityRepository struct {
	db *sql.DB
}

// NewIdentityRepository creates a new [IdentityRepository] with the given database connection
func NewIdentityRepository(db *sql.DB) *IdentityRepository {
	return &IdentityRepository{db: db}
}

// Get retrieves the identity stored under name.
func (r *IdentityRepository) Get(name string) (*models.Identity, error) {
	query := `SELECT name, token, path, created_at, expires_at FROM identities WHERE name = ?`

	var (
		identity  models.Identity
		createdAt time.Time
		expiresAt time.Time
	)

	err := r.db.QueryRow(query, name).Scan(&identity.Name, &identity.Token, &identity.Path, &createdAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrIdentityNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query identity: %w", err)
	}

	identity.CreatedAt = createdAt.UTC()
	identity.ExpiresAt = expiresAt.UTC()
	return &identity, nil
}

// Save inserts the identity, replacing any existing row with the same name.
func (r *IdentityRepository) Save(identity *models.Identity) error {
	if identity == nil || identity.Name == "" || identity.Token == "" {
		return fmt.Errorf("%w: identity requires name and token", shared.ErrInvalidInput)
	}

	path := identity.Path
	if path == "" {
		path = "/"
	}

	query := `
		INSERT INTO identities (name, token, path, created_at, expires_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			token = excluded.token,
			path = excluded.path,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at
	`

	if _, err := r.db.Exec(query, identity.Name, identity.Token, path, identity.CreatedAt.UTC(), identity.ExpiresAt.UTC()); err != nil {
		return fmt.Errorf("failed to save identity: %w", err)
	}

	return nil
}

// Delete removes the identity stored under name. Deleting a missing identity is not an error.
func (r *IdentityRepository) Delete(name string) error {
	if _, err := r.db.Exec(`DELETE FROM identities WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to delete identity: %w", err)
	}
	return nil
}
