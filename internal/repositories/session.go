package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/memoru/internal/models"
	"github.com/desertthunder/memoru/internal/shared"
)

const defaultSessionID = "default"

// SessionRepository stores the signed-in session as a single row.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new [SessionRepository] with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Load returns the stored session, or an error wrapping [shared.ErrNotAuthenticated] when there is none.
func (r *SessionRepository) Load() (*models.Session, error) {
	query := `
		SELECT access_token, refresh_token, id_token, token_type, expires_at, created_at, updated_at
		FROM sessions
		WHERE id = ?
	`

	var (
		s         models.Session
		expiresAt sql.NullTime
	)

	err := r.db.QueryRow(query, defaultSessionID).Scan(
		&s.AccessToken, &s.RefreshToken, &s.IDToken, &s.TokenType, &expiresAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: no stored session", shared.ErrNotAuthenticated)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	if expiresAt.Valid {
		s.ExpiresAt = expiresAt.Time
	}
	return &s, nil
}

// Save replaces the stored session.
func (r *SessionRepository) Save(s *models.Session) error {
	if s == nil || s.AccessToken == "" {
		return fmt.Errorf("%w: session has no access token", shared.ErrInvalidInput)
	}

	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	if s.TokenType == "" {
		s.TokenType = "Bearer"
	}

	query := `
		INSERT INTO sessions (id, access_token, refresh_token, id_token, token_type, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			id_token = excluded.id_token,
			token_type = excluded.token_type,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`

	_, err := r.db.Exec(query,
		defaultSessionID, s.AccessToken, s.RefreshToken, s.IDToken, s.TokenType,
		nullTime(&s.ExpiresAt), s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete removes the stored session. Deleting when signed out is not an error.
func (r *SessionRepository) Delete() error {
	if _, err := r.db.Exec("DELETE FROM sessions WHERE id = ?", defaultSessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
