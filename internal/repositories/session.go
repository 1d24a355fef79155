package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/snaketracks/internal/session"
	"github.com/desertthunder/snaketracks/internal/shared"
)

// SessionRepository implements [session.Store] for SQLite.
type SessionRepository struct {
	db  *sql.DB
	now func() time.Time
}

var _ session.Store = (*SessionRepository)(nil)

// NewSessionRepository creates a new [SessionRepository] with the given database connection.
//
// The sessions table must exist; see [shared.RunMigrations].
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Load retrieves a session by ID.
func (r *SessionRepository) Load(ctx context.Context, id string) (*session.Session, error) {
	query := `SELECT data, created_at, updated_at FROM sessions WHERE id = ?`

	var (
		data      string
		createdAt time.Time
		updatedAt time.Time
	)

	err := r.db.QueryRowContext(ctx, query, id).Scan(&data, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	return session.Decode(id, []byte(data), createdAt, updatedAt)
}

// Save inserts the session or replaces the data of an existing one. created_at is set once.
func (r *SessionRepository) Save(ctx context.Context, s *session.Session) error {
	data, err := s.Encode()
	if err != nil {
		return err
	}

	now := r.now()
	createdAt := s.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	query := `
		INSERT INTO sessions (id, data, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, s.ID, string(data), createdAt.UTC(), now); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	s.UpdatedAt = now
	return nil
}

// Delete removes a session by ID. Missing sessions are ignored.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Prune deletes sessions last updated before the cutoff.
func (r *SessionRepository) Prune(ctx context.Context, before time.Time) (int, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at < ?`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune sessions: %w", err)
	}
	return affected(result)
}

// Count returns the number of stored sessions.
func (r *SessionRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}
