package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/unlockenglish/tutorsite/internal/db"
)

// DefaultLimit caps List when the caller passes no limit.
const DefaultLimit = 100

// Store provides persistence for audit entries.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Log inserts a new audit entry. If entry.ID is empty a UUID is generated;
// a zero Timestamp becomes the current time.
func (s *Store) Log(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if entry.Actor == "" {
		entry.Actor = ActorSystem
	}

	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO activity (id, timestamp, actor, action, subject, summary)
		 VALUES (:id, :timestamp, :actor, :action, :subject, :summary)`, entry)
	if err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}
	return nil
}

// GetByID retrieves a single audit entry.
func (s *Store) GetByID(ctx context.Context, id string) (*Entry, error) {
	var e Entry
	err := s.db.GetContext(ctx, &e, s.db.Rebind(
		`SELECT id, timestamp, actor, action, subject, summary FROM activity WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("audit entry %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting audit entry: %w", err)
	}
	return &e, nil
}

// List returns the most recent entries first. action filters when non-empty.
func (s *Store) List(ctx context.Context, action Action, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	query := `SELECT id, timestamp, actor, action, subject, summary FROM activity`
	args := []any{}
	if action != "" {
		query += " WHERE action = ?"
		args = append(args, string(action))
	}
	query += " ORDER BY timestamp DESC LIMIT ?"
	args = append(args, limit)

	var out []Entry
	if err := s.db.SelectContext(ctx, &out, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("listing audit entries: %w", err)
	}
	return out, nil
}
