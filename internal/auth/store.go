package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/unlockenglish/tutorsite/internal/db"
)

// User is an admin account.
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// ErrUserNotFound is returned when no account matches.
var ErrUserNotFound = errors.New("user not found")

// Store persists admin accounts.
type Store struct {
	db *db.DB
}

// NewStore creates a new user store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Create inserts u, assigning an id and creation time.
func (s *Store) Create(ctx context.Context, u User) (*User, error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	u.Email = normalizeEmail(u.Email)
	u.CreatedAt = time.Now().UTC()

	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO users (id, email, name, password_hash, created_at)
		 VALUES (:id, :email, :name, :password_hash, :created_at)`, u)
	if err != nil {
		return nil, fmt.Errorf("inserting user: %w", err)
	}
	return &u, nil
}

// GetByEmail looks an account up by e-mail, ignoring case.
func (s *Store) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, s.db.Rebind(
		`SELECT id, email, name, password_hash, created_at FROM users WHERE email = ?`), normalizeEmail(email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return &u, nil
}

// GetByID looks an account up by id.
func (s *Store) GetByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, s.db.Rebind(
		`SELECT id, email, name, password_hash, created_at FROM users WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return &u, nil
}

// List returns every account in creation order.
func (s *Store) List(ctx context.Context) ([]User, error) {
	var out []User
	err := s.db.SelectContext(ctx, &out,
		`SELECT id, email, name, password_hash, created_at FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return out, nil
}

// Count returns the number of accounts.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return n, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
