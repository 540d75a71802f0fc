// Package auth provides admin accounts, password sign-in and the session
// middleware that guards the dashboard and the write API.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/unlockenglish/tutorsite/internal/content"
	"github.com/unlockenglish/tutorsite/internal/session"
)

// ErrInvalidCredentials is returned by SignIn for an unknown e-mail or a
// wrong password. The two cases are not distinguished.
var ErrInvalidCredentials = errors.New("invalid email or password")

// NewUser holds the fields needed to create an account.
type NewUser struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"max=120"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// Service signs admins in and out.
type Service struct {
	users    *Store
	sessions session.Store
	ttl      time.Duration
	cost     int
}

// NewService creates an auth service. ttl bounds how long a session lasts.
func NewService(users *Store, sessions session.Store, ttl time.Duration) *Service {
	return &Service{users: users, sessions: sessions, ttl: ttl, cost: bcrypt.DefaultCost}
}

// CreateUser validates nu, hashes the password and stores the account.
func (s *Service) CreateUser(ctx context.Context, nu NewUser) (*User, error) {
	nu.Email = normalizeEmail(nu.Email)
	if err := content.Validate(nu); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByEmail(ctx, nu.Email); err == nil {
		return nil, content.NewValidationError("email", "email already registered")
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(nu.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return s.users.Create(ctx, User{Email: nu.Email, Name: nu.Name, PasswordHash: string(hash)})
}

// ListUsers returns every admin account.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.users.List(ctx)
}

// Bootstrap creates the first admin account when none exists yet. It reports
// whether an account was created.
func (s *Service) Bootstrap(ctx context.Context, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}
	n, err := s.users.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if _, err := s.CreateUser(ctx, NewUser{Email: email, Name: "Admin", Password: password}); err != nil {
		return false, fmt.Errorf("creating bootstrap admin: %w", err)
	}
	return true, nil
}

// SignIn checks the credentials and opens a session. It returns the user and
// the session token.
func (s *Service) SignIn(ctx context.Context, email, password string) (*User, string, error) {
	if email == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token := uuid.New().String()
	data := session.Data{UserID: u.ID, Email: u.Email, CreatedAt: time.Now().UTC()}
	if err := s.sessions.Save(ctx, token, data, s.ttl); err != nil {
		return nil, "", fmt.Errorf("opening session: %w", err)
	}
	return u, token, nil
}

// SignOut ends the session. Unknown tokens are ignored.
func (s *Service) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// CurrentUser resolves a session token. It returns nil without error when the
// token is empty, unknown or expired, or the account no longer exists.
func (s *Service) CurrentUser(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, nil
	}
	data, err := s.sessions.Lookup(ctx, token)
	if errors.Is(err, session.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, data.UserID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}
