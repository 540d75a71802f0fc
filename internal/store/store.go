// Package store implements content.Backend on top of the SQL database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/unlockenglish/tutorsite/internal/content"
	"github.com/unlockenglish/tutorsite/internal/db"
)

// Store persists site content.
type Store struct {
	db *db.DB
}

var _ content.Backend = (*Store)(nil)

// NewStore creates a new content store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// FetchResources returns every resource, newest first.
func (s *Store) FetchResources(ctx context.Context) ([]content.Resource, error) {
	var out []content.Resource
	err := s.db.SelectContext(ctx, &out,
		`SELECT id, title, category, description, content, created_at
		 FROM resources ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing resources: %w", err)
	}
	return out, nil
}

// GetResource retrieves a resource by its ID.
func (s *Store) GetResource(ctx context.Context, id int64) (*content.Resource, error) {
	var r content.Resource
	err := s.db.GetContext(ctx, &r, s.db.Rebind(
		`SELECT id, title, category, description, content, created_at FROM resources WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, content.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting resource: %w", err)
	}
	return &r, nil
}

// CreateResource stores r. Content is expected to be rendered already.
func (s *Store) CreateResource(ctx context.Context, r content.NewResource) (*content.Resource, error) {
	res := content.Resource{
		Title:       r.Title,
		Category:    r.Category,
		Description: r.Description,
		Content:     r.Content,
		CreatedAt:   time.Now().UTC(),
	}
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(
		`INSERT INTO resources (title, category, description, content, created_at)
		 VALUES (?, ?, ?, ?, ?) RETURNING id`),
		res.Title, res.Category, res.Description, res.Content, res.CreatedAt,
	).Scan(&res.ID)
	if err != nil {
		return nil, fmt.Errorf("inserting resource: %w", err)
	}
	return &res, nil
}

// DeleteResource removes a resource.
func (s *Store) DeleteResource(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "resources", id)
}

// FetchLatestNotice returns the most recent notice, or nil when none exists.
func (s *Store) FetchLatestNotice(ctx context.Context) (*content.Notice, error) {
	var n content.Notice
	err := s.db.GetContext(ctx, &n,
		`SELECT id, content, created_at FROM notices ORDER BY created_at DESC, id DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting latest notice: %w", err)
	}
	return &n, nil
}

// CreateNotice posts a new notice.
func (s *Store) CreateNotice(ctx context.Context, text string) (*content.Notice, error) {
	n := content.Notice{Content: text, CreatedAt: time.Now().UTC()}
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(
		`INSERT INTO notices (content, created_at) VALUES (?, ?) RETURNING id`),
		n.Content, n.CreatedAt,
	).Scan(&n.ID)
	if err != nil {
		return nil, fmt.Errorf("inserting notice: %w", err)
	}
	return &n, nil
}

// FetchCategories returns categories in creation order.
func (s *Store) FetchCategories(ctx context.Context) ([]content.Category, error) {
	var out []content.Category
	err := s.db.SelectContext(ctx, &out,
		`SELECT id, label, slug, created_at FROM categories ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return out, nil
}

// CreateCategory stores a category under the slug derived from label.
// A label that produces an empty or already used slug is rejected with a
// *content.ValidationError.
func (s *Store) CreateCategory(ctx context.Context, label string) (*content.Category, error) {
	label = strings.TrimSpace(label)
	c := content.Category{Label: label, Slug: content.Slugify(label), CreatedAt: time.Now().UTC()}
	if c.Slug == "" {
		return nil, content.NewValidationError("label", "label must contain at least one letter or digit")
	}

	var exists int
	err := s.db.GetContext(ctx, &exists, s.db.Rebind(`SELECT COUNT(*) FROM categories WHERE slug = ?`), c.Slug)
	if err != nil {
		return nil, fmt.Errorf("checking category slug: %w", err)
	}
	if exists > 0 {
		return nil, content.NewValidationError("label", fmt.Sprintf("a category with id %q already exists", c.Slug))
	}

	err = s.db.QueryRowxContext(ctx, s.db.Rebind(
		`INSERT INTO categories (label, slug, created_at) VALUES (?, ?, ?) RETURNING id`),
		c.Label, c.Slug, c.CreatedAt,
	).Scan(&c.ID)
	if err != nil {
		return nil, fmt.Errorf("inserting category: %w", err)
	}
	return &c, nil
}

// DeleteCategory removes a category. Resources filed under it are kept.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "categories", id)
}

// FetchRequests returns student requests, newest first.
func (s *Store) FetchRequests(ctx context.Context) ([]content.StudentRequest, error) {
	var out []content.StudentRequest
	err := s.db.SelectContext(ctx, &out,
		`SELECT id, student_name, class_roll, topic, message, created_at
		 FROM student_requests ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing requests: %w", err)
	}
	return out, nil
}

// CreateRequest stores a student request.
func (s *Store) CreateRequest(ctx context.Context, r content.NewRequest) (*content.StudentRequest, error) {
	req := content.StudentRequest{
		StudentName: r.StudentName,
		ClassRoll:   r.ClassRoll,
		Topic:       r.Topic,
		Message:     r.Message,
		CreatedAt:   time.Now().UTC(),
	}
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(
		`INSERT INTO student_requests (student_name, class_roll, topic, message, created_at)
		 VALUES (?, ?, ?, ?, ?) RETURNING id`),
		req.StudentName, req.ClassRoll, req.Topic, req.Message, req.CreatedAt,
	).Scan(&req.ID)
	if err != nil {
		return nil, fmt.Errorf("inserting request: %w", err)
	}
	return &req, nil
}

// DeleteRequest removes a student request.
func (s *Store) DeleteRequest(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "student_requests", id)
}

func (s *Store) deleteByID(ctx context.Context, table string, id int64) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM "+table+" WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("deleting from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting from %s: %w", table, err)
	}
	if n == 0 {
		return content.ErrNotFound
	}
	return nil
}
