package store

import (
	"errors"
	"testing"

	"github.com/unlockenglish/tutorsite/internal/content"
	"github.com/unlockenglish/tutorsite/internal/db"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	d, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return NewStore(d)
}

func TestResourcesNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	first, err := s.CreateResource(ctx, content.NewResource{Title: "Tenses", Category: "grammar", Content: "<p>a</p>"})
	if err != nil {
		t.Fatalf("CreateResource: %v", err)
	}
	second, err := s.CreateResource(ctx, content.NewResource{Title: "Floods", Category: "paragraph", Content: "<p>b</p>"})
	if err != nil {
		t.Fatalf("CreateResource: %v", err)
	}

	list, err := s.FetchResources(ctx)
	if err != nil {
		t.Fatalf("FetchResources: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 resources, got %d", len(list))
	}
	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Errorf("expected newest first, got ids %d, %d", list[0].ID, list[1].ID)
	}

	got, err := s.GetResource(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetResource: %v", err)
	}
	if got.Title != "Tenses" {
		t.Errorf("expected title Tenses, got %q", got.Title)
	}

	if err := s.DeleteResource(ctx, first.ID); err != nil {
		t.Fatalf("DeleteResource: %v", err)
	}
	if err := s.DeleteResource(ctx, first.ID); !errors.Is(err, content.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
	if _, err := s.GetResource(ctx, first.ID); !errors.Is(err, content.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLatestNotice(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	n, err := s.FetchLatestNotice(ctx)
	if err != nil {
		t.Fatalf("FetchLatestNotice: %v", err)
	}
	if n != nil {
		t.Fatalf("expected no notice, got %+v", n)
	}

	if _, err := s.CreateNotice(ctx, "Exam on Sunday"); err != nil {
		t.Fatalf("CreateNotice: %v", err)
	}
	if _, err := s.CreateNotice(ctx, "Exam moved to Monday"); err != nil {
		t.Fatalf("CreateNotice: %v", err)
	}

	n, err = s.FetchLatestNotice(ctx)
	if err != nil {
		t.Fatalf("FetchLatestNotice: %v", err)
	}
	if n == nil || n.Content != "Exam moved to Monday" {
		t.Errorf("expected latest notice, got %+v", n)
	}
}

func TestCategories(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	c, err := s.CreateCategory(ctx, "Model Tests")
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if c.Slug != "model-tests" {
		t.Errorf("expected slug model-tests, got %q", c.Slug)
	}
	if _, err := s.CreateCategory(ctx, "Spelling"); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	var verr *content.ValidationError
	if _, err := s.CreateCategory(ctx, "model tests"); !errors.As(err, &verr) {
		t.Errorf("expected validation error for duplicate slug, got %v", err)
	}
	if _, err := s.CreateCategory(ctx, "???"); !errors.As(err, &verr) {
		t.Errorf("expected validation error for empty slug, got %v", err)
	}

	list, err := s.FetchCategories(ctx)
	if err != nil {
		t.Fatalf("FetchCategories: %v", err)
	}
	if len(list) != 2 || list[0].Slug != "model-tests" || list[1].Slug != "spelling" {
		t.Errorf("expected creation order, got %+v", list)
	}

	if err := s.DeleteCategory(ctx, c.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	if err := s.DeleteCategory(ctx, 9999); !errors.Is(err, content.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRequests(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	r, err := s.CreateRequest(ctx, content.NewRequest{StudentName: "Rafi", ClassRoll: "9-12", Topic: "Paragraph", Message: "Floods"})
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	list, err := s.FetchRequests(ctx)
	if err != nil {
		t.Fatalf("FetchRequests: %v", err)
	}
	if len(list) != 1 || list[0].StudentName != "Rafi" {
		t.Fatalf("unexpected requests: %+v", list)
	}
	if err := s.DeleteRequest(ctx, r.ID); err != nil {
		t.Fatalf("DeleteRequest: %v", err)
	}
	list, _ = s.FetchRequests(ctx)
	if len(list) != 0 {
		t.Errorf("expected no requests after delete, got %d", len(list))
	}
}
