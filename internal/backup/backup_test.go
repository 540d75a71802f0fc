package backup

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/unlockenglish/tutorsite/internal/content"
	"github.com/unlockenglish/tutorsite/internal/db"
	"github.com/unlockenglish/tutorsite/internal/store"
)

var snapshotTime = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func seededStore(t *testing.T) *store.Store {
	t.Helper()
	d, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	s := store.NewStore(d)

	ctx := t.Context()
	if _, err := s.CreateResource(ctx, content.NewResource{Title: "Tenses", Category: "grammar", Content: "<p>x</p>"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateNotice(ctx, "Exam on Sunday"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateCategory(ctx, "Idioms"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateRequest(ctx, content.NewRequest{StudentName: "Rafi", ClassRoll: "10/7", Topic: "Other", Message: "Hi"}); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestObjectKey(t *testing.T) {
	got := ObjectKey(snapshotTime.In(time.FixedZone("BST", 6*3600)))
	if got != "tutorsite-20260314T092653Z.json" {
		t.Errorf("expected UTC key, got %q", got)
	}
}

func TestTake(t *testing.T) {
	s := seededStore(t)

	snap, err := Take(t.Context(), s, snapshotTime)
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	if snap.Version != FormatVersion {
		t.Errorf("expected version %d, got %d", FormatVersion, snap.Version)
	}
	if len(snap.Resources) != 1 || len(snap.Categories) != 1 || len(snap.Requests) != 1 {
		t.Errorf("expected one of each record, got %+v", snap)
	}
	if snap.Notice == nil || snap.Notice.Content != "Exam on Sunday" {
		t.Errorf("expected latest notice, got %+v", snap.Notice)
	}
}

type brokenBackend struct {
	content.Backend
}

func (brokenBackend) FetchCategories(context.Context) ([]content.Category, error) {
	return nil, errors.New("connection reset")
}

func TestTakeFailure(t *testing.T) {
	s := seededStore(t)
	if _, err := Take(t.Context(), brokenBackend{Backend: s}, snapshotTime); err == nil {
		t.Error("expected error when a part cannot be read")
	}
}

func TestRunToFile(t *testing.T) {
	s := seededStore(t)
	dir := filepath.Join(t.TempDir(), "backups")

	loc, _, err := Run(t.Context(), s, FileSink{Dir: dir}, snapshotTime)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if loc != filepath.Join(dir, "tutorsite-20260314T092653Z.json") {
		t.Errorf("unexpected location %q", loc)
	}

	data, err := os.ReadFile(loc)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var got Snapshot
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !got.CreatedAt.Equal(snapshotTime) {
		t.Errorf("expected created_at %s, got %s", snapshotTime, got.CreatedAt)
	}
	if len(got.Resources) != 1 || got.Resources[0].Title != "Tenses" {
		t.Errorf("expected Tenses resource, got %+v", got.Resources)
	}
}

func TestMinioSinkPut(t *testing.T) {
	var (
		mu      sync.Mutex
		method  string
		path    string
		payload int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		method, path, payload = r.Method, r.URL.Path, len(body)
		mu.Unlock()
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	u, _ := url.Parse(srv.URL)
	sink, err := NewMinioSink(MinioConfig{
		Endpoint:  u.Host,
		Bucket:    "tutorsite-backups",
		AccessKey: "minio",
		SecretKey: "minio-secret",
		Region:    "us-east-1",
	})
	if err != nil {
		t.Fatalf("NewMinioSink: %v", err)
	}

	loc, err := sink.Put(t.Context(), "snap.json", []byte(`{"version":1}`))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if loc != "s3://tutorsite-backups/snap.json" {
		t.Errorf("unexpected location %q", loc)
	}

	mu.Lock()
	defer mu.Unlock()
	if method != http.MethodPut {
		t.Errorf("expected PUT, got %s", method)
	}
	if path != "/tutorsite-backups/snap.json" {
		t.Errorf("expected path-style object path, got %q", path)
	}
	if payload == 0 {
		t.Error("expected a request body")
	}
}
