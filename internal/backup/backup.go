// Package backup takes portable JSON snapshots of the site content and
// stores them on disk or in an S3-compatible bucket.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/unlockenglish/tutorsite/internal/content"
)

// FormatVersion is bumped when the snapshot layout changes.
const FormatVersion = 1

// Snapshot is the full content of the site at one point in time.
type Snapshot struct {
	Version    int                      `json:"version"`
	CreatedAt  time.Time                `json:"created_at"`
	Resources  []content.Resource       `json:"resources"`
	Notice     *content.Notice          `json:"notice,omitempty"`
	Categories []content.Category       `json:"categories"`
	Requests   []content.StudentRequest `json:"requests"`
}

// Take reads everything from backend concurrently.
func Take(ctx context.Context, backend content.Backend, now time.Time) (*Snapshot, error) {
	s := &Snapshot{Version: FormatVersion, CreatedAt: now.UTC()}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		s.Resources, err = backend.FetchResources(ctx)
		return wrap("resources", err)
	})
	g.Go(func() (err error) {
		s.Notice, err = backend.FetchLatestNotice(ctx)
		return wrap("notice", err)
	})
	g.Go(func() (err error) {
		s.Categories, err = backend.FetchCategories(ctx)
		return wrap("categories", err)
	})
	g.Go(func() (err error) {
		s.Requests, err = backend.FetchRequests(ctx)
		return wrap("requests", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return s, nil
}

func wrap(part string, err error) error {
	if err != nil {
		return fmt.Errorf("backup: reading %s: %w", part, err)
	}
	return nil
}

// Encode renders the snapshot as indented JSON.
func (s *Snapshot) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("backup: encoding snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// ObjectKey names the snapshot taken at t.
func ObjectKey(t time.Time) string {
	return "tutorsite-" + t.UTC().Format("20060102T150405Z") + ".json"
}

// Sink stores an encoded snapshot and returns where it went.
type Sink interface {
	Put(ctx context.Context, key string, data []byte) (string, error)
}

// FileSink writes snapshots into a local directory.
type FileSink struct {
	Dir string
}

// Put writes data to Dir/key, creating Dir when needed.
func (f FileSink) Put(_ context.Context, key string, data []byte) (string, error) {
	if err := os.MkdirAll(f.Dir, 0o750); err != nil {
		return "", fmt.Errorf("backup: creating %s: %w", f.Dir, err)
	}
	path := filepath.Join(f.Dir, key)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("backup: writing %s: %w", path, err)
	}
	return path, nil
}

// Run takes a snapshot and stores it in sink.
func Run(ctx context.Context, backend content.Backend, sink Sink, now time.Time) (string, *Snapshot, error) {
	snap, err := Take(ctx, backend, now)
	if err != nil {
		return "", nil, err
	}
	data, err := snap.Encode()
	if err != nil {
		return "", nil, err
	}
	loc, err := sink.Put(ctx, ObjectKey(now), data)
	if err != nil {
		return "", nil, err
	}
	return loc, snap, nil
}
