// Package catalog owns the process-wide site state: the merged menu tree,
// the resource list and the current notice. Readers get consistent
// snapshots; every write replaces a whole value under the lock.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/unlockenglish/tutorsite/internal/audit"
	"github.com/unlockenglish/tutorsite/internal/content"
	"github.com/unlockenglish/tutorsite/internal/metrics"
	"github.com/unlockenglish/tutorsite/internal/nav"
	"github.com/unlockenglish/tutorsite/internal/notifications"
	"github.com/unlockenglish/tutorsite/internal/richtext"
)

// ErrUnavailable wraps every failure of the content backend other than a
// missing record or a rejected field.
var ErrUnavailable = errors.New("content backend unavailable")

// Listener is told about state that open pages display live.
type Listener interface {
	NoticeChanged(n *content.Notice)
	NavChanged(tree []nav.Item)
}

// Recorder stores audit entries.
type Recorder interface {
	Log(ctx context.Context, e audit.Entry) error
}

// Notifier delivers notifications in the background.
type Notifier interface {
	Go(n notifications.Notification)
}

// Deps are the optional collaborators of a Catalog. Nil fields disable the
// corresponding feature.
type Deps struct {
	Renderer  *richtext.Renderer
	Metrics   *metrics.Metrics
	Audit     Recorder
	Notifier  Notifier
	Listeners []Listener
}

// Catalog is the controller between HTTP handlers and the content backend.
type Catalog struct {
	backend content.Backend
	deps    Deps

	mu         sync.RWMutex
	tree       []nav.Item
	categories []content.Category
	resources  []content.Resource
	notice     *content.Notice
	appliedSeq uint64

	seq atomic.Uint64

	// notifyMu orders listener calls; sentSeq is the last tree broadcast.
	notifyMu sync.Mutex
	sentSeq  uint64
}

// New creates a catalog holding the built-in menu and no content. Call Load
// to fill it.
func New(backend content.Backend, deps Deps) *Catalog {
	if deps.Renderer == nil {
		deps.Renderer = richtext.New()
	}
	return &Catalog{backend: backend, deps: deps, tree: nav.BuiltIn()}
}

// Load fetches resources, the latest notice and categories concurrently.
// Each part is applied on its own, so a failure leaves the other parts
// loaded and the failed one at its prior value. The first error is returned.
func (c *Catalog) Load(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return c.RefreshResources(ctx) })
	g.Go(func() error { return c.RefreshNotice(ctx) })
	g.Go(func() error { return c.RefreshCategories(ctx) })
	return g.Wait()
}

// RefreshResources replaces the resource list with the backend's.
func (c *Catalog) RefreshResources(ctx context.Context) error {
	list, err := c.backend.FetchResources(ctx)
	if err != nil {
		return c.fail("fetch_resources", err)
	}
	c.mu.Lock()
	c.resources = list
	c.mu.Unlock()
	return nil
}

// RefreshNotice replaces the notice with the latest one.
func (c *Catalog) RefreshNotice(ctx context.Context) error {
	n, err := c.backend.FetchLatestNotice(ctx)
	if err != nil {
		return c.fail("fetch_notice", err)
	}
	c.mu.Lock()
	c.notice = n
	c.mu.Unlock()
	return nil
}

// RefreshCategories refetches categories and rebuilds the menu tree. Results
// of a fetch that started before the currently applied one are discarded. On
// failure the prior tree stays in place.
func (c *Catalog) RefreshCategories(ctx context.Context) error {
	seq := c.seq.Add(1)
	cats, err := c.backend.FetchCategories(ctx)
	if err != nil {
		return c.fail("fetch_categories", err)
	}
	cats = nav.NormalizeCategories(cats)
	tree := nav.Merge(nav.BuiltIn(), cats)

	c.mu.Lock()
	if seq < c.appliedSeq {
		c.mu.Unlock()
		slog.Debug("discarding stale category fetch", "seq", seq, "applied", c.appliedSeq)
		return nil
	}
	c.appliedSeq = seq
	c.tree = tree
	c.categories = cats
	c.mu.Unlock()

	c.broadcastNav()
	return nil
}

// broadcastNav sends the current tree to listeners. A refresh that was
// overtaken while waiting sends nothing, so listeners never see an older
// tree after a newer one.
func (c *Catalog) broadcastNav() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.RLock()
	tree, seq := c.tree, c.appliedSeq
	c.mu.RUnlock()
	if seq <= c.sentSeq {
		return
	}
	c.sentSeq = seq
	for _, l := range c.deps.Listeners {
		l.NavChanged(tree)
	}
}

// broadcastNotice sends the current notice to listeners.
func (c *Catalog) broadcastNotice() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	n := c.Notice()
	c.broadcastNotice()
}

// Tree returns the current menu tree. Callers must not modify it.
func (c *Catalog) Tree() []nav.Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tree
}

// Categories returns the categories merged into the current tree.
func (c *Catalog) Categories() []content.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.categories
}

// Resources returns every resource, newest first. Callers must not modify it.
func (c *Catalog) Resources() []content.Resource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resources
}

// Recent returns up to n of the newest resources.
func (c *Catalog) Recent(n int) []content.Resource {
	list := c.Resources()
	if len(list) > n {
		list = list[:n]
	}
	return list
}

// Resource looks a resource up by id.
func (c *Catalog) Resource(id int64) (content.Resource, bool) {
	for _, r := range c.Resources() {
		if r.ID == id {
			return r, true
		}
	}
	return content.Resource{}, false
}

// Notice returns the current notice, or nil.
func (c *Catalog) Notice() *content.Notice {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.notice
}

// Publish validates in, renders its markdown body and stores it. Without a
// description one is derived from the body's text.
func (c *Catalog) Publish(ctx context.Context, actor string, in content.NewResource) (*content.Resource, error) {
	in = in.Trim()
	if err := content.Validate(in); err != nil {
		return nil, err
	}
	if !c.isContentSection(in.Category) {
		return nil, content.NewValidationError("category", "category is not one of the offered sections")
	}

	html, err := c.deps.Renderer.Render(in.Content)
	if err != nil {
		return nil, content.NewValidationError("content", "content could not be rendered")
	}
	if in.Description == "" {
		in.Description = richtext.Summarize(c.deps.Renderer.PlainText(in.Content))
	}
	in.Content = html

	r, err := c.backend.CreateResource(ctx, in)
	if err != nil {
		return nil, c.fail("create_resource", err)
	}

	c.mu.Lock()
	c.resources = append([]content.Resource{*r}, c.resources...)
	c.mu.Unlock()

	c.record(ctx, audit.Entry{
		Actor:   actor,
		Action:  audit.ActionResourcePublished,
		Subject: fmt.Sprintf("resource:%d", r.ID),
		Summary: fmt.Sprintf("Published %q in %s", r.Title, r.Category),
	})
	return r, nil
}

// RemoveResource deletes a resource.
func (c *Catalog) RemoveResource(ctx context.Context, actor string, id int64) error {
	if err := c.backend.DeleteResource(ctx, id); err != nil {
		return c.fail("delete_resource", err)
	}

	c.mu.Lock()
	c.resources = slices.DeleteFunc(slices.Clone(c.resources), func(r content.Resource) bool { return r.ID == id })
	c.mu.Unlock()

	c.record(ctx, audit.Entry{
		Actor:   actor,
		Action:  audit.ActionResourceDeleted,
		Subject: fmt.Sprintf("resource:%d", id),
		Summary: fmt.Sprintf("Deleted resource %d", id),
	})
	return nil
}

// PostNotice replaces the ticker notice.
func (c *Catalog) PostNotice(ctx context.Context, actor, text string) (*content.Notice, error) {
	in := struct {
		Content string `json:"content" validate:"required,max=500"`
	}{Content: strings.TrimSpace(text)}
	if err := content.Validate(in); err != nil {
		return nil, err
	}

	n, err := c.backend.CreateNotice(ctx, in.Content)
	if err != nil {
		return nil, c.fail("create_notice", err)
	}

	c.mu.Lock()
	c.notice = n
	c.mu.Unlock()

	c.broadcastNotice()
	c.record(ctx, audit.Entry{
		Actor:   actor,
		Action:  audit.ActionNoticePosted,
		Subject: fmt.Sprintf("notice:%d", n.ID),
		Summary: n.Content,
	})
	return n, nil
}

// AddCategory creates a category and rebuilds the menu. A label whose slug
// is already a built-in section is rejected, since the menu would drop it.
func (c *Catalog) AddCategory(ctx context.Context, actor, label string) (*content.Category, error) {
	in := content.NewCategory{Label: strings.TrimSpace(label)}
	if err := content.Validate(in); err != nil {
		return nil, err
	}
	if _, ok := nav.Find(nav.BuiltIn(), content.Slugify(in.Label)); ok {
		return nil, content.NewValidationError("label", "a built-in section already uses this name")
	}

	cat, err := c.backend.CreateCategory(ctx, in.Label)
	if err != nil {
		return nil, c.fail("create_category", err)
	}
	// The category exists even if the refetch fails; the next refresh shows it.
	_ = c.RefreshCategories(ctx)

	c.record(ctx, audit.Entry{
		Actor:   actor,
		Action:  audit.ActionCategoryCreated,
		Subject: fmt.Sprintf("category:%d", cat.ID),
		Summary: fmt.Sprintf("Added category %q (%s)", cat.Label, cat.Slug),
	})
	return cat, nil
}

// RemoveCategory deletes a category and rebuilds the menu. Resources filed
// under it remain and are reachable again if the category is recreated.
func (c *Catalog) RemoveCategory(ctx context.Context, actor string, id int64) error {
	if err := c.backend.DeleteCategory(ctx, id); err != nil {
		return c.fail("delete_category", err)
	}
	_ = c.RefreshCategories(ctx)

	c.record(ctx, audit.Entry{
		Actor:   actor,
		Action:  audit.ActionCategoryDeleted,
		Subject: fmt.Sprintf("category:%d", id),
		Summary: fmt.Sprintf("Deleted category %d", id),
	})
	return nil
}

// SubmitRequest stores a student request and alerts the teacher.
func (c *Catalog) SubmitRequest(ctx context.Context, in content.NewRequest) (*content.StudentRequest, error) {
	in = in.Trim()
	if err := content.Validate(in); err != nil {
		return nil, err
	}
	r, err := c.backend.CreateRequest(ctx, in)
	if err != nil {
		return nil, c.fail("create_request", err)
	}
	c.deps.Metrics.RequestSubmitted()
	if c.deps.Notifier != nil {
		c.deps.Notifier.Go(notifications.FromRequest(*r))
	}
	return r, nil
}

// Requests returns student requests, newest first. On failure it returns an
// empty list along with the error.
func (c *Catalog) Requests(ctx context.Context) ([]content.StudentRequest, error) {
	list, err := c.backend.FetchRequests(ctx)
	if err != nil {
		return []content.StudentRequest{}, c.fail("fetch_requests", err)
	}
	return list, nil
}

// DeleteRequest removes a student request.
func (c *Catalog) DeleteRequest(ctx context.Context, actor string, id int64) error {
	if err := c.backend.DeleteRequest(ctx, id); err != nil {
		return c.fail("delete_request", err)
	}
	c.record(ctx, audit.Entry{
		Actor:   actor,
		Action:  audit.ActionRequestDeleted,
		Subject: fmt.Sprintf("request:%d", id),
		Summary: fmt.Sprintf("Deleted student request %d", id),
	})
	return nil
}

func (c *Catalog) isContentSection(id string) bool {
	for _, it := range nav.ContentSections(c.Tree()) {
		if it.ID == id {
			return true
		}
	}
	return false
}

// fail passes through missing-record and validation errors; anything else
// is logged, counted and wrapped in ErrUnavailable.
func (c *Catalog) fail(op string, err error) error {
	var verr *content.ValidationError
	if errors.Is(err, content.ErrNotFound) || errors.As(err, &verr) {
		return err
	}
	slog.Error("content backend failure", "op", op, "error", err)
	c.deps.Metrics.BackendError(op)
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}

func (c *Catalog) record(ctx context.Context, e audit.Entry) {
	if c.deps.Audit == nil {
		return
	}
	if e.Actor == "" {
		e.Actor = audit.ActorSystem
	}
	if err := c.deps.Audit.Log(ctx, e); err != nil {
		slog.Warn("recording audit entry", "action", e.Action, "error", err)
	}
}
