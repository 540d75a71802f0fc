// Package site serves the public website and the admin dashboard as
// server-rendered HTML. The address bar is the navigation state: every
// page view runs the navigation machine against the request URL.
package site

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/unlockenglish/tutorsite/internal/audit"
	"github.com/unlockenglish/tutorsite/internal/auth"
	"github.com/unlockenglish/tutorsite/internal/catalog"
	"github.com/unlockenglish/tutorsite/internal/metrics"
	"github.com/unlockenglish/tutorsite/internal/navigation"
)

// Info holds the site's fixed strings.
type Info struct {
	AppName     string
	Tagline     string
	TeacherName string
	Phone       string
	Email       string
}

// Deps are the collaborators the site needs.
type Deps struct {
	Catalog *catalog.Catalog
	Auth    *auth.Service
	Audit   *audit.Store
	Metrics *metrics.Metrics
	// Live serves the websocket endpoint; nil disables it.
	Live http.Handler
	// Limit wraps form posts; nil means unlimited.
	Limit func(http.Handler) http.Handler
	// SessionTTL is the lifetime of the session cookie.
	SessionTTL time.Duration
	// SecureCookies marks cookies Secure.
	SecureCookies bool
}

// Site renders pages.
type Site struct {
	info Info
	deps Deps
	tmpl *template.Template
}

// New parses the templates and creates the site.
func New(info Info, deps Deps) (*Site, error) {
	tmpl, err := template.New("site").Funcs(templateFuncs).Parse(pageTemplates)
	if err != nil {
		return nil, fmt.Errorf("parsing page templates: %w", err)
	}
	if deps.Limit == nil {
		deps.Limit = func(h http.Handler) http.Handler { return h }
	}
	if deps.SessionTTL <= 0 {
		deps.SessionTTL = 7 * 24 * time.Hour
	}
	return &Site{info: info, deps: deps, tmpl: tmpl}, nil
}

func (s *Site) navSite() navigation.Site {
	return navigation.Site{AppName: s.info.AppName, Tagline: s.info.Tagline}
}

// RegisterRoutes mounts the pages. The auth middleware must already run on r.
func (s *Site) RegisterRoutes(r chi.Router) {
	r.Get("/", s.handlePage)
	r.Get("/search", s.handleSearch)
	r.Get("/resources/{id}", s.handleResource)
	r.Get("/static/style.css", serveAsset("text/css; charset=utf-8", cssContent))
	r.Get("/static/live.js", serveAsset("text/javascript; charset=utf-8", jsContent))
	if s.deps.Live != nil {
		r.Handle("/ws/live", s.deps.Live)
	}

	r.With(s.deps.Limit).Post("/student-request", s.handleSubmitRequest)
	r.With(s.deps.Limit).Post("/admin/login", s.handleLogin)
	r.Post("/admin/logout", s.handleLogout)

	r.Route("/admin", func(r chi.Router) {
		r.Use(requireAdmin)
		r.Post("/resources", s.handlePublish)
		r.Post("/resources/{id}/delete", s.handleDeleteResource)
		r.Post("/notice", s.handlePostNotice)
		r.Post("/categories", s.handleAddCategory)
		r.Post("/categories/{id}/delete", s.handleDeleteCategory)
		r.Post("/requests/{id}/delete", s.handleDeleteRequest)
	})
}

// requireAdmin sends visitors without a session back to the sign-in form.
func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.UserFromContext(r.Context()) == nil {
			setFlash(w, "Please sign in first.")
			http.Redirect(w, r, adminHref(""), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func serveAsset(contentType, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Write([]byte(body))
	}
}
