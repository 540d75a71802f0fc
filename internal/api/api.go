// Package api exposes the site's content and navigation as JSON. Reads are
// public; writes need a signed-in admin, by session cookie or bearer token.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/unlockenglish/tutorsite/internal/audit"
	"github.com/unlockenglish/tutorsite/internal/auth"
	"github.com/unlockenglish/tutorsite/internal/catalog"
	"github.com/unlockenglish/tutorsite/internal/content"
	"github.com/unlockenglish/tutorsite/internal/nav"
	"github.com/unlockenglish/tutorsite/internal/navigation"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Deps are the collaborators of the API.
type Deps struct {
	Catalog *catalog.Catalog
	Auth    *auth.Service
	Audit   *audit.Store
	Site    navigation.Site
	// Limit wraps unauthenticated writes; nil means unlimited.
	Limit         func(http.Handler) http.Handler
	SessionTTL    time.Duration
	SecureCookies bool
}

// API serves the JSON endpoints.
type API struct {
	deps Deps
}

// New creates the API.
func New(deps Deps) *API {
	if deps.Limit == nil {
		deps.Limit = func(h http.Handler) http.Handler { return h }
	}
	if deps.SessionTTL <= 0 {
		deps.SessionTTL = 7 * 24 * time.Hour
	}
	return &API{deps: deps}
}

// RegisterRoutes mounts the endpoints under /api. The auth middleware must
// already run on r.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Get("/api/nav", a.handleNav)
	r.Get("/api/navigation", a.handleNavigation)
	r.Get("/api/resources", a.handleListResources)
	r.Get("/api/resources/{id}", a.handleGetResource)
	r.Get("/api/notice", a.handleGetNotice)
	r.Get("/api/categories", a.handleListCategories)

	r.With(a.deps.Limit).Post("/api/requests", a.handleSubmitRequest)
	r.With(a.deps.Limit).Post("/api/auth/signin", a.handleSignIn)
	r.Post("/api/auth/signout", a.handleSignOut)
	r.Get("/api/auth/me", a.handleMe)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser)
		r.Post("/api/resources", a.handlePublish)
		r.Delete("/api/resources/{id}", a.handleDeleteResource)
		r.Post("/api/notice", a.handlePostNotice)
		r.Post("/api/categories", a.handleAddCategory)
		r.Delete("/api/categories/{id}", a.handleDeleteCategory)
		r.Get("/api/requests", a.handleListRequests)
		r.Delete("/api/requests/{id}", a.handleDeleteRequest)
		if a.deps.Audit != nil {
			audit.RegisterRoutes(r, a.deps.Audit)
		}
	})
}

// navigationResponse is the body of /api/navigation.
type navigationResponse struct {
	State     navigation.State   `json:"state"`
	Outputs   navigation.Outputs `json:"outputs"`
	Heading   string             `json:"heading"`
	Known     bool               `json:"known"`
	Resources []content.Resource `json:"resources,omitempty"`
}

func (a *API) handleNav(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.deps.Catalog.Tree())
}

// handleNavigation runs the navigation machine for the page and q
// parameters and returns what a browser would show.
func (a *API) handleNavigation(w http.ResponseWriter, r *http.Request) {
	st := navigation.FromURL(r.URL)
	_, inMenu := nav.Find(a.deps.Catalog.Tree(), st.ActiveSection)
	resp := navigationResponse{
		State:   st,
		Outputs: navigation.Derive(st, a.deps.Site, &url.URL{Path: "/"}),
		Heading: navigation.SectionHeading(st),
		Known:   inMenu || st.ActiveSection == navigation.SectionSearch,
	}
	if navigation.Filtered(st) {
		resp.Resources = navigation.Filter(st, a.deps.Catalog.Resources())
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleListResources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.deps.Catalog.Resources())
}

func (a *API) handleGetResource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res, found := a.deps.Catalog.Resource(id)
	if !found {
		writeError(w, http.StatusNotFound, "resource not found")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) handleGetNotice(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.deps.Catalog.Notice())
}

func (a *API) handleListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.deps.Catalog.Categories())
}

func (a *API) handleSubmitRequest(w http.ResponseWriter, r *http.Request) {
	var in content.NewRequest
	if !decode(w, r, &in) {
		return
	}
	req, err := a.deps.Catalog.SubmitRequest(r.Context(), in)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (a *API) handlePublish(w http.ResponseWriter, r *http.Request) {
	var in content.NewResource
	if !decode(w, r, &in) {
		return
	}
	res, err := a.deps.Catalog.Publish(r.Context(), actor(r), in)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (a *API) handleDeleteResource(w http.ResponseWriter, r *http.Request) {
	a.deleteByID(w, r, a.deps.Catalog.RemoveResource)
}

func (a *API) handlePostNotice(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Content string `json:"content"`
	}
	if !decode(w, r, &in) {
		return
	}
	n, err := a.deps.Catalog.PostNotice(r.Context(), actor(r), in.Content)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (a *API) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var in content.NewCategory
	if !decode(w, r, &in) {
		return
	}
	c, err := a.deps.Catalog.AddCategory(r.Context(), actor(r), in.Label)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (a *API) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	a.deleteByID(w, r, a.deps.Catalog.RemoveCategory)
}

func (a *API) handleListRequests(w http.ResponseWriter, r *http.Request) {
	list, err := a.deps.Catalog.Requests(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) handleDeleteRequest(w http.ResponseWriter, r *http.Request) {
	a.deleteByID(w, r, a.deps.Catalog.DeleteRequest)
}

func (a *API) deleteByID(w http.ResponseWriter, r *http.Request, del func(ctx context.Context, actor string, id int64) error) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := del(r.Context(), actor(r), id); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func actor(r *http.Request) string {
	if u := auth.UserFromContext(r.Context()); u != nil {
		return u.Email
	}
	return ""
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// writeErr maps catalog and auth errors to status codes.
func writeErr(w http.ResponseWriter, err error) {
	var verr *content.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "validation failed", Fields: verr.Fields})
	case errors.Is(err, content.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid email or password")
	default:
		slog.Error("api request failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "service unavailable, please try again later")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
