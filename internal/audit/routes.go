package audit

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// maxPage caps the limit query parameter.
const maxPage = 500

var actions = map[Action]bool{
	ActionResourcePublished: true,
	ActionResourceDeleted:   true,
	ActionCategoryCreated:   true,
	ActionCategoryDeleted:   true,
	ActionNoticePosted:      true,
	ActionRequestDeleted:    true,
	ActionSignedIn:          true,
	ActionSignedOut:         true,
}

// RegisterRoutes mounts the activity feed under /api/activity. The caller
// guards it.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Route("/api/activity", func(r chi.Router) {
		r.Get("/", listActivity(store))
		r.Get("/{id}", getActivity(store))
	})
}

// parsePage reads ?action= and ?limit=. An unknown action is an error; a bad
// or missing limit falls back to DefaultLimit.
func parsePage(r *http.Request) (Action, int, error) {
	q := r.URL.Query()
	action := Action(q.Get("action"))
	if action != "" && !actions[action] {
		return "", 0, errors.New("unknown action " + strconv.Quote(string(action)))
	}
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		limit = DefaultLimit
	}
	return action, min(limit, maxPage), nil
}

func listActivity(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		action, limit, err := parsePage(r)
		if err != nil {
			respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		entries, err := store.List(r.Context(), action, limit)
		if err != nil {
			respond(w, http.StatusServiceUnavailable, map[string]string{"error": "activity unavailable"})
			return
		}
		if entries == nil {
			entries = []Entry{}
		}
		respond(w, http.StatusOK, entries)
	}
}

func getActivity(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry, err := store.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respond(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		respond(w, http.StatusOK, entry)
	}
}

func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
