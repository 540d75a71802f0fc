package api

import (
	"log/slog"
	"net/http"

	"github.com/unlockenglish/tutorsite/internal/audit"
	"github.com/unlockenglish/tutorsite/internal/auth"
)

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInResponse struct {
	User  *auth.User `json:"user"`
	Token string     `json:"token"`
}

// handleSignIn opens a session. The token is returned in the body for
// bearer use and set as the session cookie.
func (a *API) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var in signInRequest
	if !decode(w, r, &in) {
		return
	}
	u, token, err := a.deps.Auth.SignIn(r.Context(), in.Email, in.Password)
	if err != nil {
		writeErr(w, err)
		return
	}
	auth.SetSessionCookie(w, token, a.deps.SessionTTL, a.deps.SecureCookies)
	a.record(r, audit.Entry{Actor: u.Email, Action: audit.ActionSignedIn, Subject: "user:" + u.ID, Summary: u.Email + " signed in"})
	writeJSON(w, http.StatusOK, signInResponse{User: u, Token: token})
}

func (a *API) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := a.deps.Auth.SignOut(r.Context(), auth.TokenFromRequest(r)); err != nil {
		writeErr(w, err)
		return
	}
	auth.ClearSessionCookie(w)
	if u := auth.UserFromContext(r.Context()); u != nil {
		a.record(r, audit.Entry{Actor: u.Email, Action: audit.ActionSignedOut, Subject: "user:" + u.ID, Summary: u.Email + " signed out"})
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())
	if u == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (a *API) record(r *http.Request, e audit.Entry) {
	if a.deps.Audit == nil {
		return
	}
	if err := a.deps.Audit.Log(r.Context(), e); err != nil {
		slog.Warn("recording audit entry", "action", e.Action, "error", err)
	}
}
