package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/unlockenglish/tutorsite/internal/auth"
	"github.com/unlockenglish/tutorsite/internal/db"
	"github.com/unlockenglish/tutorsite/internal/metrics"
	"github.com/unlockenglish/tutorsite/internal/session"
)

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	authSvc := auth.NewService(auth.NewStore(database), session.NewMemoryStore(), time.Hour)
	return New(cfg, database, metrics.New(), authSvc)
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t, Config{Port: 0})

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", body["status"])
	}
}

func TestHealthCheckDatabaseDown(t *testing.T) {
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	database.Close()
	srv := New(Config{}, database, nil, nil)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/healthz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestCORSHeaders(t *testing.T) {
	srv := newTestServer(t, Config{Port: 0, AllowAll: true})

	req := httptest.NewRequest("OPTIONS", "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, Config{})

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Error("expected Go runtime metrics in output")
	}
}

func TestRouterResolvesSession(t *testing.T) {
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	authSvc := auth.NewService(auth.NewStore(database), session.NewMemoryStore(), time.Hour)
	if _, err := authSvc.CreateUser(t.Context(), auth.NewUser{Email: "admin@example.com", Name: "Admin", Password: "password123"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	_, token, err := authSvc.SignIn(t.Context(), "admin@example.com", "password123")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	srv := New(Config{}, database, nil, authSvc)
	srv.Router().Get("/whoami", func(w http.ResponseWriter, r *http.Request) {
		if u := auth.UserFromContext(r.Context()); u != nil {
			w.Write([]byte(u.Email))
		}
	})

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if got := w.Body.String(); got != "admin@example.com" {
		t.Errorf("expected signed-in user in context, got %q", got)
	}
}

func TestLimit(t *testing.T) {
	srv := newTestServer(t, Config{RequestsPerMinute: 1, Burst: 2})
	srv.Router().With(srv.Limit).Post("/form", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	post := func(ip string) int {
		req := httptest.NewRequest("POST", "/form", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)
		return w.Code
	}

	for i := range 2 {
		if code := post("10.0.0.1"); code != http.StatusNoContent {
			t.Fatalf("request %d: expected 204, got %d", i, code)
		}
	}
	if code := post("10.0.0.1"); code != http.StatusTooManyRequests {
		t.Errorf("expected 429 once the burst is spent, got %d", code)
	}
	if code := post("10.0.0.2"); code != http.StatusNoContent {
		t.Errorf("expected another client to be unaffected, got %d", code)
	}
}

func TestLimitDisabled(t *testing.T) {
	srv := newTestServer(t, Config{})
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	if srv.limiter != nil {
		t.Fatal("expected no limiter without a configured rate")
	}
	if srv.Limit(h) == nil {
		t.Error("expected handler to be returned")
	}
}

func TestRateLimiterSweepsIdleVisitors(t *testing.T) {
	l := newRateLimiter(60, 1)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.allow("10.0.0.1")
	l.allow("10.0.0.2")
	if l.size() != 2 {
		t.Fatalf("expected 2 visitors, got %d", l.size())
	}

	now = now.Add(limiterIdleTTL + time.Minute)
	l.allow("10.0.0.3")
	if l.size() != 1 {
		t.Errorf("expected idle visitors to be swept, got %d", l.size())
	}
}
