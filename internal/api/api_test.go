package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/unlockenglish/tutorsite/internal/audit"
	"github.com/unlockenglish/tutorsite/internal/auth"
	"github.com/unlockenglish/tutorsite/internal/catalog"
	"github.com/unlockenglish/tutorsite/internal/content"
	"github.com/unlockenglish/tutorsite/internal/db"
	"github.com/unlockenglish/tutorsite/internal/nav"
	"github.com/unlockenglish/tutorsite/internal/navigation"
	"github.com/unlockenglish/tutorsite/internal/session"
	"github.com/unlockenglish/tutorsite/internal/store"
)

type fixture struct {
	router  http.Handler
	catalog *catalog.Catalog
	auth    *auth.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	d, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	auditStore := audit.NewStore(d)
	cat := catalog.New(store.NewStore(d), catalog.Deps{Audit: auditStore})
	authSvc := auth.NewService(auth.NewStore(d), session.NewMemoryStore(), time.Hour)
	if _, err := authSvc.CreateUser(t.Context(), auth.NewUser{Email: "admin@example.com", Name: "Admin", Password: "password123"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	a := New(Deps{
		Catalog: cat,
		Auth:    authSvc,
		Audit:   auditStore,
		Site:    navigation.Site{AppName: "Unlock English", Tagline: "Learn with confidence"},
	})
	r := chi.NewRouter()
	r.Use(authSvc.Middleware)
	a.RegisterRoutes(r)
	return &fixture{router: r, catalog: cat, auth: authSvc}
}

func (f *fixture) token(t *testing.T) string {
	t.Helper()
	_, token, err := f.auth.SignIn(t.Context(), "admin@example.com", "password123")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	return token
}

func (f *fixture) do(method, target, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("unmarshal %q: %v", w.Body.String(), err)
	}
	return v
}

func TestNavReturnsMergedTree(t *testing.T) {
	f := newFixture(t)
	if _, err := f.catalog.AddCategory(t.Context(), "test", "Idioms"); err != nil {
		t.Fatalf("AddCategory: %v", err)
	}

	w := f.do("GET", "/api/nav", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	tree := decodeBody[[]nav.Item](t, w)
	it, ok := nav.Find(tree, "idioms")
	if !ok {
		t.Fatal("expected idioms leaf in tree")
	}
	if it.OriginID == 0 {
		t.Error("expected dynamic leaf to carry its category id")
	}
	if last := tree[len(tree)-1]; last.Label != "Account" {
		t.Errorf("expected Account container last, got %q", last.Label)
	}
}

func TestNavigationEndpoint(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	for _, in := range []content.NewResource{
		{Title: "Business Letter", Category: "formal-letter", Content: "Dear Sir"},
		{Title: "Present Tense", Category: "grammar", Content: "I play."},
	} {
		if _, err := f.catalog.Publish(ctx, "test", in); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}

	w := f.do("GET", "/api/navigation?page=formal-letter", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	resp := decodeBody[navigationResponse](t, w)
	if resp.Outputs.Title != "Formal Letter | Unlock English" {
		t.Errorf("expected formal letter title, got %q", resp.Outputs.Title)
	}
	if resp.Outputs.URL != "/?page=formal-letter" {
		t.Errorf("expected canonical url, got %q", resp.Outputs.URL)
	}
	if len(resp.Resources) != 1 || resp.Resources[0].Title != "Business Letter" {
		t.Errorf("expected only the formal letter, got %+v", resp.Resources)
	}
	if !resp.Known {
		t.Error("expected formal-letter to be a known section")
	}

	resp = decodeBody[navigationResponse](t, f.do("GET", "/api/navigation?page=search&q=ess", "", ""))
	if resp.State.SearchQuery != "ess" {
		t.Errorf("expected query ess, got %q", resp.State.SearchQuery)
	}
	if len(resp.Resources) != 1 || resp.Resources[0].Title != "Business Letter" {
		t.Errorf("expected search to match Business Letter, got %+v", resp.Resources)
	}

	resp = decodeBody[navigationResponse](t, f.do("GET", "/api/navigation", "", ""))
	if resp.State.ActiveSection != navigation.SectionHome {
		t.Errorf("expected home without page param, got %q", resp.State.ActiveSection)
	}
	if resp.Outputs.URL != "/" {
		t.Errorf("expected bare url for home, got %q", resp.Outputs.URL)
	}

	resp = decodeBody[navigationResponse](t, f.do("GET", "/api/navigation?page=nowhere", "", ""))
	if resp.Known || len(resp.Resources) != 0 {
		t.Errorf("expected unknown section with no resources, got %+v", resp)
	}
}

func TestWritesRequireAuth(t *testing.T) {
	f := newFixture(t)

	for _, tc := range []struct{ method, target, body string }{
		{"POST", "/api/resources", `{"title":"x","category":"grammar","content":"y"}`},
		{"DELETE", "/api/resources/1", ""},
		{"POST", "/api/notice", `{"content":"hi"}`},
		{"POST", "/api/categories", `{"label":"Idioms"}`},
		{"DELETE", "/api/categories/1", ""},
		{"GET", "/api/requests", ""},
		{"GET", "/api/activity", ""},
	} {
		w := f.do(tc.method, tc.target, tc.body, "")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", tc.method, tc.target, w.Code)
		}
	}
}

func TestPublishAndDeleteResource(t *testing.T) {
	f := newFixture(t)
	token := f.token(t)

	w := f.do("POST", "/api/resources", `{"title":"","category":"grammar","content":"y"}`, token)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	errResp := decodeBody[errorResponse](t, w)
	if errResp.Fields["title"] == "" {
		t.Errorf("expected title field error, got %+v", errResp)
	}

	w = f.do("POST", "/api/resources", `{"title":"Clauses","category":"grammar","content":"# Clauses\n\nA clause has a verb."}`, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	res := decodeBody[content.Resource](t, w)
	if !strings.Contains(res.Content, "<h1") {
		t.Errorf("expected rendered HTML content, got %q", res.Content)
	}

	w = f.do("GET", "/api/resources/"+strconv.FormatInt(res.ID, 10), "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = f.do("DELETE", "/api/resources/"+strconv.FormatInt(res.ID, 10), "", token)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	w = f.do("DELETE", "/api/resources/"+strconv.FormatInt(res.ID, 10), "", token)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", w.Code)
	}
	w = f.do("DELETE", "/api/resources/abc", "", token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad id, got %d", w.Code)
	}
}

func TestCategoriesAndNotice(t *testing.T) {
	f := newFixture(t)
	token := f.token(t)

	w := f.do("POST", "/api/categories", `{"label":"Idioms"}`, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	cat := decodeBody[content.Category](t, w)
	if cat.Slug != "idioms" {
		t.Errorf("expected slug idioms, got %q", cat.Slug)
	}

	cats := decodeBody[[]content.Category](t, f.do("GET", "/api/categories", "", ""))
	if len(cats) != 1 {
		t.Errorf("expected 1 category, got %d", len(cats))
	}

	w = f.do("DELETE", "/api/categories/"+strconv.FormatInt(cat.ID, 10), "", token)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	w = f.do("GET", "/api/notice", "", "")
	if strings.TrimSpace(w.Body.String()) != "null" {
		t.Errorf("expected null notice, got %q", w.Body.String())
	}
	w = f.do("POST", "/api/notice", `{"content":"Exam on Monday"}`, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	n := decodeBody[content.Notice](t, f.do("GET", "/api/notice", "", ""))
	if n.Content != "Exam on Monday" {
		t.Errorf("expected posted notice, got %q", n.Content)
	}
}

func TestStudentRequests(t *testing.T) {
	f := newFixture(t)
	token := f.token(t)

	w := f.do("POST", "/api/requests", `{"student_name":"Mim","class_roll":"9/12","topic":"Poetry","message":"please"}`, "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for unknown topic, got %d", w.Code)
	}

	w = f.do("POST", "/api/requests", `{"student_name":"Mim","class_roll":"9/12","topic":"Composition","message":"Climate change please"}`, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	list := decodeBody[[]content.StudentRequest](t, f.do("GET", "/api/requests", "", token))
	if len(list) != 1 || list[0].StudentName != "Mim" {
		t.Fatalf("expected Mim's request, got %+v", list)
	}

	w = f.do("DELETE", "/api/requests/"+strconv.FormatInt(list[0].ID, 10), "", token)
	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}

	w = f.do("POST", "/api/requests", `{not json`, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed body, got %d", w.Code)
	}
}

func TestSignInFlow(t *testing.T) {
	f := newFixture(t)

	w := f.do("POST", "/api/auth/signin", `{"email":"admin@example.com","password":"nope"}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}

	w = f.do("POST", "/api/auth/signin", `{"email":"ADMIN@example.com","password":"password123"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	resp := decodeBody[signInResponse](t, w)
	if resp.Token == "" || resp.User == nil {
		t.Fatalf("expected token and user, got %+v", resp)
	}

	me := decodeBody[auth.User](t, f.do("GET", "/api/auth/me", "", resp.Token))
	if me.Email != "admin@example.com" {
		t.Errorf("expected admin@example.com, got %q", me.Email)
	}

	w = f.do("POST", "/api/auth/signout", "", resp.Token)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	w = f.do("GET", "/api/auth/me", "", resp.Token)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 after sign-out, got %d", w.Code)
	}
}

func TestActivityRecorded(t *testing.T) {
	f := newFixture(t)
	token := f.token(t)

	if w := f.do("POST", "/api/notice", `{"content":"Holiday tomorrow"}`, token); w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	entries := decodeBody[[]audit.Entry](t, f.do("GET", "/api/activity?action=notice_posted", "", token))
	if len(entries) != 1 {
		t.Fatalf("expected 1 notice entry, got %d", len(entries))
	}
	if entries[0].Actor != "admin@example.com" {
		t.Errorf("expected actor admin@example.com, got %q", entries[0].Actor)
	}
}
