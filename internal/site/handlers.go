package site

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/unlockenglish/tutorsite/internal/audit"
	"github.com/unlockenglish/tutorsite/internal/auth"
	"github.com/unlockenglish/tutorsite/internal/content"
	"github.com/unlockenglish/tutorsite/internal/nav"
	"github.com/unlockenglish/tutorsite/internal/navigation"
)

// Views.
const (
	viewHome     = "home"
	viewSection  = "section"
	viewRequest  = "request"
	viewAdmin    = "admin"
	viewResource = "resource"
)

// Admin dashboard tabs.
const (
	tabContent    = "content"
	tabRequests   = "requests"
	tabNotice     = "notice"
	tabCategories = "categories"
	tabActivity   = "activity"
)

var adminTabs = []struct{ ID, Label string }{
	{tabContent, "Manage Content"},
	{tabRequests, "Student Requests"},
	{tabNotice, "Notice Board"},
	{tabCategories, "Categories"},
	{tabActivity, "Activity"},
}

type pageData struct {
	Info            Info
	Title           string
	MetaDescription string
	CanonicalURL    string
	State           navigation.State
	View            string
	Heading         string
	Known           bool
	Menu            []menuNode
	Tree            []nav.Item
	Notice          *content.Notice
	Recent          []content.Resource
	Resources       []content.Resource
	Resource        *content.Resource
	User            *auth.User
	Flash           string
	Error           string
	Request         requestForm
	Admin           adminData
	HomeHref        string
	StartHref       string
	RequestHref     string
}

// Label returns the menu label of a section id.
func (p pageData) Label(id string) string {
	return sectionLabel(p.Tree, id)
}

type requestForm struct {
	Values content.NewRequest
	Errors map[string]string
	Topics []string
}

type adminTab struct {
	ID, Label, Href string
	Active          bool
}

type adminData struct {
	Tab           string
	Tabs          []adminTab
	LoginEmail    string
	LoginError    string
	Sections      []nav.Item
	Resources     []content.Resource
	Requests      []content.StudentRequest
	Categories    []nav.Item
	Activity      []audit.Entry
	Errors        map[string]string
	Form          content.NewResource
	NoticeText    string
	CategoryLabel string
}

func viewFor(s navigation.State) string {
	switch s.ActiveSection {
	case navigation.SectionHome:
		return viewHome
	case navigation.SectionStudentRequest:
		return viewRequest
	case navigation.SectionAdmin:
		return viewAdmin
	default:
		return viewSection
	}
}

func adminHref(tab string) string {
	q := url.Values{navigation.PageParam: {navigation.SectionAdmin}}
	if tab != "" {
		q.Set("tab", tab)
	}
	return "/?" + q.Encode()
}

// handlePage renders the page for the state in the URL, redirecting to the
// canonical URL when the request differs from it.
func (s *Site) handlePage(w http.ResponseWriter, r *http.Request) {
	fx := &pageEffects{}
	m := navigation.NewMachine(s.navSite(), r.URL, fx)
	if !sameQuery(r.URL, fx.url) {
		http.Redirect(w, r, fx.url, http.StatusFound)
		return
	}
	s.render(w, r, http.StatusOK, m.State(), viewFor(m.State()), nil)
}

func sameQuery(req *url.URL, canonical string) bool {
	u, err := url.Parse(canonical)
	if err != nil {
		return true
	}
	return req.Query().Encode() == u.Query().Encode()
}

// handleSearch applies a submitted search to the section the visitor was on
// and redirects to the result. A blank query leaves them where they were,
// including the previous query when they were already on search results.
func (s *Site) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start := &url.URL{Path: "/"}
	if from := q.Get("from"); from != "" {
		prev := url.Values{navigation.PageParam: {from}}
		if from == navigation.SectionSearch {
			prev.Set(navigation.QueryParam, q.Get("from_q"))
		}
		start.RawQuery = prev.Encode()
	}
	fx := &pageEffects{}
	m := navigation.NewMachine(s.navSite(), start, fx)
	m.Dispatch(navigation.Search{Query: q.Get(navigation.QueryParam)})
	http.Redirect(w, r, fx.url, http.StatusSeeOther)
}

func (s *Site) handleResource(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	res, ok := s.deps.Catalog.Resource(id)
	if err != nil || !ok {
		s.render(w, r, http.StatusNotFound, navigation.Home(), viewResource, func(p *pageData) {
			p.Title = "Not Found | " + s.info.AppName
		})
		return
	}
	st := navigation.State{ActiveSection: res.Category}
	s.render(w, r, http.StatusOK, st, viewResource, func(p *pageData) {
		p.Resource = &res
		p.CanonicalURL = resourceHref(res.ID)
		p.Title = res.Title + " | " + s.info.AppName
		p.MetaDescription = res.Description
	})
}

func (s *Site) handleSubmitRequest(w http.ResponseWriter, r *http.Request) {
	in := content.NewRequest{
		StudentName: r.PostFormValue("student_name"),
		ClassRoll:   r.PostFormValue("class_roll"),
		Topic:       r.PostFormValue("topic"),
		Message:     r.PostFormValue("message"),
	}
	st := navigation.State{ActiveSection: navigation.SectionStudentRequest}

	_, err := s.deps.Catalog.SubmitRequest(r.Context(), in)
	var verr *content.ValidationError
	switch {
	case errors.As(err, &verr):
		s.render(w, r, http.StatusUnprocessableEntity, st, viewRequest, func(p *pageData) {
			p.Request.Values = in
			p.Request.Errors = verr.Fields
		})
	case err != nil:
		s.render(w, r, http.StatusServiceUnavailable, st, viewRequest, func(p *pageData) {
			p.Request.Values = in
			p.Error = "Your request could not be sent. Please try again later."
		})
	default:
		setFlash(w, "Thank you! Your request has been sent to the teacher.")
		http.Redirect(w, r, sectionHref(st), http.StatusSeeOther)
	}
}

func (s *Site) handleLogin(w http.ResponseWriter, r *http.Request) {
	email := r.PostFormValue("email")
	st := navigation.State{ActiveSection: navigation.SectionAdmin}

	u, token, err := s.deps.Auth.SignIn(r.Context(), email, r.PostFormValue("password"))
	if err != nil {
		status, msg := http.StatusUnauthorized, "Invalid email or password."
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			slog.Error("sign-in failed", "error", err)
			status, msg = http.StatusServiceUnavailable, "Sign-in is unavailable right now. Please try again later."
		}
		s.render(w, r, status, st, viewAdmin, func(p *pageData) {
			p.Admin.LoginEmail = email
			p.Admin.LoginError = msg
		})
		return
	}

	auth.SetSessionCookie(w, token, s.deps.SessionTTL, s.deps.SecureCookies)
	s.record(r, audit.Entry{Actor: u.Email, Action: audit.ActionSignedIn, Subject: "user:" + u.ID, Summary: u.Email + " signed in"})
	http.Redirect(w, r, adminHref(""), http.StatusSeeOther)
}

func (s *Site) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Auth.SignOut(r.Context(), auth.TokenFromRequest(r)); err != nil {
		slog.Warn("sign-out failed", "error", err)
	}
	auth.ClearSessionCookie(w)
	if u := auth.UserFromContext(r.Context()); u != nil {
		s.record(r, audit.Entry{Actor: u.Email, Action: audit.ActionSignedOut, Subject: "user:" + u.ID, Summary: u.Email + " signed out"})
	}
	http.Redirect(w, r, adminHref(""), http.StatusSeeOther)
}

func (s *Site) handlePublish(w http.ResponseWriter, r *http.Request) {
	in := content.NewResource{
		Title:       r.PostFormValue("title"),
		Category:    r.PostFormValue("category"),
		Description: r.PostFormValue("description"),
		Content:     r.PostFormValue("content"),
	}
	_, err := s.deps.Catalog.Publish(r.Context(), actor(r), in)
	if err != nil {
		s.renderAdminError(w, r, tabContent, err, func(a *adminData) { a.Form = in })
		return
	}
	setFlash(w, "Resource published.")
	http.Redirect(w, r, adminHref(tabContent), http.StatusSeeOther)
}

func (s *Site) handlePostNotice(w http.ResponseWriter, r *http.Request) {
	text := r.PostFormValue("content")
	if _, err := s.deps.Catalog.PostNotice(r.Context(), actor(r), text); err != nil {
		s.renderAdminError(w, r, tabNotice, err, func(a *adminData) { a.NoticeText = text })
		return
	}
	setFlash(w, "Notice posted.")
	http.Redirect(w, r, adminHref(tabNotice), http.StatusSeeOther)
}

func (s *Site) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	label := r.PostFormValue("label")
	if _, err := s.deps.Catalog.AddCategory(r.Context(), actor(r), label); err != nil {
		s.renderAdminError(w, r, tabCategories, err, func(a *adminData) { a.CategoryLabel = label })
		return
	}
	setFlash(w, "Category added.")
	http.Redirect(w, r, adminHref(tabCategories), http.StatusSeeOther)
}

func (s *Site) handleDeleteResource(w http.ResponseWriter, r *http.Request) {
	s.deleteAndRedirect(w, r, tabContent, "Resource", s.deps.Catalog.RemoveResource)
}

func (s *Site) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	s.deleteAndRedirect(w, r, tabCategories, "Category", s.deps.Catalog.RemoveCategory)
}

func (s *Site) handleDeleteRequest(w http.ResponseWriter, r *http.Request) {
	s.deleteAndRedirect(w, r, tabRequests, "Request", s.deps.Catalog.DeleteRequest)
}

func (s *Site) deleteAndRedirect(w http.ResponseWriter, r *http.Request, tab, what string, del func(context.Context, string, int64) error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err == nil {
		err = del(r.Context(), actor(r), id)
	}
	switch {
	case err == nil:
		setFlash(w, what+" deleted.")
	case errors.Is(err, content.ErrNotFound), errors.Is(err, strconv.ErrSyntax):
		setFlash(w, what+" was already deleted.")
	default:
		setFlash(w, what+" could not be deleted. Please try again later.")
	}
	http.Redirect(w, r, adminHref(tab), http.StatusSeeOther)
}

// renderAdminError re-renders an admin tab with the form kept. Validation
// failures show next to the fields; anything else shows as a banner.
func (s *Site) renderAdminError(w http.ResponseWriter, r *http.Request, tab string, err error, keep func(*adminData)) {
	st := navigation.State{ActiveSection: navigation.SectionAdmin}
	status := http.StatusServiceUnavailable
	var verr *content.ValidationError
	if errors.As(err, &verr) {
		status = http.StatusUnprocessableEntity
	}
	s.renderTab(w, r, status, st, tab, func(p *pageData) {
		keep(&p.Admin)
		if verr != nil {
			p.Admin.Errors = verr.Fields
		} else {
			p.Error = "The change could not be saved. Please try again later."
		}
	})
}

func actor(r *http.Request) string {
	if u := auth.UserFromContext(r.Context()); u != nil {
		return u.Email
	}
	return ""
}

func (s *Site) record(r *http.Request, e audit.Entry) {
	if s.deps.Audit == nil {
		return
	}
	if err := s.deps.Audit.Log(r.Context(), e); err != nil {
		slog.Warn("recording audit entry", "action", e.Action, "error", err)
	}
}

func (s *Site) render(w http.ResponseWriter, r *http.Request, status int, st navigation.State, view string, customize func(*pageData)) {
	s.renderTab(w, r, status, st, r.URL.Query().Get("tab"), func(p *pageData) {
		p.View = view
		if customize != nil {
			customize(p)
		}
	})
}

// pageURL is the URL a rendered page derives its canonical link from. Form
// posts re-render pages whose own URL only accepts POST, so those derive from
// the site root and keep just the admin tab.
func pageURL(r *http.Request, tab string) *url.URL {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return r.URL
	}
	u := &url.URL{Path: "/"}
	if tab != "" {
		u.RawQuery = url.Values{"tab": {tab}}.Encode()
	}
	return u
}

// renderTab builds the page data for st and executes the page template.
func (s *Site) renderTab(w http.ResponseWriter, r *http.Request, status int, st navigation.State, tab string, customize func(*pageData)) {
	ctx := r.Context()
	cat := s.deps.Catalog
	tree := cat.Tree()
	out := navigation.Derive(st, s.navSite(), pageURL(r, tab))

	_, inMenu := nav.Find(tree, st.ActiveSection)
	known := inMenu || st.ActiveSection == navigation.SectionSearch

	p := pageData{
		Info:            s.info,
		Title:           out.Title,
		MetaDescription: out.MetaDescription,
		CanonicalURL:    out.URL,
		State:           st,
		View:            viewFor(st),
		Heading:         navigation.SectionHeading(st),
		Known:           known,
		Menu:            buildMenu(tree, st),
		Tree:            tree,
		Notice:          cat.Notice(),
		User:            auth.UserFromContext(ctx),
		Flash:           takeFlash(w, r),
		HomeHref:        sectionHref(navigation.Home()),
		StartHref:       sectionHref(navigation.State{ActiveSection: "model-question"}),
		RequestHref:     sectionHref(navigation.State{ActiveSection: navigation.SectionStudentRequest}),
	}
	p.Request.Topics = content.RequestTopics

	if customize != nil {
		customize(&p)
	}

	switch p.View {
	case viewHome:
		p.Recent = cat.Recent(3)
	case viewSection:
		p.Resources = navigation.Filter(st, cat.Resources())
	case viewAdmin:
		if p.User != nil {
			s.fillAdmin(r, &p, tab)
		}
	}
	if p.View != viewResource {
		s.deps.Metrics.PageView(st.ActiveSection, known)
	}

	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, "page", p); err != nil {
		slog.Error("rendering page", "view", p.View, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (s *Site) fillAdmin(r *http.Request, p *pageData, tab string) {
	a := &p.Admin
	a.Tab = tabContent
	for _, t := range adminTabs {
		if t.ID == tab {
			a.Tab = tab
		}
	}
	for _, t := range adminTabs {
		a.Tabs = append(a.Tabs, adminTab{ID: t.ID, Label: t.Label, Href: adminHref(t.ID), Active: t.ID == a.Tab})
	}

	switch a.Tab {
	case tabContent:
		a.Sections = nav.ContentSections(p.Tree)
		a.Resources = s.deps.Catalog.Resources()
	case tabRequests:
		list, err := s.deps.Catalog.Requests(r.Context())
		if err != nil {
			p.Error = "Student requests could not be loaded."
		}
		a.Requests = list
	case tabCategories:
		a.Categories = nav.Dynamic(p.Tree)
	case tabActivity:
		if s.deps.Audit != nil {
			entries, err := s.deps.Audit.List(r.Context(), "", 50)
			if err != nil {
				slog.Error("listing activity", "error", err)
				p.Error = "Activity could not be loaded."
			}
			a.Activity = entries
		}
	}
}
