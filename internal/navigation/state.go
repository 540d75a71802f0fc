// Package navigation is the routing state machine: the active section and
// search query carried in the URL, the events that move between them and the
// page metadata derived from the current state.
package navigation

import (
	"net/url"
	"strings"
)

// Reserved section ids.
const (
	SectionHome           = "home"
	SectionSearch         = "search"
	SectionAdmin          = "admin"
	SectionStudentRequest = "student-request"
)

// URL query parameters that carry the state.
const (
	PageParam  = "page"
	QueryParam = "q"
)

// State is the navigation state of one page view.
type State struct {
	ActiveSection string `json:"activeSection"`
	// SearchQuery is only meaningful when ActiveSection is SectionSearch.
	SearchQuery string `json:"searchQuery,omitempty"`
}

// Home is the landing state.
func Home() State {
	return State{ActiveSection: SectionHome}
}

// FromURL derives the state from the page and q query parameters. A missing
// or empty page parameter means home.
func FromURL(u *url.URL) State {
	if u == nil {
		return Home()
	}
	q := u.Query()
	page := q.Get(PageParam)
	if page == "" {
		return Home()
	}
	s := State{ActiveSection: page}
	if page == SectionSearch {
		s.SearchQuery = strings.TrimSpace(q.Get(QueryParam))
	}
	return s
}

// Event is a navigation action.
type Event interface {
	isEvent()
}

// Select is a click on a leaf menu item.
type Select struct {
	Section string
}

// Search is a submitted search box.
type Search struct {
	Query string
}

// HistoryNavigate is a back/forward move to URL.
type HistoryNavigate struct {
	URL *url.URL
}

func (Select) isEvent()          {}
func (Search) isEvent()          {}
func (HistoryNavigate) isEvent() {}

// Reduce returns the state that follows s after ev. It has no side effects.
func Reduce(s State, ev Event) State {
	switch e := ev.(type) {
	case Select:
		if e.Section == "" {
			return s
		}
		next := State{ActiveSection: e.Section}
		if e.Section == SectionSearch {
			next.SearchQuery = s.SearchQuery
		}
		return next
	case Search:
		q := strings.TrimSpace(e.Query)
		if q == "" {
			return s
		}
		return State{ActiveSection: SectionSearch, SearchQuery: q}
	case HistoryNavigate:
		return FromURL(e.URL)
	default:
		return s
	}
}
