package navigation

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Site holds the application strings interpolated into page metadata.
type Site struct {
	AppName string
	Tagline string
}

// Outputs is the page metadata derived from a state.
type Outputs struct {
	Title           string
	URL             string
	MetaDescription string
}

// FormatTitle turns a section id into a heading: words are split on hyphens
// and the first letter of each is capitalized.
func FormatTitle(section string) string {
	words := strings.Split(section, "-")
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if size == 0 {
			continue
		}
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// PageTitle is the document title for s.
func PageTitle(s State, site Site) string {
	if s.ActiveSection == SectionHome {
		return site.AppName
	}
	return FormatTitle(s.ActiveSection) + " | " + site.AppName
}

// CanonicalURL returns current with the page and q parameters rewritten
// for s. Other query parameters are kept.
func CanonicalURL(s State, current *url.URL) *url.URL {
	u := url.URL{Path: "/"}
	if current != nil {
		u = *current
	}
	q := u.Query()
	switch s.ActiveSection {
	case SectionHome:
		q.Del(PageParam)
		q.Del(QueryParam)
	case SectionSearch:
		q.Set(PageParam, SectionSearch)
		q.Set(QueryParam, s.SearchQuery)
	default:
		q.Set(PageParam, s.ActiveSection)
		q.Del(QueryParam)
	}
	u.RawQuery = q.Encode()
	return &u
}

// MetaDescription is the meta description for s.
func MetaDescription(s State, site Site) string {
	switch s.ActiveSection {
	case SectionHome:
		return fmt.Sprintf("Welcome to %s. %s. Your source for English Grammar, Literature, and Composition.", site.AppName, site.Tagline)
	case SectionSearch:
		return fmt.Sprintf("Search results for English resources regarding %s at %s.", s.SearchQuery, site.AppName)
	default:
		return fmt.Sprintf("Explore our %s section. Comprehensive English resources, model questions, and study materials for students.", FormatTitle(s.ActiveSection))
	}
}

// Derive computes every output for s.
func Derive(s State, site Site, current *url.URL) Outputs {
	return Outputs{
		Title:           PageTitle(s, site),
		URL:             CanonicalURL(s, current).String(),
		MetaDescription: MetaDescription(s, site),
	}
}

// SectionHeading is the heading shown above the resource list.
func SectionHeading(s State) string {
	if s.ActiveSection == SectionSearch {
		return fmt.Sprintf("Search Results for %q", s.SearchQuery)
	}
	return FormatTitle(s.ActiveSection)
}
