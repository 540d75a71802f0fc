package navigation

import (
	"strings"

	"github.com/unlockenglish/tutorsite/internal/content"
)

// Filtered reports whether the generic resource list applies to s. Home and
// the account views render their own content.
func Filtered(s State) bool {
	switch s.ActiveSection {
	case SectionHome, SectionAdmin, SectionStudentRequest:
		return false
	}
	return true
}

// Filter returns the resources visible in s. Search matches the trimmed
// query case-insensitively against title, category or description; any other
// filtered section matches the category exactly. An unknown section yields
// an empty list.
func Filter(s State, resources []content.Resource) []content.Resource {
	if !Filtered(s) {
		return resources
	}
	out := []content.Resource{}
	if s.ActiveSection == SectionSearch {
		q := strings.ToLower(strings.TrimSpace(s.SearchQuery))
		for _, r := range resources {
			if strings.Contains(strings.ToLower(r.Title), q) ||
				strings.Contains(strings.ToLower(r.Category), q) ||
				strings.Contains(strings.ToLower(r.Description), q) {
				out = append(out, r)
			}
		}
		return out
	}
	for _, r := range resources {
		if r.Category == s.ActiveSection {
			out = append(out, r)
		}
	}
	return out
}
