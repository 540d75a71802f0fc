package content

import (
	"regexp"
	"strings"
)

var nonSlugChars = regexp.MustCompile(`[^\w-]+`)

// Slugify derives the URL-safe identifier of a category label: lowercase,
// every space becomes a hyphen, anything that is not a word character or a
// hyphen is removed.
func Slugify(label string) string {
	s := strings.ToLower(label)
	s = strings.ReplaceAll(s, " ", "-")
	return nonSlugChars.ReplaceAllString(s, "")
}
