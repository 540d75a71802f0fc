package site

import (
	"strconv"

	"github.com/unlockenglish/tutorsite/internal/nav"
	"github.com/unlockenglish/tutorsite/internal/navigation"
)

// menuNode is a menu entry ready for the template.
type menuNode struct {
	Label    string
	Href     string
	Active   bool
	Expanded bool
	Children []menuNode
}

// buildMenu turns the menu tree into view nodes. The leaf for the active
// section is marked and every container holding it is expanded.
func buildMenu(tree []nav.Item, state navigation.State) []menuNode {
	ancestors := computeActiveAncestors(tree, state.ActiveSection)
	return menuNodes(tree, state, ancestors)
}

func menuNodes(items []nav.Item, state navigation.State, ancestors map[string]bool) []menuNode {
	out := make([]menuNode, 0, len(items))
	for _, it := range items {
		if it.IsLeaf() {
			next := navigation.Reduce(state, navigation.Select{Section: it.ID})
			out = append(out, menuNode{
				Label:  it.Label,
				Href:   sectionHref(next),
				Active: it.ID == state.ActiveSection,
			})
			continue
		}
		out = append(out, menuNode{
			Label:    it.Label,
			Expanded: ancestors[it.Label],
			Children: menuNodes(it.Children, state, ancestors),
		})
	}
	return out
}

// computeActiveAncestors returns the labels of the containers that hold the
// leaf with the given id.
func computeActiveAncestors(tree []nav.Item, id string) map[string]bool {
	ancestors := make(map[string]bool)
	var walk func(items []nav.Item) bool
	walk = func(items []nav.Item) bool {
		for _, it := range items {
			if it.IsLeaf() {
				if it.ID == id {
					return true
				}
				continue
			}
			if walk(it.Children) {
				ancestors[it.Label] = true
				return true
			}
		}
		return false
	}
	walk(tree)
	return ancestors
}

// sectionHref is the canonical link to a state.
func sectionHref(s navigation.State) string {
	return navigation.CanonicalURL(s, nil).String()
}

func resourceHref(id int64) string {
	return "/resources/" + strconv.FormatInt(id, 10)
}

// sectionLabel returns the menu label of a section, falling back to the
// title derived from its id.
func sectionLabel(tree []nav.Item, id string) string {
	if it, ok := nav.Find(tree, id); ok {
		return it.Label
	}
	return navigation.FormatTitle(id)
}
