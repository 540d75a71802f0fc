// Package nav holds the navigation menu tree: the built-in skeleton and the
// merge that folds backend categories into it.
package nav

import (
	"errors"
	"fmt"
	"strings"

	"github.com/unlockenglish/tutorsite/internal/content"
)

// Item is a menu entry. A leaf has an ID and no children; a container has
// children and no ID.
type Item struct {
	Label    string `json:"label"`
	ID       string `json:"id,omitempty"`
	Children []Item `json:"children,omitempty"`
	// OriginID is the backend category that produced a dynamic leaf.
	OriginID int64 `json:"dbId,omitempty"`
}

// IsLeaf reports whether the item is directly navigable.
func (it Item) IsLeaf() bool {
	return len(it.Children) == 0
}

// Reserved section ids that are always part of the skeleton.
const (
	HomeID           = "home"
	AdminID          = "admin"
	StudentRequestID = "student-request"
)

// BuiltIn returns a fresh copy of the built-in menu skeleton. The Account
// container is always last.
func BuiltIn() []Item {
	return []Item{
		{Label: "Home", ID: HomeID},
		{Label: "Model Question", ID: "model-question"},
		{Label: "Literature", ID: "literature"},
		{Label: "Grammar", ID: "grammar"},
		{Label: "Paragraph", ID: "paragraph"},
		{Label: "Composition", ID: "composition"},
		{Label: "Dialogue", ID: "dialogue"},
		{Label: "Completing Story", ID: "completing-story"},
		{Label: "Report", ID: "report"},
		{Label: "Formal Letter", ID: "formal-letter"},
		{Label: "Informal Letter", ID: "informal-letter"},
		{Label: "Formal Email", ID: "formal-email"},
		{Label: "Informal Email", ID: "informal-email"},
		{Label: "Graph/Chart", ID: "graph-chart"},
		{Label: "Vocabulary", ID: "vocabulary"},
		{Label: "Account", Children: []Item{
			{Label: "Admin Dashboard", ID: AdminID},
			{Label: "Student Request", ID: StudentRequestID},
		}},
	}
}

// Validate checks the tree shape: every item is a leaf with an id or a
// container without one, leaf ids are unique, and exactly one container
// closes the top level.
func Validate(tree []Item) error {
	if len(tree) == 0 {
		return errors.New("empty navigation tree")
	}
	seen := make(map[string]bool)
	containers := 0
	var walk func(items []Item, depth int) error
	walk = func(items []Item, depth int) error {
		for _, it := range items {
			if it.IsLeaf() {
				if it.ID == "" {
					return fmt.Errorf("leaf %q has no id", it.Label)
				}
				if seen[it.ID] {
					return fmt.Errorf("duplicate section id %q", it.ID)
				}
				seen[it.ID] = true
				continue
			}
			if it.ID != "" {
				return fmt.Errorf("container %q must not have an id", it.Label)
			}
			if depth == 0 {
				containers++
			}
			if err := walk(it.Children, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(tree, 0); err != nil {
		return err
	}
	if containers != 1 || tree[len(tree)-1].IsLeaf() {
		return errors.New("navigation tree must end with exactly one container")
	}
	return nil
}

// Merge folds categories into skeleton. Dynamic leaves go after the built-in
// leaves and before the trailing container. A category whose slug equals any
// built-in leaf id, including those inside the container, is dropped.
// The result never shares memory with skeleton.
func Merge(skeleton []Item, categories []content.Category) []Item {
	if len(categories) == 0 || len(skeleton) == 0 {
		return clone(skeleton)
	}

	last := skeleton[len(skeleton)-1]
	builtIns := skeleton
	if !last.IsLeaf() {
		builtIns = skeleton[:len(skeleton)-1]
	}

	reserved := make(map[string]bool)
	for _, it := range Leaves(skeleton) {
		reserved[it.ID] = true
	}

	out := clone(builtIns)
	for _, c := range categories {
		if reserved[c.Slug] {
			continue
		}
		reserved[c.Slug] = true
		out = append(out, Item{Label: c.Label, ID: c.Slug, OriginID: c.ID})
	}
	if !last.IsLeaf() {
		out = append(out, cloneItem(last))
	}
	return out
}

// NormalizeCategories cleans category records before they reach the tree:
// labels are trimmed, a missing slug is derived from the label, records with
// no usable label or slug are dropped and only the first record per slug is
// kept.
func NormalizeCategories(categories []content.Category) []content.Category {
	out := make([]content.Category, 0, len(categories))
	seen := make(map[string]bool)
	for _, c := range categories {
		c.Label = strings.TrimSpace(c.Label)
		c.Slug = strings.TrimSpace(c.Slug)
		if c.Slug == "" {
			c.Slug = content.Slugify(c.Label)
		}
		if c.Label == "" || c.Slug == "" || seen[c.Slug] {
			continue
		}
		seen[c.Slug] = true
		out = append(out, c)
	}
	return out
}

// Leaves flattens the tree into its leaves in menu order.
func Leaves(tree []Item) []Item {
	var out []Item
	for _, it := range tree {
		if it.IsLeaf() {
			out = append(out, it)
			continue
		}
		out = append(out, Leaves(it.Children)...)
	}
	return out
}

// ContentSections lists the leaves content can be filed under, which is
// every leaf except home and the account views.
func ContentSections(tree []Item) []Item {
	var out []Item
	for _, it := range Leaves(tree) {
		switch it.ID {
		case HomeID, AdminID, StudentRequestID:
			continue
		}
		out = append(out, it)
	}
	return out
}

// Dynamic lists the leaves that came from backend categories.
func Dynamic(tree []Item) []Item {
	var out []Item
	for _, it := range Leaves(tree) {
		if it.OriginID != 0 {
			out = append(out, it)
		}
	}
	return out
}

// Find returns the leaf with the given id.
func Find(tree []Item, id string) (Item, bool) {
	for _, it := range Leaves(tree) {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

func clone(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = cloneItem(it)
	}
	return out
}

func cloneItem(it Item) Item {
	it.Children = clone(it.Children)
	return it
}
