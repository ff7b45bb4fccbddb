package model

import "fmt"

// Category is one of the fixed point kinds. The set is closed: operations
// reject anything outside the three known values.
type Category string

const (
	CategoryExploitation Category = "exploitation"
	CategoryClearing     Category = "clearing"
	CategoryBoundary     Category = "boundary"
)

// Categories returns all categories in their fixed iteration order. Exports
// and listings concatenate categories in this order.
func Categories() []Category {
	return []Category{CategoryExploitation, CategoryClearing, CategoryBoundary}
}

// ParseCategory validates a raw category string.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category: %q", s)
	}
	return c, nil
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryExploitation, CategoryClearing, CategoryBoundary:
		return true
	}
	return false
}

func (c Category) String() string { return string(c) }

// CategorySpec carries the display metadata for one category. Label and
// description text is resolved through the i18n layer by key; the spec only
// names the keys.
type CategorySpec struct {
	Icon     string
	Color    string // hex, used for marker symbolization
	LabelKey string
	DescKey  string
}

var categorySpecs = map[Category]CategorySpec{
	CategoryExploitation: {Icon: "axe", Color: "#d9534f", LabelKey: "category.exploitation.label", DescKey: "category.exploitation.desc"},
	CategoryClearing:     {Icon: "truck", Color: "#f0ad4e", LabelKey: "category.clearing.label", DescKey: "category.clearing.desc"},
	CategoryBoundary:     {Icon: "flag", Color: "#5bc0de", LabelKey: "category.boundary.label", DescKey: "category.boundary.desc"},
}

// Spec returns the display metadata for c. Unknown categories return the
// zero spec; callers are expected to have validated c first.
func (c Category) Spec() CategorySpec {
	return categorySpecs[c]
}
