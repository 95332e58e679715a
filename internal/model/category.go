package model

import (
	"strings"

	"golang.org/x/text/cases"
)

// Category is one of the three scoring groups. The value is the name used in
// reports.
type Category string

const (
	CategoryWoman Category = "Dame"
	CategoryMan   Category = "Mann"
	CategoryPlus  Category = "Pluss"
)

// Categories lists every category in report order.
var Categories = []Category{CategoryWoman, CategoryMan, CategoryPlus}

// Rank returns the position of c in report order, or len(Categories) for an
// unknown value.
func (c Category) Rank() int {
	for i, known := range Categories {
		if c == known {
			return i
		}
	}
	return len(Categories)
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return c.Rank() < len(Categories)
}

// categoryWords maps the leading word of a source class label to a category.
var categoryWords = map[string]Category{
	"kvinner": CategoryWoman,
	"kvinne":  CategoryWoman,
	"damer":   CategoryWoman,
	"dame":    CategoryWoman,
	"menn":    CategoryMan,
	"mann":    CategoryMan,
	"herrer":  CategoryMan,
	"herre":   CategoryMan,
}

// plusPrefix marks the weight classes ("Pluss 90kg", "Pluss90kg").
const plusPrefix = "pluss"

// CategoryFromLabel maps a class label such as "Kvinner 18-34 år" or
// "Pluss 90kg" to its category. ok is false for anything outside the known
// labels, including an empty label.
func CategoryFromLabel(label string) (Category, bool) {
	folded := strings.TrimSpace(cases.Fold().String(label))
	if folded == "" {
		return "", false
	}
	if strings.HasPrefix(folded, plusPrefix) {
		return CategoryPlus, true
	}

	words := strings.FieldsFunc(folded, func(r rune) bool {
		return r == ' ' || r == '-' || r == ',' || r == '/' || r == '\t'
	})
	if len(words) == 0 {
		return "", false
	}
	c, ok := categoryWords[words[0]]
	return c, ok
}
