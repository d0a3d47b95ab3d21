// Package catalog provides the fixed checklist question catalog used during
// surveillance rounds. A built-in F880 catalog ships with the engine; a
// custom catalog can be loaded from a YAML file at startup.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/f880guardian/audit-engine/pkg/models"
)

// Catalog is an immutable, ordered set of checklist questions grouped by
// category. Construct one via Default or Load; never mutate it afterwards.
type Catalog struct {
	questions  []models.Question
	byID       map[string]models.Question
	categories []string
}

// Default returns the built-in F880 infection-control surveillance catalog.
// The standard surveillance category list includes Resident Care Equipment,
// which ships without built-in questions; a custom catalog can populate it.
func Default() *Catalog {
	c, err := NewWithCategories([]models.Question{
		{ID: "hh-1", Category: "Hand Hygiene", Text: "Staff performs hand hygiene before patient contact."},
		{ID: "hh-2", Category: "Hand Hygiene", Text: "Staff performs hand hygiene after body fluid exposure risk."},
		{ID: "ppe-1", Category: "PPE Usage", Text: "Gowns are worn correctly when indicated."},
		{ID: "ppe-2", Category: "PPE Usage", Text: "Masks cover both nose and mouth."},
		{ID: "env-1", Category: "Environmental Cleaning", Text: "High-touch surfaces appear clean and sanitary."},
		{ID: "env-2", Category: "Environmental Cleaning", Text: "Disinfectant wipes are readily available and lids are closed."},
		{ID: "iso-1", Category: "Isolation Precautions", Text: "Signage indicating precautions is clearly posted on door."},
	}, []string{
		"Hand Hygiene",
		"PPE Usage",
		"Environmental Cleaning",
		"Isolation Precautions",
		"Resident Care Equipment",
	})
	if err != nil {
		// The built-in catalog is validated by tests; a failure here is a bug.
		panic(err)
	}
	return c
}

// New builds a catalog from the given questions, deriving the category list
// from the questions in first-appearance order.
func New(questions []models.Question) (*Catalog, error) {
	return NewWithCategories(questions, nil)
}

// NewWithCategories builds a catalog with an explicitly declared category
// list, which may include categories that have no questions yet. A nil list
// derives the categories from the questions. Every question must have an id,
// category and text; ids must be unique; a declared list must be free of
// duplicates and cover every question's category.
func NewWithCategories(questions []models.Question, categories []string) (*Catalog, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("catalog must contain at least one question")
	}

	declared := make(map[string]bool, len(categories))
	for _, cat := range categories {
		if cat == "" {
			return nil, fmt.Errorf("category names must be non-empty")
		}
		if declared[cat] {
			return nil, fmt.Errorf("duplicate category: %s", cat)
		}
		declared[cat] = true
	}

	byID := make(map[string]models.Question, len(questions))
	derived := make([]string, 0, len(categories))
	seen := make(map[string]bool)

	for i, q := range questions {
		if q.ID == "" || q.Category == "" || q.Text == "" {
			return nil, fmt.Errorf("question %d: id, category and text are required", i)
		}
		if _, dup := byID[q.ID]; dup {
			return nil, fmt.Errorf("duplicate question id: %s", q.ID)
		}
		if len(categories) > 0 && !declared[q.Category] {
			return nil, fmt.Errorf("question %s: undeclared category %s", q.ID, q.Category)
		}
		byID[q.ID] = q
		if !seen[q.Category] {
			seen[q.Category] = true
			derived = append(derived, q.Category)
		}
	}

	if len(categories) == 0 {
		categories = derived
	}

	return &Catalog{
		questions:  append([]models.Question(nil), questions...),
		byID:       byID,
		categories: append([]string(nil), categories...),
	}, nil
}

// Load reads a catalog from a YAML file of the form:
//
//	categories:   # optional; derived from questions when omitted
//	  - Hand Hygiene
//	questions:
//	  - id: hh-1
//	    category: Hand Hygiene
//	    text: ...
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var doc struct {
		Categories []string          `yaml:"categories"`
		Questions  []models.Question `yaml:"questions"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}

	return NewWithCategories(doc.Questions, doc.Categories)
}

// Question returns the question with the given id.
func (c *Catalog) Question(id string) (models.Question, bool) {
	q, ok := c.byID[id]
	return q, ok
}

// Contains reports whether the catalog defines the given question id.
func (c *Catalog) Contains(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Questions returns all questions in catalog order.
func (c *Catalog) Questions() []models.Question {
	return append([]models.Question(nil), c.questions...)
}

// Categories returns the category names in declared order.
func (c *Catalog) Categories() []string {
	return append([]string(nil), c.categories...)
}

// HasCategory reports whether the catalog declares the given category, with
// or without questions in it.
func (c *Catalog) HasCategory(category string) bool {
	for _, cat := range c.categories {
		if cat == category {
			return true
		}
	}
	return false
}

// ByCategory returns the questions belonging to the given category, in
// catalog order.
func (c *Catalog) ByCategory(category string) []models.Question {
	var out []models.Question
	for _, q := range c.questions {
		if q.Category == category {
			out = append(out, q)
		}
	}
	return out
}

// Size returns the total number of questions.
func (c *Catalog) Size() int {
	return len(c.questions)
}
