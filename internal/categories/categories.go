// Package categories holds the work category table offered to workers.
package categories

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/balkashynov/floortrack/internal/ledger"
)

// Category is one main category and its ordered subcategories
type Category struct {
	Name          string   `yaml:"name" json:"name"`
	SubCategories []string `yaml:"subcategories" json:"subCategories"`
}

// Table is the ordered category table
type Table struct {
	Categories []Category `yaml:"categories" json:"categories"`
}

// ValidationError reports which field failed category validation
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Load reads a YAML category table
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}

	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse categories %s: %w", path, err)
	}
	if len(table.Categories) == 0 {
		return nil, fmt.Errorf("categories file %s defines no categories", path)
	}
	slugs := make(map[string]string)
	for _, c := range table.Categories {
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("categories file %s has a category without a name", path)
		}
		// each category owns one ledger partition file
		slug := ledger.Slug(c.Name)
		if other, ok := slugs[slug]; ok {
			return nil, fmt.Errorf("categories file %s: %q and %q share the partition %q", path, other, c.Name, slug)
		}
		slugs[slug] = c.Name
	}
	return &table, nil
}

// Save writes the table as YAML
func (t *Table) Save(path string) error {
	data, err := yaml.Marshal(t)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Names returns the main category names in table order
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.Categories))
	for _, c := range t.Categories {
		names = append(names, c.Name)
	}
	return names
}

// Lookup returns the category with the given name
func (t *Table) Lookup(name string) (Category, bool) {
	for _, c := range t.Categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// Validate checks that both keys are non-empty and known
func (t *Table) Validate(mainCategory, subCategory string) error {
	if strings.TrimSpace(mainCategory) == "" {
		return &ValidationError{Field: "mainCategory", Reason: "required"}
	}
	if strings.TrimSpace(subCategory) == "" {
		return &ValidationError{Field: "subCategory", Reason: "required"}
	}
	cat, ok := t.Lookup(mainCategory)
	if !ok {
		return &ValidationError{Field: "mainCategory", Reason: fmt.Sprintf("unknown category %q", mainCategory)}
	}
	for _, sub := range cat.SubCategories {
		if sub == subCategory {
			return nil
		}
	}
	return &ValidationError{Field: "subCategory", Reason: fmt.Sprintf("%q is not listed under %q", subCategory, mainCategory)}
}
