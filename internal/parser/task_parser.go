// Package parser turns short command-line task descriptions into category
// keys and time bounds.
package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/balkashynov/floortrack/internal/categories"
)

// ParsedTask represents a task parsed from a shorthand description
type ParsedTask struct {
	Username     string
	MainCategory string
	SubCategory  string
	Errors       []string
}

var (
	workerRegex    = regexp.MustCompile(`@([A-Za-z0-9_.-]+)`)
	separatorRegex = regexp.MustCompile(`\s*[/:>]\s*`)
)

// ParseTask extracts a worker and a category pair from input.
// Syntax: "apex/glue @alice". Names match case-insensitively, first exactly
// and then by unique prefix.
func ParseTask(input string, table *categories.Table) ParsedTask {
	var result ParsedTask

	if m := workerRegex.FindStringSubmatch(input); len(m) > 1 {
		result.Username = m[1]
		input = workerRegex.ReplaceAllString(input, "")
	}

	input = strings.Join(strings.Fields(input), " ")
	if input == "" {
		result.Errors = append(result.Errors, "missing category, use \"Main/Sub\"")
		return result
	}

	parts := separatorRegex.Split(input, 2)
	main, err := resolve(parts[0], table.Names())
	if err != nil {
		result.Errors = append(result.Errors, "category: "+err.Error())
		return result
	}
	result.MainCategory = main

	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		result.Errors = append(result.Errors, fmt.Sprintf("missing step for %q", main))
		return result
	}

	cat, _ := table.Lookup(main)
	sub, err := resolve(parts[1], cat.SubCategories)
	if err != nil {
		result.Errors = append(result.Errors, "step: "+err.Error())
		return result
	}
	result.SubCategory = sub
	return result
}

// resolve finds the one name matching query
func resolve(query string, names []string) (string, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	var matches []string
	for _, name := range names {
		lower := strings.ToLower(name)
		if lower == query {
			return name, nil
		}
		if strings.HasPrefix(lower, query) {
			matches = append(matches, name)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("nothing matches %q", query)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%q is ambiguous: %s", query, strings.Join(matches, ", "))
	}
}
