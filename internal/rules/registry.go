// Package rules provides deterministic, pattern-based transaction
// classification and categorization.
package rules

import (
	"fmt"
	"regexp"
	"strings"
)

// compiledPattern pairs a raw pattern string with its compiled regex.
type compiledPattern struct {
	re  *regexp.Regexp
	raw string
}

// patternTable is an insertion-ordered mapping of label to pattern list.
// Matching walks labels in insertion order and patterns in registration
// order; the first hit wins.
type patternTable struct {
	patterns map[string][]compiledPattern
	order    []string
}

func newPatternTable() *patternTable {
	return &patternTable{patterns: make(map[string][]compiledPattern)}
}

func (t *patternTable) add(label, pattern string) error {
	// Patterns are case-insensitive regardless of how they were written.
	expr := pattern
	if !strings.HasPrefix(expr, "(?i)") {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return fmt.Errorf("failed to compile pattern %q for label %s: %w", pattern, label, err)
	}

	if _, ok := t.patterns[label]; !ok {
		t.order = append(t.order, label)
	}
	// Duplicate patterns are allowed; registration order is preserved.
	t.patterns[label] = append(t.patterns[label], compiledPattern{re: re, raw: pattern})
	return nil
}

// match returns the first label whose pattern list matches the text.
func (t *patternTable) match(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	for _, label := range t.order {
		for _, p := range t.patterns[label] {
			if p.re.MatchString(text) {
				return label, true
			}
		}
	}
	return "", false
}

func (t *patternTable) snapshot() []LabelPatterns {
	out := make([]LabelPatterns, 0, len(t.order))
	for _, label := range t.order {
		raw := make([]string, 0, len(t.patterns[label]))
		for _, p := range t.patterns[label] {
			raw = append(raw, p.raw)
		}
		out = append(out, LabelPatterns{Label: label, Patterns: raw})
	}
	return out
}

func (t *patternTable) hasLabel(label string) bool {
	_, ok := t.patterns[label]
	return ok
}

// LabelPatterns is one entry of a pattern table in table order.
type LabelPatterns struct {
	Label    string
	Patterns []string
}

// Registry holds the classification and category pattern tables. A registry
// is owned by the classifier instance that consumes it; tests construct
// isolated registries so pattern changes never leak across tests.
type Registry struct {
	classifications *patternTable
	categories      *patternTable
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		classifications: newPatternTable(),
		categories:      newPatternTable(),
	}
}

// AddClassificationPattern appends a pattern to a classification label,
// creating the label slot on first use.
func (r *Registry) AddClassificationPattern(label, pattern string) error {
	return r.classifications.add(label, pattern)
}

// AddCategoryPattern appends a pattern to a category label, creating the
// label slot on first use.
func (r *Registry) AddCategoryPattern(label, pattern string) error {
	return r.categories.add(label, pattern)
}

// ClassificationPatterns returns the classification table in table order.
func (r *Registry) ClassificationPatterns() []LabelPatterns {
	return r.classifications.snapshot()
}

// CategoryPatterns returns the category table in table order.
func (r *Registry) CategoryPatterns() []LabelPatterns {
	return r.categories.snapshot()
}

// matchClassification returns the first classification label matching the
// description.
func (r *Registry) matchClassification(description string) (string, bool) {
	return r.classifications.match(description)
}

// matchCategory returns the first category label matching the description.
func (r *Registry) matchCategory(description string) (string, bool) {
	return r.categories.match(description)
}
