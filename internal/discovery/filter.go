package discovery

import (
	"path/filepath"
	"strings"
)

// Filter filters test files by name pattern
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByName keeps files whose base name matches any of the comma-separated
// patterns. Patterns support * and ? wildcards ("*UserTest.java", "*Payment*");
// a pattern without wildcards matches as a substring.
func (f *Filter) FilterByName(tests []string, pattern string) []string {
	patterns := splitPatterns(pattern)
	if len(patterns) == 0 {
		return tests
	}

	var filtered []string
	for _, test := range tests {
		name := filepath.Base(test)
		for _, p := range patterns {
			if matchName(p, name) {
				filtered = append(filtered, test)
				break
			}
		}
	}
	return filtered
}

func splitPatterns(pattern string) []string {
	var out []string
	for _, p := range strings.Split(pattern, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func matchName(pattern, name string) bool {
	if !strings.ContainsAny(pattern, "*?") {
		return strings.Contains(name, pattern)
	}
	if matched, err := filepath.Match(pattern, name); err == nil && matched {
		return true
	}

	// Looser match for "*Payment*" style patterns: every literal part must
	// appear in order.
	rest := name
	found := false
	for _, part := range strings.Split(pattern, "*") {
		if part == "" || strings.Contains(part, "?") {
			continue
		}
		i := strings.Index(rest, part)
		if i < 0 {
			return false
		}
		rest = rest[i+len(part):]
		found = true
	}
	return found
}
