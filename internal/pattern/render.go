package pattern

import (
	"fmt"
	"regexp"
	"strings"

	"pts/internal/domain"
)

// Renderer adapts a descriptor to one runner's filter syntax.
type Renderer interface {
	// Lines returns the lines written to the lane's filter file.
	Lines(d domain.FilterDescriptor) []string
	// Expression returns a single-value form suitable for a flag or env var.
	Expression(d domain.FilterDescriptor) string
}

// NewRenderer returns the renderer registered under name:
// "plain", "java" (source and class files) or "phpunit".
func NewRenderer(name string) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "plain":
		return Plain{}, nil
	case "java":
		return SourceFiles{Extensions: []string{".java", ".class"}}, nil
	case "phpunit", "php":
		return PHPUnitFilter{}, nil
	}
	return nil, fmt.Errorf("unknown filter syntax %q", name)
}

// Plain writes identifiers unchanged.
type Plain struct{}

// Lines implements Renderer.
func (Plain) Lines(d domain.FilterDescriptor) []string {
	return append([]string(nil), d.Identifiers...)
}

// Expression implements Renderer.
func (Plain) Expression(d domain.FilterDescriptor) string {
	return strings.Join(d.Identifiers, ",")
}

// SourceFiles turns dotted class names into path patterns, one per extension.
// Nested classes ("a.B$C") map to their top-level file.
type SourceFiles struct {
	Extensions []string
}

// Lines implements Renderer.
func (s SourceFiles) Lines(d domain.FilterDescriptor) []string {
	lines := make([]string, 0, len(d.Identifiers)*len(s.Extensions))
	for _, id := range d.Identifiers {
		base := ClassPath(id)
		for _, ext := range s.Extensions {
			lines = append(lines, base+ext)
		}
	}
	return lines
}

// Expression implements Renderer.
func (s SourceFiles) Expression(d domain.FilterDescriptor) string {
	return strings.Join(s.Lines(d), ",")
}

// ClassPath maps "org.acme.UserTest$Inner" to "org/acme/UserTest".
func ClassPath(className string) string {
	return strings.ReplaceAll(domain.OuterClass(className), ".", "/")
}

// PHPUnitFilter renders a --filter regular expression. Inclusions become an
// alternation of class names; exclusions a negative lookahead over them.
type PHPUnitFilter struct{}

// Lines implements Renderer.
func (p PHPUnitFilter) Lines(d domain.FilterDescriptor) []string {
	return []string{p.Expression(d)}
}

// Expression implements Renderer.
func (PHPUnitFilter) Expression(d domain.FilterDescriptor) string {
	if len(d.Identifiers) == 0 {
		if d.IsInclude {
			// Matches nothing.
			return "^(?!)"
		}
		return ".*"
	}
	quoted := make([]string, len(d.Identifiers))
	for i, id := range d.Identifiers {
		quoted[i] = regexp.QuoteMeta(id)
	}
	alt := "(" + strings.Join(quoted, "|") + ")"
	if d.IsInclude {
		return "^" + alt + "::"
	}
	return "^(?!" + alt + "::)"
}
