// Package exclusion routes a category of units out of the balanced set.
package exclusion

import (
	"strings"

	"pts/internal/domain"
)

// Predicate reports whether a unit belongs to the excluded category.
type Predicate func(u domain.TestUnit) bool

// CategoryMarker matches units whose report suite file or discovered source
// file contains marker, ignoring case. Units with neither path are matched
// on their ID. An empty marker disables the filter.
func CategoryMarker(marker string) Predicate {
	marker = strings.ToLower(strings.TrimSpace(marker))
	if marker == "" {
		return nil
	}
	contains := func(s string) bool {
		return strings.Contains(strings.ToLower(s), marker)
	}
	return func(u domain.TestUnit) bool {
		if u.SuiteFile == "" && u.SourceFile == "" {
			return contains(u.ID)
		}
		return contains(u.SuiteFile) || contains(u.SourceFile)
	}
}

// Partition splits units into those kept for balancing and those excluded.
//
// A nil predicate keeps everything. If the predicate panics the filter fails
// open: every unit is kept and nothing is excluded. Excluded units are tagged
// with category.
func Partition(units []domain.TestUnit, pred Predicate, category string) (kept, excluded []domain.TestUnit) {
	if pred == nil {
		return units, nil
	}

	matched, ok := evaluate(units, pred)
	if !ok {
		return units, nil
	}

	kept = make([]domain.TestUnit, 0, len(units))
	for i, u := range units {
		if matched[i] {
			u.Category = category
			excluded = append(excluded, u)
			continue
		}
		kept = append(kept, u)
	}
	return kept, excluded
}

func evaluate(units []domain.TestUnit, pred Predicate) (matched []bool, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			matched, ok = nil, false
		}
	}()

	matched = make([]bool, len(units))
	for i, u := range units {
		matched[i] = pred(u)
	}
	return matched, true
}
