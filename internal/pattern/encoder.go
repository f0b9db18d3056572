// Package pattern encodes lane assignments as include/exclude filters.
package pattern

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"pts/internal/domain"
)

// Mode selects how lanes are encoded.
type Mode string

const (
	// ModeInclusions encodes lane 0 as the leftover lane, excluding every
	// unit claimed by lanes 1..n-1, which each include their own units.
	ModeInclusions Mode = "inclusions"
	// ModeExclusions encodes every lane as the exclusion of all other lanes,
	// for runners that only understand exclude lists.
	ModeExclusions Mode = "exclusions"
)

// ParseMode accepts "inclusions" or "exclusions" (singular forms too).
// An empty string means ModeInclusions.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "inclusions", "include", "inclusion":
		return ModeInclusions, nil
	case "exclusions", "exclude", "exclusion":
		return ModeExclusions, nil
	}
	return "", fmt.Errorf("unknown filter mode %q", s)
}

// Encode turns lanes into one FilterDescriptor per lane, index aligned.
// It panics if the result breaks the encoding invariant, which can only
// happen when a unit was assigned to more than one lane.
func Encode(lanes []domain.Lane, mode Mode) []domain.FilterDescriptor {
	var out []domain.FilterDescriptor
	switch mode {
	case ModeExclusions:
		out = encodeExclusions(lanes)
	default:
		out = encodeInclusions(lanes)
	}
	if err := Verify(out, mode); err != nil {
		panic(fmt.Sprintf("pattern: %v", err))
	}
	return out
}

func encodeInclusions(lanes []domain.Lane) []domain.FilterDescriptor {
	out := make([]domain.FilterDescriptor, len(lanes))
	if len(lanes) == 0 {
		return out
	}

	leftover := domain.FilterDescriptor{IsInclude: false, Identifiers: []string{}}
	seen := make(map[string]bool)
	for i := 1; i < len(lanes); i++ {
		ids := lanes[i].IDs()
		out[i] = domain.FilterDescriptor{IsInclude: true, Identifiers: ids}
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				leftover.Identifiers = append(leftover.Identifiers, id)
			}
		}
	}
	out[0] = leftover
	return out
}

func encodeExclusions(lanes []domain.Lane) []domain.FilterDescriptor {
	out := make([]domain.FilterDescriptor, len(lanes))
	for i := range lanes {
		ids := []string{}
		for j, other := range lanes {
			if j != i {
				ids = append(ids, other.IDs()...)
			}
		}
		out[i] = domain.FilterDescriptor{IsInclude: false, Identifiers: ids}
	}
	return out
}

// ExcludeAlso returns a copy of descriptors where every exclude descriptor
// also lists ids. Runners treat an exclude list as "everything else", so
// units routed out of all lanes must be named there. Include descriptors are
// copied unchanged.
func ExcludeAlso(descriptors []domain.FilterDescriptor, ids []string) []domain.FilterDescriptor {
	out := make([]domain.FilterDescriptor, len(descriptors))
	for i, d := range descriptors {
		merged := append([]string{}, d.Identifiers...)
		if !d.IsInclude {
			listed := make(map[string]bool, len(merged))
			for _, id := range merged {
				listed[id] = true
			}
			for _, id := range ids {
				if !listed[id] {
					listed[id] = true
					merged = append(merged, id)
				}
			}
		}
		out[i] = domain.FilterDescriptor{IsInclude: d.IsInclude, Identifiers: merged}
	}
	return out
}

// ErrInvariant is wrapped by every Verify failure.
var ErrInvariant = errors.New("filter invariant violated")

// Verify checks descriptors produced in the given mode.
//
// ModeInclusions: exactly one exclude descriptor at index 0, whose identifiers
// equal the union of the include descriptors as a set, with no identifier in
// two include descriptors.
// ModeExclusions: every identifier is excluded by all lanes but one.
func Verify(descriptors []domain.FilterDescriptor, mode Mode) error {
	if len(descriptors) == 0 {
		return nil
	}
	if mode == ModeExclusions {
		return verifyExclusions(descriptors)
	}

	if descriptors[0].IsInclude {
		return fmt.Errorf("%w: lane 0 must be an exclusion", ErrInvariant)
	}
	included := make(map[string]int)
	for i := 1; i < len(descriptors); i++ {
		d := descriptors[i]
		if !d.IsInclude {
			return fmt.Errorf("%w: lane %d must be an inclusion", ErrInvariant, i)
		}
		for _, id := range d.Identifiers {
			if prev, dup := included[id]; dup {
				return fmt.Errorf("%w: %q included by lanes %d and %d", ErrInvariant, id, prev, i)
			}
			included[id] = i
		}
	}

	excluded := make(map[string]bool, len(descriptors[0].Identifiers))
	for _, id := range descriptors[0].Identifiers {
		excluded[id] = true
	}
	if len(excluded) != len(included) {
		return fmt.Errorf("%w: lane 0 excludes %d units, other lanes include %d", ErrInvariant, len(excluded), len(included))
	}
	for id := range included {
		if !excluded[id] {
			return fmt.Errorf("%w: %q included but not excluded from lane 0", ErrInvariant, id)
		}
	}
	return nil
}

func verifyExclusions(descriptors []domain.FilterDescriptor) error {
	counts := make(map[string]int)
	for i, d := range descriptors {
		if d.IsInclude {
			return fmt.Errorf("%w: lane %d must be an exclusion", ErrInvariant, i)
		}
		for _, id := range d.Identifiers {
			counts[id]++
		}
	}
	want := len(descriptors) - 1
	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if counts[id] != want {
			return fmt.Errorf("%w: %q excluded by %d lanes, want %d", ErrInvariant, id, counts[id], want)
		}
	}
	return nil
}
