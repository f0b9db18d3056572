// Package durations maps test units to the duration they are expected to run.
package durations

import (
	"pts/internal/domain"
)

// FallbackPolicy picks the duration of units that have no measurement.
// measured holds the durations of candidates found in history.
type FallbackPolicy func(measured []int64) int64

// MeanFallback uses the rounded mean of the measured durations, or 1 when
// nothing was measured. The result is never below 1.
func MeanFallback(measured []int64) int64 {
	if len(measured) == 0 {
		return 1
	}
	var sum int64
	for _, d := range measured {
		sum += d
	}
	n := int64(len(measured))
	mean := (sum + n/2) / n
	if mean < 1 {
		return 1
	}
	return mean
}

// FixedFallback always uses ms (clamped to 1).
func FixedFallback(ms int64) FallbackPolicy {
	if ms < 1 {
		ms = 1
	}
	return func([]int64) int64 { return ms }
}

// Index is the duration of every candidate unit for one run.
type Index struct {
	units    []domain.TestUnit
	byID     map[string]int
	fallback int64
	measured int
}

// Build resolves a duration for each candidate.
//
// A nil or unsuccessful history is treated as no history. When candidates is
// nil the classes found in history become the candidates, in first-seen order.
// Records sharing a class name are summed, and nested classes ("a.B$Inner")
// count towards their outer class.
func Build(history *domain.History, candidates []string, policy FallbackPolicy) *Index {
	if policy == nil {
		policy = MeanFallback
	}

	type entry struct {
		suite string
		ms    int64
	}
	seen := make(map[string]*entry)
	var order []string
	if history != nil && history.Success {
		for _, r := range history.Records {
			class := domain.OuterClass(r.ClassName)
			if class == "" {
				continue
			}
			e, ok := seen[class]
			if !ok {
				e = &entry{suite: r.SuiteFile}
				seen[class] = e
				order = append(order, class)
			}
			if r.DurationMs > 0 {
				e.ms += r.DurationMs
			}
		}
	}

	if candidates == nil {
		candidates = order
	}

	idx := &Index{
		units: make([]domain.TestUnit, 0, len(candidates)),
		byID:  make(map[string]int, len(candidates)),
	}
	var measured []int64
	for _, id := range candidates {
		if _, dup := idx.byID[id]; dup {
			continue
		}
		idx.byID[id] = len(idx.units)

		u := domain.TestUnit{ID: id}
		if e, ok := seen[id]; ok {
			u.SuiteFile = e.suite
			u.DurationMs = e.ms
			u.Measured = true
			measured = append(measured, e.ms)
		}
		idx.units = append(idx.units, u)
	}

	idx.measured = len(measured)
	idx.fallback = policy(measured)
	for i := range idx.units {
		if !idx.units[i].Measured {
			idx.units[i].DurationMs = idx.fallback
		}
	}
	return idx
}

// Units returns the units in candidate order.
func (idx *Index) Units() []domain.TestUnit {
	out := make([]domain.TestUnit, len(idx.units))
	copy(out, idx.units)
	return out
}

// Duration returns the duration of id and whether id is a candidate.
func (idx *Index) Duration(id string) (int64, bool) {
	i, ok := idx.byID[id]
	if !ok {
		return 0, false
	}
	return idx.units[i].DurationMs, true
}

// Total is the sum of all unit durations.
func (idx *Index) Total() int64 {
	var total int64
	for _, u := range idx.units {
		total += u.DurationMs
	}
	return total
}

// Fallback is the duration given to unmeasured units.
func (idx *Index) Fallback() int64 { return idx.fallback }

// MeasuredCount is the number of units found in history.
func (idx *Index) MeasuredCount() int { return idx.measured }
