package balance

import (
	"math"

	"pts/internal/domain"
)

// Stats summarizes how evenly lanes are loaded.
type Stats struct {
	Units    int
	Lanes    int
	TotalMs  int64
	MinMs    int64
	MaxMs    int64
	MeanMs   int64
	StdDevMs int64
}

// Summarize computes Stats over lane totals.
func Summarize(lanes []domain.Lane) Stats {
	s := Stats{Lanes: len(lanes)}
	if len(lanes) == 0 {
		return s
	}

	s.MinMs = math.MaxInt64
	s.MaxMs = math.MinInt64
	for _, l := range lanes {
		s.Units += len(l.Units)
		s.TotalMs += l.TotalMs
		s.MinMs = min(s.MinMs, l.TotalMs)
		s.MaxMs = max(s.MaxMs, l.TotalMs)
	}
	s.MeanMs = s.TotalMs / int64(len(lanes))

	var variance float64
	for _, l := range lanes {
		d := float64(l.TotalMs - s.MeanMs)
		variance += d * d
	}
	variance /= float64(len(lanes))
	s.StdDevMs = int64(math.Sqrt(variance))
	return s
}
