// Package split computes lane filters for a run.
package split

import (
	"context"
	"errors"

	"pts/internal/balance"
	"pts/internal/domain"
	"pts/internal/durations"
	"pts/internal/exclusion"
	"pts/internal/history"
	"pts/internal/logging"
	"pts/internal/parallelism"
	"pts/internal/pattern"
)

// Request is the input of one split.
type Request struct {
	// Candidates are the unit IDs of this run. Nil means "every class in history".
	Candidates  []string
	Parallelism domain.ParallelismSpec
	// ExcludeCategory routes units whose suite path contains it out of all lanes.
	ExcludeCategory string
	// SourceFiles maps candidate IDs to the file they were discovered in.
	// ExcludeCategory matches it as well as the suite file from history.
	SourceFiles map[string]string
	Mode        pattern.Mode
	Fallback    durations.FallbackPolicy
}

// Result is the outcome of a split.
type Result struct {
	Descriptors []domain.FilterDescriptor
	Lanes       []domain.Lane
	Excluded    []domain.TestUnit
	Stats       balance.Stats
	Fallback    int64
	HistoryUsed bool
	Source      string
}

// LaneFilters returns the descriptors lanes run with: Descriptors with the
// excluded units added to every exclude list, so no lane picks them up.
func (r *Result) LaneFilters() []domain.FilterDescriptor {
	ids := make([]string, len(r.Excluded))
	for i, u := range r.Excluded {
		ids[i] = u.ID
	}
	return pattern.ExcludeAlso(r.Descriptors, ids)
}

// Splitter reads history and plans lanes.
type Splitter struct {
	history history.Provider
	logger  logging.Logger
}

// New creates a Splitter. A nil provider means no history.
func New(provider history.Provider, logger logging.Logger) *Splitter {
	if provider == nil {
		provider = history.None{}
	}
	return &Splitter{history: provider, logger: logging.OrNop(logger)}
}

// Split reads the previous run and plans the lanes. Missing or unreadable
// history is never an error: durations fall back and the split proceeds.
// Only context cancellation is returned.
func (s *Splitter) Split(ctx context.Context, req Request) (*Result, error) {
	h, err := s.history.Previous(ctx)
	switch {
	case err == nil:
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case errors.Is(err, history.ErrNoHistory):
		s.logger.Info("no previous run, using fallback durations")
		h = nil
	default:
		s.logger.Warn("history unavailable, using fallback durations", "error", err)
		h = nil
	}
	if h != nil && !h.Success {
		s.logger.Info("previous run did not succeed, ignoring its durations", "source", h.Source)
	}

	res := Plan(h, req)
	if h != nil {
		res.Source = h.Source
	}
	s.logger.Debug("split planned",
		"units", res.Stats.Units,
		"lanes", res.Stats.Lanes,
		"excluded", len(res.Excluded),
		"total_ms", res.Stats.TotalMs,
		"min_ms", res.Stats.MinMs,
		"max_ms", res.Stats.MaxMs,
		"stddev_ms", res.Stats.StdDevMs,
	)
	return res, nil
}

// Plan is the pure part of Split: no I/O, deterministic for equal input.
func Plan(h *domain.History, req Request) *Result {
	idx := durations.Build(h, req.Candidates, req.Fallback)

	units := idx.Units()
	for i := range units {
		units[i].SourceFile = req.SourceFiles[units[i].ID]
	}

	kept, excluded := exclusion.Partition(units, exclusion.CategoryMarker(req.ExcludeCategory), req.ExcludeCategory)

	var total int64
	for _, u := range kept {
		total += u.DurationMs
	}
	n := parallelism.Resolve(req.Parallelism, total)

	lanes := balance.Assign(kept, n)
	mode := req.Mode
	if mode == "" {
		mode = pattern.ModeInclusions
	}

	return &Result{
		Descriptors: pattern.Encode(lanes, mode),
		Lanes:       lanes,
		Excluded:    excluded,
		Stats:       balance.Summarize(lanes),
		Fallback:    idx.Fallback(),
		HistoryUsed: idx.MeasuredCount() > 0,
	}
}
