// Package balance distributes test units across lanes with the
// longest-processing-time-first heuristic.
//
// The result is deterministic: units are taken by duration descending, ties
// broken by ID ascending, and each goes to the lightest lane, ties broken by
// lowest index. The maximum lane total is within (4/3 - 1/(3n)) of optimal.
package balance

import (
	"container/heap"
	"fmt"
	"sort"

	"pts/internal/domain"
)

// Assign distributes units over n lanes (n is clamped to 1) and returns the
// lanes in index order. Lanes may be empty when there are fewer units than
// lanes. Duplicate unit IDs are a programming error and panic.
func Assign(units []domain.TestUnit, n int) []domain.Lane {
	if n < 1 {
		n = 1
	}

	lanes := make([]domain.Lane, n)
	for i := range lanes {
		lanes[i] = domain.Lane{Index: i, Units: []domain.TestUnit{}}
	}

	sorted := make([]domain.TestUnit, len(units))
	copy(sorted, units)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].DurationMs != sorted[j].DurationMs {
			return sorted[i].DurationMs > sorted[j].DurationMs
		}
		return sorted[i].ID < sorted[j].ID
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i].ID == sorted[i-1].ID {
			panic(fmt.Sprintf("balance: duplicate unit %q", sorted[i].ID))
		}
	}

	q := make(laneQueue, n)
	for i := range lanes {
		q[i] = &lanes[i]
	}
	heap.Init(&q)

	for _, u := range sorted {
		lightest := q[0]
		lightest.Units = append(lightest.Units, u)
		lightest.TotalMs += u.DurationMs
		heap.Fix(&q, 0)
	}

	return lanes
}

// laneQueue is a min-heap of lanes keyed by (TotalMs, Index).
type laneQueue []*domain.Lane

func (q laneQueue) Len() int { return len(q) }

func (q laneQueue) Less(i, j int) bool {
	if q[i].TotalMs != q[j].TotalMs {
		return q[i].TotalMs < q[j].TotalMs
	}
	return q[i].Index < q[j].Index
}

func (q laneQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *laneQueue) Push(x any) { *q = append(*q, x.(*domain.Lane)) }

func (q *laneQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
