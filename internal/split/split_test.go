package split

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"pts/internal/domain"
	"pts/internal/durations"
	"pts/internal/history"
	"pts/internal/pattern"
)

func fixture(n int, bddEvery int) (*domain.History, []string) {
	rng := rand.New(rand.NewSource(int64(n)))
	h := &domain.History{Success: true, Source: "fixture"}
	var ids []string
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("org.acme.Unit%03dTest", i)
		suite := "target/surefire-reports/TEST-" + id + ".xml"
		if bddEvery > 0 && i%bddEvery == 0 {
			suite = "target/BDD-reports/TEST-" + id + ".xml"
		}
		h.Records = append(h.Records, domain.HistoryRecord{SuiteFile: suite, ClassName: id, DurationMs: int64(1 + rng.Intn(5000))})
		ids = append(ids, id)
	}
	return h, ids
}

func includedIDs(descriptors []domain.FilterDescriptor) []string {
	var out []string
	for _, d := range descriptors {
		if d.IsInclude {
			out = append(out, d.Identifiers...)
		}
	}
	return out
}

func TestPlan_Properties(t *testing.T) {
	h, ids := fixture(60, 7)

	for _, n := range []int{1, 2, 5, 9, 60, 75} {
		t.Run(fmt.Sprintf("lanes=%d", n), func(t *testing.T) {
			res := Plan(h, Request{Candidates: ids, Parallelism: domain.CountDriven{Count: n}, ExcludeCategory: "bdd"})

			require.Len(t, res.Descriptors, n)

			excluded := make(map[string]bool)
			for _, u := range res.Excluded {
				excluded[u.ID] = true
			}

			// Every kept unit lands in exactly one lane; excluded units in none.
			seen := make(map[string]int)
			for _, l := range res.Lanes {
				for _, u := range l.Units {
					seen[u.ID]++
				}
			}
			for _, id := range ids {
				if excluded[id] {
					require.Zero(t, seen[id], id)
				} else {
					require.Equal(t, 1, seen[id], id)
				}
			}

			// Leftover lane excludes exactly what the include lanes claim.
			inc := includedIDs(res.Descriptors)
			exc := append([]string(nil), res.Descriptors[0].Identifiers...)
			sort.Strings(inc)
			sort.Strings(exc)
			require.Equal(t, inc, exc)

			// No excluded-category unit appears in any descriptor.
			for _, d := range res.Descriptors {
				for _, id := range d.Identifiers {
					require.False(t, excluded[id], id)
				}
			}
		})
	}
}

func TestPlan_ExcludedCategory(t *testing.T) {
	h, ids := fixture(30, 3)

	res := Plan(h, Request{Candidates: ids, Parallelism: domain.CountDriven{Count: 4}, ExcludeCategory: "BDD"})

	require.Len(t, res.Excluded, 10)
	for _, u := range res.Excluded {
		require.Contains(t, strings.ToLower(u.SuiteFile), "bdd")
		require.Equal(t, "BDD", u.Category)
	}
	require.Equal(t, 20, res.Stats.Units)
}

func TestPlan_ExcludedByDiscoveredFile(t *testing.T) {
	req := Request{
		Candidates:      []string{"a.LoginTest", "a.OrderTest"},
		Parallelism:     domain.CountDriven{Count: 2},
		ExcludeCategory: "bdd",
		SourceFiles:     map[string]string{"a.LoginTest": "src/test/bdd/LoginTest.java"},
	}

	res := Plan(nil, req)

	require.Len(t, res.Excluded, 1)
	require.Equal(t, "a.LoginTest", res.Excluded[0].ID)
	require.Equal(t, "src/test/bdd/LoginTest.java", res.Excluded[0].SourceFile)
	require.Equal(t, 1, res.Stats.Units)
}

func TestPlan_ExcludedByReportSuite(t *testing.T) {
	h := &domain.History{Success: true, Records: []domain.HistoryRecord{
		{SuiteFile: "target/bdd-reports/TEST-a.LoginSpec.xml", ClassName: "a.LoginSpec", DurationMs: 40},
		{SuiteFile: "target/surefire-reports/TEST-a.OrderTest.xml", ClassName: "a.OrderTest", DurationMs: 30},
	}}
	req := Request{
		Candidates:      []string{"a.LoginSpec", "a.OrderTest"},
		Parallelism:     domain.CountDriven{Count: 2},
		ExcludeCategory: "bdd",
		SourceFiles: map[string]string{
			"a.LoginSpec": "a/LoginSpec.java",
			"a.OrderTest": "a/OrderTest.java",
		},
	}

	res := Plan(h, req)

	require.Len(t, res.Excluded, 1)
	require.Equal(t, "a.LoginSpec", res.Excluded[0].ID)
	require.Equal(t, "a/LoginSpec.java", res.Excluded[0].SourceFile)
	require.Equal(t, "target/bdd-reports/TEST-a.LoginSpec.xml", res.Excluded[0].SuiteFile)
	require.Equal(t, 1, res.Stats.Units)
}

func TestResult_LaneFilters(t *testing.T) {
	ids := []string{"a.BddLoginTest", "a.OrderTest", "a.PaymentTest", "a.UserTest"}
	files := map[string]string{"a.BddLoginTest": "bdd/BddLoginTest.java"}

	for _, mode := range []pattern.Mode{pattern.ModeInclusions, pattern.ModeExclusions} {
		t.Run(string(mode), func(t *testing.T) {
			res := Plan(nil, Request{
				Candidates:      ids,
				Parallelism:     domain.CountDriven{Count: 3},
				ExcludeCategory: "bdd",
				SourceFiles:     files,
				Mode:            mode,
			})
			require.Len(t, res.Excluded, 1)

			filters := res.LaneFilters()
			require.Len(t, filters, 3)
			for i, d := range filters {
				if d.IsInclude {
					require.NotContains(t, d.Identifiers, "a.BddLoginTest", "lane %d", i)
					require.Equal(t, res.Descriptors[i], d)
					continue
				}
				require.Contains(t, d.Identifiers, "a.BddLoginTest", "lane %d", i)
				require.Len(t, d.Identifiers, len(res.Descriptors[i].Identifiers)+1)
			}

			// The plan itself never names excluded units.
			for _, d := range res.Descriptors {
				require.NotContains(t, d.Identifiers, "a.BddLoginTest")
			}
		})
	}
}

func TestPlan_Deterministic(t *testing.T) {
	h, ids := fixture(40, 0)
	req := Request{Candidates: ids, Parallelism: domain.CountDriven{Count: 6}}

	first := Plan(h, req)
	second := Plan(h, req)

	require.Equal(t, first.Descriptors, second.Descriptors)
}

func TestPlan_NoHistory(t *testing.T) {
	ids := make([]string, 12)
	for i := range ids {
		ids[i] = fmt.Sprintf("u%02d", i)
	}

	res := Plan(nil, Request{Candidates: ids, Parallelism: domain.CountDriven{Count: 5}})

	sizes := make([]int, len(res.Lanes))
	for i, l := range res.Lanes {
		sizes[i] = len(l.Units)
	}
	require.Equal(t, []int{3, 3, 2, 2, 2}, sizes)
	require.False(t, res.HistoryUsed)
	require.Equal(t, int64(1), res.Fallback)
}

func TestPlan_EmptyCandidates(t *testing.T) {
	res := Plan(nil, Request{Candidates: []string{}, Parallelism: domain.CountDriven{Count: 3}})

	require.Len(t, res.Descriptors, 3)
	for _, d := range res.Descriptors {
		require.Empty(t, d.Identifiers)
	}
	require.False(t, res.Descriptors[0].IsInclude)
}

func TestPlan_WeightDriven(t *testing.T) {
	h := &domain.History{Success: true, Records: []domain.HistoryRecord{
		{ClassName: "a", DurationMs: 60},
		{ClassName: "b", DurationMs: 50},
		{ClassName: "c", DurationMs: 40},
	}}

	res := Plan(h, Request{Parallelism: domain.WeightDriven{TargetMs: 60}})

	require.Len(t, res.Lanes, 3)
	require.True(t, res.HistoryUsed)
}

func TestPlan_ExclusionMode(t *testing.T) {
	h, ids := fixture(10, 0)

	res := Plan(h, Request{Candidates: ids, Parallelism: domain.CountDriven{Count: 3}, Mode: pattern.ModeExclusions})

	for i, d := range res.Descriptors {
		require.False(t, d.IsInclude)
		own := res.Lanes[i].IDs()
		require.Len(t, d.Identifiers, len(ids)-len(own))
		for _, id := range own {
			require.NotContains(t, d.Identifiers, id)
		}
	}
}

type failingProvider struct{ err error }

func (f failingProvider) Previous(context.Context) (*domain.History, error) { return nil, f.err }

func TestSplitter_Split(t *testing.T) {
	ctx := context.Background()
	req := Request{Candidates: []string{"a", "b", "c"}, Parallelism: domain.CountDriven{Count: 2}}

	t.Run("uses provider history", func(t *testing.T) {
		h := &domain.History{Success: true, Source: "static", Records: []domain.HistoryRecord{{ClassName: "a", DurationMs: 100}}}

		fixed := req
		fixed.Fallback = durations.FixedFallback(1)

		res, err := New(history.Static{History: h}, nil).Split(ctx, fixed)

		require.NoError(t, err)
		require.True(t, res.HistoryUsed)
		require.Equal(t, "static", res.Source)
		require.Equal(t, []string{"a"}, res.Lanes[0].IDs())
		require.Equal(t, []string{"b", "c"}, res.Lanes[1].IDs())
	})

	t.Run("broken history degrades to fallback", func(t *testing.T) {
		res, err := New(failingProvider{err: errors.New("disk on fire")}, nil).Split(ctx, req)

		require.NoError(t, err)
		require.False(t, res.HistoryUsed)
		require.Len(t, res.Descriptors, 2)
	})

	t.Run("nil provider", func(t *testing.T) {
		res, err := New(nil, nil).Split(ctx, req)

		require.NoError(t, err)
		require.Equal(t, 3, res.Stats.Units)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := New(failingProvider{err: context.Canceled}, nil).Split(cctx, req)

		require.ErrorIs(t, err, context.Canceled)
	})
}
