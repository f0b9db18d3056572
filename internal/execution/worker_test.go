package execution

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pts/internal/config"
	"pts/internal/domain"
)

func newPool(t *testing.T, command ...string) (*LanePool, *config.Config) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("lane commands use sh")
	}
	cfg := config.New()
	cfg.ProjectPath = t.TempDir()
	cfg.Command = command
	return NewLanePool(NewRunner(cfg), nil), cfg
}

func jobs(n int) []LaneJob {
	out := make([]LaneJob, n)
	for i := range out {
		out[i] = LaneJob{
			Lane:       i,
			LaneCount:  n,
			Filter:     domain.FilterDescriptor{IsInclude: i != 0, Identifiers: []string{"a.A"}},
			Expression: "a.A",
		}
	}
	return out
}

func TestLanePool_Execute(t *testing.T) {
	t.Run("runs every lane with its environment", func(t *testing.T) {
		pool, cfg := newPool(t, "sh", "-c", `echo "$PTS_LANE/$PTS_LANE_COUNT $PTS_FILTER_MODE $PTS_FILTER $DB_DATABASE" > out-{lane}.txt`)
		t.Setenv("DB_DATABASE_PREFIX", "ci")

		results, _, err := pool.Execute(context.Background(), jobs(3))
		require.NoError(t, err)
		require.Len(t, results, 3)

		for i, r := range results {
			require.Equal(t, i, r.Lane)
			require.True(t, r.Success, r.Output)
		}

		data, err := os.ReadFile(filepath.Join(cfg.ProjectPath, "out-0.txt"))
		require.NoError(t, err)
		require.Equal(t, "0/3 exclude a.A ci_1", strings.TrimSpace(string(data)))

		data, err = os.ReadFile(filepath.Join(cfg.ProjectPath, "out-2.txt"))
		require.NoError(t, err)
		require.Equal(t, "2/3 include a.A ci_3", strings.TrimSpace(string(data)))
	})

	t.Run("reports failing lanes", func(t *testing.T) {
		pool, _ := newPool(t, "sh", "-c", `test "$PTS_LANE" != 1`)

		results, _, err := pool.Execute(context.Background(), jobs(3))
		require.NoError(t, err)

		require.True(t, results[0].Success)
		require.False(t, results[1].Success)
		require.Error(t, results[1].Error)
		require.True(t, results[2].Success)
	})

	t.Run("skipped lanes do not run", func(t *testing.T) {
		pool, cfg := newPool(t, "sh", "-c", "touch ran-{lane}")
		js := jobs(2)
		js[1].Skip = true

		results, _, err := pool.Execute(context.Background(), js)
		require.NoError(t, err)

		require.True(t, results[1].Skipped)
		require.True(t, results[1].Success)
		_, err = os.Stat(filepath.Join(cfg.ProjectPath, "ran-1"))
		require.True(t, os.IsNotExist(err))
	})

	t.Run("fail fast cancels slow lanes", func(t *testing.T) {
		pool, _ := newPool(t, "sh", "-c", `if [ "$PTS_LANE" = 0 ]; then exit 1; fi; exec sleep 30`)
		pool.SetFailFast(true)

		start := time.Now()
		results, _, err := pool.Execute(context.Background(), jobs(3))
		require.NoError(t, err)

		require.Less(t, time.Since(start), 20*time.Second)
		for _, r := range results {
			require.False(t, r.Success)
		}
	})

	t.Run("missing command", func(t *testing.T) {
		pool, _ := newPool(t)

		results, _, err := pool.Execute(context.Background(), jobs(1))
		require.NoError(t, err)
		require.ErrorIs(t, results[0].Error, ErrNoCommand)
	})

	t.Run("no jobs", func(t *testing.T) {
		pool, _ := newPool(t, "true")

		results, _, err := pool.Execute(context.Background(), nil)
		require.NoError(t, err)
		require.Empty(t, results)
	})
}

func TestExpand(t *testing.T) {
	job := LaneJob{Lane: 2, LaneCount: 4, Filter: domain.FilterDescriptor{IsInclude: true}, FilterFile: "/f/lane-2/includes.txt", Expression: "x,y"}

	require.Equal(t, "-Dsurefire.includesFile=/f/lane-2/includes.txt", expand("-Dsurefire.includesFile={filter_file}", job))
	require.Equal(t, "2 of 4 include x,y", expand("{lane} of {lanes} {mode} {filter}", job))
}
