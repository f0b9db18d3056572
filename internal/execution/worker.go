package execution

import (
	"context"
	"sync"
	"time"

	"pts/internal/domain"
	"pts/internal/logging"
	"pts/internal/ui"
)

// LanePool runs every lane concurrently, one goroutine per lane
type LanePool struct {
	runner   *Runner
	progress *ui.ProgressBar
	logger   logging.Logger
	failFast bool
}

// NewLanePool creates a new LanePool
func NewLanePool(runner *Runner, logger logging.Logger) *LanePool {
	return &LanePool{runner: runner, logger: logging.OrNop(logger)}
}

var _ Executor = (*LanePool)(nil)

// SetProgress sets the progress bar for the pool
func (lp *LanePool) SetProgress(progress *ui.ProgressBar) {
	lp.progress = progress
}

// SetFailFast makes the first failing lane cancel the others
func (lp *LanePool) SetFailFast(failFast bool) {
	lp.failFast = failFast
}

// Execute runs all lanes and returns results in lane order.
func (lp *LanePool) Execute(ctx context.Context, jobs []LaneJob) ([]domain.LaneResult, time.Duration, error) {
	if len(jobs) == 0 {
		return nil, 0, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]domain.LaneResult, len(jobs))
	var mu sync.Mutex
	var passed, failed int
	startTime := time.Now()

	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		go func(i int, job LaneJob) {
			defer wg.Done()

			var result domain.LaneResult
			if job.Skip {
				lp.logger.Debug("skipping empty lane", "lane", job.Lane)
				result = domain.LaneResult{Lane: job.Lane, Filter: job.Filter, Success: true, Skipped: true}
			} else {
				lp.logger.Debug("starting lane", "lane", job.Lane, "mode", job.Filter.Mode(), "units", len(job.Filter.Identifiers))
				result = lp.runner.Run(ctx, job)
			}
			results[i] = result

			mu.Lock()
			defer mu.Unlock()
			if result.Success {
				passed++
			} else {
				failed++
				lp.logger.Warn("lane failed", "lane", job.Lane, "error", result.Error)
				if lp.failFast {
					cancel()
				}
			}
			if lp.progress != nil {
				lp.progress.Update(passed, failed)
			}
		}(i, job)
	}
	wg.Wait()

	if lp.progress != nil {
		lp.progress.Finish()
	}
	return results, time.Since(startTime), nil
}
