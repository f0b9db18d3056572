package execution

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"pts/internal/config"
	"pts/internal/domain"
)

// ErrNoCommand is returned when no lane command is configured
var ErrNoCommand = errors.New("no lane command configured")

// Runner executes the lane command for a single lane
type Runner struct {
	config *config.Config
}

// NewRunner creates a new Runner
func NewRunner(cfg *config.Config) *Runner {
	return &Runner{config: cfg}
}

// Run executes the configured command for one lane. Arguments may contain
// {lane}, {lanes}, {mode}, {filter} and {filter_file} placeholders.
func (r *Runner) Run(ctx context.Context, job LaneJob) domain.LaneResult {
	result := domain.LaneResult{Lane: job.Lane, Filter: job.Filter}
	if len(r.config.Command) == 0 {
		result.Error = ErrNoCommand
		return result
	}

	args := make([]string, len(r.config.Command))
	for i, arg := range r.config.Command {
		args[i] = expand(arg, job)
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	// Children that outlive a cancelled lane must not hold its output open.
	cmd.WaitDelay = 5 * time.Second

	// Set environment variables
	cmd.Env = os.Environ() // Start with current environment
	cmd.Env = append(cmd.Env,
		"PTS_LANE="+strconv.Itoa(job.Lane),
		"PTS_LANE_COUNT="+strconv.Itoa(job.LaneCount),
		"PTS_FILTER_MODE="+job.Filter.Mode(),
		"PTS_FILTER_FILE="+job.FilterFile,
		"PTS_FILTER="+job.Expression,
		fmt.Sprintf("DB_DATABASE=%s", r.config.GetDatabaseName(job.Lane+1)),
	)

	// Set working directory
	cmd.Dir = r.config.ProjectPath

	start := time.Now()
	output, err := cmd.CombinedOutput()

	result.Success = err == nil
	result.Output = string(output)
	result.Error = err
	result.Duration = time.Since(start)
	return result
}

func expand(arg string, job LaneJob) string {
	return strings.NewReplacer(
		"{lane}", strconv.Itoa(job.Lane),
		"{lanes}", strconv.Itoa(job.LaneCount),
		"{mode}", job.Filter.Mode(),
		"{filter}", job.Expression,
		"{filter_file}", job.FilterFile,
	).Replace(arg)
}
