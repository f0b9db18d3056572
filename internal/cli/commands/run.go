package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"pts/internal/config"
	"pts/internal/domain"
	"pts/internal/execution"
	"pts/internal/parser"
	"pts/internal/pattern"
	"pts/internal/split"
	"pts/internal/storage"
	"pts/internal/ui"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// ErrRunFailed is returned when at least one lane failed
var ErrRunFailed = errors.New("test run failed")

// RunCommand handles the run command
type RunCommand struct {
	env       *Env
	parser    *parser.JUnitParser
	formatter *ui.Formatter
	prepare   *PrepareCommand
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(env *Env, parser *parser.JUnitParser, formatter *ui.Formatter, prepare *PrepareCommand) *RunCommand {
	return &RunCommand{
		env:       env,
		parser:    parser,
		formatter: formatter,
		prepare:   prepare,
	}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	defer rc.env.Close()
	cfg := rc.env.config
	ctx := cmd.Context()

	if len(cfg.Command) == 0 {
		return fmt.Errorf("%w: set command in %s", execution.ErrNoCommand, config.DefaultConfigFile)
	}

	res, err := rc.env.Plan(ctx)
	if err != nil {
		return err
	}
	if res.Stats.Units == 0 {
		color.Yellow("No tests to execute")
		return nil
	}

	if cfg.Flags.Prepare {
		if err := rc.prepare.Lanes(ctx, len(res.Lanes)); err != nil {
			return fmt.Errorf("prepare failed: %w", err)
		}
		fmt.Println()
	}

	jobs, err := rc.jobs(res)
	if err != nil {
		return err
	}

	pool := execution.NewLanePool(execution.NewRunner(cfg), rc.env.logger)
	pool.SetFailFast(cfg.Flags.FailFast)
	pool.SetProgress(ui.NewProgressBar(len(jobs)))

	startTime := time.Now()
	results, duration, err := pool.Execute(ctx, jobs)
	if err != nil {
		return err
	}

	records, failures := rc.collect(startTime, res)
	report := storage.NewReport(results, res.Lanes, records, failures, duration)

	if err := rc.env.Storage().Save(report); err != nil {
		return fmt.Errorf("failed to save test results: %w", err)
	}
	rc.record(ctx, report)

	rc.formatter.PrintRunStats(report)
	if !report.Meta.Success {
		return ErrRunFailed
	}
	return nil
}

// jobs writes lane filter files and builds one job per lane
func (rc *RunCommand) jobs(res *split.Result) ([]execution.LaneJob, error) {
	cfg := rc.env.config
	renderer, err := rc.env.Renderer()
	if err != nil {
		return nil, err
	}
	filters := res.LaneFilters()
	files, err := pattern.WriteFiles(cfg.GetFilterDir(), filters, renderer)
	if err != nil {
		return nil, fmt.Errorf("failed to write lane filters: %w", err)
	}

	jobs := make([]execution.LaneJob, len(filters))
	for i, d := range filters {
		jobs[i] = execution.LaneJob{
			Lane:       i,
			LaneCount:  len(filters),
			Filter:     d,
			FilterFile: files[i],
			Expression: renderer.Expression(d),
			Skip:       cfg.SkipEmpty && d.IsInclude && len(d.Identifiers) == 0,
		}
	}
	return jobs, nil
}

// collect reads the JUnit reports the lanes wrote during this run. Reports
// older than the run are left over from a previous build and ignored.
func (rc *RunCommand) collect(since time.Time, res *split.Result) ([]domain.HistoryRecord, []domain.TestFailure) {
	glob := rc.env.config.GetReportGlob()
	if glob == "" {
		rc.env.logger.Warn("report_glob not set, unit durations are not recorded")
		return nil, nil
	}

	files, err := reportsSince(glob, since)
	if err != nil {
		rc.env.logger.Warn("failed to list reports", "glob", glob, "error", err)
		return nil, nil
	}
	report, err := rc.parser.ParseFiles(files)
	if err != nil {
		rc.env.logger.Warn("failed to parse reports", "glob", glob, "error", err)
		return nil, nil
	}

	laneOf := laneIndex(res.Lanes)
	for i := range report.Failures {
		report.Failures[i].Lane = laneOf[report.Failures[i].ClassName]
	}
	return report.Records, report.Failures
}

// reportsSince lists files matching glob modified at or after since, sorted
func reportsSince(glob string, since time.Time) ([]string, error) {
	matches, err := filepath.Glob(glob)
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		if !info.ModTime().Before(since.Truncate(time.Second)) {
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}

// laneIndex maps unit IDs to their lane. Units missing from the map ran in
// lane 0, the leftover lane.
func laneIndex(lanes []domain.Lane) map[string]int {
	m := make(map[string]int)
	for _, l := range lanes {
		for _, u := range l.Units {
			m[u.ID] = l.Index
		}
	}
	return m
}

// record stores this run's durations in the MySQL history, if configured
func (rc *RunCommand) record(ctx context.Context, report *domain.RunReport) {
	cfg := rc.env.config
	if cfg.HistorySource != config.HistoryMySQL || len(report.Units) == 0 {
		return
	}
	p, err := rc.env.MySQL(ctx)
	if err != nil {
		rc.env.logger.Warn("mysql history unavailable, durations not recorded", "error", err)
		return
	}

	buildID := cfg.BuildID
	if buildID == "" {
		buildID = time.Now().UTC().Format("20060102T150405Z")
	}
	if err := p.Record(ctx, buildID, report.Meta.Success, report.Units); err != nil {
		rc.env.logger.Warn("failed to record history", "build", buildID, "error", err)
	}
}
