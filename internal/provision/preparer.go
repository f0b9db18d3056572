package provision

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"pts/internal/config"
	"pts/internal/logging"
)

// Result is the outcome of preparing one lane
type Result struct {
	Lane     int
	Success  bool
	Output   string
	Error    error
	Duration time.Duration
}

// Preparer readies every lane before the run: it creates missing lane
// databases and runs the prepare command once per lane, e.g. a migration.
type Preparer struct {
	config    *config.Config
	databases *DatabaseManager
	logger    logging.Logger
}

// NewPreparer creates a new Preparer
func NewPreparer(cfg *config.Config, databases *DatabaseManager, logger logging.Logger) *Preparer {
	return &Preparer{
		config:    cfg,
		databases: databases,
		logger:    logging.OrNop(logger),
	}
}

// Run prepares lanes 0..lanes-1 concurrently. It fails if any lane failed.
func (p *Preparer) Run(ctx context.Context, lanes int) error {
	if lanes < 1 {
		return nil
	}
	if !p.config.LaneDatabases && len(p.config.PrepareCommand) == 0 {
		color.Yellow("Nothing to prepare: set lane_databases or prepare_command")
		return nil
	}

	color.Cyan("\n╔════════════════════════════════════════════════════════════╗")
	color.Cyan("║                     Preparing Lanes                        ║")
	color.Cyan("╚════════════════════════════════════════════════════════════╝\n")

	if p.config.LaneDatabases {
		created, err := p.databases.EnsureDatabases(ctx, lanes)
		if err != nil {
			return fmt.Errorf("failed to check lane databases: %w", err)
		}
		color.White("Lane databases: %d | Created: %d\n", lanes, created)
	}

	if len(p.config.PrepareCommand) == 0 {
		return nil
	}

	bar := progressbar.NewOptions(lanes,
		progressbar.OptionSetDescription(
			color.CyanString("Preparing: ")+
				color.GreenString("[completed: 0/%d]", lanes),
		),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)

	results := make([]Result, lanes)
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		completed int
	)
	startTime := time.Now()

	for lane := 0; lane < lanes; lane++ {
		wg.Add(1)
		go func(lane int) {
			defer wg.Done()
			results[lane] = p.prepareLane(ctx, lane, lanes)

			mu.Lock()
			defer mu.Unlock()
			completed++
			_ = bar.Set(completed)
			bar.Describe(color.CyanString("Preparing: ") +
				color.GreenString("[completed: %d/%d]", completed, lanes))
		}(lane)
	}
	wg.Wait()
	_ = bar.Finish()

	var failed []Result
	for _, r := range results {
		if !r.Success {
			failed = append(failed, r)
		}
	}

	fmt.Print("\n")
	if len(failed) > 0 {
		color.Red("✗ Prepare failed for %d lane(s)\n", len(failed))
		for _, r := range failed {
			color.Red("  Lane %d (DB: %s): %v\n", r.Lane, p.config.GetDatabaseName(r.Lane+1), r.Error)
		}
		return fmt.Errorf("prepare failed for %d lane(s)", len(failed))
	}

	color.Green("✓ Prepared all %d lanes\n", lanes)
	color.White("Duration: %s\n", time.Since(startTime).Round(time.Millisecond))
	return nil
}

// prepareLane runs the prepare command for one lane, streaming its output
// to the debug log.
func (p *Preparer) prepareLane(ctx context.Context, lane, lanes int) Result {
	start := time.Now()
	result := Result{Lane: lane}

	replacer := strings.NewReplacer("{lane}", strconv.Itoa(lane), "{lanes}", strconv.Itoa(lanes))
	args := make([]string, len(p.config.PrepareCommand))
	for i, arg := range p.config.PrepareCommand {
		args[i] = replacer.Replace(arg)
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.WaitDelay = 5 * time.Second
	cmd.Env = append(os.Environ(),
		"PTS_LANE="+strconv.Itoa(lane),
		"PTS_LANE_COUNT="+strconv.Itoa(lanes),
		"DB_DATABASE="+p.config.GetDatabaseName(lane+1),
	)
	cmd.Dir = p.config.ProjectPath

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		result.Error = fmt.Errorf("failed to create stdout pipe: %w", err)
		return result
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		result.Error = fmt.Errorf("failed to create stderr pipe: %w", err)
		return result
	}
	if err := cmd.Start(); err != nil {
		result.Error = fmt.Errorf("failed to start command: %w", err)
		return result
	}

	var (
		outputMu      sync.Mutex
		outputBuilder strings.Builder
		scanWg        sync.WaitGroup
	)
	stream := func(r io.Reader) {
		defer scanWg.Done()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := scanner.Text()
			outputMu.Lock()
			outputBuilder.WriteString(line)
			outputBuilder.WriteString("\n")
			outputMu.Unlock()
			if line = strings.TrimSpace(line); line != "" {
				p.logger.Debug("prepare output", "lane", lane, "line", line)
			}
		}
	}
	scanWg.Add(2)
	go stream(stdout)
	go stream(stderr)

	// Pipes must be drained before Wait closes them
	scanWg.Wait()
	err = cmd.Wait()

	result.Output = outputBuilder.String()
	result.Success = err == nil
	result.Error = err
	result.Duration = time.Since(start)
	return result
}
