package commands

import (
	"encoding/json"
	"fmt"

	"pts/internal/domain"
	"pts/internal/pattern"
	"pts/internal/split"
	"pts/internal/ui"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// SplitCommand handles the split command
type SplitCommand struct {
	env       *Env
	formatter *ui.Formatter
}

// NewSplitCommand creates a new SplitCommand
func NewSplitCommand(env *Env, formatter *ui.Formatter) *SplitCommand {
	return &SplitCommand{
		env:       env,
		formatter: formatter,
	}
}

// splitOutput is the --json form of a split
type splitOutput struct {
	Lanes    []laneOutput `json:"lanes"`
	Excluded []string     `json:"excluded"`
	History  string       `json:"history,omitempty"`
	Fallback int64        `json:"fallback_ms"`
}

type laneOutput struct {
	Lane int `json:"lane"`
	domain.FilterDescriptor
	PlannedMs  int64  `json:"planned_ms"`
	FilterFile string `json:"filter_file"`
}

// Execute runs the command
func (sc *SplitCommand) Execute(cmd *cobra.Command, args []string) error {
	defer sc.env.Close()

	res, err := sc.env.Plan(cmd.Context())
	if err != nil {
		return err
	}

	renderer, err := sc.env.Renderer()
	if err != nil {
		return err
	}
	dir := sc.env.config.GetFilterDir()
	filters := res.LaneFilters()
	files, err := pattern.WriteFiles(dir, filters, renderer)
	if err != nil {
		return fmt.Errorf("failed to write lane filters: %w", err)
	}

	if sc.env.config.Flags.JSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(newSplitOutput(res, filters, files))
	}

	sc.formatter.PrintPlan(res)
	fmt.Println()
	color.Green("✓ Wrote %d lane filter(s) to %s", len(files), dir)
	return nil
}

// newSplitOutput reports lanes with the filters they run with, index aligned
// with files.
func newSplitOutput(res *split.Result, filters []domain.FilterDescriptor, files []string) splitOutput {
	out := splitOutput{
		Lanes:    make([]laneOutput, len(filters)),
		Excluded: make([]string, len(res.Excluded)),
		Fallback: res.Fallback,
	}
	if res.HistoryUsed {
		out.History = res.Source
	}
	for i, d := range filters {
		out.Lanes[i] = laneOutput{Lane: i, FilterDescriptor: d, FilterFile: files[i]}
		if i < len(res.Lanes) {
			out.Lanes[i].PlannedMs = res.Lanes[i].TotalMs
		}
	}
	for i, u := range res.Excluded {
		out.Excluded[i] = u.ID
	}
	return out
}
