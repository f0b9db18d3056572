package ui

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"

	"pts/internal/config"
	"pts/internal/domain"
	"pts/internal/split"
)

// Formatter formats and displays output
type Formatter struct {
	config *config.Config
	out    io.Writer
}

// NewFormatter creates a new Formatter writing to the color-aware stdout
func NewFormatter(cfg *config.Config) *Formatter {
	return &Formatter{
		config: cfg,
		out:    color.Output,
	}
}

// SetOutput redirects the formatter
func (f *Formatter) SetOutput(w io.Writer) {
	f.out = w
}

var (
	cyan   = color.New(color.FgCyan)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	white  = color.New(color.FgWhite)
	gray   = color.New(color.FgHiBlack)
)

// FormatMs renders milliseconds as a short duration.
func FormatMs(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	if d >= time.Second {
		d = d.Round(100 * time.Millisecond)
	}
	return d.String()
}

func (f *Formatter) header(title string) {
	fmt.Fprintln(f.out)
	cyan.Fprintln(f.out, "╔═══════════════════════════════════════════════════════════════╗")
	cyan.Fprintf(f.out, "║ %-61s ║\n", centered(title, 61))
	cyan.Fprintln(f.out, "╚═══════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(f.out)
}

func centered(s string, width int) string {
	pad := width - len([]rune(s))
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad/2) + s
}

func (f *Formatter) row(label string, c *color.Color, value string) {
	fmt.Fprintf(f.out, "│ %-31s │ ", label)
	c.Fprintf(f.out, "%-27s", value)
	fmt.Fprintln(f.out, " │")
}

const (
	tableTop = "┌─────────────────────────────────┬─────────────────────────────┐"
	tableSep = "├─────────────────────────────────┼─────────────────────────────┤"
	tableEnd = "└─────────────────────────────────┴─────────────────────────────┘"
)

// PrintPlan prints the lanes of a split, their balance and the excluded units.
func (f *Formatter) PrintPlan(res *split.Result) {
	f.header("Lane Plan")

	fmt.Fprintln(f.out, "┌──────┬─────────┬────────┬──────────────┐")
	fmt.Fprintf(f.out, "│ %-4s │ %-7s │ %-6s │ %-12s │\n", "Lane", "Filter", "Units", "Planned")
	fmt.Fprintln(f.out, "├──────┼─────────┼────────┼──────────────┤")
	for i, lane := range res.Lanes {
		mode := "include"
		if i < len(res.Descriptors) {
			mode = res.Descriptors[i].Mode()
		}
		modeColor := green
		if mode == "exclude" {
			modeColor = yellow
		}
		fmt.Fprintf(f.out, "│ %-4d │ ", lane.Index)
		modeColor.Fprintf(f.out, "%-7s", mode)
		fmt.Fprintf(f.out, " │ %-6d │ %-12s │\n", len(lane.Units), FormatMs(lane.TotalMs))
	}
	fmt.Fprintln(f.out, "└──────┴─────────┴────────┴──────────────┘")
	fmt.Fprintln(f.out)

	s := res.Stats
	fmt.Fprintln(f.out, tableTop)
	f.row("Units", white, fmt.Sprintf("%d", s.Units))
	fmt.Fprintln(f.out, tableSep)
	f.row("Lanes", white, fmt.Sprintf("%d", s.Lanes))
	fmt.Fprintln(f.out, tableSep)
	f.row("Total", white, FormatMs(s.TotalMs))
	fmt.Fprintln(f.out, tableSep)
	f.row("Longest lane", white, FormatMs(s.MaxMs))
	fmt.Fprintln(f.out, tableSep)
	f.row("Shortest lane", white, FormatMs(s.MinMs))
	fmt.Fprintln(f.out, tableSep)
	f.row("Std deviation", white, FormatMs(s.StdDevMs))
	fmt.Fprintln(f.out, tableSep)
	if res.HistoryUsed {
		f.row("History", green, res.Source)
	} else {
		f.row("History", yellow, "none")
	}
	fmt.Fprintln(f.out, tableSep)
	f.row("Fallback duration", white, FormatMs(res.Fallback))
	fmt.Fprintln(f.out, tableSep)
	f.row("Filter syntax", white, f.config.FilterSyntax)
	fmt.Fprintln(f.out, tableEnd)

	if len(res.Excluded) > 0 {
		fmt.Fprintln(f.out)
		yellow.Fprintf(f.out, "Excluded %d unit(s) from all lanes:\n", len(res.Excluded))
		for i, u := range res.Excluded {
			fmt.Fprintf(f.out, "%s%s %s\n", branch(i, len(res.Excluded)), u.ID, gray.Sprintf("[%s]", u.Category))
		}
	}
}

// PrintUnits prints candidate units with their durations. Units without a
// measured duration are marked.
func (f *Formatter) PrintUnits(units []domain.TestUnit) {
	if len(units) == 0 {
		yellow.Fprintln(f.out, "No test units found")
		return
	}

	green.Fprintf(f.out, "Found %d test unit(s):\n\n", len(units))
	for i, u := range units {
		marker := ""
		if !u.Measured {
			marker = " " + gray.Sprint("[fallback]")
		}
		fmt.Fprintf(f.out, "%s", branch(i, len(units)))
		cyan.Fprintf(f.out, "%s", u.ID)
		fmt.Fprintf(f.out, " %s%s\n", FormatMs(u.DurationMs), marker)
	}
}

func branch(i, n int) string {
	if i == n-1 {
		return "└── "
	}
	return "├── "
}

// PrintRunStats prints the outcome of a run and the failed tests grouped by
// class.
func (f *Formatter) PrintRunStats(report *domain.RunReport) {
	meta := report.Meta

	f.header("Lane Execution Statistics")

	fmt.Fprintln(f.out, tableTop)
	f.row("Lanes", white, fmt.Sprintf("%d", meta.Lanes))
	fmt.Fprintln(f.out, tableSep)
	f.row("Failed Lanes", red, fmt.Sprintf("%d", meta.FailedLanes))
	fmt.Fprintln(f.out, tableSep)
	f.row("Failed Test Cases", red, fmt.Sprintf("%d", meta.FailedTestCases))
	fmt.Fprintln(f.out, tableSep)
	f.row("Units Measured", white, fmt.Sprintf("%d", len(report.Units)))
	fmt.Fprintln(f.out, tableSep)
	f.row("Duration", white, fmt.Sprintf("%.2fs", meta.DurationSeconds))
	fmt.Fprintln(f.out, tableSep)
	f.row("Timestamp", white, meta.Timestamp)
	fmt.Fprintln(f.out, tableEnd)

	if len(report.Lanes) > 0 {
		fmt.Fprintln(f.out)
		for _, l := range report.Lanes {
			status := green.Sprint("passed")
			switch {
			case l.Skipped:
				status = gray.Sprint("skipped")
			case !l.Success:
				status = red.Sprint("failed")
			}
			fmt.Fprintf(f.out, "  lane %-3d %-7s %4d unit(s)  planned %-10s took %.2fs  %s\n",
				l.Lane, l.Mode, l.Units, FormatMs(l.PlannedMs), l.DurationSeconds, status)
		}
	}

	fmt.Fprintln(f.out)
	if meta.Success {
		green.Fprintln(f.out, "✓ All lanes passed!")
		return
	}
	red.Fprintf(f.out, "✗ %d lane(s) failed with %d test case failure(s)\n", meta.FailedLanes, meta.FailedTestCases)
	if len(report.Details) > 0 {
		fmt.Fprintln(f.out)
		f.printFailedTestsTree(report.Details)
	}
}

// TreeNode represents a node in the class name tree
type TreeNode struct {
	Name     string
	Children map[string]*TreeNode
	Failures []domain.TestFailure
	IsClass  bool
}

// classPath splits a class name into package segments. Both Java dots and
// PHP namespace separators are accepted.
func classPath(className string) []string {
	return strings.FieldsFunc(className, func(r rune) bool {
		return r == '.' || r == '\\' || r == '/'
	})
}

// printFailedTestsTree prints failed test cases under their package tree
func (f *Formatter) printFailedTestsTree(failures []domain.TestFailure) {
	byClass := make(map[string][]domain.TestFailure)
	for _, failure := range failures {
		byClass[failure.ClassName] = append(byClass[failure.ClassName], failure)
	}

	root := &TreeNode{Children: make(map[string]*TreeNode)}
	for className, classFailures := range byClass {
		parts := classPath(className)
		if len(parts) == 0 {
			parts = []string{"(unknown)"}
		}
		current := root
		for i, part := range parts {
			if current.Children[part] == nil {
				current.Children[part] = &TreeNode{
					Name:     part,
					Children: make(map[string]*TreeNode),
				}
			}
			current = current.Children[part]
			if i == len(parts)-1 {
				current.IsClass = true
				current.Failures = append(current.Failures, classFailures...)
			}
		}
	}

	f.printTreeNode(root, "")
}

func (f *Formatter) printTreeNode(node *TreeNode, prefix string) {
	keys := make([]string, 0, len(node.Children))
	for key := range node.Children {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for i, key := range keys {
		child := node.Children[key]
		last := i == len(keys)-1

		connector, next := "├── ", "│   "
		if last {
			connector, next = "└── ", "    "
		}

		if child.IsClass {
			yellow.Fprintf(f.out, "%s%s%s\n", prefix, connector, child.Name)
			for j, failure := range child.Failures {
				caseConnector := branch(j, len(child.Failures)+len(child.Children))
				red.Fprintf(f.out, "%s%s%s %s\n", prefix+next, caseConnector, failure.TestName, gray.Sprintf("(lane %d)", failure.Lane))
			}
		} else {
			cyan.Fprintf(f.out, "%s%s%s\n", prefix, connector, child.Name)
		}
		f.printTreeNode(child, prefix+next)
	}
}
