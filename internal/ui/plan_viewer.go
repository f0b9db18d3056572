package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"pts/internal/domain"
	"pts/internal/pattern"
	"pts/internal/split"
)

// PlanViewer shows the lanes of a split: lanes on the left, the selected
// lane's units and filter on the right.
type PlanViewer struct {
	renderer pattern.Renderer
}

// NewPlanViewer creates a PlanViewer rendering filters with r
func NewPlanViewer(r pattern.Renderer) *PlanViewer {
	if r == nil {
		r = pattern.Plain{}
	}
	return &PlanViewer{renderer: r}
}

// ViewPlan runs the TUI until Ctrl+C or q
func (pv *PlanViewer) ViewPlan(res *split.Result) error {
	if len(res.Lanes) == 0 {
		color.Yellow("No lanes to show")
		return nil
	}

	app := tview.NewApplication()

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)
	for i, lane := range res.Lanes {
		list.AddItem(laneItemText(lane, descriptorAt(res, i)), "", 0, nil)
	}
	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan)

	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)

	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(detailsView, 0, 1, false)

	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true).
		SetText(planHeader(res))

	updateDetails := func() {
		index := list.GetCurrentItem()
		if index < 0 || index >= len(res.Lanes) {
			return
		}
		lane := res.Lanes[index]
		d := descriptorAt(res, index)
		statsView.SetText(laneStats(lane, d))
		detailsView.SetText(pv.laneDetails(lane, d))
		detailsView.ScrollToBeginning()
	}

	list.SetChangedFunc(func(int, string, string, rune) {
		updateDetails()
	})
	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'q' {
				app.Stop()
				return nil
			}
		}
		return event
	})
	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	updateDetails()

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(flex, 0, 1, true)

	if err := app.SetRoot(mainLayout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func descriptorAt(res *split.Result, i int) domain.FilterDescriptor {
	if filters := res.LaneFilters(); i < len(filters) {
		return filters[i]
	}
	return domain.FilterDescriptor{IsInclude: true}
}

func planHeader(res *split.Result) string {
	s := res.Stats
	return fmt.Sprintf(" %d lanes, %d units, longest %s, shortest %s | ↑↓ select lane, → units, ← back, q to exit ",
		s.Lanes, s.Units, FormatMs(s.MaxMs), FormatMs(s.MinMs))
}

func laneItemText(lane domain.Lane, d domain.FilterDescriptor) string {
	modeColor := "green"
	if !d.IsInclude {
		modeColor = "yellow"
	}
	return fmt.Sprintf("[yellow]%d.[white] %s [%s]%s[white] (%d)", lane.Index, FormatMs(lane.TotalMs), modeColor, d.Mode(), len(lane.Units))
}

func laneStats(lane domain.Lane, d domain.FilterDescriptor) string {
	return fmt.Sprintf("[cyan]lane:[white] [yellow]%d[white]  [cyan]planned:[white] %s  [cyan]filter:[white] %s %d identifier(s)\n",
		lane.Index, FormatMs(lane.TotalMs), d.Mode(), len(d.Identifiers))
}

// laneDetails lists the lane's units and the filter that selects them.
func (pv *PlanViewer) laneDetails(lane domain.Lane, d domain.FilterDescriptor) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[yellow]Units:[white]\n")
	if len(lane.Units) == 0 {
		fmt.Fprintf(&b, "  [gray](none)[white]\n")
	}
	for _, u := range lane.Units {
		marker := ""
		if !u.Measured {
			marker = " [gray][fallback[][white]"
		}
		fmt.Fprintf(&b, "  %s  %s%s\n", tview.Escape(u.ID), FormatMs(u.DurationMs), marker)
	}

	fmt.Fprintf(&b, "\n[yellow]Filter (%s):[white]\n", d.Mode())
	if expr := pv.renderer.Expression(d); expr != "" {
		fmt.Fprintf(&b, "  %s\n", tview.Escape(expr))
	}
	return b.String()
}
