package ui

import (
	"pts/internal/domain"
	"pts/internal/split"
)

// Viewer displays the failures of a run in an interactive TUI
type Viewer interface {
	View(results *domain.RunReport) error
}

// PlanView displays a split in an interactive TUI
type PlanView interface {
	ViewPlan(res *split.Result) error
}

var (
	_ Viewer   = (*ErrorViewer)(nil)
	_ PlanView = (*PlanViewer)(nil)
)
