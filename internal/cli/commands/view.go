package commands

import (
	"pts/internal/ui"

	"github.com/spf13/cobra"
)

// ViewCommand handles the view command
type ViewCommand struct {
	env *Env
}

// NewViewCommand creates a new ViewCommand
func NewViewCommand(env *Env) *ViewCommand {
	return &ViewCommand{env: env}
}

// Execute runs the command
func (vc *ViewCommand) Execute(cmd *cobra.Command, args []string) error {
	defer vc.env.Close()

	res, err := vc.env.Plan(cmd.Context())
	if err != nil {
		return err
	}
	renderer, err := vc.env.Renderer()
	if err != nil {
		return err
	}
	return ui.NewPlanViewer(renderer).ViewPlan(res)
}
