package commands

import (
	"pts/internal/discovery"
	"pts/internal/durations"
	"pts/internal/ui"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// ListCommand handles the list command
type ListCommand struct {
	env       *Env
	formatter *ui.Formatter
}

// NewListCommand creates a new ListCommand
func NewListCommand(env *Env, formatter *ui.Formatter) *ListCommand {
	return &ListCommand{
		env:       env,
		formatter: formatter,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	defer lc.env.Close()

	units, err := lc.env.Units()
	if err != nil {
		return err
	}
	if len(units) == 0 {
		color.Yellow("No tests found")
		return nil
	}

	idx := durations.Build(lc.env.Previous(cmd.Context()), discovery.IDs(units), nil)
	lc.formatter.PrintUnits(idx.Units())
	return nil
}
