package commands

import (
	"fmt"

	"pts/internal/ui"

	"github.com/spf13/cobra"
)

// FaillsCommand handles the faills command
type FaillsCommand struct {
	env *Env
}

// NewFaillsCommand creates a new FaillsCommand
func NewFaillsCommand(env *Env) *FaillsCommand {
	return &FaillsCommand{env: env}
}

// Execute runs the command
func (fc *FaillsCommand) Execute(cmd *cobra.Command, args []string) error {
	st := fc.env.Storage()
	results, err := st.Load()
	if err != nil {
		return fmt.Errorf("no previous run to show: %w", err)
	}

	return ui.NewErrorViewer(st).View(results)
}
