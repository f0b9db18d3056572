package commands

import (
	"context"

	"pts/internal/provision"

	"github.com/spf13/cobra"
)

// PrepareCommand handles the prepare command
type PrepareCommand struct {
	env *Env
}

// NewPrepareCommand creates a new PrepareCommand
func NewPrepareCommand(env *Env) *PrepareCommand {
	return &PrepareCommand{env: env}
}

// Execute runs the command. The lane count comes from the split, so a
// weight-driven parallelism prepares as many lanes as the run will use.
func (pc *PrepareCommand) Execute(cmd *cobra.Command, args []string) error {
	defer pc.env.Close()

	res, err := pc.env.Plan(cmd.Context())
	if err != nil {
		return err
	}
	return pc.Lanes(cmd.Context(), len(res.Lanes))
}

// Lanes prepares lanes 0..lanes-1
func (pc *PrepareCommand) Lanes(ctx context.Context, lanes int) error {
	cfg := pc.env.config
	preparer := provision.NewPreparer(cfg, provision.NewDatabaseManager(cfg), pc.env.logger)
	return preparer.Run(ctx, lanes)
}
