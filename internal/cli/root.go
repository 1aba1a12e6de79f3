package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the simulator CLI's root command.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulator",
		Short: "Deterministic replay simulator for the trading control plane",
	}

	cmd.AddCommand(NewReplayCommand())

	return cmd
}
