package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Shiva-129/OmniTrade-system/config"
	"github.com/Shiva-129/OmniTrade-system/decimal"
	"github.com/Shiva-129/OmniTrade-system/internal/daemon"
	"github.com/Shiva-129/OmniTrade-system/observer"
	"github.com/Shiva-129/OmniTrade-system/reconciler"
)

// NewControlPlaneRootCommand builds the long-running control-plane
// process's root command: load config.yaml, wire the store backend,
// Guard, Observer pipeline, and reconciliation scheduler it describes,
// and run until SIGINT/SIGTERM, grounded on the nysm CLI's `run`
// command shape (cobra RunE, signal.Notify into a cancelable context).
func NewControlPlaneRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "controlplane",
		Short:         "Run the Observer/Gatekeeper control plane daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd, configPath)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to config.yaml (required)")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runDaemon(cmd *cobra.Command, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	// No concrete exchange connector or snapshot source ships in this
	// module (see observer.Ingestor / reconciler.SnapshotSource docs);
	// a deployment supplies its own and passes them to daemon.New. The
	// zero-ingestor, empty-snapshot wiring below keeps the daemon
	// runnable out of the box for the store/guard/pipeline/reconciler
	// machinery this command exists to exercise.
	noSnapshot := func(context.Context) (map[string]*decimal.Decimal, error) {
		return map[string]*decimal.Decimal{}, nil
	}

	d, err := daemon.New(cfg, []observer.Ingestor{}, reconciler.SnapshotSource(noSnapshot))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to wire control plane", err)
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	fmt.Fprintln(cmd.OutOrStdout(), "control plane started; press Ctrl-C to stop")
	if err := d.Run(ctx); err != nil && err != context.Canceled {
		return WrapExitError(ExitVerdictFail, "control plane exited with error", err)
	}
	return nil
}
