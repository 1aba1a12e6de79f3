// Command controlplane runs the Observer/Gatekeeper control plane as a
// long-running process: it loads config.yaml, wires the configured
// store backend, and runs the Observer pipeline and reconciliation
// scheduler until terminated.
package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/Shiva-129/OmniTrade-system/internal/cli"
)

func main() {
	root := cli.NewControlPlaneRootCommand()
	if err := root.Execute(); err != nil {
		log.WithError(err).Error("control plane failed")
		os.Exit(cli.ExitCode(err))
	}
}
