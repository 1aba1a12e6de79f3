// Command simulator replays a journal through the deterministic replay
// engine and reports whether its state trajectory reproduces a reference
// run, per spec.md §6.
package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/Shiva-129/OmniTrade-system/internal/cli"
)

func main() {
	root := cli.NewRootCommand()
	if err := root.Execute(); err != nil {
		log.WithError(err).Error("replay failed")
		os.Exit(cli.ExitCode(err))
	}
}
