// Package cmd contains the selectors app.
package cmd

import (
	"fmt"
	"os"

	"github.com/ardanlabs/dispatch/foundation/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// log receives warnings. It writes to stderr so it never mixes with the
// rendered output.
var log *zap.SugaredLogger

var rootCmd = &cobra.Command{
	Use:           "selectors",
	Short:         "Compute function selectors and build dispatch tables",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command line.
func Execute() {
	l, err := logger.New("SELECTORS", "stderr")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer l.Sync()
	log = l

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		l.Sync()
		os.Exit(1)
	}
}
