package cmd

import (
	"fmt"

	"github.com/ardanlabs/dispatch/foundation/selector"
	"github.com/spf13/cobra"
)

var sigCmd = &cobra.Command{
	Use:   "sig <signature>...",
	Short: "Print the canonical form and selector of each signature",
	Args:  cobra.MinimumNArgs(1),
	RunE:  sigRun,
}

func init() {
	rootCmd.AddCommand(sigCmd)
}

func sigRun(cmd *cobra.Command, args []string) error {
	for _, arg := range args {
		sel, canonical, err := selector.FromSignature(arg)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", sel, canonical)
	}

	return nil
}
