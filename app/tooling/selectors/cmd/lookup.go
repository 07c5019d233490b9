package cmd

import (
	"fmt"

	"github.com/ardanlabs/dispatch/foundation/dispatch"
	"github.com/ardanlabs/dispatch/foundation/selector"
	"github.com/spf13/cobra"
)

var strict bool

var lookupCmd = &cobra.Command{
	Use:   "lookup <selector>",
	Short: "Show how a selector is routed by the manifest's table",
	Args:  cobra.ExactArgs(1),
	RunE:  lookupRun,
}

func init() {
	rootCmd.AddCommand(lookupCmd)
	lookupCmd.Flags().StringVarP(&manifestPath, "file", "f", "", "Path to the manifest.")
	lookupCmd.Flags().BoolVar(&strict, "strict", false, "Check the selector of a direct slot.")
	lookupCmd.MarkFlagRequired("file")
}

func lookupRun(cmd *cobra.Command, args []string) error {
	sel, err := selector.Parse(args[0])
	if err != nil {
		return err
	}

	tbl, err := buildFromManifest(manifestPath, dispatch.DefaultConfig(), -1, false)
	if err != nil {
		return err
	}

	lookup := tbl.Lookup
	if strict {
		lookup = tbl.LookupStrict
	}

	slot := dispatch.SlotIndex(sel, tbl.Mask)
	kind := tbl.Slots[slot].Kind

	handler, found := lookup(sel)
	if !found {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  slot %d  %s  fallback\n", sel, slot, kind)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s  slot %d  %s  %s\n", sel, slot, kind, handler)
	return nil
}
