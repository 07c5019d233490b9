package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ardanlabs/dispatch/foundation/dispatch"
	"github.com/ardanlabs/dispatch/foundation/dispatch/huff"
	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
)

var (
	manifestPath  string
	threshold     int
	headroom      int
	width         int
	format        string
	outputPath    string
	skipMalformed bool
)

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Build a dispatch table from a manifest",
	Args:  cobra.NoArgs,
	RunE:  tableRun,
}

func init() {
	rootCmd.AddCommand(tableCmd)
	tableCmd.Flags().StringVarP(&manifestPath, "file", "f", "", "Path to the manifest.")
	tableCmd.Flags().IntVar(&threshold, "threshold", dispatch.DefaultThreshold, "Longest acceptable chain.")
	tableCmd.Flags().IntVar(&headroom, "headroom", dispatch.DefaultHeadroom, "Widths tried above the minimum.")
	tableCmd.Flags().IntVar(&width, "width", -1, "Fixed mask width, skips the search.")
	tableCmd.Flags().StringVar(&format, "format", "text", "Output format: text, json or huff.")
	tableCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write to this file instead of stdout.")
	tableCmd.Flags().BoolVar(&skipMalformed, "skip-malformed", false, "Drop malformed signatures instead of failing.")
	tableCmd.MarkFlagRequired("file")
}

func tableRun(cmd *cobra.Command, args []string) error {
	tbl, err := buildFromManifest(manifestPath, dispatch.Config{Threshold: threshold, Headroom: headroom}, width, skipMalformed)
	if err != nil {
		return err
	}

	if warn := tbl.Warning(); warn != nil {
		log.Warnw("table", "status", "threshold not met", "ERROR", warn)
	}

	var buf bytes.Buffer
	switch format {
	case "text":
		err = writeText(&buf, tbl)
	case "json":
		err = writeJSON(&buf, tbl)
	case "huff":
		err = huff.Generate(&buf, tbl, huff.DefaultConfig())
	default:
		err = fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return err
	}

	if outputPath == "" {
		_, err := io.Copy(cmd.OutOrStdout(), &buf)
		return err
	}

	if err := atomic.WriteFile(outputPath, &buf); err != nil {
		return fmt.Errorf("writing %s: %w", outputPath, err)
	}

	return nil
}

// buildFromManifest builds the table for the manifest at path. A negative
// width searches for one.
func buildFromManifest(path string, cfg dispatch.Config, width int, skip bool) (dispatch.Table, error) {
	m, err := LoadManifest(path)
	if err != nil {
		return dispatch.Table{}, err
	}

	fns := m.Functions
	if skip {
		fns = m.dropMalformed()
	}

	if width < 0 {
		return dispatch.Build(fns, cfg)
	}
	return dispatch.BuildWithWidth(fns, uint(width), cfg)
}

func writeJSON(w io.Writer, tbl dispatch.Table) error {
	digest, err := tbl.Digest()
	if err != nil {
		return err
	}

	doc := struct {
		Digest string         `json:"digest"`
		Table  dispatch.Table `json:"table"`
	}{
		Digest: digest,
		Table:  tbl,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func writeText(w io.Writer, tbl dispatch.Table) error {
	fmt.Fprintf(w, "width %d  mask %#x  slots %d  chains %d  max chain %d\n\n",
		tbl.Width, tbl.Mask, tbl.Size(), tbl.Collisions(), tbl.Search.MaxChain)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, slot := range tbl.Slots {
		if slot.Kind == dispatch.Empty {
			continue
		}

		for i, e := range slot.Entries {
			idx, kind := "", ""
			if i == 0 {
				idx, kind = fmt.Sprint(slot.Index), slot.Kind.String()
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", idx, kind, e.Selector, e.Signature, e.Handler)
		}
	}

	return tw.Flush()
}
