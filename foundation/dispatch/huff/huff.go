// Package huff renders a dispatch table as Huff source. The generated
// DISPATCH macro masks the calldata selector, reads the packed 2 byte jump
// destination for the slot and jumps to it. Chains compare the full
// selector in table order before jumping to a handler.
package huff

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"text/template"

	"github.com/ardanlabs/dispatch/foundation/dispatch"
)

// ErrInvalidHandler is returned when a handler reference given by the caller
// can't be used as a Huff macro name.
var ErrInvalidHandler = errors.New("invalid handler")

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Config names the generated definitions.
type Config struct {
	Table    string // Name of the jump table.
	Macro    string // Name of the dispatch macro.
	Fallback string // Macro invoked when no function matches.
}

// DefaultConfig returns the default definition names.
func DefaultConfig() Config {
	return Config{
		Table:    "DISPATCH_TABLE",
		Macro:    "DISPATCH",
		Fallback: "FALLBACK",
	}
}

// Generate writes the Huff source for the table.
func Generate(w io.Writer, tbl dispatch.Table, cfg Config) error {
	for _, name := range []string{cfg.Table, cfg.Macro, cfg.Fallback} {
		if !identifier.MatchString(name) {
			return fmt.Errorf("%q is not a valid huff identifier", name)
		}
	}

	src, err := newSource(tbl, cfg)
	if err != nil {
		return err
	}

	if err := tmpl.Execute(w, src); err != nil {
		return fmt.Errorf("rendering huff: %w", err)
	}

	return nil
}

// =============================================================================

type check struct {
	Selector string
	Label    string
}

type chain struct {
	Label  string
	Checks []check
}

type handler struct {
	Label string
	Macro string
}

type source struct {
	Config
	Width    uint
	Mask     string
	Slots    int
	Labels   []string
	Chains   []chain
	Handlers []handler
}

const fallbackLabel = "dispatch_fallback"

func newSource(tbl dispatch.Table, cfg Config) (source, error) {
	src := source{
		Config: cfg,
		Width:  tbl.Width,
		Mask:   fmt.Sprintf("%#x", tbl.Mask),
		Slots:  len(tbl.Slots),
	}

	seen := make(map[string]bool)
	addHandler := func(entry dispatch.Entry) (string, error) {
		macro, err := macroName(entry)
		if err != nil {
			return "", err
		}

		label := macro + "_dest"
		if !seen[macro] {
			seen[macro] = true
			src.Handlers = append(src.Handlers, handler{Label: label, Macro: macro})
		}
		return label, nil
	}

	for _, slot := range tbl.Slots {
		switch slot.Kind {
		case dispatch.Empty:
			src.Labels = append(src.Labels, fallbackLabel)

		case dispatch.Direct:
			label, err := addHandler(slot.Entries[0])
			if err != nil {
				return source{}, err
			}
			src.Labels = append(src.Labels, label)

		case dispatch.Chain:
			c := chain{Label: fmt.Sprintf("chain_%d", slot.Index)}
			for _, entry := range slot.Entries {
				label, err := addHandler(entry)
				if err != nil {
					return source{}, err
				}
				c.Checks = append(c.Checks, check{Selector: entry.Selector.String(), Label: label})
			}
			src.Labels = append(src.Labels, c.Label)
			src.Chains = append(src.Chains, c)
		}
	}

	return src, nil
}

// macroName returns the macro invoked for an entry. A function built without
// a handler carries its canonical signature, which becomes the function name
// followed by the selector digits, like transfer_a9059cbb.
func macroName(entry dispatch.Entry) (string, error) {
	h := string(entry.Handler)
	if identifier.MatchString(h) {
		return h, nil
	}

	if h != entry.Signature {
		return "", fmt.Errorf("%w: %q is not a valid macro name", ErrInvalidHandler, h)
	}

	name, _, _ := strings.Cut(entry.Signature, "(")
	name = strings.ReplaceAll(name, "$", "_")

	return fmt.Sprintf("%s_%08x", name, uint32(entry.Selector)), nil
}

var tmpl = template.Must(template.New("huff").Parse(`/// Selector dispatch: {{.Slots}} slots, mask width {{.Width}}.
/// Expects memory word 0x00 to be zero when {{.Macro}} runs.

#define jumptable__packed {{.Table}} {
{{- range .Labels}}
    {{.}}
{{- end}}
}

#define macro {{.Macro}}() = takes (0) returns (0) {
    0x00 calldataload 0xe0 shr            // [selector]
    dup1 {{.Mask}} and                        // [slot, selector]
    0x01 shl                              // [offset, selector]
    __tablestart({{.Table}}) add           // [entry, selector]
    0x02 swap1 0x1e codecopy              // [selector]
    0x00 mload jump                       // [selector]
{{range .Chains}}
    {{.Label}}:
{{- range .Checks}}
        dup1 {{.Selector}} eq {{.Label}} jumpi
{{- end}}
        ` + fallbackLabel + ` jump
{{end}}
{{- range .Handlers}}
    {{.Label}}:
        {{.Macro}}()
{{end}}
    ` + fallbackLabel + `:
        {{.Fallback}}()
}
`))
