package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ardanlabs/dispatch/foundation/dispatch"
	"github.com/ardanlabs/dispatch/foundation/selector"
	"github.com/tailscale/hujson"
)

// Manifest is the set of functions a table is built from. The file may
// hold comments and trailing commas.
type Manifest struct {
	Functions []dispatch.Function `json:"functions"`
}

// LoadManifest reads and decodes the manifest at path.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("reading manifest: %w", err)
	}

	return ParseManifest(data)
}

// ParseManifest decodes a manifest document.
func ParseManifest(data []byte) (Manifest, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return Manifest{}, fmt.Errorf("parsing manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(std, &m); err != nil {
		return Manifest{}, fmt.Errorf("decoding manifest: %w", err)
	}

	return m, nil
}

// dropMalformed returns the functions whose signatures canonicalize,
// logging a warning for each one that doesn't.
func (m Manifest) dropMalformed() []dispatch.Function {
	fns := make([]dispatch.Function, 0, len(m.Functions))
	for i, fn := range m.Functions {
		if _, err := selector.Canonicalize(fn.Signature); err != nil {
			log.Warnw("manifest", "status", "skipping function", "index", i, "ERROR", err)
			continue
		}
		fns = append(fns, fn)
	}
	return fns
}
