// Package nameservice reads a folder of signature files and creates a name
// service lookup for selectors. Each file with the .sigs extension holds one
// function signature per line. Blank lines and lines starting with # are
// ignored.
package nameservice

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ardanlabs/dispatch/foundation/selector"
)

// NameService maintains a map of selectors for name lookup. Distinct
// signatures can share a selector so every one is kept.
type NameService struct {
	names map[selector.Selector][]string
}

// New constructs a name service with the signatures from the root folder.
// An empty root produces an empty name service.
func New(root string) (*NameService, error) {
	ns := NameService{
		names: make(map[selector.Selector][]string),
	}

	if root == "" {
		return &ns, nil
	}

	fn := func(fileName string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if path.Ext(fileName) != ".sigs" {
			return nil
		}

		return ns.load(fileName)
	}

	if err := filepath.Walk(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

func (ns *NameService) load(fileName string) error {
	f, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		sel, canonical, err := selector.FromSignature(line)
		if err != nil {
			return fmt.Errorf("%s:%d: %w", fileName, n, err)
		}

		if !slices.Contains(ns.names[sel], canonical) {
			ns.names[sel] = append(ns.names[sel], canonical)
			slices.Sort(ns.names[sel])
		}
	}

	return scanner.Err()
}

// Lookup returns the known signatures for the specified selector.
func (ns *NameService) Lookup(sel selector.Selector) []string {
	return slices.Clone(ns.names[sel])
}

// Len returns the number of known selectors.
func (ns *NameService) Len() int {
	return len(ns.names)
}
