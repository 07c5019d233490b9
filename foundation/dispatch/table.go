package dispatch

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ardanlabs/dispatch/foundation/selector"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Table is a built jump table. A table is never modified once built and is
// safe to read from multiple goroutines.
type Table struct {
	Width       uint         `json:"width"`
	Mask        uint32       `json:"mask"`
	Slots       []Slot       `json:"slots"`
	Resolutions []Resolution `json:"resolutions"`
	Search      Search       `json:"search"`
}

// Build canonicalizes the signatures, searches for a mask width and lays
// out the table. Building the same set of functions always produces the
// same table regardless of the order they are provided in.
func Build(fns []Function, cfg Config) (Table, error) {
	entries, err := prepare(fns)
	if err != nil {
		return Table{}, err
	}

	search, err := SearchWidth(selectors(entries), cfg)
	if err != nil {
		return Table{}, err
	}

	return layout(entries, search), nil
}

// BuildWithWidth lays out the table using the specified mask width instead
// of searching for one. The threshold in the config is only used to report
// whether the chains at this width are acceptable.
func BuildWithWidth(fns []Function, width uint, cfg Config) (Table, error) {
	if err := cfg.Validate(); err != nil {
		return Table{}, err
	}

	if width > MaxWidth {
		return Table{}, fmt.Errorf("%w: width %d is larger than %d", ErrInvalidConfig, width, MaxWidth)
	}

	entries, err := prepare(fns)
	if err != nil {
		return Table{}, err
	}

	return layout(entries, measure(selectors(entries), width, cfg.Threshold)), nil
}

// Warning returns a non-nil error wrapping ErrThresholdUnsatisfiable when
// the table has chains longer than the threshold it was built with. The
// table is still usable.
func (t Table) Warning() error {
	if t.Search.Satisfied {
		return nil
	}

	return fmt.Errorf("%w: width %d has chains of %d, threshold is %d", ErrThresholdUnsatisfiable, t.Width, t.Search.MaxChain, t.Search.Threshold)
}

// Size returns the number of slots in the table.
func (t Table) Size() int {
	return len(t.Slots)
}

// Collisions returns the number of slots that hold a chain.
func (t Table) Collisions() int {
	var n int
	for _, slot := range t.Slots {
		if slot.Kind == Chain {
			n++
		}
	}
	return n
}

// Digest returns the keccak-256 hash of the table's JSON encoding. Tables
// built from the same functions and width share a digest.
func (t Table) Digest() (string, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("encoding table: %w", err)
	}

	return hexutil.Encode(crypto.Keccak256(data)), nil
}

// =============================================================================

// prepare canonicalizes and hashes every function and returns the entries
// sorted by selector.
func prepare(fns []Function) ([]Entry, error) {
	bySignature := make(map[string]int, len(fns))
	bySelector := make(map[selector.Selector]int, len(fns))

	entries := make([]Entry, 0, len(fns))
	for i, fn := range fns {
		sel, canonical, err := selector.FromSignature(fn.Signature)
		if err != nil {
			return nil, fmt.Errorf("function %d: %w", i, err)
		}

		if prev, exists := bySignature[canonical]; exists {
			return nil, fmt.Errorf("%w: functions %d and %d are both %s", ErrDuplicateSignature, prev, i, canonical)
		}
		bySignature[canonical] = i

		if prev, exists := bySelector[sel]; exists {
			return nil, fmt.Errorf("%w: functions %d (%s) and %d (%s) share %s", ErrDuplicateSelector, prev, entries[prev].Signature, i, canonical, sel)
		}
		bySelector[sel] = i

		handler := fn.Handler
		if handler == "" {
			handler = Handler(canonical)
		}

		entries = append(entries, Entry{
			Selector:  sel,
			Signature: canonical,
			Handler:   handler,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Selector < entries[j].Selector
	})

	return entries, nil
}

// layout places the sorted entries into the slots for the searched width.
func layout(entries []Entry, search Search) Table {
	slots := make([]Slot, 1<<search.Width)
	for i := range slots {
		slots[i] = Slot{Index: uint32(i), Kind: Empty}
	}

	for _, entry := range entries {
		idx := SlotIndex(entry.Selector, search.Mask)
		slots[idx].Entries = append(slots[idx].Entries, entry)
	}

	for i := range slots {
		switch len(slots[i].Entries) {
		case 0:
		case 1:
			slots[i].Kind = Direct
		default:
			slots[i].Kind = Chain
		}
	}

	resolutions := make([]Resolution, 0, len(entries))
	for _, slot := range slots {
		for pos, entry := range slot.Entries {
			resolutions = append(resolutions, Resolution{
				Selector:  entry.Selector,
				Signature: entry.Signature,
				Handler:   entry.Handler,
				Slot:      slot.Index,
				Kind:      slot.Kind,
				Position:  pos,
			})
		}
	}

	sort.Slice(resolutions, func(i, j int) bool {
		return resolutions[i].Selector < resolutions[j].Selector
	})

	return Table{
		Width:       search.Width,
		Mask:        search.Mask,
		Slots:       slots,
		Resolutions: resolutions,
		Search:      search,
	}
}

func selectors(entries []Entry) []selector.Selector {
	sels := make([]selector.Selector, len(entries))
	for i, entry := range entries {
		sels[i] = entry.Selector
	}
	return sels
}
