// Package dispatch builds the selector jump tables used to route calls to
// the handler that implements a function. A table has 2^k slots and a
// selector lands in the slot named by its k low bits. Slots that more than
// one selector lands in hold a chain that is checked in order.
package dispatch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ardanlabs/dispatch/foundation/selector"
)

// Set of errors returned when building a table.
var (
	ErrDuplicateSignature     = errors.New("duplicate signature")
	ErrDuplicateSelector      = errors.New("duplicate selector")
	ErrInvalidConfig          = errors.New("invalid config")
	ErrTooManyFunctions       = errors.New("too many functions")
	ErrThresholdUnsatisfiable = errors.New("chain threshold unsatisfiable")
)

// MaxWidth is the largest mask width a table can be built with. A jump
// table of 2^16 two byte entries is already larger than any deployable
// contract.
const MaxWidth = 16

// Default search settings.
const (
	DefaultThreshold = 2
	DefaultHeadroom  = 4
)

// =============================================================================

// Handler identifies the code that implements a function. It is owned by
// the caller and never interpreted here.
type Handler string

// Function binds a signature to the handler that implements it.
type Function struct {
	Signature string  `json:"signature"`
	Handler   Handler `json:"handler,omitempty"`
}

// Config controls the search for a mask width.
type Config struct {
	Threshold int // Longest acceptable chain.
	Headroom  int // Extra bits tried past the minimum width.
}

// DefaultConfig returns the default search settings.
func DefaultConfig() Config {
	return Config{
		Threshold: DefaultThreshold,
		Headroom:  DefaultHeadroom,
	}
}

// Validate checks the config values are usable.
func (cfg Config) Validate() error {
	if cfg.Threshold < 1 {
		return fmt.Errorf("%w: threshold %d must be at least 1", ErrInvalidConfig, cfg.Threshold)
	}

	if cfg.Headroom < 0 {
		return fmt.Errorf("%w: headroom %d can't be negative", ErrInvalidConfig, cfg.Headroom)
	}

	return nil
}

// =============================================================================

// Kind describes how a slot resolves a selector.
type Kind uint8

// Set of slot kinds.
const (
	Empty Kind = iota
	Direct
	Chain
)

var kindNames = map[Kind]string{
	Empty:  "EMPTY",
	Direct: "DIRECT",
	Chain:  "CHAIN",
}

// String returns the name of the kind.
func (k Kind) String() string {
	if name, exists := kindNames[k]; exists {
		return name
	}
	return fmt.Sprintf("KIND(%d)", uint8(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if _, exists := kindNames[k]; !exists {
		return nil, fmt.Errorf("unknown slot kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(data []byte) error {
	for kind, name := range kindNames {
		if strings.EqualFold(name, string(data)) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown slot kind %q", data)
}

// =============================================================================

// Entry is one function placed in a slot.
type Entry struct {
	Selector  selector.Selector `json:"selector"`
	Signature string            `json:"signature"`
	Handler   Handler           `json:"handler"`
}

// Slot is one position in the jump table. An empty slot has no entries, a
// direct slot has exactly one and a chain holds two or more in ascending
// selector order.
type Slot struct {
	Index   uint32  `json:"index"`
	Kind    Kind    `json:"kind"`
	Entries []Entry `json:"entries,omitempty"`
}

// Resolution describes the path a selector takes through the table.
type Resolution struct {
	Selector  selector.Selector `json:"selector"`
	Signature string            `json:"signature"`
	Handler   Handler           `json:"handler"`
	Slot      uint32            `json:"slot"`
	Kind      Kind              `json:"kind"`
	Position  int               `json:"position"`
}
