package tablegrp

import (
	"github.com/ardanlabs/dispatch/foundation/dispatch"
	"github.com/ardanlabs/dispatch/foundation/selector"
)

// SelectorsRequest is the set of signatures to compute selectors for.
type SelectorsRequest struct {
	Signatures []string `json:"signatures" validate:"required,min=1,max=4096"`
}

// SelectorInfo is the result for one signature. A signature that can't be
// parsed reports the error, has no selector and doesn't stop the others.
type SelectorInfo struct {
	Input     string             `json:"input"`
	Canonical string             `json:"canonical,omitempty"`
	Selector  *selector.Selector `json:"selector,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// Function binds a signature to a handler reference.
type Function struct {
	Signature string `json:"signature" validate:"required,signature"`
	Handler   string `json:"handler,omitempty" validate:"omitempty,max=128"`
}

// BuildRequest is the set of functions to build a table for. Threshold and
// Headroom override the service defaults. A Width skips the search.
type BuildRequest struct {
	Functions []Function `json:"functions" validate:"max=65536,dive"`
	Width     *uint      `json:"width,omitempty" validate:"omitempty,max=16"`
	Threshold *int       `json:"threshold,omitempty" validate:"omitempty,min=1"`
	Headroom  *int       `json:"headroom,omitempty" validate:"omitempty,min=0,max=16"`
}

// BuildResponse is a built table with its digest and any warning.
type BuildResponse struct {
	Digest  string         `json:"digest"`
	Warning string         `json:"warning,omitempty"`
	Table   dispatch.Table `json:"table"`
}

// LookupResponse describes where a selector is routed.
type LookupResponse struct {
	Selector selector.Selector `json:"selector"`
	Slot     uint32            `json:"slot"`
	Kind     dispatch.Kind     `json:"kind"`
	Handler  dispatch.Handler  `json:"handler,omitempty"`
	Found    bool              `json:"found"`
	Known    []string          `json:"known,omitempty"`
}

// NamesResponse lists the known signatures for a selector.
type NamesResponse struct {
	Selector   selector.Selector `json:"selector"`
	Signatures []string          `json:"signatures"`
}

// =============================================================================

func toFunctions(fns []Function) []dispatch.Function {
	out := make([]dispatch.Function, len(fns))
	for i, fn := range fns {
		out[i] = dispatch.Function{
			Signature: fn.Signature,
			Handler:   dispatch.Handler(fn.Handler),
		}
	}
	return out
}
