package dispatch

import (
	"fmt"
	"math/bits"

	"github.com/ardanlabs/dispatch/foundation/selector"
)

// Search reports the mask width picked for a set of selectors and the
// chain lengths it produces.
type Search struct {
	Width     uint        `json:"width"`
	Mask      uint32      `json:"mask"`
	MaxChain  int         `json:"max_chain"`
	Threshold int         `json:"threshold"`
	Satisfied bool        `json:"satisfied"`
	Occupancy map[int]int `json:"occupancy"`
}

// SearchWidth picks the mask width for the selectors. Widths are tried from
// the smallest table that can hold every selector up to Headroom more bits.
// The first width whose longest chain is within the threshold wins. When no
// width qualifies, the width with the shortest longest chain is used, the
// smaller width winning a tie, and the search is marked unsatisfied.
func SearchWidth(sels []selector.Selector, cfg Config) (Search, error) {
	if err := cfg.Validate(); err != nil {
		return Search{}, err
	}

	lo := minWidth(len(sels))
	if lo > MaxWidth {
		return Search{}, fmt.Errorf("%w: %d selectors need more than %d bits", ErrTooManyFunctions, len(sels), MaxWidth)
	}
	hi := min(lo+uint(cfg.Headroom), MaxWidth)

	var best Search
	for width := lo; width <= hi; width++ {
		s := measure(sels, width, cfg.Threshold)
		if s.Satisfied {
			return s, nil
		}

		if width == lo || s.MaxChain < best.MaxChain {
			best = s
		}
	}

	return best, nil
}

// Mask returns the slot mask for the width.
func Mask(width uint) uint32 {
	return uint32(1)<<width - 1
}

// SlotIndex returns the slot a selector lands in for the mask.
func SlotIndex(sel selector.Selector, mask uint32) uint32 {
	return uint32(sel) & mask
}

// =============================================================================

// minWidth returns ceil(log2(n)), the fewest bits that give every selector
// its own slot when there are no collisions.
func minWidth(n int) uint {
	if n <= 1 {
		return 0
	}
	return uint(bits.Len(uint(n - 1)))
}

// measure computes the slot occupancy for the selectors at the width.
func measure(sels []selector.Selector, width uint, threshold int) Search {
	mask := Mask(width)

	counts := make([]int, 1<<width)
	for _, sel := range sels {
		counts[SlotIndex(sel, mask)]++
	}

	occupancy := make(map[int]int)
	var maxChain int
	for _, n := range counts {
		occupancy[n]++
		maxChain = max(maxChain, n)
	}

	return Search{
		Width:     width,
		Mask:      mask,
		MaxChain:  maxChain,
		Threshold: threshold,
		Satisfied: maxChain <= threshold,
		Occupancy: occupancy,
	}
}
