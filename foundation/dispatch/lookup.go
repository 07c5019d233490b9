package dispatch

import "github.com/ardanlabs/dispatch/foundation/selector"

// Lookup returns the handler a call with the selector is routed to. A direct
// slot returns its handler without checking the selector, the same way the
// generated jump table does, so an unknown selector landing in a direct
// slot is routed to that slot's handler. A chain is checked in order and
// the first exact match wins. The bool is false when the call falls through
// to the fallback.
func (t Table) Lookup(sel selector.Selector) (Handler, bool) {
	slot, ok := t.slot(sel)
	if !ok {
		return "", false
	}

	switch slot.Kind {
	case Direct:
		return slot.Entries[0].Handler, true

	case Chain:
		for _, entry := range slot.Entries {
			if entry.Selector == sel {
				return entry.Handler, true
			}
		}
	}

	return "", false
}

// LookupStrict is like Lookup but also checks the selector of a direct slot,
// so only known selectors ever resolve to a handler.
func (t Table) LookupStrict(sel selector.Selector) (Handler, bool) {
	res, ok := t.Resolve(sel)
	if !ok {
		return "", false
	}
	return res.Handler, true
}

// Resolve returns the path a known selector takes through the table.
func (t Table) Resolve(sel selector.Selector) (Resolution, bool) {
	slot, ok := t.slot(sel)
	if !ok {
		return Resolution{}, false
	}

	for pos, entry := range slot.Entries {
		if entry.Selector == sel {
			return Resolution{
				Selector:  entry.Selector,
				Signature: entry.Signature,
				Handler:   entry.Handler,
				Slot:      slot.Index,
				Kind:      slot.Kind,
				Position:  pos,
			}, true
		}
	}

	return Resolution{}, false
}

func (t Table) slot(sel selector.Selector) (Slot, bool) {
	idx := SlotIndex(sel, t.Mask)
	if int(idx) >= len(t.Slots) {
		return Slot{}, false
	}
	return t.Slots[idx], true
}
