package semantics

import (
	"errors"
	"fmt"
)

// SlotState is the lifecycle state of one storage slot.
//
// The copy discipline uses UNINITIALIZED -> VALID -> DESTRUCTED; assignment
// keeps a slot VALID. The replace discipline uses EMPTY <-> OCCUPIED; a move
// out of a slot is a silent OCCUPIED -> EMPTY.
type SlotState string

const (
	SlotUninitialized SlotState = "UNINITIALIZED"
	SlotValid         SlotState = "VALID"
	SlotDestructed    SlotState = "DESTRUCTED"

	SlotEmpty    SlotState = "EMPTY"
	SlotOccupied SlotState = "OCCUPIED"
)

var (
	ErrUnknownSlot   = errors.New("unknown slot")
	ErrDuplicateSlot = errors.New("duplicate slot")
	ErrScopeClosed   = errors.New("scope already closed")
	ErrSlotState     = errors.New("disallowed slot transition")
)

// transition performs an atomic validated transition for a single slot.
//
// The caller supplies the expected prior state (from) so that illegal call
// sequences are observable as errors. The state map is mutated if and only if
// the transition is valid under the supplied discipline rules.
func transition(states map[string]SlotState, slot string, from, to SlotState, allowed func(from, to SlotState) bool) error {
	cur, ok := states[slot]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSlot, slot)
	}
	if cur != from {
		return fmt.Errorf("%w: slot %q is %s, expected %s", ErrSlotState, slot, cur, from)
	}
	if !allowed(from, to) {
		return fmt.Errorf("%w: slot %q cannot go %s -> %s", ErrSlotState, slot, from, to)
	}
	states[slot] = to
	return nil
}

func isAllowedCopyTransition(from, to SlotState) bool {
	switch from {
	case SlotUninitialized:
		return to == SlotValid
	case SlotValid:
		return to == SlotValid || to == SlotDestructed
	default:
		// DESTRUCTED is terminal.
		return false
	}
}

func isAllowedReplaceTransition(from, to SlotState) bool {
	switch from {
	case SlotEmpty:
		return to == SlotOccupied
	case SlotOccupied:
		// OCCUPIED -> OCCUPIED is a replace-over; OCCUPIED -> EMPTY is a
		// silent move-out or the drop at scope teardown.
		return to == SlotOccupied || to == SlotEmpty
	default:
		return false
	}
}
