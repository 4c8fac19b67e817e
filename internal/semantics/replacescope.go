package semantics

import (
	"fmt"
	"io"

	"valuetrace/internal/trace"
)

// replaceSlot carries an explicit empty marker rather than a sentinel payload:
// under this discipline a moved-from slot holds no instance at all.
type replaceSlot struct {
	name    string
	payload int
}

// ReplaceScope is one flat scope of traced values under the replace discipline.
//
// A slot holds at most one instance at a time. Assignment destroys whatever
// instance occupied the destination and relocates the source's instance into
// it; the source slot is left empty. The move itself is unobservable: it emits
// nothing, constructs nothing, destroys nothing.
//
// Close drops occupied slots in reverse declaration order; empty slots are
// skipped silently, because there is no instance to destroy.
type ReplaceScope struct {
	sink   trace.Sink
	out    io.Writer
	order  []*replaceSlot
	byName map[string]*replaceSlot
	states map[string]SlotState
	closed bool
}

// NewReplaceScope opens a scope. Events go to sink; the full transcript goes
// to out when out is non-nil.
func NewReplaceScope(sink trace.Sink, out io.Writer) *ReplaceScope {
	return &ReplaceScope{
		sink:   sink,
		out:    out,
		byName: map[string]*replaceSlot{},
		states: map[string]SlotState{},
	}
}

func (s *ReplaceScope) narrate(format string, args ...any) {
	if s.out == nil {
		return
	}
	fmt.Fprintf(s.out, "-- "+format+"\n", args...)
}

func (s *ReplaceScope) emit(ev trace.Event) {
	trace.SafeRecord(s.sink, ev)
	if s.out != nil {
		fmt.Fprintln(s.out, ev.Line())
	}
}

func (s *ReplaceScope) occupiedSlot(name string) (*replaceSlot, error) {
	sl, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSlot, name)
	}
	if s.states[name] != SlotOccupied {
		return nil, fmt.Errorf("%w: slot %q is %s, expected %s", ErrSlotState, name, s.states[name], SlotOccupied)
	}
	return sl, nil
}

// bindTarget makes name an occupied slot holding payload, destroying whatever
// instance occupied it before. The drop of the old instance is the only
// emitted line, and it precedes the logical move-in.
func (s *ReplaceScope) bindTarget(name string, payload int) error {
	sl, exists := s.byName[name]
	if !exists {
		s.states[name] = SlotEmpty
		sl = &replaceSlot{name: name}
		s.byName[name] = sl
		s.order = append(s.order, sl)
	}
	switch s.states[name] {
	case SlotOccupied:
		s.emit(trace.Event{Kind: trace.EventDropped, Slot: name, Payload: sl.payload})
		if err := transition(s.states, name, SlotOccupied, SlotOccupied, isAllowedReplaceTransition); err != nil {
			return err
		}
	case SlotEmpty:
		if err := transition(s.states, name, SlotEmpty, SlotOccupied, isAllowedReplaceTransition); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: slot %q is %s", ErrSlotState, name, s.states[name])
	}
	sl.payload = payload
	return nil
}

// Declare binds a new slot to a freshly constructed instance.
func (s *ReplaceScope) Declare(name string, payload int) error {
	if s.closed {
		return ErrScopeClosed
	}
	s.narrate("%s = TracedValue(%d)", name, payload)
	if _, exists := s.byName[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateSlot, name)
	}
	s.states[name] = SlotEmpty
	if err := transition(s.states, name, SlotEmpty, SlotOccupied, isAllowedReplaceTransition); err != nil {
		return err
	}
	sl := &replaceSlot{name: name, payload: payload}
	s.byName[name] = sl
	s.order = append(s.order, sl)
	s.emit(trace.Event{Kind: trace.EventConstructed, Slot: name, Payload: payload})
	return nil
}

// Clone duplicates src's instance into target. The clone is a new instance
// (emitted first); binding it over target then drops target's old instance,
// if any. The source is unaffected.
func (s *ReplaceScope) Clone(target, src string) error {
	if s.closed {
		return ErrScopeClosed
	}
	s.narrate("%s = clone(%s)", target, src)
	from, err := s.occupiedSlot(src)
	if err != nil {
		return err
	}
	payload := from.payload
	s.emit(trace.Event{Kind: trace.EventCloned, Slot: target, Payload: payload})
	return s.bindTarget(target, payload)
}

// Replace moves src's instance into target. Target's old instance, if any, is
// destroyed first; the move itself is silent and leaves src empty.
func (s *ReplaceScope) Replace(target, src string) error {
	if s.closed {
		return ErrScopeClosed
	}
	if target == src {
		return fmt.Errorf("%w: slot %q cannot be moved into itself", ErrSlotState, target)
	}
	s.narrate("%s = move(%s)", target, src)
	from, err := s.occupiedSlot(src)
	if err != nil {
		return err
	}
	payload := from.payload
	// Silent move-out: the source slot holds no instance from here on.
	if err := transition(s.states, src, SlotOccupied, SlotEmpty, isAllowedReplaceTransition); err != nil {
		return err
	}
	return s.bindTarget(target, payload)
}

// Payload reports an occupied slot's current payload.
func (s *ReplaceScope) Payload(name string) (int, error) {
	sl, err := s.occupiedSlot(name)
	if err != nil {
		return 0, err
	}
	return sl.payload, nil
}

// Close drops every occupied slot in reverse declaration order and seals the
// scope. Empty slots are skipped: they hold no instance to destroy.
func (s *ReplaceScope) Close() error {
	if s.closed {
		return ErrScopeClosed
	}
	s.narrate("end of scope")
	for i := len(s.order) - 1; i >= 0; i-- {
		sl := s.order[i]
		if s.states[sl.name] != SlotOccupied {
			continue
		}
		if err := transition(s.states, sl.name, SlotOccupied, SlotEmpty, isAllowedReplaceTransition); err != nil {
			return err
		}
		s.emit(trace.Event{Kind: trace.EventDropped, Slot: sl.name, Payload: sl.payload})
	}
	s.closed = true
	return nil
}
