package semantics

import (
	"fmt"
	"io"

	"valuetrace/internal/trace"
)

type copySlot struct {
	name    string
	payload int
}

// CopyScope is one flat scope of traced values under the copy discipline.
//
// Every declared slot holds a valid instance from construction until Close;
// assignment mutates the destination in place and never creates or destroys
// an instance. A move leaves the source a valid instance holding the
// sentinel payload.
//
// Close destroys live slots in reverse declaration order, matching
// block-scoped teardown.
type CopyScope struct {
	sink   trace.Sink
	out    io.Writer // optional transcript writer; narrator + event lines
	order  []*copySlot
	byName map[string]*copySlot
	states map[string]SlotState
	closed bool
}

// NewCopyScope opens a scope. Events go to sink; the full transcript
// (narrator lines followed by event lines) goes to out when out is non-nil.
func NewCopyScope(sink trace.Sink, out io.Writer) *CopyScope {
	return &CopyScope{
		sink:   sink,
		out:    out,
		byName: map[string]*copySlot{},
		states: map[string]SlotState{},
	}
}

func (s *CopyScope) narrate(format string, args ...any) {
	if s.out == nil {
		return
	}
	fmt.Fprintf(s.out, "-- "+format+"\n", args...)
}

func (s *CopyScope) emit(ev trace.Event) {
	trace.SafeRecord(s.sink, ev)
	if s.out != nil {
		fmt.Fprintln(s.out, ev.Line())
	}
}

func (s *CopyScope) slot(name string) (*copySlot, error) {
	sl, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSlot, name)
	}
	return sl, nil
}

func (s *CopyScope) declare(name string, payload int) (*copySlot, error) {
	if s.closed {
		return nil, ErrScopeClosed
	}
	if _, exists := s.byName[name]; exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateSlot, name)
	}
	s.states[name] = SlotUninitialized
	if err := transition(s.states, name, SlotUninitialized, SlotValid, isAllowedCopyTransition); err != nil {
		return nil, err
	}
	sl := &copySlot{name: name, payload: payload}
	s.byName[name] = sl
	s.order = append(s.order, sl)
	return sl, nil
}

// Declare binds a new slot to a freshly constructed instance.
func (s *CopyScope) Declare(name string, payload int) error {
	s.narrate("%s = TracedValue(%d)", name, payload)
	sl, err := s.declare(name, payload)
	if err != nil {
		return err
	}
	s.emit(trace.Event{Kind: trace.EventConstructed, Slot: sl.name, Payload: sl.payload})
	return nil
}

// CopyConstruct binds a new slot to a duplicate of src's current payload.
// The source instance is unaffected.
func (s *CopyScope) CopyConstruct(name, src string) error {
	s.narrate("%s = copy(%s)", name, src)
	from, err := s.liveSlot(src)
	if err != nil {
		return err
	}
	sl, err := s.declare(name, from.payload)
	if err != nil {
		return err
	}
	s.emit(trace.Event{Kind: trace.EventCopyConstructed, Slot: sl.name, Payload: sl.payload})
	return nil
}

// MoveConstruct binds a new slot to src's current payload and resets src to
// the sentinel. src remains a valid (empty) instance.
func (s *CopyScope) MoveConstruct(name, src string) error {
	s.narrate("%s = move(%s)", name, src)
	from, err := s.liveSlot(src)
	if err != nil {
		return err
	}
	sl, err := s.declare(name, from.payload)
	if err != nil {
		return err
	}
	from.payload = trace.Sentinel
	s.emit(trace.Event{Kind: trace.EventMoveConstructed, Slot: sl.name, Payload: sl.payload})
	return nil
}

// CopyAssign mutates target's payload to src's current payload. The target's
// identity (storage slot) is unchanged; no instance is created or destroyed.
func (s *CopyScope) CopyAssign(target, src string) error {
	s.narrate("%s = %s", target, src)
	dst, from, err := s.assignPair(target, src)
	if err != nil {
		return err
	}
	// Payloads are read before mutation.
	s.emit(trace.Event{Kind: trace.EventCopyAssigned, Slot: dst.name, Payload: from.payload, OldPayload: dst.payload})
	dst.payload = from.payload
	return nil
}

// MoveAssign mutates target's payload to src's current payload and resets src
// to the sentinel. Both remain valid instances afterward.
func (s *CopyScope) MoveAssign(target, src string) error {
	s.narrate("%s = move(%s)", target, src)
	dst, from, err := s.assignPair(target, src)
	if err != nil {
		return err
	}
	s.emit(trace.Event{Kind: trace.EventMoveAssigned, Slot: dst.name, Payload: from.payload, OldPayload: dst.payload})
	dst.payload = from.payload
	from.payload = trace.Sentinel
	return nil
}

func (s *CopyScope) assignPair(target, src string) (dst, from *copySlot, err error) {
	if s.closed {
		return nil, nil, ErrScopeClosed
	}
	if dst, err = s.liveSlot(target); err != nil {
		return nil, nil, err
	}
	if from, err = s.liveSlot(src); err != nil {
		return nil, nil, err
	}
	if err = transition(s.states, target, SlotValid, SlotValid, isAllowedCopyTransition); err != nil {
		return nil, nil, err
	}
	return dst, from, nil
}

func (s *CopyScope) liveSlot(name string) (*copySlot, error) {
	sl, err := s.slot(name)
	if err != nil {
		return nil, err
	}
	if s.states[name] != SlotValid {
		return nil, fmt.Errorf("%w: slot %q is %s, expected %s", ErrSlotState, name, s.states[name], SlotValid)
	}
	return sl, nil
}

// Payload reports a live slot's current payload.
func (s *CopyScope) Payload(name string) (int, error) {
	sl, err := s.liveSlot(name)
	if err != nil {
		return 0, err
	}
	return sl.payload, nil
}

// Close destroys every live slot in reverse declaration order and seals the
// scope. Each destruction is emitted once; a second Close is an error.
func (s *CopyScope) Close() error {
	if s.closed {
		return ErrScopeClosed
	}
	s.narrate("end of scope")
	for i := len(s.order) - 1; i >= 0; i-- {
		sl := s.order[i]
		if err := transition(s.states, sl.name, SlotValid, SlotDestructed, isAllowedCopyTransition); err != nil {
			return err
		}
		s.emit(trace.Event{Kind: trace.EventDestructed, Slot: sl.name, Payload: sl.payload})
	}
	s.closed = true
	return nil
}
