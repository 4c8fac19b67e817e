package trace

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// LifecycleTrace is the canonical, deterministic record of one scenario run.
//
// Invariants:
//   - Must capture the scenario name and the ordered list of lifecycle events.
//   - Must contain logical lifecycle transitions only, no runtime-dependent details.
//   - Must not include timestamps, pointers, or any runtime-dependent values.
//
// Unlike a trace of concurrent work, emission ORDER is the observable here:
// the two assignment disciplines are told apart purely by which events appear
// in which sequence. Canonical form therefore preserves insertion order; there
// is no sorting step.
//
// The trace is observational only and must never affect scenario behavior.
//
// IMPORTANT: This is the source of truth for "what happened"; byte-for-byte
// stability of the canonical encoding is required.
type LifecycleTrace struct {
	Scenario string
	Events   []Event
}

// Kind is the stable, canonical discriminator for Event.
//
// The string values are part of the trace's canonical bytes; do not rename.
type Kind string

const (
	// Copy-discipline kinds.
	EventConstructed     Kind = "Constructed"
	EventCopyConstructed Kind = "CopyConstructed"
	EventMoveConstructed Kind = "MoveConstructed"
	EventCopyAssigned    Kind = "CopyAssigned"
	EventMoveAssigned    Kind = "MoveAssigned"
	EventDestructed      Kind = "Destructed"

	// Replace-discipline kinds. Constructed is shared; a move between slots is
	// silent in this discipline and has no kind at all.
	EventCloned  Kind = "Cloned"
	EventDropped Kind = "Dropped"
)

// Sentinel is the payload left behind in a moved-from instance under the copy
// discipline. A Destructed event carrying it renders as "Destructing empty value".
const Sentinel = 0

// Event is a single lifecycle event of one value instance.
//
// Determinism constraints:
//   - No timestamps.
//   - No fields derived from pointer identity or map iteration.
//
// Payload is the value carried by the instance the event is about: the payload
// being constructed, cloned, assigned from, or destroyed. OldPayload is set only
// for assignment kinds and holds the target's payload read before mutation.
type Event struct {
	Kind Kind

	// Slot is the declared storage-slot name the event refers to. For
	// assignment kinds it names the target slot.
	Slot string

	Payload    int
	OldPayload int
}

// Line renders the event in the exact transcript wording the scenarios print.
func (e Event) Line() string {
	switch e.Kind {
	case EventConstructed:
		return fmt.Sprintf("Constructing with value %d", e.Payload)
	case EventCopyConstructed:
		return fmt.Sprintf("Copy constructing with value %d", e.Payload)
	case EventMoveConstructed:
		return fmt.Sprintf("Move constructing with value %d", e.Payload)
	case EventCopyAssigned:
		return fmt.Sprintf("Copying value %d over value %d", e.Payload, e.OldPayload)
	case EventMoveAssigned:
		return fmt.Sprintf("Moving value %d over value %d", e.Payload, e.OldPayload)
	case EventDestructed:
		if e.Payload == Sentinel {
			return "Destructing empty value"
		}
		return fmt.Sprintf("Destructing value %d", e.Payload)
	case EventCloned:
		return fmt.Sprintf("Cloning with value %d", e.Payload)
	case EventDropped:
		return fmt.Sprintf("Dropping value %d", e.Payload)
	default:
		return fmt.Sprintf("Unknown event %q", string(e.Kind))
	}
}

func isAssignmentKind(k Kind) bool {
	return k == EventCopyAssigned || k == EventMoveAssigned
}

func isKnownKind(k Kind) bool {
	switch k {
	case EventConstructed, EventCopyConstructed, EventMoveConstructed,
		EventCopyAssigned, EventMoveAssigned, EventDestructed,
		EventCloned, EventDropped:
		return true
	default:
		return false
	}
}

// Validate checks basic invariants and returns a descriptive error.
func (t *LifecycleTrace) Validate() error {
	if t == nil {
		return errors.New("trace is nil")
	}
	if t.Scenario == "" {
		return errors.New("scenario is required")
	}
	for i := range t.Events {
		e := t.Events[i]
		if e.Kind == "" {
			return fmt.Errorf("events[%d].kind is required", i)
		}
		if !isKnownKind(e.Kind) {
			return fmt.Errorf("events[%d].kind %q is unknown", i, e.Kind)
		}
		if e.Slot == "" {
			return fmt.Errorf("events[%d].slot is required", i)
		}
		if e.OldPayload != 0 && !isAssignmentKind(e.Kind) {
			return fmt.Errorf("events[%d].oldPayload is only valid for assignment kinds", i)
		}
	}
	return nil
}

// Lines returns the transcript wording of every event, in emission order.
func (t *LifecycleTrace) Lines() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.Events))
	for i, e := range t.Events {
		out[i] = e.Line()
	}
	return out
}

// Transcript returns the event lines joined with newlines, trailing newline included.
func (t *LifecycleTrace) Transcript() string {
	lines := t.Lines()
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// CanonicalJSON returns the canonical JSON encoding of the trace.
//
// Field order is fixed by hand-rolled marshalers and event order is the
// emission order, so equal traces produce identical bytes.
func (t LifecycleTrace) CanonicalJSON() ([]byte, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(&t)
}

// Hash returns the deterministic trace hash (sha256 hex) of the canonical JSON bytes.
func (t LifecycleTrace) Hash() (string, error) {
	b, err := t.CanonicalJSON()
	if err != nil {
		return "", err
	}
	return ComputeTraceHash(b), nil
}

// MarshalJSON ensures canonical field ordering.
func (t LifecycleTrace) MarshalJSON() ([]byte, error) {
	if t.Scenario == "" {
		return nil, errors.New("scenario is required")
	}
	var buf bytes.Buffer
	buf.WriteByte('{')

	buf.WriteString("\"scenario\":")
	sb, _ := json.Marshal(t.Scenario)
	buf.Write(sb)
	buf.WriteByte(',')

	buf.WriteString("\"events\":[")
	for i := range t.Events {
		if i > 0 {
			buf.WriteByte(',')
		}
		eb, err := json.Marshal(t.Events[i])
		if err != nil {
			return nil, err
		}
		buf.Write(eb)
	}
	buf.WriteByte(']')

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON ensures canonical field ordering and omission of the optional
// oldPayload field on non-assignment kinds.
func (e Event) MarshalJSON() ([]byte, error) {
	if e.Kind == "" {
		return nil, errors.New("kind is required")
	}

	var buf bytes.Buffer
	buf.WriteByte('{')

	// kind (always first)
	buf.WriteString("\"kind\":")
	kb, _ := json.Marshal(string(e.Kind))
	buf.Write(kb)

	buf.WriteByte(',')
	buf.WriteString("\"slot\":")
	sb, _ := json.Marshal(e.Slot)
	buf.Write(sb)

	buf.WriteByte(',')
	fmt.Fprintf(&buf, "\"payload\":%d", e.Payload)

	if isAssignmentKind(e.Kind) {
		buf.WriteByte(',')
		fmt.Fprintf(&buf, "\"oldPayload\":%d", e.OldPayload)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
