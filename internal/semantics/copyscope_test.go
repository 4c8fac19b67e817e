package semantics

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"valuetrace/internal/trace"
)

func copyEventLines(t *testing.T, drive func(sc *CopyScope) error) []string {
	t.Helper()
	rec := trace.NewRecorder()
	sc := NewCopyScope(rec, nil)
	if err := drive(sc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tr := rec.Trace("test")
	return tr.Lines()
}

func TestCopyScope_CopyAssign_EventSequence(t *testing.T) {
	lines := copyEventLines(t, func(sc *CopyScope) error {
		if err := sc.Declare("a", 1); err != nil {
			return err
		}
		if err := sc.Declare("b", 2); err != nil {
			return err
		}
		if err := sc.CopyAssign("a", "b"); err != nil {
			return err
		}
		return sc.Close()
	})

	expected := []string{
		"Constructing with value 1",
		"Constructing with value 2",
		"Copying value 2 over value 1",
		"Destructing value 2",
		"Destructing value 2",
	}
	assertLines(t, lines, expected)
}

func TestCopyScope_MoveAssign_EventSequence(t *testing.T) {
	lines := copyEventLines(t, func(sc *CopyScope) error {
		if err := sc.Declare("a", 1); err != nil {
			return err
		}
		if err := sc.Declare("b", 2); err != nil {
			return err
		}
		if err := sc.MoveAssign("a", "b"); err != nil {
			return err
		}
		return sc.Close()
	})

	// The moved-from slot b is still a valid instance, holding the sentinel.
	expected := []string{
		"Constructing with value 1",
		"Constructing with value 2",
		"Moving value 2 over value 1",
		"Destructing empty value",
		"Destructing value 2",
	}
	assertLines(t, lines, expected)
}

func TestCopyScope_CopyAndMoveConstruct_EventSequence(t *testing.T) {
	lines := copyEventLines(t, func(sc *CopyScope) error {
		if err := sc.Declare("a", 1); err != nil {
			return err
		}
		if err := sc.CopyConstruct("c", "a"); err != nil {
			return err
		}
		if err := sc.MoveConstruct("d", "a"); err != nil {
			return err
		}
		return sc.Close()
	})

	expected := []string{
		"Constructing with value 1",
		"Copy constructing with value 1",
		"Move constructing with value 1",
		"Destructing value 1",
		"Destructing value 1",
		"Destructing empty value",
	}
	assertLines(t, lines, expected)
}

func TestCopyScope_AssignRoundTrip(t *testing.T) {
	sc := NewCopyScope(trace.NopSink{}, nil)
	mustDeclare(t, sc.Declare("a", 1))
	mustDeclare(t, sc.Declare("b", 2))

	payload := func(name string) int {
		t.Helper()
		v, err := sc.Payload(name)
		if err != nil {
			t.Fatalf("payload %q: %v", name, err)
		}
		return v
	}

	if err := sc.CopyAssign("a", "b"); err != nil {
		t.Fatalf("copy assign: %v", err)
	}
	if got := payload("a"); got != 2 {
		t.Fatalf("target payload = %d, want 2", got)
	}
	// Source is unaffected by a copy.
	if got := payload("b"); got != 2 {
		t.Fatalf("source payload = %d, want 2", got)
	}

	if err := sc.MoveAssign("a", "b"); err != nil {
		t.Fatalf("move assign: %v", err)
	}
	if got := payload("a"); got != 2 {
		t.Fatalf("target payload = %d, want 2", got)
	}
	// Source is reset to the sentinel but remains a valid instance.
	if got := payload("b"); got != trace.Sentinel {
		t.Fatalf("moved-from payload = %d, want sentinel %d", got, trace.Sentinel)
	}
}

func TestCopyScope_TeardownIsReverseDeclarationOrder(t *testing.T) {
	rec := trace.NewRecorder()
	sc := NewCopyScope(rec, nil)
	mustDeclare(t, sc.Declare("a", 10))
	mustDeclare(t, sc.Declare("b", 20))
	mustDeclare(t, sc.Declare("c", 30))
	if err := sc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	var destructed []string
	for _, e := range rec.Snapshot() {
		if e.Kind == trace.EventDestructed {
			destructed = append(destructed, e.Slot)
		}
	}
	want := []string{"c", "b", "a"}
	if strings.Join(destructed, ",") != strings.Join(want, ",") {
		t.Fatalf("teardown order = %v, want %v", destructed, want)
	}
}

func TestCopyScope_Errors(t *testing.T) {
	sc := NewCopyScope(trace.NopSink{}, nil)
	mustDeclare(t, sc.Declare("a", 1))

	if err := sc.Declare("a", 2); !errors.Is(err, ErrDuplicateSlot) {
		t.Fatalf("expected ErrDuplicateSlot, got %v", err)
	}
	if err := sc.CopyAssign("a", "nope"); !errors.Is(err, ErrUnknownSlot) {
		t.Fatalf("expected ErrUnknownSlot, got %v", err)
	}
	if err := sc.CopyConstruct("c", "nope"); !errors.Is(err, ErrUnknownSlot) {
		t.Fatalf("expected ErrUnknownSlot, got %v", err)
	}

	if err := sc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	// A slot transitions to its terminal state exactly once per binding.
	if err := sc.Close(); !errors.Is(err, ErrScopeClosed) {
		t.Fatalf("expected ErrScopeClosed, got %v", err)
	}
	if err := sc.Declare("b", 2); !errors.Is(err, ErrScopeClosed) {
		t.Fatalf("expected ErrScopeClosed, got %v", err)
	}
	if err := sc.CopyAssign("a", "a"); !errors.Is(err, ErrScopeClosed) {
		t.Fatalf("expected ErrScopeClosed, got %v", err)
	}
}

func TestCopyScope_TranscriptInterleavesNarratorLines(t *testing.T) {
	var buf bytes.Buffer
	sc := NewCopyScope(trace.NopSink{}, &buf)
	mustDeclare(t, sc.Declare("a", 1))
	mustDeclare(t, sc.Declare("b", 2))
	if err := sc.CopyAssign("a", "b"); err != nil {
		t.Fatalf("copy assign: %v", err)
	}
	if err := sc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	expected := "-- a = TracedValue(1)\n" +
		"Constructing with value 1\n" +
		"-- b = TracedValue(2)\n" +
		"Constructing with value 2\n" +
		"-- a = b\n" +
		"Copying value 2 over value 1\n" +
		"-- end of scope\n" +
		"Destructing value 2\n" +
		"Destructing value 2\n"
	if buf.String() != expected {
		t.Fatalf("unexpected transcript\nexpected:\n%s\nactual:\n%s", expected, buf.String())
	}
}

func assertLines(t *testing.T, got, want []string) {
	t.Helper()
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Fatalf("unexpected event lines\nexpected:\n%s\nactual:\n%s",
			strings.Join(want, "\n"), strings.Join(got, "\n"))
	}
}

func mustDeclare(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("declare: %v", err)
	}
}
