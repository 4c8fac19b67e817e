// Package scenario holds the fixed driver scripts that exercise the traced
// value type, plus a loader for user-supplied script files.
//
// Drivers are straight-line: no branching, no loops. Their sole job is
// sequencing lifecycle calls so the resulting transcript is fully
// deterministic.
package scenario

import (
	"fmt"
	"io"
	"sort"

	"valuetrace/internal/trace"
)

// Discipline selects which assignment semantics a scenario runs under.
type Discipline string

const (
	DisciplineCopy    Discipline = "copy"
	DisciplineReplace Discipline = "replace"
)

// Scenario is one fixed driver script.
type Scenario struct {
	Name        string
	Discipline  Discipline
	Description string

	run func(sink trace.Sink, out io.Writer) error
}

// Run executes the scenario. Lifecycle events go to sink; the full transcript
// (narrator lines interleaved with event lines) goes to out when non-nil.
func (s Scenario) Run(sink trace.Sink, out io.Writer) error {
	if s.run == nil {
		return fmt.Errorf("scenario %q has no driver", s.Name)
	}
	return s.run(sink, out)
}

// Trace runs the scenario against a fresh recorder and returns its trace.
func (s Scenario) Trace() (trace.LifecycleTrace, error) {
	rec := trace.NewRecorder()
	if err := s.Run(rec, nil); err != nil {
		return trace.LifecycleTrace{}, err
	}
	return rec.Trace(s.Name), nil
}

// Lookup returns the built-in scenario with the given name.
func Lookup(name string) (Scenario, bool) {
	for _, s := range builtins {
		if s.Name == name {
			return s, true
		}
	}
	return Scenario{}, false
}

// Names returns the built-in scenario names, sorted.
func Names() []string {
	out := make([]string, len(builtins))
	for i, s := range builtins {
		out[i] = s.Name
	}
	sort.Strings(out)
	return out
}

// All returns the built-in scenarios in sorted name order.
func All() []Scenario {
	out := make([]Scenario, len(builtins))
	copy(out, builtins)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
