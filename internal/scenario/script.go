package scenario

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"valuetrace/internal/semantics"
	"valuetrace/internal/trace"
)

// ErrInvalidScript wraps deterministic script validation failures.
var ErrInvalidScript = errors.New("invalid scenario script")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidScript, fmt.Sprintf(format, args...))
}

// Script is a user-supplied scenario: a discipline plus an ordered, straight-line
// list of lifecycle steps over named slots. It generalizes the built-in drivers
// without touching the tracer; the scope still owns all semantics.
type Script struct {
	Name       string `yaml:"name"`
	Discipline string `yaml:"discipline"`
	Steps      []Step `yaml:"steps"`
}

// Step is one statement of a script.
//
// Ops by discipline:
//
//	copy:    create, copy, move, assign, move-assign
//	replace: create, clone, replace
//
// create uses slot+value; copy/move use slot+source (they bind a new slot);
// assign/move-assign/clone/replace use target+source.
type Step struct {
	Op     string `yaml:"op"`
	Slot   string `yaml:"slot,omitempty"`
	Target string `yaml:"target,omitempty"`
	Source string `yaml:"source,omitempty"`
	Value  int    `yaml:"value,omitempty"`
}

var copyOps = map[string]bool{
	"create": true, "copy": true, "move": true, "assign": true, "move-assign": true,
}

var replaceOps = map[string]bool{
	"create": true, "clone": true, "replace": true,
}

// LoadScript reads and validates a script file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return ParseScript(data)
}

// ParseScript parses and validates script bytes.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the script's shape: known discipline, known ops for that
// discipline, required fields per op. Slot-state legality is left to the
// scope at run time, where it is already enforced.
func (s *Script) Validate() error {
	if s == nil {
		return invalidf("script is nil")
	}
	if s.Name == "" {
		return invalidf("name is required")
	}
	d := Discipline(s.Discipline)
	if d != DisciplineCopy && d != DisciplineReplace {
		return invalidf("discipline %q (expected %q or %q)", s.Discipline, DisciplineCopy, DisciplineReplace)
	}
	if len(s.Steps) == 0 {
		return invalidf("at least one step is required")
	}

	known := copyOps
	if d == DisciplineReplace {
		known = replaceOps
	}
	for i, st := range s.Steps {
		if !known[st.Op] {
			return invalidf("steps[%d]: op %q is not a %s-discipline op", i, st.Op, d)
		}
		switch st.Op {
		case "create":
			if st.Slot == "" {
				return invalidf("steps[%d]: create requires slot", i)
			}
		case "copy", "move":
			if st.Slot == "" || st.Source == "" {
				return invalidf("steps[%d]: %s requires slot and source", i, st.Op)
			}
		default:
			if st.Target == "" || st.Source == "" {
				return invalidf("steps[%d]: %s requires target and source", i, st.Op)
			}
		}
	}
	return nil
}

// Scenario adapts the script into a runnable Scenario.
func (s *Script) Scenario() (Scenario, error) {
	if err := s.Validate(); err != nil {
		return Scenario{}, err
	}
	d := Discipline(s.Discipline)
	steps := make([]Step, len(s.Steps))
	copy(steps, s.Steps)

	run := func(sink trace.Sink, out io.Writer) error {
		if d == DisciplineCopy {
			return runCopyScript(steps, sink, out)
		}
		return runReplaceScript(steps, sink, out)
	}
	return Scenario{
		Name:        s.Name,
		Discipline:  d,
		Description: "scripted scenario",
		run:         run,
	}, nil
}

func runCopyScript(steps []Step, sink trace.Sink, out io.Writer) error {
	sc := semantics.NewCopyScope(sink, out)
	for i, st := range steps {
		var err error
		switch st.Op {
		case "create":
			err = sc.Declare(st.Slot, st.Value)
		case "copy":
			err = sc.CopyConstruct(st.Slot, st.Source)
		case "move":
			err = sc.MoveConstruct(st.Slot, st.Source)
		case "assign":
			err = sc.CopyAssign(st.Target, st.Source)
		case "move-assign":
			err = sc.MoveAssign(st.Target, st.Source)
		}
		if err != nil {
			return fmt.Errorf("steps[%d] %s: %w", i, st.Op, err)
		}
	}
	return sc.Close()
}

func runReplaceScript(steps []Step, sink trace.Sink, out io.Writer) error {
	sc := semantics.NewReplaceScope(sink, out)
	for i, st := range steps {
		var err error
		switch st.Op {
		case "create":
			err = sc.Declare(st.Slot, st.Value)
		case "clone":
			err = sc.Clone(st.Target, st.Source)
		case "replace":
			err = sc.Replace(st.Target, st.Source)
		}
		if err != nil {
			return fmt.Errorf("steps[%d] %s: %w", i, st.Op, err)
		}
	}
	return sc.Close()
}
