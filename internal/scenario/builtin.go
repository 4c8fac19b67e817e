package scenario

import (
	"io"

	"valuetrace/internal/semantics"
	"valuetrace/internal/trace"
)

// The fixed drivers. Each owns its own pair (or triple) of slots, created and
// torn down within its own scope; scenarios never interact.
var builtins = []Scenario{
	{
		Name:        "copy-assign",
		Discipline:  DisciplineCopy,
		Description: "assignment copies the source payload over the destination instance",
		run:         runCopyAssign,
	},
	{
		Name:        "move-assign",
		Discipline:  DisciplineCopy,
		Description: "assignment moves the source payload, leaving a valid sentinel instance behind",
		run:         runMoveAssign,
	},
	{
		Name:        "pass-by-value",
		Discipline:  DisciplineCopy,
		Description: "copy construction and move construction of fresh slots",
		run:         runPassByValue,
	},
	{
		Name:        "clone",
		Discipline:  DisciplineReplace,
		Description: "an explicit clone replaces the destination's instance",
		run:         runClone,
	},
	{
		Name:        "replace-move",
		Discipline:  DisciplineReplace,
		Description: "a move replaces the destination's instance and empties the source slot",
		run:         runReplaceMove,
	},
}

func runCopyAssign(sink trace.Sink, out io.Writer) error {
	sc := semantics.NewCopyScope(sink, out)
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
}

func runMoveAssign(sink trace.Sink, out io.Writer) error {
	sc := semantics.NewCopyScope(sink, out)
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
}

func runPassByValue(sink trace.Sink, out io.Writer) error {
	sc := semantics.NewCopyScope(sink, out)
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
}

func runClone(sink trace.Sink, out io.Writer) error {
	sc := semantics.NewReplaceScope(sink, out)
	if err := sc.Declare("a", 1); err != nil {
		return err
	}
	if err := sc.Declare("b", 2); err != nil {
		return err
	}
	if err := sc.Clone("a", "b"); err != nil {
		return err
	}
	return sc.Close()
}

func runReplaceMove(sink trace.Sink, out io.Writer) error {
	sc := semantics.NewReplaceScope(sink, out)
	if err := sc.Declare("a", 1); err != nil {
		return err
	}
	if err := sc.Declare("b", 2); err != nil {
		return err
	}
	if err := sc.Replace("a", "b"); err != nil {
		return err
	}
	return sc.Close()
}
