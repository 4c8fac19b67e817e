package cli

import (
	"bytes"
	"context"
	"fmt"

	"valuetrace/internal/archive"
	"valuetrace/internal/scenario"
	"valuetrace/internal/trace"
)

// CLIResult is the outcome of one invocation.
//
// Output is the text the caller should print to stdout: the full transcript
// for a run, or the scenario listing for --list.
type CLIResult struct {
	ExitCode  int
	Output    string
	TraceHash string
}

// Execute runs a canonical invocation.
func Execute(ctx context.Context, inv CLIInvocation) (CLIResult, error) {
	if inv.List {
		return listScenarios(), nil
	}

	sc, res, err := selectScenario(inv)
	if err != nil {
		return res, err
	}

	rec := trace.NewRecorder()
	var transcript bytes.Buffer
	if err := sc.Run(rec, &transcript); err != nil {
		return CLIResult{ExitCode: ExitScenarioFailure, Output: transcript.String()},
			fmt.Errorf("scenario %q: %w", sc.Name, err)
	}

	tr := rec.Trace(sc.Name)
	hash, err := tr.Hash()
	if err != nil {
		return CLIResult{ExitCode: ExitInternalError}, fmt.Errorf("trace hash: %w", err)
	}
	if err := checkDiscipline(sc.Discipline, tr.Events); err != nil {
		// A discipline violation from a built-in or validated script is a defect.
		return CLIResult{ExitCode: ExitInternalError}, fmt.Errorf("discipline check: %w", err)
	}

	result := CLIResult{ExitCode: ExitSuccess, Output: transcript.String(), TraceHash: hash}

	if inv.TranscriptPath != "" {
		if err := writeFileAtomic(inv.TranscriptPath, transcript.Bytes(), 0o644); err != nil {
			return CLIResult{ExitCode: ExitInternalError}, fmt.Errorf("write transcript: %w", err)
		}
	}
	if inv.TracePath != "" {
		b, err := tr.CanonicalJSON()
		if err != nil {
			return CLIResult{ExitCode: ExitInternalError}, fmt.Errorf("encode trace: %w", err)
		}
		if err := writeFileAtomic(inv.TracePath, b, 0o644); err != nil {
			return CLIResult{ExitCode: ExitInternalError}, fmt.Errorf("write trace: %w", err)
		}
	}
	if inv.ArchivePath != "" {
		if err := archiveRun(ctx, inv.ArchivePath, sc, hash, len(tr.Events), transcript.String()); err != nil {
			return CLIResult{ExitCode: ExitInternalError}, err
		}
	}

	return result, nil
}

func selectScenario(inv CLIInvocation) (scenario.Scenario, CLIResult, error) {
	if inv.ScriptPath != "" {
		script, err := scenario.LoadScript(inv.ScriptPath)
		if err != nil {
			return scenario.Scenario{}, CLIResult{ExitCode: ExitScriptError}, err
		}
		sc, err := script.Scenario()
		if err != nil {
			return scenario.Scenario{}, CLIResult{ExitCode: ExitScriptError}, err
		}
		return sc, CLIResult{}, nil
	}

	sc, ok := scenario.Lookup(inv.ScenarioName)
	if !ok {
		return scenario.Scenario{}, CLIResult{ExitCode: ExitInvalidInvocation},
			invalidInvocationf("unknown scenario %q (use --list)", inv.ScenarioName)
	}
	return sc, CLIResult{}, nil
}

func checkDiscipline(d scenario.Discipline, events []trace.Event) error {
	if d == scenario.DisciplineReplace {
		return trace.CheckReplaceDiscipline(events)
	}
	return trace.CheckCopyDiscipline(events)
}

func listScenarios() CLIResult {
	var buf bytes.Buffer
	for _, sc := range scenario.All() {
		fmt.Fprintf(&buf, "%s\t%s\t%s\n", sc.Name, sc.Discipline, sc.Description)
	}
	return CLIResult{ExitCode: ExitSuccess, Output: buf.String()}
}

func archiveRun(ctx context.Context, path string, sc scenario.Scenario, hash string, events int, transcript string) error {
	store, err := archive.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	_, err = store.SaveRun(ctx, archive.Run{
		Scenario:   sc.Name,
		Discipline: string(sc.Discipline),
		TraceHash:  hash,
		EventCount: events,
		Transcript: transcript,
	})
	if err != nil {
		return fmt.Errorf("archive run: %w", err)
	}
	return nil
}
