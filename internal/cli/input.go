package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

const (
	ExitSuccess           = 0
	ExitScenarioFailure   = 1
	ExitInvalidInvocation = 2
	ExitScriptError       = 3
	ExitInternalError     = 4
)

// CLIInvocation is the fully canonicalized, deterministic description of a run.
//
// When WorkDir is set it must be absolute, and all relative paths are resolved
// under it; this prevents any dependency on the process current working
// directory. Without WorkDir, paths are taken as given.
type CLIInvocation struct {
	// Exactly one of these selects what to do.
	ScenarioName string
	ScriptPath   string
	List         bool

	WorkDir        string
	TranscriptPath string // optional transcript file
	TracePath      string // optional canonical trace JSON file
	ArchivePath    string // optional run-archive database
}

type InvocationError struct {
	ExitCode int
	Message  string
}

func (e *InvocationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func invalidInvocationf(format string, args ...any) error {
	return &InvocationError{ExitCode: ExitInvalidInvocation, Message: fmt.Sprintf(format, args...)}
}

// ParseInvocation parses CLI flags into a canonical CLIInvocation.
//
// Determinism goals:
//   - Does not read env vars.
//   - Does not read/assume the process CWD when --workdir is given.
func ParseInvocation(args []string) (CLIInvocation, error) {
	fs := flag.NewFlagSet("valuetrace", flag.ContinueOnError)
	fs.SetOutput(io.Discard) // parsing errors are returned, not printed

	var scenarioName string
	var scriptPath string
	var list bool
	var workDir string
	var outPath string
	var tracePath string
	var archivePath string

	fs.StringVar(&scenarioName, "scenario", "", "Built-in scenario name to run.")
	fs.StringVar(&scriptPath, "script", "", "Scenario script file (YAML) to run.")
	fs.BoolVar(&list, "list", false, "List built-in scenarios and exit.")
	fs.StringVar(&workDir, "workdir", "", "Absolute working directory for resolving relative paths (optional).")
	fs.StringVar(&outPath, "out", "", "Transcript output path (optional).")
	fs.StringVar(&tracePath, "trace", "", "Canonical trace JSON output path (optional).")
	fs.StringVar(&archivePath, "archive-db", "", "Run-archive SQLite database path (optional).")

	if err := fs.Parse(args); err != nil {
		return CLIInvocation{}, invalidInvocationf("%v", err)
	}
	if fs.NArg() != 0 {
		return CLIInvocation{}, invalidInvocationf("unexpected positional arguments: %q", strings.Join(fs.Args(), " "))
	}

	selected := 0
	if scenarioName != "" {
		selected++
	}
	if scriptPath != "" {
		selected++
	}
	if list {
		selected++
	}
	if selected != 1 {
		return CLIInvocation{}, invalidInvocationf("exactly one of --scenario, --script, --list is required")
	}

	if workDir != "" {
		workDir = filepath.Clean(workDir)
		if !filepath.IsAbs(workDir) {
			return CLIInvocation{}, invalidInvocationf("--workdir must be an absolute path (got %q)", workDir)
		}
	}

	inv := CLIInvocation{
		ScenarioName: scenarioName,
		List:         list,
		WorkDir:      workDir,
	}

	var err error
	if inv.ScriptPath, err = resolveOptional(workDir, scriptPath); err != nil {
		return CLIInvocation{}, err
	}
	if inv.TranscriptPath, err = resolveOptional(workDir, outPath); err != nil {
		return CLIInvocation{}, err
	}
	if inv.TracePath, err = resolveOptional(workDir, tracePath); err != nil {
		return CLIInvocation{}, err
	}
	if inv.ArchivePath, err = resolveOptional(workDir, archivePath); err != nil {
		return CLIInvocation{}, err
	}

	return inv, nil
}

func resolveOptional(workDir, p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", nil
	}
	clean := filepath.Clean(p)
	if clean == "." {
		return "", invalidInvocationf("path must not be '.'")
	}
	if filepath.IsAbs(clean) || workDir == "" {
		return clean, nil
	}
	// WorkDir is absolute, so Join does not consult the process CWD.
	return filepath.Clean(filepath.Join(workDir, clean)), nil
}

// ExitCodeFor extracts a semantic exit code from an invocation error.
// If the error is not a known invocation error, it returns ExitInternalError.
func ExitCodeFor(err error) int {
	var invErr *InvocationError
	if errors.As(err, &invErr) && invErr != nil {
		if invErr.ExitCode != 0 {
			return invErr.ExitCode
		}
		return ExitInvalidInvocation
	}
	if err == nil {
		return ExitSuccess
	}
	return ExitInternalError
}
