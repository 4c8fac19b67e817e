package cli

import (
	"errors"
	"testing"
)

func TestParseInvocation_RequiresExactlyOneAction(t *testing.T) {
	cases := [][]string{
		{},
		{"--scenario", "copy-assign", "--list"},
		{"--scenario", "copy-assign", "--script", "s.yaml"},
		{"--scenario", "copy-assign", "--script", "s.yaml", "--list"},
	}
	for _, args := range cases {
		_, err := ParseInvocation(args)
		var invErr *InvocationError
		if !errors.As(err, &invErr) {
			t.Fatalf("args %v: expected InvocationError, got %v", args, err)
		}
		if invErr.ExitCode != ExitInvalidInvocation {
			t.Fatalf("args %v: exit = %d, want %d", args, invErr.ExitCode, ExitInvalidInvocation)
		}
	}
}

func TestParseInvocation_RejectsPositionalArgsAndUnknownFlags(t *testing.T) {
	for _, args := range [][]string{
		{"--scenario", "copy-assign", "extra"},
		{"--scenario", "copy-assign", "--bogus"},
	} {
		if _, err := ParseInvocation(args); err == nil {
			t.Fatalf("args %v: expected error", args)
		}
	}
}

func TestParseInvocation_WorkDirMustBeAbsolute(t *testing.T) {
	_, err := ParseInvocation([]string{"--scenario", "copy-assign", "--workdir", "relative/dir"})
	var invErr *InvocationError
	if !errors.As(err, &invErr) || invErr.ExitCode != ExitInvalidInvocation {
		t.Fatalf("expected invalid invocation, got %v", err)
	}
}

func TestParseInvocation_ResolvesRelativePathsUnderWorkDir(t *testing.T) {
	inv, err := ParseInvocation([]string{
		"--scenario", "copy-assign",
		"--workdir", "/work",
		"--out", "out/transcript.txt",
		"--trace", "/abs/trace.json",
		"--archive-db", "runs.db",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.TranscriptPath != "/work/out/transcript.txt" {
		t.Fatalf("transcript path = %q", inv.TranscriptPath)
	}
	if inv.TracePath != "/abs/trace.json" {
		t.Fatalf("trace path = %q", inv.TracePath)
	}
	if inv.ArchivePath != "/work/runs.db" {
		t.Fatalf("archive path = %q", inv.ArchivePath)
	}
}

func TestParseInvocation_PathsKeptWithoutWorkDir(t *testing.T) {
	inv, err := ParseInvocation([]string{"--scenario", "copy-assign", "--out", "transcript.txt"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.TranscriptPath != "transcript.txt" {
		t.Fatalf("transcript path = %q", inv.TranscriptPath)
	}
}

func TestExitCodeFor(t *testing.T) {
	if got := ExitCodeFor(nil); got != ExitSuccess {
		t.Fatalf("nil error exit = %d", got)
	}
	if got := ExitCodeFor(errors.New("boom")); got != ExitInternalError {
		t.Fatalf("unknown error exit = %d", got)
	}
	if got := ExitCodeFor(invalidInvocationf("bad")); got != ExitInvalidInvocation {
		t.Fatalf("invocation error exit = %d", got)
	}
}
