package archive

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_SaveAndGetRun(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.SaveRun(ctx, Run{
		Scenario:   "copy-assign",
		Discipline: "copy",
		TraceHash:  "deadbeef",
		EventCount: 5,
		Transcript: "Constructing with value 1\n",
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if id == 0 {
		t.Fatalf("expected assigned id")
	}

	got, err := store.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Scenario != "copy-assign" || got.Discipline != "copy" {
		t.Fatalf("unexpected run: %+v", got)
	}
	if got.TraceHash != "deadbeef" || got.EventCount != 5 {
		t.Fatalf("unexpected run: %+v", got)
	}
	if got.Transcript != "Constructing with value 1\n" {
		t.Fatalf("unexpected transcript: %q", got.Transcript)
	}
	if got.CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be set")
	}
}

func TestStore_ListRuns_InInsertionOrder(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"replace-move", "clone", "copy-assign"} {
		if _, err := store.SaveRun(ctx, Run{
			Scenario:   name,
			Discipline: "replace",
			TraceHash:  "h-" + name,
			EventCount: 4,
			Transcript: name + "\n",
		}); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
	}

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	want := []string{"replace-move", "clone", "copy-assign"}
	for i, r := range runs {
		if r.Scenario != want[i] {
			t.Fatalf("runs[%d] = %q, want %q", i, r.Scenario, want[i])
		}
	}
}

func TestStore_GetRun_Missing(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.GetRun(context.Background(), 42); err == nil {
		t.Fatalf("expected error for missing run")
	}
}
