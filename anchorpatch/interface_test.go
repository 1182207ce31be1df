package anchorpatch_test

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"anchorpatch/anchorpatch"
	"anchorpatch/cli"
	"anchorpatch/model"
)

func TestApplyJobDirect(t *testing.T) {
	dir := chdirTemp(t)
	target := writeFile(t, dir, "module.ts", "tokenExchangeUsed: !!this.tokenExchangeService\n")

	jobs := []model.FileJob{{
		Path: target,
		Ops: []model.Operation{{
			Kind:        model.OpRegex,
			Anchor:      `tokenExchangeUsed: !!this\.tokenExchangeService`,
			Replacement: "tokenExchangeUsed: !!this.tokenExchangeConfig",
		}},
	}}

	summary, err := anchorpatch.ApplyJob(jobs, anchorpatch.Config{})
	if err != nil {
		t.Fatalf("ApplyJob failed: %v", err)
	}
	if len(summary.Patched) != 1 {
		t.Fatalf("Patched = %v, want one file", summary.Patched)
	}
	if got := readFile(t, target); got != "tokenExchangeUsed: !!this.tokenExchangeConfig\n" {
		t.Errorf("content = %q", got)
	}
}

func TestApplyJobMergesDuplicateTargets(t *testing.T) {
	dir := chdirTemp(t)
	target := writeFile(t, dir, "dup.txt", "a b")

	// Two entries for the same file must chain, not plan twice from the
	// same original and let the last write win.
	jobs := []model.FileJob{
		{
			Path: target,
			Ops:  []model.Operation{{Kind: model.OpLiteral, Anchor: "a", Replacement: "A"}},
		},
		{
			Path: target,
			Ops:  []model.Operation{{Kind: model.OpLiteral, Anchor: "b", Replacement: "B"}},
		},
	}

	summary, err := anchorpatch.ApplyJob(jobs, anchorpatch.Config{})
	if err != nil {
		t.Fatalf("ApplyJob failed: %v", err)
	}
	if got := readFile(t, target); got != "A B" {
		t.Errorf("content = %q, want %q", got, "A B")
	}
	if len(summary.Patched) != 1 {
		t.Errorf("Patched = %v, want the file once", summary.Patched)
	}
	if len(summary.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", summary.Warnings)
	}
}

func TestDetailedErrorMatchesErrorsAs(t *testing.T) {
	wrapped := fmt.Errorf("run failed: %w", &anchorpatch.DetailedError{
		Err:   errors.New("boom"),
		Stack: []byte("goroutine 1"),
	})

	var detailed *anchorpatch.DetailedError
	if !errors.As(wrapped, &detailed) {
		t.Fatal("errors.As did not find DetailedError")
	}
	if string(detailed.Stack) != "goroutine 1" {
		t.Errorf("Stack = %q", detailed.Stack)
	}
	if detailed.Error() != "boom" {
		t.Errorf("Error() = %q", detailed.Error())
	}
}

func TestUndoRedoRestoresContent(t *testing.T) {
	dir := chdirTemp(t)
	const original = "X\nY\nZ"
	const patched = "X\nY2\nZ"
	target := writeFile(t, dir, "notes.txt", original)
	docPath := writeFile(t, dir, "fix.md", replaceDoc("notes.txt", "Y", "Y2"))

	run := func(cfg *cli.Config) model.Summary {
		t.Helper()
		app, err := anchorpatch.New(cfg)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		summary, err := app.Execute()
		if err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		return summary
	}

	run(&cli.Config{DocumentPath: docPath})
	if got := readFile(t, target); got != patched {
		t.Fatalf("after run: %q, want %q", got, patched)
	}

	run(&cli.Config{Undo: true})
	if got := readFile(t, target); got != original {
		t.Errorf("after undo: %q, want %q", got, original)
	}

	run(&cli.Config{Redo: true})
	if got := readFile(t, target); got != patched {
		t.Errorf("after redo: %q, want %q", got, patched)
	}

	// Nothing left to redo.
	summary := run(&cli.Config{Redo: true})
	if summary.Message == "" {
		t.Error("expected a no-run-to-redo message")
	}
}

func TestUndoSkipsExternallyModifiedFile(t *testing.T) {
	dir := chdirTemp(t)
	target := writeFile(t, dir, "notes.txt", "X\nY\nZ")
	docPath := writeFile(t, dir, "fix.md", replaceDoc("notes.txt", "Y", "Y2"))

	app, err := anchorpatch.New(&cli.Config{DocumentPath: docPath})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := app.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	// Outside edit between the run and the undo.
	const outside = "completely different\n"
	if err := os.WriteFile(target, []byte(outside), 0644); err != nil {
		t.Fatalf("outside edit failed: %v", err)
	}

	undoApp, err := anchorpatch.New(&cli.Config{Undo: true})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	summary, err := undoApp.Execute()
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if len(summary.Failed) != 1 {
		t.Errorf("Failed = %v, want the skipped file", summary.Failed)
	}
	if got := readFile(t, target); got != outside {
		t.Errorf("undo clobbered an outside edit: %q", got)
	}
}
