package main

import (
	"errors"
	"fmt"
	"os"

	"anchorpatch/anchorpatch"
	"anchorpatch/cli"
	"anchorpatch/internal/tui"
	"anchorpatch/internal/ui"
	"anchorpatch/model"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	cfg, err := cli.ParseFlags()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	app, err := anchorpatch.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	// Dry runs print diffs to stdout and should not run the TUI.
	if cfg.DryRun || cfg.NoAnimation {
		summary, err := app.Execute()
		if err != nil {
			var detailed *anchorpatch.DetailedError
			if errors.As(err, &detailed) {
				fmt.Fprintf(os.Stderr, "\n--- Stack Trace ---\n%s\n", detailed.Stack)
			}
			ui.Error("Error: %v", err)
			os.Exit(1)
		}
		printSummary(cfg, summary)
		return
	}

	m := tui.New(app)
	p := tea.NewProgram(m)
	finalModel, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
	if fm, ok := finalModel.(tui.Model); ok && fm.Err() != nil {
		os.Exit(1)
	}
}

func printSummary(cfg *cli.Config, summary model.Summary) {
	if summary.Message != "" {
		ui.Info("%s", summary.Message)
	}
	switch {
	case cfg.Undo:
		ui.PrintHistorySummary("Undo", summary.Patched, summary.Failed)
	case cfg.Redo:
		ui.PrintHistorySummary("Redo", summary.Patched, summary.Failed)
	default:
		ui.PrintRunSummary(summary.Patched, summary.Unchanged, summary.Failed, summary.Warnings)
	}
}
