package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	HeaderColor  = color.New(color.FgBlue, color.Bold)
	InfoColor    = color.New(color.FgCyan)
	SuccessColor = color.New(color.FgGreen)
	WarningColor = color.New(color.FgYellow)
	ErrorColor   = color.New(color.FgRed)
	PathColor    = color.New(color.FgYellow)
	AddColor     = color.New(color.FgGreen)
	DelColor     = color.New(color.FgRed)
)

func Header(format string, a ...interface{}) {
	HeaderColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Info(format string, a ...interface{}) {
	InfoColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Success(format string, a ...interface{}) {
	SuccessColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Warning(format string, a ...interface{}) {
	WarningColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Error(format string, a ...interface{}) {
	ErrorColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Path(format string, a ...interface{}) {
	PathColor.Fprintf(os.Stderr, "  "+format+"\n", a...)
}

// --- Summaries ---

func PrintRunSummary(patched, unchanged, failed, warnings []string) {
	Header("\n--- Patch Summary ---")

	if len(patched) == 0 && len(unchanged) == 0 && len(failed) == 0 && len(warnings) == 0 {
		Info("No files were patched.")
		return
	}

	if len(patched) > 0 {
		Success("Patched %d file(s):", len(patched))
		for _, f := range patched {
			fmt.Printf("  - %s\n", f)
		}
	}
	if len(unchanged) > 0 {
		Info("Unchanged %d file(s):", len(unchanged))
		for _, f := range unchanged {
			fmt.Printf("  - %s\n", f)
		}
	}
	if len(failed) > 0 {
		Error("Failed to patch %d file(s):", len(failed))
		for _, f := range failed {
			fmt.Printf("  - %s\n", f)
		}
	}
	if len(warnings) > 0 {
		Warning("Unapplied anchor(s):")
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
	}
}

func PrintHistorySummary(action string, restored, failed []string) {
	Header("\n--- %s Summary ---", action)
	if len(restored) > 0 {
		Success("Successfully restored %d file(s):", len(restored))
		for _, f := range restored {
			fmt.Printf("  - %s\n", f)
		}
	}
	if len(failed) > 0 {
		Error("Failed to restore %d file(s):", len(failed))
		for _, f := range failed {
			fmt.Printf("  - %s\n", f)
		}
	}
}

// PrintDiff writes a rendered diff to stdout, coloring added and removed
// lines. The diff text is expected in the +/-/space line format produced
// by the preview package.
func PrintDiff(path, diff string) {
	HeaderColor.Printf("--- %s\n", path)
	for _, line := range strings.Split(strings.TrimSuffix(diff, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+"):
			AddColor.Println(line)
		case strings.HasPrefix(line, "-"):
			DelColor.Println(line)
		default:
			fmt.Println(line)
		}
	}
}
