package cli

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Config holds all the command-line flag values.
type Config struct {
	JobFile      string
	DocumentPath string
	DryRun       bool
	Strict       bool
	Undo         bool
	Redo         bool
	NoAnimation  bool
	LookupDirs   []string
}

// ParseFlags defines and parses command-line flags using pflag.
func ParseFlags() (*Config, error) {
	cfg := &Config{}

	// Define flags
	pflag.StringVarP(&cfg.JobFile, "job", "j", "", "Apply operations from a YAML job file instead of a patch document.")
	pflag.BoolVarP(&cfg.DryRun, "dry-run", "n", false, "Print the diff of what would change without writing any file.")
	pflag.BoolVarP(&cfg.Strict, "strict", "s", false, "Treat every missing anchor as fatal; write nothing if any anchor is unapplied.")
	pflag.StringSliceVarP(&cfg.LookupDirs, "lookup-dir", "l", []string{}, "Change directory to look for target files (default: current directory).")
	pflag.BoolVar(&cfg.NoAnimation, "no-animation", false, "Disable the spinner and print plain output.")

	// Mutually exclusive history group
	pflag.BoolVarP(&cfg.Undo, "undo", "u", false, "Undo the last run.")
	pflag.BoolVarP(&cfg.Redo, "redo", "r", false, "Redo the last undone run.")

	pflag.Usage = func() {
		fmt.Println("Usage: anchorpatch [flags] [document]")
		fmt.Println("\nApply anchor-based patches to files. The patch document is read from")
		fmt.Println("the positional argument, stdin (pipe) or the clipboard.")
		fmt.Println("\nExample: anchorpatch fixes.md")
		fmt.Println("Example: pbpaste | anchorpatch --dry-run")
		fmt.Println("\nFlags:")
		pflag.PrintDefaults()
	}

	pflag.Parse()

	// Validate mutually exclusive flags
	if cfg.Undo && cfg.Redo {
		return nil, fmt.Errorf("error: --undo and --redo are mutually exclusive")
	}
	if cfg.JobFile != "" && pflag.NArg() > 0 {
		return nil, fmt.Errorf("error: --job and a positional document are mutually exclusive")
	}

	if pflag.NArg() > 0 {
		cfg.DocumentPath = pflag.Arg(0)
	}

	return cfg, nil
}
