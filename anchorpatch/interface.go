package anchorpatch

import (
	"anchorpatch/cli"
	"anchorpatch/internal/parser"
	"anchorpatch/model"
)

// Config for using anchorpatch as a library.
type Config struct {
	// Directories to resolve relative target paths against.
	LookupDirs []string
	// Treat every missing anchor as fatal and write nothing.
	Strict bool
	// Plan only; report what would change without writing files.
	DryRun bool
}

// Apply parses a patch document and applies its operations to files.
func Apply(document string, config Config) (model.Summary, error) {
	app, err := New(&cli.Config{
		LookupDirs: config.LookupDirs,
		Strict:     config.Strict,
		DryRun:     config.DryRun,
	})
	if err != nil {
		return model.Summary{}, err
	}

	jobs, err := parser.CreatePlan(document, app.pathResolver)
	if err != nil {
		return model.Summary{}, err
	}
	if len(jobs) == 0 {
		return model.Summary{Message: "No operations found. Nothing to do."}, nil
	}
	return app.applyPlan(jobs)
}

// ApplyJob applies the given file jobs directly, bypassing document
// parsing. Paths must be absolute.
func ApplyJob(jobs []model.FileJob, config Config) (model.Summary, error) {
	app, err := New(&cli.Config{
		LookupDirs: config.LookupDirs,
		Strict:     config.Strict,
		DryRun:     config.DryRun,
	})
	if err != nil {
		return model.Summary{}, err
	}
	if len(jobs) == 0 {
		return model.Summary{Message: "No operations found. Nothing to do."}, nil
	}
	return app.applyPlan(jobs)
}
