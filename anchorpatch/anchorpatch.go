package anchorpatch

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"anchorpatch/cli"
	"anchorpatch/internal/fs"
	"anchorpatch/internal/jobfile"
	"anchorpatch/internal/parser"
	"anchorpatch/internal/patch"
	"anchorpatch/internal/preview"
	"anchorpatch/internal/source"
	"anchorpatch/internal/state"
	"anchorpatch/internal/ui"
	"anchorpatch/model"
)

// App orchestrates the entire application logic.
type App struct {
	cfg            *cli.Config
	stateManager   *state.Manager
	pathResolver   *fs.PathResolver
	sourceProvider *source.Provider
}

// DetailedError enhances a standard error with a stack trace.
type DetailedError struct {
	Err   error
	Stack []byte
}

func (e *DetailedError) Error() string {
	return e.Err.Error()
}

// New creates a new App instance.
func New(cfg *cli.Config) (*App, error) {
	stateManager, err := state.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize state manager: %w", err)
	}

	return &App{
		cfg:            cfg,
		stateManager:   stateManager,
		pathResolver:   fs.NewPathResolver(cfg.LookupDirs),
		sourceProvider: source.New(),
	}, nil
}

// Execute executes the main application logic based on parsed flags.
func (a *App) Execute() (summary model.Summary, err error) {
	// Centralized panic recovery.
	defer func() {
		if r := recover(); r != nil {
			err = &DetailedError{
				Err:   fmt.Errorf("internal panic: %v", r),
				Stack: debug.Stack(),
			}
		}
	}()

	switch {
	case a.cfg.Undo:
		return a.undoLastRun()
	case a.cfg.Redo:
		return a.redoLastRun()
	default:
		return a.run()
	}
}

// run loads the patch jobs, plans every file in memory and only then
// touches the disk. Any fatal error during planning means nothing is
// written at all.
func (a *App) run() (model.Summary, error) {
	jobs, err := a.loadJobs()
	if err != nil {
		return model.Summary{}, err
	}
	if len(jobs) == 0 {
		return model.Summary{Message: "No operations found. Nothing to do."}, nil
	}
	return a.applyPlan(jobs)
}

// loadJobs builds the per-file job list from the configured input:
// a YAML job file, a positional document, stdin or the clipboard.
func (a *App) loadJobs() ([]model.FileJob, error) {
	if a.cfg.JobFile != "" {
		return jobfile.Load(a.cfg.JobFile, a.pathResolver)
	}

	var content string
	var err error
	if a.cfg.DocumentPath != "" {
		content, err = fs.ReadFileText(a.cfg.DocumentPath)
	} else {
		content, err = a.sourceProvider.GetContent()
	}
	if err != nil {
		return nil, err
	}
	if content == "" {
		return nil, nil
	}
	return parser.CreatePlan(content, a.pathResolver)
}

func (a *App) applyPlan(jobs []model.FileJob) (model.Summary, error) {
	outcomes, warnings, err := a.planOutcomes(jobs)
	if err != nil {
		return model.Summary{}, err
	}
	if a.cfg.Strict && len(warnings) > 0 {
		return model.Summary{}, fmt.Errorf("strict mode: %d anchor(s) were not found, nothing written", len(warnings))
	}

	if a.cfg.DryRun {
		return a.dryRunSummary(outcomes, warnings), nil
	}
	return a.writeOutcomes(outcomes, warnings)
}

// planOutcomes reads every target and applies its operations in memory.
// PatternError, AnchorNotFoundError and I/O errors abort here, before
// any write.
func (a *App) planOutcomes(jobs []model.FileJob) ([]model.FileOutcome, []string, error) {
	var outcomes []model.FileOutcome
	var warnings []string

	for _, job := range mergeJobs(jobs) {
		original, err := fs.ReadFileText(job.Path)
		if err != nil {
			return nil, nil, err
		}

		patched, res, err := patch.Apply(original, job.Ops)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", a.displayPath(job.Path), err)
		}

		for _, anchor := range res.Unapplied {
			warnings = append(warnings, fmt.Sprintf("%s: %s", a.displayPath(job.Path), patch.Describe(anchor)))
		}
		outcomes = append(outcomes, model.FileOutcome{
			Path:      job.Path,
			Applied:   res.Applied,
			Unapplied: res.Unapplied,
			Original:  original,
			Patched:   patched,
		})
	}
	return outcomes, warnings, nil
}

// mergeJobs coalesces entries that target the same file into one job,
// keeping first-seen order. Planning the same path twice from the same
// pre-patch original would let the last write win and drop the earlier
// edits without a trace.
func mergeJobs(jobs []model.FileJob) []model.FileJob {
	var merged []model.FileJob
	index := make(map[string]int, len(jobs))

	for _, job := range jobs {
		i, ok := index[job.Path]
		if !ok {
			i = len(merged)
			index[job.Path] = i
			merged = append(merged, model.FileJob{Path: job.Path})
		}
		merged[i].Ops = append(merged[i].Ops, job.Ops...)
	}
	return merged
}

func (a *App) dryRunSummary(outcomes []model.FileOutcome, warnings []string) model.Summary {
	summary := model.Summary{
		Warnings: warnings,
		Message:  "Dry run: no files were written.",
	}
	for _, o := range outcomes {
		diff := preview.Render(o.Original, o.Patched)
		if diff == "" {
			summary.Unchanged = append(summary.Unchanged, o.Path)
			continue
		}
		summary.Patched = append(summary.Patched, o.Path)
		ui.PrintDiff(a.displayPath(o.Path), diff)
	}
	a.relativizeSummaryPaths(&summary)
	return summary
}

// writeOutcomes snapshots pre- and post-images, then overwrites each
// changed file atomically. A write failure stops the loop; whatever was
// already written is recorded in history so --undo can roll it back.
func (a *App) writeOutcomes(outcomes []model.FileOutcome, warnings []string) (model.Summary, error) {
	summary := model.Summary{Warnings: warnings}
	var snapshots []state.Snapshot
	var writeErr error

	for _, o := range outcomes {
		if o.Patched == o.Original {
			summary.Unchanged = append(summary.Unchanged, o.Path)
			continue
		}

		preHash, err := a.stateManager.SaveBlob(o.Original)
		if err == nil {
			var postHash string
			postHash, err = a.stateManager.SaveBlob(o.Patched)
			if err == nil {
				err = fs.WriteFileAtomic(o.Path, o.Patched)
				if err == nil {
					snapshots = append(snapshots, state.Snapshot{
						Path:     o.Path,
						PreHash:  preHash,
						PostHash: postHash,
					})
				}
			}
		}
		if err != nil {
			summary.Failed = append(summary.Failed, o.Path)
			writeErr = err
			break
		}
		summary.Patched = append(summary.Patched, o.Path)
	}

	if len(snapshots) > 0 {
		if err := a.stateManager.Record(snapshots); err != nil {
			ui.Warning("Could not record run history: %v", err)
		}
	}

	a.relativizeSummaryPaths(&summary)
	if writeErr != nil {
		return summary, fmt.Errorf("write aborted, run --undo to roll back applied files: %w", writeErr)
	}
	return summary, nil
}

// undoLastRun restores the pre-patch snapshots of the last run.
func (a *App) undoLastRun() (model.Summary, error) {
	snapshots := a.stateManager.SnapshotsToUndo()
	if len(snapshots) == 0 {
		return model.Summary{Message: "No run to undo."}, nil
	}
	summary := a.restoreSnapshots(snapshots, func(s state.Snapshot) (string, string) {
		return s.PostHash, s.PreHash
	})
	summary.Message = "Undid last run."
	return summary, nil
}

// redoLastRun reapplies the post-patch snapshots of the last undone run.
func (a *App) redoLastRun() (model.Summary, error) {
	snapshots := a.stateManager.SnapshotsToRedo()
	if len(snapshots) == 0 {
		return model.Summary{Message: "No run to redo."}, nil
	}
	summary := a.restoreSnapshots(snapshots, func(s state.Snapshot) (string, string) {
		return s.PreHash, s.PostHash
	})
	summary.Message = "Redid last undone run."
	return summary, nil
}

// restoreSnapshots writes the wanted blob back for each snapshot. A file
// whose current content no longer matches the expected hash is skipped,
// so history never clobbers edits made outside the tool.
func (a *App) restoreSnapshots(snapshots []state.Snapshot, pick func(state.Snapshot) (expected, wanted string)) model.Summary {
	var summary model.Summary

	for _, s := range snapshots {
		expected, wanted := pick(s)

		current, err := fs.GetFileSHA256(s.Path)
		if err != nil || current != expected {
			ui.Warning("Skipping %s: content changed since the recorded run.", s.Path)
			summary.Failed = append(summary.Failed, s.Path)
			continue
		}

		content, err := a.stateManager.LoadBlob(wanted)
		if err == nil {
			err = fs.WriteFileAtomic(s.Path, content)
		}
		if err != nil {
			ui.Error("Failed to restore %s: %v", s.Path, err)
			summary.Failed = append(summary.Failed, s.Path)
			continue
		}
		summary.Patched = append(summary.Patched, s.Path)
	}

	a.relativizeSummaryPaths(&summary)
	return summary
}

func (a *App) displayPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil {
		return path
	}
	return rel
}

// relativizeSummaryPaths converts absolute file paths in a summary to be
// relative to the current working directory for cleaner display.
func (a *App) relativizeSummaryPaths(summary *model.Summary) {
	makeRelative := func(absPaths []string) []string {
		relPaths := make([]string, len(absPaths))
		for i, p := range absPaths {
			relPaths[i] = a.displayPath(p)
		}
		return relPaths
	}

	summary.Patched = makeRelative(summary.Patched)
	summary.Unchanged = makeRelative(summary.Unchanged)
	summary.Failed = makeRelative(summary.Failed)
}
