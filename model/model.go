package model

// OpKind selects how an operation locates and edits its target.
type OpKind string

const (
	// OpLiteral replaces the first exact occurrence of the anchor.
	OpLiteral OpKind = "literal"
	// OpLiteralAll replaces every exact occurrence of the anchor.
	OpLiteralAll OpKind = "literal-all"
	// OpRegex replaces all non-overlapping matches of the pattern.
	OpRegex OpKind = "regex"
	// OpInsertAfter inserts the block immediately after the anchor.
	// Insertions are always required: a missing anchor fails the run.
	OpInsertAfter OpKind = "insert-after"
)

// Operation is a single planned edit against one file's content.
type Operation struct {
	Kind        OpKind
	Anchor      string // literal anchor text, or the regex pattern for OpRegex
	Replacement string // replacement text, or the inserted block for OpInsertAfter
	Required    bool   // a missing anchor aborts the whole run instead of warning
}

// FileJob is an ordered list of operations against one target file.
// Operations apply strictly in order, each against the previous output.
type FileJob struct {
	Path string // absolute path after resolution
	Ops  []Operation
}

// FileOutcome records the planned result for one file before anything
// is written to disk.
type FileOutcome struct {
	Path      string
	Applied   int
	Unapplied []string // anchors that were not found in the content
	Original  string
	Patched   string
}

// Summary holds the results of a run for display.
type Summary struct {
	Patched   []string
	Unchanged []string
	Failed    []string
	Warnings  []string
	Message   string
}
