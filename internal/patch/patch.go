package patch

import (
	"fmt"
	"regexp"
	"strings"

	"anchorpatch/model"
)

// Result tracks what a sequence of operations did to one piece of content.
type Result struct {
	Applied   int
	Unapplied []string
}

// PatternError reports a regex operation whose pattern did not compile.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

// AnchorNotFoundError reports a required anchor that is absent from the
// content. It aborts the whole run; optional anchors are collected in
// Result.Unapplied instead.
type AnchorNotFoundError struct {
	Anchor string
	Kind   model.OpKind
}

func (e *AnchorNotFoundError) Error() string {
	return fmt.Sprintf("anchor not found for %s operation: %s", e.Kind, Describe(e.Anchor))
}

// Apply runs the operations in order, each against the output of the
// previous one. The content is never half-transformed on error: a
// PatternError or AnchorNotFoundError means the caller must discard the
// returned content and write nothing.
func Apply(content string, ops []model.Operation) (string, *Result, error) {
	res := &Result{}

	for _, op := range ops {
		var err error
		content, err = applyOne(content, op, res)
		if err != nil {
			return "", nil, err
		}
	}

	return content, res, nil
}

func applyOne(content string, op model.Operation, res *Result) (string, error) {
	switch op.Kind {
	case model.OpLiteral:
		return applyLiteral(content, op, 1, res)
	case model.OpLiteralAll:
		return applyLiteral(content, op, -1, res)
	case model.OpRegex:
		return applyRegex(content, op, res)
	case model.OpInsertAfter:
		return applyInsertAfter(content, op, res)
	default:
		return "", fmt.Errorf("unknown operation kind %q", op.Kind)
	}
}

// applyLiteral substitutes exact occurrences of the anchor. Matching is
// case- and whitespace-sensitive: any formatting drift in the target file
// makes the anchor miss, which is why a miss must always be reported.
func applyLiteral(content string, op model.Operation, n int, res *Result) (string, error) {
	if !strings.Contains(content, op.Anchor) {
		if op.Required {
			return "", &AnchorNotFoundError{Anchor: op.Anchor, Kind: op.Kind}
		}
		res.Unapplied = append(res.Unapplied, op.Anchor)
		return content, nil
	}
	res.Applied++
	return strings.Replace(content, op.Anchor, op.Replacement, n), nil
}

// applyRegex substitutes all non-overlapping matches, left to right.
// A pattern that compiles but matches nothing is legal; it is still
// recorded as unapplied so the miss is visible in the report.
func applyRegex(content string, op model.Operation, res *Result) (string, error) {
	re, err := regexp.Compile(op.Anchor)
	if err != nil {
		return "", &PatternError{Pattern: op.Anchor, Err: err}
	}
	if !re.MatchString(content) {
		if op.Required {
			return "", &AnchorNotFoundError{Anchor: op.Anchor, Kind: op.Kind}
		}
		res.Unapplied = append(res.Unapplied, op.Anchor)
		return content, nil
	}
	res.Applied++
	return re.ReplaceAllString(content, op.Replacement), nil
}

// applyInsertAfter places the block immediately after the end of the
// first occurrence of the anchor. Insertion points are structural: a
// missing anchor fails the run regardless of op.Required.
func applyInsertAfter(content string, op model.Operation, res *Result) (string, error) {
	idx := strings.Index(content, op.Anchor)
	if idx < 0 {
		return "", &AnchorNotFoundError{Anchor: op.Anchor, Kind: op.Kind}
	}
	res.Applied++
	end := idx + len(op.Anchor)
	return content[:end] + op.Replacement + content[end:], nil
}

const describeLimit = 60

// Describe renders an anchor for a report line: first line only,
// truncated, so multi-line anchors do not wreck the output.
func Describe(anchor string) string {
	line := anchor
	truncated := false
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
		truncated = true
	}
	line = strings.TrimSpace(line)
	if len(line) > describeLimit {
		line = line[:describeLimit]
		truncated = true
	}
	if truncated {
		return fmt.Sprintf("%q...", line)
	}
	return fmt.Sprintf("%q", line)
}
