package preview

import (
	"strings"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// Render produces a line-oriented diff between the original and patched
// content, in the familiar +/-/space prefix form. Used by dry runs; the
// output is display-only and not a valid input for `patch`.
func Render(before, after string) string {
	if before == after {
		return ""
	}

	dmp := diffpatch.New()
	chars1, chars2, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(chars1, chars2, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var b strings.Builder
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffpatch.DiffInsert:
			prefix = "+"
		case diffpatch.DiffDelete:
			prefix = "-"
		}
		for _, line := range splitLines(d.Text) {
			b.WriteString(prefix)
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// splitLines splits diff text into lines, dropping the phantom empty
// element a trailing newline would otherwise produce.
func splitLines(text string) []string {
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil
	}
	return lines
}
