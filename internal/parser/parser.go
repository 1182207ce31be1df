package parser

import (
	"fmt"
	"regexp"
	"strings"

	"anchorpatch/internal/fs"
	"anchorpatch/model"
)

// An operation in a patch document is a hint paragraph naming the target
// file and the directive, followed by two fenced code blocks: the anchor
// (or regex pattern) and the replacement (or inserted block).
//
//	`src/postgresql-module.ts` replace
//
//	```text
//	tokenExchangeUsed: !!this.tokenExchangeService
//	```
//
//	```text
//	tokenExchangeUsed: !!this.tokenExchangeConfig
//	```
var hintRegex = regexp.MustCompile("^`([^`\n]+)`\\s+(replace|replace-all|regex|insert-after)$")

var directiveKinds = map[string]model.OpKind{
	"replace":      model.OpLiteral,
	"replace-all":  model.OpLiteralAll,
	"regex":        model.OpRegex,
	"insert-after": model.OpInsertAfter,
}

// CreatePlan parses a patch document and groups its operations into one
// job per target file, preserving document order. Code blocks that do not
// belong to a directive are ignored, so operations can be embedded in
// ordinary prose.
func CreatePlan(content string, resolver *fs.PathResolver) ([]model.FileJob, error) {
	blocks, err := ExtractCodeBlocks([]byte(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse patch document: %w", err)
	}

	var jobs []model.FileJob
	jobIndex := make(map[string]int)

	for i := 0; i < len(blocks); i++ {
		match := hintRegex.FindStringSubmatch(blocks[i].Hint)
		if match == nil {
			continue
		}
		rawPath, directive := match[1], match[2]
		kind := directiveKinds[directive]

		if i+1 >= len(blocks) || blocks[i+1].Hint != "" {
			return nil, fmt.Errorf("%s operation for %s is missing its second code block", directive, rawPath)
		}

		op := model.Operation{
			Kind:        kind,
			Anchor:      blockText(blocks[i].Content),
			Replacement: blockText(blocks[i+1].Content),
			Required:    kind == model.OpInsertAfter,
		}
		i++ // consumed the replacement block

		// An empty anchor would match at offset 0 of any content.
		if op.Anchor == "" {
			return nil, fmt.Errorf("%s operation for %s has an empty anchor block", directive, rawPath)
		}

		path, err := resolver.Resolve(rawPath)
		if err != nil {
			return nil, err
		}

		idx, ok := jobIndex[path]
		if !ok {
			idx = len(jobs)
			jobIndex[path] = idx
			jobs = append(jobs, model.FileJob{Path: path})
		}
		jobs[idx].Ops = append(jobs[idx].Ops, op)
	}

	return jobs, nil
}

// blockText strips the single trailing newline the closing fence adds.
// Internal newlines and indentation are preserved verbatim; literal
// anchors depend on that.
func blockText(content string) string {
	return strings.TrimSuffix(content, "\n")
}
