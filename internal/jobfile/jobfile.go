package jobfile

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"anchorpatch/internal/fs"
	"anchorpatch/model"
)

// A job file spells out the same operations a patch document carries,
// but with explicit fields, which is easier to generate and to keep in
// version control next to the files it patches:
//
//	files:
//	  - path: src/postgresql-module.ts
//	    ops:
//	      - kind: regex
//	        pattern: 'tokenExchangeUsed: !!this\.tokenExchangeService'
//	        replacement: 'tokenExchangeUsed: !!this.tokenExchangeConfig'
type opSpec struct {
	Kind        string `yaml:"kind"`
	Anchor      string `yaml:"anchor"`
	Pattern     string `yaml:"pattern"` // alias for anchor on regex ops
	Replacement string `yaml:"replacement"`
	Block       string `yaml:"block"` // alias for replacement on insert-after ops
	Required    bool   `yaml:"required"`
	Occurrences string `yaml:"occurrences"` // "first" (default) or "all", literal ops only
}

type fileSpec struct {
	Path string   `yaml:"path"`
	Ops  []opSpec `yaml:"ops"`
}

type jobSpec struct {
	Files []fileSpec `yaml:"files"`
}

// Load reads a YAML job file and resolves it into per-file jobs.
func Load(path string, resolver *fs.PathResolver) ([]model.FileJob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job file %s: %w", path, err)
	}
	return Parse(data, resolver)
}

// Parse decodes job file content and resolves target paths.
func Parse(data []byte, resolver *fs.PathResolver) ([]model.FileJob, error) {
	var spec jobSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("invalid job file: %w", err)
	}

	var jobs []model.FileJob
	for _, f := range spec.Files {
		if f.Path == "" {
			return nil, fmt.Errorf("invalid job file: file entry without a path")
		}
		path, err := resolver.Resolve(f.Path)
		if err != nil {
			return nil, err
		}

		job := model.FileJob{Path: path}
		for i, o := range f.Ops {
			op, err := buildOp(o)
			if err != nil {
				return nil, fmt.Errorf("invalid op %d for %s: %w", i+1, f.Path, err)
			}
			job.Ops = append(job.Ops, op)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func buildOp(o opSpec) (model.Operation, error) {
	anchor := o.Anchor
	if o.Pattern != "" {
		if anchor != "" {
			return model.Operation{}, fmt.Errorf("anchor and pattern are mutually exclusive")
		}
		anchor = o.Pattern
	}
	if anchor == "" {
		return model.Operation{}, fmt.Errorf("missing anchor")
	}

	replacement := o.Replacement
	if o.Block != "" {
		if replacement != "" {
			return model.Operation{}, fmt.Errorf("replacement and block are mutually exclusive")
		}
		replacement = o.Block
	}

	var kind model.OpKind
	switch o.Kind {
	case "literal", "":
		kind = model.OpLiteral
		switch o.Occurrences {
		case "", "first":
		case "all":
			kind = model.OpLiteralAll
		default:
			return model.Operation{}, fmt.Errorf("unknown occurrences %q", o.Occurrences)
		}
	case "regex":
		kind = model.OpRegex
	case "insert-after":
		kind = model.OpInsertAfter
	default:
		return model.Operation{}, fmt.Errorf("unknown kind %q", o.Kind)
	}

	if o.Occurrences != "" && kind != model.OpLiteral && kind != model.OpLiteralAll {
		return model.Operation{}, fmt.Errorf("occurrences only applies to literal ops")
	}

	return model.Operation{
		Kind:        kind,
		Anchor:      anchor,
		Replacement: replacement,
		Required:    o.Required || kind == model.OpInsertAfter,
	}, nil
}
