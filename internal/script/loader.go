package script

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/spf13/afero"
	"github.com/vk/taskbridge/internal/ctxlog"
	"github.com/vk/taskbridge/internal/fsutil"
)

// Kind is the type of a top-level statement.
type Kind string

const (
	KindTask     Kind = "task"
	KindTaskdef  Kind = "taskdef"
	KindProperty Kind = "property"
	KindEcho     Kind = "echo"
	KindChain    Kind = "chain"
)

// whenAttr is the meta-argument that makes a statement conditional.
const whenAttr = "when"

// statementRules lists the label count of every statement kind and, for
// kinds with a fixed body, the attributes they accept.
var statementRules = map[Kind]struct {
	labels int
	attrs  []string
}{
	KindTask:     {labels: 1},
	KindTaskdef:  {labels: 1},
	KindProperty: {labels: 1, attrs: []string{"value", whenAttr}},
	KindEcho:     {labels: 0, attrs: []string{"message", "level", whenAttr}},
	KindChain:    {labels: 0, attrs: []string{whenAttr}},
}

// Statement is one top-level block of a script.
type Statement struct {
	Kind  Kind
	Label string
	block *hclsyntax.Block
}

// Range returns the source location of the statement header.
func (s Statement) Range() hcl.Range { return s.block.DefRange() }

// Script is a loaded set of statements in execution order.
type Script struct {
	Files      []string
	Statements []Statement
}

// Loader reads scripts from a filesystem.
type Loader struct {
	fs     afero.Fs
	parser *hclparse.Parser
}

// NewLoader creates a loader reading from fsys.
func NewLoader(fsys afero.Fs) *Loader {
	return &Loader{fs: fsys, parser: hclparse.NewParser()}
}

// Load parses every file in paths, expanding directories to their .hcl
// files, and concatenates their statements.
func (l *Loader) Load(ctx context.Context, paths ...string) (*Script, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Script loader started.", "path_count", len(paths))

	files, err := fsutil.ExpandPaths(l.fs, paths, ".hcl")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no build scripts found in %v", paths)
	}

	script := &Script{}
	for _, file := range files {
		src, err := afero.ReadFile(l.fs, file)
		if err != nil {
			return nil, fmt.Errorf("failed to read build script %s: %w", file, err)
		}
		part, err := l.Parse(ctx, file, src)
		if err != nil {
			return nil, err
		}
		script.Files = append(script.Files, file)
		script.Statements = append(script.Statements, part.Statements...)
	}

	logger.Debug("Script loading complete.", "files", len(script.Files), "statements", len(script.Statements))
	return script, nil
}

// Parse reads one script from src.
func (l *Loader) Parse(ctx context.Context, filename string, src []byte) (*Script, error) {
	hclFile, diags := l.parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	body, ok := hclFile.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("failed to parse HCL file %s: only native syntax is supported", filename)
	}

	if len(body.Attributes) > 0 {
		for _, attr := range body.Attributes {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unexpected top-level attribute",
				Detail:   fmt.Sprintf("Attribute %q must be placed inside a statement block.", attr.Name),
				Subject:  attr.NameRange.Ptr(),
			})
		}
	}

	script := &Script{Files: []string{filename}}
	for _, block := range body.Blocks {
		st, blockDiags := newStatement(block)
		diags = append(diags, blockDiags...)
		if !blockDiags.HasErrors() {
			script.Statements = append(script.Statements, st)
		}
	}
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid build script %s: %w", filename, diags)
	}

	ctxlog.FromContext(ctx).Debug("Parsed build script.", "file", filename, "statements", len(script.Statements))
	return script, nil
}

func newStatement(block *hclsyntax.Block) (Statement, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	kind := Kind(block.Type)
	rule, ok := statementRules[kind]
	if !ok {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unsupported block type",
			Detail:   fmt.Sprintf("Blocks of type %q are not expected here. Use task, taskdef, property, echo or chain.", block.Type),
			Subject:  block.TypeRange.Ptr(),
		})
		return Statement{}, diags
	}
	if len(block.Labels) != rule.labels {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Wrong number of block labels",
			Detail:   fmt.Sprintf("A %s block takes %d label(s), got %d.", kind, rule.labels, len(block.Labels)),
			Subject:  block.DefRange().Ptr(),
		})
		return Statement{}, diags
	}

	if rule.attrs != nil {
		allowed := make(map[string]bool, len(rule.attrs))
		for _, a := range rule.attrs {
			allowed[a] = true
		}
		for _, attr := range block.Body.Attributes {
			if !allowed[attr.Name] {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Unsupported argument",
					Detail:   fmt.Sprintf("An argument named %q is not expected in a %s block.", attr.Name, kind),
					Subject:  attr.NameRange.Ptr(),
				})
			}
		}
	}

	switch kind {
	case KindChain:
		for _, inner := range block.Body.Blocks {
			if inner.Type != string(KindTask) || len(inner.Labels) != 1 {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Invalid chain step",
					Detail:   "A chain contains only task blocks with one label.",
					Subject:  inner.DefRange().Ptr(),
				})
			}
		}
	case KindProperty, KindEcho:
		for _, inner := range block.Body.Blocks {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unexpected nested block",
				Detail:   fmt.Sprintf("A %s block has no nested blocks.", kind),
				Subject:  inner.DefRange().Ptr(),
			})
		}
	case KindTaskdef:
		if _, ok := block.Body.Attributes["type"]; !ok {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Missing required argument",
				Detail:   `A taskdef block requires the "type" argument.`,
				Subject:  block.DefRange().Ptr(),
			})
		}
	}

	diags = append(diags, checkReferences(block.Body)...)

	label := ""
	if len(block.Labels) > 0 {
		label = block.Labels[0]
	}
	return Statement{Kind: kind, Label: label, block: block}, diags
}
