// Package pipeline orchestrates the whole checking process: configuration
// loading, document discovery, the lex/parse/validate pass per document,
// and the aggregation of reports.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/plx-dev/dycheck/internal/config"
	"github.com/plx-dev/dycheck/internal/diagnostics"
	"github.com/plx-dev/dycheck/internal/fileset"
	"github.com/plx-dev/dycheck/internal/lexer"
	"github.com/plx-dev/dycheck/internal/logging"
	"github.com/plx-dev/dycheck/internal/parser"
	"github.com/plx-dev/dycheck/internal/schema"
	"github.com/plx-dev/dycheck/internal/schema/builtin"
	"github.com/plx-dev/dycheck/internal/schema/schemafile"
	"github.com/plx-dev/dycheck/internal/validator"
)

// Environment captures external dependencies used by the pipeline.
type Environment struct {
	FSResolver func(string) (fileset.Resolver, error)
	Logger     *slog.Logger
}

// Pipeline runs document checks against resolved configuration.
type Pipeline struct {
	Env Environment
}

// RunOptions configures a pipeline execution. ConfigPath and Paths are
// mutually exclusive: explicit paths with a schema name bypass the config
// file entirely.
type RunOptions struct {
	ConfigPath   string
	StrictConfig bool

	// Paths lists documents to check directly; SchemaName selects their
	// schema, either a builtin name or a TOML schema file path.
	Paths      []string
	SchemaName string

	// Format overrides the configured output format when non-empty.
	Format config.Format
}

// Result pairs one document's report with its source text, which the text
// renderer needs for excerpts.
type Result struct {
	Report *diagnostics.Report
	Source string
}

// Summary aggregates everything a run produced.
type Summary struct {
	RunID      string
	Results    []Result
	Format     config.Format
	ErrorCount int
	Warnings   []string
}

// DecodeError reports a document that is not valid UTF-8. This is the one
// fatal per-document condition: the checking core only accepts clean text.
type DecodeError struct {
	Path string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: file content is not valid UTF-8", e.Path)
}

// ReadError wraps a failure to read a document from disk.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Check runs the full lex, parse and validate pass over one document held
// in memory and returns its report, sorted by position. The path is only a
// label for diagnostics. The schema is read-only here, so one schema can
// serve any number of concurrent Check calls.
func Check(path, source string, sch *schema.Schema) (*diagnostics.Report, error) {
	if !utf8.ValidString(source) {
		return nil, &DecodeError{Path: path}
	}

	tokens, lexErrs := lexer.Scan(path, source)
	doc, parseErrs := parser.Parse(path, source, tokens, sch)

	report := &diagnostics.Report{
		Path:      path,
		ItemCount: doc.ItemCount(),
	}
	for _, e := range lexErrs {
		report.Add(diagnostics.Diagnostic{
			Severity: diagnostics.SeverityError,
			Code:     diagnostics.CodeMalformedLine,
			Message:  e.Message,
			Span: lexer.Span{
				File:        e.Path,
				StartLine:   e.Line,
				StartColumn: e.Column,
				EndLine:     e.Line,
				EndColumn:   e.Column,
			},
			UnderlineWidth: 1,
		})
	}
	for _, e := range parseErrs {
		report.Add(diagnostics.Diagnostic{
			Severity: diagnostics.SeverityError,
			Code:     diagnostics.CodeUnknownKey,
			Message:  e.Message,
			Span:     e.Span,
		})
	}
	report.Add(validator.Validate(doc, sch)...)

	report.Sort()
	return report, nil
}

// Run executes the configured checks and aggregates their reports. A fatal
// error stops the run; diagnostics never do.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (Summary, error) {
	logger := p.Env.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	newResolver := p.Env.FSResolver
	if newResolver == nil {
		newResolver = fileset.NewOSResolver
	}

	summary := Summary{
		RunID:  uuid.NewString(),
		Format: config.FormatText,
	}
	logger = logger.With("run_id", summary.RunID)

	var sets []config.DocumentSet
	var resolver fileset.Resolver
	var err error

	switch {
	case len(opts.Paths) > 0:
		resolver, err = newResolver(".")
		if err != nil {
			return summary, err
		}
		sets, err = p.adHocSets(opts)
		if err != nil {
			return summary, err
		}
	default:
		resolver, err = newResolver(filepath.Dir(opts.ConfigPath))
		if err != nil {
			return summary, err
		}
		res, err := config.Load(opts.ConfigPath, config.LoadOptions{
			Strict:   opts.StrictConfig,
			Resolver: &resolver,
		})
		if err != nil {
			return summary, err
		}
		summary.Warnings = res.Warnings
		summary.Format = res.Plan.Format
		sets = res.Plan.Sets
	}

	if opts.Format != "" {
		summary.Format = opts.Format
	}

	for _, set := range sets {
		logger.Debug("checking document set",
			"schema", set.SchemaName, "documents", len(set.Paths))
		for _, path := range set.Paths {
			if err := ctx.Err(); err != nil {
				return summary, err
			}
			data, err := resolver.Open(path)
			if err != nil {
				return summary, &ReadError{Path: path, Err: err}
			}
			report, err := Check(path, string(data), set.Schema)
			if err != nil {
				return summary, err
			}
			logger.Debug("checked document",
				"path", path, "items", report.ItemCount, "errors", report.ErrorCount())
			summary.Results = append(summary.Results, Result{
				Report: report,
				Source: string(data),
			})
			summary.ErrorCount += report.ErrorCount()
		}
	}

	logger.Debug("run finished",
		"documents", len(summary.Results), "errors", summary.ErrorCount)
	return summary, nil
}

// adHocSets builds a single document set from explicit paths and a schema
// name, for the config-less command line mode.
func (p *Pipeline) adHocSets(opts RunOptions) ([]config.DocumentSet, error) {
	if opts.SchemaName == "" {
		return nil, fmt.Errorf("a schema is required when paths are given directly")
	}

	sch, ok := builtin.ByName(opts.SchemaName)
	if !ok {
		loaded, err := schemafile.Load(opts.SchemaName)
		if err != nil {
			return nil, err
		}
		sch = loaded
	}

	return []config.DocumentSet{{
		SchemaName: opts.SchemaName,
		Schema:     sch,
		Paths:      opts.Paths,
	}}, nil
}
