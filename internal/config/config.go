// Package config loads and validates the dycheck configuration.
//
// A dycheck.toml declares one or more document sets, each binding a glob of
// DY files to the schema they must satisfy:
//
//	[[document]]
//	schema = "course"
//	paths = ["course.dy"]
//
//	[[document]]
//	schema_file = "schemas/recipe.toml"
//	paths = ["recipes/**/*.dy"]
//
//	[output]
//	format = "text"
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/plx-dev/dycheck/internal/fileset"
	"github.com/plx-dev/dycheck/internal/schema"
	"github.com/plx-dev/dycheck/internal/schema/builtin"
	"github.com/plx-dev/dycheck/internal/schema/schemafile"
)

// Format selects the report output encoding.
type Format string

const (
	// FormatText renders the human readable caret report.
	FormatText Format = "text"
	// FormatJSON renders the machine readable JSON report.
	FormatJSON Format = "json"
	// FormatYAML renders the machine readable YAML report.
	FormatYAML Format = "yaml"
)

var validFormats = map[Format]struct{}{
	FormatText: {},
	FormatJSON: {},
	FormatYAML: {},
}

// ParseFormat validates a format name from a flag or config value.
func ParseFormat(name string) (Format, error) {
	f := Format(name)
	if _, ok := validFormats[f]; !ok {
		return "", fmt.Errorf("unknown output format %q (expected text, json or yaml)", name)
	}
	return f, nil
}

// DocumentConfig mirrors one [[document]] table.
type DocumentConfig struct {
	Schema     string   `toml:"schema"`
	SchemaFile string   `toml:"schema_file"`
	Paths      []string `toml:"paths"`
}

// OutputConfig mirrors the [output] table.
type OutputConfig struct {
	Format string `toml:"format"`
}

// Config mirrors the expected dycheck TOML schema.
type Config struct {
	Documents []DocumentConfig `toml:"document"`
	Output    OutputConfig     `toml:"output"`
}

// DocumentSet is one fully resolved group of documents sharing a schema.
type DocumentSet struct {
	// SchemaName labels the schema in logs: a builtin name or a file path.
	SchemaName string
	Schema     *schema.Schema
	Paths      []string
}

// Plan is the fully resolved configuration used by the pipeline.
type Plan struct {
	Sets   []DocumentSet
	Format Format
}

// LoadOptions tunes config loading behavior.
type LoadOptions struct {
	// Strict promotes configuration warnings to errors.
	Strict bool
	// Resolver overrides the glob resolver; defaults to an OS resolver
	// rooted at the config file's directory.
	Resolver *fileset.Resolver
}

// Result wraps a loaded plan alongside any non-fatal warnings.
type Result struct {
	Plan     Plan
	Warnings []string
}

// Load reads, validates, and resolves a dycheck configuration file.
func Load(path string, opts LoadOptions) (Result, error) {
	var res Result

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return res, fmt.Errorf("read %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}

	unknown, err := collectUnknownKeys(data)
	if err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		message := fmt.Sprintf("%s: unknown configuration keys: %s", path, strings.Join(unknown, ", "))
		if opts.Strict {
			return res, errors.New(message)
		}
		res.Warnings = append(res.Warnings, message)
	}

	if len(cfg.Documents) == 0 {
		return res, fmt.Errorf("%s: no [[document]] tables defined", path)
	}

	format := FormatText
	if cfg.Output.Format != "" {
		format, err = ParseFormat(cfg.Output.Format)
		if err != nil {
			return res, fmt.Errorf("%s: %w", path, err)
		}
	}

	baseDir := filepath.Dir(path)
	var resolver fileset.Resolver
	if opts.Resolver != nil {
		resolver = *opts.Resolver
	} else {
		resolver, err = fileset.NewOSResolver(baseDir)
		if err != nil {
			return res, fmt.Errorf("%s: %w", path, err)
		}
	}

	for i, doc := range cfg.Documents {
		set, err := resolveDocument(baseDir, resolver, doc)
		if err != nil {
			return res, fmt.Errorf("%s: document %d: %w", path, i+1, err)
		}
		res.Plan.Sets = append(res.Plan.Sets, set)
	}
	res.Plan.Format = format

	return res, nil
}

func resolveDocument(baseDir string, resolver fileset.Resolver, doc DocumentConfig) (DocumentSet, error) {
	var set DocumentSet

	switch {
	case doc.Schema != "" && doc.SchemaFile != "":
		return set, errors.New("schema and schema_file are mutually exclusive")
	case doc.Schema != "":
		s, ok := builtin.ByName(doc.Schema)
		if !ok {
			return set, fmt.Errorf("unknown builtin schema %q (available: %s)",
				doc.Schema, strings.Join(builtin.Names(), ", "))
		}
		set.SchemaName = doc.Schema
		set.Schema = s
	case doc.SchemaFile != "":
		schemaPath := doc.SchemaFile
		if !filepath.IsAbs(schemaPath) {
			schemaPath = filepath.Join(baseDir, schemaPath)
		}
		s, err := schemafile.Load(schemaPath)
		if err != nil {
			return set, err
		}
		set.SchemaName = doc.SchemaFile
		set.Schema = s
	default:
		return set, errors.New("either schema or schema_file must be set")
	}

	if len(doc.Paths) == 0 {
		return set, errors.New("paths must list at least one glob pattern")
	}
	paths, err := resolver.Resolve(doc.Paths)
	if err != nil {
		return set, err
	}
	set.Paths = paths

	return set, nil
}

func collectUnknownKeys(data []byte) ([]string, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	known := map[string]struct{}{
		"document": {},
		"output":   {},
	}

	unknown := make([]string, 0)
	for key := range raw {
		if _, ok := known[key]; !ok {
			unknown = append(unknown, key)
		}
	}

	docKnown := map[string]struct{}{
		"schema":      {},
		"schema_file": {},
		"paths":       {},
	}
	if docs, ok := raw["document"].([]any); ok {
		for _, d := range docs {
			table, ok := d.(map[string]any)
			if !ok {
				continue
			}
			for key := range table {
				if _, ok := docKnown[key]; !ok {
					unknown = append(unknown, "document."+key)
				}
			}
		}
	}

	return unknown, nil
}
