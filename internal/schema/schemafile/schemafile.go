// Package schemafile loads schema definitions from TOML files, so document
// formats can be declared without touching Go code.
//
// A schema file is a list of [[key]] tables:
//
//	[[key]]
//	key = "course"
//	desc = "Define the course with its name."
//	parents = ["root"]
//	container = true
//	min = 1
//	max = 1
//	requires = ["code", "goal"]
//	value = "text!"
//
// The value field holds a small constraint expression: "text", "none" or
// "enum(a|b|c)", with an optional trailing "!" marking the value as
// required. Omitting the field means an optional free-text value.
package schemafile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/plx-dev/dycheck/internal/schema"
)

type keyDef struct {
	Key       string   `toml:"key"`
	Desc      string   `toml:"desc"`
	Parents   []string `toml:"parents"`
	Container bool     `toml:"container"`
	Min       int      `toml:"min"`
	Max       int      `toml:"max"`
	Requires  []string `toml:"requires"`
	Value     string   `toml:"value"`
}

type file struct {
	Keys []keyDef `toml:"key"`
}

// shapeLexer tokenizes value constraint expressions. Atoms are free-form so
// enum values may contain anything but the expression punctuation.
var shapeLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Whitespace", Pattern: `[ \t]+`},
		{Name: "Punct", Pattern: `[()|!]`},
		{Name: "Atom", Pattern: `[^()|!\s][^()|!]*`},
	},
})

// shapeExpr is the participle grammar for value constraint expressions.
type shapeExpr struct {
	Kind     string   `parser:"@('text' | 'none' | 'enum')"`
	Values   []string `parser:"('(' @Atom ('|' @Atom)* ')')?"`
	Required bool     `parser:"@'!'?"`
}

var shapeParser = participle.MustBuild[shapeExpr](
	participle.Lexer(shapeLexer),
	participle.Elide("Whitespace"),
)

// ParseShape parses one value constraint expression into its shape and the
// required flag.
func ParseShape(expr string) (schema.ValueShape, bool, error) {
	parsed, err := shapeParser.ParseString("", expr)
	if err != nil {
		return schema.ValueShape{}, false, fmt.Errorf("value expression %q: %w", expr, err)
	}

	var shape schema.ValueShape
	switch parsed.Kind {
	case "text":
		shape.Kind = schema.ShapeText
	case "none":
		shape.Kind = schema.ShapeNone
	case "enum":
		shape.Kind = schema.ShapeEnum
	}

	if parsed.Kind == "enum" {
		if len(parsed.Values) == 0 {
			return schema.ValueShape{}, false, fmt.Errorf("value expression %q: enum needs at least one value", expr)
		}
		for _, v := range parsed.Values {
			shape.Enum = append(shape.Enum, strings.TrimSpace(v))
		}
	} else if len(parsed.Values) > 0 {
		return schema.ValueShape{}, false, fmt.Errorf("value expression %q: only enum takes a value list", expr)
	}

	return shape, parsed.Required, nil
}

// Parse builds a schema from TOML schema definition data.
func Parse(data []byte) (*schema.Schema, error) {
	var f file
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if len(f.Keys) == 0 {
		return nil, fmt.Errorf("schema file defines no [[key]] tables")
	}

	rules := make([]schema.KeyRule, 0, len(f.Keys))
	for _, def := range f.Keys {
		rule := schema.KeyRule{
			Key:              def.Key,
			Desc:             def.Desc,
			Parents:          def.Parents,
			Container:        def.Container,
			MinCount:         def.Min,
			MaxCount:         def.Max,
			RequiredChildren: def.Requires,
		}
		// A key without declared parents lives at the document root.
		if len(rule.Parents) == 0 {
			rule.Parents = []string{schema.RootKey}
		}
		if def.Value != "" {
			shape, required, err := ParseShape(def.Value)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", def.Key, err)
			}
			rule.Shape = shape
			rule.ValueRequired = required
		}
		rules = append(rules, rule)
	}

	return schema.New(rules)
}

// Load reads and parses a TOML schema definition file.
func Load(path string) (*schema.Schema, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
