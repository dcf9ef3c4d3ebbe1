// Package parser builds a document tree from the token stream produced by
// the lexer.
//
// Parsing is driven by the schema: a token's key decides where it attaches.
// The parser walks the tokens once with an explicit scope stack, never
// recurses, and never fails fatally. Tokens it cannot place are attached to
// the nearest open scope so later stages still see them, and the defect is
// reported as a recoverable structural error.
package parser

import (
	"fmt"

	"github.com/plx-dev/dycheck/internal/document"
	"github.com/plx-dev/dycheck/internal/lexer"
	"github.com/plx-dev/dycheck/internal/schema"
)

// StructuralError describes a token the parser could not place according to
// the schema. The token still produced a node; the error records why its
// placement is suspect.
type StructuralError struct {
	Span    lexer.Span
	Message string
}

// Error returns the printable representation of the structural error.
func (e *StructuralError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.Span.File, e.Span.StartLine, e.Span.StartColumn, e.Message)
}

// scope is one open container on the parser stack. The bottom entry is the
// implicit document root.
type scope struct {
	id  int
	key string
}

// Parse attaches every token to the document tree. The returned structural
// errors cover unknown keys only; misplaced known keys are marked on their
// node and left for the validator, which owns the context rules.
//
// The scope stack starts with the implicit root and grows by one entry per
// container node. For each token the stack is searched from the innermost
// scope outward for a scope the key accepts as parent; finding one pops
// everything above it. A key no open scope accepts attaches to the current
// innermost scope and is flagged as misplaced.
func Parse(path, source string, tokens []lexer.Token, sch *schema.Schema) (*document.Document, []*StructuralError) {
	doc := document.New(path, source)
	stack := []scope{{id: document.Root, key: schema.RootKey}}
	var errs []*StructuralError

	for _, tok := range tokens {
		node := document.Node{
			Key:       tok.Key,
			Value:     tok.Value,
			KeySpan:   tok.KeySpan,
			ValueSpan: tok.ValueSpan,
			Line:      tok.Line,
		}

		rule, known := sch.RuleFor(tok.Key)
		if !known {
			node.Unknown = true
			errs = append(errs, &StructuralError{
				Span:    tok.KeySpan,
				Message: fmt.Sprintf("The '%s' key is not part of the document format", tok.Key),
			})
			doc.Add(node, stack[len(stack)-1].id)
			continue
		}

		// Innermost scope accepting this key wins, so a key valid both
		// deeper and shallower on the stack stays in the deeper scope.
		at := -1
		for i := len(stack) - 1; i >= 0; i-- {
			if rule.AllowsParent(stack[i].key) {
				at = i
				break
			}
		}

		if at >= 0 {
			stack = stack[:at+1]
		} else {
			node.Misplaced = true
		}

		id := doc.Add(node, stack[len(stack)-1].id)
		if rule.Container {
			// Misplaced containers still open a scope: their children are
			// legitimately nested even if the container itself is not.
			stack = append(stack, scope{id: id, key: tok.Key})
		}
	}

	return doc, errs
}
