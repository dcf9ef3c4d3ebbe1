// Package validator checks a parsed document tree against its schema and
// produces positioned diagnostics.
//
// Every check is independent and recoverable: a violation is recorded and
// the pass continues, so one invocation surfaces every defect in the
// document. The returned diagnostics are sorted by source position.
package validator

import (
	"fmt"
	"strings"

	"github.com/plx-dev/dycheck/internal/diagnostics"
	"github.com/plx-dev/dycheck/internal/document"
	"github.com/plx-dev/dycheck/internal/lexer"
	"github.com/plx-dev/dycheck/internal/schema"
)

// Validate runs the context, cardinality, required-children and value checks
// over the document. Nodes with unknown keys are skipped entirely; the
// parser already reported those.
func Validate(doc *document.Document, sch *schema.Schema) []diagnostics.Diagnostic {
	v := &run{doc: doc, sch: sch, skip: make(map[int]bool)}

	// Scope checks go first so that excess occurrences are flagged before
	// their per-node checks run; flagged nodes skip value and child checks
	// to keep one defect from fanning out into several diagnostics.
	v.checkScope(document.Root, doc.Roots())
	for id := 0; id < doc.Len(); id++ {
		n := doc.Node(id)
		// Scopes opened by unknown, misplaced or excess containers are not
		// checked: those containers already carry their own diagnostic.
		// Parents precede children in the arena, so the excess marks from
		// the enclosing scope are set by the time a container comes up.
		if n.Unknown || n.Misplaced || v.skip[id] {
			continue
		}
		if rule, ok := sch.RuleFor(n.Key); ok && rule.Container {
			v.checkScope(id, n.Children)
		}
	}

	for id := 0; id < doc.Len(); id++ {
		v.checkNode(id)
	}

	report := diagnostics.Report{Diagnostics: v.diags}
	report.Sort()
	return report.Diagnostics
}

type run struct {
	doc   *document.Document
	sch   *schema.Schema
	diags []diagnostics.Diagnostic

	// skip marks nodes whose remaining checks are suppressed because a
	// scope-level diagnostic already covers them.
	skip map[int]bool
}

func (v *run) add(code, message string, span lexer.Span, note string) {
	v.diags = append(v.diags, diagnostics.Diagnostic{
		Severity: diagnostics.SeverityError,
		Code:     code,
		Message:  message,
		Span:     span,
		Note:     note,
	})
}

// checkScope enforces the occurrence bounds and required children of one
// scope. scopeID is document.Root for the top level.
func (v *run) checkScope(scopeID int, children []int) {
	scopeKey := schema.RootKey
	var scopeRule schema.KeyRule
	if scopeID != document.Root {
		scopeKey = v.doc.Key(scopeID)
		scopeRule, _ = v.sch.RuleFor(scopeKey)
	}

	// Occurrences per key, counting only nodes that belong in this scope.
	// Misplaced or unknown nodes get their own diagnostics elsewhere and
	// must not trip the bounds of the scope they were recovered into.
	counts := make(map[string][]int)
	for _, id := range children {
		n := v.doc.Node(id)
		if n.Unknown || n.Misplaced {
			continue
		}
		if !v.sch.IsValidChild(scopeKey, n.Key) {
			continue
		}
		counts[n.Key] = append(counts[n.Key], id)
	}

	for _, key := range v.sch.Keys() {
		rule, _ := v.sch.RuleFor(key)
		if !rule.AllowsParent(scopeKey) {
			continue
		}
		occ := counts[key]

		if rule.MaxCount > 0 && len(occ) > rule.MaxCount {
			for _, id := range occ[rule.MaxCount:] {
				n := v.doc.Node(id)
				v.add(diagnostics.CodeTooManyUses,
					tooManyMessage(key, rule.MaxCount, scopeKey),
					n.KeySpan, "")
				v.skip[id] = true
			}
		}

		if len(occ) < rule.MinCount {
			// A zero count of a required child is reported once as the
			// missing-child diagnostic below, not twice.
			if len(occ) == 0 && scopeID != document.Root &&
				contains(scopeRule.RequiredChildren, key) {
				continue
			}
			v.add(diagnostics.CodeMissingKey,
				tooFewMessage(key, rule.MinCount, scopeKey),
				v.scopeAnchor(scopeID), "")
		}
	}

	if scopeID == document.Root {
		return
	}
	for _, child := range scopeRule.RequiredChildren {
		if len(counts[child]) > 0 {
			continue
		}
		note := ""
		if childRule, ok := v.sch.RuleFor(child); ok {
			note = childRule.Desc
		}
		v.add(diagnostics.CodeMissingChild,
			fmt.Sprintf("The '%s' key is missing a required '%s' key", scopeKey, child),
			v.scopeAnchor(scopeID), note)
	}
}

// checkNode enforces the context and value rules of one node.
func (v *run) checkNode(id int) {
	n := v.doc.Node(id)
	if n.Unknown || v.skip[id] {
		return
	}
	rule, ok := v.sch.RuleFor(n.Key)
	if !ok {
		return
	}

	parentKey := v.doc.Key(n.Parent)
	if n.Parent == document.Root {
		parentKey = schema.RootKey
	}
	if !rule.AllowsParent(parentKey) {
		v.add(diagnostics.CodeWrongContext,
			wrongContextMessage(n.Key, rule.Parents),
			n.KeySpan, "")
		// A node in the wrong place gets exactly one diagnostic; its value
		// rules would apply in the right place, not here.
		return
	}

	v.checkValue(n, rule)
}

func (v *run) checkValue(n *document.Node, rule schema.KeyRule) {
	switch rule.Shape.Kind {
	case schema.ShapeNone:
		if n.Value != "" {
			v.add(diagnostics.CodeUnexpectedValue,
				fmt.Sprintf("The '%s' key does not accept a value", n.Key),
				n.ValueSpan, "")
			return
		}
	case schema.ShapeEnum:
		if n.Value != "" && !contains(rule.Shape.Enum, n.Value) {
			v.add(diagnostics.CodeInvalidValue,
				fmt.Sprintf("The value '%s' is not valid for the '%s' key", n.Value, n.Key),
				n.ValueSpan,
				"accepted values: "+strings.Join(rule.Shape.Enum, ", "))
			return
		}
	}

	if rule.ValueRequired && n.Value == "" {
		v.diags = append(v.diags, diagnostics.Diagnostic{
			Severity: diagnostics.SeverityError,
			Code:     diagnostics.CodeMissingValue,
			Message:  fmt.Sprintf("The '%s' key requires a value", n.Key),
			Span:     n.ValueSpan,
			// The value span is empty here; underline the spot after the
			// key with a single caret width so the anchor stays visible.
			UnderlineWidth: 1,
			Note:           rule.Desc,
		})
	}
}

// scopeAnchor returns the span shortfall diagnostics point at: the opener
// key of the scope, or the start of the document for the root scope.
func (v *run) scopeAnchor(scopeID int) lexer.Span {
	if scopeID != document.Root {
		return v.doc.Node(scopeID).KeySpan
	}
	return lexer.Span{
		File:        v.doc.Path,
		StartLine:   1,
		StartColumn: 1,
		EndLine:     1,
		EndColumn:   1,
	}
}

func wrongContextMessage(key string, parents []string) string {
	return fmt.Sprintf("The '%s' key can be only used %s", key, placePhrase(parents))
}

func tooManyMessage(key string, max int, scopeKey string) string {
	place := "at this level"
	if scopeKey == schema.RootKey {
		place = "in document root"
	}
	if max == 1 {
		return fmt.Sprintf("The '%s' key can only be used once %s", key, place)
	}
	return fmt.Sprintf("The '%s' key can only be used %d times %s", key, max, place)
}

func tooFewMessage(key string, min int, scopeKey string) string {
	place := "at this level"
	if scopeKey == schema.RootKey {
		place = "in document root"
	}
	if min == 1 {
		return fmt.Sprintf("The '%s' key must be used at least once %s", key, place)
	}
	return fmt.Sprintf("The '%s' key must be used at least %d times %s", key, min, place)
}

// placePhrase renders an allowed-parent set for a context message, like
// "under a `course`" or "in document root".
func placePhrase(parents []string) string {
	var parts []string
	for _, p := range parents {
		if p == schema.RootKey {
			parts = append(parts, "in document root")
			continue
		}
		parts = append(parts, fmt.Sprintf("under a `%s`", p))
	}
	return strings.Join(parts, " or ")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
