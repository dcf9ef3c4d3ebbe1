// Package diagnostics defines the diagnostic and report model shared by the
// lexer, parser and validator, plus the renderers that turn a report into
// human or machine readable output.
package diagnostics

import (
	"sort"

	"github.com/plx-dev/dycheck/internal/lexer"
)

// Severity indicates how serious a diagnostic is.
type Severity int

const (
	// SeverityError marks a defect that makes the document invalid.
	SeverityError Severity = iota
	// SeverityWarning marks a defect worth surfacing without failing the run.
	SeverityWarning
)

// String returns the lowercase severity name.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Diagnostic codes. Stable identifiers for tooling; the human message on the
// diagnostic carries the details.
const (
	CodeMalformedLine   = "E100"
	CodeUnknownKey      = "E101"
	CodeWrongContext    = "E102"
	CodeTooManyUses     = "E103"
	CodeMissingKey      = "E104"
	CodeMissingChild    = "E105"
	CodeInvalidValue    = "E106"
	CodeMissingValue    = "E107"
	CodeUnexpectedValue = "E108"
)

// CodeDescription maps diagnostic codes to a short generic description.
var CodeDescription = map[string]string{
	CodeMalformedLine:   "line does not start with a key",
	CodeUnknownKey:      "key is not defined by the schema",
	CodeWrongContext:    "key used under a parent that does not allow it",
	CodeTooManyUses:     "key used more often than the schema allows",
	CodeMissingKey:      "key used fewer times than the schema requires",
	CodeMissingChild:    "container is missing a required child key",
	CodeInvalidValue:    "value is not one of the accepted values",
	CodeMissingValue:    "key requires a value but none was given",
	CodeUnexpectedValue: "key does not accept a value",
}

// Diagnostic is one positioned finding about a document.
type Diagnostic struct {
	Severity Severity
	Code     string
	Message  string
	Span     lexer.Span

	// UnderlineWidth overrides the rendered caret width when non-zero.
	// Used when the anchor span is empty but the report should still point
	// at something visible, like a whole key.
	UnderlineWidth int

	// Note is an optional secondary line rendered under the message.
	Note string
}

// Report collects every diagnostic found in one document.
type Report struct {
	Path        string
	ItemCount   int
	Diagnostics []Diagnostic
}

// Add appends diagnostics to the report.
func (r *Report) Add(diags ...Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, diags...)
}

// Sort orders diagnostics by position, then code, then message, so repeated
// runs over the same input render identically.
func (r *Report) Sort() {
	sort.SliceStable(r.Diagnostics, func(i, j int) bool {
		a, b := r.Diagnostics[i], r.Diagnostics[j]
		if a.Span.StartLine != b.Span.StartLine {
			return a.Span.StartLine < b.Span.StartLine
		}
		if a.Span.StartColumn != b.Span.StartColumn {
			return a.Span.StartColumn < b.Span.StartColumn
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.Message < b.Message
	})
}

// Len returns the number of diagnostics in the report.
func (r *Report) Len() int {
	return len(r.Diagnostics)
}

// ErrorCount returns the number of error-severity diagnostics.
func (r *Report) ErrorCount() int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityError {
			n++
		}
	}
	return n
}

// HasErrors reports whether the report holds at least one error.
func (r *Report) HasErrors() bool {
	return r.ErrorCount() > 0
}
