package lexer

import (
	"fmt"
	"unicode/utf8"
)

// Span marks a start and end position within a source file. Lines and
// columns are 1 based; EndColumn is exclusive, so the covered width is
// EndColumn - StartColumn.
type Span struct {
	File        string
	StartLine   int
	StartColumn int
	EndLine     int
	EndColumn   int
}

// NewSpan returns a span covering text starting at the given line and column.
func NewSpan(file string, line, column int, text string) Span {
	return Span{
		File:        file,
		StartLine:   line,
		StartColumn: column,
		EndLine:     line,
		EndColumn:   column + utf8.RuneCountInString(text),
	}
}

// Width reports the number of columns the span covers on its first line.
func (s Span) Width() int {
	w := s.EndColumn - s.StartColumn
	if w < 0 {
		return 0
	}
	return w
}

// IsEmpty reports whether the span covers no columns.
func (s Span) IsEmpty() bool {
	return s.Width() == 0
}

// Token is one key/value line emitted by the scanner with positional
// metadata. Value is trimmed of surrounding whitespace; the spans record
// exactly where the key and the trimmed value sit in the source line.
type Token struct {
	Key       string
	Value     string
	KeySpan   Span
	ValueSpan Span
	Line      int
}

// Error describes a positional scanning error suitable for diagnostics.
// It is recoverable: the scanner reports it and continues with the next line.
type Error struct {
	Path    string
	Line    int
	Column  int
	Message string
}

// Error returns the printable representation of the lexer error.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Path != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}
