// Package lexer scans DY source text into positioned key/value tokens.
//
// A DY document is line oriented: every content line starts with a key (the
// leading run of non-whitespace characters) followed by an optional value.
// Blank lines and comment lines are skipped. Malformed lines are reported as
// recoverable errors so that a single scan surfaces every defect in the file.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CommentPrefix introduces a comment line. It must start at column 1;
// an indented comment is a malformed line, not a comment.
const CommentPrefix = "//"

// Scan splits src into lines and produces one Token per key/value line.
// Blank and comment lines are skipped silently. Malformed lines yield an
// Error and scanning continues with the next line.
func Scan(path, src string) ([]Token, []*Error) {
	var (
		tokens []Token
		errs   []*Error
	)
	for i, raw := range strings.Split(src, "\n") {
		line := strings.TrimSuffix(raw, "\r")
		lineNum := i + 1

		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, CommentPrefix) {
			continue
		}

		first, _ := utf8.DecodeRuneInString(line)
		if unicode.IsSpace(first) {
			errs = append(errs, &Error{
				Path:    path,
				Line:    lineNum,
				Column:  1,
				Message: "missing key: a key must start at the beginning of the line",
			})
			continue
		}

		tokens = append(tokens, scanLine(path, lineNum, line))
	}
	return tokens, errs
}

// scanLine cuts a content line into its key and trimmed value, recording the
// exact column range of both so diagnostics can underline the precise
// substring rather than the whole line.
func scanLine(path string, lineNum int, line string) Token {
	sep := strings.IndexFunc(line, unicode.IsSpace)
	if sep < 0 {
		// Key-only line: the value is empty and its span is a zero-width
		// marker right after the key.
		keySpan := NewSpan(path, lineNum, 1, line)
		return Token{
			Key:     line,
			KeySpan: keySpan,
			ValueSpan: Span{
				File:        path,
				StartLine:   lineNum,
				StartColumn: keySpan.EndColumn,
				EndLine:     lineNum,
				EndColumn:   keySpan.EndColumn,
			},
			Line: lineNum,
		}
	}

	key := line[:sep]
	value := strings.TrimSpace(line[sep:])

	valueStart := sep
	for valueStart < len(line) {
		r, size := utf8.DecodeRuneInString(line[valueStart:])
		if !unicode.IsSpace(r) {
			break
		}
		valueStart += size
	}
	valueColumn := 1 + utf8.RuneCountInString(line[:valueStart])

	return Token{
		Key:       key,
		Value:     value,
		KeySpan:   NewSpan(path, lineNum, 1, key),
		ValueSpan: NewSpan(path, lineNum, valueColumn, value),
		Line:      lineNum,
	}
}
