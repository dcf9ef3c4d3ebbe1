package lexer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestScanBasicLines(t *testing.T) {
	t.Parallel()

	src := "course Programmation 1\ncode PRG1\ngoal Apprendre des bases solides du C++"
	tokens, errs := Scan("course.dy", src)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	want := []Token{
		{
			Key:       "course",
			Value:     "Programmation 1",
			KeySpan:   NewSpan("course.dy", 1, 1, "course"),
			ValueSpan: NewSpan("course.dy", 1, 8, "Programmation 1"),
			Line:      1,
		},
		{
			Key:       "code",
			Value:     "PRG1",
			KeySpan:   NewSpan("course.dy", 2, 1, "code"),
			ValueSpan: NewSpan("course.dy", 2, 6, "PRG1"),
			Line:      2,
		},
		{
			Key:       "goal",
			Value:     "Apprendre des bases solides du C++",
			KeySpan:   NewSpan("course.dy", 3, 1, "goal"),
			ValueSpan: NewSpan("course.dy", 3, 6, "Apprendre des bases solides du C++"),
			Line:      3,
		},
	}
	if diff := cmp.Diff(want, tokens); diff != "" {
		t.Fatalf("token mismatch (-want +got):\n%s", diff)
	}
}

func TestScanSkipsBlankAndCommentLines(t *testing.T) {
	t.Parallel()

	src := "// header comment\ncourse Intro\n\n   \n// another\ncode X1\n"
	tokens, errs := Scan("course.dy", src)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d (%v)", len(tokens), tokens)
	}
	if tokens[0].Key != "course" || tokens[0].Line != 2 {
		t.Fatalf("unexpected first token: %+v", tokens[0])
	}
	if tokens[1].Key != "code" || tokens[1].Line != 6 {
		t.Fatalf("unexpected second token: %+v", tokens[1])
	}
}

func TestScanIndentedCommentIsNotAComment(t *testing.T) {
	t.Parallel()

	tokens, errs := Scan("notes.dy", " // indented")
	if len(tokens) != 0 {
		t.Fatalf("expected no tokens, got %v", tokens)
	}
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	if errs[0].Line != 1 || errs[0].Column != 1 {
		t.Fatalf("unexpected error position: %+v", errs[0])
	}
}

func TestScanReportsIndentedLineAndContinues(t *testing.T) {
	t.Parallel()

	src := "course Intro\n  stray continuation\ncode PRG1"
	tokens, errs := Scan("course.dy", src)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	if errs[0].Line != 2 {
		t.Fatalf("expected error on line 2, got %+v", errs[0])
	}
	if len(tokens) != 2 {
		t.Fatalf("expected scanning to continue past the bad line, got %v", tokens)
	}
	if tokens[1].Key != "code" {
		t.Fatalf("unexpected token after recovery: %+v", tokens[1])
	}
}

func TestScanKeyOnlyLine(t *testing.T) {
	t.Parallel()

	tokens, errs := Scan("exo.dy", "check")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(tokens) != 1 {
		t.Fatalf("expected 1 token, got %v", tokens)
	}
	tok := tokens[0]
	if tok.Key != "check" || tok.Value != "" {
		t.Fatalf("unexpected token: %+v", tok)
	}
	if !tok.ValueSpan.IsEmpty() {
		t.Fatalf("expected empty value span, got %+v", tok.ValueSpan)
	}
	if tok.ValueSpan.StartColumn != 6 {
		t.Fatalf("expected value span anchored after key, got %+v", tok.ValueSpan)
	}
}

func TestScanTrimsValueAndKeepsColumns(t *testing.T) {
	t.Parallel()

	tokens, errs := Scan("exo.dy", "see   What is your firstname ?   ")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	tok := tokens[0]
	if tok.Value != "What is your firstname ?" {
		t.Fatalf("value not trimmed: %q", tok.Value)
	}
	if tok.ValueSpan.StartColumn != 7 {
		t.Fatalf("expected value to start at column 7, got %d", tok.ValueSpan.StartColumn)
	}
}

func TestScanCountsColumnsInRunes(t *testing.T) {
	t.Parallel()

	tokens, errs := Scan("course.dy", "école très jolie")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	tok := tokens[0]
	if tok.Key != "école" {
		t.Fatalf("unexpected key: %q", tok.Key)
	}
	if tok.KeySpan.EndColumn != 6 {
		t.Fatalf("expected key span end column 6, got %d", tok.KeySpan.EndColumn)
	}
	if tok.ValueSpan.StartColumn != 7 {
		t.Fatalf("expected value at column 7, got %d", tok.ValueSpan.StartColumn)
	}
}

func TestScanCRLF(t *testing.T) {
	t.Parallel()

	tokens, errs := Scan("course.dy", "course Intro\r\ncode PRG1\r\n")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %v", tokens)
	}
	if tokens[0].Value != "Intro" {
		t.Fatalf("carriage return leaked into value: %q", tokens[0].Value)
	}
}

func TestSpanWidth(t *testing.T) {
	t.Parallel()

	s := NewSpan("f.dy", 1, 5, "abc")
	if s.Width() != 3 {
		t.Fatalf("expected width 3, got %d", s.Width())
	}
	if s.IsEmpty() {
		t.Fatal("span should not be empty")
	}
	empty := Span{StartColumn: 4, EndColumn: 4}
	if !empty.IsEmpty() {
		t.Fatal("expected empty span")
	}
}

func TestErrorFormatting(t *testing.T) {
	t.Parallel()

	e := &Error{Path: "a.dy", Line: 3, Column: 1, Message: "missing key"}
	want := "a.dy:3:1: missing key"
	if e.Error() != want {
		t.Fatalf("unexpected error string: %q", e.Error())
	}
}
