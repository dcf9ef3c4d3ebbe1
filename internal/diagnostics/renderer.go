package diagnostics

import (
	"fmt"
	"io"
	"strings"
)

// Renderer turns a report plus the original source text into a plain-text
// listing with caret-underlined excerpts. It performs no validation and
// never mutates the report.
type Renderer struct {
	// Writer receives the rendered text.
	Writer io.Writer
}

// Render writes the summary header followed by one block per diagnostic in
// report order. Callers sort the report first.
func (r *Renderer) Render(report *Report, source string) error {
	lines := strings.Split(source, "\n")

	if _, err := fmt.Fprintf(r.Writer, "Found %d item(s) in %s with %d error(s)\n",
		report.ItemCount, report.Path, report.ErrorCount()); err != nil {
		return err
	}

	for _, d := range report.Diagnostics {
		if _, err := io.WriteString(r.Writer, "\n"); err != nil {
			return err
		}
		if err := r.renderOne(d, lines); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderOne(d Diagnostic, lines []string) error {
	if _, err := fmt.Fprintf(r.Writer, "Error at %s:%d:%d\n",
		d.Span.File, d.Span.StartLine, d.Span.StartColumn); err != nil {
		return err
	}

	var excerpt string
	if d.Span.StartLine >= 1 && d.Span.StartLine <= len(lines) {
		excerpt = strings.TrimSuffix(lines[d.Span.StartLine-1], "\r")
	}
	if _, err := fmt.Fprintf(r.Writer, "%s\n%s\n", excerpt, underline(d, excerpt)); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(r.Writer, "%s\n", d.Message); err != nil {
		return err
	}
	if d.Note != "" {
		if _, err := fmt.Fprintf(r.Writer, "| %s\n", d.Note); err != nil {
			return err
		}
	}
	return nil
}

// underline builds the caret line for a diagnostic. The leading gutter
// mirrors the excerpt's own characters, keeping tabs as tabs, so the carets
// line up regardless of how the terminal expands tab stops.
func underline(d Diagnostic, excerpt string) string {
	var b strings.Builder

	col := 1
	for _, r := range excerpt {
		if col >= d.Span.StartColumn {
			break
		}
		if r == '\t' {
			b.WriteRune('\t')
		} else {
			b.WriteRune(' ')
		}
		col++
	}
	// Columns past the excerpt end (empty spans anchored after the line).
	for ; col < d.Span.StartColumn; col++ {
		b.WriteRune(' ')
	}

	width := d.Span.Width()
	if d.UnderlineWidth > 0 {
		width = d.UnderlineWidth
	}
	if width < 1 {
		width = 1
	}
	b.WriteString(strings.Repeat("^", width))
	return b.String()
}
