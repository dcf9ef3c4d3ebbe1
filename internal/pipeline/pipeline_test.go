package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/plx-dev/dycheck/internal/config"
	"github.com/plx-dev/dycheck/internal/diagnostics"
	"github.com/plx-dev/dycheck/internal/schema/builtin"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestCheckValidDocument(t *testing.T) {
	t.Parallel()

	report, err := Check("course.dy", "course Programmation 1\ncode PRG1\ngoal Apprendre", builtin.Course)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if report.HasErrors() {
		t.Fatalf("expected clean report, got %v", report.Diagnostics)
	}
	if report.ItemCount != 1 {
		t.Fatalf("expected 1 item, got %d", report.ItemCount)
	}
}

func TestCheckAggregatesAllStages(t *testing.T) {
	t.Parallel()

	// One lex error, one unknown key, one misplaced key and one missing
	// child, all surfaced in a single pass and sorted by position.
	src := "code CS-101\ncourse Intro\n  indented line\nbogus x\ngoal Learn"
	report, err := Check("course.dy", src, builtin.Course)
	if err != nil {
		t.Fatalf("check: %v", err)
	}

	want := []struct {
		code string
		line int
	}{
		{diagnostics.CodeWrongContext, 1},
		{diagnostics.CodeMissingChild, 2},
		{diagnostics.CodeMalformedLine, 3},
		{diagnostics.CodeUnknownKey, 4},
	}
	if len(report.Diagnostics) != len(want) {
		t.Fatalf("expected %d diagnostics, got %v", len(want), report.Diagnostics)
	}
	for i, w := range want {
		d := report.Diagnostics[i]
		if d.Code != w.code || d.Span.StartLine != w.line {
			t.Fatalf("diagnostic %d: want %s@%d, got %s@%d (%q)",
				i, w.code, w.line, d.Code, d.Span.StartLine, d.Message)
		}
	}
}

func TestCheckRejectsInvalidUTF8(t *testing.T) {
	t.Parallel()

	_, err := Check("bad.dy", "course \xff\xfe", builtin.Course)
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if decodeErr.Path != "bad.dy" {
		t.Fatalf("unexpected path: %q", decodeErr.Path)
	}
}

func TestRunWithConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "course.dy"), "course Intro\ncode PRG1\ngoal Learn")
	writeFile(t, filepath.Join(dir, "broken.dy"), "code CS-101")
	writeFile(t, filepath.Join(dir, "dycheck.toml"), `
[[document]]
schema = "course"
paths = ["*.dy"]

[output]
format = "yaml"
`)

	pipe := Pipeline{}
	summary, err := pipe.Run(context.Background(), RunOptions{
		ConfigPath: filepath.Join(dir, "dycheck.toml"),
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if summary.RunID == "" {
		t.Fatal("expected a run ID")
	}
	if summary.Format != config.FormatYAML {
		t.Fatalf("unexpected format: %s", summary.Format)
	}
	if len(summary.Results) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(summary.Results))
	}
	// Paths resolve sorted, so broken.dy comes first.
	if summary.Results[0].Report.ErrorCount() == 0 {
		t.Fatalf("broken.dy should have errors: %+v", summary.Results[0].Report)
	}
	if summary.Results[1].Report.ErrorCount() != 0 {
		t.Fatalf("course.dy should be clean: %v", summary.Results[1].Report.Diagnostics)
	}
	if summary.ErrorCount != summary.Results[0].Report.ErrorCount() {
		t.Fatalf("summary error count mismatch: %d", summary.ErrorCount)
	}
}

func TestRunAdHocPaths(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "exo.dy")
	writeFile(t, path, "exo Greet\ncheck Hello\nsee Hello World\nexit 0")

	pipe := Pipeline{}
	summary, err := pipe.Run(context.Background(), RunOptions{
		Paths:      []string{path},
		SchemaName: "exo",
		Format:     config.FormatJSON,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Format != config.FormatJSON {
		t.Fatalf("format override lost: %s", summary.Format)
	}
	if len(summary.Results) != 1 || summary.ErrorCount != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestRunAdHocWithSchemaFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "task.toml")
	writeFile(t, schemaPath, "[[key]]\nkey = \"task\"\ncontainer = true\nmin = 1\nvalue = \"text!\"\n")
	docPath := filepath.Join(dir, "tasks.dy")
	writeFile(t, docPath, "task Do the dishes")

	pipe := Pipeline{}
	summary, err := pipe.Run(context.Background(), RunOptions{
		Paths:      []string{docPath},
		SchemaName: schemaPath,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.ErrorCount != 0 {
		t.Fatalf("expected clean run, got %+v", summary.Results)
	}
}

func TestRunAdHocRequiresSchema(t *testing.T) {
	t.Parallel()

	pipe := Pipeline{}
	_, err := pipe.Run(context.Background(), RunOptions{Paths: []string{"a.dy"}})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestRunMissingDocumentIsReadError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pipe := Pipeline{}
	_, err := pipe.Run(context.Background(), RunOptions{
		Paths:      []string{filepath.Join(dir, "absent.dy")},
		SchemaName: "course",
	})

	var readErr *ReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("expected ReadError, got %v", err)
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "course.dy")
	writeFile(t, path, "course Intro\ncode PRG1\ngoal Learn")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pipe := Pipeline{}
	_, err := pipe.Run(ctx, RunOptions{
		Paths:      []string{path},
		SchemaName: "course",
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
