// Package main implements the dycheck CLI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/plx-dev/dycheck/internal/cli"
	"github.com/plx-dev/dycheck/internal/config"
	"github.com/plx-dev/dycheck/internal/diagnostics"
	"github.com/plx-dev/dycheck/internal/logging"
	"github.com/plx-dev/dycheck/internal/pipeline"
)

func main() {
	code := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := cli.Parse(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			_, _ = fmt.Fprintln(stdout, err.Error())
			return 0
		}
		_, _ = fmt.Fprintln(stderr, err.Error())
		return 1
	}

	if len(opts.Args) > 0 && opts.Schema == "" {
		_, _ = fmt.Fprintln(stderr, "document paths require -schema to select a schema")
		return 1
	}

	var format config.Format
	if opts.Format != "" {
		format, err = config.ParseFormat(opts.Format)
		if err != nil {
			_, _ = fmt.Fprintln(stderr, err.Error())
			return 1
		}
	}

	logger := logging.New(logging.Options{
		Verbose: opts.Verbose,
		Writer:  stderr,
	})

	pipe := pipeline.Pipeline{Env: pipeline.Environment{Logger: logger}}
	summary, runErr := pipe.Run(ctx, pipeline.RunOptions{
		ConfigPath:   opts.ConfigPath,
		StrictConfig: opts.StrictConfig,
		Paths:        opts.Args,
		SchemaName:   opts.Schema,
		Format:       format,
	})

	for _, warning := range summary.Warnings {
		_, _ = fmt.Fprintln(stderr, warning)
	}

	if runErr != nil {
		_, _ = fmt.Fprintln(stderr, runErr.Error())
		return 2
	}

	if err := render(stdout, summary); err != nil {
		_, _ = fmt.Fprintln(stderr, err.Error())
		return 2
	}

	if summary.ErrorCount > 0 {
		return 1
	}
	return 0
}

func render(w io.Writer, summary pipeline.Summary) error {
	switch summary.Format {
	case config.FormatJSON, config.FormatYAML:
		reports := make([]*diagnostics.Report, 0, len(summary.Results))
		for _, res := range summary.Results {
			reports = append(reports, res.Report)
		}
		if summary.Format == config.FormatJSON {
			return diagnostics.EncodeJSON(w, reports)
		}
		return diagnostics.EncodeYAML(w, reports)
	default:
		renderer := diagnostics.Renderer{Writer: w}
		for i, res := range summary.Results {
			if i > 0 {
				if _, err := io.WriteString(w, "\n"); err != nil {
					return err
				}
			}
			if err := renderer.Render(res.Report, res.Source); err != nil {
				return err
			}
		}
		return nil
	}
}
