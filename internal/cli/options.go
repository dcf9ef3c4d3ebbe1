// Package cli parses the dycheck command line.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

// Options holds the parsed command line.
type Options struct {
	ConfigPath   string
	Schema       string
	Format       string
	StrictConfig bool
	Verbose      bool

	// Args lists positional document paths. When present the config file is
	// ignored and Schema selects the schema to check against.
	Args []string
}

// Parse interprets the command line arguments.
func Parse(args []string) (Options, error) {
	const defaultConfig = "dycheck.toml"

	opts := Options{
		ConfigPath: defaultConfig,
	}

	fs := flag.NewFlagSet("dycheck", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&opts.ConfigPath, "config", opts.ConfigPath, "Path to configuration file")
	fs.StringVar(&opts.ConfigPath, "c", opts.ConfigPath, "Path to configuration file")
	fs.StringVar(&opts.Schema, "schema", "", "Schema for documents given as arguments: a builtin name or a TOML schema file")
	fs.StringVar(&opts.Format, "format", "", "Report output format: text, json or yaml")
	fs.BoolVar(&opts.StrictConfig, "strict-config", false, "Treat configuration warnings as errors")
	fs.BoolVar(&opts.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.Verbose, "v", false, "Enable verbose logging")

	if err := fs.Parse(args); err != nil {
		usage := Usage(fs)
		if errors.Is(err, flag.ErrHelp) {
			return Options{}, fmt.Errorf("%w\n\n%s", err, usage)
		}
		return Options{}, fmt.Errorf("%w\n\n%s", err, usage)
	}

	opts.Args = fs.Args()

	if len(opts.Args) == 0 && opts.Schema != "" {
		return Options{}, fmt.Errorf("-schema requires document paths as arguments\n\n%s", Usage(fs))
	}

	return opts, nil
}

// Usage renders the flag summary for error messages and -h output.
func Usage(fs *flag.FlagSet) string {
	if fs == nil {
		return ""
	}
	var buf strings.Builder
	fmt.Fprintf(&buf, "Usage of %s:\n", fs.Name())
	out := fs.Output()
	fs.SetOutput(&buf)
	fs.PrintDefaults()
	fs.SetOutput(out)
	return buf.String()
}
