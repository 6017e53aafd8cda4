package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "codesim",
		Usage:     "Source code similarity scoring",
		Version:   version,
		Writer:    stdout,
		ErrWriter: stderr,
		Metadata:  make(map[string]interface{}),
		Description: `codesim estimates how similar two source files are. It normalizes both
files, extracts either tokens or function and class signatures, and scores
the overlap of the two sets with the Jaccard index.

Supports: C, C++, Java, Python`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"CODESIM_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before: setup,
		After:  teardown,
		// Exit codes are applied in main so tests can run the app in-process.
		ExitErrHandler: func(*cli.Context, error) {},
		Commands: []*cli.Command{
			astCmd(),
			jaccardCmd(),
			compareCmd(),
			dumpCmd(),
			batchCmd(),
			initCmd(),
			configCmd(),
			cacheCmd(),
			mcpCmd(),
		},
	}
}

// exitCode maps an error returned by the app to a process exit status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var coder cli.ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return 1
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newApp(os.Stdout, os.Stderr).RunContext(ctx, os.Args)
	stop()

	if err != nil {
		if msg := err.Error(); msg != "" {
			fmt.Fprintln(os.Stderr, color.RedString("Error: %s", msg))
		}
		os.Exit(exitCode(err))
	}
}
