package main

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/panbanda/codesim/internal/cache"
	"github.com/panbanda/codesim/internal/logging"
	"github.com/panbanda/codesim/internal/mcpserver"
	"github.com/panbanda/codesim/internal/output"
	"github.com/panbanda/codesim/internal/vcs"
	"github.com/panbanda/codesim/pkg/compare"
	"github.com/panbanda/codesim/pkg/config"
	"github.com/panbanda/codesim/pkg/extract"
	"github.com/panbanda/codesim/pkg/source"
	"github.com/urfave/cli/v2"
)

const stateKey = "state"

// state is resolved once in Before and shared by every command.
type state struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger
	close   func() error
}

func getState(c *cli.Context) *state {
	if s, ok := c.App.Metadata[stateKey].(*state); ok {
		return s
	}
	return &state{cfg: config.DefaultConfig(), logger: logging.Discard(), close: func() error { return nil }}
}

// setup resolves configuration and logging for the run.
func setup(c *cli.Context) error {
	cfg, path, err := config.Resolve(c.String("config"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("config: %v", err), 1)
	}

	level := cfg.Log.Level
	if c.Bool("verbose") {
		level = "debug"
	}
	logger, closeLog, err := logging.New(level, c.App.ErrWriter, cfg.Log.File)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if path != "" {
		logger.Debug("loaded config", "path", path)
	}

	c.App.Metadata[stateKey] = &state{cfg: cfg, cfgPath: path, logger: logger, close: closeLog}
	return nil
}

func teardown(c *cli.Context) error {
	return getState(c).close()
}

// requireArgs prints the command's usage and fails when the argument count
// is wrong.
func requireArgs(c *cli.Context, n int) error {
	if c.Args().Len() == n {
		return nil
	}
	_ = cli.ShowSubcommandHelp(c)
	return cli.Exit(fmt.Sprintf("%s: expected %d argument(s), got %d", c.Command.Name, n, c.Args().Len()), 1)
}

// getPaths returns paths from positional args, defaulting to ["."].
func getPaths(c *cli.Context) []string {
	if c.Args().Len() > 0 {
		return c.Args().Slice()
	}
	return []string{"."}
}

// parserSalt identifies the external parser configuration in cache keys.
func parserSalt(cfg *config.Config) string {
	cmds := cfg.Parsers.Commands()
	parts := make([]string, 0, len(cmds))
	for tag, argv := range cmds {
		parts = append(parts, tag.String()+"="+strings.Join(argv, " "))
	}
	sort.Strings(parts)
	return strings.Join(parts, ";")
}

// buildRegistry assembles the providers the config selects, wrapped in the
// unit cache when it is enabled and useCache is set.
func buildRegistry(cfg *config.Config, logger *slog.Logger, useCache bool) (*extract.Registry, error) {
	external := extract.NewExternal(
		extract.WithCommands(cfg.Parsers.Commands()),
		extract.WithTimeout(time.Duration(cfg.Compare.TimeoutSeconds)*time.Second),
		extract.WithLogger(logger),
	)
	reg := extract.NewRegistry(external)

	if useCache && cfg.Cache.Enabled {
		store, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL, true)
		if err != nil {
			return nil, fmt.Errorf("open cache: %w", err)
		}
		salt := parserSalt(cfg)
		reg.Wrap(func(p extract.Provider) extract.Provider {
			return extract.NewCached(p, store, salt, logger)
		})
	}
	return reg, nil
}

// comparatorOptions describes one comparison run. Empty fields fall back
// to the config.
type comparatorOptions struct {
	strategy      string
	backend       string
	onUnsupported string
	rev           string
	noCache       bool
}

func newComparator(st *state, o comparatorOptions) (*compare.Comparator, error) {
	strategy := firstNonEmpty(o.strategy, st.cfg.Compare.Strategy)
	backend := firstNonEmpty(o.backend, st.cfg.Compare.Backend)
	policy := firstNonEmpty(o.onUnsupported, st.cfg.Compare.OnUnsupported)

	reg, err := buildRegistry(st.cfg, st.logger, !o.noCache && o.rev == "")
	if err != nil {
		return nil, err
	}

	opts := []compare.Option{
		compare.WithStrategy(extract.Strategy(strategy)),
		compare.WithBackend(extract.Backend(backend)),
		compare.WithOnUnsupported(compare.OnUnsupported(policy)),
		compare.WithRegistry(reg),
		compare.WithLogger(st.logger),
	}
	if o.rev != "" {
		src, err := source.OpenRevision(vcs.DefaultOpener(), ".", o.rev)
		if err != nil {
			return nil, err
		}
		st.logger.Debug("reading from revision", "rev", src.Revision())
		opts = append(opts, compare.WithSource(src))
	}
	return compare.New(opts...)
}

// comparatorFactory adapts the CLI wiring for the MCP server.
func comparatorFactory(st *state) mcpserver.ComparatorFactory {
	return func(strategy, backend string) (*compare.Comparator, error) {
		return newComparator(st, comparatorOptions{strategy: strategy, backend: backend})
	}
}

// newFormatter creates a formatter from the --format and --output flags,
// falling back to the configured format.
func newFormatter(c *cli.Context, st *state) (*output.Formatter, error) {
	format := firstNonEmpty(c.String("format"), st.cfg.Output.Format)
	colored := st.cfg.Output.Color && !c.Bool("no-color")
	if out := c.String("output"); out != "" {
		return output.NewFormatter(output.ParseFormat(format), out, false)
	}
	return output.New(output.ParseFormat(format), c.App.Writer, colored && !color.NoColor), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// formatPercent renders a percentage in its shortest form with at most six
// significant digits.
func formatPercent(p float64) string {
	return strconv.FormatFloat(p, 'g', 6, 64)
}
