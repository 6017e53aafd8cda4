package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/panbanda/codesim/pkg/language"
	"github.com/panbanda/codesim/pkg/units"
)

// DefaultTimeout bounds a single parser process.
const DefaultTimeout = 30 * time.Second

// External runs one parser process per file. The process gets the file path
// as its last argument and writes signatures to stdout, one per line, with
// optional AST_START/AST_END framing.
//
// Any failure to get output (missing executable, non-zero exit, deadline,
// empty output or a literal "ERROR") is reported as ErrToolFailed.
type External struct {
	commands map[language.Tag][]string
	fallback Provider
	timeout  time.Duration
	logger   *slog.Logger
}

// ExternalOption is a functional option for configuring External.
type ExternalOption func(*External)

// WithCommand sets the parser command for a language. An empty command
// removes it so the fallback is used.
func WithCommand(tag language.Tag, argv []string) ExternalOption {
	return func(e *External) {
		if len(argv) == 0 {
			delete(e.commands, tag)
			return
		}
		e.commands[tag] = append([]string(nil), argv...)
	}
}

// WithCommands sets parser commands for several languages.
func WithCommands(commands map[language.Tag][]string) ExternalOption {
	return func(e *External) {
		for tag, argv := range commands {
			WithCommand(tag, argv)(e)
		}
	}
}

// WithTimeout sets the per-process deadline.
func WithTimeout(d time.Duration) ExternalOption {
	return func(e *External) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithFallback sets the provider used for languages without a command.
func WithFallback(p Provider) ExternalOption {
	return func(e *External) {
		e.fallback = p
	}
}

// WithLogger sets the logger used for parser diagnostics.
func WithLogger(l *slog.Logger) ExternalOption {
	return func(e *External) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewExternal creates an external parser provider. Without options no
// language has a command and every file goes to the native structural
// extractor.
func NewExternal(opts ...ExternalOption) *External {
	e := &External{
		commands: make(map[language.Tag][]string),
		fallback: NewStructure(),
		timeout:  DefaultTimeout,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements Provider.
func (e *External) Name() string { return "external" }

// Kind implements Provider.
func (e *External) Kind() units.Kind { return units.KindSignature }

// Command returns the configured argv for tag, or nil.
func (e *External) Command(tag language.Tag) []string {
	return e.commands[tag]
}

// Extract implements Provider.
func (e *External) Extract(ctx context.Context, in Input) (units.Set, error) {
	if !in.Language.Supported() {
		return nil, fmt.Errorf("external parser for %q: %w", in.Path, language.ErrUnsupported)
	}
	argv, ok := e.commands[in.Language]
	if !ok {
		return e.fallback.Extract(ctx, in)
	}

	path := in.Path
	if !in.OnDisk {
		tmp, err := writeTemp(in)
		if err != nil {
			return nil, err
		}
		defer os.Remove(tmp)
		path = tmp
	}

	out, err := e.run(ctx, argv, path)
	if err != nil {
		return nil, err
	}

	// A parser that prints nothing has failed. Framing with no units in
	// between is a file without signatures.
	if strings.TrimSpace(out) == "" {
		return nil, fmt.Errorf("%w: %s: empty output for %s", ErrToolFailed, argv[0], in.Path)
	}
	set := ParseDump(out)
	if set.Len() == 0 {
		e.logger.Debug("parser produced no units", "command", argv[0], "file", in.Path)
	}
	return set, nil
}

func (e *External) run(ctx context.Context, argv []string, path string) (string, error) {
	execCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	args := append(append([]string(nil), argv[1:]...), path)
	cmd := exec.CommandContext(execCtx, argv[0], args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Grandchildren can hold the pipes open after the parser is killed.
	cmd.WaitDelay = time.Second

	start := time.Now()
	err := cmd.Run()
	e.logger.Debug("parser finished",
		"command", argv[0],
		"file", path,
		"duration", time.Since(start).Round(time.Millisecond),
		"err", err,
	)

	if ctxErr := execCtx.Err(); ctxErr != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrToolFailed, argv[0], ctxErr)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && stderr.Len() > 0 {
			e.logger.Debug("parser stderr", "command", argv[0], "stderr", strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("%w: %s: %w", ErrToolFailed, argv[0], err)
	}

	out := stdout.String()
	if strings.TrimSpace(out) == "ERROR" {
		return "", fmt.Errorf("%w: %s reported ERROR", ErrToolFailed, argv[0])
	}
	return out, nil
}

// writeTemp copies the source to a temporary file that keeps the original
// extension, since parsers dispatch on it.
func writeTemp(in Input) (string, error) {
	pattern := "codesim-*"
	if ext := language.Extension(in.Path); ext != "" {
		pattern += "." + ext
	}
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", fmt.Errorf("create temp file for %s: %w", in.Path, err)
	}
	if _, err := f.Write(in.Source); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write temp file for %s: %w", in.Path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close temp file for %s: %w", in.Path, err)
	}
	return f.Name(), nil
}
