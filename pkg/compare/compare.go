// Package compare runs the similarity pipeline for a pair of files:
// language dispatch, reading, unit extraction and Jaccard scoring.
package compare

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/panbanda/codesim/pkg/extract"
	"github.com/panbanda/codesim/pkg/language"
	"github.com/panbanda/codesim/pkg/normalize"
	"github.com/panbanda/codesim/pkg/similarity"
	"github.com/panbanda/codesim/pkg/source"
	"github.com/panbanda/codesim/pkg/units"
)

// Outcome explains how a score was reached.
type Outcome string

const (
	OutcomeComputed          Outcome = "computed"
	OutcomeExtensionMismatch Outcome = "extension_mismatch"
	OutcomeUnsupported       Outcome = "unsupported_language"
	OutcomeToolError         Outcome = "tool_error"
)

// OnUnsupported selects what happens when a file's language is unknown.
type OnUnsupported string

const (
	// UnsupportedZero reports a zero score.
	UnsupportedZero OnUnsupported = "zero"
	// UnsupportedFail returns an *UnsupportedLanguageError.
	UnsupportedFail OnUnsupported = "fail"
)

// Valid reports whether p names a known policy.
func (p OnUnsupported) Valid() bool {
	return p == UnsupportedZero || p == UnsupportedFail
}

// Result is the outcome of comparing two files.
type Result struct {
	FileA      string           `json:"file_a" toon:"file_a"`
	FileB      string           `json:"file_b" toon:"file_b"`
	Language   language.Tag     `json:"language" toon:"language"`
	Strategy   extract.Strategy `json:"strategy" toon:"strategy"`
	Provider   string           `json:"provider,omitempty" toon:"provider,omitempty"`
	Outcome    Outcome          `json:"outcome" toon:"outcome"`
	Score      similarity.Score `json:"score" toon:"score"`
	Similarity float64          `json:"similarity" toon:"similarity"`
	UnitsA     int              `json:"units_a" toon:"units_a"`
	UnitsB     int              `json:"units_b" toon:"units_b"`
	Shared     []string         `json:"shared,omitempty" toon:"shared,omitempty"`
	SameText   bool             `json:"same_text" toon:"same_text"`
	Detail     string           `json:"detail,omitempty" toon:"detail,omitempty"`
}

// Percent returns the similarity scaled to [0,100].
func (r *Result) Percent() float64 {
	return r.Score.Percent()
}

// Extraction is one file's units.
type Extraction struct {
	Path        string
	Language    language.Tag
	Provider    string
	Units       units.Set
	Fingerprint uint64
}

// Comparator runs comparisons with a fixed configuration. It holds no
// per-comparison state and may be shared between goroutines when its
// source and providers are.
type Comparator struct {
	strategy      extract.Strategy
	backend       extract.Backend
	onUnsupported OnUnsupported
	registry      *extract.Registry
	source        source.ContentSource
	logger        *slog.Logger
}

// Option is a functional option for configuring Comparator.
type Option func(*Comparator)

// WithStrategy selects token or structural units.
func WithStrategy(s extract.Strategy) Option {
	return func(c *Comparator) {
		c.strategy = s
	}
}

// WithBackend selects the structural backend.
func WithBackend(b extract.Backend) Option {
	return func(c *Comparator) {
		c.backend = b
	}
}

// WithOnUnsupported selects the unsupported-language policy.
func WithOnUnsupported(p OnUnsupported) Option {
	return func(c *Comparator) {
		c.onUnsupported = p
	}
}

// WithRegistry sets the provider registry.
func WithRegistry(r *extract.Registry) Option {
	return func(c *Comparator) {
		if r != nil {
			c.registry = r
		}
	}
}

// WithSource sets where file contents are read from.
func WithSource(s source.ContentSource) Option {
	return func(c *Comparator) {
		if s != nil {
			c.source = s
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Comparator) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a comparator. Defaults: structural strategy, native backend,
// zero score for unsupported languages, filesystem source.
func New(opts ...Option) (*Comparator, error) {
	c := &Comparator{
		strategy:      extract.StrategyStructure,
		backend:       extract.BackendNative,
		onUnsupported: UnsupportedZero,
		source:        source.NewFilesystem(),
		logger:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	if !c.strategy.Valid() {
		return nil, fmt.Errorf("unknown strategy %q", c.strategy)
	}
	if !c.backend.Valid() {
		return nil, fmt.Errorf("unknown backend %q", c.backend)
	}
	if !c.onUnsupported.Valid() {
		return nil, fmt.Errorf("unknown unsupported-language policy %q", c.onUnsupported)
	}
	if c.registry == nil {
		c.registry = extract.NewRegistry(extract.NewExternal(extract.WithLogger(c.logger)))
	}
	return c, nil
}

// Strategy returns the configured strategy.
func (c *Comparator) Strategy() extract.Strategy {
	return c.strategy
}

// Compare scores two files.
//
// Mismatched extensions and, under the zero policy, unsupported languages
// short-circuit to a zero score before either file is read. A parser tool
// failure is a zero score with OutcomeToolError. Unreadable files return a
// *FileAccessError.
func (c *Comparator) Compare(ctx context.Context, fileA, fileB string) (*Result, error) {
	res := &Result{
		FileA:    fileA,
		FileB:    fileB,
		Strategy: c.strategy,
		Language: language.Unsupported,
	}

	tag, err := language.CheckPair(fileA, fileB)
	switch {
	case errors.Is(err, language.ErrUnsupported):
		bad := fileA
		if language.Detect(fileA).Supported() {
			bad = fileB
		}
		if c.onUnsupported == UnsupportedFail {
			return nil, unsupported(bad)
		}
		c.logger.Debug("unsupported language, scoring zero", "file", bad)
		res.Outcome = OutcomeUnsupported
		res.Detail = unsupported(bad).Error()
		return res, nil
	case errors.Is(err, language.ErrExtensionMismatch):
		c.logger.Debug("extension mismatch, scoring zero", "a", fileA, "b", fileB)
		res.Outcome = OutcomeExtensionMismatch
		res.Detail = fmt.Sprintf("extensions differ: .%s vs .%s", language.Extension(fileA), language.Extension(fileB))
		return res, nil
	case err != nil:
		return nil, err
	}
	res.Language = tag

	a, err := c.Extract(ctx, fileA)
	if err != nil {
		return c.extractFailed(res, err)
	}
	b, err := c.Extract(ctx, fileB)
	if err != nil {
		return c.extractFailed(res, err)
	}
	c.score(res, a, b)
	return res, nil
}

func (c *Comparator) extractFailed(res *Result, err error) (*Result, error) {
	if !errors.Is(err, extract.ErrToolFailed) {
		return nil, err
	}
	c.logger.Debug("parser failed, scoring zero", "err", err)
	res.Outcome = OutcomeToolError
	res.Detail = err.Error()
	return res, nil
}

// Extract reads one file and extracts its units with the configured
// strategy and backend.
func (c *Comparator) Extract(ctx context.Context, path string) (*Extraction, error) {
	tag := language.Detect(path)
	if !tag.Supported() {
		return nil, unsupported(path)
	}

	provider, err := c.registry.Lookup(c.strategy, c.backend, tag)
	if err != nil {
		return nil, err
	}

	data, err := c.source.Read(path)
	if err != nil {
		return nil, &FileAccessError{Path: path, Err: err}
	}

	set, err := provider.Extract(ctx, extract.Input{
		Path:     path,
		Source:   data,
		Language: tag,
		OnDisk:   c.source.OnDisk(),
	})
	if err != nil {
		return nil, err
	}
	c.logger.Debug("extracted units", "file", path, "provider", provider.Name(), "units", set.Len())

	return &Extraction{
		Path:        path,
		Language:    tag,
		Provider:    provider.Name(),
		Units:       set,
		Fingerprint: Fingerprint(data, c.strategy),
	}, nil
}

func (c *Comparator) score(res *Result, a, b *Extraction) {
	res.Provider = a.Provider
	res.Outcome = OutcomeComputed
	res.Score = similarity.Jaccard(a.Units, b.Units)
	res.Similarity = res.Score.Ratio()
	res.UnitsA = a.Units.Len()
	res.UnitsB = b.Units.Len()
	res.Shared = a.Units.Shared(b.Units)
	res.SameText = a.Fingerprint == b.Fingerprint
}

// Fingerprint hashes source after the normalization the strategy applies,
// so files that differ only in comments or whitespace share a fingerprint.
func Fingerprint(src []byte, s extract.Strategy) uint64 {
	variant := normalize.Structure
	if s == extract.StrategyToken {
		variant = normalize.Token
	}
	return xxhash.Sum64String(strings.TrimSpace(normalize.Clean(string(src), variant)))
}
