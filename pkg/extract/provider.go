// Package extract turns source text into the unit sets that similarity is
// computed over. Every extraction strategy sits behind the Provider
// interface so the comparison pipeline never branches on language.
package extract

import (
	"context"
	"errors"

	"github.com/panbanda/codesim/pkg/language"
	"github.com/panbanda/codesim/pkg/units"
)

// ErrToolFailed reports that an out-of-process parser produced no usable
// output. Comparisons treat it as a zero score, not a failure.
var ErrToolFailed = errors.New("external parser failed")

// Input is one file handed to a provider.
type Input struct {
	// Path is the file's path as given by the caller. For files read from a
	// git revision it is repository relative.
	Path string
	// Source is the raw file content.
	Source []byte
	// Language is the tag resolved by the dispatcher.
	Language language.Tag
	// OnDisk is true when Path can be opened and holds Source. Providers that
	// need a real file write a temporary copy otherwise.
	OnDisk bool
}

// Provider extracts a unit set from one file.
type Provider interface {
	// Name identifies the provider in results and cache keys.
	Name() string
	// Kind reports which unit kind the provider emits.
	Kind() units.Kind
	// Extract returns the file's units. An unsupported language yields an
	// error wrapping language.ErrUnsupported.
	Extract(ctx context.Context, in Input) (units.Set, error)
}

// Strategy selects the unit kind a comparison runs on.
type Strategy string

const (
	StrategyToken     Strategy = "token"
	StrategyStructure Strategy = "structure"
)

// String returns the string representation.
func (s Strategy) String() string {
	return string(s)
}

// Valid reports whether s names a known strategy.
func (s Strategy) Valid() bool {
	return s == StrategyToken || s == StrategyStructure
}

// Backend selects how structural units are produced.
type Backend string

const (
	// BackendNative uses the regex signature extractor in-process.
	BackendNative Backend = "native"
	// BackendExternal runs one parser process per file.
	BackendExternal Backend = "external"
	// BackendTreeSitter parses with tree-sitter grammars in-process.
	BackendTreeSitter Backend = "treesitter"
)

// String returns the string representation.
func (b Backend) String() string {
	return string(b)
}

// Valid reports whether b names a known backend.
func (b Backend) Valid() bool {
	switch b {
	case BackendNative, BackendExternal, BackendTreeSitter:
		return true
	default:
		return false
	}
}
