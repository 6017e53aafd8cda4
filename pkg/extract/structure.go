package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/panbanda/codesim/pkg/language"
	"github.com/panbanda/codesim/pkg/normalize"
	"github.com/panbanda/codesim/pkg/units"
)

// Dump framing lines written around the signature list.
const (
	DumpStart = "AST_START"
	DumpEnd   = "AST_END"
)

var (
	functionHeader = regexp.MustCompile(`\w+\s+\w+\s*\([^)]*\)\s*\{`)
	classHeader    = regexp.MustCompile(`(class|struct)\s+\w+\s*\{`)
)

// Structure is the native structural extractor. Each function or class
// header matched in the cleaned text is one case-preserving unit.
//
// The patterns are heuristics: templates, attributes and headers whose
// parameter list contains ")" are not recognized.
type Structure struct{}

// NewStructure creates a structural extractor.
func NewStructure() *Structure {
	return &Structure{}
}

// Name implements Provider.
func (s *Structure) Name() string { return "structure" }

// Kind implements Provider.
func (s *Structure) Kind() units.Kind { return units.KindSignature }

// Extract implements Provider.
func (s *Structure) Extract(_ context.Context, in Input) (units.Set, error) {
	if !in.Language.Supported() {
		return nil, fmt.Errorf("extract signatures %q: %w", in.Path, language.ErrUnsupported)
	}
	return units.NewSet(Signatures(string(in.Source))...), nil
}

// Signatures cleans text and returns every function header followed by every
// class header, each in order of appearance. Duplicates are kept.
func Signatures(text string) []string {
	clean := normalize.Clean(text, normalize.Structure)
	sigs := functionHeader.FindAllString(clean, -1)
	return append(sigs, classHeader.FindAllString(clean, -1)...)
}

// Dump renders signatures in the parser dump format: a start marker, one
// signature per line, an end marker.
func Dump(sigs []string) string {
	var sb strings.Builder
	sb.WriteString(DumpStart)
	sb.WriteByte('\n')
	for _, s := range sigs {
		sb.WriteString(s)
		sb.WriteByte('\n')
	}
	sb.WriteString(DumpEnd)
	sb.WriteByte('\n')
	return sb.String()
}

// ParseDump reads parser output into a unit set. Every non-empty line is a
// unit except the framing markers.
func ParseDump(text string) units.Set {
	set := units.FromLines(text)
	delete(set, DumpStart)
	delete(set, DumpEnd)
	return set
}
