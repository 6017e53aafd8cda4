package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/panbanda/codesim/pkg/language"
	"github.com/panbanda/codesim/pkg/normalize"
	"github.com/panbanda/codesim/pkg/parser"
	"github.com/panbanda/codesim/pkg/units"
)

// TreeSitter extracts function and class headers from a real parse tree.
// Unlike the regex extractor it sees multi-line signatures, nested methods
// and Python definitions, which have no braces.
type TreeSitter struct{}

// NewTreeSitter creates a tree-sitter signature extractor.
func NewTreeSitter() *TreeSitter {
	return &TreeSitter{}
}

// Name implements Provider.
func (t *TreeSitter) Name() string { return "treesitter" }

// Kind implements Provider.
func (t *TreeSitter) Kind() units.Kind { return units.KindSignature }

// Extract implements Provider.
func (t *TreeSitter) Extract(ctx context.Context, in Input) (units.Set, error) {
	lang := grammarFor(in)
	if lang == parser.LangUnknown {
		return nil, fmt.Errorf("tree-sitter grammar for %q: %w", in.Path, language.ErrUnsupported)
	}

	// Parsers hold C state and are not shared between goroutines.
	p := parser.New()
	defer p.Close()

	result, err := p.Parse(ctx, in.Source, lang, in.Path)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", in.Path, err)
	}
	defer result.Close()

	set := make(units.Set)
	for _, sig := range parser.GetSignatures(result) {
		header := strings.TrimSpace(normalize.Clean(sig.Header, normalize.Structure))
		if header != "" {
			set.Add(header)
		}
	}
	return set, nil
}

func grammarFor(in Input) parser.Language {
	switch in.Language {
	case language.CFamily:
		if parser.DetectLanguage(in.Path) == parser.LangC {
			return parser.LangC
		}
		return parser.LangCPP
	case language.Java:
		return parser.LangJava
	case language.Python:
		return parser.LangPython
	default:
		return parser.LangUnknown
	}
}
