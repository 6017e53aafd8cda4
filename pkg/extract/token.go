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

// Numbers are units of their own, so "return 0" and "return 1" differ, and
// each of { } ( ) ; is a single unit even when adjacent, never part of an
// operator run.
var (
	pythonTokens  = regexp.MustCompile(`[a-zA-Z_][a-zA-Z0-9_]*|[0-9]+(?:\.[0-9]+)?|[:=+*/<>!\-]+`)
	cfamilyTokens = regexp.MustCompile(`[a-zA-Z_][a-zA-Z0-9_]*|[0-9]+(?:\.[0-9]+)?|[=+*/<>!&|\-]+|[{}();]`)
)

// Token is the native token extractor. Units are lower-cased identifiers,
// numbers, operator runs and single brackets.
type Token struct{}

// NewToken creates a token extractor.
func NewToken() *Token {
	return &Token{}
}

// Name implements Provider.
func (t *Token) Name() string { return "token" }

// Kind implements Provider.
func (t *Token) Kind() units.Kind { return units.KindToken }

// Extract implements Provider.
func (t *Token) Extract(_ context.Context, in Input) (units.Set, error) {
	return Tokens(normalize.Clean(string(in.Source), normalize.Token), in.Language)
}

// Tokens splits cleaned text with the grammar for tag. Unsupported tags are
// an error here, never an empty set.
func Tokens(clean string, tag language.Tag) (units.Set, error) {
	var re *regexp.Regexp
	switch tag {
	case language.Python:
		re = pythonTokens
	case language.CFamily, language.Java:
		re = cfamilyTokens
	default:
		return nil, fmt.Errorf("tokenize %q: %w", tag, language.ErrUnsupported)
	}

	set := make(units.Set)
	for _, tok := range re.FindAllString(clean, -1) {
		set.Add(strings.ToLower(tok))
	}
	return set, nil
}
