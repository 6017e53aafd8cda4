// Package normalize cleans raw source text before unit extraction.
//
// Comment stripping is regex based and has no notion of string literals, so a
// "//" or "#" inside a string starts a comment. Callers rely on that exact
// behavior; do not replace it with a lexer.
package normalize

import "regexp"

// Variant selects which line-comment markers are stripped.
type Variant int

const (
	// Token strips "//" and "#" line comments.
	Token Variant = iota
	// Structure strips "//" line comments only.
	Structure
)

// String returns the string representation.
func (v Variant) String() string {
	switch v {
	case Token:
		return "token"
	case Structure:
		return "structure"
	default:
		return "unknown"
	}
}

var (
	slashComment = regexp.MustCompile(`//.*`)
	hashComment  = regexp.MustCompile(`#.*`)
	blockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineBreaks   = regexp.MustCompile(`[\n\t]`)
	spaceRuns    = regexp.MustCompile(`\s+`)
)

// Clean removes comments and collapses whitespace, producing a single line.
// The steps run in a fixed order and each one sees the output of the last.
func Clean(text string, v Variant) string {
	clean := slashComment.ReplaceAllString(text, "")
	if v == Token {
		clean = hashComment.ReplaceAllString(clean, "")
	}
	clean = blockComment.ReplaceAllString(clean, "")
	clean = lineBreaks.ReplaceAllString(clean, " ")
	return spaceRuns.ReplaceAllString(clean, " ")
}
