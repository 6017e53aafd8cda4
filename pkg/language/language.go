// Package language maps file extensions to the language tags that select
// unit extraction rules, and enforces the pairing rules between two files.
package language

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrUnsupported is returned when a file's extension maps to no language.
var ErrUnsupported = errors.New("unsupported language")

// ErrExtensionMismatch is returned when two compared files have different
// literal extensions.
var ErrExtensionMismatch = errors.New("extension mismatch")

// Tag identifies the extraction rules used for a file.
type Tag string

const (
	CFamily     Tag = "cfamily"
	Java        Tag = "java"
	Python      Tag = "python"
	Unsupported Tag = "unsupported"
)

// String returns the string representation.
func (t Tag) String() string {
	return string(t)
}

// Supported reports whether t selects a real grammar.
func (t Tag) Supported() bool {
	return t == CFamily || t == Java || t == Python
}

// Tags lists every supported tag.
func Tags() []Tag {
	return []Tag{CFamily, Java, Python}
}

// SourceExtensions lists the extensions, with leading dot, that resolve to a
// supported tag.
func SourceExtensions() []string {
	return []string{".c", ".cc", ".cpp", ".cxx", ".java", ".py"}
}

// Extension returns the text after the last "." of the base name, or "" when
// the name has no dot.
func Extension(path string) string {
	base := filepath.Base(path)
	i := strings.LastIndexByte(base, '.')
	if i < 0 {
		return ""
	}
	return base[i+1:]
}

// Detect determines the language tag from a file path.
func Detect(path string) Tag {
	return FromExtension(Extension(path))
}

// FromExtension maps an extension without its dot to a tag. Matching ignores
// case, so "A.CPP" is C-family; CheckPair still compares extensions literally.
func FromExtension(ext string) Tag {
	switch strings.ToLower(ext) {
	case "c", "cpp", "cc", "cxx":
		return CFamily
	case "java":
		return Java
	case "py":
		return Python
	default:
		return Unsupported
	}
}

// CheckPair resolves the tag shared by two files.
// Unsupported extensions are reported before mismatches, and the mismatch test
// compares literal extensions, so "a.c" and "b.cpp" do not pair even though
// both are C-family.
func CheckPair(a, b string) (Tag, error) {
	tagA, tagB := Detect(a), Detect(b)
	if !tagA.Supported() || !tagB.Supported() {
		return Unsupported, ErrUnsupported
	}
	if Extension(a) != Extension(b) {
		return Unsupported, ErrExtensionMismatch
	}
	return tagA, nil
}
