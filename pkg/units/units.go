// Package units defines the atomic comparison elements produced by extractors
// and the set type the similarity scorer operates on.
package units

import (
	"sort"
	"strings"
)

// Unit is a single comparison element.
type Unit = string

// Kind identifies how units in a set were produced.
type Kind string

const (
	KindToken     Kind = "token"     // lower-cased identifier, literal or operator run
	KindSignature Kind = "signature" // case-preserving function/class header
)

// String returns the string representation.
func (k Kind) String() string {
	return string(k)
}

// Set is an unordered collection of units. Duplicates collapse.
type Set map[Unit]struct{}

// NewSet creates a set holding the given units.
func NewSet(items ...Unit) Set {
	s := make(Set, len(items))
	for _, u := range items {
		s[u] = struct{}{}
	}
	return s
}

// FromLines builds a set from the non-empty lines of text.
// Trailing carriage returns are dropped so CRLF output compares equal.
func FromLines(text string) Set {
	s := make(Set)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		s[line] = struct{}{}
	}
	return s
}

// Add inserts a unit.
func (s Set) Add(u Unit) {
	s[u] = struct{}{}
}

// Has reports whether u is in the set.
func (s Set) Has(u Unit) bool {
	_, ok := s[u]
	return ok
}

// Len returns the number of distinct units.
func (s Set) Len() int {
	return len(s)
}

// Sorted returns the units in lexical order.
func (s Set) Sorted() []Unit {
	out := make([]Unit, 0, len(s))
	for u := range s {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// Shared returns the units present in both sets, sorted.
func (s Set) Shared(other Set) []Unit {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	var out []Unit
	for u := range small {
		if large.Has(u) {
			out = append(out, u)
		}
	}
	sort.Strings(out)
	return out
}
