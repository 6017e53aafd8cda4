// Package similarity scores the overlap between unit sets.
package similarity

import "github.com/panbanda/codesim/pkg/units"

// Score is the outcome of one Jaccard computation. Both presentation forms
// derive from the same counts.
type Score struct {
	Intersection int `json:"intersection" toon:"intersection"`
	Union        int `json:"union" toon:"union"`
}

// Zero is the score used for every short-circuited comparison.
var Zero = Score{}

// Ratio returns |A∩B| / |A∪B| in [0,1]. An empty union scores 0.
func (s Score) Ratio() float64 {
	if s.Union == 0 {
		return 0.0
	}
	return float64(s.Intersection) / float64(s.Union)
}

// Percent returns the ratio scaled to [0,100].
func (s Score) Percent() float64 {
	return s.Ratio() * 100.0
}

// Jaccard computes the set similarity between a and b.
func Jaccard(a, b units.Set) Score {
	small, large := a, b
	if len(large) < len(small) {
		small, large = large, small
	}
	intersection := 0
	for u := range small {
		if large.Has(u) {
			intersection++
		}
	}
	return Score{
		Intersection: intersection,
		Union:        len(a) + len(b) - intersection,
	}
}
