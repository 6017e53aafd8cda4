package similarity

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/panbanda/codesim/pkg/units"
)

// Index interns units to integer ids and keeps one bitmap per document, so
// scoring many pairs costs a bitmap intersection instead of a map walk.
// Not safe for concurrent Add calls.
type Index struct {
	ids    map[units.Unit]uint32
	docs   []*roaring.Bitmap
	byName map[string]int
	names  []string
	nextID uint32
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{
		ids:    make(map[units.Unit]uint32),
		byName: make(map[string]int),
	}
}

// Add stores a document's unit set and returns its position.
// Adding the same name twice replaces the earlier set.
func (x *Index) Add(name string, set units.Set) int {
	bm := roaring.New()
	for u := range set {
		id, ok := x.ids[u]
		if !ok {
			id = x.nextID
			x.ids[u] = id
			x.nextID++
		}
		bm.Add(id)
	}
	bm.RunOptimize()

	if pos, ok := x.byName[name]; ok {
		x.docs[pos] = bm
		return pos
	}
	x.docs = append(x.docs, bm)
	x.names = append(x.names, name)
	x.byName[name] = len(x.docs) - 1
	return len(x.docs) - 1
}

// Len returns the number of documents.
func (x *Index) Len() int {
	return len(x.docs)
}

// Name returns the document name at position i.
func (x *Index) Name(i int) string {
	return x.names[i]
}

// Units returns the number of distinct units in document i.
func (x *Index) Units(i int) int {
	return int(x.docs[i].GetCardinality())
}

// Vocabulary returns the number of distinct units across all documents.
func (x *Index) Vocabulary() int {
	return len(x.ids)
}

// Pair scores documents i and j.
func (x *Index) Pair(i, j int) Score {
	a, b := x.docs[i], x.docs[j]
	inter := a.AndCardinality(b)
	return Score{
		Intersection: int(inter),
		Union:        int(a.GetCardinality() + b.GetCardinality() - inter),
	}
}
