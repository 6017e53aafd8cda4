package extract

import (
	"context"
	"testing"

	"github.com/panbanda/codesim/pkg/language"
	"github.com/panbanda/codesim/pkg/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignatures(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "function then class order",
			text: "struct Point { int x; };\nint main(int argc, char **argv)\n{\n  return 0;\n}\n",
			want: []string{"int main(int argc, char **argv) {", "struct Point {"},
		},
		{
			name: "comments stripped before matching",
			text: "// int hidden() {\n/* class Gone { */\nvoid shown() {}\n",
			want: []string{"void shown() {"},
		},
		{
			name: "hash is not a comment here",
			text: "#include <x.h>\nvoid f() {}\n",
			want: []string{"void f() {"},
		},
		{
			name: "case preserved",
			text: "class Widget {};\n",
			want: []string{"class Widget {"},
		},
		{
			name: "no matches",
			text: "x = 1\n",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Signatures(tt.text))
		})
	}
}

func TestStructureOneFunctionOneClass(t *testing.T) {
	src := []byte("class Shape {\n};\n\nint area(int w, int h) {\n  return w * h;\n}\n")
	in := Input{Path: "shape.cpp", Source: src, Language: language.CFamily}

	s := NewStructure()
	got, err := s.Extract(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Len())
	assert.True(t, got.Has("int area(int w, int h) {"))
	assert.True(t, got.Has("class Shape {"))
	assert.Equal(t, units.KindSignature, s.Kind())
}

func TestStructureUnsupported(t *testing.T) {
	_, err := NewStructure().Extract(context.Background(), Input{Path: "a.rb", Language: language.Unsupported})
	assert.ErrorIs(t, err, language.ErrUnsupported)
}

func TestDumpRoundTrip(t *testing.T) {
	sigs := []string{"int main() {", "struct S {"}
	dump := Dump(sigs)

	assert.Equal(t, "AST_START\nint main() {\nstruct S {\nAST_END\n", dump)
	assert.Equal(t, units.NewSet(sigs...), ParseDump(dump))
}

func TestParseDump(t *testing.T) {
	tests := []struct {
		name string
		text string
		want units.Set
	}{
		{"framing only", "AST_START\nAST_END\n", units.NewSet()},
		{"unframed lines", "a\n\nb\r\n", units.NewSet("a", "b")},
		{"duplicates collapse", "AST_START\nx\nx\nAST_END", units.NewSet("x")},
		{"empty", "", units.NewSet()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDump(tt.text))
		})
	}
}
