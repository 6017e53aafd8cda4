package compare

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/panbanda/codesim/pkg/extract"
	"github.com/panbanda/codesim/pkg/language"
	"github.com/panbanda/codesim/pkg/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newComparator(t *testing.T, opts ...Option) *Comparator {
	t.Helper()
	c, err := New(opts...)
	require.NoError(t, err)
	return c
}

func TestCompareIdenticalFiles(t *testing.T) {
	dir := t.TempDir()
	body := "struct P { int x; };\nint main() {\n  return 0;\n}\n"
	a := writeFile(t, dir, "a.c", body)
	b := writeFile(t, dir, "b.c", body)

	for _, s := range []extract.Strategy{extract.StrategyToken, extract.StrategyStructure} {
		t.Run(s.String(), func(t *testing.T) {
			res, err := newComparator(t, WithStrategy(s)).Compare(context.Background(), a, b)
			require.NoError(t, err)
			assert.Equal(t, OutcomeComputed, res.Outcome)
			assert.Equal(t, language.CFamily, res.Language)
			assert.InDelta(t, 100.0, res.Percent(), 1e-9)
			assert.Equal(t, 1.0, res.Similarity)
			assert.True(t, res.SameText)
		})
	}
}

func TestCompareReturnZeroVsOne(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "zero.c", "int main() { return 0; }\n")
	b := writeFile(t, dir, "one.c", "int main() { return 1; }\n")

	res, err := newComparator(t, WithStrategy(extract.StrategyToken)).Compare(context.Background(), a, b)
	require.NoError(t, err)

	assert.Equal(t, OutcomeComputed, res.Outcome)
	assert.Equal(t, "token", res.Provider)
	assert.Equal(t, 9, res.UnitsA)
	assert.Equal(t, 9, res.UnitsB)
	assert.Equal(t, 8, res.Score.Intersection)
	assert.Equal(t, 10, res.Score.Union)
	assert.InDelta(t, 80.0, res.Percent(), 1e-9)
	assert.Greater(t, res.Percent(), 0.0)
	assert.Less(t, res.Percent(), 100.0)
	assert.False(t, res.SameText)
	assert.NotContains(t, res.Shared, "0")
	assert.Contains(t, res.Shared, "return")
}

func TestCompareExtensionMismatch(t *testing.T) {
	// Files need not exist: the pair is rejected before reading.
	tests := []struct {
		a, b string
	}{
		{"a.cpp", "b.py"},
		{"a.c", "b.cpp"},
		{"A.java", "b.JAVA"},
	}

	for _, tt := range tests {
		for _, s := range []extract.Strategy{extract.StrategyToken, extract.StrategyStructure} {
			t.Run(tt.a+"/"+tt.b+"/"+s.String(), func(t *testing.T) {
				res, err := newComparator(t, WithStrategy(s), WithOnUnsupported(UnsupportedFail)).
					Compare(context.Background(), tt.a, tt.b)
				require.NoError(t, err)
				assert.Equal(t, OutcomeExtensionMismatch, res.Outcome)
				assert.Equal(t, 0.0, res.Percent())
				assert.NotEmpty(t, res.Detail)
			})
		}
	}
}

func TestCompareUnsupportedZero(t *testing.T) {
	res, err := newComparator(t).Compare(context.Background(), "a.rb", "b.rb")
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnsupported, res.Outcome)
	assert.Equal(t, language.Unsupported, res.Language)
	assert.Equal(t, 0.0, res.Percent())
	assert.Contains(t, res.Detail, ".rb")
}

func TestCompareUnsupportedFail(t *testing.T) {
	tests := []struct {
		name    string
		a, b    string
		badPath string
		badExt  string
	}{
		{"both unsupported", "a.rb", "b.rb", "a.rb", "rb"},
		{"second unsupported", "a.py", "b.txt", "b.txt", "txt"},
		{"no extension", "Makefile", "b.c", "Makefile", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newComparator(t, WithStrategy(extract.StrategyToken), WithOnUnsupported(UnsupportedFail))
			_, err := c.Compare(context.Background(), tt.a, tt.b)
			require.Error(t, err)

			var unsup *UnsupportedLanguageError
			require.True(t, errors.As(err, &unsup))
			assert.Equal(t, tt.badPath, unsup.Path)
			assert.Equal(t, tt.badExt, unsup.Extension)
			assert.ErrorIs(t, err, language.ErrUnsupported)
		})
	}
}

func TestCompareMissingFile(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.py", "def f():\n    pass\n")
	missing := filepath.Join(dir, "missing.py")

	_, err := newComparator(t).Compare(context.Background(), a, missing)
	require.Error(t, err)

	var access *FileAccessError
	require.True(t, errors.As(err, &access))
	assert.Equal(t, missing, access.Path)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestCompareEmptyFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.java", "")
	b := writeFile(t, dir, "b.java", "   \n// only a comment\n")

	for _, s := range []extract.Strategy{extract.StrategyToken, extract.StrategyStructure} {
		t.Run(s.String(), func(t *testing.T) {
			res, err := newComparator(t, WithStrategy(s)).Compare(context.Background(), a, b)
			require.NoError(t, err)
			assert.Equal(t, OutcomeComputed, res.Outcome)
			assert.Equal(t, 0.0, res.Percent())
			assert.Equal(t, 0, res.Score.Union)
		})
	}
}

func TestCompareStructureOneFunctionOneClass(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "shape.cpp", "class Shape {\n};\n\nint area(int w, int h) {\n  return w * h;\n}\n")

	res, err := newComparator(t).Compare(context.Background(), a, a)
	require.NoError(t, err)
	assert.Equal(t, "structure", res.Provider)
	assert.Equal(t, 2, res.UnitsA)
	assert.InDelta(t, 100.0, res.Percent(), 1e-9)
	assert.Equal(t, []string{"class Shape {", "int area(int w, int h) {"}, res.Shared)
}

func TestCompareSymmetric(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.py", "def add(a, b):\n    return a + b\n")
	b := writeFile(t, dir, "b.py", "def sub(a, b):\n    return a - b\n")

	c := newComparator(t, WithStrategy(extract.StrategyToken))
	ab, err := c.Compare(context.Background(), a, b)
	require.NoError(t, err)
	ba, err := c.Compare(context.Background(), b, a)
	require.NoError(t, err)
	assert.Equal(t, ab.Score, ba.Score)
	assert.Equal(t, ab.Shared, ba.Shared)
}

func TestCompareSameTextIgnoresComments(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.c", "int main() { return 0; }\n")
	b := writeFile(t, dir, "b.c", "/* header */\nint main() {   // entry\n\treturn 0; }\n")

	res, err := newComparator(t).Compare(context.Background(), a, b)
	require.NoError(t, err)
	assert.True(t, res.SameText)
}

type failingProvider struct{ err error }

func (f *failingProvider) Name() string     { return "failing" }
func (f *failingProvider) Kind() units.Kind { return units.KindSignature }
func (f *failingProvider) Extract(context.Context, extract.Input) (units.Set, error) {
	return nil, f.err
}

func TestCompareToolErrorScoresZero(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.py", "class A:\n    pass\n")
	b := writeFile(t, dir, "b.py", "class A:\n    pass\n")

	reg := extract.NewRegistry(nil)
	reg.Register(extract.BackendExternal, &failingProvider{err: extract.ErrToolFailed})

	c := newComparator(t, WithRegistry(reg), WithBackend(extract.BackendExternal))
	res, err := c.Compare(context.Background(), a, b)
	require.NoError(t, err)
	assert.Equal(t, OutcomeToolError, res.Outcome)
	assert.Equal(t, language.Python, res.Language)
	assert.Equal(t, 0.0, res.Percent())
	assert.NotEmpty(t, res.Detail)
}

func TestCompareParserWithNoUnitsIsComputed(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	dir := t.TempDir()
	script := writeFile(t, dir, "parser.sh", "#!/bin/sh\necho AST_START\necho AST_END\n")
	require.NoError(t, os.Chmod(script, 0o755))
	a := writeFile(t, dir, "a.py", "x = 1\n")
	b := writeFile(t, dir, "b.py", "y = 2\n")

	ext := extract.NewExternal(extract.WithCommand(language.Python, []string{script}))
	c := newComparator(t,
		WithRegistry(extract.NewRegistry(ext)),
		WithBackend(extract.BackendExternal),
	)
	res, err := c.Compare(context.Background(), a, b)
	require.NoError(t, err)
	assert.Equal(t, OutcomeComputed, res.Outcome)
	assert.Equal(t, 0.0, res.Percent())
	assert.Equal(t, 0, res.Score.Union)
}

func TestCompareProviderErrorPropagates(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.py", "x")
	b := writeFile(t, dir, "b.py", "y")

	boom := errors.New("boom")
	reg := extract.NewRegistry(nil)
	reg.Register(extract.BackendTreeSitter, &failingProvider{err: boom})

	c := newComparator(t, WithRegistry(reg), WithBackend(extract.BackendTreeSitter))
	_, err := c.Compare(context.Background(), a, b)
	assert.ErrorIs(t, err, boom)
}

func TestNewRejectsUnknownSettings(t *testing.T) {
	_, err := New(WithStrategy("fuzzy"))
	assert.Error(t, err)
	_, err = New(WithBackend("llm"))
	assert.Error(t, err)
	_, err = New(WithOnUnsupported("ignore"))
	assert.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t,
		Fingerprint([]byte("x = 1 # note"), extract.StrategyToken),
		Fingerprint([]byte("x = 1"), extract.StrategyToken),
	)
	assert.NotEqual(t,
		Fingerprint([]byte("x = 1 # note"), extract.StrategyStructure),
		Fingerprint([]byte("x = 1"), extract.StrategyStructure),
	)
}
