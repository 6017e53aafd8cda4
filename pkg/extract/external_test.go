package extract

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/panbanda/codesim/pkg/language"
	"github.com/panbanda/codesim/pkg/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScript creates an executable shell script acting as a parser.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	path := filepath.Join(t.TempDir(), "parser.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}

func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestExternalSuccess(t *testing.T) {
	script := writeScript(t, `echo AST_START; echo "def run(self):"; echo "class A:"; echo AST_END`)
	src := writeSource(t, "a.py", "class A:\n    def run(self):\n        pass\n")

	e := NewExternal(WithCommand(language.Python, []string{script}))
	got, err := e.Extract(context.Background(), Input{
		Path:     src,
		Source:   []byte("ignored"),
		Language: language.Python,
		OnDisk:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, units.NewSet("def run(self):", "class A:"), got)
}

func TestExternalPassesPathLast(t *testing.T) {
	script := writeScript(t, `echo "$1"; echo "$2"`)
	src := writeSource(t, "Main.java", "class Main {}")

	e := NewExternal(WithCommand(language.Java, []string{script, "--flag"}))
	got, err := e.Extract(context.Background(), Input{Path: src, Language: language.Java, OnDisk: true})
	require.NoError(t, err)
	assert.Equal(t, units.NewSet("--flag", src), got)
}

func TestExternalWritesTempCopy(t *testing.T) {
	script := writeScript(t, `echo "$1"; cat "$1"`)

	e := NewExternal(WithCommand(language.Python, []string{script}))
	got, err := e.Extract(context.Background(), Input{
		Path:     "pkg/mod.py",
		Source:   []byte("class B:\n"),
		Language: language.Python,
	})
	require.NoError(t, err)
	require.Equal(t, 2, got.Len())
	assert.True(t, got.Has("class B:"))

	var tmp string
	for u := range got {
		if u != "class B:" {
			tmp = u
		}
	}
	assert.True(t, strings.HasSuffix(tmp, ".py"), "temp copy keeps extension: %s", tmp)
	_, err = os.Stat(tmp)
	assert.True(t, os.IsNotExist(err), "temp copy is removed")
}

func TestExternalFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"non-zero exit", `echo "int f() {"; exit 3`},
		{"empty output", `exit 0`},
		{"error sentinel", `echo ERROR`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script := writeScript(t, tt.body)
			src := writeSource(t, "a.cpp", "int f() {}")
			e := NewExternal(WithCommand(language.CFamily, []string{script}))

			_, err := e.Extract(context.Background(), Input{Path: src, Language: language.CFamily, OnDisk: true})
			assert.ErrorIs(t, err, ErrToolFailed)
		})
	}
}

func TestExternalFramingOnlyIsEmptySet(t *testing.T) {
	script := writeScript(t, `echo AST_START; echo AST_END`)
	src := writeSource(t, "a.cpp", "int x;\n")
	e := NewExternal(WithCommand(language.CFamily, []string{script}))

	got, err := e.Extract(context.Background(), Input{Path: src, Language: language.CFamily, OnDisk: true})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, 0, got.Len())
}

func TestExternalMissingExecutable(t *testing.T) {
	src := writeSource(t, "a.py", "x = 1")
	e := NewExternal(WithCommand(language.Python, []string{filepath.Join(t.TempDir(), "no-such-parser")}))

	_, err := e.Extract(context.Background(), Input{Path: src, Language: language.Python, OnDisk: true})
	assert.ErrorIs(t, err, ErrToolFailed)
}

func TestExternalTimeout(t *testing.T) {
	script := writeScript(t, `exec sleep 5`)
	src := writeSource(t, "a.c", "int f() {}")
	e := NewExternal(
		WithCommand(language.CFamily, []string{script}),
		WithTimeout(50*time.Millisecond),
	)

	start := time.Now()
	_, err := e.Extract(context.Background(), Input{Path: src, Language: language.CFamily, OnDisk: true})
	assert.ErrorIs(t, err, ErrToolFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestExternalCancelled(t *testing.T) {
	script := writeScript(t, `exec sleep 5`)
	src := writeSource(t, "a.c", "int f() {}")
	e := NewExternal(WithCommand(language.CFamily, []string{script}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Extract(ctx, Input{Path: src, Language: language.CFamily, OnDisk: true})
	assert.ErrorIs(t, err, ErrToolFailed)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExternalFallsBackWithoutCommand(t *testing.T) {
	e := NewExternal()
	assert.Nil(t, e.Command(language.CFamily))

	got, err := e.Extract(context.Background(), Input{
		Path:     "a.c",
		Source:   []byte("int main() { return 0; }"),
		Language: language.CFamily,
	})
	require.NoError(t, err)
	assert.Equal(t, units.NewSet("int main() {"), got)
}

func TestExternalEmptyCommandRemoves(t *testing.T) {
	e := NewExternal(
		WithCommands(map[language.Tag][]string{language.Java: {"java", "Parser"}}),
		WithCommand(language.Java, nil),
	)
	assert.Nil(t, e.Command(language.Java))
}

func TestExternalUnsupported(t *testing.T) {
	_, err := NewExternal().Extract(context.Background(), Input{Path: "a.rb", Language: language.Unsupported})
	assert.ErrorIs(t, err, language.ErrUnsupported)
	assert.NotErrorIs(t, err, ErrToolFailed)
}
