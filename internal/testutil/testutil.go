// Package testutil provides source-file fixtures for codesim tests.
package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// Sample sources shared across tests. CMainZero and CMainOne differ in one
// token out of ten; CMainReformatted has the same signatures as CMainZero.
const (
	CMainZero        = "int main() { return 0; }\n"
	CMainOne         = "int main() { return 1; }\n"
	CMainReformatted = "// reformatted\nint main()\n{\n    return 0;\n}\n"
	CStruct          = "struct S { int x; };\n"
	PyFunc           = "def f():\n    return 1\n"
	RubyScript       = "puts 1\n"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// WriteTree creates files from a map of relative path to content under root
// and returns their absolute paths, sorted.
func WriteTree(t *testing.T, root string, files map[string]string) []string {
	t.Helper()
	paths := make([]string, 0, len(files))
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		WriteFile(t, path, content)
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Workdir creates a scratch directory holding files, makes it the working
// directory for the rest of the test and clears envVar so no config file is
// picked up from outside. It returns the directory.
func Workdir(t *testing.T, envVar string, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	WriteTree(t, dir, files)
	t.Chdir(dir)
	if envVar != "" {
		t.Setenv(envVar, "")
	}
	return dir
}
