package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/panbanda/codesim/pkg/config"
	"github.com/panbanda/codesim/pkg/language"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	tmpDir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for name, content := range files {
		path := filepath.Join(tmpDir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to create file %s: %v", name, err)
		}
	}
	return tmpDir
}

func relAll(t *testing.T, root string, files []string) []string {
	t.Helper()
	out := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(root, f)
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	sort.Strings(out)
	return out
}

func assertFiles(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("found %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("file[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestNewScanner(t *testing.T) {
	s := NewScanner(nil)
	if s.config == nil {
		t.Error("scanner.config should not be nil when passing nil")
	}

	cfg := config.DefaultConfig()
	if NewScanner(cfg).config != cfg {
		t.Error("scanner.config should be the provided config")
	}
}

func TestScanDir(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.c":           "int main() {}\n",
		"lib/util.cpp":     "void f() {}\n",
		"lib/util.h":       "void f();\n",
		"App.java":         "class App {}\n",
		"tools/gen.py":     "def gen(): pass\n",
		"tools/gen_pb2.py": "x = 1\n",
		"README.md":        "# readme\n",
		"script.rb":        "puts 1\n",
	})

	files, err := NewScanner(nil).ScanDir(root)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	assertFiles(t, relAll(t, root, files), []string{"App.java", "lib/util.cpp", "main.c", "tools/gen.py"})
}

func TestScanDirOnFile(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.c":      "int a;\n",
		"b/b.py":   "b = 1\n",
		"c.rb":     "puts 1\n",
		"d_pb2.py": "x = 1\n",
	})

	calls := 0
	files, err := NewScanner(nil).OnFile(func() { calls++ }).ScanDir(root)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	if calls != len(files) || calls != 2 {
		t.Errorf("OnFile called %d times for %d files, want 2", calls, len(files))
	}
}

func TestScanDirExcludesDirectories(t *testing.T) {
	root := writeTree(t, map[string]string{
		"vendor/dep.c":              "int x;\n",
		"node_modules/pkg/index.py": "x = 1\n",
		"src/__pycache__/m.py":      "x = 1\n",
		"src/main.c":                "int main() {}\n",
	})

	files, err := NewScanner(nil).ScanDir(root)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	assertFiles(t, relAll(t, root, files), []string{"src/main.c"})
}

func TestScanDirGitignore(t *testing.T) {
	root := writeTree(t, map[string]string{
		".gitignore":        "generated/\n*.tmp.c\n",
		"generated/out.c":   "int x;\n",
		"src/scratch.tmp.c": "int y;\n",
		"src/main.c":        "int main() {}\n",
	})
	if err := os.Mkdir(filepath.Join(root, ".git"), 0755); err != nil {
		t.Fatal(err)
	}

	files, err := NewScanner(nil).ScanDir(filepath.Join(root, "src"))
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	assertFiles(t, relAll(t, root, files), []string{"src/main.c"})

	files, err = NewScanner(nil).ScanDir(root)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	assertFiles(t, relAll(t, root, files), []string{"src/main.c"})

	cfg := config.DefaultConfig()
	cfg.Exclude.Gitignore = false
	files, err = NewScanner(cfg).ScanDir(root)
	if err != nil {
		t.Fatalf("ScanDir() error: %v", err)
	}
	assertFiles(t, relAll(t, root, files), []string{"generated/out.c", "src/main.c", "src/scratch.tmp.c"})
}

func TestScanDirMissing(t *testing.T) {
	if _, err := NewScanner(nil).ScanDir(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("ScanDir() should fail for a missing directory")
	}
}

func TestScanPaths(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a/one.c":    "int a;\n",
		"a/two.py":   "b = 1\n",
		"three.java": "class T {}\n",
		"notes.txt":  "hello\n",
	})

	s := NewScanner(nil)
	files, err := s.ScanPaths([]string{
		filepath.Join(root, "a"),
		filepath.Join(root, "three.java"),
		filepath.Join(root, "notes.txt"),
		filepath.Join(root, "a", "one.c"),
	})
	if err != nil {
		t.Fatalf("ScanPaths() error: %v", err)
	}
	assertFiles(t, relAll(t, root, files), []string{"a/one.c", "a/two.py", "three.java"})

	if _, err := s.ScanPaths([]string{filepath.Join(root, "nope")}); err == nil {
		t.Error("ScanPaths() should fail for a missing path")
	}
}

func TestScanFile(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.c":     "int main() {}\n",
		"api_pb2.py": "x = 1\n",
		"readme.md":  "hi\n",
	})
	s := NewScanner(nil)

	tests := []struct {
		name string
		want bool
	}{
		{"main.c", true},
		{"api_pb2.py", false},
		{"readme.md", false},
		{".", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ScanFile(filepath.Join(root, tt.name))
			if err != nil {
				t.Fatalf("ScanFile() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ScanFile(%s) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}

	if _, err := s.ScanFile(filepath.Join(root, "missing.c")); err == nil {
		t.Error("ScanFile() should fail for a missing file")
	}
}

func TestGroupByLanguage(t *testing.T) {
	groups := NewScanner(nil).GroupByLanguage([]string{"a.c", "b.cpp", "C.java", "d.py", "e.rb"})
	if len(groups[language.CFamily]) != 2 {
		t.Errorf("cfamily = %v, want 2 files", groups[language.CFamily])
	}
	if len(groups[language.Java]) != 1 || len(groups[language.Python]) != 1 {
		t.Errorf("groups = %v", groups)
	}
	if _, ok := groups[language.Unsupported]; ok {
		t.Error("unsupported files should not be grouped")
	}
}
