// Package scanner finds the source files a batch comparison should read.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/panbanda/codesim/pkg/config"
	"github.com/panbanda/codesim/pkg/language"
)

// Scanner finds source files in a directory.
type Scanner struct {
	config  *config.Config
	matcher gitignore.Matcher
	base    string
	onFile  func()
}

// NewScanner creates a new file scanner.
func NewScanner(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Scanner{config: cfg}
}

// OnFile sets a callback invoked for every file ScanDir accepts.
func (s *Scanner) OnFile(fn func()) *Scanner {
	s.onFile = fn
	return s
}

// findGitRoot finds the root of the git repository by looking for .git.
// Returns empty string if not in a git repository.
func findGitRoot(start string) string {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadExcludePatterns builds the matcher for a scan rooted at absRoot from
// the configured directories and patterns plus every .gitignore in the
// enclosing repository. Paths are matched relative to s.base.
func (s *Scanner) loadExcludePatterns(absRoot string) {
	var patterns []gitignore.Pattern

	for _, dir := range s.config.Exclude.Dirs {
		patterns = append(patterns, gitignore.ParsePattern(strings.TrimSuffix(dir, "/")+"/", nil))
	}
	for _, pattern := range s.config.Exclude.Patterns {
		patterns = append(patterns, gitignore.ParsePattern(pattern, nil))
	}

	s.base = absRoot
	if s.config.Exclude.Gitignore {
		if gitRoot := findGitRoot(absRoot); gitRoot != "" {
			s.base = gitRoot
			if gitPatterns, err := gitignore.ReadPatterns(osfs.New(gitRoot), nil); err == nil {
				patterns = append(patterns, gitPatterns...)
			}
		}
	}

	s.matcher = gitignore.NewMatcher(patterns)
}

// isExcluded checks if an absolute path matches any exclusion pattern.
func (s *Scanner) isExcluded(path string, isDir bool) bool {
	if s.matcher == nil {
		return false
	}
	rel, err := filepath.Rel(s.base, path)
	if err != nil || rel == "." {
		return false
	}
	return s.matcher.Match(strings.Split(filepath.ToSlash(rel), "/"), isDir)
}

// ScanDir recursively scans a directory for files with a supported
// extension. Symlinks that resolve outside root are skipped.
func (s *Scanner) ScanDir(root string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, err
	}

	s.loadExcludePatterns(absRoot)

	files := make([]string, 0, 256)
	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil || !isWithinRoot(resolved, absRoot) {
				return nil
			}
		}

		if d.IsDir() {
			if path != absRoot && s.isExcluded(path, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if s.isExcluded(path, false) {
			return nil
		}
		if language.Detect(path).Supported() {
			files = append(files, path)
			if s.onFile != nil {
				s.onFile()
			}
		}
		return nil
	})

	return files, walkErr
}

// ScanPaths expands directories with ScanDir and keeps supported files given
// directly. The result is sorted and free of duplicates.
func (s *Scanner) ScanPaths(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(f string) {
		if !seen[f] {
			seen[f] = true
			files = append(files, f)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", p, err)
		}
		if !info.IsDir() {
			if ok, err := s.ScanFile(p); err != nil {
				return nil, err
			} else if ok {
				add(p)
			}
			continue
		}
		found, err := s.ScanDir(p)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", p, err)
		}
		for _, f := range found {
			add(f)
		}
	}

	sort.Strings(files)
	return files, nil
}

// isWithinRoot checks if a path is contained within the root directory.
func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)
	return absPath == root || strings.HasPrefix(absPath, root+string(filepath.Separator))
}

// ScanFile checks if a single file should be analyzed. Only the file name is
// matched against the exclusion patterns.
func (s *Scanner) ScanFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}
	base := filepath.Base(path)
	for _, pattern := range s.config.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return false, nil
		}
	}
	return language.Detect(path).Supported(), nil
}

// GroupByLanguage groups files by their detected language.
func (s *Scanner) GroupByLanguage(files []string) map[language.Tag][]string {
	groups := make(map[language.Tag][]string)
	for _, f := range files {
		if tag := language.Detect(f); tag.Supported() {
			groups[tag] = append(groups[tag], f)
		}
	}
	return groups
}
