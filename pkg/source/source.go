// Package source reads the files being compared, either from the working
// tree or from a git revision.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/panbanda/codesim/internal/vcs"
)

// ContentSource provides file content from a specific source.
type ContentSource interface {
	// Read returns the content of the file at path.
	Read(path string) ([]byte, error)
	// OnDisk reports whether paths handed to Read can also be opened
	// directly, which external parsers need.
	OnDisk() bool
}

// FilesystemSource reads files from the local filesystem.
type FilesystemSource struct{}

// NewFilesystem creates a source that reads from the filesystem.
func NewFilesystem() *FilesystemSource {
	return &FilesystemSource{}
}

// Read implements ContentSource.
func (f *FilesystemSource) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// OnDisk implements ContentSource.
func (f *FilesystemSource) OnDisk() bool { return true }

// TreeSource reads files from a git tree. Paths may be absolute, relative
// to the working directory, or relative to the repository root.
// It is safe for concurrent use by multiple goroutines.
type TreeSource struct {
	tree vcs.Tree
	root string
	rev  string
	mu   sync.Mutex
}

// NewTree creates a source that reads from a git tree checked out at root.
func NewTree(tree vcs.Tree, root, rev string) *TreeSource {
	return &TreeSource{tree: tree, root: root, rev: rev}
}

// OpenRevision resolves rev in the repository containing dir.
func OpenRevision(opener vcs.Opener, dir, rev string) (*TreeSource, error) {
	repo, err := opener.PlainOpenWithDetect(dir)
	if err != nil {
		return nil, fmt.Errorf("open repository at %s: %w", dir, err)
	}
	commit, err := repo.Resolve(rev)
	if err != nil {
		return nil, err
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("tree for %s: %w", rev, err)
	}
	return NewTree(tree, repo.RepoPath(), rev), nil
}

// Read implements ContentSource.
func (t *TreeSource) Read(path string) ([]byte, error) {
	rel, err := t.relative(path)
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	data, err := t.tree.File(rel)
	if err != nil {
		return nil, fmt.Errorf("%s at %s: %w", rel, t.rev, err)
	}
	return data, nil
}

// OnDisk implements ContentSource.
func (t *TreeSource) OnDisk() bool { return false }

// Revision returns the revision the tree was resolved from.
func (t *TreeSource) Revision() string { return t.rev }

// Files lists every file in the tree as a path under root.
func (t *TreeSource) Files() ([]string, error) {
	t.mu.Lock()
	entries, err := t.tree.Entries()
	t.mu.Unlock()
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		files = append(files, filepath.Join(t.root, filepath.FromSlash(e.Path)))
	}
	return files, nil
}

func (t *TreeSource) relative(path string) (string, error) {
	if t.root == "" {
		return filepath.ToSlash(filepath.Clean(path)), nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(t.root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		// Not under the working tree; treat as repository relative.
		return filepath.ToSlash(filepath.Clean(path)), nil
	}
	return filepath.ToSlash(rel), nil
}
