// Package vcs provides read access to files as they were at a git revision.
package vcs

import "errors"

// ErrNotFound is returned when a path does not exist in a tree.
var ErrNotFound = errors.New("file not found in tree")

// Opener opens git repositories.
type Opener interface {
	// PlainOpenWithDetect opens a git repository, detecting .git in parent directories.
	PlainOpenWithDetect(path string) (Repository, error)
}

// Repository provides access to git repository operations.
type Repository interface {
	// Resolve returns the commit a revision (branch, tag, hash, HEAD~n)
	// points to.
	Resolve(rev string) (Commit, error)
	// RepoPath returns the root path of the working tree.
	RepoPath() string
}

// Commit represents a git commit.
type Commit interface {
	// Hash returns the full hex commit hash.
	Hash() string
	// Tree returns the tree object for this commit.
	Tree() (Tree, error)
}

// TreeEntry represents a file in a git tree.
type TreeEntry struct {
	Path string
	Size int64
}

// Tree represents a git tree object. Paths are slash separated and
// relative to the repository root.
type Tree interface {
	// File returns the contents of the blob at path.
	File(path string) ([]byte, error)
	// Entries returns all regular files in the tree (recursively).
	Entries() ([]TreeEntry, error)
}
