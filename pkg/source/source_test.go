package source

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/panbanda/codesim/internal/vcs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ ContentSource = (*FilesystemSource)(nil)
	_ ContentSource = (*TreeSource)(nil)
)

func TestFilesystemSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.c")
	require.NoError(t, os.WriteFile(path, []byte("int x;"), 0644))

	src := NewFilesystem()
	assert.True(t, src.OnDisk())

	content, err := src.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "int x;", string(content))

	_, err = src.Read(filepath.Join(dir, "nonexistent.c"))
	assert.Error(t, err)
}

func TestTreeSource(t *testing.T) {
	repoPath := initRepo(t)

	src, err := OpenRevision(vcs.NewGitOpener(), repoPath, "HEAD~1")
	require.NoError(t, err)
	assert.False(t, src.OnDisk())
	assert.Equal(t, "HEAD~1", src.Revision())

	// Absolute working-tree path.
	content, err := src.Read(filepath.Join(repoPath, "lib", "util.py"))
	require.NoError(t, err)
	assert.Equal(t, "def f():\n    return 0\n", string(content))

	// Repository-relative path.
	content, err = src.Read("lib/util.py")
	require.NoError(t, err)
	assert.Equal(t, "def f():\n    return 0\n", string(content))

	_, err = src.Read("lib/missing.py")
	assert.ErrorIs(t, err, vcs.ErrNotFound)

	files, err := src.Files()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(repoPath, "lib", "util.py")}, files)
}

func TestOpenRevisionErrors(t *testing.T) {
	_, err := OpenRevision(vcs.NewGitOpener(), t.TempDir(), "HEAD")
	assert.Error(t, err)

	_, err = OpenRevision(vcs.NewGitOpener(), initRepo(t), "v9.9.9")
	assert.Error(t, err)
}

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	w, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "lib"), 0755))

	for _, body := range []string{"def f():\n    return 0\n", "def f():\n    return 1\n"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "lib", "util.py"), []byte(body), 0644))
		_, err = w.Add("lib/util.py")
		require.NoError(t, err)
		_, err = w.Commit("update util", &git.CommitOptions{
			Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
		})
		require.NoError(t, err)
	}
	return dir
}
