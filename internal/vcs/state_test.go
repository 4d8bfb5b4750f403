package vcs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0755))
	return dir
}

func TestLoadStateMissing(t *testing.T) {
	dir := newRepoDir(t)

	st, err := loadState(dir)
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestSaveAndLoadState(t *testing.T) {
	dir := newRepoDir(t)

	in := &mergeState{
		RemoteHead: "abc123",
		Conflicts:  map[string]bool{"b.md": true, "a.md": true},
	}
	require.NoError(t, saveState(dir, in))

	out, err := loadState(dir)
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.Equal(t, "abc123", out.RemoteHead)
	assert.Equal(t, []string{"a.md", "b.md"}, out.conflictPaths())
}

func TestStateResolvedAndClear(t *testing.T) {
	dir := newRepoDir(t)

	st := &mergeState{
		RemoteHead: "abc123",
		Conflicts:  map[string]bool{"a.md": true},
	}
	st.resolved("a.md")
	assert.Empty(t, st.conflictPaths())

	require.NoError(t, saveState(dir, st))
	require.NoError(t, clearState(dir))

	out, err := loadState(dir)
	require.NoError(t, err)
	assert.Nil(t, out)

	// Clearing twice is fine.
	require.NoError(t, clearState(dir))
}
