package hasher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashContentDeterministic(t *testing.T) {
	b := []byte("package main\n")
	require.Equal(t, HashContent(b), HashContent(b))
	require.NotEqual(t, HashContent(b), HashContent([]byte("package other\n")))
}

func TestComputeDiff(t *testing.T) {
	dir := t.TempDir()
	unchangedPath := filepath.Join(dir, "unchanged.go")
	modifiedPath := filepath.Join(dir, "modified.go")
	addedPath := filepath.Join(dir, "added.go")

	require.NoError(t, os.WriteFile(unchangedPath, []byte("package a\n"), 0o644))
	require.NoError(t, os.WriteFile(modifiedPath, []byte("package b v2\n"), 0o644))
	require.NoError(t, os.WriteFile(addedPath, []byte("package c\n"), 0o644))

	_, unchangedHash, err := HashFile(unchangedPath)
	require.NoError(t, err)

	existingHashes := map[string]string{
		"unchanged.go": unchangedHash,
		"modified.go":  "stale-hash",
		"removed.go":   "anything",
	}

	discovered := []Discovered{
		{RelPath: "unchanged.go", AbsPath: unchangedPath, Size: 10},
		{RelPath: "modified.go", AbsPath: modifiedPath, Size: 13},
		{RelPath: "added.go", AbsPath: addedPath, Size: 10},
	}

	cache := ContentCache{}
	diff, err := ComputeDiff(discovered, existingHashes, nil, cache)
	require.NoError(t, err)

	require.Len(t, diff.Added, 1)
	require.Equal(t, "added.go", diff.Added[0].RelPath)
	require.Len(t, diff.Modified, 1)
	require.Equal(t, "modified.go", diff.Modified[0].RelPath)
	require.Len(t, diff.Unchanged, 1)
	require.Equal(t, "unchanged.go", diff.Unchanged[0].RelPath)
	require.Equal(t, []string{"removed.go"}, diff.Removed)

	require.Equal(t, len(discovered)+len(diff.Removed), len(diff.Added)+len(diff.Modified)+len(diff.Unchanged)+len(diff.Removed))
	require.Contains(t, cache, "added.go")
	require.Contains(t, cache, "modified.go")
	require.Contains(t, cache, "unchanged.go")
}

func TestComputeDiffUnchangedOnRepeatRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stable.go")
	require.NoError(t, os.WriteFile(path, []byte("package stable\n"), 0o644))

	_, hash, err := HashFile(path)
	require.NoError(t, err)

	existingHashes := map[string]string{"stable.go": hash}
	discovered := []Discovered{{RelPath: "stable.go", AbsPath: path, Size: 15}}

	diff, err := ComputeDiff(discovered, existingHashes, nil, ContentCache{})
	require.NoError(t, err)
	require.Empty(t, diff.Modified)
	require.Len(t, diff.Unchanged, 1)
}
