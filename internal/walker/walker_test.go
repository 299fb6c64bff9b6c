package walker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDiscoverFiltersByExtensionAndIgnores(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main")
	writeFile(t, root, "README.md", "hello")
	writeFile(t, root, "node_modules/pkg/index.go", "package pkg")
	writeFile(t, root, "empty.go", "")

	exts := map[string]bool{"go": true, "md": true}
	files, err := Discover(root, exts, nil)
	require.NoError(t, err)

	var rels []string
	for _, f := range files {
		rels = append(rels, f.RelPath)
	}
	require.ElementsMatch(t, []string{"README.md", "main.go"}, rels)
}

func TestDiscoverHonorsGitignore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "generated/\n*.gen.go\n")
	writeFile(t, root, "main.go", "package main")
	writeFile(t, root, "generated/code.go", "package generated")
	writeFile(t, root, "thing.gen.go", "package main")

	files, err := Discover(root, map[string]bool{"go": true}, nil)
	require.NoError(t, err)

	var rels []string
	for _, f := range files {
		rels = append(rels, f.RelPath)
	}
	require.Equal(t, []string{"main.go"}, rels)
}

func TestDiscoverHonorsExtraIgnores(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "keep.go", "package main")
	writeFile(t, root, "skip/drop.go", "package skip")

	files, err := Discover(root, map[string]bool{"go": true}, []string{"skip"})
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, "keep.go", files[0].RelPath)
}

func TestDiscoverResultsAreSorted(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "z.go", "package main")
	writeFile(t, root, "a.go", "package main")
	writeFile(t, root, "m.go", "package main")

	files, err := Discover(root, map[string]bool{"go": true}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"a.go", "m.go", "z.go"}, []string{files[0].RelPath, files[1].RelPath, files[2].RelPath})
}
