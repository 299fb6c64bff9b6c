// Package walker discovers source files under a project root for the
// pipeline's Discover phase (§4.8 phase 1): honoring a default ignore set,
// a .gitignore if present, config-supplied ignore patterns, a 1 MiB
// per-file cap, and zero-size exclusion, filtered to known extensions and
// sorted by path for determinism.
package walker

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileInfo holds metadata about a discovered source file.
type FileInfo struct {
	Path    string // absolute path on disk
	RelPath string // path relative to root, slash-separated
	Size    int64
}

// MaxFileSize is the largest file the walker will consider.
const MaxFileSize = 1 << 20 // 1 MiB

// DefaultIgnores are skipped even when no .gitignore is present.
var DefaultIgnores = []string{
	".git", ".svn", ".hg", "node_modules", "vendor",
	"__pycache__", ".idea", ".vscode", "dist", "build",
}

// Discover walks root and returns every file whose extension is in
// allowedExts, honoring DefaultIgnores, root's .gitignore (if present), and
// the caller-supplied extraIgnores, skipping files over MaxFileSize or of
// zero size. The result is sorted by relative path.
func Discover(root string, allowedExts map[string]bool, extraIgnores []string) ([]FileInfo, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	patterns := append(append([]string{}, DefaultIgnores...), extraIgnores...)
	patterns = append(patterns, readGitignore(absRoot)...)

	var out []FileInfo
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries, keep walking
		}
		if path == absRoot {
			return nil
		}
		rel, _ := filepath.Rel(absRoot, path)
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if matchesIgnore(d.Name(), rel, patterns) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if matchesIgnore(d.Name(), rel, patterns) {
			return nil
		}

		ext := strings.TrimPrefix(filepath.Ext(path), ".")
		if !allowedExts[strings.ToLower(ext)] {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.Size() == 0 || info.Size() > MaxFileSize {
			return nil
		}

		out = append(out, FileInfo{Path: path, RelPath: rel, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].RelPath < out[j].RelPath })
	return out, nil
}

// readGitignore returns the non-comment, non-blank patterns of
// root/.gitignore, or nil if it doesn't exist.
func readGitignore(root string) []string {
	f, err := os.Open(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, strings.TrimPrefix(strings.TrimSuffix(line, "/"), "/"))
	}
	return patterns
}

// matchesIgnore reports whether a directory/file name or its root-relative
// path matches any ignore pattern, either as an exact name, a path prefix,
// or a glob.
func matchesIgnore(name, relPath string, patterns []string) bool {
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if name == p {
			return true
		}
		if strings.HasPrefix(relPath, p+"/") || relPath == p {
			return true
		}
		if matched, _ := filepath.Match(p, relPath); matched {
			return true
		}
		if matched, _ := filepath.Match(p, name); matched {
			return true
		}
	}
	return false
}
