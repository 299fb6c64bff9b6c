package index

import (
	"fmt"
	"path"
	"strings"

	"repoknowledge/internal/model"
	"repoknowledge/internal/summary"
)

// summarize runs phase 10: generate and persist a file summary for every
// indexed file (recording its first line back onto files.purpose so
// directory summaries can reference it), then a directory summary per
// direct-parent directory, then the single project summary.
func (p *Pipeline) summarize() error {
	files, err := p.Store.ListFiles()
	if err != nil {
		return fmt.Errorf("list files: %w", err)
	}

	gen := summary.New(p.Store)
	dirFiles := make(map[string][]model.File)

	for i, f := range files {
		sum, err := gen.File(f)
		if err != nil {
			return fmt.Errorf("file summary %s: %w", f.Path, err)
		}
		f.Purpose = firstLineOf(sum.Content)
		if _, err := p.Store.UpsertFile(f); err != nil {
			return fmt.Errorf("record purpose for %s: %w", f.Path, err)
		}

		dir := path.Dir(f.Path)
		dirFiles[dir] = append(dirFiles[dir], f)
		p.progress("summarize", i+1, len(files))
	}

	for dir, children := range dirFiles {
		if _, err := gen.Directory(dir, children); err != nil {
			return fmt.Errorf("directory summary %s: %w", dir, err)
		}
	}

	if _, err := gen.Project(); err != nil {
		return fmt.Errorf("project summary: %w", err)
	}
	return nil
}

func firstLineOf(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
