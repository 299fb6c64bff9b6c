// Package summary assembles heuristic file, directory, and project
// summaries deterministically from data already in the metadata store
// (§4.8 phase 10). No chat model is consulted; see the REDESIGN FLAGS
// entry on summaries in SPEC_FULL.md.
package summary

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"repoknowledge/internal/budget"
	"repoknowledge/internal/model"
	"repoknowledge/internal/store"
)

const (
	topSymbolsPerFile    = 5
	topFilesForProject   = 10
	topSymbolsPerProject = 15
)

// Generator builds and persists Summary rows against s.
type Generator struct {
	Store *store.Store
}

func New(s *store.Store) *Generator {
	return &Generator{Store: s}
}

// File assembles and upserts the file-scoped summary for f: its leading
// doc comment, if any, plus its top exported symbols by importance.
func (g *Generator) File(f model.File) (model.Summary, error) {
	syms, err := g.Store.SymbolsByFile(f.ID)
	if err != nil {
		return model.Summary{}, fmt.Errorf("summary: file %s: %w", f.Path, err)
	}

	content := buildFileSummary(f, syms)
	sum := model.Summary{
		ScopeType:  model.ScopeFile,
		ScopeID:    f.Path,
		Content:    content,
		TokenCount: budget.EstimateTokens(content),
	}
	if err := g.Store.UpsertSummary(sum); err != nil {
		return model.Summary{}, err
	}
	return sum, nil
}

// Directory assembles and upserts the directory-scoped summary for dir
// from the purposes already recorded on its direct child files.
func (g *Generator) Directory(dir string, children []model.File) (model.Summary, error) {
	content := buildDirectorySummary(dir, children)
	sum := model.Summary{
		ScopeType:  model.ScopeDirectory,
		ScopeID:    dir,
		Content:    content,
		TokenCount: budget.EstimateTokens(content),
	}
	if err := g.Store.UpsertSummary(sum); err != nil {
		return model.Summary{}, err
	}
	return sum, nil
}

// Project assembles and upserts the project-scoped summary: the top-ranked
// symbols across the repository's highest-importance files.
func (g *Generator) Project() (model.Summary, error) {
	files, err := g.Store.ListFiles()
	if err != nil {
		return model.Summary{}, fmt.Errorf("summary: project: list files: %w", err)
	}

	type fileScore struct {
		file  model.File
		syms  []model.Symbol
		score float64
	}
	scored := make([]fileScore, 0, len(files))
	for _, f := range files {
		syms, err := g.Store.SymbolsByFile(f.ID)
		if err != nil {
			return model.Summary{}, fmt.Errorf("summary: project: symbols of %s: %w", f.Path, err)
		}
		scored = append(scored, fileScore{file: f, syms: syms, score: maxImportance(syms)})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	if len(scored) > topFilesForProject {
		scored = scored[:topFilesForProject]
	}

	var allTop []model.Symbol
	for _, fs := range scored {
		allTop = append(allTop, topExported(fs.syms, topSymbolsPerFile)...)
	}
	sort.SliceStable(allTop, func(i, j int) bool { return allTop[i].Importance > allTop[j].Importance })
	if len(allTop) > topSymbolsPerProject {
		allTop = allTop[:topSymbolsPerProject]
	}

	symbolFile := make(map[int64]string, len(scored))
	for _, fs := range scored {
		symbolFile[fs.file.ID] = fs.file.Path
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%d files indexed.\n", len(files)))
	b.WriteString("Highest-importance symbols:\n")
	for _, s := range allTop {
		b.WriteString(fmt.Sprintf("- %s %s (%s)\n", s.Kind, s.Name, symbolFile[s.FileID]))
	}
	content := strings.TrimRight(b.String(), "\n")

	sum := model.Summary{
		ScopeType:  model.ScopeProject,
		ScopeID:    "project",
		Content:    content,
		TokenCount: budget.EstimateTokens(content),
	}
	if err := g.Store.UpsertSummary(sum); err != nil {
		return model.Summary{}, err
	}
	return sum, nil
}

func buildFileSummary(f model.File, syms []model.Symbol) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s (%s)", f.Path, orNone(f.Language)))

	if doc := leadingDocComment(syms); doc != "" {
		b.WriteString("\n" + firstLine(doc))
	}

	top := topExported(syms, topSymbolsPerFile)
	for _, s := range top {
		line := fmt.Sprintf("\n- %s %s", s.Kind, s.Name)
		if s.Docstring != "" {
			line += ": " + firstLine(s.Docstring)
		}
		b.WriteString(line)
	}
	return b.String()
}

func buildDirectorySummary(dir string, children []model.File) string {
	var b strings.Builder
	b.WriteString(orNone(path.Base(dir)))
	for _, f := range children {
		if f.Purpose == "" {
			continue
		}
		b.WriteString(fmt.Sprintf("\n%s: %s", f.Path, firstLine(f.Purpose)))
	}
	return b.String()
}

func topExported(syms []model.Symbol, n int) []model.Symbol {
	var exported []model.Symbol
	for _, s := range syms {
		if s.Exported {
			exported = append(exported, s)
		}
	}
	sort.SliceStable(exported, func(i, j int) bool { return exported[i].Importance > exported[j].Importance })
	if len(exported) > n {
		exported = exported[:n]
	}
	return exported
}

// leadingDocComment returns the docstring of the symbol with the lowest
// start line that has a non-empty docstring, approximating a file's
// leading doc comment.
func leadingDocComment(syms []model.Symbol) string {
	best := -1
	var doc string
	for _, s := range syms {
		if s.Docstring == "" {
			continue
		}
		if best == -1 || s.StartLine < best {
			best = s.StartLine
			doc = s.Docstring
		}
	}
	return doc
}

func maxImportance(syms []model.Symbol) float64 {
	var max float64
	for _, s := range syms {
		if s.Importance > max {
			max = s.Importance
		}
	}
	return max
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
