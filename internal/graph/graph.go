// Package graph derives the file-to-file import graph and the
// symbol-to-symbol call/import graph (§4.5) from a batch of newly parsed
// files plus the metadata store's full symbol name index.
package graph

import (
	"path"
	"regexp"
	"strings"

	"repoknowledge/internal/model"
	"repoknowledge/internal/store"
)

// ParsedFile is one file this pipeline run parsed and persisted, with its
// symbols already assigned database ids and its chunks already persisted.
type ParsedFile struct {
	FileID  int64
	Path    string // project-relative, slash-separated
	Symbols []model.Symbol
	Imports []model.Import
	Chunks  []model.Chunk
}

// localImportCandidates enumerates, in priority order, the relative-path
// variants tried for a local import source (§4.5 step 2a).
func localImportCandidates(raw string) []string {
	candidates := []string{raw}
	for _, ext := range []string{".ts", ".tsx", ".js", ".jsx"} {
		candidates = append(candidates, raw+ext)
	}
	for _, idx := range []string{"/index.ts", "/index.tsx", "/index.js", "/index.jsx"} {
		candidates = append(candidates, raw+idx)
	}
	for _, ext := range []string{".py", ".rs", ".go"} {
		candidates = append(candidates, raw+ext)
	}
	if strings.HasSuffix(raw, ".js") || strings.HasSuffix(raw, ".jsx") {
		stem := strings.TrimSuffix(strings.TrimSuffix(raw, ".jsx"), ".js")
		candidates = append(candidates, stem+".ts", stem+".tsx", stem+"/index.ts", stem+"/index.tsx")
	}
	return candidates
}

// resolveLocalImport resolves a raw import source relative to fileDir
// against pathIndex (the set of persisted file paths), returning the
// matched file id and whether one was found. Only relative/absolute
// ("." or "/"-prefixed) sources are attempted; package-resolution
// configuration is never consulted (§9 open question, preserved as-is).
func resolveLocalImport(raw, fileDir string, pathIndex map[string]int64) (int64, bool) {
	if raw == "" || !(strings.HasPrefix(raw, ".") || strings.HasPrefix(raw, "/")) {
		return 0, false
	}
	for _, cand := range localImportCandidates(raw) {
		joined := path.Join(fileDir, cand)
		joined = strings.TrimPrefix(joined, "/")
		if id, ok := pathIndex[joined]; ok {
			return id, true
		}
	}
	return 0, false
}

func containsWholeWord(body, name string) bool {
	if name == "" {
		return false
	}
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(name) + `\b`)
	if err != nil {
		return false
	}
	return re.MatchString(body)
}

// stripHeader removes a chunk's synthetic "// File: ..." header line, if
// present, before the content is used for call-pattern matching.
func stripHeader(content string) string {
	if idx := strings.Index(content, "\n"); idx >= 0 && strings.HasPrefix(content, "// File:") {
		return content[idx+1:]
	}
	return content
}

// Build derives FileDependency rows and GraphEdge rows for the files in
// batch, resolving import/call targets against allSymbols (every symbol
// currently in the metadata store, by name) and pathIndex (every
// currently persisted file path, project-relative).
func Build(batch []ParsedFile, pathIndex map[string]int64, allSymbols map[string][]store.SymbolRef) ([]model.FileDependency, []model.GraphEdge) {
	var deps []model.FileDependency
	var edges []model.GraphEdge

	// §4.5 step 3: pre-compile a call pattern for every known symbol name
	// of length >= 2.
	type callPattern struct {
		name string
		re   *regexp.Regexp
	}
	var patterns []callPattern
	for name := range allSymbols {
		if len(name) < 2 {
			continue
		}
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(name) + `\s*\(`)
		if err != nil {
			continue
		}
		patterns = append(patterns, callPattern{name: name, re: re})
	}

	for _, f := range batch {
		fileDir := path.Dir(f.Path)
		if fileDir == "." {
			fileDir = ""
		}

		// Step 2: imports.
		for _, imp := range f.Imports {
			targetID, resolved := resolveLocalImport(imp.Source, fileDir, pathIndex)
			if resolved {
				deps = append(deps, model.FileDependency{
					SourceFileID: f.FileID,
					TargetFileID: targetID,
					Type:         "imports",
				})
			}

			for _, name := range imp.Names {
				targets := allSymbols[name]
				if len(targets) == 0 {
					continue
				}
				sources := symbolsReferencing(f.Symbols, name)
				if len(sources) == 0 && len(f.Symbols) > 0 {
					sources = []model.Symbol{f.Symbols[0]}
				}
				for _, src := range sources {
					for _, tgt := range targets {
						edges = append(edges, model.GraphEdge{
							SourceSymbolID: src.ID,
							TargetSymbolID: tgt.ID,
							SourceFileID:   f.FileID,
							TargetFileID:   tgt.FileID,
							Type:           model.EdgeImports,
							Weight:         0.5,
						})
					}
				}
			}
		}

		// Step 3: calls.
		strippedChunks := make([]model.Chunk, len(f.Chunks))
		for i, c := range f.Chunks {
			strippedChunks[i] = c
			strippedChunks[i].Content = stripHeader(c.Content)
		}

		for _, p := range patterns {
			var matchingChunks []model.Chunk
			for _, c := range strippedChunks {
				if p.re.MatchString(c.Content) {
					matchingChunks = append(matchingChunks, c)
				}
			}
			if len(matchingChunks) == 0 {
				continue
			}

			sources := symbolsOverlappingChunks(f.Symbols, matchingChunks)
			if len(sources) == 0 && len(f.Symbols) > 0 {
				sources = []model.Symbol{f.Symbols[0]}
			}

			targets := allSymbols[p.name]
			for _, src := range sources {
				for _, tgt := range targets {
					if tgt.FileID == f.FileID {
						continue // intra-file calls skipped
					}
					if tgt.ID == src.ID {
						continue // no self-edges
					}
					edges = append(edges, model.GraphEdge{
						SourceSymbolID: src.ID,
						TargetSymbolID: tgt.ID,
						SourceFileID:   f.FileID,
						TargetFileID:   tgt.FileID,
						Type:           model.EdgeCalls,
						Weight:         1.0,
					})
				}
			}
		}
	}

	return deps, edges
}

func symbolsReferencing(syms []model.Symbol, name string) []model.Symbol {
	var out []model.Symbol
	for _, s := range syms {
		if containsWholeWord(s.Body, name) {
			out = append(out, s)
		}
	}
	return out
}

func symbolsOverlappingChunks(syms []model.Symbol, chunks []model.Chunk) []model.Symbol {
	var out []model.Symbol
	seen := make(map[int64]bool)
	for _, s := range syms {
		for _, c := range chunks {
			if s.StartLine <= c.EndLine && s.EndLine >= c.StartLine {
				if !seen[s.ID] {
					seen[s.ID] = true
					out = append(out, s)
				}
				break
			}
		}
	}
	return out
}
