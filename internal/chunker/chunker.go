// Package chunker splits source text along symbol boundaries into
// context-headered chunks sized to an embedding model's preferred input
// length (§4.3). It consumes the symbols SymbolExtractor already produced
// rather than re-parsing.
package chunker

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"repoknowledge/internal/hasher"
	"repoknowledge/internal/model"
)

// DefaultMaxTokens is the per-chunk token budget used when a Config does
// not override it.
const DefaultMaxTokens = 512

// headerOverhead is the estimated token cost of the synthetic header line
// added to every chunk, reserved out of the per-region budget.
const headerOverhead = 20

// EstimateTokens approximates a model's token count for s.
func EstimateTokens(s string) int {
	return int(math.Ceil(float64(len(s)) / 3.5))
}

// rawChunk is a chunk before its header is rendered.
type rawChunk struct {
	startLine int
	endLine   int
	symbols   []string
	body      string
}

// Chunk splits src (the content of the file at path) into chunks no
// larger than maxTokens, informed by syms (this file's extracted
// symbols). If maxTokens <= 0, DefaultMaxTokens is used.
func Chunk(path string, src string, syms []model.Symbol, maxTokens int) []model.Chunk {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	lines := splitLines(src)
	if len(lines) == 0 {
		return nil
	}

	var raws []rawChunk
	if EstimateTokens(src)+headerOverhead <= maxTokens {
		raws = []rawChunk{{
			startLine: 1,
			endLine:   len(lines),
			symbols:   allSymbolNames(syms),
			body:      src,
		}}
	} else {
		regions := buildRegions(lines, syms)
		if len(regions) == 0 {
			raws = lineSlice(lines, 1, len(lines), nil, maxTokens)
		} else {
			for _, r := range regions {
				raws = append(raws, splitRegion(lines, r, maxTokens)...)
			}
		}
	}

	out := make([]model.Chunk, 0, len(raws))
	for i, r := range raws {
		content := renderHeader(path, r.startLine, r.endLine, r.symbols) + r.body
		out = append(out, model.Chunk{
			ChunkIndex:  i,
			Content:     content,
			ContentHash: hasher.HashContent([]byte(content)),
			StartLine:   r.startLine,
			EndLine:     r.endLine,
			SymbolNames: r.symbols,
			TokenCount:  EstimateTokens(content),
		})
	}
	return out
}

func renderHeader(path string, start, end int, symbolNames []string) string {
	if len(symbolNames) == 0 {
		return fmt.Sprintf("// File: %s | Lines: %d-%d\n", path, start, end)
	}
	return fmt.Sprintf("// File: %s | Lines: %d-%d | Symbols: %s\n", path, start, end, strings.Join(symbolNames, ", "))
}

func allSymbolNames(syms []model.Symbol) []string {
	names := make([]string, 0, len(syms))
	for _, s := range syms {
		names = append(names, s.Name)
	}
	return names
}

func splitLines(src string) []string {
	if src == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(src, "\n"), "\n")
}

// region is a contiguous line span, optionally anchored to one top-level
// symbol (and its children's names).
type region struct {
	startLine int
	endLine   int
	symbols   []string
}

// buildRegions selects top-level symbols (no parent) and classes, sorts
// them by start line, skips any overlapping an already-consumed range,
// then alternates gap regions (unattributed text) with symbol regions
// covering the whole file.
func buildRegions(lines []string, syms []model.Symbol) []region {
	var anchors []model.Symbol
	for _, s := range syms {
		if s.ParentName == "" || s.Kind == model.KindClass {
			anchors = append(anchors, s)
		}
	}
	sort.Slice(anchors, func(i, j int) bool { return anchors[i].StartLine < anchors[j].StartLine })

	childNames := make(map[string][]string)
	for _, s := range syms {
		if s.ParentName != "" {
			childNames[s.ParentName] = append(childNames[s.ParentName], s.Name)
		}
	}

	var selected []model.Symbol
	lastEnd := 0
	for _, s := range anchors {
		if s.StartLine <= lastEnd {
			continue // overlaps a previously-consumed range
		}
		selected = append(selected, s)
		if s.EndLine > lastEnd {
			lastEnd = s.EndLine
		}
	}

	if len(selected) == 0 {
		return nil
	}

	var regions []region
	cursor := 1
	for _, s := range selected {
		if s.StartLine > cursor {
			regions = append(regions, region{startLine: cursor, endLine: s.StartLine - 1})
		}
		names := append([]string{s.Name}, childNames[s.Name]...)
		regions = append(regions, region{startLine: s.StartLine, endLine: s.EndLine, symbols: names})
		cursor = s.EndLine + 1
	}
	if cursor <= len(lines) {
		regions = append(regions, region{startLine: cursor, endLine: len(lines)})
	}
	return regions
}

// splitRegion emits one chunk per region when it fits the budget, or
// further splits it into adjacent line slices filled greedily without
// splitting a line.
func splitRegion(lines []string, r region, maxTokens int) []rawChunk {
	body := strings.Join(lines[r.startLine-1:r.endLine], "\n")
	if EstimateTokens(body)+headerOverhead <= maxTokens {
		return []rawChunk{{startLine: r.startLine, endLine: r.endLine, symbols: r.symbols, body: body}}
	}
	return lineSlice(lines, r.startLine, r.endLine, r.symbols, maxTokens)
}

// lineSlice greedily fills adjacent line slices up to the budget without
// splitting any single line.
func lineSlice(lines []string, startLine, endLine int, symbolNames []string, maxTokens int) []rawChunk {
	budget := maxTokens - headerOverhead
	if budget < 1 {
		budget = 1
	}

	var out []rawChunk
	sliceStart := startLine
	var b strings.Builder
	flush := func(end int) {
		if b.Len() == 0 {
			return
		}
		out = append(out, rawChunk{startLine: sliceStart, endLine: end, symbols: symbolNames, body: b.String()})
		b.Reset()
	}

	for line := startLine; line <= endLine; line++ {
		candidate := lines[line-1]
		if b.Len() > 0 && EstimateTokens(applyProjected(b.String(), candidate)) > budget {
			flush(line - 1)
			sliceStart = line
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(candidate)
	}
	flush(endLine)
	return out
}

func applyProjected(existing, next string) string {
	if existing == "" {
		return next
	}
	return existing + "\n" + next
}
