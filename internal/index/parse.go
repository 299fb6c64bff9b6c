package index

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"repoknowledge/internal/chunker"
	"repoknowledge/internal/graph"
	"repoknowledge/internal/hasher"
	"repoknowledge/internal/langdetect"
	"repoknowledge/internal/model"
)

// parseResult is one file's phase 3-4 output, before persistence.
type parseResult struct {
	info      hasher.Discovered
	hash      string
	lang      string
	src       []byte
	extracted model.ExtractedFile
	chunks    []model.Chunk
}

// parseAndPersist runs phases 3-5: a bounded worker pool parses, extracts
// and chunks each changed file concurrently (stage A), then a single
// writer persists each file's metadata in file order (stage B), following
// the teacher's fan-out-parse/fan-in-store staged structure.
func (p *Pipeline) parseAndPersist(ctx context.Context, changed []hasher.Discovered, cache hasher.ContentCache, workers int) ([]graph.ParsedFile, error) {
	if len(changed) == 0 {
		return nil, nil
	}

	workCh := make(chan hasher.Discovered, workers)
	resultCh := make(chan parseResult, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for d := range workCh {
				resultCh <- p.parseOne(ctx, d, cache)
			}
		}()
	}

	go func() {
		for _, d := range changed {
			workCh <- d
		}
		close(workCh)
		wg.Wait()
		close(resultCh)
	}()

	results := make(map[string]parseResult, len(changed))
	count := 0
	for r := range resultCh {
		results[r.info.RelPath] = r
		count++
		p.progress("parse", count, len(changed))
	}

	parsed := make([]graph.ParsedFile, 0, len(changed))
	for i, d := range changed {
		r, ok := results[d.RelPath]
		if !ok || r.src == nil {
			continue // unreadable file: logged by parseOne and skipped
		}
		pf, err := p.persistFile(r)
		if err != nil {
			return nil, fmt.Errorf("persist %s: %w", d.RelPath, err)
		}
		parsed = append(parsed, pf)
		p.progress("persist", i+1, len(changed))
	}
	return parsed, nil
}

// parseOne reads (from cache if present), detects the language, parses and
// extracts symbols when the language is a code language, and chunks the
// result. Grammar unavailability and parse failures degrade the file to
// text-only per §7; they never abort the pipeline.
func (p *Pipeline) parseOne(ctx context.Context, d hasher.Discovered, cache hasher.ContentCache) parseResult {
	src, ok := cache[d.RelPath]
	if !ok {
		b, err := os.ReadFile(d.AbsPath)
		if err != nil {
			p.logger().Warn("read file failed, skipping", "path", d.RelPath, "error", err)
			return parseResult{info: d}
		}
		src = b
	}

	lang := langdetect.Detect(d.RelPath)
	r := parseResult{info: d, hash: hasher.HashContent(src), lang: lang, src: src}

	if langdetect.IsCode(lang) {
		if extractor, ok := p.Extractors.Get(lang); ok {
			tree, err := p.Parser.Parse(ctx, src, lang)
			switch {
			case err != nil:
				p.logger().Warn("parse failure, file remains text-searchable", "path", d.RelPath, "error", err)
			case tree == nil:
				p.logger().Debug("grammar unavailable, file remains text-searchable", "path", d.RelPath, "language", lang)
			default:
				r.extracted = extractor.Extract(src, tree)
			}
		}
	}

	r.chunks = chunker.Chunk(d.RelPath, string(src), r.extracted.Symbols, p.Config.ChunkMaxTokens)
	return r
}

// persistFile runs phase 5 for one file: upsert the file row, insert
// symbols and resolve their parent links, insert chunks, and hand back a
// graph.ParsedFile with store-assigned ids for the graph phase.
func (p *Pipeline) persistFile(r parseResult) (graph.ParsedFile, error) {
	fileID, err := p.Store.UpsertFile(model.File{
		Path:      r.info.RelPath,
		Language:  r.lang,
		SizeBytes: r.info.Size,
		Hash:      r.hash,
		IndexedAt: time.Now().Unix(),
		LineCount: countLines(r.src),
	})
	if err != nil {
		return graph.ParsedFile{}, fmt.Errorf("upsert file: %w", err)
	}

	symIDs, err := p.Store.InsertSymbols(fileID, r.extracted.Symbols)
	if err != nil {
		return graph.ParsedFile{}, fmt.Errorf("insert symbols: %w", err)
	}
	if err := p.Store.ResolveParents(fileID, r.extracted.Symbols, symIDs); err != nil {
		return graph.ParsedFile{}, fmt.Errorf("resolve parents: %w", err)
	}

	syms := make([]model.Symbol, len(r.extracted.Symbols))
	for i, s := range r.extracted.Symbols {
		s.ID = symIDs[i]
		s.FileID = fileID
		syms[i] = s
	}

	chunkIDs, err := p.Store.InsertChunks(fileID, r.chunks)
	if err != nil {
		return graph.ParsedFile{}, fmt.Errorf("insert chunks: %w", err)
	}
	chunks := make([]model.Chunk, len(r.chunks))
	for i, c := range r.chunks {
		c.ID = chunkIDs[i]
		c.FileID = fileID
		chunks[i] = c
	}

	return graph.ParsedFile{
		FileID:  fileID,
		Path:    r.info.RelPath,
		Symbols: syms,
		Imports: r.extracted.Imports,
		Chunks:  chunks,
	}, nil
}

// countLines counts a file's newlines, excluding the phantom trailing line
// implied by a final newline byte (§4.8 phase 5).
func countLines(src []byte) int {
	n := bytes.Count(src, []byte("\n"))
	if len(src) > 0 && src[len(src)-1] == '\n' {
		n--
	}
	if n < 0 {
		n = 0
	}
	return n
}
