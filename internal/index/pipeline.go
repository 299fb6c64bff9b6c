// Package index orchestrates the indexing pipeline (§4.8): discover,
// diff, parse/extract, chunk, persist, embed, store vectors, build graph,
// rank, summarize, and record state. Phases run strictly in sequence;
// within a phase, work fans out over a bounded worker pool following the
// teacher's runPipeline staged-channel structure, generalized here from a
// fixed 5-stage byte-chunker pipeline to this pipeline's 11 phases.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"repoknowledge/internal/config"
	"repoknowledge/internal/embedding"
	"repoknowledge/internal/hasher"
	"repoknowledge/internal/parser"
	"repoknowledge/internal/store"
	"repoknowledge/internal/symbols"
	"repoknowledge/internal/vectorstore"
)

// ProgressFunc is called as each phase makes progress, consumed by the
// CLI's Bubble Tea progress display.
type ProgressFunc func(phase string, current, total int)

// Options configures one Run.
type Options struct {
	Root              string
	Full              bool
	GenerateSummaries bool
	Concurrency       int
}

// Stats reports what one Run did.
type Stats struct {
	FilesTotal     int
	FilesAdded     int
	FilesModified  int
	FilesUnchanged int
	FilesRemoved   int
	SymbolsTotal   int
	ChunksTotal    int
	EdgesTotal     int
}

// Pipeline orchestrates one project's indexing runs against already-open
// stores and an embedding provider.
type Pipeline struct {
	Store      *store.Store
	Vectors    *vectorstore.Store
	Embeddings embedding.Provider
	Config     config.Config
	Parser     *parser.Parser
	Extractors *symbols.Registry
	OnProgress ProgressFunc
	Logger     *slog.Logger
}

// New constructs a Pipeline with the default grammar registry and
// extractor set wired, matching DefaultGrammarRegistry/symbols.NewRegistry.
func New(cfg config.Config, st *store.Store, vs *vectorstore.Store, emb embedding.Provider) *Pipeline {
	return &Pipeline{
		Store:      st,
		Vectors:    vs,
		Embeddings: emb,
		Config:     cfg,
		Parser:     parser.New(parser.DefaultGrammarRegistry()),
		Extractors: symbols.NewRegistry(),
		Logger:     slog.Default(),
	}
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

func (p *Pipeline) progress(phase string, current, total int) {
	if p.OnProgress != nil {
		p.OnProgress(phase, current, total)
	}
}

// Run executes all 11 phases against opts.Root.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Stats, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.NumCPU()
	}
	stats := &Stats{}

	// Phase 6 requires the embedding provider ready before any batch is
	// sent; initializing it up front also surfaces a DimensionMismatch
	// before the (potentially expensive) parse phases run.
	if err := p.Embeddings.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("index: initialize embedding provider: %w", err)
	}

	// Phase 1: Discover.
	discovered, err := p.discover(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("index: discover: %w", err)
	}
	stats.FilesTotal = len(discovered)
	p.progress("discover", len(discovered), len(discovered))

	// Phase 2: Diff.
	diff, cache, err := p.diff(opts, discovered)
	if err != nil {
		return nil, fmt.Errorf("index: diff: %w", err)
	}
	stats.FilesAdded = len(diff.Added)
	stats.FilesModified = len(diff.Modified)
	stats.FilesUnchanged = len(diff.Unchanged)
	stats.FilesRemoved = len(diff.Removed)

	if err := p.applyRemovals(diff.Removed); err != nil {
		return nil, fmt.Errorf("index: apply removals: %w", err)
	}
	if err := p.clearModified(diff.Modified); err != nil {
		return nil, fmt.Errorf("index: clear modified: %w", err)
	}

	changed := append(append([]hasher.Discovered{}, diff.Added...), diff.Modified...)

	// Phases 3-5: Parse, extract, chunk, persist metadata.
	parsed, err := p.parseAndPersist(ctx, changed, cache, opts.Concurrency)
	if err != nil {
		return nil, fmt.Errorf("index: parse and persist: %w", err)
	}
	for _, pf := range parsed {
		stats.SymbolsTotal += len(pf.Symbols)
		stats.ChunksTotal += len(pf.Chunks)
	}

	// Phases 6-7: Embed, store vectors.
	if err := p.embedAndStore(ctx, parsed, opts.Full); err != nil {
		return nil, fmt.Errorf("index: embed and store: %w", err)
	}

	// Phase 8: Build graph.
	edgeCount, err := p.buildGraph(parsed)
	if err != nil {
		return nil, fmt.Errorf("index: build graph: %w", err)
	}
	stats.EdgesTotal = edgeCount

	// Phase 9: Rank.
	if err := p.rank(); err != nil {
		return nil, fmt.Errorf("index: rank: %w", err)
	}

	// Phase 10: Summaries.
	if opts.GenerateSummaries {
		if err := p.summarize(); err != nil {
			return nil, fmt.Errorf("index: summarize: %w", err)
		}
	}

	// Phase 11: State.
	if err := p.recordState(opts, stats); err != nil {
		return nil, fmt.Errorf("index: record state: %w", err)
	}

	return stats, nil
}

func (p *Pipeline) recordState(opts Options, stats *Stats) error {
	now := time.Now().UTC().Format(time.RFC3339)
	kvs := map[string]string{
		"last_indexed":    now,
		"embedding_model": p.Embeddings.ModelID(),
		"total_files":     fmt.Sprintf("%d", stats.FilesTotal),
		"total_chunks":    fmt.Sprintf("%d", stats.ChunksTotal),
	}
	if opts.Full {
		kvs["last_full_index"] = now
	}
	return p.Store.SetStates(kvs)
}
