// Package retriever implements the hybrid retrieval layer (§4.7): vector,
// keyword, and symbol search fused by reciprocal rank fusion, deduplicated
// by overlapping line ranges, and filtered by an optional file glob.
package retriever

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"repoknowledge/internal/embedding"
	"repoknowledge/internal/model"
	"repoknowledge/internal/store"
	"repoknowledge/internal/vectorstore"
)

// Mode selects which underlying source(s) a search draws from.
type Mode string

const (
	ModeHybrid  Mode = "hybrid"
	ModeVector  Mode = "vector"
	ModeKeyword Mode = "keyword"
	ModeSymbol  Mode = "symbol"
)

const (
	defaultLimit       = 10
	defaultTokenBudget = 4000
	rrfK               = 60
)

// Options configures one Search call. A zero Options is valid: it resolves
// to mode=hybrid, limit=10, tokenBudget=4000, no filters.
type Options struct {
	Mode           Mode
	Limit          int
	TokenBudget    int
	LanguageFilter string
	FileFilter     string
}

func (o Options) withDefaults() Options {
	if o.Mode == "" {
		o.Mode = ModeHybrid
	}
	if o.Limit <= 0 {
		o.Limit = defaultLimit
	}
	if o.TokenBudget <= 0 {
		o.TokenBudget = defaultTokenBudget
	}
	return o
}

// fetchLimit returns the per-source result count that gives fusion enough
// candidates to work with (§4.7: max(3*limit, 30)).
func fetchLimit(limit int) int {
	if n := 3 * limit; n > 30 {
		return n
	}
	return 30
}

// Retriever answers Search calls against a metadata store, vector store,
// and embedding provider.
type Retriever struct {
	Store      *store.Store
	Vectors    *vectorstore.Store
	Embeddings embedding.Provider
}

// New constructs a Retriever over already-open stores and an already
// initialized embedding provider.
func New(s *store.Store, v *vectorstore.Store, e embedding.Provider) *Retriever {
	return &Retriever{Store: s, Vectors: v, Embeddings: e}
}

// Search resolves query against opts.Mode, fuses/deduplicates/filters as
// required, and returns results ordered best-first. Token budget
// enforcement is left to the caller (internal/budget), per §4.7's design.
func (r *Retriever) Search(ctx context.Context, query string, opts Options) ([]model.SearchResult, error) {
	opts = opts.withDefaults()
	limit := fetchLimit(opts.Limit)

	var results []model.SearchResult
	var err error

	switch opts.Mode {
	case ModeVector:
		results, err = r.searchVector(ctx, query, limit, opts.LanguageFilter)
	case ModeKeyword:
		results, err = r.searchKeyword(query, limit)
	case ModeSymbol:
		results, err = r.searchSymbol(query, limit)
	default:
		results, err = r.searchHybrid(ctx, query, limit, opts.LanguageFilter)
	}
	if err != nil {
		return nil, err
	}

	results = deduplicate(results)
	results = filterByPath(results, opts.FileFilter)

	if len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results, nil
}

func (r *Retriever) searchHybrid(ctx context.Context, query string, limit int, lang string) ([]model.SearchResult, error) {
	var (
		vec, kw, sym []model.SearchResult
		vecErr, kwErr, symErr error
		wg sync.WaitGroup
	)

	wg.Add(3)
	go func() { defer wg.Done(); vec, vecErr = r.searchVector(ctx, query, limit, lang) }()
	go func() { defer wg.Done(); kw, kwErr = r.searchKeyword(query, limit) }()
	go func() { defer wg.Done(); sym, symErr = r.searchSymbol(query, limit) }()
	wg.Wait()

	if vecErr != nil {
		return nil, fmt.Errorf("retriever: vector search: %w", vecErr)
	}
	if kwErr != nil {
		return nil, fmt.Errorf("retriever: keyword search: %w", kwErr)
	}
	if symErr != nil {
		return nil, fmt.Errorf("retriever: symbol search: %w", symErr)
	}

	return fuse([]weightedList{
		{list: vec, weight: 0.5},
		{list: kw, weight: 0.3},
		{list: sym, weight: 0.2},
	}), nil
}

func (r *Retriever) searchVector(ctx context.Context, query string, limit int, lang string) ([]model.SearchResult, error) {
	qvec, err := r.Embeddings.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("retriever: embed query: %w", err)
	}

	matches, err := r.Vectors.Query(qvec, limit, sanitizeLanguage(lang))
	if err != nil {
		return nil, fmt.Errorf("retriever: vector query: %w", err)
	}

	out := make([]model.SearchResult, 0, len(matches))
	for _, m := range matches {
		score := 0.0
		if m.Distance >= 0 {
			score = 1 / (1 + m.Distance)
		}
		out = append(out, model.SearchResult{
			FilePath:  m.FilePath,
			StartLine: m.StartLine,
			EndLine:   m.EndLine,
			Content:   m.Content,
			Score:     score,
			MatchType: model.MatchVector,
			Symbols:   m.SymbolNames,
			Language:  m.Language,
		})
	}
	return out, nil
}

func (r *Retriever) searchKeyword(query string, limit int) ([]model.SearchResult, error) {
	expr := tokenizeForFTS(query)
	if expr == "" {
		return nil, nil
	}

	matches, err := r.Store.SearchChunksFTS(expr, limit)
	if err != nil {
		// FullTextSyntaxError (§7): swallowed, empty result.
		return nil, nil
	}
	if len(matches) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(matches))
	rankByID := make(map[int64]float64, len(matches))
	for i, m := range matches {
		ids[i] = m.ChunkID
		rankByID[m.ChunkID] = m.Rank
	}

	rows, err := r.Store.ChunksByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("retriever: load chunks: %w", err)
	}
	byID := make(map[int64]store.ChunkRow, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	out := make([]model.SearchResult, 0, len(matches))
	for _, m := range matches {
		row, ok := byID[m.ChunkID]
		if !ok {
			continue
		}
		rank := m.Rank
		if rank < 0 {
			rank = -rank
		}
		out = append(out, model.SearchResult{
			FilePath:  row.FilePath,
			StartLine: row.StartLine,
			EndLine:   row.EndLine,
			Content:   row.Content,
			Score:     1 / (1 + rank),
			MatchType: model.MatchKeyword,
			Symbols:   row.SymbolNames,
			Language:  row.Language,
		})
	}
	return out, nil
}

func (r *Retriever) searchSymbol(query string, limit int) ([]model.SearchResult, error) {
	expr := tokenizeForFTS(query)
	if expr == "" {
		return nil, nil
	}

	matches, err := r.Store.SearchSymbolsFTS(expr, limit)
	if err != nil {
		return nil, nil
	}
	if len(matches) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(matches))
	for i, m := range matches {
		ids[i] = m.SymbolID
	}

	syms, err := r.Store.SymbolsByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("retriever: load symbols: %w", err)
	}

	fileIDs := make([]int64, 0, len(syms))
	seen := make(map[int64]bool)
	for _, s := range syms {
		if !seen[s.FileID] {
			seen[s.FileID] = true
			fileIDs = append(fileIDs, s.FileID)
		}
	}
	files, err := r.Store.FilesByIDs(fileIDs)
	if err != nil {
		return nil, fmt.Errorf("retriever: load files: %w", err)
	}

	out := make([]model.SearchResult, 0, len(matches))
	for _, m := range matches {
		sym, ok := syms[m.SymbolID]
		if !ok {
			continue
		}
		f, ok := files[sym.FileID]
		if !ok {
			continue
		}
		score := sym.Importance + 0.1
		if score > 1.0 {
			score = 1.0
		}
		out = append(out, model.SearchResult{
			FilePath:  f.Path,
			StartLine: sym.StartLine,
			EndLine:   sym.EndLine,
			Content:   sym.Signature,
			Score:     score,
			MatchType: model.MatchSymbol,
			Symbols:   []string{sym.Name},
			Language:  f.Language,
		})
	}
	return out, nil
}

type weightedList struct {
	list   []model.SearchResult
	weight float64
}

func resultKey(r model.SearchResult) string {
	return fmt.Sprintf("%s:%d-%d", r.FilePath, r.StartLine, r.EndLine)
}

// fuse combines ranked lists by reciprocal rank fusion (k=60, §4.7, §8):
// for each source, the result at 0-based rank r contributes weight/(k+r+1)
// to its (filePath, lines) key. Duplicate keys accumulate score and keep
// the longer-content representative.
func fuse(sources []weightedList) []model.SearchResult {
	scores := make(map[string]float64)
	reps := make(map[string]model.SearchResult)

	for _, src := range sources {
		for rank, res := range src.list {
			key := resultKey(res)
			scores[key] += src.weight / float64(rrfK+rank+1)
			if existing, ok := reps[key]; !ok || len(res.Content) > len(existing.Content) {
				reps[key] = res
			}
		}
	}

	out := make([]model.SearchResult, 0, len(reps))
	for key, rep := range reps {
		rep.Score = scores[key]
		out = append(out, rep)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// deduplicate walks results in score order and drops any whose (filePath,
// line range) interval overlaps one already kept.
func deduplicate(results []model.SearchResult) []model.SearchResult {
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })

	type kept struct {
		path       string
		start, end int
	}
	var keepList []kept
	var out []model.SearchResult

	for _, r := range results {
		overlap := false
		for _, k := range keepList {
			if k.path == r.FilePath && r.StartLine <= k.end && r.EndLine >= k.start {
				overlap = true
				break
			}
		}
		if overlap {
			continue
		}
		keepList = append(keepList, kept{path: r.FilePath, start: r.StartLine, end: r.EndLine})
		out = append(out, r)
	}
	return out
}

// filterByPath drops results whose file path does not match pattern. An
// empty or invalid pattern is a no-op (§7 InvalidFileFilter).
func filterByPath(results []model.SearchResult, pattern string) []model.SearchResult {
	if pattern == "" {
		return results
	}
	re, ok := compileGlob(pattern)
	if !ok {
		return results
	}
	out := make([]model.SearchResult, 0, len(results))
	for _, r := range results {
		if re.MatchString(r.FilePath) {
			out = append(out, r)
		}
	}
	return out
}
