package index

import (
	"fmt"

	"repoknowledge/internal/graph"
	"repoknowledge/internal/ranker"
)

// buildGraph runs phase 8: resolve parsed's import/call targets against the
// full metadata store and persist the resulting file dependencies and
// symbol graph edges. It returns the number of edges inserted for Stats.
func (p *Pipeline) buildGraph(parsed []graph.ParsedFile) (int, error) {
	if len(parsed) == 0 {
		return 0, nil
	}

	files, err := p.Store.ListFiles()
	if err != nil {
		return 0, fmt.Errorf("list files: %w", err)
	}
	pathIndex := make(map[string]int64, len(files))
	for _, f := range files {
		pathIndex[f.Path] = f.ID
	}

	allSymbols, err := p.Store.AllSymbolsIndex()
	if err != nil {
		return 0, fmt.Errorf("all symbols index: %w", err)
	}

	deps, edges := graph.Build(parsed, pathIndex, allSymbols)
	if err := p.Store.InsertFileDependencies(deps); err != nil {
		return 0, fmt.Errorf("insert file dependencies: %w", err)
	}
	if err := p.Store.InsertEdges(edges); err != nil {
		return 0, fmt.Errorf("insert graph edges: %w", err)
	}
	return len(edges), nil
}

// rank runs phase 9: PageRank over every symbol in the store (not just
// those touched this run, since an edge added by a modified file can
// change a distant symbol's score) and persists the resulting importance.
func (p *Pipeline) rank() error {
	nodeIDs, err := p.Store.SymbolsForRanking()
	if err != nil {
		return fmt.Errorf("symbols for ranking: %w", err)
	}
	if len(nodeIDs) == 0 {
		return nil
	}

	edges, err := p.Store.EdgesForRanking()
	if err != nil {
		return fmt.Errorf("edges for ranking: %w", err)
	}

	scores := ranker.Rank(nodeIDs, edges)
	if err := p.Store.UpdateImportance(scores); err != nil {
		return fmt.Errorf("update importance: %w", err)
	}
	return nil
}
