// Package ranker computes PageRank importance scores over the symbol
// call/import graph (§4.6).
package ranker

import "repoknowledge/internal/model"

const (
	damping    = 0.85
	iterations = 20
)

// Rank runs power-iteration PageRank over nodeIDs with the directed edges
// in edges (source -> target), returning a score in [0,1] per node with
// the maximum normalized to 1. Edges are treated as unweighted for ranking
// purposes: a symbol connected by both a "calls" and an "imports" edge to
// the same target contributes rank mass twice, once per edge row.
func Rank(nodeIDs []int64, edges []model.GraphEdge) map[int64]float64 {
	scores := Unnormalized(nodeIDs, edges)
	n := len(nodeIDs)

	max := 0.0
	for _, s := range scores {
		if s > max {
			max = s
		}
	}
	out := make(map[int64]float64, n)
	for i, id := range nodeIDs {
		if max > 0 {
			out[id] = scores[i] / max
		} else {
			out[id] = 0
		}
	}
	return out
}

// Unnormalized runs the same power iteration as Rank but returns the raw
// per-node scores (indexed positionally with nodeIDs) before max
// normalization, so callers can verify the dangling-mass conservation
// property directly: summed over all nodes, an unnormalized score vector
// totals ~1 after every iteration.
func Unnormalized(nodeIDs []int64, edges []model.GraphEdge) []float64 {
	n := len(nodeIDs)
	if n == 0 {
		return nil
	}

	index := make(map[int64]int, n)
	for i, id := range nodeIDs {
		index[id] = i
	}

	outDegree := make([]int, n)
	inEdges := make([][]int, n) // incoming source indices

	for _, e := range edges {
		si, ok := index[e.SourceSymbolID]
		if !ok {
			continue
		}
		ti, ok := index[e.TargetSymbolID]
		if !ok {
			continue
		}
		outDegree[si]++
		inEdges[ti] = append(inEdges[ti], si)
	}

	scores := make([]float64, n)
	initial := 1.0 / float64(n)
	for i := range scores {
		scores[i] = initial
	}

	for iter := 0; iter < iterations; iter++ {
		var danglingMass float64
		for i, deg := range outDegree {
			if deg == 0 {
				danglingMass += scores[i]
			}
		}
		danglingShare := danglingMass / float64(n)

		next := make([]float64, n)
		for i := range next {
			var incoming float64
			for _, src := range inEdges[i] {
				incoming += scores[src] / float64(outDegree[src])
			}
			next[i] = (1-damping)/float64(n) + damping*(incoming+danglingShare)
		}
		scores = next
	}
	return scores
}
