package ranker

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"repoknowledge/internal/model"
)

func TestRankMaxIsOne(t *testing.T) {
	nodes := []int64{1, 2, 3}
	edges := []model.GraphEdge{
		{SourceSymbolID: 1, TargetSymbolID: 2, Type: model.EdgeCalls},
		{SourceSymbolID: 2, TargetSymbolID: 3, Type: model.EdgeCalls},
		{SourceSymbolID: 3, TargetSymbolID: 2, Type: model.EdgeCalls},
	}
	scores := Rank(nodes, edges)

	max := 0.0
	for _, s := range scores {
		require.GreaterOrEqual(t, s, 0.0)
		require.LessOrEqual(t, s, 1.0)
		if s > max {
			max = s
		}
	}
	require.InDelta(t, 1.0, max, 1e-9)
}

func TestRankFavorsMoreLinkedSymbol(t *testing.T) {
	nodes := []int64{1, 2, 3, 4}
	edges := []model.GraphEdge{
		{SourceSymbolID: 1, TargetSymbolID: 2},
		{SourceSymbolID: 3, TargetSymbolID: 2},
		{SourceSymbolID: 4, TargetSymbolID: 2},
	}
	scores := Rank(nodes, edges)
	require.Greater(t, scores[2], scores[1])
	require.Greater(t, scores[2], scores[3])
}

func TestUnnormalizedConservesRankMassWithDanglingNodes(t *testing.T) {
	nodes := []int64{1, 2, 3}
	edges := []model.GraphEdge{
		{SourceSymbolID: 1, TargetSymbolID: 2},
		// node 3 has zero out-degree: a dangling node whose mass must be
		// redistributed, not lost.
	}
	scores := Unnormalized(nodes, edges)

	var sum float64
	for _, s := range scores {
		sum += s
	}
	require.True(t, math.Abs(sum-1.0) < 1e-9, "unnormalized scores should sum to ~1, got %v", sum)
}

func TestRankEmptyGraph(t *testing.T) {
	require.Empty(t, Rank(nil, nil))
}
