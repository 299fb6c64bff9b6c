package budget

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"repoknowledge/internal/model"
)

func TestEnforceRetainsWithinBudget(t *testing.T) {
	results := make([]model.SearchResult, 10)
	for i := range results {
		results[i] = model.SearchResult{Content: strings.Repeat("x", 2800)} // ~800 tokens
	}

	out := Enforce(results, 2000, 10)

	var total int
	for _, r := range out {
		total += EstimateTokens(r.Content) + 20
	}
	require.LessOrEqual(t, total, 2000)
	require.LessOrEqual(t, len(out), 3)
}

func TestEnforceCapsAtLimit(t *testing.T) {
	results := make([]model.SearchResult, 5)
	for i := range results {
		results[i] = model.SearchResult{Content: "short"}
	}
	out := Enforce(results, 1000000, 2)
	require.Len(t, out, 2)
}
