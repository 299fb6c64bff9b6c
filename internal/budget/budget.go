// Package budget enforces a token budget over an ordered list of retrieval
// results (§4.7), shared identically by the CLI's result formatter and the
// MCP adaptor so the two surfaces never diverge on truncation behavior.
package budget

import (
	"math"

	"repoknowledge/internal/model"
)

const headerOverhead = 20

// EstimateTokens approximates the token count of text at roughly 3.5
// characters per token, matching the chunker's estimator (§4.3) so budget
// accounting and chunk sizing agree.
func EstimateTokens(text string) int {
	return int(math.Ceil(float64(len(text)) / 3.5))
}

// Enforce walks results in order, accumulating each result's estimated
// token cost (content plus a fixed per-result header overhead), and stops
// once the next result would exceed budget. If the remaining budget when
// that happens exceeds 100 tokens, one truncated version of the result that
// didn't fit is appended before stopping. The output is finally capped at
// limit results.
func Enforce(results []model.SearchResult, tokenBudget, limit int) []model.SearchResult {
	var out []model.SearchResult
	remaining := tokenBudget

	for _, r := range results {
		cost := EstimateTokens(r.Content) + headerOverhead
		if cost <= remaining {
			out = append(out, r)
			remaining -= cost
			continue
		}
		if remaining > 100 {
			truncated := r
			maxChars := 3 * remaining
			if maxChars < len(truncated.Content) {
				truncated.Content = truncated.Content[:maxChars] + "\n// ... (truncated)"
			}
			out = append(out, truncated)
		}
		break
	}

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
