package retriever

import (
	"testing"

	"github.com/stretchr/testify/require"

	"repoknowledge/internal/model"
)

func TestTokenizeForFTS(t *testing.T) {
	require.Equal(t, "foo OR bar", tokenizeForFTS(`foo() "bar"`))
	require.Equal(t, "", tokenizeForFTS(`a ( ) !`))
}

func TestSanitizeLanguage(t *testing.T) {
	require.Equal(t, "'go'", sanitizeLanguage("go"))
	require.Equal(t, "'goDROPTABLEfiles'", sanitizeLanguage("go; DROP TABLE files"))
	require.Equal(t, "", sanitizeLanguage(""))
}

func TestCompileGlob(t *testing.T) {
	re, ok := compileGlob("internal/**/test*.go")
	require.True(t, ok)
	require.True(t, re.MatchString("internal/a/b/test_foo.go"))
	require.False(t, re.MatchString("internal/a/b/other.go"))
}

func TestFuseMatchesLiteralFormula(t *testing.T) {
	vec := []model.SearchResult{{FilePath: "d.go", StartLine: 1, EndLine: 2}}
	kw := []model.SearchResult{
		{FilePath: "x.go", StartLine: 1, EndLine: 2},
		{FilePath: "y.go", StartLine: 1, EndLine: 2},
		{FilePath: "d.go", StartLine: 1, EndLine: 2},
	}

	out := fuse([]weightedList{
		{list: vec, weight: 0.5},
		{list: kw, weight: 0.3},
	})

	var got float64
	for _, r := range out {
		if r.FilePath == "d.go" {
			got = r.Score
		}
	}
	want := 0.5/61 + 0.3/63
	require.InDelta(t, want, got, 1e-9)
}

func TestDeduplicateDropsOverlap(t *testing.T) {
	results := []model.SearchResult{
		{FilePath: "a.go", StartLine: 1, EndLine: 10, Score: 0.9},
		{FilePath: "a.go", StartLine: 5, EndLine: 8, Score: 0.8},
		{FilePath: "b.go", StartLine: 1, EndLine: 5, Score: 0.7},
	}
	out := deduplicate(results)
	require.Len(t, out, 2)
	require.Equal(t, "a.go", out[0].FilePath)
	require.Equal(t, "b.go", out[1].FilePath)
}

func TestFilterByPathTreatsBracketAsLiteral(t *testing.T) {
	results := []model.SearchResult{{FilePath: "a.go"}, {FilePath: "["}}
	out := filterByPath(results, "[")
	require.Equal(t, []model.SearchResult{{FilePath: "["}}, out)
}
