package summary

import (
	"testing"

	"github.com/stretchr/testify/require"

	"repoknowledge/internal/model"
)

func TestTopExportedSortsByImportanceAndLimits(t *testing.T) {
	syms := []model.Symbol{
		{Name: "a", Exported: true, Importance: 0.2},
		{Name: "b", Exported: false, Importance: 0.9},
		{Name: "c", Exported: true, Importance: 0.8},
		{Name: "d", Exported: true, Importance: 0.5},
	}
	top := topExported(syms, 2)
	require.Len(t, top, 2)
	require.Equal(t, "c", top[0].Name)
	require.Equal(t, "d", top[1].Name)
}

func TestLeadingDocCommentPicksEarliestLine(t *testing.T) {
	syms := []model.Symbol{
		{Name: "late", StartLine: 40, Docstring: "late doc"},
		{Name: "early", StartLine: 3, Docstring: "early doc"},
	}
	require.Equal(t, "early doc", leadingDocComment(syms))
}

func TestBuildFileSummaryIncludesTopSymbols(t *testing.T) {
	f := model.File{Path: "a.go", Language: "go"}
	syms := []model.Symbol{
		{Name: "Foo", Kind: model.KindFunction, Exported: true, Importance: 1.0, Docstring: "Foo does things"},
	}
	got := buildFileSummary(f, syms)
	require.Contains(t, got, "a.go (go)")
	require.Contains(t, got, "Foo")
	require.Contains(t, got, "Foo does things")
}
