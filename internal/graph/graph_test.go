package graph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"repoknowledge/internal/model"
	"repoknowledge/internal/store"
)

func TestResolveLocalImportTriesExtensionCandidates(t *testing.T) {
	pathIndex := map[string]int64{"src/utils.ts": 7}

	id, ok := resolveLocalImport("./utils", "src", pathIndex)
	require.True(t, ok)
	require.Equal(t, int64(7), id)
}

func TestResolveLocalImportRejectsBarePackageNames(t *testing.T) {
	_, ok := resolveLocalImport("react", "src", map[string]int64{"react": 1})
	require.False(t, ok)
}

func TestBuildAttributesImportEdgeToReferencingSymbol(t *testing.T) {
	pathIndex := map[string]int64{
		"a.ts": 1,
		"b.ts": 2,
	}
	allSymbols := map[string][]store.SymbolRef{
		"helper": {{ID: 20, FileID: 2, Kind: model.KindFunction}},
	}

	batch := []ParsedFile{
		{
			FileID: 1,
			Path:   "a.ts",
			Symbols: []model.Symbol{
				{ID: 10, FileID: 1, Name: "main", Kind: model.KindFunction, StartLine: 1, EndLine: 3, Body: "function main() { helper(); }"},
			},
			Imports: []model.Import{{Source: "./b", Names: []string{"helper"}}},
		},
	}

	deps, edges := Build(batch, pathIndex, allSymbols)

	require.Len(t, deps, 1)
	require.Equal(t, int64(1), deps[0].SourceFileID)
	require.Equal(t, int64(2), deps[0].TargetFileID)

	require.Len(t, edges, 1)
	require.Equal(t, int64(10), edges[0].SourceSymbolID)
	require.Equal(t, int64(20), edges[0].TargetSymbolID)
	require.Equal(t, model.EdgeImports, edges[0].Type)
}

func TestBuildAttributesCallEdgeFromOverlappingChunk(t *testing.T) {
	pathIndex := map[string]int64{"a.go": 1, "b.go": 2}
	allSymbols := map[string][]store.SymbolRef{
		"Helper": {{ID: 20, FileID: 2, Kind: model.KindFunction}},
	}

	batch := []ParsedFile{
		{
			FileID: 1,
			Path:   "a.go",
			Symbols: []model.Symbol{
				{ID: 10, FileID: 1, Name: "Main", Kind: model.KindFunction, StartLine: 1, EndLine: 3},
			},
			Chunks: []model.Chunk{
				{StartLine: 1, EndLine: 3, Content: "func Main() { Helper() }"},
			},
		},
	}

	_, edges := Build(batch, pathIndex, allSymbols)

	require.Len(t, edges, 1)
	require.Equal(t, int64(10), edges[0].SourceSymbolID)
	require.Equal(t, int64(20), edges[0].TargetSymbolID)
	require.Equal(t, model.EdgeCalls, edges[0].Type)
}

func TestBuildSkipsIntraFileCalls(t *testing.T) {
	pathIndex := map[string]int64{"a.go": 1}
	allSymbols := map[string][]store.SymbolRef{
		"Helper": {{ID: 20, FileID: 1, Kind: model.KindFunction}},
	}

	batch := []ParsedFile{
		{
			FileID: 1,
			Path:   "a.go",
			Symbols: []model.Symbol{
				{ID: 10, FileID: 1, Name: "Main", Kind: model.KindFunction, StartLine: 1, EndLine: 3},
				{ID: 20, FileID: 1, Name: "Helper", Kind: model.KindFunction, StartLine: 5, EndLine: 6},
			},
			Chunks: []model.Chunk{
				{StartLine: 1, EndLine: 3, Content: "func Main() { Helper() }"},
			},
		},
	}

	_, edges := Build(batch, pathIndex, allSymbols)
	require.Empty(t, edges)
}

func TestStripHeaderRemovesSyntheticFileLine(t *testing.T) {
	content := "// File: a.go\nfunc F() {}"
	require.Equal(t, "func F() {}", stripHeader(content))
}

func TestStripHeaderLeavesOrdinaryContentUntouched(t *testing.T) {
	content := "func F() {}"
	require.Equal(t, content, stripHeader(content))
}
