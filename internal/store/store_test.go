package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"repoknowledge/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "metadata.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUpsertFileInsertsThenUpdates(t *testing.T) {
	s := openTestStore(t)

	id, err := s.UpsertFile(model.File{Path: "a.go", Language: "go", Hash: "h1"})
	require.NoError(t, err)
	require.NotZero(t, id)

	id2, err := s.UpsertFile(model.File{Path: "a.go", Language: "go", Hash: "h2"})
	require.NoError(t, err)
	require.Equal(t, id, id2)

	hashes, err := s.FileHashes()
	require.NoError(t, err)
	require.Equal(t, "h2", hashes["a.go"].Hash)
}

func TestInsertSymbolsAndResolveParents(t *testing.T) {
	s := openTestStore(t)
	fileID, err := s.UpsertFile(model.File{Path: "a.go"})
	require.NoError(t, err)

	syms := []model.Symbol{
		{Name: "Widget", Kind: model.KindClass, StartLine: 1, EndLine: 10, Exported: true},
		{Name: "Render", Kind: model.KindMethod, StartLine: 2, EndLine: 4, ParentName: "Widget", Exported: true},
	}
	ids, err := s.InsertSymbols(fileID, syms)
	require.NoError(t, err)
	require.Len(t, ids, 2)

	require.NoError(t, s.ResolveParents(fileID, syms, ids))

	byFile, err := s.SymbolsByFile(fileID)
	require.NoError(t, err)
	require.Len(t, byFile, 2)

	var method model.Symbol
	for _, sym := range byFile {
		if sym.Name == "Render" {
			method = sym
		}
	}
	require.NotNil(t, method.ParentID)
	require.Equal(t, ids[0], *method.ParentID)
}

func TestClearFileContentsPreservesFileRow(t *testing.T) {
	s := openTestStore(t)
	fileID, err := s.UpsertFile(model.File{Path: "a.go"})
	require.NoError(t, err)

	_, err = s.InsertSymbols(fileID, []model.Symbol{{Name: "F", Kind: model.KindFunction, StartLine: 1, EndLine: 1}})
	require.NoError(t, err)
	_, err = s.InsertChunks(fileID, []model.Chunk{{ChunkIndex: 0, Content: "func F() {}", StartLine: 1, EndLine: 1}})
	require.NoError(t, err)

	require.NoError(t, s.ClearFileContents(fileID))

	syms, err := s.SymbolsByFile(fileID)
	require.NoError(t, err)
	require.Empty(t, syms)

	_, exists, err := s.GetFileID("a.go")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestDeleteFileCascadesSymbolsAndChunks(t *testing.T) {
	s := openTestStore(t)
	fileID, err := s.UpsertFile(model.File{Path: "a.go"})
	require.NoError(t, err)
	_, err = s.InsertSymbols(fileID, []model.Symbol{{Name: "F", Kind: model.KindFunction, StartLine: 1, EndLine: 1}})
	require.NoError(t, err)

	deletedID, existed, err := s.DeleteFile("a.go")
	require.NoError(t, err)
	require.True(t, existed)
	require.Equal(t, fileID, deletedID)

	syms, err := s.SymbolsByFile(fileID)
	require.NoError(t, err)
	require.Empty(t, syms)

	_, exists, err := s.GetFileID("a.go")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestSearchChunksFTSFindsInsertedContent(t *testing.T) {
	s := openTestStore(t)
	fileID, err := s.UpsertFile(model.File{Path: "widget.go"})
	require.NoError(t, err)

	_, err = s.InsertChunks(fileID, []model.Chunk{
		{ChunkIndex: 0, Content: "func RenderWidget() { paint() }", StartLine: 1, EndLine: 3},
	})
	require.NoError(t, err)

	matches, err := s.SearchChunksFTS("RenderWidget", 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
}

func TestInsertEdgesDeduplicatesOnConflict(t *testing.T) {
	s := openTestStore(t)
	fileID, err := s.UpsertFile(model.File{Path: "a.go"})
	require.NoError(t, err)
	ids, err := s.InsertSymbols(fileID, []model.Symbol{
		{Name: "A", Kind: model.KindFunction, StartLine: 1, EndLine: 1},
		{Name: "B", Kind: model.KindFunction, StartLine: 2, EndLine: 2},
	})
	require.NoError(t, err)

	edge := model.GraphEdge{SourceSymbolID: ids[0], TargetSymbolID: ids[1], SourceFileID: fileID, TargetFileID: fileID, Type: model.EdgeCalls, Weight: 1}
	require.NoError(t, s.InsertEdges([]model.GraphEdge{edge, edge}))

	edges, err := s.EdgesForRanking()
	require.NoError(t, err)
	require.Len(t, edges, 1)
}

func TestSetStatesAndState(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.SetStates(map[string]string{"last_indexed": "now", "total_files": "3"}))

	v, ok, err := s.State("total_files")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "3", v)

	_, ok, err = s.State("missing")
	require.NoError(t, err)
	require.False(t, ok)
}
