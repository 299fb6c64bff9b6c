package chunker

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"repoknowledge/internal/model"
)

func TestChunkWholeFileFits(t *testing.T) {
	src := "export function foo() { return 1; }\n"
	chunks := Chunk("a.ts", src, []model.Symbol{{Name: "foo", Kind: model.KindFunction, StartLine: 1, EndLine: 1}}, DefaultMaxTokens)
	require.Len(t, chunks, 1)
	require.Contains(t, chunks[0].Content, "export function foo")
	require.Equal(t, []string{"foo"}, chunks[0].SymbolNames)
	require.Equal(t, 0, chunks[0].ChunkIndex)
}

func TestChunkCoversEveryLine(t *testing.T) {
	var b strings.Builder
	var syms []model.Symbol
	for i := 1; i <= 80; i++ {
		b.WriteString("func f")
		b.WriteString(strconv.Itoa(i))
		b.WriteString("() {}\n")
		syms = append(syms, model.Symbol{
			Name: "f" + strconv.Itoa(i), Kind: model.KindFunction,
			StartLine: i, EndLine: i,
		})
	}
	src := b.String()

	chunks := Chunk("big.go", src, syms, 32) // small budget forces splitting
	require.NotEmpty(t, chunks)

	covered := make(map[int]bool)
	lastIndex := -1
	for _, c := range chunks {
		require.Greater(t, c.ChunkIndex, lastIndex)
		lastIndex = c.ChunkIndex
		for l := c.StartLine; l <= c.EndLine; l++ {
			covered[l] = true
		}
		require.Contains(t, c.Content, itoaLinesHeader(c.StartLine, c.EndLine))
	}
	lines := strings.Split(strings.TrimRight(src, "\n"), "\n")
	for i := 1; i <= len(lines); i++ {
		require.Truef(t, covered[i], "line %d not covered by any chunk", i)
	}
}

func itoaLinesHeader(start, end int) string {
	return "Lines: " + strconv.Itoa(start) + "-" + strconv.Itoa(end)
}

func TestChunkFallsBackToLineSlicingWithoutSymbols(t *testing.T) {
	src := strings.Repeat("x = 1\n", 100)
	chunks := Chunk("plain.txt", src, nil, 32)
	require.Greater(t, len(chunks), 1)
	totalLines := 0
	for _, c := range chunks {
		totalLines += c.EndLine - c.StartLine + 1
	}
	require.Equal(t, 100, totalLines)
}
