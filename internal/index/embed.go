package index

import (
	"context"
	"fmt"

	"repoknowledge/internal/graph"
	"repoknowledge/internal/langdetect"
	"repoknowledge/internal/model"
)

const embedBatchSize = 16

// embedAndStore runs phases 6-7: embed every new/modified chunk in batches
// of 16, validating each batch's output dimension against the declared
// width (DimensionMismatch is fatal), then append the resulting vectors to
// the vector store. A full reindex already recreated the vector table
// during the diff phase, so this function always appends.
func (p *Pipeline) embedAndStore(ctx context.Context, parsed []graph.ParsedFile, full bool) error {
	var rows []model.ChunkEmbedding
	var texts []string
	for _, pf := range parsed {
		lang := langdetect.Detect(pf.Path)
		for _, c := range pf.Chunks {
			rows = append(rows, model.ChunkEmbedding{
				ChunkID:     c.ID,
				FileID:      pf.FileID,
				FilePath:    pf.Path,
				Language:    lang,
				StartLine:   c.StartLine,
				EndLine:     c.EndLine,
				SymbolNames: c.SymbolNames,
				Content:     c.Content,
			})
			texts = append(texts, c.Content)
		}
	}
	if len(rows) == 0 {
		return nil
	}

	dims := p.Embeddings.Dimensions()
	for i := 0; i < len(texts); i += embedBatchSize {
		end := i + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		vecs, err := p.Embeddings.Embed(ctx, texts[i:end])
		if err != nil {
			return fmt.Errorf("embed batch [%d:%d): %w", i, end, err)
		}
		if len(vecs) != end-i {
			return fmt.Errorf("embed batch [%d:%d): expected %d vectors, got %d", i, end, end-i, len(vecs))
		}
		for j, v := range vecs {
			if len(v) != dims {
				return fmt.Errorf("embed batch [%d:%d): dimension mismatch: declared %d, got %d", i, end, dims, len(v))
			}
			rows[i+j].Vector = v
		}
		p.progress("embed", end, len(texts))
	}

	if err := p.Vectors.Insert(rows); err != nil {
		return fmt.Errorf("store vectors: %w", err)
	}
	return nil
}
