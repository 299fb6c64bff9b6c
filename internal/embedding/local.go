package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// LocalProvider is a deterministic, dependency-free EmbeddingProvider used
// for tests and offline indexing when no embedding endpoint is available.
// It hashes whitespace tokens into a fixed-width bucket vector and
// L2-normalizes it, so identical text always produces an identical vector
// and semantically similar text (shared tokens) produces cosine-close
// vectors — sufficient to exercise the vector store and retriever without
// a network dependency.
type LocalProvider struct {
	model      string
	dimensions int
}

// NewLocalProvider returns a LocalProvider declaring the given output
// width.
func NewLocalProvider(dimensions int) *LocalProvider {
	return &LocalProvider{model: "local-hashing-embedder", dimensions: dimensions}
}

func (p *LocalProvider) ModelID() string { return p.model }
func (p *LocalProvider) Dimensions() int { return p.dimensions }

func (p *LocalProvider) Initialize(ctx context.Context) error { return nil }
func (p *LocalProvider) Dispose() error                        { return nil }

func (p *LocalProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = p.vector(t)
	}
	return out, nil
}

func (p *LocalProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return p.vector(text), nil
}

func (p *LocalProvider) vector(text string) []float32 {
	v := make([]float64, p.dimensions)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		bucket := int(h.Sum32()) % p.dimensions
		if bucket < 0 {
			bucket += p.dimensions
		}
		v[bucket]++
	}

	var norm float64
	for _, x := range v {
		norm += x * x
	}
	norm = math.Sqrt(norm)

	out := make([]float32, p.dimensions)
	if norm == 0 {
		return out
	}
	for i, x := range v {
		out[i] = float32(x / norm)
	}
	return out
}
