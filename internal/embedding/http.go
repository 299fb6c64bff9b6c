package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// HTTPProvider calls an Ollama-compatible /api/embed endpoint, following
// the teacher's internal/embedder/ollama.go client shape: a batched
// request/response pair over net/http + encoding/json.
type HTTPProvider struct {
	baseURL    string
	model      string
	dimensions int
	client     *http.Client

	once    sync.Once
	initErr error
}

// NewHTTPProvider creates a provider targeting baseURL's /api/embed
// endpoint for model, declaring dimensions as its expected output width.
func NewHTTPProvider(baseURL, model string, dimensions int) *HTTPProvider {
	return &HTTPProvider{
		baseURL:    baseURL,
		model:      model,
		dimensions: dimensions,
		client:     &http.Client{Timeout: 120 * time.Second},
	}
}

func (p *HTTPProvider) ModelID() string { return p.model }
func (p *HTTPProvider) Dimensions() int { return p.dimensions }

// Initialize probes the endpoint once with a single short string and
// verifies the returned vector width matches Dimensions(). Concurrent
// callers share one initialization via sync.Once, per the lazy-singleton
// design note.
func (p *HTTPProvider) Initialize(ctx context.Context) error {
	p.once.Do(func() {
		vecs, err := p.embed(ctx, []string{"probe"})
		if err != nil {
			p.initErr = fmt.Errorf("embedding: initialize probe: %w", err)
			return
		}
		if len(vecs) != 1 || len(vecs[0]) != p.dimensions {
			p.initErr = fmt.Errorf("embedding: dimension mismatch: model %q declared %d, probe returned %d",
				p.model, p.dimensions, len(vecs[0]))
		}
	})
	return p.initErr
}

func (p *HTTPProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return p.embed(ctx, texts)
}

func (p *HTTPProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := p.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (p *HTTPProvider) Dispose() error { return nil }

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func (p *HTTPProvider) embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(embedRequest{Model: p.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("embedding: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("embedding: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embedding: endpoint returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("embedding: decode response: %w", err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding: expected %d embeddings, got %d", len(texts), len(result.Embeddings))
	}
	return result.Embeddings, nil
}
