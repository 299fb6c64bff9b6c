package cmd

import (
	"fmt"
	"path/filepath"

	"repoknowledge/internal/config"
	"repoknowledge/internal/embedding"
	"repoknowledge/internal/store"
	"repoknowledge/internal/vectorstore"
)

func resolveRoot(args []string) (string, error) {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}
	return filepath.Abs(path)
}

func dataDirFor(root string) string {
	return filepath.Join(root, ".repo-knowledge")
}

// loadConfig loads the project config at root, layering any persistent
// flag overrides the user passed on top of the saved values.
func loadConfig(root string) (config.Config, error) {
	dataDir := dataDirFor(root)
	if !config.Exists(dataDir) {
		return config.Config{}, fmt.Errorf("project not initialized at %s: run 'repoknowledge init %s' first", root, root)
	}
	cfg, err := config.Load(dataDir)
	if err != nil {
		return config.Config{}, err
	}
	if flagOllamaURL != "" {
		cfg.OllamaURL = flagOllamaURL
	}
	if flagEmbedModel != "" {
		cfg.EmbeddingModel = flagEmbedModel
	}
	if flagLocalEmbeds {
		cfg.UseLocalEmbeddings = true
	}
	return cfg, nil
}

func buildEmbeddingProvider(cfg config.Config) embedding.Provider {
	if cfg.UseLocalEmbeddings {
		return embedding.NewLocalProvider(cfg.EmbeddingDimensions)
	}
	return embedding.NewHTTPProvider(cfg.OllamaURL, cfg.EmbeddingModel, cfg.EmbeddingDimensions)
}

// project bundles one command invocation's open stores and embedding
// provider, following the teacher's pattern of opening the store for the
// lifetime of a single command and closing it via defer.
type project struct {
	Config     config.Config
	Store      *store.Store
	Vectors    *vectorstore.Store
	Embeddings embedding.Provider
}

// openProject loads root's config and opens both stores and the
// embedding provider it names. Callers must defer Close.
func openProject(root string) (*project, error) {
	cfg, err := loadConfig(root)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.MetadataDBPath())
	if err != nil {
		return nil, fmt.Errorf("open metadata store: %w", err)
	}

	vs, err := vectorstore.Open(cfg.VectorDBPath(), cfg.EmbeddingDimensions)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("open vector store: %w", err)
	}

	return &project{
		Config:     cfg,
		Store:      st,
		Vectors:    vs,
		Embeddings: buildEmbeddingProvider(cfg),
	}, nil
}

// Close releases the embedding provider, vector store, then metadata
// store, suppressing errors as the teacher's shutdown path does.
func (p *project) Close() {
	if p.Embeddings != nil {
		p.Embeddings.Dispose()
	}
	if p.Vectors != nil {
		p.Vectors.Close()
	}
	if p.Store != nil {
		p.Store.Close()
	}
}
