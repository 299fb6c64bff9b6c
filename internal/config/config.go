// Package config loads and persists the project configuration that drives
// indexing and retrieval.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	koanfjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// CurrentVersion is the on-disk config schema version written by Save.
	CurrentVersion = 1

	// DefaultEmbeddingModel is used when a project has not pinned one.
	DefaultEmbeddingModel = "Xenova/all-MiniLM-L6-v2"
	// DefaultEmbeddingDimensions is the vector width for DefaultEmbeddingModel.
	DefaultEmbeddingDimensions = 384
	// DefaultChunkMaxTokens bounds a single chunk's estimated token size.
	DefaultChunkMaxTokens = 512
	// DefaultOllamaURL is the Ollama-compatible embedding endpoint used
	// unless UseLocalEmbeddings is set.
	DefaultOllamaURL = "http://localhost:11434"

	fileName = "config.json"
)

// DefaultIgnorePatterns mirrors the walker's built-in ignore set so that a
// freshly written config.json is self-documenting.
var DefaultIgnorePatterns = []string{
	".git", ".svn", ".hg", "node_modules", "vendor",
	"__pycache__", ".idea", ".vscode", "dist", "build",
}

// Config is the persisted project configuration.
type Config struct {
	ProjectRoot         string   `koanf:"projectRoot" json:"projectRoot"`
	DataDir             string   `koanf:"dataDir" json:"dataDir"`
	EmbeddingModel      string   `koanf:"embeddingModel" json:"embeddingModel"`
	EmbeddingDimensions int      `koanf:"embeddingDimensions" json:"embeddingDimensions"`
	ChunkMaxTokens      int      `koanf:"chunkMaxTokens" json:"chunkMaxTokens"`
	IgnorePatterns      []string `koanf:"ignorePatterns" json:"ignorePatterns"`
	OllamaURL           string   `koanf:"ollamaURL" json:"ollamaURL"`
	UseLocalEmbeddings  bool     `koanf:"useLocalEmbeddings" json:"useLocalEmbeddings"`
	Version             int      `koanf:"version" json:"version"`
}

// Path returns the on-disk location of config.json under dataDir.
func Path(dataDir string) string {
	return filepath.Join(dataDir, fileName)
}

// MetadataDBPath returns the metadata store location under dataDir.
func (c Config) MetadataDBPath() string {
	return filepath.Join(c.DataDir, "metadata.db")
}

// VectorDBPath returns the vector store location under dataDir.
func (c Config) VectorDBPath() string {
	return filepath.Join(c.DataDir, "vectors.db")
}

// Default builds a Config for a fresh project rooted at projectRoot.
func Default(projectRoot string) Config {
	dataDir := filepath.Join(projectRoot, ".repo-knowledge")
	return Config{
		ProjectRoot:         projectRoot,
		DataDir:             dataDir,
		EmbeddingModel:      DefaultEmbeddingModel,
		EmbeddingDimensions: DefaultEmbeddingDimensions,
		ChunkMaxTokens:      DefaultChunkMaxTokens,
		IgnorePatterns:      append([]string(nil), DefaultIgnorePatterns...),
		OllamaURL:           DefaultOllamaURL,
		Version:             CurrentVersion,
	}
}

// Load reads config.json from dataDir, layering it over the package
// defaults via koanf so that a config file only needs to name the fields it
// overrides.
func Load(dataDir string) (Config, error) {
	path := Path(dataDir)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Config{}, fmt.Errorf("config: not initialized at %s", path)
	}

	k := koanf.New(".")

	defaults := Default(filepath.Dir(dataDir))
	defaultsMap := map[string]interface{}{
		"dataDir":             dataDir,
		"embeddingModel":      defaults.EmbeddingModel,
		"embeddingDimensions": defaults.EmbeddingDimensions,
		"chunkMaxTokens":      defaults.ChunkMaxTokens,
		"ignorePatterns":      defaults.IgnorePatterns,
		"ollamaURL":           defaults.OllamaURL,
		"useLocalEmbeddings":  defaults.UseLocalEmbeddings,
		"version":             defaults.Version,
	}
	if err := k.Load(confmap.Provider(defaultsMap, "."), nil); err != nil {
		return Config{}, fmt.Errorf("config: load defaults: %w", err)
	}

	if err := k.Load(file.Provider(path), koanfjson.Parser()); err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", path, err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to dataDir/config.json, creating dataDir if necessary.
func Save(cfg Config) error {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("config: create data dir: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(Path(cfg.DataDir), data, 0o644); err != nil {
		return fmt.Errorf("config: write: %w", err)
	}
	return nil
}

// Exists reports whether a project has already been initialized at dataDir.
func Exists(dataDir string) bool {
	_, err := os.Stat(Path(dataDir))
	return err == nil
}
