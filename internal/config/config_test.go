package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveThenLoadRoundTripsOverrides(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), ".repo-knowledge")

	cfg := Default(filepath.Dir(dataDir))
	cfg.DataDir = dataDir
	cfg.EmbeddingModel = "custom-model"
	cfg.ChunkMaxTokens = 256
	require.NoError(t, Save(cfg))

	loaded, err := Load(dataDir)
	require.NoError(t, err)
	require.Equal(t, "custom-model", loaded.EmbeddingModel)
	require.Equal(t, 256, loaded.ChunkMaxTokens)
	require.Equal(t, DefaultEmbeddingDimensions, loaded.EmbeddingDimensions)
}

func TestLoadDefaultsUnsetFieldsWhenConfigFileOmitsThem(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), ".repo-knowledge")
	body, err := json.Marshal(map[string]string{
		"projectRoot": filepath.Dir(dataDir),
		"dataDir":     dataDir,
	})
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	require.NoError(t, os.WriteFile(Path(dataDir), body, 0o644))

	loaded, err := Load(dataDir)
	require.NoError(t, err)
	require.Equal(t, DefaultChunkMaxTokens, loaded.ChunkMaxTokens)
	require.ElementsMatch(t, DefaultIgnorePatterns, loaded.IgnorePatterns)
}

func TestLoadErrorsWhenNotInitialized(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestExists(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), ".repo-knowledge")
	require.False(t, Exists(dataDir))

	cfg := Default(filepath.Dir(dataDir))
	cfg.DataDir = dataDir
	require.NoError(t, Save(cfg))
	require.True(t, Exists(dataDir))
}

func TestMetadataAndVectorDBPaths(t *testing.T) {
	cfg := Default("/proj")
	require.Equal(t, filepath.Join(cfg.DataDir, "metadata.db"), cfg.MetadataDBPath())
	require.Equal(t, filepath.Join(cfg.DataDir, "vectors.db"), cfg.VectorDBPath())
}
