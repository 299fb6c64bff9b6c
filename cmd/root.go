// Package cmd implements the repoknowledge CLI: init, index, search,
// summary and mcp, following the teacher's cobra root/persistent-flag
// structure.
package cmd

import (
	"github.com/spf13/cobra"
)

var (
	flagOllamaURL    string
	flagEmbedModel   string
	flagLocalEmbeds  bool
)

var rootCmd = &cobra.Command{
	Use:   "repoknowledge",
	Short: "Index a codebase and retrieve relevant code by hybrid search",
}

// Execute runs the root command, returning any error for main to report.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagOllamaURL, "ollama", "", "ollama-compatible embedding endpoint (overrides project config)")
	rootCmd.PersistentFlags().StringVar(&flagEmbedModel, "embedding-model", "", "embedding model name (overrides project config)")
	rootCmd.PersistentFlags().BoolVar(&flagLocalEmbeds, "local-embeddings", false, "use the deterministic offline embedder instead of an HTTP endpoint")
}
