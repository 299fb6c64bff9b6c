package cmd

import (
	"fmt"

	"repoknowledge/internal/config"

	"github.com/spf13/cobra"
)

var flagChunkMaxTokens int

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Initialize a project's index configuration",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveRoot(args)
		if err != nil {
			return err
		}

		dataDir := dataDirFor(root)
		if config.Exists(dataDir) {
			return fmt.Errorf("project already initialized at %s", dataDir)
		}

		cfg := config.Default(root)
		if flagEmbedModel != "" {
			cfg.EmbeddingModel = flagEmbedModel
		}
		if flagOllamaURL != "" {
			cfg.OllamaURL = flagOllamaURL
		}
		if flagLocalEmbeds {
			cfg.UseLocalEmbeddings = true
		}
		if flagChunkMaxTokens > 0 {
			cfg.ChunkMaxTokens = flagChunkMaxTokens
		}

		if err := config.Save(cfg); err != nil {
			return err
		}
		fmt.Printf("initialized repoknowledge project at %s\n", dataDir)
		return nil
	},
}

func init() {
	initCmd.Flags().IntVar(&flagChunkMaxTokens, "chunk-max-tokens", 0, "override the default chunk token budget")
	rootCmd.AddCommand(initCmd)
}
