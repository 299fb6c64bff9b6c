package cmd

import (
	"runtime"

	"repoknowledge/internal/index"
	"repoknowledge/internal/tui"

	"github.com/spf13/cobra"
)

var (
	flagFull        bool
	flagNoSummaries bool
	flagWorkers     int
)

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index (or re-index) a project",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveRoot(args)
		if err != nil {
			return err
		}

		proj, err := openProject(root)
		if err != nil {
			return err
		}
		defer proj.Close()

		pipeline := index.New(proj.Config, proj.Store, proj.Vectors, proj.Embeddings)

		workers := flagWorkers
		if workers <= 0 {
			workers = runtime.NumCPU()
		}
		opts := index.Options{
			Root:              root,
			Full:              flagFull,
			GenerateSummaries: !flagNoSummaries,
			Concurrency:       workers,
		}

		_, err = tui.RunIndexing(root, func(cb index.ProgressFunc) (*index.Stats, error) {
			pipeline.OnProgress = cb
			return pipeline.Run(cmd.Context(), opts)
		})
		return err
	},
}

func init() {
	indexCmd.Flags().BoolVar(&flagFull, "full", false, "clear the index and re-index every file")
	indexCmd.Flags().BoolVar(&flagNoSummaries, "no-summaries", false, "skip generating file/directory/project summaries")
	indexCmd.Flags().IntVar(&flagWorkers, "workers", 0, "parallel parse workers (default: number of CPUs)")
	rootCmd.AddCommand(indexCmd)
}
