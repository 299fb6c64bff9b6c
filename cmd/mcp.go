package cmd

import (
	"fmt"

	"repoknowledge/internal/mcpadaptor"
	"repoknowledge/internal/retriever"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp [path]",
	Short: "Start an MCP server exposing codebase search and summary tools",
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

		if err := proj.Embeddings.Initialize(cmd.Context()); err != nil {
			return fmt.Errorf("initialize embedding provider: %w", err)
		}

		r := retriever.New(proj.Store, proj.Vectors, proj.Embeddings)

		s := mcpserver.NewMCPServer("repoknowledge", "1.0.0", mcpserver.WithToolCapabilities(false))
		mcpadaptor.Register(s, r, proj.Store)

		return mcpserver.ServeStdio(s)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
