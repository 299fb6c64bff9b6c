package cmd

import (
	"fmt"

	"repoknowledge/internal/model"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

var (
	flagScope   string
	flagScopeID string
)

var summaryCmd = &cobra.Command{
	Use:   "summary [path]",
	Short: "Render a stored file, directory, or project summary",
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

		scope := model.SummaryScope(flagScope)
		scopeID := flagScopeID
		if scope == model.ScopeProject {
			scopeID = "project"
		}
		if scopeID == "" {
			return fmt.Errorf("--id is required for scope %q", scope)
		}

		sum, ok, err := proj.Store.Summary(scope, scopeID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no %s summary for %q; run 'repoknowledge index' first", scope, scopeID)
		}

		rendered, err := renderMarkdown(sum.Content)
		if err != nil {
			return err
		}
		fmt.Print(rendered)
		return nil
	},
}

func renderMarkdown(content string) (string, error) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return "", err
	}
	return r.Render(content)
}

func init() {
	summaryCmd.Flags().StringVar(&flagScope, "scope", "project", "summary scope: file, directory, or project")
	summaryCmd.Flags().StringVar(&flagScopeID, "id", "", "scope id: file or directory path (ignored for scope=project)")
	rootCmd.AddCommand(summaryCmd)
}
