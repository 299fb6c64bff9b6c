package cmd

import (
	"fmt"
	"strings"

	"repoknowledge/internal/budget"
	"repoknowledge/internal/model"
	"repoknowledge/internal/retriever"

	"github.com/spf13/cobra"
)

var (
	flagMode        string
	flagLimit       int
	flagTokenBudget int
	flagLanguage    string
	flagFileFilter  string
)

var searchCmd = &cobra.Command{
	Use:   "search <query> [path]",
	Short: "Search an indexed project with hybrid vector/keyword/symbol retrieval",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := args[0]
		root, err := resolveRoot(args[1:])
		if err != nil {
			return err
		}

		proj, err := openProject(root)
		if err != nil {
			return err
		}
		defer proj.Close()

		ctx := cmd.Context()
		if err := proj.Embeddings.Initialize(ctx); err != nil {
			return fmt.Errorf("initialize embedding provider: %w", err)
		}

		r := retriever.New(proj.Store, proj.Vectors, proj.Embeddings)
		results, err := r.Search(ctx, query, retriever.Options{
			Mode:           retriever.Mode(flagMode),
			Limit:          flagLimit,
			TokenBudget:    flagTokenBudget,
			LanguageFilter: flagLanguage,
			FileFilter:     flagFileFilter,
		})
		if err != nil {
			return err
		}

		results = budget.Enforce(results, flagTokenBudget, flagLimit)
		fmt.Print(formatResults(query, results))
		return nil
	},
}

func formatResults(query string, results []model.SearchResult) string {
	if len(results) == 0 {
		return fmt.Sprintf("no results for %q\n", query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d result(s) for %q\n\n", len(results), query)
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s:%d-%d  [%s, score %.3f]\n", i+1, r.FilePath, r.StartLine, r.EndLine, r.MatchType, r.Score)
		if len(r.Symbols) > 0 {
			fmt.Fprintf(&b, "   symbols: %s\n", strings.Join(r.Symbols, ", "))
		}
		fmt.Fprintf(&b, "%s\n\n", indent(r.Content, "   "))
	}
	return b.String()
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

func init() {
	searchCmd.Flags().StringVar(&flagMode, "mode", "hybrid", "search mode: hybrid, vector, keyword, or symbol")
	searchCmd.Flags().IntVar(&flagLimit, "limit", 10, "maximum number of results")
	searchCmd.Flags().IntVar(&flagTokenBudget, "token-budget", 4000, "maximum total content tokens across results")
	searchCmd.Flags().StringVar(&flagLanguage, "language", "", "restrict vector search to this language")
	searchCmd.Flags().StringVar(&flagFileFilter, "file", "", "glob restricting results to matching file paths")
	rootCmd.AddCommand(searchCmd)
}
