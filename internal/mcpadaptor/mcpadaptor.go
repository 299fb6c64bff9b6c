// Package mcpadaptor exposes repoknowledge's retrieval and summary surface
// as MCP tools, adapted from the teacher's internal/rag-backed MCP server
// onto this repository's retriever/store contracts.
package mcpadaptor

import (
	"context"
	"fmt"
	"strings"

	"repoknowledge/internal/budget"
	"repoknowledge/internal/model"
	"repoknowledge/internal/retriever"
	"repoknowledge/internal/store"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

var readOnlyAnnotation = mcp.ToolAnnotation{
	ReadOnlyHint:    mcp.ToBoolPtr(true),
	DestructiveHint: mcp.ToBoolPtr(false),
	IdempotentHint:  mcp.ToBoolPtr(true),
	OpenWorldHint:   mcp.ToBoolPtr(false),
}

// Register adds every repoknowledge tool to s, answering against r and st.
func Register(s *mcpserver.MCPServer, r *retriever.Retriever, st *store.Store) {
	s.AddTool(searchCodebaseTool(), makeSearchHandler(r))
	s.AddTool(getFileSummaryTool(), makeFileSummaryHandler(st))
	s.AddTool(getProjectOverviewTool(), makeOverviewHandler(st))
	s.AddTool(listIndexedFilesTool(), makeListFilesHandler(st))
}

func searchCodebaseTool() mcp.Tool {
	return mcp.NewTool("search_codebase",
		mcp.WithDescription("Hybrid vector + keyword + symbol search over the indexed codebase. Returns ranked code chunks with file paths and line numbers."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("query", mcp.Required(), mcp.Description("Natural language or keyword query")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 10)")),
		mcp.WithString("mode", mcp.Description("hybrid, vector, keyword, or symbol (default hybrid)")),
		mcp.WithString("language", mcp.Description("restrict vector search to this language")),
		mcp.WithString("file", mcp.Description("glob restricting results to matching file paths")),
	)
}

func getFileSummaryTool() mcp.Tool {
	return mcp.NewTool("get_file_summary",
		mcp.WithDescription("Get the generated summary for a specific indexed file."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("path", mcp.Required(), mcp.Description("File path as indexed (project-relative)")),
	)
}

func getProjectOverviewTool() mcp.Tool {
	return mcp.NewTool("get_project_overview",
		mcp.WithDescription("Get the project-wide summary generated during indexing."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
	)
}

func listIndexedFilesTool() mcp.Tool {
	return mcp.NewTool("list_indexed_files",
		mcp.WithDescription("List every indexed file with its language and purpose."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("language", mcp.Description("optional case-insensitive language filter")),
	)
}

func makeSearchHandler(r *retriever.Retriever) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := req.GetString("query", "")
		if query == "" {
			return mcp.NewToolResultError("query is required"), nil
		}
		limit := req.GetInt("limit", 10)
		if limit <= 0 {
			limit = 10
		}

		results, err := r.Search(ctx, query, retriever.Options{
			Mode:           retriever.Mode(req.GetString("mode", "")),
			Limit:          limit,
			LanguageFilter: req.GetString("language", ""),
			FileFilter:     req.GetString("file", ""),
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
		}

		results = budget.Enforce(results, 4000, limit)
		return mcp.NewToolResultText(formatSearchResults(query, results)), nil
	}
}

func makeFileSummaryHandler(st *store.Store) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path := req.GetString("path", "")
		if path == "" {
			return mcp.NewToolResultError("path is required"), nil
		}
		sum, ok, err := st.Summary(model.ScopeFile, path)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("load summary failed: %v", err)), nil
		}
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("file %q not found in index — call list_indexed_files to see available paths", path)), nil
		}
		return mcp.NewToolResultText(sum.Content), nil
	}
}

func makeOverviewHandler(st *store.Store) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sum, ok, err := st.Summary(model.ScopeProject, "project")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("load overview failed: %v", err)), nil
		}
		if !ok {
			return mcp.NewToolResultText("no project overview yet — run 'repoknowledge index' to generate one"), nil
		}
		return mcp.NewToolResultText(sum.Content), nil
	}
}

func makeListFilesHandler(st *store.Store) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		langFilter := strings.ToLower(req.GetString("language", ""))

		files, err := st.ListFiles()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list files failed: %v", err)), nil
		}

		var b strings.Builder
		count := 0
		for _, f := range files {
			if langFilter != "" && strings.ToLower(f.Language) != langFilter {
				continue
			}
			count++
			purpose := f.Purpose
			if purpose == "" {
				purpose = "(no summary)"
			}
			fmt.Fprintf(&b, "- %s (%s) — %s\n", f.Path, f.Language, purpose)
		}

		header := fmt.Sprintf("%d indexed file(s)", count)
		if langFilter != "" {
			header += fmt.Sprintf(" (language: %s)", langFilter)
		}
		return mcp.NewToolResultText(header + "\n\n" + b.String()), nil
	}
}

func formatSearchResults(query string, results []model.SearchResult) string {
	if len(results) == 0 {
		return fmt.Sprintf("no results for %q", query)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d result(s) for %q\n\n", len(results), query)
	for i, r := range results {
		fmt.Fprintf(&b, "### %d. %s:%d-%d (%s, score %.3f)\n\n", i+1, r.FilePath, r.StartLine, r.EndLine, r.MatchType, r.Score)
		fmt.Fprintf(&b, "```%s\n%s\n```\n\n", strings.ToLower(r.Language), r.Content)
	}
	return b.String()
}
