package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kestrel-labs/knowledgeforge/internal/indexstore"
	"github.com/kestrel-labs/knowledgeforge/internal/searchengine"
)

func newSearchCmd() *cobra.Command {
	var (
		limit      int
		entryType  string
		category   string
		snippets   bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a plain relevance search against the index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args[0], limit, entryType, category, snippets, jsonOutput)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "maximum results to return")
	cmd.Flags().StringVar(&entryType, "type", "", "restrict to an entry type")
	cmd.Flags().StringVar(&category, "category", "", "restrict to a category")
	cmd.Flags().BoolVar(&snippets, "snippets", true, "include content snippets")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, limit int, entryType, category string, snippets, jsonOutput bool) error {
	engine, err := loadEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	sq := searchengine.SearchQuery{
		Query:           query,
		Limit:           limit,
		IncludeSnippets: snippets,
	}
	if entryType != "" {
		sq.Filter.Type = indexstore.EntryType(entryType)
	}
	if category != "" {
		sq.Filter.Category = category
	}

	set, err := engine.Query(cmd.Context(), sq)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(set)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%d matches (%s)\n", set.TotalMatches, set.ExecutionTime)
	for _, r := range set.Results {
		fmt.Fprintf(w, "%d. [%.3f] %s (%s)\n", r.Rank, r.Score, r.Entry.Title, r.Entry.ID)
		if r.TitleSnippet != nil {
			fmt.Fprintf(w, "   %s\n", r.TitleSnippet.Text)
		}
		for _, s := range r.ContentSnippets {
			fmt.Fprintf(w, "   %s\n", strings.TrimSpace(s.Text))
		}
	}
	return nil
}
