package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show index and query statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd, jsonOutput)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

type statsOutput struct {
	EntryCount     int     `json:"entry_count"`
	DeletedCount   int     `json:"deleted_count"`
	TermCount      int     `json:"term_count"`
	IndexSizeBytes int64   `json:"index_size_bytes"`
	TotalQueries   int64   `json:"total_queries"`
	AverageResults float64 `json:"average_results"`
}

func runStats(cmd *cobra.Command, jsonOutput bool) error {
	engine, err := loadEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	ctx := cmd.Context()
	indexStats, err := engine.Stats(ctx)
	if err != nil {
		return err
	}
	analytics := engine.GetAnalytics(time.Time{}, time.Now())

	out := statsOutput{
		EntryCount:     indexStats.EntryCount,
		DeletedCount:   indexStats.DeletedCount,
		TermCount:      indexStats.TermCount,
		IndexSizeBytes: indexStats.IndexSizeBytes,
		TotalQueries:   analytics.TotalQueries,
		AverageResults: analytics.AverageResults,
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "entries:        %d (%d deleted)\n", out.EntryCount, out.DeletedCount)
	fmt.Fprintf(w, "terms:          %d\n", out.TermCount)
	fmt.Fprintf(w, "index size:     %d bytes\n", out.IndexSizeBytes)
	fmt.Fprintf(w, "total queries:  %d\n", out.TotalQueries)
	fmt.Fprintf(w, "avg results:    %.1f\n", out.AverageResults)
	return nil
}
