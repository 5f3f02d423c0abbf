package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kestrel-labs/knowledgeforge/internal/retriever"
)

func newRetrieveCmd() *cobra.Command {
	var (
		limit      int
		mode       string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "retrieve <query>",
		Short: "Run an adaptive hybrid retrieval, exercising the bandit-driven strategy selection",
		Long: `Retrieve runs a query through the hybrid retriever rather than a plain
search: it picks a retrieval strategy (the configured mode, or an
arm chosen by the bandit), fuses and reranks candidates, and prints
which strategy was used alongside the resulting entries.

The printed query ID can be fed back with "knowledgeforge feedback"
(none yet; call pkg/knowledgeforge's ObserveFeedback directly from an
embedding application) to close the learning loop.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRetrieve(cmd, args[0], limit, mode, jsonOutput)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "maximum results to return")
	cmd.Flags().StringVar(&mode, "mode", "", "override the configured retrieval mode (single, parallel, adaptive)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	return cmd
}

func runRetrieve(cmd *cobra.Command, query string, limit int, mode string, jsonOutput bool) error {
	engine, err := loadEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	rq := retriever.RetrievalQuery{
		Query: query,
		Mode:  retriever.Mode(mode),
		Limit: limit,
	}

	queryID := uuid.NewString()
	result, err := engine.Retrieve(cmd.Context(), queryID, rq)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "query id:   %s\n", result.QueryID)
	fmt.Fprintf(w, "strategy:   %s (attempted: %v)\n", result.StrategyUsed, result.StrategiesAttempted)
	fmt.Fprintf(w, "exploring:  %v\n", result.ExplorationPerformed)
	fmt.Fprintf(w, "total time: %s\n", result.Timings.Total)
	for _, r := range result.Results {
		fmt.Fprintf(w, "%d. [%s] %s (%s) via %s\n", r.Rank, r.Score, r.Entry.Title, r.Entry.ID, r.RankerUsed)
	}
	return nil
}
