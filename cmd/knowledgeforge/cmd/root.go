// Package cmd provides the operator CLI commands for knowledgeforge: a
// thin, non-interactive wrapper over pkg/knowledgeforge for reindexing,
// vacuuming, inspecting stats, and running ad hoc searches. It is not a
// server and holds no long-lived daemon state between invocations.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kestrel-labs/knowledgeforge/internal/config"
	"github.com/kestrel-labs/knowledgeforge/internal/logging"
	"github.com/kestrel-labs/knowledgeforge/pkg/knowledgeforge"
	"github.com/kestrel-labs/knowledgeforge/pkg/version"
)

var (
	configDir string
	debugMode bool
)

// NewRootCmd creates the root command for the knowledgeforge CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "knowledgeforge",
		Short:   "Operator CLI for the adaptive knowledge-retrieval engine",
		Version: version.Version,
		PersistentPreRunE: func(c *cobra.Command, args []string) error {
			if debugMode {
				logCfg := logging.DebugConfig()
				logCfg.WriteToStderr = true
				if _, cleanup, err := logging.Setup(logCfg); err == nil {
					c.Root().PersistentPostRunE = func(*cobra.Command, []string) error {
						cleanup()
						return nil
					}
				}
			}
			return nil
		},
	}
	cmd.SetVersionTemplate("knowledgeforge version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "directory to look for .knowledgeforge.yaml in")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")

	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newRetrieveCmd())
	cmd.AddCommand(newVacuumCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// loadEngine loads configuration from configDir and builds an Engine.
// Callers must Close the returned engine.
func loadEngine() (*knowledgeforge.Engine, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return knowledgeforge.New(cfg)
}
