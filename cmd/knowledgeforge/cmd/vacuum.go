package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVacuumCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "vacuum",
		Short: "Reclaim space freed by deleted entries",
		Long: `Purges tombstoned rows and compacts the index store.

Skipped unless the deleted-row ratio reaches index.vacuum_threshold,
unless --force is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVacuum(cmd, force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "vacuum even if below the configured threshold")
	return cmd
}

func runVacuum(cmd *cobra.Command, force bool) error {
	engine, err := loadEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	ctx := cmd.Context()
	if !force {
		should, err := engine.Store.ShouldVacuum(ctx)
		if err != nil {
			return err
		}
		if !should {
			fmt.Fprintln(cmd.OutOrStdout(), "vacuum skipped: deleted-row ratio below threshold")
			return nil
		}
	}

	report, err := engine.Vacuum(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "vacuum complete: freed %d bytes in %s\n", report.BytesFreed, report.Duration)
	return nil
}
