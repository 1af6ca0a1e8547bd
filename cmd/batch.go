package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/compozy/autopush/internal/orchestrator"
)

// NewBatchCmd creates the batch command
func NewBatchCmd(load containerLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "batch",
		Short: "Sync every enabled repository from the config",
		Long: `Run the sync workflow for each enabled entry of the repositories list in the
config file, one after another, and print a summary.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := load()
			if err != nil {
				return err
			}
			report, err := c.batchOrch.Execute(cmd.Context(), c.batchEntries())
			if errors.Is(err, orchestrator.ErrNoRepositories) {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), report.Summary())
			if err != nil {
				return err
			}
			if code := report.ExitCode(); code != 0 {
				return &ExitError{Code: code}
			}
			return nil
		},
	}
}
