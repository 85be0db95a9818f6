package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newIndexesCommand(confPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "indexes",
		Short: "Create the job collection indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cleanup, err := newApp(cmd.Context(), *confPath)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := a.data.Jobs.EnsureIndexes(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "indexes ensured")
			return nil
		},
	}
}

func newReconcileCommand(confPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Rebuild every employer's posted-job counter from the jobs collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cleanup, err := newApp(cmd.Context(), *confPath)
			if err != nil {
				return err
			}
			defer cleanup()

			n, err := a.service.Job.ReconcileEmployerCounts(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reconciled %d employer accounts\n", n)
			return nil
		},
	}
}
