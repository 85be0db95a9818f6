// Package commands implements the jobcore command line.
package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	var confPath string

	rootCmd := &cobra.Command{
		Use:           "jobcore",
		Short:         "Job posting and application lifecycle service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&confPath, "conf", "c", "", "config file path (default: search /etc/jobcore, $HOME/.jobcore, .)")

	rootCmd.AddCommand(
		newServeCommand(&confPath),
		newIndexesCommand(&confPath),
		newReconcileCommand(&confPath),
		newVersionCommand(),
	)
	return rootCmd
}
