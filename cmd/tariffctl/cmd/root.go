// Package cmd provides the commands of tariffctl, a command line front end to the
// estimation engine for plan files in the billing backend's format.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tariffctl",
	Short: "Estimate charges for tariff plans",
	Long: `tariffctl estimates the charge of a usage quantity on a tariff plan.

Examples:
  tariffctl estimate --plan plan.yaml --usage 25
  tariffctl estimate --plan plan.yaml --usage 25 --usage 40
  tariffctl methods`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(newEstimateCmd())
	rootCmd.AddCommand(newMethodsCmd())
}
