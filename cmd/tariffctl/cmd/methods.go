package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/flexprice/tariff/internal/types"
	"github.com/spf13/cobra"
)

func newMethodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List the estimate methods and their plan file identifiers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "IDENTIFIER\tMETHOD\n")
			for _, method := range types.EstimateMethods {
				fmt.Fprintf(w, "%s\t%s\n", method.SourceIdentifier(), method)
			}
			return w.Flush()
		},
	}
}
