package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/flexprice/tariff/internal/domain/tariffplan"
	ierr "github.com/flexprice/tariff/internal/errors"
	"github.com/flexprice/tariff/internal/repository/remote"
	"github.com/flexprice/tariff/internal/tariff"
	"github.com/flexprice/tariff/internal/types"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newEstimateCmd() *cobra.Command {
	var (
		planFile string
		usages   []string
	)

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate the charge of usage on a plan file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := loadPlanFile(planFile)
			if err != nil {
				return err
			}
			return runEstimate(cmd.OutOrStdout(), plan, usages)
		},
	}

	cmd.Flags().StringVarP(&planFile, "plan", "p", "", "YAML plan file in the billing backend format")
	cmd.Flags().StringArrayVarP(&usages, "usage", "u", nil, "usage quantity, repeatable")
	_ = cmd.MarkFlagRequired("plan")
	_ = cmd.MarkFlagRequired("usage")
	return cmd
}

func loadPlanFile(path string) (*tariffplan.Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Could not read plan file %s", path).
			Mark(ierr.ErrValidation)
	}
	return parsePlan(data)
}

func parsePlan(data []byte) (*tariffplan.Plan, error) {
	var payload remote.PlanPayload
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Plan file is not valid YAML").
			Mark(ierr.ErrValidation)
	}
	return payload.ToPlan(context.Background())
}

func runEstimate(out io.Writer, plan *tariffplan.Plan, usages []string) error {
	symbol := types.GetCurrencySymbol(plan.Currency)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "METHOD\tUSAGE\tSUBTOTAL\tTAX\tTOTAL\n")

	// rows estimated before a failing usage are still printed
	err := writeRows(w, plan, symbol, usages)
	if flushErr := w.Flush(); err == nil {
		err = flushErr
	}
	return err
}

func writeRows(w io.Writer, plan *tariffplan.Plan, symbol string, usages []string) error {
	for _, raw := range usages {
		usage, err := tariff.ParseUsage(raw)
		if err != nil {
			return err
		}
		b, err := tariff.EstimateDetailed(plan, usage)
		if err != nil {
			return err
		}
		total := symbol + b.Total.StringFixed(2)
		if b.Clamped {
			total += " (clamped)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s%s\t%s%s\t%s\n",
			b.Method, b.Usage,
			symbol, b.Subtotal.StringFixed(2),
			symbol, b.TaxAmount.StringFixed(2),
			total,
		)
	}
	return nil
}
