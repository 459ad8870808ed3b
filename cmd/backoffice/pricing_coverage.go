package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jhoicas/printshop-api/internal/application/dto"
	"github.com/jhoicas/printshop-api/internal/application/report"
	"github.com/jhoicas/printshop-api/internal/infrastructure/excel"
	"github.com/jhoicas/printshop-api/internal/infrastructure/postgres"
	"github.com/spf13/cobra"
)

var pricingCoverageCmd = &cobra.Command{
	Use:   "pricing-coverage",
	Short: "Report how many jobs and estimates carry a usable price",
	Long:  "Consolidates the price of every job and estimate created in the period and prints coverage, totals and invoice balances as JSON. With --xlsx the report is also written as a spreadsheet.",
	RunE:  runPricingCoverage,
}

var (
	pricingCoverageFrom string
	pricingCoverageTo   string
	pricingCoverageXLSX string
)

func init() {
	pricingCoverageCmd.Flags().StringVar(&pricingCoverageFrom, "from", "", "Start of the period, inclusive (YYYY-MM-DD or RFC3339)")
	pricingCoverageCmd.Flags().StringVar(&pricingCoverageTo, "to", "", "End of the period, exclusive (YYYY-MM-DD or RFC3339)")
	pricingCoverageCmd.Flags().StringVarP(&pricingCoverageXLSX, "xlsx", "x", "", "Also write the report to this .xlsx file")
	rootCmd.AddCommand(pricingCoverageCmd)
}

func runPricingCoverage(cmd *cobra.Command, _ []string) error {
	period, err := parsePeriod(pricingCoverageFrom, pricingCoverageTo)
	if err != nil {
		return err
	}

	ctx := context.Background()
	pool, log, err := connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	rep, err := report.NewUseCase(postgres.NewReportRepository(pool)).PricingCoverage(ctx, period)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	if pricingCoverageXLSX != "" {
		data, err := excel.NewGenerator().PricingCoverage(rep)
		if err != nil {
			return fmt.Errorf("failed to render spreadsheet: %w", err)
		}
		if err := os.WriteFile(pricingCoverageXLSX, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", pricingCoverageXLSX, err)
		}
		log.Info().Str("path", pricingCoverageXLSX).Msg("spreadsheet written")
	}
	return writeReport(cmd.OutOrStdout(), rep)
}

func writeReport(w io.Writer, rep *dto.PricingCoverageReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

func parsePeriod(from, to string) (report.Period, error) {
	var p report.Period
	var err error
	if p.From, err = parseBound(from); err != nil {
		return p, fmt.Errorf("invalid --from: %w", err)
	}
	if p.To, err = parseBound(to); err != nil {
		return p, fmt.Errorf("invalid --to: %w", err)
	}
	return p, nil
}

func parseBound(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
