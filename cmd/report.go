package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/depot/core/report"
	"github.com/kilianp07/depot/pkg/export"
)

var (
	reportFormat  string
	reportSince   string
	reportVehicle int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export stored day summaries",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "csv", "output format: csv, json or html")
	reportCmd.Flags().StringVar(&reportSince, "since", "", "only days ended on or after this date (YYYY-MM-DD)")
	reportCmd.Flags().IntVar(&reportVehicle, "vehicle", 0, "only days in which this vehicle made a trip")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	q := report.Query{VehicleID: reportVehicle}
	if reportSince != "" {
		q.Start, err = time.ParseInLocation(time.DateOnly, reportSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since: %w", err)
		}
	}
	store, err := report.NewStore(cfg.Reports)
	if err != nil {
		return fmt.Errorf("report store: %w", err)
	}
	if store == nil {
		return fmt.Errorf("reports are disabled (backend %q)", cfg.Reports.Backend)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()
	days, err := store.Query(ctx, q)
	if err != nil {
		return fmt.Errorf("query reports: %w", err)
	}
	switch reportFormat {
	case "csv":
		return export.WriteCSV(cmd.OutOrStdout(), days)
	case "json":
		return export.WriteJSON(cmd.OutOrStdout(), days)
	case "html":
		return export.WriteHTML(cmd.OutOrStdout(), days)
	default:
		return fmt.Errorf("unknown format %q", reportFormat)
	}
}
