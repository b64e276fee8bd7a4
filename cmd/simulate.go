package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kilianp07/depot/core/model"
	"github.com/kilianp07/depot/infra/logger"
	"github.com/kilianp07/depot/qa/scenarios"
)

var scenarioPath string

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Replay a scenario file against a fresh session",
	RunE:  runSimulate,
}

func init() {
	simulateCmd.Flags().StringVarP(&scenarioPath, "scenario", "s", "", "scenario file (yaml)")
	_ = simulateCmd.MarkFlagRequired("scenario")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	sc, err := scenarios.Load(scenarioPath)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if sc.DefaultCapacity > 0 {
		cfg.Session.DefaultCapacity = sc.DefaultCapacity
	}
	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	svc.Start(context.Background())

	res := scenarios.Run(svc.Session, sc)
	printResult(cmd.OutOrStdout(), sc, res)

	if err := svc.Close(); err != nil {
		logger.New("main").Errorf("service close: %v", err)
	}
	if err := res.Err(); err != nil {
		return fmt.Errorf("scenario %s failed:\n%w", sc.Name, err)
	}
	return nil
}

func printResult(w io.Writer, sc *scenarios.Scenario, res scenarios.Result) {
	fmt.Fprintf(w, "Scenario %s: %d steps\n", sc.Name, len(res.Steps))
	for _, st := range res.Steps {
		outcome := "ok"
		if st.Code != "" {
			outcome = st.Code
		}
		switch {
		case st.Trip != nil:
			fmt.Fprintf(w, "%3d %-11s V%d G%d -> G%d (%d passengers)\n", st.Index, st.Op,
				st.Trip.VehicleID, st.Trip.Origin, st.Trip.Destination, st.Trip.Passengers)
		case st.Summary != nil:
			fmt.Fprintf(w, "%3d %-11s %s\n", st.Index, st.Op, summaryLine(*st.Summary))
		default:
			fmt.Fprintf(w, "%3d %-11s %s\n", st.Index, st.Op, outcome)
		}
	}
	for _, m := range res.Mismatches {
		fmt.Fprintf(w, "MISMATCH %s\n", m)
	}
}

func summaryLine(sum model.DaySummary) string {
	return fmt.Sprintf("%d trips, %d passengers", sum.TotalTrips, sum.TotalPassengers)
}
