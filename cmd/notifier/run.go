package main

import (
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single check (default)",
	Long:  "Load the seen dates, fetch the schedule once, announce new dates and save.\nIntended for an external scheduler such as cron.",
	RunE:  runRun,
}

func runRun(cmd *cobra.Command, _ []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.reconciler.RunOnce(cmd.Context())
	if err != nil {
		return err
	}
	a.log.Debug("cycle finished", "outcome", report.Outcome, "new", len(report.New), "seen", report.Seen)
	return nil
}
