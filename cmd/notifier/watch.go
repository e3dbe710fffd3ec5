package main

import (
	"github.com/spf13/cobra"

	"screening_notifier/internal/scheduler"
)

var watchFlags struct {
	schedule string
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep running and check on a cron schedule",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchFlags.schedule, "schedule", "", "cron spec overriding CHECK_SCHEDULE")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.Close()

	spec := a.cfg.CheckSchedule
	if watchFlags.schedule != "" {
		spec = watchFlags.schedule
	}

	a.log.Info("starting watcher", "schedule", spec, "store", a.cfg.StorePath())
	return scheduler.New(a.reconciler, spec, a.log).Run(cmd.Context())
}
