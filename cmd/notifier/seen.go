package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"screening_notifier/internal/config"
)

var seenCmd = &cobra.Command{
	Use:   "seen",
	Short: "List dates that were already announced",
	RunE:  runSeen,
}

func runSeen(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	dates, err := store.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("load seen dates: %w", err)
	}

	out := cmd.OutOrStdout()
	if dates.Len() == 0 {
		fmt.Fprintf(out, "No dates recorded in %s\n", cfg.StorePath())
		return nil
	}
	for _, d := range dates.Sorted() {
		fmt.Fprintln(out, d.Display())
	}
	return nil
}
