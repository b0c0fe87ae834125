package main

import (
	"fmt"

	"github.com/just-nibble/service-miner/internal/core/service"
	"github.com/spf13/cobra"
)

var repairCmd = &cobra.Command{
	Use:   "repair <service>",
	Short: "Recompute zero line counts of a service's file modifications",
	Args:  cobra.ExactArgs(1),
	RunE:  runRepair,
}

func runRepair(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	svc, err := a.manager.GetService(ctx, args[0], false)
	if err != nil {
		return err
	}
	if svc == nil {
		return fmt.Errorf("service %q not found", args[0])
	}

	client, err := a.githubClient()
	if err != nil {
		return err
	}
	repairer := a.repairer(client)

	var total service.RepairStats
	for _, sr := range svc.Repositories {
		stats, err := repairer.Repair(ctx, sr.Repository, svc.Extensions)
		if err != nil {
			return err
		}
		total.Commits += stats.Commits
		total.Files += stats.Files
		total.Skipped += stats.Skipped
	}

	fmt.Fprintf(cmd.OutOrStdout(), "repaired %d files in %d commits, skipped %d\n", total.Files, total.Commits, total.Skipped)
	return nil
}
