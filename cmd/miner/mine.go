package main

import (
	"fmt"

	"github.com/just-nibble/service-miner/internal/core/service"
	"github.com/spf13/cobra"
)

var (
	targetsFile string
	skipRepair  bool
	noProgress  bool
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Mine the services listed in a targets file",
	Long: `Fetch commits, file modifications and issues of every repository in the
targets file, link them to their services and repair inconsistent line counts.
Mining is incremental: only commits newer than the stored ones are fetched.`,
	RunE: runMine,
}

func init() {
	mineCmd.Flags().StringVarP(&targetsFile, "targets", "t", "targets.yaml", "YAML file listing services and repositories")
	mineCmd.Flags().BoolVar(&skipRepair, "skip-repair", false, "do not repair inconsistent file modifications")
	mineCmd.Flags().BoolVar(&noProgress, "no-progress", false, "do not draw commit progress bars")
}

func runMine(cmd *cobra.Command, args []string) error {
	targets, err := service.LoadTargets(targetsFile)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ix, err := a.indexer(!skipRepair)
	if err != nil {
		return err
	}
	if !noProgress {
		ix.WithProgress(newCommitBar(cmd.ErrOrStderr()))
	}
	if err := ix.MineTargets(cmd.Context(), targets); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "mined %d services\n", len(targets))
	return nil
}
