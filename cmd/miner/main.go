package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/just-nibble/service-miner/pkg/config"
	"github.com/just-nibble/service-miner/pkg/log"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Version is set by build flags
	Version = "dev"

	cfgFile string
	verbose bool
	logger  *logrus.Logger
	cfg     *config.Config
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "miner",
	Short: "Mine service repositories and reconstruct their evolution",
	Long: `miner collects the commit and issue history of the repositories that
make up a service, repairs line counts the hosting API left out, and
reconstructs LOC, change, bug and defect density series over time.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		if verbose {
			cfg.Log.Level = "debug"
		}

		logger, err = log.New(cfg.Log)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./miner.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(mineCmd)
	rootCmd.AddCommand(repairCmd)
	rootCmd.AddCommand(seriesCmd)
	rootCmd.AddCommand(servicesCmd)
	rootCmd.AddCommand(serveCmd)
}
