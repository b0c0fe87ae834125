package main

import (
	"fmt"

	"github.com/just-nibble/service-miner/internal/adapters/report"
	"github.com/just-nibble/service-miner/internal/core/service"
	"github.com/spf13/cobra"
)

var (
	datesStart string
	datesEnd   string
)

var servicesCmd = &cobra.Command{
	Use:   "services",
	Short: "Manage mined services",
}

var servicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored services",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		names, err := a.manager.ListServiceNames(cmd.Context())
		if err != nil {
			return err
		}
		return report.NewWriter(report.ParseFormat(cfg.Output.Format), cmd.OutOrStdout(), false).
			Write(report.NamesTable("Services", names))
	},
}

var servicesDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a service with its repositories, commits and issues",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		deleted, err := a.manager.DeleteService(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("service %q not found", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
		return nil
	},
}

var servicesDatesCmd = &cobra.Command{
	Use:   "dates <name>",
	Short: "Set the start and end of a service; start defaults to its first commit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := service.ParseDate(datesStart)
		if err != nil {
			return err
		}
		end, err := service.ParseDate(datesEnd)
		if err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		updated, err := a.manager.UpdateDates(cmd.Context(), args[0], start, end)
		if err != nil {
			return err
		}
		if !updated {
			return fmt.Errorf("service %q has no commits to date it from", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", args[0])
		return nil
	},
}

func init() {
	servicesDatesCmd.Flags().StringVar(&datesStart, "start", "", "start date, YYYY-MM-DD")
	servicesDatesCmd.Flags().StringVar(&datesEnd, "end", "", "end date, YYYY-MM-DD")

	servicesCmd.AddCommand(servicesListCmd)
	servicesCmd.AddCommand(servicesDeleteCmd)
	servicesCmd.AddCommand(servicesDatesCmd)
}
