package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/just-nibble/service-miner/internal/adapters/report"
	"github.com/just-nibble/service-miner/internal/adapters/validators"
	"github.com/just-nibble/service-miner/internal/core/service"
	"github.com/spf13/cobra"
)

const (
	seriesDefectDensity    = "defect-density"
	seriesRepairTime       = "repair-time"
	seriesChangesVsDefects = "changes-vs-defects"
	seriesRepoLoc          = "repo-loc"
)

var (
	seriesServices string
	seriesBinDays  int
	seriesUntil    string
	seriesRepo     string
	seriesFormat   string
	seriesOut      string
	seriesSave     bool
)

var seriesCmd = &cobra.Command{
	Use:   "series <kind>",
	Short: "Reconstruct a time series of the mined services",
	Long: `Kinds:
  loc                 lines of code at the end of each bin
  changes             added plus deleted lines per bin
  changes-per-loc     changes divided by LOC, NaN when LOC is zero
  bugs                closed issues plus bug-fix commits per bin
  defect-density      bugs per thousand lines, per year
  repair-time         median days to close an issue, per year
  changes-vs-defects  regression of defect density on yearly changes
  repo-loc            running LOC after each commit of --repo`,
	Args: cobra.ExactArgs(1),
	RunE: runSeries,
}

func init() {
	seriesCmd.Flags().StringVarP(&seriesServices, "services", "s", "", "comma separated service names")
	seriesCmd.Flags().IntVar(&seriesBinDays, "bin-days", 30, "approximate bin width in days")
	seriesCmd.Flags().StringVar(&seriesUntil, "until", "", "end of the last bin, YYYY-MM-DD (default: now)")
	seriesCmd.Flags().StringVar(&seriesRepo, "repo", "", "owner/name, for repo-loc")
	seriesCmd.Flags().StringVarP(&seriesFormat, "format", "f", "", "table, csv or json (default from config)")
	seriesCmd.Flags().StringVarP(&seriesOut, "out", "o", "", "write into this directory instead of stdout")
	seriesCmd.Flags().BoolVar(&seriesSave, "save", false, "write into the configured output directory")
}

func runSeries(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	kind := args[0]

	until := time.Now().UTC()
	if seriesUntil != "" {
		t, err := service.ParseDate(seriesUntil)
		if err != nil {
			return err
		}
		until = *t
	}
	names := validators.ServiceNames(seriesServices)
	if kind != seriesRepoLoc {
		if err := names.Validate(); err != nil {
			return err
		}
		if err := validators.BinDays(seriesBinDays).Validate(); err != nil {
			return err
		}
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	var table *report.Table
	switch kind {
	case seriesDefectDensity:
		rep, err := a.analyzer.DefectDensity(ctx, names.List(), seriesBinDays, until)
		if err != nil {
			return err
		}
		table = report.DefectDensityTable(rep.Years)

	case seriesRepairTime:
		times, err := a.analyzer.RepairTimes(ctx, names.List())
		if err != nil {
			return err
		}
		table = report.RepairTimesTable(times)

	case seriesChangesVsDefects:
		st, err := a.analyzer.ChangesVsDefects(ctx, names.List(), seriesBinDays, until)
		if err != nil {
			return err
		}
		table = report.ChangeDefectTable(st)

	case seriesRepoLoc:
		repo := validators.Repo(seriesRepo)
		if err := repo.Validate(); err != nil {
			return err
		}
		owner, name := repo.Split()
		locs, err := a.analyzer.RepositoryLoc(ctx, owner, name)
		if err != nil {
			return err
		}
		table = report.CommitLOCTable(seriesRepo, locs)

	default:
		sk, err := service.ParseSeriesKind(kind)
		if err != nil {
			return err
		}
		res, err := a.analyzer.Series(ctx, sk, names.List(), seriesBinDays, until)
		if err != nil {
			return err
		}
		table = seriesTable(res)
	}

	return emit(cmd, outputName(kind), table)
}

// seriesTable puts every service in its own column.
func seriesTable(res *service.SeriesResult) *report.Table {
	columns := make([]report.Column, 0, len(res.Series))
	for _, s := range res.Series {
		if s.Values != nil {
			columns = append(columns, report.FloatColumn(s.Service, s.Values))
		} else {
			columns = append(columns, report.IntColumn(s.Service, s.Counts))
		}
	}
	return report.SeriesTable(string(res.Kind), res.Bins, columns...)
}

func outputName(kind string) string {
	parts := []string{kind}
	if seriesRepo != "" && kind == seriesRepoLoc {
		parts = append(parts, strings.ReplaceAll(seriesRepo, "/", "_"))
	}
	parts = append(parts, validators.ServiceNames(seriesServices).List()...)
	return strings.Join(parts, "_")
}

func emit(cmd *cobra.Command, name string, table *report.Table) error {
	format := seriesFormat
	if format == "" {
		format = cfg.Output.Format
	}
	f := report.ParseFormat(format)

	dir := seriesOut
	if dir == "" && seriesSave {
		dir = cfg.Output.Dir
	}
	if dir == "" {
		return report.NewWriter(f, cmd.OutOrStdout(), !color.NoColor).Write(table)
	}
	path, err := report.WriteFile(dir, name, f, table)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}
