package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"MomentumRank/internal/di"
	"MomentumRank/internal/domain/models"
	"MomentumRank/pkg/config"
	"MomentumRank/pkg/util"
)

var (
	rankUniverseFile string
	rankStart        string
	rankEnd          string
	rankNoCache      bool
	rankTop          int
	rankFormat       string
	rankAll          bool
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Compute and print the latest momentum rankings",
	Long: `Compute momentum for the default universe (or --universe-file) and print
the classified rankings of the last trading day.

Examples:
  momentumctl rank
  momentumctl rank --universe-file data/nasdaq100.csv --top 5
  momentumctl rank --start 2023-01-01 --end 2024-12-31 --no-cache --all
  momentumctl rank --format json`,
	RunE: runRank,
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().StringVar(&rankUniverseFile, "universe-file", "", "ticker CSV replacing the configured default universe")
	rankCmd.Flags().StringVar(&rankStart, "start", "", "first date, YYYY-MM-DD")
	rankCmd.Flags().StringVar(&rankEnd, "end", "", "last date, YYYY-MM-DD")
	rankCmd.Flags().BoolVar(&rankNoCache, "no-cache", false, "recompute even when a fresh cached result exists")
	rankCmd.Flags().IntVar(&rankTop, "top", 0, "rows in the top, bottom and candidate lists (0 uses momentum.display_top)")
	rankCmd.Flags().StringVar(&rankFormat, "format", "table", "output format: table or json")
	rankCmd.Flags().BoolVar(&rankAll, "all", false, "print every ranked row, not only the summary lists")
}

func runRank(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return err
	}
	if rankUniverseFile != "" {
		cfg.Universe.DefaultFile = rankUniverseFile
	}
	// Keep stdout for the table.
	cfg.Log.Output = "stderr"

	params := models.CalculateParams{UseCache: !rankNoCache}
	if params.Start, err = parseFlagDate("start", rankStart); err != nil {
		return err
	}
	if params.End, err = parseFlagDate("end", rankEnd); err != nil {
		return err
	}

	svc, cleanup, err := di.InitializeService(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	rep, err := svc.Report(cmd.Context(), params, rankTop)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if strings.EqualFold(rankFormat, "json") {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	return renderReport(out, rep, rankAll)
}

func parseFlagDate(name, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, ok := util.ParseDate(v)
	if !ok {
		return time.Time{}, fmt.Errorf("--%s: invalid date %q, want YYYY-MM-DD", name, v)
	}
	return t, nil
}

// renderReport prints the run header, bucket counts, the summary lists and
// optionally every row.
func renderReport(w io.Writer, rep *models.Report, all bool) error {
	source := "computed"
	if rep.FromCache {
		source = "cache"
	}
	fmt.Fprintf(w, "Momentum as of %s (%s..%s, universe %s, %s)\n",
		util.FormatDate(rep.LastDate), util.FormatDate(rep.Start), util.FormatDate(rep.End), rep.Universe, source)
	if rep.Partial {
		fmt.Fprintln(w, "WARNING: time budget exceeded, some symbols were not scored")
	}
	if rep.MixedModes {
		fmt.Fprintln(w, "NOTE: short histories scored by simple return; scales are not directly comparable")
	}

	var counts []string
	for _, c := range models.Classifications {
		counts = append(counts, fmt.Sprintf("%s=%d", c, rep.Counts[c]))
	}
	fmt.Fprintf(w, "%d ranked: %s\n", len(rep.Rows), strings.Join(counts, " "))

	if all {
		fmt.Fprintln(w, "\nAll rankings")
		if err := writeRows(w, rep.Rows); err != nil {
			return err
		}
	}

	fmt.Fprintln(w, "\nStrong Buy")
	if err := writeRows(w, rep.Top); err != nil {
		return err
	}
	fmt.Fprintln(w, "\nStrong Sell")
	if err := writeRows(w, rep.Bottom); err != nil {
		return err
	}

	fmt.Fprintln(w, "\nTrade candidates")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SIDE\tRANK\tSYMBOL\tCOMPANY\tMOMENTUM\tCLASS")
	for _, c := range rep.Candidates {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%.4f\t%s\n",
			c.Side, c.FactorRank, c.Symbol, c.Company, c.Momentum, c.Classification)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(rep.Excluded) > 0 {
		fmt.Fprintf(w, "\n%d symbols excluded (insufficient history or time budget)\n", len(rep.Excluded))
	}
	return nil
}

func writeRows(w io.Writer, rows []models.ReportRow) error {
	if len(rows) == 0 {
		fmt.Fprintln(w, "  (none)")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSYMBOL\tCOMPANY\tINDUSTRY\tMOMENTUM\tMODE\tCLASS")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.4f\t%s\t%s\n",
			r.FactorRank, r.Symbol, r.Company, r.Industry, r.Momentum, r.Mode, r.Classification)
	}
	return tw.Flush()
}
