package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/legalgapdb/gapcheck/internal/model"
	"github.com/legalgapdb/gapcheck/internal/report"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect validation run history",
	Long:  "Commands for listing past corpus runs and the validation history of individual cases.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List past corpus runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		limit, _ := cmd.Flags().GetInt("limit")

		runs, err := st.ListRuns(ctx, limit)
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

// -- runs history --

var runsHistoryCmd = &cobra.Command{
	Use:   "history <case-id>",
	Short: "Show past reports for a case, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		limit, _ := cmd.Flags().GetInt("limit")
		asJSON, _ := cmd.Flags().GetBool("json")

		reports, err := st.ListReports(ctx, args[0], limit)
		if err != nil {
			return eris.Wrap(err, "runs history")
		}

		if len(reports) == 0 {
			fmt.Fprintf(os.Stderr, "No reports found for %s.\n", args[0])
			return nil
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(reports)
		}

		for i := range reports {
			r := &reports[i]
			fmt.Printf("%s  %s\n", r.RunTimestamp.Format("2006-01-02 15:04:05"), report.SummaryLine(r))
		}
		return nil
	},
}

func formatRunsList(w io.Writer, runs []model.RunSummary) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN ID\tTIMESTAMP\tCASES\tPASSED\tFAILED\tMEAN SCORE")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%.2f\n",
			r.RunID, r.RunTimestamp.Format("2006-01-02 15:04:05"),
			r.TotalCases, r.Passed, r.Failed, r.MeanScore)
	}
	tw.Flush()
}

func init() {
	runsListCmd.Flags().Int("limit", 20, "maximum number of runs to list")
	runsHistoryCmd.Flags().Int("limit", 20, "maximum number of reports to show")
	runsHistoryCmd.Flags().Bool("json", false, "emit reports as JSON")
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsHistoryCmd)
	rootCmd.AddCommand(runsCmd)
}
