package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/legalgapdb/gapcheck/internal/corpus"
	"github.com/legalgapdb/gapcheck/internal/model"
	"github.com/legalgapdb/gapcheck/internal/pipeline"
	"github.com/legalgapdb/gapcheck/internal/report"
)

var (
	checkJSON        bool
	checkNoCitations bool
	checkNoHistory   bool
)

var checkCmd = &cobra.Command{
	Use:   "check <case-file-or-id>",
	Short: "Validate a single case",
	Long:  "Runs the full validation flow on one case: schema checks, citation reachability, statistical analysis against the rest of the corpus, and scoring. The argument is a case file path, or a case ID resolved against the corpus directory.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// The snapshot for outlier comparison comes from the corpus
		// directory, minus the case under test.
		records, _, err := corpus.LoadDir(cfg.Corpus.Dir)
		if err != nil {
			records = nil // no corpus is fine for a path-based check
		}

		var rec *model.CaseRecord
		if model.CaseIDPattern.MatchString(args[0]) {
			rec, err = corpus.FindByID(cfg.Corpus.Dir, args[0])
			if err != nil {
				return eris.Wrapf(err, "check: resolve %s", args[0])
			}
		} else {
			rec, err = corpus.LoadFile(args[0])
			if err != nil {
				return eris.Wrapf(err, "check: load %s", args[0])
			}
		}
		snap := corpus.NewSnapshot(records)

		p := pipeline.New(cfg, nil, nil)
		p.SkipCitations = checkNoCitations

		rep := p.CheckCase(ctx, rec, snap)

		if !checkNoHistory {
			if st, err := initStore(ctx); err == nil {
				defer st.Close() //nolint:errcheck
				_ = st.SaveReport(ctx, uuid.NewString(), rep)
			}
		}

		if checkJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(rep); err != nil {
				return eris.Wrap(err, "check: encode report")
			}
		} else {
			fmt.Print(report.FormatCase(rep))
		}

		if !rep.Pass {
			exitCode = 1
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "emit the report as JSON")
	checkCmd.Flags().BoolVar(&checkNoCitations, "no-citations", false, "skip citation reachability probes")
	checkCmd.Flags().BoolVar(&checkNoHistory, "no-history", false, "do not record the report in the history store")
	rootCmd.AddCommand(checkCmd)
}
