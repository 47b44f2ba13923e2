package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/legalgapdb/gapcheck/internal/corpus"
	"github.com/legalgapdb/gapcheck/internal/pipeline"
	"github.com/legalgapdb/gapcheck/internal/report"
	"github.com/legalgapdb/gapcheck/internal/store"
)

var (
	corpusDir         string
	corpusJSON        bool
	corpusNoCitations bool
	corpusNoHistory   bool
	corpusDeadline    int
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Validate the whole case corpus",
	Long:  "Loads every case file under the corpus directory, validates all of them in parallel against a frozen snapshot, and emits the aggregate report.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		dir := corpusDir
		if dir == "" {
			dir = cfg.Corpus.Dir
		}
		if corpusDeadline > 0 {
			cfg.Run.DeadlineSecs = corpusDeadline
		}

		records, loadErrs, err := corpus.LoadDir(dir)
		if err != nil {
			return eris.Wrapf(err, "corpus: load %s", dir)
		}
		if len(records) == 0 && len(loadErrs) == 0 {
			return eris.Errorf("corpus: no case files found under %s", dir)
		}

		var history store.Store
		if !corpusNoHistory {
			history, err = initStore(ctx)
			if err != nil {
				return err
			}
			defer history.Close() //nolint:errcheck
		}

		p := pipeline.New(cfg, nil, history)
		p.SkipCitations = corpusNoCitations

		agg := p.RunCorpus(ctx, records, loadErrs)

		if corpusJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(agg); err != nil {
				return eris.Wrap(err, "corpus: encode report")
			}
		} else {
			fmt.Print(report.FormatAggregate(agg))
		}

		if agg.Failed > 0 {
			exitCode = 1
		}
		return nil
	},
}

func init() {
	corpusCmd.Flags().StringVar(&corpusDir, "dir", "", "corpus directory (default from config)")
	corpusCmd.Flags().BoolVar(&corpusJSON, "json", false, "emit the aggregate report as JSON")
	corpusCmd.Flags().BoolVar(&corpusNoCitations, "no-citations", false, "skip citation reachability probes")
	corpusCmd.Flags().BoolVar(&corpusNoHistory, "no-history", false, "do not record the run in the history store")
	corpusCmd.Flags().IntVar(&corpusDeadline, "deadline", 0, "run deadline in seconds (0 = no deadline)")
	rootCmd.AddCommand(corpusCmd)
}
