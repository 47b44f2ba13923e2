package main

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/legalgapdb/gapcheck/internal/corpus"
	"github.com/legalgapdb/gapcheck/internal/stats"
)

var (
	statsDir    string
	statsFormat string
	statsOutput string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Generate corpus statistics",
	Long:  "Computes coverage, distribution, and quality statistics over the corpus and writes an HTML or JSON report.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		dir := statsDir
		if dir == "" {
			dir = cfg.Corpus.Dir
		}

		records, _, err := corpus.LoadDir(dir)
		if err != nil {
			return eris.Wrapf(err, "stats: load %s", dir)
		}
		if len(records) == 0 {
			return eris.Errorf("stats: no case files found under %s", dir)
		}

		rep := stats.Compute(records, time.Now())

		out := os.Stdout
		if statsOutput != "" {
			f, err := os.Create(statsOutput)
			if err != nil {
				return eris.Wrapf(err, "stats: create %s", statsOutput)
			}
			defer f.Close() //nolint:errcheck
			out = f
		}

		switch statsFormat {
		case "json":
			return stats.WriteJSON(out, rep)
		case "html":
			return stats.WriteHTML(out, rep)
		default:
			return eris.Errorf("stats: unknown format %q (want html or json)", statsFormat)
		}
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsDir, "dir", "", "corpus directory (default from config)")
	statsCmd.Flags().StringVar(&statsFormat, "format", "html", "output format: html or json")
	statsCmd.Flags().StringVarP(&statsOutput, "output", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(statsCmd)
}
