package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/legalgapdb/gapcheck/internal/corpus"
	"github.com/legalgapdb/gapcheck/internal/export"
)

var (
	exportDir        string
	exportFormat     string
	exportOutput     string
	exportCountry    string
	exportDomain     string
	exportStatus     string
	exportNoMetadata bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the corpus in tabular formats",
	Long:  "Exports case records as JSON Lines, flattened CSV, or a multi-sheet XLSX workbook, with optional country, domain, and status filters.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		dir := exportDir
		if dir == "" {
			dir = cfg.Corpus.Dir
		}

		records, _, err := corpus.LoadDir(dir)
		if err != nil {
			return eris.Wrapf(err, "export: load %s", dir)
		}

		filter := export.Filter{
			Country: exportCountry,
			Domain:  exportDomain,
			Status:  exportStatus,
		}
		records = filter.Apply(records)
		if len(records) == 0 {
			return eris.New("export: no cases match the given filters")
		}

		out := os.Stdout
		if exportOutput != "" {
			f, err := os.Create(exportOutput)
			if err != nil {
				return eris.Wrapf(err, "export: create %s", exportOutput)
			}
			defer f.Close() //nolint:errcheck
			out = f
		}

		opts := export.Options{IncludeMetadata: !exportNoMetadata}

		switch exportFormat {
		case "jsonl":
			return export.WriteJSONL(out, records, opts)
		case "csv":
			return export.WriteCSV(out, records, opts)
		case "xlsx":
			return export.WriteXLSX(out, records, opts)
		default:
			return eris.Errorf("export: unknown format %q (want jsonl, csv, or xlsx)", exportFormat)
		}
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportDir, "dir", "", "corpus directory (default from config)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "jsonl", "output format: jsonl, csv, or xlsx")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
	exportCmd.Flags().StringVar(&exportCountry, "filter-country", "", "filter by two-letter country code")
	exportCmd.Flags().StringVar(&exportDomain, "filter-domain", "", "filter by legal domain")
	exportCmd.Flags().StringVar(&exportStatus, "filter-status", "", "filter by validation status")
	exportCmd.Flags().BoolVar(&exportNoMetadata, "no-metadata", false, "omit metadata fields from the export")
	rootCmd.AddCommand(exportCmd)
}
