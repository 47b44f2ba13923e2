package export

import (
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/legalgapdb/gapcheck/internal/model"
)

// WriteXLSX writes a workbook with three sheets: the flattened cases, a
// summary of counts, and a compact per-domain breakdown.
func WriteXLSX(w io.Writer, records []model.CaseRecord, opts Options) error {
	f := xlsx.NewFile()

	cases, err := f.AddSheet("Cases")
	if err != nil {
		return eris.Wrap(err, "export: add cases sheet")
	}
	addStringRow(cases, columns(opts))
	for i := range records {
		addStringRow(cases, flatten(&records[i], opts))
	}

	summary, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}
	addStringRow(summary, []string{"Metric", "Value"})
	for _, row := range summaryRows(records) {
		addStringRow(summary, row[:])
	}

	domains, err := f.AddSheet("Domains")
	if err != nil {
		return eris.Wrap(err, "export: add domains sheet")
	}
	addStringRow(domains, []string{
		"case_id", "jurisdiction", "legal_domain", "sub_domain",
		"gap_value", "gap_unit", "confidence", "mechanisms", "validation_status",
	})
	for i := range records {
		rec := &records[i]
		q := &rec.InformalPractice.GapQuantification
		value := ""
		if q.Value != nil {
			value = trimFloat(*q.Value)
		}
		addStringRow(domains, []string{
			rec.ID, rec.Jurisdiction, rec.Domain, rec.SubDomain,
			value, string(q.Unit), string(q.Confidence),
			strings.Join(rec.GapMechanism.MechanismTypes, ", "),
			rec.Metadata.ValidationStatus,
		})
	}

	return eris.Wrap(f.Write(w), "export: write workbook")
}

func addStringRow(sheet *xlsx.Sheet, values []string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}
