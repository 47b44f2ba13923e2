// Package export writes corpus records in tabular and line-oriented formats
// for downstream analysis.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/legalgapdb/gapcheck/internal/model"
)

// Filter narrows the record set before export. Empty fields match everything.
type Filter struct {
	Country string // two-letter jurisdiction prefix, e.g. "AR"
	Domain  string // legal domain, exact match
	Status  string // metadata validation status, e.g. "verified"
}

// Apply returns the records matching the filter, preserving order.
func (f Filter) Apply(records []model.CaseRecord) []model.CaseRecord {
	if f.Country == "" && f.Domain == "" && f.Status == "" {
		return records
	}
	var out []model.CaseRecord
	for i := range records {
		rec := &records[i]
		if f.Country != "" && rec.Country() != strings.ToUpper(f.Country) {
			continue
		}
		if f.Domain != "" && rec.Domain != f.Domain {
			continue
		}
		if f.Status != "" && rec.Metadata.ValidationStatus != f.Status {
			continue
		}
		out = append(out, *rec)
	}
	return out
}

// Options controls what each exporter emits.
type Options struct {
	IncludeMetadata bool
}

// WriteJSONL writes one JSON object per line.
func WriteJSONL(w io.Writer, records []model.CaseRecord, opts Options) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i := range records {
		rec := records[i]
		if !opts.IncludeMetadata {
			rec.Metadata = model.Metadata{}
		}
		if err := enc.Encode(&rec); err != nil {
			return eris.Wrapf(err, "export: encode %s", rec.ID)
		}
	}
	return nil
}

// header lists the flattened columns in output order.
var header = []string{
	"case_id", "title", "jurisdiction", "legal_domain", "sub_domain",
	"formal_rule_text", "formal_rule_source", "formal_rule_citation", "enactment_date",
	"informal_practice_text",
	"gap_metric", "gap_value", "gap_unit", "gap_confidence", "data_year", "sample_size",
	"gap_mechanism_text", "mechanism_types",
	"abstract_formal", "abstract_informal", "abstract_gap",
	"citation_count",
}

var metadataHeader = []string{
	"date_contributed", "validation_status", "version", "languages", "file_path",
}

func columns(opts Options) []string {
	cols := append([]string(nil), header...)
	if opts.IncludeMetadata {
		cols = append(cols, metadataHeader...)
	}
	return cols
}

func flatten(rec *model.CaseRecord, opts Options) []string {
	q := &rec.InformalPractice.GapQuantification
	value := ""
	if q.Value != nil {
		value = trimFloat(*q.Value)
	}
	sample := ""
	if q.SampleSize != nil {
		sample = fmt.Sprintf("%d", *q.SampleSize)
	}
	row := []string{
		rec.ID, rec.Title, rec.Jurisdiction, rec.Domain, rec.SubDomain,
		rec.FormalRule.Text, rec.FormalRule.Source, rec.FormalRule.Citation, rec.FormalRule.EnactmentDate,
		rec.InformalPractice.Description,
		q.Metric, value, string(q.Unit), string(q.Confidence), fmt.Sprintf("%d", q.DataYear), sample,
		rec.GapMechanism.Description, strings.Join(rec.GapMechanism.MechanismTypes, ", "),
		rec.EnglishAbstract.Formal, rec.EnglishAbstract.Informal, rec.EnglishAbstract.Gap,
		fmt.Sprintf("%d", len(rec.AllCitations())),
	}
	if opts.IncludeMetadata {
		row = append(row,
			rec.Metadata.DateContributed,
			rec.Metadata.ValidationStatus,
			fmt.Sprintf("%d", rec.Metadata.Version),
			strings.Join(rec.Metadata.Languages, ", "),
			rec.SourcePath,
		)
	}
	return row
}

// WriteCSV writes the records as a flattened CSV table.
func WriteCSV(w io.Writer, records []model.CaseRecord, opts Options) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns(opts)); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for i := range records {
		if err := cw.Write(flatten(&records[i], opts)); err != nil {
			return eris.Wrapf(err, "export: write csv row %s", records[i].ID)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%g", v)
	return s
}

// summaryRows builds the Summary sheet contents: total, per-country,
// per-domain, and per-status counts.
func summaryRows(records []model.CaseRecord) [][2]string {
	rows := [][2]string{{"Total Cases", fmt.Sprintf("%d", len(records))}}

	countries := map[string]int{}
	domains := map[string]int{}
	statuses := map[string]int{}
	for i := range records {
		rec := &records[i]
		if c := rec.Country(); c != "" {
			countries[c]++
		}
		domain := rec.Domain
		if domain == "" {
			domain = "Unknown"
		}
		domains[domain]++
		status := rec.Metadata.ValidationStatus
		if status == "" {
			status = "unknown"
		}
		statuses[status]++
	}
	for _, k := range sortedKeys(countries) {
		rows = append(rows, [2]string{"Cases - " + k, fmt.Sprintf("%d", countries[k])})
	}
	for _, k := range sortedKeys(domains) {
		rows = append(rows, [2]string{"Domain - " + k, fmt.Sprintf("%d", domains[k])})
	}
	for _, k := range sortedKeys(statuses) {
		rows = append(rows, [2]string{"Status - " + k, fmt.Sprintf("%d", statuses[k])})
	}
	return rows
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
