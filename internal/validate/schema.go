// Package validate implements the structural schema check for case records.
// Validation accumulates every violation instead of failing fast, so a
// contributor sees the complete list in one pass.
package validate

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/legalgapdb/gapcheck/internal/model"
)

const dateLayout = "2006-01-02"

// earliestDataYear guards against typo years like 197 or 1024. Gap data
// older than this has no place in the corpus.
const earliestDataYear = 1900

// Validator checks a case record against the required structure and field
// constraints. It is pure: no I/O, no mutation of the record.
type Validator struct {
	// Now supplies the validation run time, so the data_year check is
	// reproducible in tests. Defaults to time.Now.
	Now func() time.Time
}

// New returns a Validator using the real clock.
func New() *Validator {
	return &Validator{Now: time.Now}
}

// ValidateStructure returns every structural violation found in the record.
// An empty result signals a structural pass; any non-empty result forces
// pass=false for the case regardless of downstream checks.
func (v *Validator) ValidateStructure(rec *model.CaseRecord) []model.StructuralError {
	var errs []model.StructuralError
	add := func(field, format string, args ...any) {
		errs = append(errs, model.StructuralError{
			Field:   field,
			Message: fmt.Sprintf(format, args...),
		})
	}

	// (a) presence of required fields.
	if rec.ID == "" {
		add("case_id", "required field is missing")
	}
	if rec.Title == "" {
		add("title", "required field is missing")
	}
	if rec.Jurisdiction == "" {
		add("jurisdiction", "required field is missing")
	}
	if rec.Domain == "" {
		add("legal_domain", "required field is missing")
	}
	if rec.FormalRule.Text == "" {
		add("formal_rule.text", "required field is missing")
	}
	if rec.FormalRule.Citation == "" {
		add("formal_rule.citation", "required field is missing")
	}

	q := rec.InformalPractice.GapQuantification
	if q.Metric == "" {
		add("informal_practice.gap_quantification.metric", "required field is missing")
	}
	if q.Value == nil {
		add("informal_practice.gap_quantification.value", "required field is missing")
	}
	if q.Unit == "" {
		add("informal_practice.gap_quantification.unit", "required field is missing")
	}
	if q.Confidence == "" {
		add("informal_practice.gap_quantification.confidence", "required field is missing")
	}
	if q.DataYear == 0 {
		add("informal_practice.gap_quantification.data_year", "required field is missing")
	}

	if rec.EnglishAbstract.Formal == "" || rec.EnglishAbstract.Informal == "" || rec.EnglishAbstract.Gap == "" {
		add("english_abstract", "formal, informal and gap summaries are all required")
	}

	if len(rec.AllCitations()) == 0 {
		add("citations", "at least one citation is required")
	}

	// (b) type/range and enum conformance.
	if q.Unit != "" && !model.ValidUnit(q.Unit) {
		add("informal_practice.gap_quantification.unit", "unknown unit %q (expected percent, count or rate)", q.Unit)
	}
	if q.Confidence != "" && !model.ValidConfidence(q.Confidence) {
		add("informal_practice.gap_quantification.confidence", "unknown confidence %q", q.Confidence)
	}
	if q.Value != nil && q.Unit == model.UnitPercent && !q.AbsoluteCountConversion {
		if *q.Value < 0 || *q.Value > 100 {
			add("informal_practice.gap_quantification.value", "percent value %.2f outside [0, 100]", *q.Value)
		}
	}
	if q.SampleSize != nil && *q.SampleSize <= 0 {
		add("informal_practice.gap_quantification.sample_size", "sample size must be positive, got %d", *q.SampleSize)
	}

	for i, c := range rec.AllCitations() {
		field := fmt.Sprintf("citations[%d].url", i)
		if c.URL == "" {
			add(field, "citation URL is required")
			continue
		}
		if !validURL(c.URL) {
			add(field, "malformed URL %q", c.URL)
		}
		if c.ArchiveURL != "" && !validURL(c.ArchiveURL) {
			add(fmt.Sprintf("citations[%d].archive_url", i), "malformed URL %q", c.ArchiveURL)
		}
		if c.AccessDate != "" {
			if _, err := time.Parse(dateLayout, c.AccessDate); err != nil {
				add(fmt.Sprintf("citations[%d].access_date", i), "unparseable date %q", c.AccessDate)
			}
		}
	}

	if rec.FormalRule.Citation != "" && !validURL(rec.FormalRule.Citation) {
		add("formal_rule.citation", "malformed URL %q", rec.FormalRule.Citation)
	}
	if rec.FormalRule.EnactmentDate != "" {
		if _, err := time.Parse(dateLayout, rec.FormalRule.EnactmentDate); err != nil {
			add("formal_rule.enactment_date", "unparseable date %q", rec.FormalRule.EnactmentDate)
		}
	}

	// (c) id format and file naming.
	if rec.ID != "" {
		if !model.CaseIDPattern.MatchString(rec.ID) {
			add("case_id", "invalid format %q (expected XX-DOMAIN-NNN, e.g. AR-LAB-001)", rec.ID)
		}
		if rec.SourcePath != "" {
			base := filepath.Base(rec.SourcePath)
			name := strings.TrimSuffix(base, filepath.Ext(base))
			if name != rec.ID {
				add("case_id", "file name %q does not match case_id %q", base, rec.ID)
			}
		}
	}
	for i, related := range rec.Metadata.RelatedCases {
		if !model.CaseIDPattern.MatchString(related) {
			add(fmt.Sprintf("metadata.related_cases[%d]", i), "invalid case ID %q", related)
		}
	}

	// (d) cross-field rules.
	if q.Confidence == model.ConfidenceEstimation && strings.TrimSpace(q.EstimationRationale) == "" {
		add("informal_practice.gap_quantification.estimation_rationale",
			"confidence=estimation requires an explicit rationale")
	}
	for i, m := range rec.GapMechanism.MechanismTypes {
		if !model.GapMechanismVocabulary[m] {
			add(fmt.Sprintf("gap_mechanism.mechanism_types[%d]", i), "unknown mechanism %q", m)
		}
	}
	if len(rec.Metadata.Languages) > 0 && !containsString(rec.Metadata.Languages, "en") {
		add("metadata.languages", "English ('en') must be listed: the english_abstract is mandatory")
	}
	errs = append(errs, v.validateMetadataDates(rec.Metadata)...)

	// (e) data year bounds relative to the run clock.
	if q.DataYear != 0 {
		currentYear := v.now().Year()
		if q.DataYear > currentYear {
			add("informal_practice.gap_quantification.data_year",
				"data_year %d is in the future (current year %d)", q.DataYear, currentYear)
		}
		if q.DataYear < earliestDataYear {
			add("informal_practice.gap_quantification.data_year",
				"suspicious data_year %d", q.DataYear)
		}
	}

	if rec.Metadata.Version < 1 {
		add("metadata.version", "version must be >= 1, got %d", rec.Metadata.Version)
	}

	return errs
}

func (v *Validator) validateMetadataDates(md model.Metadata) []model.StructuralError {
	var errs []model.StructuralError

	var contributed, updated time.Time
	var contribOK, updateOK bool

	if md.DateContributed == "" {
		errs = append(errs, model.StructuralError{
			Field:   "metadata.date_contributed",
			Message: "required field is missing",
		})
	} else if t, err := time.Parse(dateLayout, md.DateContributed); err != nil {
		errs = append(errs, model.StructuralError{
			Field:   "metadata.date_contributed",
			Message: fmt.Sprintf("unparseable date %q", md.DateContributed),
		})
	} else {
		contributed, contribOK = t, true
	}

	if md.DateLastUpdated != "" {
		if t, err := time.Parse(dateLayout, md.DateLastUpdated); err != nil {
			errs = append(errs, model.StructuralError{
				Field:   "metadata.date_last_updated",
				Message: fmt.Sprintf("unparseable date %q", md.DateLastUpdated),
			})
		} else {
			updated, updateOK = t, true
		}
	}

	if contribOK && updateOK && updated.Before(contributed) {
		errs = append(errs, model.StructuralError{
			Field: "metadata.date_last_updated",
			Message: fmt.Sprintf("date_last_updated %s precedes date_contributed %s",
				md.DateLastUpdated, md.DateContributed),
		})
	}

	return errs
}

func (v *Validator) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
