package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"regexp"
	"strings"
)

// Unit is the measurement unit of a gap quantification.
type Unit string

const (
	UnitPercent Unit = "percent"
	UnitCount   Unit = "count"
	UnitRate    Unit = "rate"
)

// ValidUnit reports whether u is a known unit.
func ValidUnit(u Unit) bool {
	switch u {
	case UnitPercent, UnitCount, UnitRate:
		return true
	}
	return false
}

// Confidence is the contributor-declared confidence in a quantification.
type Confidence string

const (
	ConfidenceHigh       Confidence = "high"
	ConfidenceMedium     Confidence = "medium"
	ConfidenceLow        Confidence = "low"
	ConfidenceEstimation Confidence = "estimation"
)

// ValidConfidence reports whether c is a known confidence level.
func ValidConfidence(c Confidence) bool {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow, ConfidenceEstimation:
		return true
	}
	return false
}

// CaseIDPattern matches case identifiers like AR-LAB-001.
var CaseIDPattern = regexp.MustCompile(`^[A-Z]{2}-[A-Z][A-Z0-9]*-[0-9]{3}$`)

// GapMechanismVocabulary is the closed set of accepted gap mechanism types.
var GapMechanismVocabulary = map[string]bool{
	"administrative_burden": true,
	"enforcement_capacity":  true,
	"economic_incentives":   true,
	"social_norms":          true,
	"corruption":            true,
	"resource_constraints":  true,
	"political_influence":   true,
	"technical_complexity":  true,
	"geographic_barriers":   true,
	"cultural_factors":      true,
}

// CaseRecord is one documented instance of a formal-rule/informal-practice
// divergence with a quantified metric. Records are stored file-per-case as
// JSON (or YAML) under cases/<JURISDICTION>/<domain>/<ID>.json.
type CaseRecord struct {
	ID               string           `json:"case_id" yaml:"case_id"`
	Title            string           `json:"title" yaml:"title"`
	Jurisdiction     string           `json:"jurisdiction" yaml:"jurisdiction"`
	Domain           string           `json:"legal_domain" yaml:"legal_domain"`
	SubDomain        string           `json:"sub_domain,omitempty" yaml:"sub_domain,omitempty"`
	FormalRule       FormalRule       `json:"formal_rule" yaml:"formal_rule"`
	InformalPractice InformalPractice `json:"informal_practice" yaml:"informal_practice"`
	GapMechanism     GapMechanism     `json:"gap_mechanism" yaml:"gap_mechanism"`
	EnglishAbstract  EnglishAbstract  `json:"english_abstract" yaml:"english_abstract"`
	Citations        []Citation       `json:"citations" yaml:"citations"`
	Metadata         Metadata         `json:"metadata" yaml:"metadata"`

	// SourcePath records where the case was loaded from, relative to the
	// corpus root. Not part of the canonical record content.
	SourcePath string `json:"-" yaml:"-"`
}

// FormalRule describes the written rule side of the gap.
type FormalRule struct {
	Text          string `json:"text" yaml:"text"`
	Source        string `json:"source" yaml:"source"`
	Citation      string `json:"citation" yaml:"citation"`
	EnactmentDate string `json:"enactment_date,omitempty" yaml:"enactment_date,omitempty"`
}

// InformalPractice describes the observed-practice side of the gap.
type InformalPractice struct {
	Description       string            `json:"description" yaml:"description"`
	GapQuantification GapQuantification `json:"gap_quantification" yaml:"gap_quantification"`
	Citations         []Citation        `json:"citations,omitempty" yaml:"citations,omitempty"`
}

// GapQuantification carries the numeric claim at the heart of a case.
type GapQuantification struct {
	Metric              string       `json:"metric" yaml:"metric"`
	Value               *float64     `json:"value" yaml:"value"`
	Unit                Unit         `json:"unit" yaml:"unit"`
	Confidence          Confidence   `json:"confidence" yaml:"confidence"`
	EstimationRationale string       `json:"estimation_rationale,omitempty" yaml:"estimation_rationale,omitempty"`
	DataYear            int          `json:"data_year" yaml:"data_year"`
	SampleSize          *int         `json:"sample_size,omitempty" yaml:"sample_size,omitempty"`
	DataSources         []DataSource `json:"data_sources,omitempty" yaml:"data_sources,omitempty"`

	// AbsoluteCountConversion exempts a percent value from the [0,100]
	// range check when the figure was converted from an absolute count.
	AbsoluteCountConversion bool `json:"absolute_count_conversion,omitempty" yaml:"absolute_count_conversion,omitempty"`
}

// DataSource is one independent source backing the quantification. When a
// record carries several sources for the same metric, their values are
// cross-checked for conflicts.
type DataSource struct {
	Name  string   `json:"name" yaml:"name"`
	URL   string   `json:"url" yaml:"url"`
	Value *float64 `json:"value,omitempty" yaml:"value,omitempty"`
}

// GapMechanism lists the factors causing the gap.
type GapMechanism struct {
	MechanismTypes []string `json:"mechanism_types" yaml:"mechanism_types"`
	Description    string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// EnglishAbstract is the required English summary of a case.
type EnglishAbstract struct {
	Formal   string `json:"formal" yaml:"formal"`
	Informal string `json:"informal" yaml:"informal"`
	Gap      string `json:"gap" yaml:"gap"`
}

// Citation is one source reference backing a case.
type Citation struct {
	URL        string `json:"url" yaml:"url"`
	Agency     string `json:"agency,omitempty" yaml:"agency,omitempty"`
	AccessDate string `json:"access_date,omitempty" yaml:"access_date,omitempty"`
	ArchiveURL string `json:"archive_url,omitempty" yaml:"archive_url,omitempty"`
}

// Metadata carries contribution and revision bookkeeping.
type Metadata struct {
	Version          int           `json:"version" yaml:"version"`
	DateContributed  string        `json:"date_contributed" yaml:"date_contributed"`
	DateLastUpdated  string        `json:"date_last_updated,omitempty" yaml:"date_last_updated,omitempty"`
	ValidationStatus string        `json:"validation_status,omitempty" yaml:"validation_status,omitempty"`
	Languages        []string      `json:"languages" yaml:"languages"`
	RelatedCases     []string      `json:"related_cases,omitempty" yaml:"related_cases,omitempty"`
	ChangeLog        []ChangeEntry `json:"change_log,omitempty" yaml:"change_log,omitempty"`
}

// ChangeEntry documents one revision of a case.
type ChangeEntry struct {
	Version     int    `json:"version" yaml:"version"`
	Date        string `json:"date" yaml:"date"`
	Description string `json:"description" yaml:"description"`
}

// AllCitations returns the record's top-level citations followed by the
// informal-practice citations, in declaration order.
func (c *CaseRecord) AllCitations() []Citation {
	out := make([]Citation, 0, len(c.Citations)+len(c.InformalPractice.Citations))
	out = append(out, c.Citations...)
	out = append(out, c.InformalPractice.Citations...)
	return out
}

// Country returns the jurisdiction prefix of the case ID (e.g. "AR" for
// AR-LAB-001), or "" when the ID is malformed.
func (c *CaseRecord) Country() string {
	parts := strings.SplitN(c.ID, "-", 2)
	if len(parts) < 2 || len(parts[0]) != 2 {
		return ""
	}
	return parts[0]
}

// ContentHash returns the SHA-256 of the record's canonical JSON encoding.
// Two versions of a case must never share the same hash.
func (c *CaseRecord) ContentHash() string {
	data, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
