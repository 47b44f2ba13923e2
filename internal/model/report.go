package model

import "time"

// Tier is the categorical confidence bucket assigned to a validated case.
type Tier string

const (
	TierHigh       Tier = "High"
	TierMedium     Tier = "Medium"
	TierLow        Tier = "Low"
	TierEstimation Tier = "Estimation"
	// TierFail marks structurally invalid cases, which never receive a
	// computed score.
	TierFail Tier = "Fail"
)

// StructuralError is a malformed or missing required field. Any structural
// error forces score 0 and tier Fail for the case, but never aborts a
// corpus-wide run.
type StructuralError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e StructuralError) Error() string {
	return e.Field + ": " + e.Message
}

// CitationStatus classifies the outcome of a reachability probe.
type CitationStatus string

const (
	CitationAccessible  CitationStatus = "accessible"   // 2xx
	CitationRedirected  CitationStatus = "redirected"   // 3xx, recorded but not degrading
	CitationClientError CitationStatus = "client_error" // 4xx
	CitationServerError CitationStatus = "server_error" // 5xx
	CitationUnreachable CitationStatus = "unreachable"  // network failure or timeout
)

// Degrades reports whether the status contributes a score deduction. Dead
// links in slowly-maintained government sites are expected, so they degrade
// the score without failing the record.
func (s CitationStatus) Degrades() bool {
	switch s {
	case CitationClientError, CitationServerError, CitationUnreachable:
		return true
	}
	return false
}

// CitationResult is the recorded outcome of one citation probe.
type CitationResult struct {
	URL       string         `json:"url"`
	Reachable bool           `json:"reachable"`
	Status    CitationStatus `json:"status"`
	HTTPCode  int            `json:"http_code,omitempty"`
	ElapsedMS int64          `json:"elapsed_ms,omitempty"`
	Detail    string         `json:"detail,omitempty"`
}

// FlagKind names an advisory statistical finding.
type FlagKind string

const (
	FlagAgingData          FlagKind = "AGING_DATA"
	FlagOutdatedData       FlagKind = "OUTDATED_DATA_REQUIRES_UPDATE"
	FlagPotentialOutlier   FlagKind = "POTENTIAL_OUTLIER"
	FlagConflictingSources FlagKind = "CONFLICTING_SOURCES"
	FlagSampleTooSmall     FlagKind = "SAMPLE_TOO_SMALL"
)

// StatisticalFlag is one advisory analyzer finding. Flags never fail a case
// on their own; each contributes a fixed deduction to the composite score.
type StatisticalFlag struct {
	Kind   FlagKind `json:"kind"`
	Detail string   `json:"detail,omitempty"`
	ZScore *float64 `json:"z_score,omitempty"`
}

// Interval is a two-sided confidence interval for the reported value,
// exposed for transparency rather than as a pass/fail gate.
type Interval struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// ValidationReport is the immutable per-case output of one validation run.
// Reports are appended to a history log keyed by case ID and run timestamp.
type ValidationReport struct {
	CaseID             string            `json:"case_id"`
	RunTimestamp       time.Time         `json:"run_timestamp"`
	StructuralErrors   []StructuralError `json:"structural_errors,omitempty"`
	CitationResults    []CitationResult  `json:"citation_results,omitempty"`
	StatisticalFlags   []StatisticalFlag `json:"statistical_flags,omitempty"`
	ConfidenceInterval *Interval         `json:"confidence_interval,omitempty"`
	ConfidenceScore    float64           `json:"confidence_score"`
	ConfidenceTier     Tier              `json:"confidence_tier"`
	Pass               bool              `json:"pass"`
}

// HasFlag reports whether the report carries a flag of the given kind.
func (r *ValidationReport) HasFlag(kind FlagKind) bool {
	for _, f := range r.StatisticalFlags {
		if f.Kind == kind {
			return true
		}
	}
	return false
}

// AggregateReport summarizes a corpus-wide run.
type AggregateReport struct {
	RunID        string             `json:"run_id"`
	RunTimestamp time.Time          `json:"run_timestamp"`
	TotalCases   int                `json:"total_cases"`
	Passed       int                `json:"passed"`
	Failed       int                `json:"failed"`
	MeanScore    float64            `json:"mean_score"`
	TierCounts   map[Tier]int       `json:"tier_counts"`
	UrgentReview []string           `json:"urgent_review"`
	Reports      []ValidationReport `json:"reports"`
}

// RunSummary is the stored header of a past corpus run, used by history
// queries without loading every per-case report.
type RunSummary struct {
	RunID        string    `json:"run_id"`
	RunTimestamp time.Time `json:"run_timestamp"`
	TotalCases   int       `json:"total_cases"`
	Passed       int       `json:"passed"`
	Failed       int       `json:"failed"`
	MeanScore    float64   `json:"mean_score"`
}
