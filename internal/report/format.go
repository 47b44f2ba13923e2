package report

import (
	"fmt"
	"strings"

	"github.com/legalgapdb/gapcheck/internal/model"
)

// SummaryLine renders the one-line human-readable verdict for a case, the
// form consumed by the contribution-review workflow.
func SummaryLine(r *model.ValidationReport) string {
	verdict := "PASS"
	if !r.Pass {
		verdict = "FAIL"
	}

	reachable := 0
	for _, c := range r.CitationResults {
		if c.Reachable {
			reachable++
		}
	}

	line := fmt.Sprintf("%s: %s score=%.2f tier=%s", r.CaseID, verdict, r.ConfidenceScore, r.ConfidenceTier)
	if len(r.CitationResults) > 0 {
		line += fmt.Sprintf(" citations=%d/%d", reachable, len(r.CitationResults))
	}
	if len(r.StatisticalFlags) > 0 {
		kinds := make([]string, 0, len(r.StatisticalFlags))
		for _, f := range r.StatisticalFlags {
			kinds = append(kinds, string(f.Kind))
		}
		line += " flags=" + strings.Join(kinds, ",")
	}
	if len(r.StructuralErrors) > 0 {
		line += fmt.Sprintf(" errors=%d", len(r.StructuralErrors))
	}
	return line
}

// FormatCase renders a full human-readable report for one case.
func FormatCase(r *model.ValidationReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Validation Report: %s\n", r.CaseID)
	fmt.Fprintf(&b, "Run: %s\n\n", r.RunTimestamp.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "%s\n\n", SummaryLine(r))

	if len(r.StructuralErrors) > 0 {
		b.WriteString("## Structural Errors\n")
		for _, e := range r.StructuralErrors {
			fmt.Fprintf(&b, "- %s: %s\n", e.Field, e.Message)
		}
		b.WriteString("\n")
	}

	if len(r.CitationResults) > 0 {
		b.WriteString("## Citations\n")
		for _, c := range r.CitationResults {
			fmt.Fprintf(&b, "- %s: %s", c.URL, c.Status)
			if c.HTTPCode != 0 {
				fmt.Fprintf(&b, " (HTTP %d, %dms)", c.HTTPCode, c.ElapsedMS)
			}
			if c.Detail != "" {
				fmt.Fprintf(&b, " (%s)", c.Detail)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(r.StatisticalFlags) > 0 {
		b.WriteString("## Statistical Flags\n")
		for _, f := range r.StatisticalFlags {
			fmt.Fprintf(&b, "- %s", f.Kind)
			if f.Detail != "" {
				fmt.Fprintf(&b, ": %s", f.Detail)
			}
			if f.ZScore != nil {
				fmt.Fprintf(&b, " (z=%.2f)", *f.ZScore)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if r.ConfidenceInterval != nil {
		fmt.Fprintf(&b, "## Confidence Interval\n95%% CI: [%.2f, %.2f]\n",
			r.ConfidenceInterval.Low, r.ConfidenceInterval.High)
	}

	return b.String()
}

// FormatAggregate renders the corpus-wide summary for dashboards and CI logs.
func FormatAggregate(agg *model.AggregateReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Corpus Validation Report\n")
	fmt.Fprintf(&b, "Run: %s (%s)\n\n", agg.RunID, agg.RunTimestamp.Format("2006-01-02 15:04:05 UTC"))

	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- Cases: %d\n", agg.TotalCases)
	fmt.Fprintf(&b, "- Passed: %d\n", agg.Passed)
	fmt.Fprintf(&b, "- Failed: %d\n", agg.Failed)
	fmt.Fprintf(&b, "- Mean score: %.2f\n\n", agg.MeanScore)

	b.WriteString("## Tiers\n")
	for _, tier := range []model.Tier{model.TierHigh, model.TierMedium, model.TierLow, model.TierEstimation, model.TierFail} {
		if n := agg.TierCounts[tier]; n > 0 {
			fmt.Fprintf(&b, "- %s: %d\n", tier, n)
		}
	}
	b.WriteString("\n")

	if len(agg.UrgentReview) > 0 {
		b.WriteString("## Needs Urgent Review\n")
		for _, id := range agg.UrgentReview {
			fmt.Fprintf(&b, "- %s\n", id)
		}
		b.WriteString("\n")
	}

	for _, r := range agg.Reports {
		fmt.Fprintf(&b, "%s\n", SummaryLine(&r))
	}

	return b.String()
}
