package stats

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legalgapdb/gapcheck/internal/model"
)

func ptrFloat64(v float64) *float64 { return &v }

func testRecords() []model.CaseRecord {
	return []model.CaseRecord{
		{
			ID: "AR-LAB-001", Jurisdiction: "Argentina", Domain: "Labor Law", SubDomain: "Employment Registration",
			InformalPractice: model.InformalPractice{
				GapQuantification: model.GapQuantification{
					Value: ptrFloat64(42), Unit: model.UnitPercent, Confidence: model.ConfidenceHigh, DataYear: 2024,
				},
				Citations: []model.Citation{{URL: "https://a.example"}, {URL: "https://b.example"}},
			},
			GapMechanism: model.GapMechanism{MechanismTypes: []string{"enforcement_capacity", "economic_incentives"}},
			Metadata: model.Metadata{
				DateContributed: "2025-01-15", ValidationStatus: "verified", Languages: []string{"es", "en"},
			},
		},
		{
			ID: "AR-TAX-001", Jurisdiction: "Argentina", Domain: "Tax Law",
			InformalPractice: model.InformalPractice{
				GapQuantification: model.GapQuantification{
					Value: ptrFloat64(65), Unit: model.UnitPercent, Confidence: model.ConfidenceMedium, DataYear: 2023,
				},
			},
			Citations:    []model.Citation{{URL: "https://c.example"}},
			GapMechanism: model.GapMechanism{MechanismTypes: []string{"economic_incentives", "enforcement_capacity"}},
			Metadata: model.Metadata{
				DateContributed: "2025-02-01", ValidationStatus: "seed_case", Languages: []string{"es", "en"},
			},
		},
		{
			ID: "MX-LAB-001", Jurisdiction: "Mexico", Domain: "Labor Law",
			InformalPractice: model.InformalPractice{
				GapQuantification: model.GapQuantification{
					Value: ptrFloat64(55), Unit: model.UnitPercent, Confidence: model.ConfidenceHigh, DataYear: 2022,
				},
			},
			Citations:    []model.Citation{{URL: "https://d.example"}},
			GapMechanism: model.GapMechanism{MechanismTypes: []string{"administrative_burden"}},
			Metadata: model.Metadata{
				DateContributed: "2024-11-20", ValidationStatus: "verified", Languages: []string{"es", "en"},
			},
		},
	}
}

var statsNow = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func TestComputeOverview(t *testing.T) {
	r := Compute(testRecords(), statsNow)

	assert.Equal(t, 3, r.Overview.TotalCases)
	assert.Equal(t, []string{"AR", "MX"}, r.Overview.Countries)
	assert.Equal(t, []string{"Labor Law", "Tax Law"}, r.Overview.Domains)
	assert.Equal(t, []string{"en", "es"}, r.Overview.Languages)
}

func TestComputeGeographic(t *testing.T) {
	r := Compute(testRecords(), statsNow)

	assert.Equal(t, map[string]int{"AR": 2, "MX": 1}, r.Geographic.ByCountry)
	assert.Equal(t, []string{"Labor Law", "Tax Law"}, r.Geographic.DomainsByCountry["AR"])

	require.NotEmpty(t, r.Geographic.CountryRankings)
	assert.Equal(t, "AR", r.Geographic.CountryRankings[0].Key)
	assert.Equal(t, 1, r.Geographic.CountryRankings[0].Rank)
	assert.InDelta(t, 66.7, r.Geographic.CountryRankings[0].Percentage, 0.01)
}

func TestComputeGaps(t *testing.T) {
	r := Compute(testRecords(), statsNow)

	require.NotNil(t, r.Gaps.GapValueStats)
	assert.Equal(t, 42.0, r.Gaps.GapValueStats.Min)
	assert.Equal(t, 65.0, r.Gaps.GapValueStats.Max)
	assert.InDelta(t, 54.0, r.Gaps.GapValueStats.Mean, 0.01)
	assert.Equal(t, 55.0, r.Gaps.GapValueStats.Median)
	assert.Equal(t, 3, r.Gaps.GapValueStats.Count)

	assert.Equal(t, map[string]int{"high": 2, "medium": 1}, r.Gaps.ConfidenceDistribution)
	assert.Equal(t, []string{"AR-TAX-001", "MX-LAB-001"}, r.Gaps.HighGapCases)
}

func TestComputeMechanisms(t *testing.T) {
	r := Compute(testRecords(), statsNow)

	assert.Equal(t, 2, r.Mechanisms.Frequency["enforcement_capacity"])
	assert.Equal(t, 2, r.Mechanisms.Frequency["economic_incentives"])
	assert.Equal(t, 1, r.Mechanisms.Frequency["administrative_burden"])

	// The two records sharing the same pair collapse into one combination.
	require.Len(t, r.Mechanisms.CommonCombinations, 1)
	assert.Equal(t, []string{"economic_incentives", "enforcement_capacity"}, r.Mechanisms.CommonCombinations[0].Mechanisms)
	assert.Equal(t, 2, r.Mechanisms.CommonCombinations[0].Count)
}

func TestComputeTemporal(t *testing.T) {
	r := Compute(testRecords(), statsNow)

	assert.Equal(t, map[int]int{2024: 1, 2025: 2}, r.Temporal.ContributionTimeline)
	assert.Equal(t, 2022, r.Temporal.OldestDataYear)
	assert.Equal(t, 2024, r.Temporal.NewestDataYear)
}

func TestComputeQuality(t *testing.T) {
	r := Compute(testRecords(), statsNow)

	assert.Equal(t, map[string]int{"verified": 2, "seed_case": 1}, r.Quality.ValidationStatusDistribution)
	assert.Equal(t, 2, r.Quality.Citations.Max)
	assert.Equal(t, 1, r.Quality.Citations.Min)
	assert.Equal(t, 1, r.Quality.Citations.MultiSourceCases)
	assert.InDelta(t, 66.7, r.Quality.Score.HighConfidencePct, 0.01)
	assert.InDelta(t, 66.7, r.Quality.Score.VerifiedPct, 0.01)
	assert.InDelta(t, 33.3, r.Quality.Score.WellSourcedPct, 0.01)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, Compute(testRecords(), statsNow)))

	var back Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, 3, back.Overview.TotalCases)
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, Compute(testRecords(), statsNow)))

	out := buf.String()
	assert.Contains(t, out, "Corpus Statistics Report")
	assert.Contains(t, out, "<strong>AR</strong>")
	assert.Contains(t, out, "Labor Law")
}

func TestComputeEmptyCorpus(t *testing.T) {
	r := Compute(nil, statsNow)
	assert.Zero(t, r.Overview.TotalCases)
	assert.Nil(t, r.Gaps.GapValueStats)
}
