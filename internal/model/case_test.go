package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountry(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"AR-LAB-001", "AR"},
		{"MX-TAX-042", "MX"},
		{"BR-COMM2-999", "BR"},
		{"ARG-LAB-001", ""},
		{"A-LAB-001", ""},
		{"nodashes", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			rec := CaseRecord{ID: tt.id}
			assert.Equal(t, tt.want, rec.Country())
		})
	}
}

func TestCaseIDPattern(t *testing.T) {
	valid := []string{"AR-LAB-001", "MX-TAX-042", "BR-COMM2-999"}
	for _, id := range valid {
		assert.True(t, CaseIDPattern.MatchString(id), id)
	}

	invalid := []string{"ar-lab-001", "ARG-LAB-001", "AR-LAB-1", "AR-LAB-0001", "AR_LAB_001", "AR-LAB-001 "}
	for _, id := range invalid {
		assert.False(t, CaseIDPattern.MatchString(id), id)
	}
}

func TestAllCitationsOrder(t *testing.T) {
	rec := CaseRecord{
		Citations: []Citation{{URL: "https://a.example"}, {URL: "https://b.example"}},
		InformalPractice: InformalPractice{
			Citations: []Citation{{URL: "https://c.example"}},
		},
	}

	all := rec.AllCitations()
	urls := make([]string, len(all))
	for i, c := range all {
		urls[i] = c.URL
	}
	assert.Equal(t, []string{"https://a.example", "https://b.example", "https://c.example"}, urls)
}

func TestAllCitationsEmpty(t *testing.T) {
	rec := CaseRecord{}
	assert.Empty(t, rec.AllCitations())
}

func TestContentHashStable(t *testing.T) {
	rec := CaseRecord{ID: "AR-LAB-001", Title: "Unregistered employment"}
	assert.Equal(t, rec.ContentHash(), rec.ContentHash())
	assert.Len(t, rec.ContentHash(), 64)
}

func TestContentHashChangesWithContent(t *testing.T) {
	a := CaseRecord{ID: "AR-LAB-001", Title: "Unregistered employment", Metadata: Metadata{Version: 1}}
	b := a
	b.Metadata.Version = 2

	assert.NotEqual(t, a.ContentHash(), b.ContentHash())
}

func TestContentHashIgnoresSourcePath(t *testing.T) {
	a := CaseRecord{ID: "AR-LAB-001", SourcePath: "AR/labor/AR-LAB-001.json"}
	b := CaseRecord{ID: "AR-LAB-001", SourcePath: "elsewhere/AR-LAB-001.yaml"}

	assert.Equal(t, a.ContentHash(), b.ContentHash())
}

func TestValidUnit(t *testing.T) {
	for _, u := range []Unit{UnitPercent, UnitCount, UnitRate} {
		assert.True(t, ValidUnit(u), string(u))
	}
	assert.False(t, ValidUnit("ratio"))
	assert.False(t, ValidUnit(""))
}

func TestValidConfidence(t *testing.T) {
	for _, c := range []Confidence{ConfidenceHigh, ConfidenceMedium, ConfidenceLow, ConfidenceEstimation} {
		assert.True(t, ValidConfidence(c), string(c))
	}
	assert.False(t, ValidConfidence("certain"))
	assert.False(t, ValidConfidence(""))
}

func TestGapMechanismVocabulary(t *testing.T) {
	assert.True(t, GapMechanismVocabulary["enforcement_capacity"])
	assert.True(t, GapMechanismVocabulary["economic_incentives"])
	assert.False(t, GapMechanismVocabulary["bad_luck"])
}
