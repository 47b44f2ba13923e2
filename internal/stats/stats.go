package stats

import (
	"sort"
	"strings"
	"time"

	"github.com/legalgapdb/gapcheck/internal/model"
)

// Report is the full corpus statistics document.
type Report struct {
	Meta       Meta       `json:"metadata"`
	Overview   Overview   `json:"overview"`
	Geographic Geographic `json:"geographic"`
	Domains    Domains    `json:"domains"`
	Gaps       Gaps       `json:"gaps"`
	Mechanisms Mechanisms `json:"mechanisms"`
	Temporal   Temporal   `json:"temporal"`
	Quality    Quality    `json:"quality"`
}

type Meta struct {
	GeneratedAt time.Time `json:"generated_at"`
	TotalCases  int       `json:"total_cases"`
	Version     string    `json:"version"`
}

type Overview struct {
	TotalCases     int      `json:"total_cases"`
	CountriesCount int      `json:"countries_count"`
	Countries      []string `json:"countries"`
	DomainsCount   int      `json:"legal_domains_count"`
	Domains        []string `json:"legal_domains"`
	LanguagesCount int      `json:"languages_count"`
	Languages      []string `json:"languages"`
}

// Ranking is one entry of a most-common ordering.
type Ranking struct {
	Key        string  `json:"key"`
	Cases      int     `json:"cases"`
	Rank       int     `json:"rank"`
	Percentage float64 `json:"percentage"`
}

type Geographic struct {
	ByCountry        map[string]int      `json:"by_country"`
	DomainsByCountry map[string][]string `json:"domains_by_country"`
	CountryRankings  []Ranking           `json:"country_rankings"`
}

type Domains struct {
	ByDomain         map[string]int      `json:"by_domain"`
	BySubDomain      map[string]int      `json:"by_subdomain"`
	CountriesByDomain map[string][]string `json:"countries_by_domain"`
	DomainRankings   []Ranking           `json:"domain_rankings"`
}

type ValueStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Count  int     `json:"count"`
}

type Gaps struct {
	GapValueStats          *ValueStats    `json:"gap_value_stats,omitempty"`
	ConfidenceDistribution map[string]int `json:"confidence_distribution"`
	UnitDistribution       map[string]int `json:"unit_distribution"`
	HighGapCases           []string       `json:"high_gap_cases"`
}

type MechanismCombo struct {
	Mechanisms []string `json:"mechanisms"`
	Count      int      `json:"count"`
}

type Mechanisms struct {
	Frequency         map[string]int   `json:"mechanism_frequency"`
	CommonCombinations []MechanismCombo `json:"common_combinations"`
	Rankings          []Ranking        `json:"mechanism_rankings"`
}

type Temporal struct {
	ContributionTimeline map[int]int `json:"contribution_timeline"`
	DataCoverageYears    map[int]int `json:"data_coverage_years"`
	OldestDataYear       int         `json:"oldest_data_year"`
	NewestDataYear       int         `json:"newest_data_year"`
}

type CitationStats struct {
	Min                 int     `json:"min_citations"`
	Max                 int     `json:"max_citations"`
	Mean                float64 `json:"mean_citations"`
	MultiSourceCases    int     `json:"cases_with_multiple_sources"`
}

type QualityScore struct {
	HighConfidencePct float64 `json:"high_confidence_percentage"`
	VerifiedPct       float64 `json:"verified_percentage"`
	WellSourcedPct    float64 `json:"well_sourced_percentage"`
}

type Quality struct {
	ValidationStatusDistribution map[string]int `json:"validation_status_distribution"`
	ConfidenceDistribution       map[string]int `json:"confidence_level_distribution"`
	Citations                    CitationStats  `json:"citation_statistics"`
	Score                        QualityScore   `json:"quality_score"`
}

// highGapThreshold marks cases whose quantified gap exceeds half of the
// affected population.
const highGapThreshold = 50.0

// Compute builds the full statistics report over the given records.
func Compute(records []model.CaseRecord, now time.Time) *Report {
	r := &Report{
		Meta: Meta{
			GeneratedAt: now.UTC(),
			TotalCases:  len(records),
			Version:     "1.0",
		},
	}
	r.Overview = computeOverview(records)
	r.Geographic = computeGeographic(records)
	r.Domains = computeDomains(records)
	r.Gaps = computeGaps(records)
	r.Mechanisms = computeMechanisms(records)
	r.Temporal = computeTemporal(records)
	r.Quality = computeQuality(records)
	return r
}

func computeOverview(records []model.CaseRecord) Overview {
	countries := map[string]bool{}
	domains := map[string]bool{}
	languages := map[string]bool{}
	for i := range records {
		rec := &records[i]
		if c := rec.Country(); c != "" {
			countries[c] = true
		}
		if rec.Domain != "" {
			domains[rec.Domain] = true
		}
		for _, lang := range rec.Metadata.Languages {
			languages[lang] = true
		}
	}
	return Overview{
		TotalCases:     len(records),
		CountriesCount: len(countries),
		Countries:      sortedKeys(countries),
		DomainsCount:   len(domains),
		Domains:        sortedKeys(domains),
		LanguagesCount: len(languages),
		Languages:      sortedKeys(languages),
	}
}

func computeGeographic(records []model.CaseRecord) Geographic {
	byCountry := map[string]int{}
	domainSets := map[string]map[string]bool{}
	for i := range records {
		rec := &records[i]
		country := rec.Country()
		if country == "" {
			continue
		}
		byCountry[country]++
		if rec.Domain != "" {
			if domainSets[country] == nil {
				domainSets[country] = map[string]bool{}
			}
			domainSets[country][rec.Domain] = true
		}
	}
	return Geographic{
		ByCountry:        byCountry,
		DomainsByCountry: setsToSorted(domainSets),
		CountryRankings:  rankings(byCountry, len(records)),
	}
}

func computeDomains(records []model.CaseRecord) Domains {
	byDomain := map[string]int{}
	bySub := map[string]int{}
	countrySets := map[string]map[string]bool{}
	for i := range records {
		rec := &records[i]
		if rec.Domain != "" {
			byDomain[rec.Domain]++
			if c := rec.Country(); c != "" {
				if countrySets[rec.Domain] == nil {
					countrySets[rec.Domain] = map[string]bool{}
				}
				countrySets[rec.Domain][c] = true
			}
		}
		if rec.SubDomain != "" {
			bySub[rec.SubDomain]++
		}
	}
	return Domains{
		ByDomain:          byDomain,
		BySubDomain:       bySub,
		CountriesByDomain: setsToSorted(countrySets),
		DomainRankings:    rankings(byDomain, len(records)),
	}
}

func computeGaps(records []model.CaseRecord) Gaps {
	var values []float64
	confidence := map[string]int{}
	units := map[string]int{}
	var highGap []string
	for i := range records {
		q := &records[i].InformalPractice.GapQuantification
		if q.Value != nil {
			values = append(values, *q.Value)
			if *q.Value > highGapThreshold {
				highGap = append(highGap, records[i].ID)
			}
		}
		if q.Confidence != "" {
			confidence[string(q.Confidence)]++
		}
		if q.Unit != "" {
			units[string(q.Unit)]++
		}
	}
	sort.Strings(highGap)
	return Gaps{
		GapValueStats:          valueStats(values),
		ConfidenceDistribution: confidence,
		UnitDistribution:       units,
		HighGapCases:           highGap,
	}
}

func computeMechanisms(records []model.CaseRecord) Mechanisms {
	freq := map[string]int{}
	combos := map[string]MechanismCombo{}
	for i := range records {
		mechs := records[i].GapMechanism.MechanismTypes
		for _, m := range mechs {
			freq[m]++
		}
		if len(mechs) > 1 {
			sorted := append([]string(nil), mechs...)
			sort.Strings(sorted)
			key := join(sorted)
			c := combos[key]
			c.Mechanisms = sorted
			c.Count++
			combos[key] = c
		}
	}
	comboList := make([]MechanismCombo, 0, len(combos))
	for _, c := range combos {
		comboList = append(comboList, c)
	}
	sort.Slice(comboList, func(i, j int) bool {
		if comboList[i].Count != comboList[j].Count {
			return comboList[i].Count > comboList[j].Count
		}
		return join(comboList[i].Mechanisms) < join(comboList[j].Mechanisms)
	})
	if len(comboList) > 5 {
		comboList = comboList[:5]
	}
	return Mechanisms{
		Frequency:          freq,
		CommonCombinations: comboList,
		Rankings:           rankings(freq, len(records)),
	}
}

func computeTemporal(records []model.CaseRecord) Temporal {
	contrib := map[int]int{}
	dataYears := map[int]int{}
	for i := range records {
		rec := &records[i]
		if t, err := time.Parse("2006-01-02", rec.Metadata.DateContributed); err == nil {
			contrib[t.Year()]++
		}
		if y := rec.InformalPractice.GapQuantification.DataYear; y > 0 {
			dataYears[y]++
		}
	}
	t := Temporal{ContributionTimeline: contrib, DataCoverageYears: dataYears}
	for y := range dataYears {
		if t.OldestDataYear == 0 || y < t.OldestDataYear {
			t.OldestDataYear = y
		}
		if y > t.NewestDataYear {
			t.NewestDataYear = y
		}
	}
	return t
}

func computeQuality(records []model.CaseRecord) Quality {
	statuses := map[string]int{}
	confidence := map[string]int{}
	counts := make([]int, 0, len(records))
	for i := range records {
		rec := &records[i]
		if s := rec.Metadata.ValidationStatus; s != "" {
			statuses[s]++
		}
		if c := rec.InformalPractice.GapQuantification.Confidence; c != "" {
			confidence[string(c)]++
		}
		counts = append(counts, len(rec.AllCitations()))
	}

	q := Quality{
		ValidationStatusDistribution: statuses,
		ConfidenceDistribution:       confidence,
	}
	if len(counts) > 0 {
		q.Citations.Min = counts[0]
		total := 0
		multi, wellSourced := 0, 0
		for _, n := range counts {
			total += n
			if n < q.Citations.Min {
				q.Citations.Min = n
			}
			if n > q.Citations.Max {
				q.Citations.Max = n
			}
			if n > 1 {
				multi++
			}
			if n >= 2 {
				wellSourced++
			}
		}
		q.Citations.Mean = round1(float64(total) / float64(len(counts)))
		q.Citations.MultiSourceCases = multi

		n := float64(len(records))
		q.Score = QualityScore{
			HighConfidencePct: round1(float64(confidence[string(model.ConfidenceHigh)]) / n * 100),
			VerifiedPct:       round1(float64(statuses["verified"]) / n * 100),
			WellSourcedPct:    round1(float64(wellSourced) / n * 100),
		}
	}
	return q
}

func valueStats(values []float64) *ValueStats {
	if len(values) == 0 {
		return nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	return &ValueStats{
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Mean:   sum / float64(len(sorted)),
		Median: sorted[len(sorted)/2],
		Count:  len(sorted),
	}
}

// rankings orders counts descending, ties broken alphabetically.
func rankings(counts map[string]int, total int) []Ranking {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	out := make([]Ranking, len(keys))
	for i, k := range keys {
		pct := 0.0
		if total > 0 {
			pct = round1(float64(counts[k]) / float64(total) * 100)
		}
		out[i] = Ranking{Key: k, Cases: counts[k], Rank: i + 1, Percentage: pct}
	}
	return out
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func setsToSorted(sets map[string]map[string]bool) map[string][]string {
	out := make(map[string][]string, len(sets))
	for k, set := range sets {
		out[k] = sortedKeys(set)
	}
	return out
}

func join(parts []string) string {
	return strings.Join(parts, "+")
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
