package corpus

import (
	"github.com/legalgapdb/gapcheck/internal/model"
)

// comparand is the slice of a record the analyzer compares against: the
// quantified gap value plus the grouping keys.
type comparand struct {
	CaseID       string
	Jurisdiction string
	Value        float64
}

// Snapshot is an immutable view of all case records at run start, grouped
// by domain. It is constructed once, before any analysis begins, and only
// read afterwards; no case may observe a partially-built snapshot.
type Snapshot struct {
	byDomain map[string][]comparand
	total    int
}

// NewSnapshot builds a snapshot from the given records. Records without a
// numeric gap value are excluded from comparison groups.
func NewSnapshot(records []model.CaseRecord) *Snapshot {
	byDomain := make(map[string][]comparand)
	for _, rec := range records {
		v := rec.InformalPractice.GapQuantification.Value
		if rec.Domain == "" || v == nil {
			continue
		}
		byDomain[rec.Domain] = append(byDomain[rec.Domain], comparand{
			CaseID:       rec.ID,
			Jurisdiction: rec.Jurisdiction,
			Value:        *v,
		})
	}
	return &Snapshot{byDomain: byDomain, total: len(records)}
}

// Comparables returns the gap values of all records in the given domain
// other than excludeID. When sameJurisdiction is non-empty, the group is
// additionally narrowed to that jurisdiction.
func (s *Snapshot) Comparables(domain, excludeID, sameJurisdiction string) []float64 {
	if s == nil {
		return nil
	}
	group := s.byDomain[domain]
	out := make([]float64, 0, len(group))
	for _, c := range group {
		if c.CaseID == excludeID {
			continue
		}
		if sameJurisdiction != "" && c.Jurisdiction != sameJurisdiction {
			continue
		}
		out = append(out, c.Value)
	}
	return out
}

// Size returns the number of records the snapshot was built from.
func (s *Snapshot) Size() int {
	if s == nil {
		return 0
	}
	return s.total
}
