package corpus

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/legalgapdb/gapcheck/internal/model"
)

func ptrFloat64(v float64) *float64 { return &v }

func rec(id, jurisdiction, domain string, value *float64) model.CaseRecord {
	return model.CaseRecord{
		ID:           id,
		Jurisdiction: jurisdiction,
		Domain:       domain,
		InformalPractice: model.InformalPractice{
			GapQuantification: model.GapQuantification{Value: value},
		},
	}
}

func TestSnapshotGroupsByDomain(t *testing.T) {
	snap := NewSnapshot([]model.CaseRecord{
		rec("AR-LAB-001", "Argentina", "Labor Law", ptrFloat64(42)),
		rec("MX-LAB-001", "Mexico", "Labor Law", ptrFloat64(55)),
		rec("AR-TAX-001", "Argentina", "Tax Law", ptrFloat64(30)),
	})

	assert.Equal(t, 3, snap.Size())
	assert.ElementsMatch(t, []float64{42, 55}, snap.Comparables("Labor Law", "", ""))
	assert.ElementsMatch(t, []float64{30}, snap.Comparables("Tax Law", "", ""))
	assert.Empty(t, snap.Comparables("Environmental Law", "", ""))
}

func TestSnapshotExcludesSelf(t *testing.T) {
	snap := NewSnapshot([]model.CaseRecord{
		rec("AR-LAB-001", "Argentina", "Labor Law", ptrFloat64(42)),
		rec("MX-LAB-001", "Mexico", "Labor Law", ptrFloat64(55)),
	})

	assert.ElementsMatch(t, []float64{55}, snap.Comparables("Labor Law", "AR-LAB-001", ""))
}

func TestSnapshotJurisdictionFilter(t *testing.T) {
	snap := NewSnapshot([]model.CaseRecord{
		rec("AR-LAB-001", "Argentina", "Labor Law", ptrFloat64(42)),
		rec("AR-LAB-002", "Argentina", "Labor Law", ptrFloat64(44)),
		rec("MX-LAB-001", "Mexico", "Labor Law", ptrFloat64(55)),
	})

	assert.ElementsMatch(t, []float64{42, 44}, snap.Comparables("Labor Law", "", "Argentina"))
}

func TestSnapshotSkipsRecordsWithoutValue(t *testing.T) {
	snap := NewSnapshot([]model.CaseRecord{
		rec("AR-LAB-001", "Argentina", "Labor Law", ptrFloat64(42)),
		rec("AR-LAB-002", "Argentina", "Labor Law", nil),
		rec("AR-LAB-003", "Argentina", "", ptrFloat64(10)),
	})

	assert.ElementsMatch(t, []float64{42}, snap.Comparables("Labor Law", "", ""))
	assert.Equal(t, 3, snap.Size())
}

func TestNilSnapshotIsSafe(t *testing.T) {
	var snap *Snapshot
	assert.Nil(t, snap.Comparables("Labor Law", "", ""))
	assert.Zero(t, snap.Size())
}
