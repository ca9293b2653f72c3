package fleet

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func sampleRows() []SnapshotRow {
	return []SnapshotRow{
		{AssetID: "A2", PredictedRUL: 50, RiskBucket: "AMBER - Plan Maintenance", RMS: f(1.2)},
		{AssetID: "A1", PredictedRUL: 5, RiskBucket: "RED - Immediate Action", RMS: f(2.4), FaultEnergy: f(9.1)},
		{AssetID: "A3", PredictedRUL: 200, RiskBucket: "GREEN - Normal"},
	}
}

func TestCleanSnapshotDropsUnusableRows(t *testing.T) {
	rows := []SnapshotRow{
		{AssetID: "A1", PredictedRUL: 5, RiskBucket: "RED - Immediate Action"},
		{AssetID: "", PredictedRUL: 10, RiskBucket: "GREEN - Normal"},
		{AssetID: "A2", PredictedRUL: 10, RiskBucket: ""},
		{AssetID: "A3", PredictedRUL: math.NaN(), RiskBucket: "GREEN - Normal"},
		{AssetID: "A4", PredictedRUL: math.Inf(1), RiskBucket: "GREEN - Normal"},
	}

	cleaned := CleanSnapshot(rows)
	require.Len(t, cleaned, 1)
	assert.Equal(t, "A1", cleaned[0].AssetID)
}

func TestCleanSnapshotIsIdempotent(t *testing.T) {
	rows := sampleRows()
	once := CleanSnapshot(rows)
	twice := CleanSnapshot(once)
	assert.Equal(t, once, twice)
}

func TestFilterApplyInclusiveBounds(t *testing.T) {
	rows := sampleRows()
	filter := Filter{
		Buckets: []string{"RED - Immediate Action", "AMBER - Plan Maintenance"},
		RULMin:  5,
		RULMax:  50,
	}

	view := filter.Apply(rows)
	require.Len(t, view, 2)
	assert.Equal(t, "A2", view[0].AssetID)
	assert.Equal(t, "A1", view[1].AssetID)
}

func TestFilterApplyDoesNotMutateInput(t *testing.T) {
	rows := sampleRows()
	before := append([]SnapshotRow(nil), rows...)

	filter := Filter{Buckets: []string{"RED - Immediate Action"}, RULMin: 0, RULMax: 1000}
	view := filter.Apply(rows)
	view[0].AssetID = "mutated"

	assert.Equal(t, before, rows)
}

func TestFilterApplyEmptyBucketSelection(t *testing.T) {
	filter := Filter{Buckets: []string{}, RULMin: 0, RULMax: 1000}
	assert.Empty(t, filter.Apply(sampleRows()))
}

func TestRankAscendingByRUL(t *testing.T) {
	ranked := Rank(sampleRows())

	require.Len(t, ranked, 3)
	assert.Equal(t, "A1", ranked[0].AssetID)
	assert.Equal(t, "A2", ranked[1].AssetID)
	assert.Equal(t, "A3", ranked[2].AssetID)
}

func TestRankIsStableOnTies(t *testing.T) {
	rows := []SnapshotRow{
		{AssetID: "B", PredictedRUL: 10, RiskBucket: "GREEN - Normal"},
		{AssetID: "A", PredictedRUL: 10, RiskBucket: "GREEN - Normal"},
	}
	ranked := Rank(rows)
	assert.Equal(t, "B", ranked[0].AssetID)
	assert.Equal(t, "A", ranked[1].AssetID)
}

func TestTopUrgentIgnoresView(t *testing.T) {
	rows := sampleRows()

	top := TopUrgent(rows, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "A1", top[0].AssetID)
	assert.Equal(t, "A2", top[1].AssetID)

	// Shorter table than the limit: everything comes back, ranked.
	all := TopUrgent(rows, 10)
	assert.Len(t, all, 3)
}

func TestComputeKPIs(t *testing.T) {
	full := sampleRows()
	view := Filter{Buckets: []string{"RED - Immediate Action"}, RULMin: 0, RULMax: 1000}.Apply(full)

	kpis := ComputeKPIs(full, view, "RED - Immediate Action")

	assert.Equal(t, 3, kpis.AssetsMonitored)
	assert.Equal(t, 1, kpis.HighRiskRed)
	assert.Equal(t, 85.0, kpis.AvgPredictedRUL)
	assert.Equal(t, 1, kpis.AssetsInView)
}

func TestComputeKPIsRedCountIsExactMatch(t *testing.T) {
	full := []SnapshotRow{
		{AssetID: "A1", PredictedRUL: 5, RiskBucket: "RED - Immediate Action"},
		{AssetID: "A2", PredictedRUL: 6, RiskBucket: "red - immediate action"},
		{AssetID: "A3", PredictedRUL: 7, RiskBucket: "RED"},
	}

	kpis := ComputeKPIs(full, full, "RED - Immediate Action")

	// The headline counter matches the configured label byte for byte; the
	// case and spelling variants only register with the drill-down classifier.
	assert.Equal(t, 1, kpis.HighRiskRed)
	for _, r := range full {
		class, _ := ClassifyBucket(r.RiskBucket)
		assert.Equal(t, ActionUrgent, class)
	}
}

func TestComputeKPIsBucketCounts(t *testing.T) {
	full := []SnapshotRow{
		{AssetID: "A1", PredictedRUL: 1, RiskBucket: "GREEN - Normal"},
		{AssetID: "A2", PredictedRUL: 2, RiskBucket: "GREEN - Normal"},
		{AssetID: "A3", PredictedRUL: 3, RiskBucket: "RED - Immediate Action"},
	}

	kpis := ComputeKPIs(full, full, "RED - Immediate Action")
	require.Len(t, kpis.BucketCounts, 2)
	assert.Equal(t, BucketCount{Bucket: "GREEN - Normal", Count: 2}, kpis.BucketCounts[0])
	assert.Equal(t, BucketCount{Bucket: "RED - Immediate Action", Count: 1}, kpis.BucketCounts[1])
}

func TestComputeKPIsEmptyTable(t *testing.T) {
	kpis := ComputeKPIs(nil, nil, "RED - Immediate Action")
	assert.Equal(t, 0, kpis.AssetsMonitored)
	assert.Equal(t, 0.0, kpis.AvgPredictedRUL)
}

func TestSnapshotOptions(t *testing.T) {
	opts := SnapshotOptions(sampleRows())

	assert.Equal(t, []string{"AMBER - Plan Maintenance", "GREEN - Normal", "RED - Immediate Action"}, opts.Buckets)
	assert.Equal(t, []string{"A1", "A2", "A3"}, opts.Assets)
	assert.Equal(t, 5.0, opts.RULMin)
	assert.Equal(t, 200.0, opts.RULMax)
}

func TestLatestForAssetSmallestRULWins(t *testing.T) {
	rows := []SnapshotRow{
		{AssetID: "A1", PredictedRUL: 40, RiskBucket: "AMBER - Plan Maintenance"},
		{AssetID: "A1", PredictedRUL: 12, RiskBucket: "RED - Immediate Action"},
	}

	row, found := LatestForAsset(rows, "A1")
	require.True(t, found)
	assert.Equal(t, 12.0, row.PredictedRUL)

	_, found = LatestForAsset(rows, "A9")
	assert.False(t, found)
}

func TestClassifyBucket(t *testing.T) {
	cases := []struct {
		bucket string
		want   ActionClass
	}{
		{"RED - Immediate Action", ActionUrgent},
		{"red alert", ActionUrgent},
		{"RED/AMBER mixed", ActionUrgent},
		{"AMBER - Plan Maintenance", ActionPlanned},
		{"yellow watch", ActionPlanned},
		{"planned", ActionPlanned},
		{"GREEN - Normal", ActionNormal},
		{"", ActionNormal},
	}
	for _, tc := range cases {
		class, advisory := ClassifyBucket(tc.bucket)
		assert.Equal(t, tc.want, class, "bucket %q", tc.bucket)
		assert.NotEmpty(t, advisory)
	}
}
