// Package fleet holds the tabular model and pure operations behind the
// predictive maintenance dashboard: cleaning, filtering, KPI computation,
// ranking and per-asset drill-down over the model's CSV output.
package fleet

import (
	"math"
	"sort"
)

// SnapshotRow is one asset's latest model observation. RMS, Kurtosis and
// FaultEnergy are nil when the source column was empty or non-numeric.
type SnapshotRow struct {
	AssetID      string   `json:"asset_id"`
	PredictedRUL float64  `json:"predicted_rul"`
	RiskBucket   string   `json:"risk_bucket"`
	RMS          *float64 `json:"rms"`
	Kurtosis     *float64 `json:"kurtosis"`
	FaultEnergy  *float64 `json:"fault_energy"`
}

// Filter selects snapshot rows by risk bucket membership and an inclusive
// predicted-RUL range.
type Filter struct {
	Buckets []string `json:"buckets"`
	RULMin  float64  `json:"rul_min"`
	RULMax  float64  `json:"rul_max"`
}

// BucketCount is one risk bucket and its row count in the full table.
type BucketCount struct {
	Bucket string `json:"bucket"`
	Count  int    `json:"count"`
}

// KPIs are the headline fleet metrics. AssetsMonitored, HighRiskRed and
// AvgPredictedRUL are computed over the full cleaned table; AssetsInView over
// the filtered view.
type KPIs struct {
	AssetsMonitored int           `json:"assets_monitored"`
	HighRiskRed     int           `json:"high_risk_red"`
	AvgPredictedRUL float64       `json:"avg_predicted_rul"`
	AssetsInView    int           `json:"assets_in_view"`
	BucketCounts    []BucketCount `json:"bucket_counts"`
}

// Options describes the control bounds derived from the full table: the
// distinct buckets, the distinct asset ids and the RUL range.
type Options struct {
	Buckets []string `json:"buckets"`
	Assets  []string `json:"assets"`
	RULMin  float64  `json:"rul_min"`
	RULMax  float64  `json:"rul_max"`
}

// CleanSnapshot drops rows missing asset_id or risk_bucket, or whose
// predicted_RUL did not parse numerically. The pass is order independent and
// idempotent; the result is a copy.
func CleanSnapshot(rows []SnapshotRow) []SnapshotRow {
	out := make([]SnapshotRow, 0, len(rows))
	for _, r := range rows {
		if r.AssetID == "" || r.RiskBucket == "" {
			continue
		}
		if math.IsNaN(r.PredictedRUL) || math.IsInf(r.PredictedRUL, 0) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Apply returns the rows matching the filter. The result is a copy, never an
// alias of the input.
func (f Filter) Apply(rows []SnapshotRow) []SnapshotRow {
	selected := make(map[string]struct{}, len(f.Buckets))
	for _, b := range f.Buckets {
		selected[b] = struct{}{}
	}

	out := make([]SnapshotRow, 0, len(rows))
	for _, r := range rows {
		if _, ok := selected[r.RiskBucket]; !ok {
			continue
		}
		if r.PredictedRUL < f.RULMin || r.PredictedRUL > f.RULMax {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Rank returns a copy of rows sorted ascending by predicted RUL, most urgent
// first. Ties keep input order.
func Rank(rows []SnapshotRow) []SnapshotRow {
	out := append([]SnapshotRow(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PredictedRUL < out[j].PredictedRUL
	})
	return out
}

// TopUrgent returns the n most urgent rows of the full table, regardless of
// any active filter.
func TopUrgent(rows []SnapshotRow, n int) []SnapshotRow {
	ranked := Rank(rows)
	if n < 0 {
		n = 0
	}
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// ComputeKPIs evaluates the fleet KPIs. redLabel is matched against
// risk_bucket with an exact string comparison; this deliberately differs from
// the substring classifier used in drill-down (see ClassifyBucket).
func ComputeKPIs(full, view []SnapshotRow, redLabel string) KPIs {
	red := 0
	sum := 0.0
	counts := map[string]int{}
	for _, r := range full {
		if r.RiskBucket == redLabel {
			red++
		}
		sum += r.PredictedRUL
		counts[r.RiskBucket]++
	}

	mean := 0.0
	if len(full) > 0 {
		mean = math.Round(sum/float64(len(full))*10) / 10
	}

	buckets := make([]BucketCount, 0, len(counts))
	for b, c := range counts {
		buckets = append(buckets, BucketCount{Bucket: b, Count: c})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Bucket < buckets[j].Bucket
	})

	return KPIs{
		AssetsMonitored: distinctAssets(full),
		HighRiskRed:     red,
		AvgPredictedRUL: mean,
		AssetsInView:    distinctAssets(view),
		BucketCounts:    buckets,
	}
}

// SnapshotOptions derives sidebar control bounds from the full cleaned table.
func SnapshotOptions(rows []SnapshotRow) Options {
	opts := Options{
		Buckets: []string{},
		Assets:  []string{},
	}
	if len(rows) == 0 {
		return opts
	}

	bucketSet := map[string]struct{}{}
	assetSet := map[string]struct{}{}
	opts.RULMin = rows[0].PredictedRUL
	opts.RULMax = rows[0].PredictedRUL
	for _, r := range rows {
		bucketSet[r.RiskBucket] = struct{}{}
		assetSet[r.AssetID] = struct{}{}
		if r.PredictedRUL < opts.RULMin {
			opts.RULMin = r.PredictedRUL
		}
		if r.PredictedRUL > opts.RULMax {
			opts.RULMax = r.PredictedRUL
		}
	}

	for b := range bucketSet {
		opts.Buckets = append(opts.Buckets, b)
	}
	for a := range assetSet {
		opts.Assets = append(opts.Assets, a)
	}
	sort.Strings(opts.Buckets)
	sort.Strings(opts.Assets)
	return opts
}

// LatestForAsset resolves the drill-down row for one asset. When an asset has
// multiple snapshot rows the one with the smallest predicted RUL wins.
func LatestForAsset(rows []SnapshotRow, assetID string) (SnapshotRow, bool) {
	var best SnapshotRow
	found := false
	for _, r := range rows {
		if r.AssetID != assetID {
			continue
		}
		if !found || r.PredictedRUL < best.PredictedRUL {
			best = r
			found = true
		}
	}
	return best, found
}

func distinctAssets(rows []SnapshotRow) int {
	seen := map[string]struct{}{}
	for _, r := range rows {
		seen[r.AssetID] = struct{}{}
	}
	return len(seen)
}
