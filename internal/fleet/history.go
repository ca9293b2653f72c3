package fleet

import (
	"math"
	"sort"
)

// HistoryRow is one asset/day observation from the full dataset. Pointer
// fields are nil when the column was absent or the value did not parse.
type HistoryRow struct {
	AssetID     string   `json:"asset_id"`
	Day         float64  `json:"day"`
	FaultEnergy *float64 `json:"fault_energy"`
	RMS         *float64 `json:"rms,omitempty"`
	Kurtosis    *float64 `json:"kurtosis,omitempty"`
	FailureDay  *float64 `json:"-"`
}

// HistoryTable is the parsed history dataset plus which optional columns the
// source file actually carried.
type HistoryTable struct {
	Rows          []HistoryRow
	HasRMS        bool
	HasKurtosis   bool
	HasFailureDay bool
}

// AssetSeries is one asset's chart-ready history: day ascending, rows with a
// non-numeric day already dropped at parse time.
type AssetSeries struct {
	AssetID     string       `json:"asset_id"`
	Points      []HistoryRow `json:"points"`
	HasRMS      bool         `json:"has_rms"`
	HasKurtosis bool         `json:"has_kurtosis"`
	// FailureDay is taken from the asset's first history row only; the
	// column is assumed constant per asset. Nil when the column is missing
	// or the first row's value did not parse.
	FailureDay *float64 `json:"failure_day,omitempty"`
}

// SeriesForAsset extracts and orders one asset's history. ok is false when
// the asset has no history rows at all.
func (t HistoryTable) SeriesForAsset(assetID string) (AssetSeries, bool) {
	points := make([]HistoryRow, 0)
	for _, r := range t.Rows {
		if r.AssetID == assetID {
			points = append(points, r)
		}
	}
	if len(points) == 0 {
		return AssetSeries{AssetID: assetID}, false
	}

	sort.SliceStable(points, func(i, j int) bool { return points[i].Day < points[j].Day })

	series := AssetSeries{
		AssetID:     assetID,
		Points:      points,
		HasRMS:      t.HasRMS,
		HasKurtosis: t.HasKurtosis,
	}
	if t.HasFailureDay {
		series.FailureDay = points[0].FailureDay
	}
	return series, true
}

// SmoothedFaultEnergy computes a trailing moving average of the fault energy
// signal. With fewer points than the window the overlay is omitted entirely
// (nil result), never computed with a shorter window. The first window-1
// positions are nil, matching a trailing rolling mean.
func (s AssetSeries) SmoothedFaultEnergy(window int) []*float64 {
	if window <= 0 || len(s.Points) < window {
		return nil
	}

	out := make([]*float64, len(s.Points))
	for i := window - 1; i < len(s.Points); i++ {
		sum := 0.0
		valid := true
		for j := i - window + 1; j <= i; j++ {
			v := s.Points[j].FaultEnergy
			if v == nil || math.IsNaN(*v) {
				valid = false
				break
			}
			sum += *v
		}
		if !valid {
			continue
		}
		avg := sum / float64(window)
		out[i] = &avg
	}
	return out
}
