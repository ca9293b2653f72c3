package fleet

import (
	"encoding/csv"
	"io"
	"strconv"
)

// ExportFilename is the fixed download name for the filtered snapshot export.
const ExportFilename = "predictive_maintenance_snapshot_filtered.csv"

// SnapshotColumns is the column set and order of the filtered view, which the
// CSV export reproduces exactly.
var SnapshotColumns = []string{"asset_id", "predicted_RUL", "risk_bucket", "RMS", "Kurtosis", "Fault_Energy"}

// WriteSnapshotCSV streams rows as UTF-8 CSV in the view's column order.
func WriteSnapshotCSV(w io.Writer, rows []SnapshotRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SnapshotColumns); err != nil {
		return err
	}

	for _, r := range rows {
		record := []string{
			r.AssetID,
			formatFloat(r.PredictedRUL),
			r.RiskBucket,
			formatOptional(r.RMS),
			formatOptional(r.Kurtosis),
			formatOptional(r.FaultEnergy),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
