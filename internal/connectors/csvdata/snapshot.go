package csvdata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"go-pdm-fleet-dashboard/internal/fleet"
)

var snapshotRequiredColumns = []string{"asset_id", "predicted_RUL", "risk_bucket", "RMS", "Kurtosis", "Fault_Energy"}

func readSnapshotFile(path string) ([]fleet.SnapshotRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("snapshot header: %w", err)
	}
	cols, err := indexColumns(header, snapshotRequiredColumns)
	if err != nil {
		return nil, fmt.Errorf("snapshot file %s: %w", path, err)
	}

	out := make([]fleet.SnapshotRow, 0, 256)
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("snapshot record: %w", err)
		}

		out = append(out, fleet.SnapshotRow{
			AssetID:      field(record, cols["asset_id"]),
			RiskBucket:   field(record, cols["risk_bucket"]),
			PredictedRUL: parseFloatOrNaN(field(record, cols["predicted_RUL"])),
			RMS:          parseOptionalFloat(field(record, cols["RMS"])),
			Kurtosis:     parseOptionalFloat(field(record, cols["Kurtosis"])),
			FaultEnergy:  parseOptionalFloat(field(record, cols["Fault_Energy"])),
		})
	}
	return out, nil
}

func indexColumns(header, required []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}
	return idx, nil
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseFloatOrNaN(raw string) float64 {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func parseOptionalFloat(raw string) *float64 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}
