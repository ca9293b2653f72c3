package csvdata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"go-pdm-fleet-dashboard/internal/fleet"
)

var historyRequiredColumns = []string{"asset_id", "day", "Fault_Energy"}

// readHistoryFile parses the full per-asset time series. RMS, Kurtosis and
// failure_day are optional columns; rows whose day does not parse numerically
// are dropped and counted.
func readHistoryFile(path string) (fleet.HistoryTable, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return fleet.HistoryTable{}, 0, fmt.Errorf("history file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return fleet.HistoryTable{}, 0, fmt.Errorf("history header: %w", err)
	}
	cols, err := indexColumns(header, historyRequiredColumns)
	if err != nil {
		return fleet.HistoryTable{}, 0, fmt.Errorf("history file %s: %w", path, err)
	}

	rmsIdx, hasRMS := cols["RMS"]
	kurtIdx, hasKurtosis := cols["Kurtosis"]
	failureIdx, hasFailureDay := cols["failure_day"]

	table := fleet.HistoryTable{
		Rows:          make([]fleet.HistoryRow, 0, 1024),
		HasRMS:        hasRMS,
		HasKurtosis:   hasKurtosis,
		HasFailureDay: hasFailureDay,
	}
	dropped := 0
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fleet.HistoryTable{}, 0, fmt.Errorf("history record: %w", err)
		}

		day := parseFloatOrNaN(field(record, cols["day"]))
		if math.IsNaN(day) || math.IsInf(day, 0) {
			dropped++
			continue
		}

		row := fleet.HistoryRow{
			AssetID:     field(record, cols["asset_id"]),
			Day:         day,
			FaultEnergy: parseOptionalFloat(field(record, cols["Fault_Energy"])),
		}
		if hasRMS {
			row.RMS = parseOptionalFloat(field(record, rmsIdx))
		}
		if hasKurtosis {
			row.Kurtosis = parseOptionalFloat(field(record, kurtIdx))
		}
		if hasFailureDay {
			row.FailureDay = parseOptionalFloat(field(record, failureIdx))
		}
		table.Rows = append(table.Rows, row)
	}
	return table, dropped, nil
}
