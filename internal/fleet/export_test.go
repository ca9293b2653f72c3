package fleet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSnapshotCSV(t *testing.T) {
	rows := []SnapshotRow{
		{AssetID: "A1", PredictedRUL: 5, RiskBucket: "RED - Immediate Action", RMS: f(2.4), Kurtosis: f(3.1), FaultEnergy: f(9.1)},
		{AssetID: "A2", PredictedRUL: 50.5, RiskBucket: "AMBER - Plan Maintenance"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSnapshotCSV(&buf, rows))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "asset_id,predicted_RUL,risk_bucket,RMS,Kurtosis,Fault_Energy", lines[0])
	assert.Equal(t, "A1,5,RED - Immediate Action,2.4,3.1,9.1", lines[1])
	assert.Equal(t, "A2,50.5,AMBER - Plan Maintenance,,,", lines[2])
}

func TestWriteSnapshotCSVEmptyView(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSnapshotCSV(&buf, nil))
	assert.Equal(t, "asset_id,predicted_RUL,risk_bucket,RMS,Kurtosis,Fault_Energy\n", buf.String())
}
