package http

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestReloadDatasetsRecordsPerSourceMetrics(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	s := &Server{dataStore: testDataStore(t), log: log}

	metricsMu.Lock()
	snapBefore := seriesCount(sourceMetricKey{Source: "snapshot_csv", Operation: "Reload"})
	histBefore := seriesCount(sourceMetricKey{Source: "history_csv", Operation: "Reload"})
	metricsMu.Unlock()

	if err := s.reloadDatasets(context.Background()); err != nil {
		t.Fatalf("unexpected reload error: %v", err)
	}

	metricsMu.Lock()
	snapAfter := seriesCount(sourceMetricKey{Source: "snapshot_csv", Operation: "Reload"})
	histAfter := seriesCount(sourceMetricKey{Source: "history_csv", Operation: "Reload"})
	metricsMu.Unlock()

	if snapAfter != snapBefore+1 {
		t.Fatalf("expected one snapshot reload observation, got %d -> %d", snapBefore, snapAfter)
	}
	if histAfter != histBefore+1 {
		t.Fatalf("expected one history reload observation, got %d -> %d", histBefore, histAfter)
	}
}

// seriesCount reads a source series count; callers hold metricsMu.
func seriesCount(key sourceMetricKey) uint64 {
	if row, ok := sourceSeries[key]; ok {
		return row.Count
	}
	return 0
}
