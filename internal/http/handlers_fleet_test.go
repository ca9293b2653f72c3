package http

import (
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"go-pdm-fleet-dashboard/internal/config"
	"go-pdm-fleet-dashboard/internal/connectors/csvdata"
	"go-pdm-fleet-dashboard/internal/fleet"
)

const testSnapshotCSV = `asset_id,predicted_RUL,risk_bucket,RMS,Kurtosis,Fault_Energy
A1,5,RED - Immediate Action,2.4,3.1,9.1
A2,50,AMBER - Plan Maintenance,1.2,2.0,4.0
A3,200,GREEN - Normal,0.8,1.5,1.1
`

const testHistoryCSV = `asset_id,day,Fault_Energy,RMS,Kurtosis,failure_day
A1,1,1.0,0.8,1.1,120
A1,2,1.2,0.8,1.2,120
A1,3,1.4,0.9,1.2,120
A1,4,1.7,0.9,1.3,120
A1,5,2.1,1.0,1.4,120
A1,6,2.6,1.1,1.5,120
A1,7,3.2,1.2,1.7,120
A1,8,3.9,1.3,1.9,120
`

func testDataStore(t *testing.T) *csvdata.Store {
	t.Helper()
	dir := t.TempDir()
	snapshotPath := filepath.Join(dir, "latest_snapshot.csv")
	historyPath := filepath.Join(dir, "dataset_full.csv")
	if err := os.WriteFile(snapshotPath, []byte(testSnapshotCSV), 0o644); err != nil {
		t.Fatalf("failed to write snapshot fixture: %v", err)
	}
	if err := os.WriteFile(historyPath, []byte(testHistoryCSV), 0o644); err != nil {
		t.Fatalf("failed to write history fixture: %v", err)
	}
	log := logrus.New()
	log.SetOutput(io.Discard)
	return csvdata.NewStore(snapshotPath, historyPath, log)
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return payload
}

func TestFleetKPIsHandler(t *testing.T) {
	h := fleetKPIsHandler("RED - Immediate Action", testDataStore(t))

	req := httptest.NewRequest(nethttp.MethodGet, "/api/v1/fleet/kpis", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != nethttp.StatusOK {
		t.Fatalf("expected status %d, got %d", nethttp.StatusOK, rr.Code)
	}

	data := decodeBody(t, rr)["data"].(map[string]any)
	if got := data["assets_monitored"].(float64); got != 3 {
		t.Fatalf("expected 3 assets monitored, got %v", got)
	}
	if got := data["high_risk_red"].(float64); got != 1 {
		t.Fatalf("expected 1 red asset, got %v", got)
	}
	if got := data["avg_predicted_rul"].(float64); got != 85.0 {
		t.Fatalf("expected mean RUL 85.0, got %v", got)
	}
}

func TestFleetKPIsHandler_FilteredViewCount(t *testing.T) {
	h := fleetKPIsHandler("RED - Immediate Action", testDataStore(t))

	req := httptest.NewRequest(nethttp.MethodGet, "/api/v1/fleet/kpis?buckets=RED+-+Immediate+Action", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	data := decodeBody(t, rr)["data"].(map[string]any)
	// Headline KPIs stay computed over the full table; only the view count
	// narrows with the filter.
	if got := data["assets_monitored"].(float64); got != 3 {
		t.Fatalf("expected 3 assets monitored, got %v", got)
	}
	if got := data["assets_in_view"].(float64); got != 1 {
		t.Fatalf("expected 1 asset in view, got %v", got)
	}
}

func TestFleetRankingHandler_Ascending(t *testing.T) {
	h := fleetRankingHandler(testDataStore(t))

	req := httptest.NewRequest(nethttp.MethodGet, "/api/v1/fleet/ranking", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != nethttp.StatusOK {
		t.Fatalf("expected status %d, got %d", nethttp.StatusOK, rr.Code)
	}

	rows := decodeBody(t, rr)["data"].([]any)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	first := rows[0].(map[string]any)
	if first["asset_id"] != "A1" {
		t.Fatalf("expected most urgent asset first, got %v", first["asset_id"])
	}
}

func TestFleetRankingHandler_EmptyBucketSelection(t *testing.T) {
	h := fleetRankingHandler(testDataStore(t))

	req := httptest.NewRequest(nethttp.MethodGet, "/api/v1/fleet/ranking?buckets=", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	rows := decodeBody(t, rr)["data"].([]any)
	if len(rows) != 0 {
		t.Fatalf("expected empty view for explicit empty bucket selection, got %d rows", len(rows))
	}
}

func TestTopUrgentHandler_IgnoresFilter(t *testing.T) {
	h := topUrgentHandler(10, testDataStore(t))

	req := httptest.NewRequest(nethttp.MethodGet, "/api/v1/fleet/top?buckets=GREEN+-+Normal&limit=2", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	rows := decodeBody(t, rr)["data"].([]any)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	first := rows[0].(map[string]any)
	if first["asset_id"] != "A1" {
		t.Fatalf("expected A1 first regardless of bucket filter, got %v", first["asset_id"])
	}
}

func TestFleetOptionsHandler(t *testing.T) {
	h := fleetOptionsHandler(testDataStore(t))

	req := httptest.NewRequest(nethttp.MethodGet, "/api/v1/fleet/options", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	data := decodeBody(t, rr)["data"].(map[string]any)
	buckets := data["buckets"].([]any)
	if len(buckets) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(buckets))
	}
	if data["rul_min"].(float64) != 5 || data["rul_max"].(float64) != 200 {
		t.Fatalf("unexpected RUL range: min=%v max=%v", data["rul_min"], data["rul_max"])
	}
}

func TestExportHandler_HeadersAndContent(t *testing.T) {
	h := exportHandler(testDataStore(t))

	req := httptest.NewRequest(nethttp.MethodGet, "/api/v1/fleet/export?buckets=RED+-+Immediate+Action", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != nethttp.StatusOK {
		t.Fatalf("expected status %d, got %d", nethttp.StatusOK, rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("expected text/csv content type, got %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, fleet.ExportFilename) {
		t.Fatalf("expected fixed export filename in %q", cd)
	}

	lines := strings.Split(strings.TrimRight(rr.Body.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one row, got %d lines", len(lines))
	}
	if lines[0] != "asset_id,predicted_RUL,risk_bucket,RMS,Kurtosis,Fault_Energy" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "A1,") {
		t.Fatalf("unexpected row: %q", lines[1])
	}
}

func TestSnapshotUnavailableReturns503(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	store := csvdata.NewStore("/nonexistent/latest_snapshot.csv", "/nonexistent/dataset_full.csv", log)
	h := fleetKPIsHandler("RED - Immediate Action", store)

	req := httptest.NewRequest(nethttp.MethodGet, "/api/v1/fleet/kpis", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != nethttp.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", nethttp.StatusServiceUnavailable, rr.Code)
	}
	if decodeBody(t, rr)["error"] == nil {
		t.Fatalf("expected error field in response")
	}
}

func TestParseFilter_Defaults(t *testing.T) {
	opts := fleet.Options{
		Buckets: []string{"AMBER - Plan Maintenance", "GREEN - Normal", "RED - Immediate Action"},
		RULMin:  5,
		RULMax:  200,
	}

	filter := parseFilter(url.Values{}, opts)
	if len(filter.Buckets) != 3 {
		t.Fatalf("expected all buckets by default, got %d", len(filter.Buckets))
	}
	if filter.RULMin != 5 || filter.RULMax != 200 {
		t.Fatalf("expected full RUL range by default, got %v..%v", filter.RULMin, filter.RULMax)
	}
}

func TestParseFilter_ExplicitValues(t *testing.T) {
	opts := fleet.Options{Buckets: []string{"GREEN - Normal"}, RULMin: 0, RULMax: 500}

	q := url.Values{}
	q.Set("buckets", "RED - Immediate Action, AMBER - Plan Maintenance")
	q.Set("rul_min", "10")
	q.Set("rul_max", "90")

	filter := parseFilter(q, opts)
	if len(filter.Buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(filter.Buckets))
	}
	if filter.Buckets[0] != "RED - Immediate Action" {
		t.Fatalf("unexpected bucket: %q", filter.Buckets[0])
	}
	if filter.RULMin != 10 || filter.RULMax != 90 {
		t.Fatalf("unexpected range: %v..%v", filter.RULMin, filter.RULMax)
	}
}

func TestParseFilter_PresentButEmptyBuckets(t *testing.T) {
	opts := fleet.Options{Buckets: []string{"GREEN - Normal"}, RULMin: 0, RULMax: 500}

	q := url.Values{}
	q.Set("buckets", "")

	filter := parseFilter(q, opts)
	if len(filter.Buckets) != 0 {
		t.Fatalf("expected empty selection, got %d buckets", len(filter.Buckets))
	}
}

func TestDisplaySettingsHandler(t *testing.T) {
	cfg := config.Config{TopUrgentLimit: 10, SmoothingWindow: 7, RefreshEnabled: true, RedKPILabel: "RED - Immediate Action"}
	h := displaySettingsHandler(cfg)

	req := httptest.NewRequest(nethttp.MethodGet, "/api/v1/settings/display", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	data := decodeBody(t, rr)["data"].(map[string]any)
	if data["smoothing_window"].(float64) != 7 {
		t.Fatalf("unexpected smoothing window: %v", data["smoothing_window"])
	}
	if data["red_kpi_label"] != "RED - Immediate Action" {
		t.Fatalf("unexpected red label: %v", data["red_kpi_label"])
	}
}
