package http

import (
	"fmt"
	nethttp "net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"go-pdm-fleet-dashboard/internal/config"
	"go-pdm-fleet-dashboard/internal/connectors/csvdata"
	"go-pdm-fleet-dashboard/internal/fleet"
)

func assetDetailRouter(cfg config.Config, store *csvdata.Store, log *logrus.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		trimmed := strings.TrimPrefix(r.URL.Path, "/api/v1/assets/")
		parts := strings.Split(strings.Trim(trimmed, "/"), "/")
		if len(parts) != 2 || parts[0] == "" {
			writeJSON(w, nethttp.StatusNotFound, map[string]any{"error": "not found"})
			return
		}

		assetID := parts[0]
		action := parts[1]

		switch action {
		case "summary":
			assetSummary(w, r, store, assetID)
		case "history":
			assetHistory(w, r, cfg, store, log, assetID)
		case "chart.png":
			assetChart(w, r, cfg, store, log, assetID)
		default:
			writeJSON(w, nethttp.StatusNotFound, map[string]any{"error": "not found"})
		}
	}
}

func assetSummary(w nethttp.ResponseWriter, r *nethttp.Request, store *csvdata.Store, assetID string) {
	full, ok := loadSnapshot(w, r, store)
	if !ok {
		return
	}

	row, found := fleet.LatestForAsset(full, assetID)
	if !found {
		writeJSON(w, nethttp.StatusNotFound, map[string]any{
			"error": fmt.Sprintf("no snapshot row found for asset %s", assetID),
		})
		return
	}

	class, advisory := fleet.ClassifyBucket(row.RiskBucket)
	writeJSON(w, nethttp.StatusOK, map[string]any{
		"meta": map[string]any{"asset_id": assetID},
		"data": map[string]any{
			"asset":    row,
			"action":   class,
			"advisory": advisory,
		},
	})
}

func assetHistory(w nethttp.ResponseWriter, r *nethttp.Request, cfg config.Config, store *csvdata.Store, log *logrus.Logger, assetID string) {
	series, ok := loadAssetSeries(w, r, store, log, assetID)
	if !ok {
		return
	}

	payload := map[string]any{
		"asset_id":     series.AssetID,
		"points":       series.Points,
		"has_rms":      series.HasRMS,
		"has_kurtosis": series.HasKurtosis,
	}
	if series.FailureDay != nil {
		payload["failure_day"] = *series.FailureDay
	}
	if smoothed := series.SmoothedFaultEnergy(cfg.SmoothingWindow); smoothed != nil {
		payload["smoothed"] = smoothed
		payload["smoothing_window"] = cfg.SmoothingWindow
	}

	writeJSON(w, nethttp.StatusOK, map[string]any{
		"meta": map[string]any{
			"asset_id": assetID,
			"points":   len(series.Points),
		},
		"data": payload,
	})
}

func assetChart(w nethttp.ResponseWriter, r *nethttp.Request, cfg config.Config, store *csvdata.Store, log *logrus.Logger, assetID string) {
	series, ok := loadAssetSeries(w, r, store, log, assetID)
	if !ok {
		return
	}

	q := r.URL.Query()
	opts := trendChartOptions{
		Width:        cfg.ChartWidth,
		Height:       cfg.ChartHeight,
		ShowRMS:      q.Get("rms") == "1" && series.HasRMS,
		ShowKurt:     q.Get("kurtosis") == "1" && series.HasKurtosis,
		Smooth:       q.Get("smooth") != "0",
		SmoothWindow: cfg.SmoothingWindow,
	}

	png, err := renderTrendChart(series, opts)
	if err != nil {
		writeJSON(w, nethttp.StatusInternalServerError, map[string]any{
			"error": "failed to render trend chart",
		})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(nethttp.StatusOK)
	_, _ = w.Write(png)
}

// loadAssetSeries resolves one asset's history, handling both the fatal load
// path and the per-asset "no historical data" gap.
func loadAssetSeries(w nethttp.ResponseWriter, r *nethttp.Request, store *csvdata.Store, log *logrus.Logger, assetID string) (fleet.AssetSeries, bool) {
	start := time.Now()
	table, err := store.History(r.Context())
	recordSourceLoad("history_csv", "History", time.Since(start).Seconds(), err)
	if err != nil {
		writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
			"error": "failed to load asset history: " + err.Error(),
		})
		return fleet.AssetSeries{}, false
	}

	series, found := table.SeriesForAsset(assetID)
	if !found {
		writeJSON(w, nethttp.StatusNotFound, map[string]any{
			"error": fmt.Sprintf("no historical data found for asset %s", assetID),
		})
		return fleet.AssetSeries{}, false
	}

	// The marker is optional, but an unusable failure_day value points at a
	// data problem upstream, so it is logged rather than swallowed.
	if table.HasFailureDay && series.FailureDay == nil {
		log.WithField("asset_id", assetID).Warn("failure_day present but not numeric; marker skipped")
	}
	return series, true
}
