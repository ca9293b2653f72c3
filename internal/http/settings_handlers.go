package http

import (
	nethttp "net/http"

	"go-pdm-fleet-dashboard/internal/config"
)

func displaySettingsHandler(cfg config.Config) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		writeJSON(w, nethttp.StatusOK, map[string]any{
			"data": map[string]any{
				"top_urgent_limit":     cfg.TopUrgentLimit,
				"smoothing_window":     cfg.SmoothingWindow,
				"refresh_interval_sec": int(cfg.RefreshInterval.Seconds()),
				"refresh_enabled":      cfg.RefreshEnabled,
				"red_kpi_label":        cfg.RedKPILabel,
			},
		})
	}
}
