package http

import (
	"fmt"
	nethttp "net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go-pdm-fleet-dashboard/internal/connectors/csvdata"
	"go-pdm-fleet-dashboard/internal/fleet"
)

func fleetKPIsHandler(redLabel string, store *csvdata.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		full, ok := loadSnapshot(w, r, store)
		if !ok {
			return
		}

		opts := fleet.SnapshotOptions(full)
		filter := parseFilter(r.URL.Query(), opts)
		view := filter.Apply(full)
		kpis := fleet.ComputeKPIs(full, view, redLabel)

		writeJSON(w, nethttp.StatusOK, map[string]any{
			"meta": map[string]any{
				"rows_total":   len(full),
				"rows_in_view": len(view),
				"red_label":    redLabel,
				"filter":       filter,
			},
			"data": kpis,
		})
	}
}

func fleetOptionsHandler(store *csvdata.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		full, ok := loadSnapshot(w, r, store)
		if !ok {
			return
		}

		opts := fleet.SnapshotOptions(full)
		writeJSON(w, nethttp.StatusOK, map[string]any{
			"meta": map[string]any{
				"buckets": len(opts.Buckets),
				"assets":  len(opts.Assets),
			},
			"data": opts,
		})
	}
}

func fleetRankingHandler(store *csvdata.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		full, ok := loadSnapshot(w, r, store)
		if !ok {
			return
		}

		opts := fleet.SnapshotOptions(full)
		filter := parseFilter(r.URL.Query(), opts)
		ranked := fleet.Rank(filter.Apply(full))

		writeJSON(w, nethttp.StatusOK, map[string]any{
			"meta": map[string]any{
				"count":  len(ranked),
				"filter": filter,
			},
			"data": ranked,
		})
	}
}

func topUrgentHandler(defaultLimit int, store *csvdata.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		full, ok := loadSnapshot(w, r, store)
		if !ok {
			return
		}

		limit := parseLimit(r, defaultLimit)
		// Always ranked over the full table: the top list ignores the
		// sidebar filter on purpose.
		top := fleet.TopUrgent(full, limit)

		writeJSON(w, nethttp.StatusOK, map[string]any{
			"meta": map[string]any{
				"limit": limit,
				"count": len(top),
			},
			"data": top,
		})
	}
}

func exportHandler(store *csvdata.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		full, ok := loadSnapshot(w, r, store)
		if !ok {
			recordExportRun("error", 0)
			return
		}

		opts := fleet.SnapshotOptions(full)
		filter := parseFilter(r.URL.Query(), opts)
		view := filter.Apply(full)

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fleet.ExportFilename))
		w.WriteHeader(nethttp.StatusOK)

		start := time.Now()
		err := fleet.WriteSnapshotCSV(w, view)
		status := "success"
		if err != nil {
			status = "error"
		}
		recordExportRun(status, time.Since(start).Seconds())
	}
}

// loadSnapshot fetches the cleaned snapshot table and handles the fatal-error
// path (missing or unreadable input file) uniformly.
func loadSnapshot(w nethttp.ResponseWriter, r *nethttp.Request, store *csvdata.Store) ([]fleet.SnapshotRow, bool) {
	start := time.Now()
	full, err := store.Snapshot(r.Context())
	recordSourceLoad("snapshot_csv", "Snapshot", time.Since(start).Seconds(), err)
	if err != nil {
		writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
			"error": "failed to load fleet snapshot: " + err.Error(),
		})
		return nil, false
	}
	return full, true
}

// parseFilter builds the snapshot filter from query parameters. Absent
// parameters widen to the full table (all buckets, full RUL range); a present
// but empty buckets parameter is an explicit empty selection.
func parseFilter(q url.Values, opts fleet.Options) fleet.Filter {
	filter := fleet.Filter{
		Buckets: opts.Buckets,
		RULMin:  opts.RULMin,
		RULMax:  opts.RULMax,
	}

	if q.Has("buckets") {
		raw := q.Get("buckets")
		filter.Buckets = []string{}
		for _, b := range strings.Split(raw, ",") {
			b = strings.TrimSpace(b)
			if b != "" {
				filter.Buckets = append(filter.Buckets, b)
			}
		}
	}

	if raw := strings.TrimSpace(q.Get("rul_min")); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			filter.RULMin = v
		}
	}
	if raw := strings.TrimSpace(q.Get("rul_max")); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			filter.RULMax = v
		}
	}

	return filter
}

func parseLimit(r *nethttp.Request, defaultLimit int) int {
	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err == nil && parsed > 0 && parsed <= 1000 {
			limit = parsed
		}
	}
	return limit
}
