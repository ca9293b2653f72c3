package http

import (
	"fmt"
	"net/http"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

var (
	appStartedAtUnix = time.Now().Unix()
	inFlightRequests int64
	metricsMu        sync.Mutex
	httpSeries       = map[httpMetricKey]*httpMetricSeries{}
	sourceSeries     = map[sourceMetricKey]*sourceMetricSeries{}
	exportRunSeries  = map[exportRunMetricKey]*exportRunMetricSeries{}
)

func metricsHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

		metricsMu.Lock()
		keys := make([]httpMetricKey, 0, len(httpSeries))
		for k := range httpSeries {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			if keys[i].Method != keys[j].Method {
				return keys[i].Method < keys[j].Method
			}
			if keys[i].Path != keys[j].Path {
				return keys[i].Path < keys[j].Path
			}
			return keys[i].Status < keys[j].Status
		})
		httpSnapshot := make([]struct {
			Key    httpMetricKey
			Series httpMetricSeries
		}, 0, len(keys))
		for _, k := range keys {
			httpSnapshot = append(httpSnapshot, struct {
				Key    httpMetricKey
				Series httpMetricSeries
			}{Key: k, Series: *httpSeries[k]})
		}

		srcKeys := make([]sourceMetricKey, 0, len(sourceSeries))
		for k := range sourceSeries {
			srcKeys = append(srcKeys, k)
		}
		sort.Slice(srcKeys, func(i, j int) bool {
			if srcKeys[i].Source != srcKeys[j].Source {
				return srcKeys[i].Source < srcKeys[j].Source
			}
			return srcKeys[i].Operation < srcKeys[j].Operation
		})
		srcSnapshot := make([]struct {
			Key    sourceMetricKey
			Series sourceMetricSeries
		}, 0, len(srcKeys))
		for _, k := range srcKeys {
			srcSnapshot = append(srcSnapshot, struct {
				Key    sourceMetricKey
				Series sourceMetricSeries
			}{k, *sourceSeries[k]})
		}

		exportKeys := make([]exportRunMetricKey, 0, len(exportRunSeries))
		for k := range exportRunSeries {
			exportKeys = append(exportKeys, k)
		}
		sort.Slice(exportKeys, func(i, j int) bool {
			return exportKeys[i].Status < exportKeys[j].Status
		})
		exportSnapshot := make([]struct {
			Key    exportRunMetricKey
			Series exportRunMetricSeries
		}, 0, len(exportKeys))
		for _, k := range exportKeys {
			exportSnapshot = append(exportSnapshot, struct {
				Key    exportRunMetricKey
				Series exportRunMetricSeries
			}{k, *exportRunSeries[k]})
		}
		metricsMu.Unlock()

		_, _ = fmt.Fprintln(w, "# HELP pdm_fleet_ui_http_requests_total Total HTTP requests handled by this app.")
		_, _ = fmt.Fprintln(w, "# TYPE pdm_fleet_ui_http_requests_total counter")
		for _, it := range httpSnapshot {
			_, _ = fmt.Fprintf(w, "pdm_fleet_ui_http_requests_total{method=%q,path=%q,status=%q} %d\n",
				escapeLabel(it.Key.Method), escapeLabel(it.Key.Path), escapeLabel(it.Key.Status), it.Series.Count)
		}

		_, _ = fmt.Fprintln(w, "# HELP pdm_fleet_ui_http_request_duration_seconds_sum Total duration in seconds for observed requests.")
		_, _ = fmt.Fprintln(w, "# TYPE pdm_fleet_ui_http_request_duration_seconds_sum counter")
		for _, it := range httpSnapshot {
			_, _ = fmt.Fprintf(w, "pdm_fleet_ui_http_request_duration_seconds_sum{method=%q,path=%q,status=%q} %.9f\n",
				escapeLabel(it.Key.Method), escapeLabel(it.Key.Path), escapeLabel(it.Key.Status), it.Series.DurationSecondsSum)
		}

		_, _ = fmt.Fprintln(w, "# HELP pdm_fleet_ui_http_request_duration_seconds_count Number of observed requests in duration series.")
		_, _ = fmt.Fprintln(w, "# TYPE pdm_fleet_ui_http_request_duration_seconds_count counter")
		for _, it := range httpSnapshot {
			_, _ = fmt.Fprintf(w, "pdm_fleet_ui_http_request_duration_seconds_count{method=%q,path=%q,status=%q} %d\n",
				escapeLabel(it.Key.Method), escapeLabel(it.Key.Path), escapeLabel(it.Key.Status), it.Series.Count)
		}

		_, _ = fmt.Fprintln(w, "# HELP pdm_fleet_ui_http_in_flight_requests In-flight HTTP requests currently served by this app.")
		_, _ = fmt.Fprintln(w, "# TYPE pdm_fleet_ui_http_in_flight_requests gauge")
		_, _ = fmt.Fprintf(w, "pdm_fleet_ui_http_in_flight_requests %d\n", atomic.LoadInt64(&inFlightRequests))

		_, _ = fmt.Fprintln(w, "# HELP pdm_fleet_ui_source_load_duration_seconds_sum Dataset load duration sum in seconds by source/operation.")
		_, _ = fmt.Fprintln(w, "# TYPE pdm_fleet_ui_source_load_duration_seconds_sum counter")
		for _, it := range srcSnapshot {
			_, _ = fmt.Fprintf(w, "pdm_fleet_ui_source_load_duration_seconds_sum{source=%q,operation=%q} %.9f\n",
				escapeLabel(it.Key.Source), escapeLabel(it.Key.Operation), it.Series.DurationSecondsSum)
		}
		_, _ = fmt.Fprintln(w, "# HELP pdm_fleet_ui_source_load_duration_seconds_count Dataset load observation count by source/operation.")
		_, _ = fmt.Fprintln(w, "# TYPE pdm_fleet_ui_source_load_duration_seconds_count counter")
		for _, it := range srcSnapshot {
			_, _ = fmt.Fprintf(w, "pdm_fleet_ui_source_load_duration_seconds_count{source=%q,operation=%q} %d\n",
				escapeLabel(it.Key.Source), escapeLabel(it.Key.Operation), it.Series.Count)
		}
		_, _ = fmt.Fprintln(w, "# HELP pdm_fleet_ui_source_load_errors_total Dataset load errors by source/operation.")
		_, _ = fmt.Fprintln(w, "# TYPE pdm_fleet_ui_source_load_errors_total counter")
		for _, it := range srcSnapshot {
			_, _ = fmt.Fprintf(w, "pdm_fleet_ui_source_load_errors_total{source=%q,operation=%q} %d\n",
				escapeLabel(it.Key.Source), escapeLabel(it.Key.Operation), it.Series.Errors)
		}

		_, _ = fmt.Fprintln(w, "# HELP pdm_fleet_ui_export_runs_total Filtered snapshot export count by status.")
		_, _ = fmt.Fprintln(w, "# TYPE pdm_fleet_ui_export_runs_total counter")
		for _, it := range exportSnapshot {
			_, _ = fmt.Fprintf(w, "pdm_fleet_ui_export_runs_total{status=%q} %d\n", escapeLabel(it.Key.Status), it.Series.Count)
		}
		_, _ = fmt.Fprintln(w, "# HELP pdm_fleet_ui_export_run_duration_seconds_sum Export duration sum in seconds by status.")
		_, _ = fmt.Fprintln(w, "# TYPE pdm_fleet_ui_export_run_duration_seconds_sum counter")
		for _, it := range exportSnapshot {
			_, _ = fmt.Fprintf(w, "pdm_fleet_ui_export_run_duration_seconds_sum{status=%q} %.9f\n", escapeLabel(it.Key.Status), it.Series.DurationSecondsSum)
		}

		uptime := time.Now().Unix() - appStartedAtUnix
		_, _ = fmt.Fprintln(w, "# HELP pdm_fleet_ui_uptime_seconds Process uptime in seconds.")
		_, _ = fmt.Fprintln(w, "# TYPE pdm_fleet_ui_uptime_seconds gauge")
		_, _ = fmt.Fprintf(w, "pdm_fleet_ui_uptime_seconds %d\n", uptime)

		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		_, _ = fmt.Fprintln(w, "# HELP pdm_fleet_ui_runtime_goroutines Number of goroutines.")
		_, _ = fmt.Fprintln(w, "# TYPE pdm_fleet_ui_runtime_goroutines gauge")
		_, _ = fmt.Fprintf(w, "pdm_fleet_ui_runtime_goroutines %d\n", runtime.NumGoroutine())
		_, _ = fmt.Fprintln(w, "# HELP pdm_fleet_ui_runtime_memory_alloc_bytes Heap allocation bytes.")
		_, _ = fmt.Fprintln(w, "# TYPE pdm_fleet_ui_runtime_memory_alloc_bytes gauge")
		_, _ = fmt.Fprintf(w, "pdm_fleet_ui_runtime_memory_alloc_bytes %d\n", ms.Alloc)
		_, _ = fmt.Fprintln(w, "# HELP pdm_fleet_ui_runtime_gc_total Total GC runs since process start.")
		_, _ = fmt.Fprintln(w, "# TYPE pdm_fleet_ui_runtime_gc_total counter")
		_, _ = fmt.Fprintf(w, "pdm_fleet_ui_runtime_gc_total %d\n", ms.NumGC)

		if cpuSec, ok := processCPUSeconds(); ok {
			_, _ = fmt.Fprintln(w, "# HELP pdm_fleet_ui_runtime_cpu_seconds_total Total CPU time consumed by this process in seconds.")
			_, _ = fmt.Fprintln(w, "# TYPE pdm_fleet_ui_runtime_cpu_seconds_total counter")
			_, _ = fmt.Fprintf(w, "pdm_fleet_ui_runtime_cpu_seconds_total %.6f\n", cpuSec)
		}
	})
}

func appMetricsSummaryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		type endpointRow struct {
			Method  string  `json:"method"`
			Path    string  `json:"path"`
			Status  string  `json:"status"`
			Count   uint64  `json:"count"`
			AvgMS   float64 `json:"avg_ms"`
			TotalMS float64 `json:"total_ms"`
		}
		type sourceRow struct {
			Source    string  `json:"source"`
			Operation string  `json:"operation"`
			Count     uint64  `json:"count"`
			Errors    uint64  `json:"errors"`
			AvgMS     float64 `json:"avg_ms"`
		}

		metricsMu.Lock()
		httpRows := make([]endpointRow, 0, len(httpSeries))
		for k, s := range httpSeries {
			avg := 0.0
			if s.Count > 0 {
				avg = (s.DurationSecondsSum / float64(s.Count)) * 1000.0
			}
			httpRows = append(httpRows, endpointRow{
				Method:  k.Method,
				Path:    k.Path,
				Status:  k.Status,
				Count:   s.Count,
				AvgMS:   avg,
				TotalMS: s.DurationSecondsSum * 1000.0,
			})
		}

		srcRows := make([]sourceRow, 0, len(sourceSeries))
		totalLoadErrors := uint64(0)
		for k, s := range sourceSeries {
			avg := 0.0
			if s.Count > 0 {
				avg = (s.DurationSecondsSum / float64(s.Count)) * 1000.0
			}
			srcRows = append(srcRows, sourceRow{
				Source:    k.Source,
				Operation: k.Operation,
				Count:     s.Count,
				Errors:    s.Errors,
				AvgMS:     avg,
			})
			totalLoadErrors += s.Errors
		}
		metricsMu.Unlock()

		sort.Slice(httpRows, func(i, j int) bool { return httpRows[i].AvgMS > httpRows[j].AvgMS })
		sort.Slice(srcRows, func(i, j int) bool { return srcRows[i].AvgMS > srcRows[j].AvgMS })

		topHTTP := httpRows
		if len(topHTTP) > 5 {
			topHTTP = topHTTP[:5]
		}
		topSources := srcRows
		if len(topSources) > 5 {
			topSources = topSources[:5]
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"meta": map[string]any{
				"generated_at": time.Now().UTC(),
			},
			"data": map[string]any{
				"top_http_slowest_avg_ms":   topHTTP,
				"top_source_slowest_avg_ms": topSources,
				"errors": map[string]any{
					"source_load_total": totalLoadErrors,
				},
			},
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func observabilityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		atomic.AddInt64(&inFlightRequests, 1)
		defer atomic.AddInt64(&inFlightRequests, -1)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := normalizeMetricPath(r.URL.Path)
		sec := time.Since(start).Seconds()
		recordHTTPMetric(r.Method, route, rec.status, sec)
	})
}

func normalizeMetricPath(path string) string {
	switch {
	case path == "/":
		return "/"
	case path == "/metrics":
		return "/metrics"
	case strings.HasPrefix(path, "/api/v1/assets/") && strings.HasSuffix(path, "/summary"):
		return "/api/v1/assets/{asset_id}/summary"
	case strings.HasPrefix(path, "/api/v1/assets/") && strings.HasSuffix(path, "/history"):
		return "/api/v1/assets/{asset_id}/history"
	case strings.HasPrefix(path, "/api/v1/assets/") && strings.HasSuffix(path, "/chart.png"):
		return "/api/v1/assets/{asset_id}/chart.png"
	case strings.HasPrefix(path, "/api/v1/views/"):
		return "/api/v1/views/{id}"
	default:
		return path
	}
}

type httpMetricKey struct {
	Method string
	Path   string
	Status string
}

type httpMetricSeries struct {
	Count              uint64
	DurationSecondsSum float64
}

type sourceMetricKey struct {
	Source    string
	Operation string
}

type sourceMetricSeries struct {
	Count              uint64
	Errors             uint64
	DurationSecondsSum float64
}

type exportRunMetricKey struct {
	Status string
}

type exportRunMetricSeries struct {
	Count              uint64
	DurationSecondsSum float64
}

func recordHTTPMetric(method, path string, status int, durationSeconds float64) {
	key := httpMetricKey{
		Method: method,
		Path:   path,
		Status: fmt.Sprintf("%d", status),
	}
	metricsMu.Lock()
	defer metricsMu.Unlock()
	row, ok := httpSeries[key]
	if !ok {
		row = &httpMetricSeries{}
		httpSeries[key] = row
	}
	row.Count++
	row.DurationSecondsSum += durationSeconds
}

func recordSourceLoad(source, operation string, durationSeconds float64, err error) {
	if source == "" || operation == "" {
		return
	}
	key := sourceMetricKey{Source: source, Operation: operation}
	metricsMu.Lock()
	defer metricsMu.Unlock()
	row, ok := sourceSeries[key]
	if !ok {
		row = &sourceMetricSeries{}
		sourceSeries[key] = row
	}
	row.Count++
	row.DurationSecondsSum += durationSeconds
	if err != nil {
		row.Errors++
	}
}

func recordExportRun(status string, durationSeconds float64) {
	status = strings.TrimSpace(strings.ToLower(status))
	if status == "" {
		status = "unknown"
	}
	key := exportRunMetricKey{Status: status}
	metricsMu.Lock()
	defer metricsMu.Unlock()
	row, ok := exportRunSeries[key]
	if !ok {
		row = &exportRunMetricSeries{}
		exportRunSeries[key] = row
	}
	row.Count++
	row.DurationSecondsSum += durationSeconds
}

func escapeLabel(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, "\n", `\n`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return v
}

func processCPUSeconds() (float64, bool) {
	var ru syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &ru); err != nil {
		return 0, false
	}
	user := float64(ru.Utime.Sec) + (float64(ru.Utime.Usec) / 1_000_000.0)
	sys := float64(ru.Stime.Sec) + (float64(ru.Stime.Usec) / 1_000_000.0)
	return user + sys, true
}
