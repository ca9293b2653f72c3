package http

import (
	"context"
	"encoding/json"
	nethttp "net/http"
	"time"

	"github.com/sirupsen/logrus"

	"go-pdm-fleet-dashboard/internal/config"
	"go-pdm-fleet-dashboard/internal/connectors/csvdata"
	viewstore "go-pdm-fleet-dashboard/internal/connectors/views"
)

// Server wraps an HTTP server, the CSV-backed data store and the optional
// saved-views store.
type Server struct {
	httpServer *nethttp.Server
	dataStore  *csvdata.Store
	viewsStore *viewstore.Store
	log        *logrus.Logger

	refresh struct {
		enabled  bool
		interval time.Duration
	}
	refreshCancel context.CancelFunc
}

// NewServer creates a configured HTTP server with v1 endpoints.
func NewServer(cfg config.Config, log *logrus.Logger) (*Server, error) {
	if log == nil {
		log = logrus.New()
	}

	dataStore := csvdata.NewStore(cfg.SnapshotCSVPath, cfg.HistoryCSVPath, log)

	var savedViews *viewstore.Store
	if cfg.ViewsSQLitePath != "" {
		store, err := viewstore.NewSQLiteStore(cfg.ViewsSQLitePath)
		if err != nil {
			return nil, err
		}
		savedViews = store
	}

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/", dashboardHandler)
	mux.HandleFunc("/favicon.ico", faviconHandler)
	mux.Handle("/metrics", metricsHandler())
	mux.HandleFunc("/api/v1/metrics/app", appMetricsSummaryHandler())
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ready", readyHandler)
	mux.HandleFunc("/api/v1/fleet/kpis", fleetKPIsHandler(cfg.RedKPILabel, dataStore))
	mux.HandleFunc("/api/v1/fleet/options", fleetOptionsHandler(dataStore))
	mux.HandleFunc("/api/v1/fleet/ranking", fleetRankingHandler(dataStore))
	mux.HandleFunc("/api/v1/fleet/top", topUrgentHandler(cfg.TopUrgentLimit, dataStore))
	mux.HandleFunc("/api/v1/fleet/export", exportHandler(dataStore))
	mux.HandleFunc("/api/v1/assets/", assetDetailRouter(cfg, dataStore, log))
	mux.HandleFunc("/api/v1/views", savedViewsRouter(savedViews))
	mux.HandleFunc("/api/v1/views/", savedViewsRouter(savedViews))
	mux.HandleFunc("/api/v1/status/services", servicesStatusHandler(dataStore, savedViews))
	mux.HandleFunc("/api/v1/settings/display", displaySettingsHandler(cfg))

	httpServer := &nethttp.Server{
		Addr:         cfg.ListenAddr,
		Handler:      loggingMiddleware(log, observabilityMiddleware(mux)),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	s := &Server{httpServer: httpServer, dataStore: dataStore, viewsStore: savedViews, log: log}
	s.refresh.enabled = cfg.RefreshEnabled
	s.refresh.interval = cfg.RefreshInterval
	return s, nil
}

// ListenAndServe starts the HTTP server and, when enabled, the background
// dataset refresher.
func (s *Server) ListenAndServe() error {
	if s.refresh.enabled {
		ctx, cancel := context.WithCancel(context.Background())
		s.refreshCancel = cancel
		go s.startRefresher(ctx)
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.refreshCancel != nil {
		s.refreshCancel()
	}
	if s.viewsStore != nil {
		_ = s.viewsStore.Close()
	}
	return s.httpServer.Shutdown(ctx)
}

// startRefresher forces a full re-read of both tables on a fixed interval so
// a long-lived dashboard session picks up regenerated model output. The loop
// is cancellable, unlike a bare sleep.
func (s *Server) startRefresher(ctx context.Context) {
	interval := s.refresh.interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.reloadDatasets(ctx); err != nil {
				s.log.WithError(err).Warn("background dataset refresh failed")
			}
		}
	}
}

// reloadDatasets drops the caches and re-reads each table, recording the load
// under its own source so snapshot and history metrics stay separate.
func (s *Server) reloadDatasets(ctx context.Context) error {
	s.dataStore.Invalidate()

	start := time.Now()
	_, snapErr := s.dataStore.Snapshot(ctx)
	recordSourceLoad("snapshot_csv", "Reload", time.Since(start).Seconds(), snapErr)

	start = time.Now()
	_, histErr := s.dataStore.History(ctx)
	recordSourceLoad("history_csv", "Reload", time.Since(start).Seconds(), histErr)

	if snapErr != nil {
		return snapErr
	}
	return histErr
}

func healthHandler(w nethttp.ResponseWriter, _ *nethttp.Request) {
	writeJSON(w, nethttp.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}

func readyHandler(w nethttp.ResponseWriter, _ *nethttp.Request) {
	writeJSON(w, nethttp.StatusOK, map[string]any{
		"status": "ready",
	})
}

func loggingMiddleware(log *logrus.Logger, next nethttp.Handler) nethttp.Handler {
	return nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: nethttp.StatusOK}
		next.ServeHTTP(rec, r)
		log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Info("request")
	})
}

func writeJSON(w nethttp.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
