package http

import (
	"context"
	nethttp "net/http"
	"time"

	"go-pdm-fleet-dashboard/internal/connectors/csvdata"
	viewstore "go-pdm-fleet-dashboard/internal/connectors/views"
)

func servicesStatusHandler(store *csvdata.Store, savedViews *viewstore.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
		defer cancel()

		services := map[string]any{}
		for name, st := range store.Status(ctx) {
			services[name] = st
		}
		services["views_sqlite"] = viewsStatus(ctx, savedViews)

		writeJSON(w, nethttp.StatusOK, map[string]any{
			"generated_at": time.Now().UTC(),
			"services":     services,
		})
	}
}

func viewsStatus(ctx context.Context, store *viewstore.Store) map[string]any {
	if store == nil {
		return map[string]any{"enabled": false, "ok": false, "error": "saved views sqlite store disabled"}
	}

	start := time.Now()
	err := store.Ping(ctx)
	recordSourceLoad("views_sqlite", "Ping", time.Since(start).Seconds(), err)
	if err != nil {
		return map[string]any{"enabled": true, "ok": false, "error": err.Error()}
	}
	return map[string]any{"enabled": true, "ok": true, "path": store.Path()}
}
