package http

import (
	"encoding/json"
	nethttp "net/http"
	"strconv"
	"strings"
	"time"

	viewstore "go-pdm-fleet-dashboard/internal/connectors/views"
	"go-pdm-fleet-dashboard/internal/fleet"
)

type saveViewRequest struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Filter      fleet.Filter `json:"filter"`
}

const viewsListLimit = 200

func savedViewsRouter(store *viewstore.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if store == nil {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"error": "saved views sqlite store not available",
				"hint":  "set APP_VIEWS_SQLITE_PATH to enable saved filter views",
			})
			return
		}

		path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/views"), "/")
		if path == "" {
			switch r.Method {
			case nethttp.MethodGet:
				start := time.Now()
				items, err := store.List(r.Context(), viewsListLimit)
				recordSourceLoad("views_sqlite", "List", time.Since(start).Seconds(), err)
				if err != nil {
					writeJSON(w, nethttp.StatusInternalServerError, map[string]any{"error": "failed to list saved views"})
					return
				}
				writeJSON(w, nethttp.StatusOK, map[string]any{
					"meta": map[string]any{"count": len(items)},
					"data": items,
				})
			case nethttp.MethodPost:
				var req saveViewRequest
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": "invalid JSON body"})
					return
				}
				req.Name = strings.TrimSpace(req.Name)
				if req.Name == "" {
					writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": "view name is required"})
					return
				}
				startUpsert := time.Now()
				id, err := store.Upsert(r.Context(), req.Name, req.Description, req.Filter)
				recordSourceLoad("views_sqlite", "Upsert", time.Since(startUpsert).Seconds(), err)
				if err != nil {
					writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": err.Error()})
					return
				}
				startGet := time.Now()
				item, err := store.Get(r.Context(), id)
				recordSourceLoad("views_sqlite", "Get", time.Since(startGet).Seconds(), err)
				if err != nil {
					writeJSON(w, nethttp.StatusInternalServerError, map[string]any{"error": "view saved but failed to read it back"})
					return
				}
				writeJSON(w, nethttp.StatusOK, map[string]any{
					"meta": map[string]any{"saved": true},
					"data": item,
				})
			default:
				writeJSON(w, nethttp.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
			}
			return
		}

		id, err := strconv.ParseInt(path, 10, 64)
		if err != nil || id <= 0 {
			writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": "invalid view id"})
			return
		}
		switch r.Method {
		case nethttp.MethodGet:
			start := time.Now()
			item, err := store.Get(r.Context(), id)
			recordSourceLoad("views_sqlite", "Get", time.Since(start).Seconds(), err)
			if err != nil {
				writeJSON(w, nethttp.StatusNotFound, map[string]any{"error": "view not found"})
				return
			}
			writeJSON(w, nethttp.StatusOK, map[string]any{"data": item})
		case nethttp.MethodDelete:
			start := time.Now()
			deleted, err := store.Delete(r.Context(), id)
			recordSourceLoad("views_sqlite", "Delete", time.Since(start).Seconds(), err)
			if err != nil {
				writeJSON(w, nethttp.StatusInternalServerError, map[string]any{"error": "failed to delete view"})
				return
			}
			writeJSON(w, nethttp.StatusOK, map[string]any{
				"meta": map[string]any{"deleted": deleted, "id": id},
			})
		default:
			writeJSON(w, nethttp.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		}
	}
}
