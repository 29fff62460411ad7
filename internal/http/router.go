package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"signal-relay/internal/app"
	"signal-relay/internal/relay"
	"signal-relay/internal/ws"
	"signal-relay/pkg/metrics"
)

// NewRouter wires up all HTTP routes, middleware, and handlers
func NewRouter(cfg app.Config, logger *slog.Logger, wsrv *ws.Server, hub *relay.Hub) http.Handler {
	mw := NewMiddleware(cfg, logger)

	mux := http.NewServeMux()

	// Health / readiness / metrics
	mux.Handle("/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) }))
	mux.Handle("/readyz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) }))
	mux.Handle("/metrics", metrics.Handler())

	// WebSocket endpoint
	mux.Handle("/ws", http.HandlerFunc(wsrv.ServeWS))

	// Live hub snapshot
	mux.Handle("/stats", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, hub.Stats())
	}))

	// Shared static files
	mux.Handle("/share/", http.StripPrefix("/share/", http.FileServer(http.Dir(cfg.ShareDir))))

	// Everything else is a JSON 404
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: errorMessage{Message: "not found"}})
	}))

	return mw.Wrap(mux)
}

type errorBody struct {
	Error errorMessage `json:"error"`
}

type errorMessage struct {
	Message string `json:"message"`
}

// writeJSON sends pretty-printed JSON with proper headers
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
