package httpx

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal-relay/internal/app"
	"signal-relay/internal/relay"
	"signal-relay/internal/ws"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := app.Config{
		Env:       "test",
		HTTPAddr:  ":0",
		ShareDir:  t.TempDir(),
		CORSAllow: []string{"*"},
		RateLimit: 1000,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	hub := relay.New(logger)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	return NewRouter(cfg, logger, ws.NewServer(logger, hub), hub)
}

func TestRouter_Health(t *testing.T) {
	router := testRouter(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "1.2.3.4:5"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRouter_NotFoundIsJSON(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/no/such/route", nil)
	req.RemoteAddr = "1.2.3.4:5"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not found", body.Error.Message)
}

func TestRouter_Stats(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	req.RemoteAddr = "1.2.3.4:5"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var s relay.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Zero(t, s.Connections)
	assert.Zero(t, s.Rooms)
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/stats", nil)
	req.RemoteAddr = "1.2.3.4:5"
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "http://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}
