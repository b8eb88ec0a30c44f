//go:build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/yaoqiang/voxwords/internal/adapter/postgres"
	"github.com/yaoqiang/voxwords/internal/adapter/postgres/card"
	"github.com/yaoqiang/voxwords/internal/adapter/postgres/testhelper"
	"github.com/yaoqiang/voxwords/internal/adapter/provider/translate"
	"github.com/yaoqiang/voxwords/internal/app"
	"github.com/yaoqiang/voxwords/internal/config"
	"github.com/yaoqiang/voxwords/internal/eventbus"
	"github.com/yaoqiang/voxwords/internal/pipeline"
	"github.com/yaoqiang/voxwords/internal/service/coordinator"
	"github.com/yaoqiang/voxwords/internal/session"
)

// ---------------------------------------------------------------------------
// testServer wraps the full-stack HTTP server for E2E tests.
// ---------------------------------------------------------------------------

type testServer struct {
	URL    string
	Client *http.Client
	Pool   *pgxpool.Pool
}

// testLogWriter adapts testing.T to io.Writer for slog.
type testLogWriter struct{ t *testing.T }

func (w testLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// feedbackToBus publishes feedback cues the way the application does.
type feedbackToBus struct{ bus *eventbus.Bus }

func (f feedbackToBus) Notify(cue coordinator.Cue) {
	f.bus.Publish(coordinator.EventFeedback, cue)
}

// ---------------------------------------------------------------------------
// setupTestServer bootstraps the full application stack backed by
// a real PostgreSQL container (shared via testhelper) and the glossary stub.
// ---------------------------------------------------------------------------

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	// 1. Get pool from testcontainers-backed helper.
	pool := testhelper.SetupTestDB(t)

	// 2. Infrastructure.
	logger := slog.New(slog.NewTextHandler(testLogWriter{t}, nil))
	clock := clockwork.NewRealClock()
	store := card.New(pool, postgres.NewTxManager(pool))

	// 3. Translation capability and pipeline.
	capability := translate.NewStub([]string{"en", "de", "fr"}, logger)
	pipe := pipeline.New(logger, capability, pipeline.RetryPolicy{
		MaxAttempts: 2,
		BaseDelay:   10 * time.Millisecond,
		Step:        10 * time.Millisecond,
		MaxDelay:    20 * time.Millisecond,
	})

	host := session.NewHost(logger, pipe, capability)
	host.Start(t.Context())
	t.Cleanup(host.Stop)

	// 4. Coordinator and event projection.
	bus := eventbus.New(clock, 100)
	svc := coordinator.NewService(logger, pipe, store, bus, feedbackToBus{bus: bus}, clock, 5*time.Second)
	t.Cleanup(svc.Shutdown)

	// 5. HTTP surface.
	cfg := &config.Config{
		CORS:   config.CORSConfig{AllowedOrigins: "*", AllowedMethods: "GET,POST,PUT", MaxAge: 60},
		Events: config.EventsConfig{BufferSize: 100, MaxWait: 2 * time.Second},
	}
	handler := app.NewHandler(app.Deps{
		Config:   cfg,
		Logger:   logger,
		Clock:    clock,
		Service:  svc,
		Events:   bus,
		Store:    store,
		Pipeline: pipe,
	})

	srv := httptest.NewServer(handler)
	t.Cleanup(func() { srv.Close() })

	return &testServer{
		URL:    srv.URL,
		Client: srv.Client(),
		Pool:   pool,
	}
}

// restRequest sends a JSON request and returns the raw response.
func restRequest(t *testing.T, ts *testServer, method, path string, body any) *http.Response {
	t.Helper()

	reqBody := bytes.NewReader(nil)
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, ts.URL+path, reqBody)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := ts.Client.Do(req)
	require.NoError(t, err)
	return resp
}

// restJSON sends a request, checks the status and decodes the body.
func restJSON(t *testing.T, ts *testServer, method, path string, body any, wantStatus int) map[string]any {
	t.Helper()

	resp := restRequest(t, ts, method, path, body)
	defer resp.Body.Close()
	require.Equal(t, wantStatus, resp.StatusCode, "%s %s", method, path)

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// waitForPhase polls GET /v1/capture until the phase kind matches.
func waitForPhase(t *testing.T, ts *testServer, kind string) map[string]any {
	t.Helper()

	var snap map[string]any
	require.Eventually(t, func() bool {
		snap = restJSON(t, ts, http.MethodGet, "/v1/capture", nil, http.StatusOK)
		phase, _ := snap["phase"].(map[string]any)
		return phase["kind"] == kind
	}, 5*time.Second, 10*time.Millisecond, "phase never reached %s", kind)
	return snap
}

func setPair(t *testing.T, ts *testServer, native, target string) {
	t.Helper()
	restJSON(t, ts, http.MethodPut, "/v1/language-pair", map[string]string{
		"native": native,
		"target": target,
	}, http.StatusOK)
}
