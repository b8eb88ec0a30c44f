package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/yaoqiang/voxwords/internal/pipeline"
)

// dbPinger defines the minimal interface for card store health checks.
type dbPinger interface {
	Ping(ctx context.Context) error
}

type pipelineStatus interface {
	Status() pipeline.Status
}

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	db      dbPinger
	pipe    pipelineStatus
	version string
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(db dbPinger, pipe pipelineStatus, version string) *HealthHandler {
	return &HealthHandler{db: db, pipe: pipe, version: version}
}

// HealthResponse is the JSON response for /health and /ready.
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus is the status of an individual component.
type CompStatus struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// Live is the liveness probe. Always returns 200.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// Ready is the readiness probe. Pings the card store: 200 if OK, 503 if not.
// An unconfigured pipeline is a normal state and does not affect readiness.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:    "down",
			Timestamp: time.Now(),
		})
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// Health is the full health check. Pings the store with latency measurement,
// reports the translation pipeline and includes version.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	components := make(map[string]CompStatus)
	overallStatus := "ok"

	start := time.Now()
	err := h.db.Ping(ctx)
	latency := time.Since(start)

	if err != nil {
		components["database"] = CompStatus{Status: "down"}
		overallStatus = "down"
	} else {
		components["database"] = CompStatus{
			Status:  "ok",
			Latency: latency.String(),
		}
	}

	if h.pipe != nil {
		components["translation"] = translationStatus(h.pipe.Status())
	}

	status := http.StatusOK
	if overallStatus != "ok" {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, HealthResponse{
		Status:     overallStatus,
		Version:    h.version,
		Components: components,
		Timestamp:  time.Now(),
	})
}

func translationStatus(s pipeline.Status) CompStatus {
	switch {
	case !s.Configured:
		return CompStatus{Status: "unconfigured"}
	case s.Consumers == 0:
		return CompStatus{Status: "detached", Detail: fmt.Sprintf("%s queued=%d", s.Pair, s.Queued)}
	default:
		return CompStatus{
			Status: "ok",
			Detail: fmt.Sprintf("%s epoch=%d queued=%d pending=%d", s.Pair, s.Epoch, s.Queued, s.Pending),
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
