package app

import (
	"log/slog"
	"net/http"

	"github.com/jonboulle/clockwork"

	"github.com/yaoqiang/voxwords/internal/config"
	"github.com/yaoqiang/voxwords/internal/eventbus"
	"github.com/yaoqiang/voxwords/internal/pipeline"
	"github.com/yaoqiang/voxwords/internal/service/coordinator"
	"github.com/yaoqiang/voxwords/internal/transport/middleware"
	"github.com/yaoqiang/voxwords/internal/transport/rest"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Config   *config.Config
	Logger   *slog.Logger
	Clock    clockwork.Clock
	Service  *coordinator.Service
	Events   *eventbus.Bus
	Store    CardStore
	Pipeline *pipeline.Pipeline
}

// NewHandler builds the HTTP mux with the middleware chain applied.
func NewHandler(d Deps) http.Handler {
	health := rest.NewHealthHandler(d.Store, d.Pipeline, BuildVersion())
	capture := rest.NewCaptureHandler(d.Service, d.Events, d.Config.Events.MaxWait, d.Logger)
	cards := rest.NewCardHandler(d.Service, d.Store, d.Clock, d.Logger)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", health.Live)
	mux.HandleFunc("GET /ready", health.Ready)
	mux.HandleFunc("GET /health", health.Health)

	mux.HandleFunc("PUT /v1/language-pair", capture.SetLanguagePair)
	mux.HandleFunc("GET /v1/capture", capture.State)
	mux.HandleFunc("GET /v1/capture/events", capture.Events)
	mux.HandleFunc("POST /v1/capture/final-text", capture.FinalText)
	mux.HandleFunc("POST /v1/capture/retry", capture.Retry)
	mux.HandleFunc("POST /v1/capture/dismiss", capture.Dismiss)
	mux.HandleFunc("POST /v1/capture/cancel", capture.Cancel)
	mux.HandleFunc("POST /v1/capture/confirm", capture.Confirm)

	mux.HandleFunc("GET /v1/cards", cards.List)
	mux.HandleFunc("GET /v1/cards/usage", cards.Usage)

	return middleware.Chain(
		middleware.RequestID(),
		middleware.Recovery(d.Logger),
		middleware.Logger(d.Logger),
		middleware.CORS(d.Config.CORS),
	)(mux)
}
