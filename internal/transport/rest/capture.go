package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/yaoqiang/voxwords/internal/domain"
	"github.com/yaoqiang/voxwords/internal/eventbus"
	"github.com/yaoqiang/voxwords/internal/service/coordinator"
)

// captureService defines the coordinator operations exposed over HTTP.
type captureService interface {
	SetLanguagePair(native, target string) (domain.LanguagePair, error)
	HandleFinalText(text string) coordinator.Submission
	RetryIfPossible() bool
	DismissPreview()
	CancelInFlight(clearPreview bool)
	Confirm(ctx context.Context) (*domain.VocabularyCard, error)
	Snapshot() coordinator.Snapshot
}

type eventReader interface {
	Last() uint64
	Since(seq uint64) []eventbus.Event
	WaitSince(ctx context.Context, seq uint64) ([]eventbus.Event, error)
}

// CaptureHandler serves the speech-to-card REST endpoints.
type CaptureHandler struct {
	svc     captureService
	events  eventReader
	maxWait time.Duration
	log     *slog.Logger
}

// NewCaptureHandler creates a CaptureHandler. maxWait caps the long-poll
// duration a client may request.
func NewCaptureHandler(svc captureService, events eventReader, maxWait time.Duration, logger *slog.Logger) *CaptureHandler {
	return &CaptureHandler{
		svc:     svc,
		events:  events,
		maxWait: maxWait,
		log:     logger.With("handler", "capture"),
	}
}

// SetLanguagePair handles PUT /v1/language-pair.
func (h *CaptureHandler) SetLanguagePair(w http.ResponseWriter, r *http.Request) {
	var req pairRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	pair, err := h.svc.SetLanguagePair(req.Native, req.Target)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			writeValidationError(w, err)
			return
		}
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPairResponse(pair))
}

// FinalText handles POST /v1/capture/final-text.
func (h *CaptureHandler) FinalText(w http.ResponseWriter, r *http.Request) {
	var req finalTextRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	switch h.svc.HandleFinalText(req.Text) {
	case coordinator.SubmissionIgnored:
		w.WriteHeader(http.StatusNoContent)
	case coordinator.SubmissionBusy:
		writeError(w, http.StatusConflict, "a translation is already in progress")
	case coordinator.SubmissionRejected:
		writeJSON(w, http.StatusUnprocessableEntity, toSnapshotResponse(h.svc.Snapshot()))
	default:
		writeJSON(w, http.StatusAccepted, toSnapshotResponse(h.svc.Snapshot()))
	}
}

// Retry handles POST /v1/capture/retry.
func (h *CaptureHandler) Retry(w http.ResponseWriter, r *http.Request) {
	if !h.svc.RetryIfPossible() {
		writeError(w, http.StatusConflict, "nothing to retry")
		return
	}
	writeJSON(w, http.StatusAccepted, toSnapshotResponse(h.svc.Snapshot()))
}

// Dismiss handles POST /v1/capture/dismiss.
func (h *CaptureHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	h.svc.DismissPreview()
	writeJSON(w, http.StatusOK, toSnapshotResponse(h.svc.Snapshot()))
}

// Cancel handles POST /v1/capture/cancel. The body is optional.
func (h *CaptureHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}

	h.svc.CancelInFlight(req.ClearPreview)
	writeJSON(w, http.StatusOK, toSnapshotResponse(h.svc.Snapshot()))
}

// Confirm handles POST /v1/capture/confirm.
func (h *CaptureHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	card, err := h.svc.Confirm(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCardResponse(card))
}

// State handles GET /v1/capture.
func (h *CaptureHandler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toSnapshotResponse(h.svc.Snapshot()))
}

// Events handles GET /v1/capture/events?since=N&wait=D. Without wait it
// returns immediately; with wait it blocks until a newer event exists or
// the wait elapses. A cursor ahead of the bus (server restarted) starts
// over from the beginning.
func (h *CaptureHandler) Events(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var since uint64
	if raw := q.Get("since"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "since must be a non-negative integer")
			return
		}
		since = v
	}

	var wait time.Duration
	if raw := q.Get("wait"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			writeError(w, http.StatusBadRequest, "wait must be a non-negative duration")
			return
		}
		wait = min(d, h.maxWait)
	}

	if since > h.events.Last() {
		since = 0
	}

	events := h.events.Since(since)
	if len(events) == 0 && wait > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), wait)
		defer cancel()

		var err error
		events, err = h.events.WaitSince(ctx, since)
		if err != nil && r.Context().Err() != nil {
			return
		}
	}

	resp := eventsResponse{
		Events: make([]eventResponse, 0, len(events)),
		Last:   h.events.Last(),
	}
	for _, e := range events {
		resp.Events = append(resp.Events, toEventResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CaptureHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "card already saved")
	default:
		h.log.ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
