package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/yaoqiang/voxwords/internal/domain"
)

type cardLister interface {
	RecentCards(ctx context.Context, limit int) ([]domain.VocabularyCard, error)
}

type usageReader interface {
	SavedOn(ctx context.Context, day time.Time) (int, error)
}

// CardHandler serves saved vocabulary cards.
type CardHandler struct {
	cards cardLister
	usage usageReader
	clock clockwork.Clock
	log   *slog.Logger
}

// NewCardHandler creates a CardHandler.
func NewCardHandler(cards cardLister, usage usageReader, clock clockwork.Clock, logger *slog.Logger) *CardHandler {
	return &CardHandler{
		cards: cards,
		usage: usage,
		clock: clock,
		log:   logger.With("handler", "cards"),
	}
}

// List handles GET /v1/cards?limit=N.
func (h *CardHandler) List(w http.ResponseWriter, r *http.Request) {
	var limit int
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = v
	}

	cards, err := h.cards.RecentCards(r.Context(), limit)
	if err != nil {
		h.log.ErrorContext(r.Context(), "list cards", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := cardsResponse{Cards: make([]cardResponse, 0, len(cards))}
	for i := range cards {
		resp.Cards = append(resp.Cards, *toCardResponse(&cards[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Usage handles GET /v1/cards/usage?day=YYYY-MM-DD. The day defaults to
// today in UTC.
func (h *CardHandler) Usage(w http.ResponseWriter, r *http.Request) {
	day := h.clock.Now().UTC()
	if raw := r.URL.Query().Get("day"); raw != "" {
		d, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "day must be formatted as YYYY-MM-DD")
			return
		}
		day = d
	}

	saved, err := h.usage.SavedOn(r.Context(), day)
	if err != nil {
		h.log.ErrorContext(r.Context(), "card usage", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, usageResponse{Day: day.Format(time.DateOnly), Saved: saved})
}
