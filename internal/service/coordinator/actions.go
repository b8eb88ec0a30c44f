package coordinator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yaoqiang/voxwords/internal/domain"
)

// ErrNoPreview is returned by Confirm outside PhasePreview.
var ErrNoPreview = fmt.Errorf("%w: no preview card to confirm", domain.ErrConflict)

const (
	DefaultCardLimit = 50
	MaxCardLimit     = 200
)

// SetLanguagePair configures the pair used for new requests. The user speaks
// the native language; translations are produced in the target language.
// A real change abandons a translating request or a pending error, both of
// which belong to the old pair. Setting the same pair again has no effect.
func (s *Service) SetLanguagePair(native, target string) (domain.LanguagePair, error) {
	pair, err := domain.NewLanguagePair(native, target)
	if err != nil {
		return domain.LanguagePair{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasPair && s.pair == pair {
		return pair, nil
	}
	s.pair = pair
	s.hasPair = true

	if s.phase.Kind == PhaseTranslating || s.phase.Kind == PhaseError {
		s.toIdleLocked()
	} else {
		s.emitLocked()
	}
	s.translator.SetLanguagePair(pair)

	s.log.Info("language pair set", slog.String("pair", pair.String()))
	return pair, nil
}

// CancelInFlight abandons the translating request and clears a pending
// error. The preview card is dropped only when clearPreview is set. Queued
// and in-flight pipeline work is cancelled either way.
func (s *Service) CancelInFlight(clearPreview bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase.Kind {
	case PhaseTranslating, PhaseError:
		s.toIdleLocked()
	case PhasePreview:
		if clearPreview {
			s.toIdleLocked()
		}
	}
	s.translator.CancelAll()
}

// DismissPreview returns to PhaseIdle from any phase.
func (s *Service) DismissPreview() {
	s.CancelInFlight(true)
}

// Confirm saves the preview card and returns to PhaseIdle. A failed save
// leaves the preview in place so the user can try again.
func (s *Service) Confirm(ctx context.Context) (*domain.VocabularyCard, error) {
	s.mu.Lock()
	if s.phase.Kind != PhasePreview || s.phase.Card == nil {
		s.mu.Unlock()
		return nil, ErrNoPreview
	}
	card := *s.phase.Card
	s.mu.Unlock()

	if err := s.store.SaveCard(ctx, &card); err != nil {
		s.log.ErrorContext(ctx, "save card failed",
			slog.String("card_id", card.ID.String()),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("save card: %w", err)
	}

	s.mu.Lock()
	if s.phase.Kind == PhasePreview && s.phase.Card != nil && s.phase.Card.ID == card.ID {
		s.toIdleLocked()
	}
	s.mu.Unlock()

	s.log.InfoContext(ctx, "card saved",
		slog.String("card_id", card.ID.String()),
		slog.String("word", card.Word),
	)
	return &card, nil
}

// RecentCards lists saved cards, newest first. limit is clamped to
// [1, MaxCardLimit]; zero selects DefaultCardLimit.
func (s *Service) RecentCards(ctx context.Context, limit int) ([]domain.VocabularyCard, error) {
	switch {
	case limit <= 0:
		limit = DefaultCardLimit
	case limit > MaxCardLimit:
		limit = MaxCardLimit
	}
	cards, err := s.store.ListCards(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return cards, nil
}
