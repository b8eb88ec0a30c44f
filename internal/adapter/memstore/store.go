// Package memstore keeps confirmed vocabulary cards in process memory. It is
// used when no database is configured and mirrors the postgres card repo.
package memstore

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/yaoqiang/voxwords/internal/domain"
)

type savedCard struct {
	card    domain.VocabularyCard
	savedAt time.Time
}

// Store is a concurrency-safe in-memory card store.
type Store struct {
	clock clockwork.Clock

	mu    sync.RWMutex
	cards []savedCard
	ids   map[uuid.UUID]struct{}
	usage map[string]int
}

// New creates an empty store.
func New(clock clockwork.Clock) *Store {
	return &Store{
		clock: clock,
		ids:   make(map[uuid.UUID]struct{}),
		usage: make(map[string]int),
	}
}

// SaveCard stores a copy of card. Saving the same card twice returns
// domain.ErrAlreadyExists.
func (s *Store) SaveCard(ctx context.Context, card *domain.VocabularyCard) error {
	if card == nil {
		return fmt.Errorf("card: %w", domain.ErrValidation)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[card.ID]; ok {
		return fmt.Errorf("card %s: %w", card.ID, domain.ErrAlreadyExists)
	}

	now := s.clock.Now().UTC()
	s.ids[card.ID] = struct{}{}
	s.cards = append(s.cards, savedCard{card: *card, savedAt: now})
	s.usage[now.Format(time.DateOnly)]++
	return nil
}

// ListCards returns up to limit cards, most recently saved first.
func (s *Store) ListCards(ctx context.Context, limit int) ([]domain.VocabularyCard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	n := min(max(limit, 0), len(s.cards))
	out := make([]domain.VocabularyCard, 0, n)
	for _, sc := range slices.Backward(s.cards) {
		if len(out) == n {
			break
		}
		out = append(out, sc.card)
	}
	return out, nil
}

// SavedOn returns how many cards were saved on the given UTC day.
func (s *Store) SavedOn(_ context.Context, day time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.usage[day.UTC().Format(time.DateOnly)], nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }
