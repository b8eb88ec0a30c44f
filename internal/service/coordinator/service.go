// Package coordinator turns finalized speech text into single-flight
// translation requests and exposes the resulting phase to the UI layer.
package coordinator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/yaoqiang/voxwords/internal/domain"
)

// DefaultTimeout bounds how long a request may stay in PhaseTranslating.
const DefaultTimeout = 15 * time.Second

// Event kinds published to the event sink.
const (
	EventSnapshot = "capture.snapshot"
	EventFeedback = "capture.feedback"
)

type translator interface {
	Translate(ctx context.Context, id uuid.UUID, text string) (string, error)
	CancelAll()
	SetLanguagePair(pair domain.LanguagePair) bool
}

type cardStore interface {
	SaveCard(ctx context.Context, card *domain.VocabularyCard) error
	ListCards(ctx context.Context, limit int) ([]domain.VocabularyCard, error)
}

type eventSink interface {
	Publish(kind string, payload any) uint64
}

type feedback interface {
	Notify(cue Cue)
}

// Service is the request lifecycle coordinator. All state lives behind mu;
// translations run on background goroutines that report back through
// complete and expire.
type Service struct {
	log        *slog.Logger
	translator translator
	store      cardStore
	events     eventSink
	feedback   feedback
	clock      clockwork.Clock
	timeout    time.Duration
	newID      func() uuid.UUID

	mu      sync.Mutex
	pair    domain.LanguagePair
	hasPair bool
	phase   Phase
	preview *domain.VocabularyCard
	version uint64
	attempt uint64
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewService creates an idle coordinator. A non-positive timeout selects
// DefaultTimeout.
func NewService(
	log *slog.Logger,
	translator translator,
	store cardStore,
	events eventSink,
	feedback feedback,
	clock clockwork.Clock,
	timeout time.Duration,
) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{
		log:        log.With("service", "coordinator"),
		translator: translator,
		store:      store,
		events:     events,
		feedback:   feedback,
		clock:      clock,
		timeout:    timeout,
		newID:      uuid.New,
		phase:      Phase{Kind: PhaseIdle},
	}
}

// Snapshot returns the current phase and preview card.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Shutdown abandons the live request, if any, and waits for its goroutine.
func (s *Service) Shutdown() {
	s.mu.Lock()
	s.releaseLocked()
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Service) snapshotLocked() Snapshot {
	return Snapshot{
		Version: s.version,
		Pair:    s.pair,
		Phase:   s.phase,
		Card:    s.preview,
	}
}

// emitLocked publishes the state after a transition.
func (s *Service) emitLocked() {
	s.version++
	snap := s.snapshotLocked()
	s.log.Debug("phase changed",
		slog.String("phase", string(snap.Phase.Kind)),
		slog.Uint64("version", snap.Version),
	)
	if s.events != nil {
		s.events.Publish(EventSnapshot, snap)
	}
}

func (s *Service) notifyLocked(cue Cue) {
	if s.feedback != nil {
		s.feedback.Notify(cue)
	}
}

// releaseLocked stops waiting for the live request's result.
func (s *Service) releaseLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Service) toIdleLocked() {
	s.releaseLocked()
	s.phase = Phase{Kind: PhaseIdle}
	s.preview = nil
	s.emitLocked()
}
