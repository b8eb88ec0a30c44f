package coordinator

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/yaoqiang/voxwords/internal/domain"
)

type outcome struct {
	text string
	err  error
}

// HandleFinalText starts translating a finalized utterance. It is a no-op
// while a request is translating or when the text is empty after trimming.
// A leftover preview or error is discarded first.
func (s *Service) HandleFinalText(text string) Submission {
	word := domain.TrimUtterance(text)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase.Kind == PhaseTranslating {
		s.log.Debug("final text ignored, request in flight")
		return SubmissionBusy
	}
	if word == "" {
		return SubmissionIgnored
	}
	if s.phase.Kind != PhaseIdle {
		s.toIdleLocked()
	}

	req := Request{ID: s.newID(), Text: word, Pair: s.pair}
	if s.hasPair && s.pair.SameLanguage() {
		s.failLocked(req, failSameLanguage)
		return SubmissionRejected
	}

	s.startLocked(req)
	return SubmissionAccepted
}

// RetryIfPossible re-submits the failed request when its error is
// retryable. It reports whether a retry started.
func (s *Service) RetryIfPossible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase.Kind != PhaseError || !s.phase.Retryable || s.phase.Request == nil {
		return false
	}
	req := *s.phase.Request
	s.log.Info("retrying translation", slog.String("request_id", req.ID.String()))
	s.startLocked(req)
	return true
}

func (s *Service) startLocked(req Request) {
	s.releaseLocked()
	s.attempt++
	attempt := s.attempt

	s.phase = Phase{Kind: PhaseTranslating, Request: &req}
	s.preview = placeholderCard(req, s.clock.Now().UTC())

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	timer := s.clock.NewTimer(s.timeout)

	s.wg.Add(1)
	go s.await(ctx, req, attempt, timer)

	s.emitLocked()
}

// await races the translation against the timeout timer.
func (s *Service) await(ctx context.Context, req Request, attempt uint64, timer clockwork.Timer) {
	defer s.wg.Done()
	defer timer.Stop()

	results := make(chan outcome, 1)
	go func() {
		text, err := s.translator.Translate(ctx, req.ID, req.Text)
		results <- outcome{text: text, err: err}
	}()

	select {
	case out := <-results:
		s.complete(req, attempt, out)
	case <-timer.Chan():
		s.expire(req, attempt)
	case <-ctx.Done():
	}
}

// complete applies a pipeline result if req is still the live request.
func (s *Service) complete(req Request, attempt uint64, out outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.liveLocked(req, attempt) {
		s.log.Debug("discarded stale resolution", slog.String("request_id", req.ID.String()))
		return
	}

	switch {
	case errors.Is(out.err, domain.ErrCancelled):
		s.toIdleLocked()
	case out.err != nil:
		s.log.Info("translation failed",
			slog.String("request_id", req.ID.String()),
			slog.String("error", out.err.Error()),
		)
		s.failLocked(req, describeError(out.err))
	default:
		translation := strings.TrimSpace(out.text)
		if translation == "" {
			s.failLocked(req, failNotUnderstood)
			return
		}
		s.releaseLocked()
		card := completeCard(req, translation, s.clock.Now().UTC())
		s.phase = Phase{Kind: PhasePreview, Card: card}
		s.preview = card
		s.emitLocked()
		s.notifyLocked(CueSuccess)
	}
}

// expire fails req with a timeout and abandons whatever the pipeline is
// still doing for it.
func (s *Service) expire(req Request, attempt uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.liveLocked(req, attempt) {
		return
	}
	s.log.Warn("translation timed out",
		slog.String("request_id", req.ID.String()),
		slog.Duration("timeout", s.timeout),
	)
	s.failLocked(req, failTimeout)
	s.translator.CancelAll()
}

func (s *Service) liveLocked(req Request, attempt uint64) bool {
	return s.phase.Kind == PhaseTranslating &&
		s.phase.Request != nil &&
		*s.phase.Request == req &&
		s.attempt == attempt
}

func (s *Service) failLocked(req Request, f failure) {
	s.releaseLocked()
	s.phase = Phase{
		Kind:      PhaseError,
		Request:   &req,
		Code:      f.code,
		Message:   f.message,
		Retryable: f.retryable,
	}
	s.preview = placeholderCard(req, s.clock.Now().UTC())
	s.emitLocked()
	s.notifyLocked(CueFailure)
}
