// Package pipeline serializes translation requests through one long-lived
// translation session.
//
// Callers submit work with Translate and block until a consumer loop (Run)
// resolves it. Run is driven by an external session host that may stop and
// restart it at any time; the pipeline asks for re-attachment through
// Attachments when work arrives and no consumer is running.
//
// Changing the language pair advances the epoch. Every request and every
// consumer loop captures the epoch it was created under, and a mismatch at
// any checkpoint means cancelled, never proceed.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/yaoqiang/voxwords/internal/domain"
)

// Session is a live translation capability bound to one language pair.
type Session interface {
	// Prepare warms the capability up. It is best effort and called once per
	// consumer loop generation.
	Prepare(ctx context.Context) error
	Translate(ctx context.Context, text string) (string, error)
}

// AvailabilityChecker is the language availability oracle.
type AvailabilityChecker interface {
	Availability(ctx context.Context, pair domain.LanguagePair) (domain.Availability, error)
}

// Configuration is the language pair consumers must bind to, tagged with the
// epoch it was set under.
type Configuration struct {
	Pair  domain.LanguagePair
	Epoch uint64
}

// Status is a point-in-time view of the pipeline for health reporting.
type Status struct {
	Configured bool
	Pair       domain.LanguagePair
	Epoch      uint64
	Consumers  int
	Queued     int
	Pending    int
}

type request struct {
	id    uuid.UUID
	text  string
	pair  domain.LanguagePair
	epoch uint64
	seq   uint64
}

type outcome struct {
	text string
	err  error
}

// waiter is a suspended Translate caller. ch is buffered so resolution never
// blocks; removal from the waiter table under mu makes it one-shot.
type waiter struct {
	ch  chan outcome
	seq uint64
}

// Pipeline owns the work queue, the cancellation epoch and the waiter table.
type Pipeline struct {
	log    *slog.Logger
	oracle AvailabilityChecker
	policy RetryPolicy

	mu         sync.Mutex
	configured bool
	pair       domain.LanguagePair
	epoch      uint64
	seq        uint64
	queue      []request
	waiters    map[uuid.UUID]waiter
	inflight   map[uint64]context.CancelFunc
	consumers  int
	wake       chan struct{}

	attach chan Configuration
}

// New creates an unconfigured Pipeline. A nil oracle treats every pair as
// installed.
func New(logger *slog.Logger, oracle AvailabilityChecker, policy RetryPolicy) *Pipeline {
	return &Pipeline{
		log:      logger.With("component", "pipeline"),
		oracle:   oracle,
		policy:   policy.normalize(),
		waiters:  make(map[uuid.UUID]waiter),
		inflight: make(map[uint64]context.CancelFunc),
		wake:     make(chan struct{}),
		attach:   make(chan Configuration, 1),
	}
}

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

// SetLanguagePair binds the pipeline to pair. If pair differs from the
// current one it advances the epoch, drops queued requests, fails pending
// waiters with domain.ErrCancelled and publishes the new configuration for
// the session host. Setting the same pair again is a no-op. Running consumer
// loops notice the epoch bump on their own and exit.
func (p *Pipeline) SetLanguagePair(pair domain.LanguagePair) bool {
	p.mu.Lock()
	if p.configured && p.pair == pair {
		p.mu.Unlock()
		return false
	}

	p.configured = true
	p.pair = pair
	p.epoch++
	epoch := p.epoch
	dropped, failed := p.cancelLocked(domain.ErrCancelled)
	p.signalLocked()
	p.publishLocked()
	p.mu.Unlock()

	p.log.Info("language pair changed",
		slog.String("pair", pair.String()),
		slog.Uint64("epoch", epoch),
		slog.Int("dropped", dropped),
		slog.Int("failed", failed),
	)
	return true
}

// Configuration returns the current configuration and whether a pair was
// ever set.
func (p *Pipeline) Configuration() (Configuration, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Configuration{Pair: p.pair, Epoch: p.epoch}, p.configured
}

// Attachments delivers configurations the session host should run a
// consumer loop for. Only the latest undelivered configuration is kept.
func (p *Pipeline) Attachments() <-chan Configuration {
	return p.attach
}

// RequestAttach republishes the current configuration so that a session host
// (re)attaches a consumer loop. It reports false when no pair is set.
func (p *Pipeline) RequestAttach() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.configured {
		return false
	}
	p.publishLocked()
	return true
}

// Status returns a snapshot of the pipeline state.
func (p *Pipeline) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Status{
		Configured: p.configured,
		Pair:       p.pair,
		Epoch:      p.epoch,
		Consumers:  p.consumers,
		Queued:     len(p.queue),
		Pending:    len(p.waiters),
	}
}

// ---------------------------------------------------------------------------
// Submission side
// ---------------------------------------------------------------------------

// CancelAll drops queued requests and fails pending waiters with
// domain.ErrCancelled without touching the configuration, so the session
// stays warm for the next request.
func (p *Pipeline) CancelAll() {
	p.mu.Lock()
	dropped, failed := p.cancelLocked(domain.ErrCancelled)
	p.mu.Unlock()

	if dropped > 0 || failed > 0 {
		p.log.Info("cancelled outstanding work", slog.Int("dropped", dropped), slog.Int("failed", failed))
	}
}

// Fail resolves every pending request with err, for when the session host
// cannot provide a capability at all. The configuration is kept.
func (p *Pipeline) Fail(err error) {
	p.mu.Lock()
	dropped, failed := p.cancelLocked(err)
	p.mu.Unlock()

	if failed > 0 {
		p.log.Warn("failed outstanding work",
			slog.Int("dropped", dropped),
			slog.Int("failed", failed),
			slog.String("error", err.Error()),
		)
	}
}

// Translate enqueues text under id and blocks until a consumer resolves it,
// the work is cancelled, or ctx is done. It fails with
// domain.ErrNotConfigured if no language pair was ever set.
func (p *Pipeline) Translate(ctx context.Context, id uuid.UUID, text string) (string, error) {
	p.mu.Lock()
	if !p.configured {
		p.mu.Unlock()
		return "", domain.ErrNotConfigured
	}

	if p.consumers == 0 {
		p.publishLocked()
		p.log.DebugContext(ctx, "no consumer attached, requested attachment", slog.Uint64("epoch", p.epoch))
	}

	if prev, ok := p.waiters[id]; ok {
		p.removeLocked(id, prev)
		prev.ch <- outcome{err: domain.ErrCancelled}
	}

	p.seq++
	req := request{id: id, text: text, pair: p.pair, epoch: p.epoch, seq: p.seq}
	w := waiter{ch: make(chan outcome, 1), seq: req.seq}
	p.waiters[id] = w
	p.queue = append(p.queue, req)
	p.signalLocked()
	p.mu.Unlock()

	select {
	case out := <-w.ch:
		return out.text, out.err
	case <-ctx.Done():
		p.mu.Lock()
		if cur, ok := p.waiters[id]; ok && cur.seq == w.seq {
			p.removeLocked(id, w)
		}
		p.mu.Unlock()
		return "", fmt.Errorf("%w: %w", domain.ErrCancelled, ctx.Err())
	}
}

// Resolve completes the waiter registered under id. A miss (already resolved
// or never registered) is a silent no-op and reports false; late callbacks
// from a superseded consumer generation land here.
func (p *Pipeline) Resolve(id uuid.UUID, text string, err error) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	w, ok := p.waiters[id]
	if !ok {
		return false
	}
	delete(p.waiters, id)
	w.ch <- outcome{text: text, err: err}
	return true
}

// ---------------------------------------------------------------------------
// Consumer side
// ---------------------------------------------------------------------------

// Run is the consumer loop. The session host calls it with a session opened
// for cfg, as received from Attachments or Configuration. Run returns nil
// when cfg is or becomes stale and ctx.Err() when ctx is done; items still
// queued are left for the next generation or were already failed by
// SetLanguagePair. An item interrupted because ctx is done goes back to the
// head of the queue.
func (p *Pipeline) Run(ctx context.Context, cfg Configuration, sess Session) error {
	p.mu.Lock()
	if !p.configured {
		p.mu.Unlock()
		return domain.ErrNotConfigured
	}
	if p.epoch != cfg.Epoch {
		p.mu.Unlock()
		return nil
	}
	epoch := cfg.Epoch
	p.consumers++
	p.mu.Unlock()

	log := p.log.With(slog.Uint64("epoch", epoch))
	log.Info("consumer attached")
	defer func() {
		p.mu.Lock()
		p.consumers--
		p.mu.Unlock()
		log.Info("consumer detached")
	}()

	prepared := false
	for {
		req, itemCtx, ok := p.next(ctx, epoch)
		if !ok {
			return ctx.Err()
		}
		text, err := p.process(itemCtx, log, sess, req, &prepared)
		p.finish(req)
		if err != nil && ctx.Err() != nil && p.requeue(req) {
			log.Info("consumer stopped mid-flight, request kept for next attach",
				slog.String("id", req.id.String()))
			return ctx.Err()
		}
		p.complete(req, text, err)
	}
}

// next pops the oldest queued request, blocking while the queue is empty.
// It reports false once the epoch has moved past epoch or ctx is done.
func (p *Pipeline) next(ctx context.Context, epoch uint64) (request, context.Context, bool) {
	for {
		p.mu.Lock()
		if p.epoch != epoch {
			p.mu.Unlock()
			return request{}, nil, false
		}
		if len(p.queue) > 0 {
			req := p.queue[0]
			p.queue[0] = request{}
			p.queue = p.queue[1:]
			itemCtx, cancel := context.WithCancel(ctx)
			p.inflight[req.seq] = cancel
			p.mu.Unlock()
			return req, itemCtx, true
		}
		wake := p.wake
		p.mu.Unlock()

		select {
		case <-ctx.Done():
			return request{}, nil, false
		case <-wake:
		}
	}
}

func (p *Pipeline) process(ctx context.Context, log *slog.Logger, sess Session, req request, prepared *bool) (string, error) {
	avail := domain.AvailabilityInstalled
	if p.oracle != nil {
		err := p.withRetry(ctx, "check availability", func(ctx context.Context) error {
			var err error
			avail, err = p.oracle.Availability(ctx, req.pair)
			return err
		})
		if err != nil {
			return "", err
		}
	}

	switch avail {
	case domain.AvailabilityInstalled:
	case domain.AvailabilitySupported:
		return "", domain.ErrLanguagePackRequired
	default:
		return "", domain.ErrLanguagePairUnsupported
	}

	if !*prepared {
		err := p.withRetry(ctx, "prepare", sess.Prepare)
		switch {
		case err == nil:
			*prepared = true
		case errors.Is(err, domain.ErrCancelled):
		default:
			*prepared = true
			log.WarnContext(ctx, "session did not prepare, translating anyway", slog.String("error", err.Error()))
		}
	}

	var text string
	err := p.withRetry(ctx, "translate", func(ctx context.Context) error {
		out, err := sess.Translate(ctx, req.text)
		if err != nil {
			return err
		}
		text = out
		return nil
	})
	return text, err
}

// complete resolves the waiter that submitted req. It is a no-op when the
// waiter is gone or was replaced by a newer submission under the same id.
// A success for a request from an older epoch is turned into a cancellation.
func (p *Pipeline) complete(req request, text string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	w, ok := p.waiters[req.id]
	if !ok || w.seq != req.seq {
		p.log.Debug("dropped late resolution", slog.String("id", req.id.String()), slog.Uint64("epoch", req.epoch))
		return
	}
	if err == nil && req.epoch != p.epoch {
		text, err = "", domain.ErrCancelled
	}
	delete(p.waiters, req.id)
	w.ch <- outcome{text: text, err: err}
}

// requeue puts req back at the head of the queue when its consumer went
// away mid-flight but the request is still wanted: same epoch, same waiter.
// The next consumer generation picks it up first.
func (p *Pipeline) requeue(req request) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	w, ok := p.waiters[req.id]
	if !ok || w.seq != req.seq || req.epoch != p.epoch {
		return false
	}
	p.queue = append([]request{req}, p.queue...)
	p.signalLocked()
	return true
}

func (p *Pipeline) finish(req request) {
	p.mu.Lock()
	cancel, ok := p.inflight[req.seq]
	delete(p.inflight, req.seq)
	p.mu.Unlock()
	if ok {
		cancel()
	}
}

// ---------------------------------------------------------------------------
// Locked helpers (caller holds mu)
// ---------------------------------------------------------------------------

// cancelLocked empties the queue, fails every waiter with err and interrupts
// in-flight work. It returns the number of dropped queue items and failed
// waiters.
func (p *Pipeline) cancelLocked(err error) (dropped, failed int) {
	dropped = len(p.queue)
	p.queue = nil

	for id, w := range p.waiters {
		delete(p.waiters, id)
		w.ch <- outcome{err: err}
		failed++
	}

	for seq, cancel := range p.inflight {
		delete(p.inflight, seq)
		cancel()
	}
	return dropped, failed
}

// removeLocked drops the waiter for id together with its queue slot and any
// in-flight work for it.
func (p *Pipeline) removeLocked(id uuid.UUID, w waiter) {
	delete(p.waiters, id)
	for i, req := range p.queue {
		if req.seq == w.seq {
			p.queue = append(p.queue[:i], p.queue[i+1:]...)
			break
		}
	}
	if cancel, ok := p.inflight[w.seq]; ok {
		delete(p.inflight, w.seq)
		cancel()
	}
}

// signalLocked wakes every consumer blocked in next.
func (p *Pipeline) signalLocked() {
	close(p.wake)
	p.wake = make(chan struct{})
}

// publishLocked replaces any undelivered attachment request with the current
// configuration.
func (p *Pipeline) publishLocked() {
	cfg := Configuration{Pair: p.pair, Epoch: p.epoch}
	select {
	case <-p.attach:
	default:
	}
	select {
	case p.attach <- cfg:
	default:
	}
}
