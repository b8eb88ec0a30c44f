// Package session hosts the translation consumer loop. The host opens a
// capability for whatever language pair the pipeline asks for and keeps
// Pipeline.Run attached to it while the host is started.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/yaoqiang/voxwords/internal/domain"
	"github.com/yaoqiang/voxwords/internal/pipeline"
)

// Opener creates a live translation session for a pair.
type Opener interface {
	Open(ctx context.Context, pair domain.LanguagePair) (pipeline.Session, error)
}

type consumer interface {
	Attachments() <-chan pipeline.Configuration
	Configuration() (pipeline.Configuration, bool)
	RequestAttach() bool
	Run(ctx context.Context, cfg pipeline.Configuration, sess pipeline.Session) error
	Fail(err error)
}

// Host attaches sessions to the pipeline. It can be started and stopped any
// number of times; the pipeline re-requests attachment when work arrives
// while nothing is attached.
type Host struct {
	log    *slog.Logger
	pipe   consumer
	opener Opener

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewHost creates a stopped Host.
func NewHost(logger *slog.Logger, pipe consumer, opener Opener) *Host {
	return &Host{
		log:    logger.With("component", "session_host"),
		pipe:   pipe,
		opener: opener,
	}
}

// Start begins serving attachment requests. Starting a started host is a
// no-op.
func (h *Host) Start(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	h.cancel, h.done = cancel, done

	go func() {
		defer close(done)
		h.loop(ctx)
	}()

	h.pipe.RequestAttach()
	h.log.Info("session host started")
}

// Stop detaches the running session, if any, and waits for it to close.
func (h *Host) Stop() {
	h.mu.Lock()
	cancel, done := h.cancel, h.done
	h.cancel, h.done = nil, nil
	h.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	h.log.Info("session host stopped")
}

// Running reports whether the host is started.
func (h *Host) Running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cancel != nil
}

// Run starts the host and blocks until ctx is done.
func (h *Host) Run(ctx context.Context) error {
	h.Start(ctx)
	<-ctx.Done()
	h.Stop()
	return nil
}

func (h *Host) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cfg := <-h.pipe.Attachments():
			if !h.current(cfg) {
				h.log.Debug("skipped stale attachment request", slog.Uint64("epoch", cfg.Epoch))
				continue
			}
			h.serve(ctx, cfg)
		}
	}
}

func (h *Host) serve(ctx context.Context, cfg pipeline.Configuration) {
	log := h.log.With(slog.String("pair", cfg.Pair.String()), slog.Uint64("epoch", cfg.Epoch))

	sess, err := h.opener.Open(ctx, cfg.Pair)
	if err != nil {
		if ctx.Err() != nil || !h.current(cfg) {
			return
		}
		log.Error("open session failed", slog.String("error", err.Error()))
		h.pipe.Fail(fmt.Errorf("open session: %w", err))
		return
	}
	defer func() {
		if c, ok := sess.(io.Closer); ok {
			if err := c.Close(); err != nil {
				log.Warn("close session", slog.String("error", err.Error()))
			}
		}
	}()

	log.Debug("session opened")
	if err := h.pipe.Run(ctx, cfg, sess); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("consumer loop failed", slog.String("error", err.Error()))
	}
}

func (h *Host) current(cfg pipeline.Configuration) bool {
	cur, ok := h.pipe.Configuration()
	return ok && cur.Epoch == cfg.Epoch
}
