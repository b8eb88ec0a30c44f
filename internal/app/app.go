package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/yaoqiang/voxwords/internal/config"
	"github.com/yaoqiang/voxwords/internal/eventbus"
	"github.com/yaoqiang/voxwords/internal/pipeline"
	"github.com/yaoqiang/voxwords/internal/service/coordinator"
	"github.com/yaoqiang/voxwords/internal/session"
)

// Run is the application entry point. It loads configuration, wires the
// card store, translation capability, pipeline, session host and
// coordinator, serves HTTP and shuts everything down when ctx is done.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.String("provider", cfg.Provider.Kind),
	)

	clock := clockwork.NewRealClock()

	store, closeStore, err := newCardStore(ctx, cfg.Database, clock, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	capability, err := newCapability(cfg.Provider, logger)
	if err != nil {
		return err
	}

	pipe := pipeline.New(logger, capability, retryPolicy(cfg.Translation))
	host := session.NewHost(logger, pipe, capability)
	bus := eventbus.New(clock, cfg.Events.BufferSize)
	svc := coordinator.NewService(logger, pipe, store, bus, busFeedback{bus: bus}, clock, cfg.Translation.RequestTimeout)

	if cfg.Translation.HasDefaultPair() {
		pair, err := svc.SetLanguagePair(cfg.Translation.NativeLanguage, cfg.Translation.TargetLanguage)
		if err != nil {
			return fmt.Errorf("default language pair: %w", err)
		}
		logger.Info("language pair configured", slog.String("pair", pair.String()))
	}

	srv := &http.Server{
		Addr: net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler: NewHandler(Deps{
			Config:   cfg,
			Logger:   logger,
			Clock:    clock,
			Service:  svc,
			Events:   bus,
			Store:    store,
			Pipeline: pipe,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return host.Run(gctx)
	})

	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		svc.Shutdown()
		pipe.CancelAll()
		if err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("application stopped")
	return nil
}

func retryPolicy(cfg config.TranslationConfig) pipeline.RetryPolicy {
	return pipeline.RetryPolicy{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   cfg.BaseDelay,
		Step:        cfg.DelayStep,
		MaxDelay:    cfg.MaxDelay,
	}
}

// busFeedback renders feedback cues as events for the UI.
type busFeedback struct {
	bus *eventbus.Bus
}

func (f busFeedback) Notify(cue coordinator.Cue) {
	f.bus.Publish(coordinator.EventFeedback, cue)
}
