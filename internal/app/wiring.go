package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/yaoqiang/voxwords/internal/adapter/memstore"
	"github.com/yaoqiang/voxwords/internal/adapter/postgres"
	"github.com/yaoqiang/voxwords/internal/adapter/postgres/card"
	"github.com/yaoqiang/voxwords/internal/adapter/provider/llm"
	"github.com/yaoqiang/voxwords/internal/adapter/provider/remote"
	"github.com/yaoqiang/voxwords/internal/adapter/provider/translate"
	"github.com/yaoqiang/voxwords/internal/config"
	"github.com/yaoqiang/voxwords/internal/domain"
	"github.com/yaoqiang/voxwords/internal/pipeline"
	"github.com/yaoqiang/voxwords/internal/session"
)

// CardStore is what the coordinator and the HTTP layer need from card
// persistence.
type CardStore interface {
	SaveCard(ctx context.Context, card *domain.VocabularyCard) error
	ListCards(ctx context.Context, limit int) ([]domain.VocabularyCard, error)
	SavedOn(ctx context.Context, day time.Time) (int, error)
	Ping(ctx context.Context) error
}

// Capability is a translation backend: it answers availability questions
// and opens sessions bound to a language pair.
type Capability interface {
	pipeline.AvailabilityChecker
	session.Opener
}

// newCardStore returns the postgres repository when a DSN is configured and
// the in-memory store otherwise. The returned func releases resources.
func newCardStore(ctx context.Context, cfg config.DatabaseConfig, clock clockwork.Clock, logger *slog.Logger) (CardStore, func(), error) {
	if cfg.DSN == "" {
		logger.Warn("database dsn not set, saved cards are kept in memory")
		return memstore.New(clock), func() {}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database: %w", err)
	}

	if cfg.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, logger.With("component", "migrate")); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("database: %w", err)
		}
	}

	logger.Info("database connected",
		slog.Int("max_conns", int(cfg.MaxConns)),
		slog.Bool("auto_migrate", cfg.AutoMigrate),
	)
	return card.New(pool, postgres.NewTxManager(pool)), pool.Close, nil
}

func newCapability(cfg config.ProviderConfig, logger *slog.Logger) (Capability, error) {
	switch cfg.Kind {
	case config.ProviderRemote:
		return remote.NewProvider(cfg.BaseURL, cfg.HTTPTimeout, logger), nil
	case config.ProviderLLM:
		return llm.NewProvider(llm.Options{
			APIKey:    cfg.APIKey,
			Model:     cfg.LLMModel,
			Timeout:   cfg.HTTPTimeout,
			Languages: cfg.Languages,
		}, logger), nil
	case config.ProviderStub:
		return translate.NewStub(cfg.Languages, logger), nil
	}
	return nil, fmt.Errorf("provider: unknown kind %q", cfg.Kind)
}
