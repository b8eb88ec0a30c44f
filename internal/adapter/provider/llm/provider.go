// Package llm translates with the Anthropic Messages API.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/yaoqiang/voxwords/internal/domain"
	"github.com/yaoqiang/voxwords/internal/pipeline"
	"github.com/yaoqiang/voxwords/internal/provider"
)

const maxTokens = 256

// Options configures the provider. BaseURL is only set in tests.
type Options struct {
	APIKey    string
	Model     string
	BaseURL   string
	Timeout   time.Duration
	Languages []string
}

// Provider is the availability oracle and session opener backed by an LLM.
// Availability comes from the configured language list; nothing needs to be
// installed.
type Provider struct {
	client    anthropic.Client
	model     string
	languages provider.LanguageSet
	log       *slog.Logger
}

// NewProvider creates a Provider. Retries are left to the pipeline, so the
// SDK's own retry loop is disabled.
func NewProvider(opts Options, logger *slog.Logger) *Provider {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{Timeout: opts.Timeout}))
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}

	return &Provider{
		client:    anthropic.NewClient(reqOpts...),
		model:     opts.Model,
		languages: provider.NewLanguageSet(opts.Languages),
		log:       logger.With("adapter", "llm"),
	}
}

// Availability reports whether both languages are in the configured list.
func (p *Provider) Availability(_ context.Context, pair domain.LanguagePair) (domain.Availability, error) {
	return p.languages.Availability(pair), nil
}

// Open returns a session bound to pair.
func (p *Provider) Open(_ context.Context, pair domain.LanguagePair) (pipeline.Session, error) {
	return &Session{provider: p, pair: pair, system: buildSystemPrompt(pair)}, nil
}

// Session translates for one language pair.
type Session struct {
	provider *Provider
	pair     domain.LanguagePair
	system   string
}

// Prepare is a no-op: the API has nothing to warm up.
func (s *Session) Prepare(context.Context) error { return nil }

// Translate sends text to the model and returns its reply.
func (s *Session) Translate(ctx context.Context, text string) (string, error) {
	msg, err := s.provider.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(s.provider.model),
		MaxTokens: maxTokens,
		System:    []anthropic.TextBlockParam{{Text: s.system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		return "", mapError(err)
	}

	for _, block := range msg.Content {
		if block.Type == "text" {
			out := cleanReply(block.Text)
			s.provider.log.DebugContext(ctx, "llm translation",
				slog.String("pair", s.pair.String()),
				slog.Int64("output_tokens", msg.Usage.OutputTokens),
			)
			return out, nil
		}
	}
	return "", fmt.Errorf("llm: response for %q has no text content", text)
}

// mapError marks overload and rate-limit answers as transient.
func mapError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests, http.StatusServiceUnavailable, 529:
			return fmt.Errorf("llm: status %d: %w", apiErr.StatusCode, domain.ErrBackendBusy)
		}
		return fmt.Errorf("llm: status %d: %w", apiErr.StatusCode, err)
	}
	return fmt.Errorf("llm: %w", err)
}

func buildSystemPrompt(pair domain.LanguagePair) string {
	return fmt.Sprintf(`You are a vocabulary translator for language learners.
Translate the word or short phrase the user sends from %s to %s.
Reply with the translation only: no quotes, no explanations, no transliteration.
If the input is not meaningful, reply with an empty message.`, pair.Source, pair.Target)
}

// cleanReply strips whitespace and wrapping quotes models sometimes add.
func cleanReply(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"'`“”«»")
	return strings.TrimSpace(s)
}
