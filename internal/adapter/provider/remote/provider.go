// Package remote talks to an HTTP translation backend that serves language
// availability, model preparation and translation.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yaoqiang/voxwords/internal/domain"
	"github.com/yaoqiang/voxwords/internal/pipeline"
)

const maxErrorBody = 4 << 10

// Provider is the availability oracle and session opener for the backend.
type Provider struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewProvider creates a Provider for the backend at baseURL.
func NewProvider(baseURL string, timeout time.Duration, logger *slog.Logger) *Provider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Provider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.With("adapter", "remote"),
	}
}

// Availability asks the backend whether pair can be translated right now.
func (p *Provider) Availability(ctx context.Context, pair domain.LanguagePair) (domain.Availability, error) {
	q := url.Values{}
	q.Set("source", pair.Source.String())
	q.Set("target", pair.Target.String())

	var resp availabilityResponse
	if err := p.do(ctx, http.MethodGet, "/v1/languages/availability?"+q.Encode(), nil, &resp); err != nil {
		return "", err
	}

	avail := domain.Availability(resp.Status)
	if !avail.IsValid() {
		return "", fmt.Errorf("remote: unknown availability %q", resp.Status)
	}
	return avail, nil
}

// Open returns a session bound to pair. No request is made until the
// session is used.
func (p *Provider) Open(_ context.Context, pair domain.LanguagePair) (pipeline.Session, error) {
	return &Session{provider: p, pair: pair}, nil
}

// Session is a translation session for one language pair.
type Session struct {
	provider *Provider
	pair     domain.LanguagePair
}

// Prepare asks the backend to load the models for the pair.
func (s *Session) Prepare(ctx context.Context) error {
	body := pairRequest{Source: s.pair.Source.String(), Target: s.pair.Target.String()}
	return s.provider.do(ctx, http.MethodPost, "/v1/prepare", body, nil)
}

// Translate translates text from the pair's source to its target language.
func (s *Session) Translate(ctx context.Context, text string) (string, error) {
	body := translateRequest{
		Text:   text,
		Source: s.pair.Source.String(),
		Target: s.pair.Target.String(),
	}

	var resp translateResponse
	if err := s.provider.do(ctx, http.MethodPost, "/v1/translate", body, &resp); err != nil {
		return "", err
	}

	s.provider.log.DebugContext(ctx, "remote translation",
		slog.String("pair", s.pair.String()),
		slog.Int("chars", len(resp.Translation)),
	)
	return resp.Translation, nil
}

// do sends a JSON request and decodes a JSON response into out when out is
// not nil. Non-2xx answers are mapped by statusError.
func (p *Provider) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("remote: encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("remote: create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("remote: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return p.statusError(ctx, resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("remote: decode response: %w", err)
	}
	return nil
}

func (p *Provider) statusError(ctx context.Context, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var e errorResponse
	_ = json.Unmarshal(raw, &e)
	if e.Message == "" {
		e.Message = strings.TrimSpace(string(raw))
	}

	p.log.WarnContext(ctx, "remote backend error",
		slog.Int("status", resp.StatusCode),
		slog.String("code", e.Code),
		slog.String("message", e.Message),
	)

	switch {
	case e.Code == codeLanguagePackRequired:
		return fmt.Errorf("remote: %s: %w", e.Message, domain.ErrLanguagePackRequired)
	case e.Code == codeUnsupportedPair:
		return fmt.Errorf("remote: %s: %w", e.Message, domain.ErrLanguagePairUnsupported)
	case e.Code == codeNotReady,
		resp.StatusCode == http.StatusServiceUnavailable,
		resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("remote: status %d: %s: %w", resp.StatusCode, e.Message, domain.ErrBackendBusy)
	default:
		return fmt.Errorf("remote: unexpected status %d: %s", resp.StatusCode, e.Message)
	}
}
