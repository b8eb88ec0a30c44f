package config

import (
	"fmt"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.Translation.validate(); err != nil {
		return fmt.Errorf("translation: %w", err)
	}

	if err := c.Provider.validate(); err != nil {
		return fmt.Errorf("provider: %w", err)
	}

	if c.Events.BufferSize <= 0 {
		return fmt.Errorf("events.buffer_size must be > 0 (got %d)", c.Events.BufferSize)
	}
	if c.Server.WriteTimeout > 0 && c.Events.MaxWait >= c.Server.WriteTimeout {
		return fmt.Errorf("events.max_wait (%v) must be shorter than server.write_timeout (%v)",
			c.Events.MaxWait, c.Server.WriteTimeout)
	}

	return nil
}

func (t *TranslationConfig) validate() error {
	if (t.NativeLanguage == "") != (t.TargetLanguage == "") {
		return fmt.Errorf("native_language and target_language must be set together")
	}
	if t.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be > 0 (got %v)", t.RequestTimeout)
	}
	if t.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be >= 1 (got %d)", t.MaxAttempts)
	}
	if t.BaseDelay < 0 || t.DelayStep < 0 {
		return fmt.Errorf("base_delay and delay_step must be >= 0")
	}
	if t.MaxDelay < t.BaseDelay {
		return fmt.Errorf("max_delay (%v) must be >= base_delay (%v)", t.MaxDelay, t.BaseDelay)
	}
	return nil
}

func (p *ProviderConfig) validate() error {
	switch p.Kind {
	case ProviderStub:
	case ProviderRemote:
		if p.BaseURL == "" {
			return fmt.Errorf("base_url is required for the remote provider")
		}
	case ProviderLLM:
		if p.APIKey == "" {
			return fmt.Errorf("api_key is required for the llm provider")
		}
	default:
		return fmt.Errorf("unknown kind %q (want %s, %s or %s)", p.Kind, ProviderRemote, ProviderLLM, ProviderStub)
	}

	p.Languages = ParseLanguageList(p.LanguagesRaw)
	if len(p.Languages) == 0 {
		return fmt.Errorf("languages must list at least one language")
	}
	return nil
}

// ParseLanguageList parses a comma-separated list of language codes
// (e.g. "en, de,fr"), dropping blanks and duplicates.
func ParseLanguageList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
