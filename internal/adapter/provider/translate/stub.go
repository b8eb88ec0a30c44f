// Package translate provides a deterministic offline translation capability
// for development and tests.
package translate

import (
	"context"
	"log/slog"
	"strings"

	"github.com/yaoqiang/voxwords/internal/domain"
	"github.com/yaoqiang/voxwords/internal/pipeline"
	"github.com/yaoqiang/voxwords/internal/provider"
)

// glossary maps target language -> English word -> translation.
var glossary = map[string]map[string]string{
	"de": {"cat": "Katze", "dog": "Hund", "house": "Haus", "water": "Wasser", "book": "Buch", "hello": "hallo"},
	"fr": {"cat": "chat", "dog": "chien", "house": "maison", "water": "eau", "book": "livre", "hello": "bonjour"},
	"es": {"cat": "gato", "dog": "perro", "house": "casa", "water": "agua", "book": "libro", "hello": "hola"},
	"it": {"cat": "gatto", "dog": "cane", "house": "casa", "water": "acqua", "book": "libro", "hello": "ciao"},
}

// Stub answers from a small built-in English glossary. Unknown words and
// other source languages come back tagged with the target language, e.g.
// "tree (de)".
type Stub struct {
	languages provider.LanguageSet
	log       *slog.Logger
}

// NewStub creates a Stub that reports languages as installed.
func NewStub(languages []string, logger *slog.Logger) *Stub {
	return &Stub{
		languages: provider.NewLanguageSet(languages),
		log:       logger.With("adapter", "translate_stub"),
	}
}

// Availability reports whether both languages are in the configured list.
func (s *Stub) Availability(_ context.Context, pair domain.LanguagePair) (domain.Availability, error) {
	return s.languages.Availability(pair), nil
}

// Open returns a session bound to pair.
func (s *Stub) Open(_ context.Context, pair domain.LanguagePair) (pipeline.Session, error) {
	s.log.Debug("stub session opened", slog.String("pair", pair.String()))
	return &stubSession{pair: pair}, nil
}

type stubSession struct {
	pair domain.LanguagePair
}

func (s *stubSession) Prepare(ctx context.Context) error {
	return ctx.Err()
}

func (s *stubSession) Translate(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return Lookup(s.pair, text), nil
}

// Lookup translates text with the built-in glossary.
func Lookup(pair domain.LanguagePair, text string) string {
	word := domain.NormalizeText(text)
	if pair.Source.Base() == "en" {
		if t, ok := glossary[pair.Target.Base()][word]; ok {
			return t
		}
	}
	return text + " (" + strings.ToLower(pair.Target.String()) + ")"
}
