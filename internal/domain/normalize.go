package domain

import (
	"strings"
	"unicode"
)

// NormalizeText prepares text for storage and comparison:
//   - trims leading/trailing whitespace
//   - converts to lowercase
//   - compresses multiple spaces into one
//
// Diacritics, hyphens, and apostrophes are preserved.
func NormalizeText(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	text = strings.ToLower(text)

	// Compress multiple spaces into one.
	var b strings.Builder
	b.Grow(len(text))
	prevSpace := false
	for _, r := range text {
		if r == ' ' {
			if prevSpace {
				continue
			}
			prevSpace = true
		} else {
			prevSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// utteranceEdgePunct lists sentence-ending and quote marks that speech
// recognizers attach to a single recognized word, across Latin, CJK,
// Arabic, and Devanagari output.
const utteranceEdgePunct = `.,!?;:"'` +
	"…¿¡«»‹›" +
	"。，、！？；：「」『』“”‘’（）" +
	"؟،؛" +
	"।॥"

// TrimUtterance strips whitespace and edge punctuation from recognized text.
// Inner punctuation ("don't", "e-mail") is kept. An utterance made only of
// punctuation becomes empty.
func TrimUtterance(text string) string {
	return strings.TrimFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(utteranceEdgePunct, r)
	})
}
