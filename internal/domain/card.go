package domain

import (
	"time"

	"github.com/google/uuid"
)

// CardStatus tracks how complete a vocabulary card is. Media enrichment
// statuses are owned elsewhere; the capture flow only produces these two.
type CardStatus string

const (
	CardStatusTextOnly CardStatus = "TEXT_ONLY"
	CardStatusComplete CardStatus = "COMPLETE"
)

func (s CardStatus) String() string { return string(s) }

func (s CardStatus) IsValid() bool {
	switch s {
	case CardStatusTextOnly, CardStatusComplete:
		return true
	}
	return false
}

// VocabularyCard is the user-visible artifact of one speech-to-card attempt.
// ID is the request id the card was created from.
type VocabularyCard struct {
	ID             uuid.UUID
	Word           string
	Translation    string
	NativeLanguage LanguageCode
	TargetLanguage LanguageCode
	Status         CardStatus
	CreatedAt      time.Time
}

// IsComplete reports whether the card carries a finished translation and can
// be saved.
func (c *VocabularyCard) IsComplete() bool {
	return c.Status == CardStatusComplete && c.Translation != ""
}
