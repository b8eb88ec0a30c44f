package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yaoqiang/voxwords/internal/domain"
)

// NewCard returns a complete card with a unique word so tests sharing the
// container do not collide.
func NewCard(word string) domain.VocabularyCard {
	return domain.VocabularyCard{
		ID:             uuid.New(),
		Word:           word + "-" + uuid.New().String()[:8],
		Translation:    "t:" + word,
		NativeLanguage: "en",
		TargetLanguage: "de",
		Status:         domain.CardStatusComplete,
		CreatedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}
}

// SeedCard inserts card directly, bypassing the repository, with the given
// saved_at timestamp.
func SeedCard(t *testing.T, pool *pgxpool.Pool, card domain.VocabularyCard, savedAt time.Time) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		`INSERT INTO vocabulary_cards (id, word, translation, native_language, target_language, status, created_at, saved_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		card.ID, card.Word, card.Translation, string(card.NativeLanguage), string(card.TargetLanguage),
		string(card.Status), card.CreatedAt, savedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedCard insert: %v", err)
	}
}
