// Package card implements the vocabulary card store using PostgreSQL.
// Queries are built with squirrel; saving a card also bumps the per-day
// usage counter in the same transaction.
package card

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/yaoqiang/voxwords/internal/adapter/postgres"
	"github.com/yaoqiang/voxwords/internal/domain"
)

const (
	cardsTable = "vocabulary_cards"
	usageTable = "card_usage"
)

var cardColumns = []string{
	"id", "word", "translation", "native_language", "target_language", "status", "created_at",
}

type txRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Repo provides card persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
	tx   txRunner
	now  func() time.Time
}

// New creates a new card repository.
func New(pool *pgxpool.Pool, tx txRunner) *Repo {
	return &Repo{pool: pool, tx: tx, now: time.Now}
}

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// SaveCard stores a confirmed card and counts it towards today's usage.
// Saving the same card twice returns domain.ErrAlreadyExists.
func (r *Repo) SaveCard(ctx context.Context, card *domain.VocabularyCard) error {
	if card == nil {
		return fmt.Errorf("card: %w", domain.ErrValidation)
	}

	return r.tx.RunInTx(ctx, func(ctx context.Context) error {
		q := postgres.QuerierFromCtx(ctx, r.pool)
		now := r.now().UTC()

		insert := builder().
			Insert(cardsTable).
			Columns(append(cardColumns, "saved_at")...).
			Values(
				card.ID, card.Word, card.Translation,
				string(card.NativeLanguage), string(card.TargetLanguage),
				string(card.Status), card.CreatedAt.UTC(), now,
			)

		sql, args, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("build insert card: %w", err)
		}
		if _, err := q.Exec(ctx, sql, args...); err != nil {
			return postgres.MapError(err, "card", card.ID)
		}

		day := now.Format(time.DateOnly)
		upsert := builder().
			Insert(usageTable).
			Columns("day", "saved").
			Values(day, 1).
			Suffix("ON CONFLICT (day) DO UPDATE SET saved = card_usage.saved + 1")

		sql, args, err = upsert.ToSql()
		if err != nil {
			return fmt.Errorf("build usage upsert: %w", err)
		}
		if _, err := q.Exec(ctx, sql, args...); err != nil {
			return postgres.MapError(err, "card usage", day)
		}
		return nil
	})
}

// ListCards returns up to limit saved cards, most recently saved first.
func (r *Repo) ListCards(ctx context.Context, limit int) ([]domain.VocabularyCard, error) {
	limit = max(limit, 0)
	query := builder().
		Select(cardColumns...).
		From(cardsTable).
		OrderBy("saved_at DESC", "id").
		Limit(uint64(limit))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list cards: %w", err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	cards := make([]domain.VocabularyCard, 0, limit)
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return cards, nil
}

// SavedOn returns how many cards were saved on the given UTC day.
func (r *Repo) SavedOn(ctx context.Context, day time.Time) (int, error) {
	key := day.UTC().Format(time.DateOnly)
	query := builder().
		Select("saved").
		From(usageTable).
		Where(squirrel.Eq{"day": key})

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build saved on: %w", err)
	}

	var saved int
	err = postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, sql, args...).Scan(&saved)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, postgres.MapError(err, "card usage", key)
	}
	return saved, nil
}

// Ping checks the database connection.
func (r *Repo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanCard(row pgx.Row) (domain.VocabularyCard, error) {
	var (
		c              domain.VocabularyCard
		native, target string
		status         string
	)
	if err := row.Scan(&c.ID, &c.Word, &c.Translation, &native, &target, &status, &c.CreatedAt); err != nil {
		return domain.VocabularyCard{}, err
	}
	c.NativeLanguage = domain.LanguageCode(native)
	c.TargetLanguage = domain.LanguageCode(target)
	c.Status = domain.CardStatus(status)
	return c, nil
}
