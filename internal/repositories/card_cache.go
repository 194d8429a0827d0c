package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/memoru/internal/models"
	"github.com/desertthunder/memoru/internal/shared"
)

const cardColumns = `card_id, user_id, front, back, deck_id, tags, next_review_at, interval_days, ease_factor, repetitions, created_at, updated_at`

// CardCacheRepository keeps the last fetched copy of the user's cards.
type CardCacheRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewCardCacheRepository creates a new [CardCacheRepository] with the given database connection
func NewCardCacheRepository(db *sql.DB) *CardCacheRepository {
	return &CardCacheRepository{db: db, now: time.Now}
}

// Upsert inserts or updates cards by id.
func (r *CardCacheRepository) Upsert(cards []models.Card) error {
	return inTx(r.db, func(tx *sql.Tx) error {
		return r.upsert(tx, cards)
	})
}

// Replace clears the cache and stores cards in one transaction.
func (r *CardCacheRepository) Replace(cards []models.Card) error {
	return inTx(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM card_cache"); err != nil {
			return fmt.Errorf("failed to clear card cache: %w", err)
		}
		return r.upsert(tx, cards)
	})
}

func (r *CardCacheRepository) upsert(tx *sql.Tx, cards []models.Card) error {
	stmt, err := tx.Prepare(`
		INSERT INTO card_cache (` + cardColumns + `, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(card_id) DO UPDATE SET
			user_id = excluded.user_id,
			front = excluded.front,
			back = excluded.back,
			deck_id = excluded.deck_id,
			tags = excluded.tags,
			next_review_at = excluded.next_review_at,
			interval_days = excluded.interval_days,
			ease_factor = excluded.ease_factor,
			repetitions = excluded.repetitions,
			updated_at = excluded.updated_at,
			cached_at = excluded.cached_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare card upsert: %w", err)
	}
	defer stmt.Close()

	cachedAt := r.now().UTC()
	for _, c := range cards {
		if c.CardID == "" {
			return fmt.Errorf("%w: card without id", shared.ErrInvalidInput)
		}

		tags := c.Tags
		if tags == nil {
			tags = []string{}
		}
		tagsJSON, err := json.Marshal(tags)
		if err != nil {
			return fmt.Errorf("failed to encode tags for card %s: %w", c.CardID, err)
		}

		_, err = stmt.Exec(
			c.CardID, c.UserID, c.Front, c.Back, nullString(c.DeckID), string(tagsJSON),
			nullTime(c.NextReviewAt), c.Interval, c.EaseFactor, c.Repetitions,
			c.CreatedAt.UTC(), nullTime(c.UpdatedAt), cachedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to cache card %s: %w", c.CardID, err)
		}
	}
	return nil
}

// List returns all cached cards, newest first.
func (r *CardCacheRepository) List() ([]models.Card, error) {
	rows, err := r.db.Query(`SELECT ` + cardColumns + ` FROM card_cache ORDER BY created_at DESC, card_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query card cache: %w", err)
	}
	defer rows.Close()

	return scanCards(rows)
}

// Due returns cached cards scheduled at or before now, oldest schedule first. A non-positive limit returns all.
func (r *CardCacheRepository) Due(now time.Time, limit int) ([]models.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM card_cache
		WHERE next_review_at IS NULL OR next_review_at <= ?
		ORDER BY next_review_at, card_id`
	args := []any{now.UTC()}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query due cards: %w", err)
	}
	defer rows.Close()

	return scanCards(rows)
}

// Get returns a cached card or an error wrapping [shared.ErrCardNotFound].
func (r *CardCacheRepository) Get(id string) (*models.Card, error) {
	rows, err := r.db.Query(`SELECT `+cardColumns+` FROM card_cache WHERE card_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query card: %w", err)
	}
	defer rows.Close()

	cards, err := scanCards(rows)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrCardNotFound, id)
	}
	return &cards[0], nil
}

// Delete removes one card from the cache. Missing cards are ignored.
func (r *CardCacheRepository) Delete(id string) error {
	if _, err := r.db.Exec("DELETE FROM card_cache WHERE card_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete cached card: %w", err)
	}
	return nil
}

// Clear removes every cached card.
func (r *CardCacheRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM card_cache"); err != nil {
		return fmt.Errorf("failed to clear card cache: %w", err)
	}
	return nil
}

// Count returns the number of cached cards.
func (r *CardCacheRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM card_cache").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cached cards: %w", err)
	}
	return n, nil
}

func scanCards(rows *sql.Rows) ([]models.Card, error) {
	var cards []models.Card
	for rows.Next() {
		var (
			c          models.Card
			deckID     sql.NullString
			tagsJSON   string
			nextReview sql.NullTime
			updatedAt  sql.NullTime
		)

		err := rows.Scan(
			&c.CardID, &c.UserID, &c.Front, &c.Back, &deckID, &tagsJSON,
			&nextReview, &c.Interval, &c.EaseFactor, &c.Repetitions, &c.CreatedAt, &updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cached card: %w", err)
		}

		if err := json.Unmarshal([]byte(tagsJSON), &c.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags for card %s: %w", c.CardID, err)
		}
		c.DeckID = stringPtr(deckID)
		c.NextReviewAt = timePtr(nextReview)
		c.UpdatedAt = timePtr(updatedAt)

		cards = append(cards, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cached cards: %w", err)
	}
	return cards, nil
}
