package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/desertthunder/memoru/internal/shared"
)

const (
	MaxFrontLength = 1000
	MaxBackLength  = 2000
	MaxTags        = 10
	MaxTagLength   = 50
)

// Card is a flashcard owned by the current user.
type Card struct {
	CardID       string     `json:"card_id"`
	UserID       string     `json:"user_id"`
	Front        string     `json:"front"`
	Back         string     `json:"back"`
	DeckID       *string    `json:"deck_id,omitempty"`
	Tags         []string   `json:"tags"`
	NextReviewAt *time.Time `json:"next_review_at,omitempty"`
	Interval     int        `json:"interval"`
	EaseFactor   float64    `json:"ease_factor"`
	Repetitions  int        `json:"repetitions"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// Due reports whether the card is scheduled at or before now. Cards without a schedule are due.
func (c Card) Due(now time.Time) bool {
	return c.NextReviewAt == nil || !c.NextReviewAt.After(now)
}

// Deck returns the deck id or an empty string.
func (c Card) Deck() string {
	if c.DeckID == nil {
		return ""
	}
	return *c.DeckID
}

// CardList is the paginated response of GET /cards.
type CardList struct {
	Cards      []Card  `json:"cards"`
	Total      int     `json:"total"`
	NextCursor *string `json:"next_cursor,omitempty"`
}

// CreateCardRequest is the body of POST /cards.
type CreateCardRequest struct {
	Front  string   `json:"front"`
	Back   string   `json:"back"`
	DeckID *string  `json:"deck_id,omitempty"`
	Tags   []string `json:"tags,omitempty"`
}

// Validate checks field lengths and normalizes tags.
func (r *CreateCardRequest) Validate() error {
	if err := validateText("front", r.Front, MaxFrontLength); err != nil {
		return err
	}
	if err := validateText("back", r.Back, MaxBackLength); err != nil {
		return err
	}

	tags, err := NormalizeTags(r.Tags)
	if err != nil {
		return err
	}
	r.Tags = tags
	return nil
}

// UpdateCardRequest is the body of PUT /cards/{id}; nil fields are left unchanged.
type UpdateCardRequest struct {
	Front  *string  `json:"front,omitempty"`
	Back   *string  `json:"back,omitempty"`
	DeckID *string  `json:"deck_id,omitempty"`
	Tags   []string `json:"tags,omitempty"`
}

// Validate checks the fields that are set.
func (r *UpdateCardRequest) Validate() error {
	if r.Front == nil && r.Back == nil && r.DeckID == nil && r.Tags == nil {
		return fmt.Errorf("%w: nothing to update", shared.ErrInvalidInput)
	}
	if r.Front != nil {
		if err := validateText("front", *r.Front, MaxFrontLength); err != nil {
			return err
		}
	}
	if r.Back != nil {
		if err := validateText("back", *r.Back, MaxBackLength); err != nil {
			return err
		}
	}
	if r.Tags != nil {
		tags, err := NormalizeTags(r.Tags)
		if err != nil {
			return err
		}
		r.Tags = tags
	}
	return nil
}

// NormalizeTags trims tags, drops empty ones and cuts each to [MaxTagLength] runes.
// More than [MaxTags] tags is an error.
func NormalizeTags(tags []string) ([]string, error) {
	if len(tags) > MaxTags {
		return nil, fmt.Errorf("%w: at most %d tags allowed, got %d", shared.ErrInvalidInput, MaxTags, len(tags))
	}

	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if r := []rune(tag); len(r) > MaxTagLength {
			tag = string(r[:MaxTagLength])
		}
		out = append(out, tag)
	}
	return out, nil
}

// DueCard is one entry of the due-cards response.
type DueCard struct {
	CardID      string     `json:"card_id"`
	Front       string     `json:"front"`
	Back        string     `json:"back"`
	DeckID      *string    `json:"deck_id,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	OverdueDays int        `json:"overdue_days"`
}

// DueCardsResponse is the response of GET /cards/due.
type DueCardsResponse struct {
	DueCards      []DueCard  `json:"due_cards"`
	TotalDueCount int        `json:"total_due_count"`
	NextDueDate   *time.Time `json:"next_due_date,omitempty"`
}

func validateText(field, value string, max int) error {
	n := utf8.RuneCountInString(value)
	switch {
	case strings.TrimSpace(value) == "":
		return fmt.Errorf("%w: %s is required", shared.ErrInvalidInput, field)
	case n > max:
		return fmt.Errorf("%w: %s must be at most %d characters, got %d", shared.ErrInvalidInput, field, max, n)
	}
	return nil
}
