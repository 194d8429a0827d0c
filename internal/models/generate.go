package models

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/desertthunder/memoru/internal/shared"
)

const (
	MinInputLength   = 10
	MaxInputLength   = 2000
	DefaultCardCount = 5
	MaxCardCount     = 10

	DefaultDifficulty = "medium"
	DefaultLanguage   = "ja"
)

var (
	Difficulties = []string{"easy", "medium", "hard"}
	Languages    = []string{"ja", "en"}
)

// GenerateCardsRequest asks the server to draft cards from free text.
type GenerateCardsRequest struct {
	InputText  string `json:"input_text"`
	CardCount  int    `json:"card_count"`
	Difficulty string `json:"difficulty"`
	Language   string `json:"language"`
}

// Validate trims the input text and fills defaults for zero-valued options.
func (r *GenerateCardsRequest) Validate() error {
	r.InputText = strings.TrimSpace(r.InputText)
	n := utf8.RuneCountInString(r.InputText)
	if n < MinInputLength || n > MaxInputLength {
		return fmt.Errorf("%w: input text must be %d-%d characters, got %d", shared.ErrInvalidInput, MinInputLength, MaxInputLength, n)
	}

	if r.CardCount == 0 {
		r.CardCount = DefaultCardCount
	}
	if r.CardCount < 1 || r.CardCount > MaxCardCount {
		return fmt.Errorf("%w: card count must be 1-%d, got %d", shared.ErrInvalidInput, MaxCardCount, r.CardCount)
	}

	if r.Difficulty == "" {
		r.Difficulty = DefaultDifficulty
	}
	if !slices.Contains(Difficulties, r.Difficulty) {
		return fmt.Errorf("%w: difficulty must be one of %s", shared.ErrInvalidInput, strings.Join(Difficulties, ", "))
	}

	if r.Language == "" {
		r.Language = DefaultLanguage
	}
	if !slices.Contains(Languages, r.Language) {
		return fmt.Errorf("%w: language must be one of %s", shared.ErrInvalidInput, strings.Join(Languages, ", "))
	}
	return nil
}

// GeneratedCard is a draft card that has not been saved yet.
type GeneratedCard struct {
	Front         string   `json:"front"`
	Back          string   `json:"back"`
	SuggestedTags []string `json:"suggested_tags"`
}

// CreateRequest converts the draft into a create request using its suggested tags.
func (g GeneratedCard) CreateRequest() CreateCardRequest {
	return CreateCardRequest{Front: g.Front, Back: g.Back, Tags: g.SuggestedTags}
}

type GenerationInfo struct {
	InputLength      int    `json:"input_length"`
	ModelUsed        string `json:"model_used"`
	ProcessingTimeMS int    `json:"processing_time_ms"`
}

// GenerateCardsResponse is the response of POST /cards/generate.
type GenerateCardsResponse struct {
	GeneratedCards []GeneratedCard `json:"generated_cards"`
	GenerationInfo GenerationInfo  `json:"generation_info"`
}
