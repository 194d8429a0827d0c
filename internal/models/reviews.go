package models

import (
	"fmt"
	"time"

	"github.com/desertthunder/memoru/internal/shared"
)

const (
	MinGrade = 0
	MaxGrade = 5
)

// ReviewRequest is the body of POST /reviews/{id}.
type ReviewRequest struct {
	Grade int `json:"grade"`
}

func (r ReviewRequest) Validate() error {
	if r.Grade < MinGrade || r.Grade > MaxGrade {
		return fmt.Errorf("%w: grade must be %d-%d, got %d", shared.ErrInvalidInput, MinGrade, MaxGrade, r.Grade)
	}
	return nil
}

// ReviewState is a card's schedule before or after a review.
type ReviewState struct {
	EaseFactor  float64 `json:"ease_factor"`
	Interval    int     `json:"interval"`
	Repetitions int     `json:"repetitions"`
	DueDate     *string `json:"due_date,omitempty"`
}

// ReviewResponse is returned by POST /reviews/{id}.
type ReviewResponse struct {
	CardID     string      `json:"card_id"`
	Grade      int         `json:"grade"`
	Previous   ReviewState `json:"previous"`
	Updated    ReviewState `json:"updated"`
	ReviewedAt time.Time   `json:"reviewed_at"`
}
