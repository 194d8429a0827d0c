package tasks

import (
	"fmt"

	"github.com/desertthunder/memoru/internal/models"
	"github.com/desertthunder/memoru/internal/shared"
)

// ProgressUpdate represents a progress event during a long-running operation.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Phase of an operation.
type Phase int

const (
	ParseInput Phase = iota
	CreateCards
	CacheCards
)

func (p Phase) String() string {
	switch p {
	case ParseInput:
		return "parse_input"
	case CreateCards:
		return "create_cards"
	case CacheCards:
		return "cache_cards"
	default:
		return ""
	}
}

// sendProgress sends an update without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func startImportUpdate(total int, batchID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreateCards,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Importing %d cards (batch %s)...", total, batchID),
	}
}

func cardCreatedUpdate(step, total int, card *models.Card) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreateCards,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, shared.Truncate(card.Front, 40)),
		Data:    card,
	}
}

func cardFailedUpdate(step, total int, req models.CreateCardRequest, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreateCards,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, shared.Truncate(req.Front, 40), err),
	}
}

func cacheUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CacheCards,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Caching %d cards locally...", count),
	}
}
