package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/memoru/internal/models"
	"github.com/desertthunder/memoru/internal/shared"
)

var _ list.Item = cardItem{}

// cardItem wraps [models.DueCard] to implement [list.Item].
type cardItem struct {
	card models.DueCard
}

func (i cardItem) FilterValue() string { return i.card.Front }
func (i cardItem) Title() string       { return shared.Truncate(strings.Join(strings.Fields(i.card.Front), " "), 60) }
func (i cardItem) Description() string {
	var desc string
	switch i.card.OverdueDays {
	case 0:
		desc = "due today"
	case 1:
		desc = "1 day overdue"
	default:
		desc = fmt.Sprintf("%d days overdue", i.card.OverdueDays)
	}
	if i.card.DeckID != nil && *i.card.DeckID != "" {
		desc = fmt.Sprintf("%s • %s", desc, *i.card.DeckID)
	}
	return desc
}

func newDeckList(cards []models.DueCard, total, width, height int) list.Model {
	items := make([]list.Item, len(cards))
	for i, card := range cards {
		items[i] = cardItem{card: card}
	}
	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = fmt.Sprintf("Due cards (%d of %d)", len(cards), total)
	l.SetShowHelp(false)
	return l
}
