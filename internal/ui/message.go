package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/memoru/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgDueCardsFetched MsgKind = iota
	MsgReviewSubmitted
)

type dueCardsResult struct {
	due *models.DueCardsResponse
	err error
}

type reviewResult struct {
	cardID string
	grade  int
	review *models.ReviewResponse
	err    error
}

// dueCardsFetchedMsg is the constructor for [MsgDueCardsFetched]
func dueCardsFetchedMsg(due *models.DueCardsResponse, err error) Msg {
	return Msg{kind: MsgDueCardsFetched, data: dueCardsResult{due, err}}
}

// reviewSubmittedMsg is the constructor for [MsgReviewSubmitted]
func reviewSubmittedMsg(cardID string, grade int, review *models.ReviewResponse, err error) Msg {
	return Msg{kind: MsgReviewSubmitted, data: reviewResult{cardID, grade, review, err}}
}
