package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/memoru/internal/models"
	"github.com/desertthunder/memoru/internal/shared"
)

// Reviewer is the part of the API the review session needs. [*apiclient.Client] implements it.
type Reviewer interface {
	DueCards(ctx context.Context, limit int) (*models.DueCardsResponse, error)
	SubmitReview(ctx context.Context, cardID string, grade int) (*models.ReviewResponse, error)
}

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoadingView ViewState = iota
	DeckView
	ReviewView
	SummaryView
)

// Summary counts the outcome of a session.
type Summary struct {
	Total    int // Cards loaded
	Reviewed int
	Skipped  int
	Failed   int // Reviews the API rejected
	Grades   [models.MaxGrade + 1]int
}

// Correct returns the number of reviews graded 3 or higher.
func (s Summary) Correct() int {
	n := 0
	for g := 3; g <= models.MaxGrade; g++ {
		n += s.Grades[g]
	}
	return n
}

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	api        Reviewer
	limit      int
	view       ViewState
	width      int
	height     int
	deck       list.Model
	cards      []models.DueCard
	totalDue   int
	index      int
	flipped    bool
	submitting bool
	status     string
	summary    Summary
	err        error
	help       help.Model
	keys       keyMap
}

// NewModel creates a review session for up to limit due cards (0 uses the server default).
func NewModel(ctx context.Context, api Reviewer, limit int) *Model {
	return &Model{
		ctx:   ctx,
		api:   api,
		limit: limit,
		view:  LoadingView,
		help:  help.New(),
		keys:  newKeyMap(),
	}
}

// Init starts the session by fetching due cards.
func (m *Model) Init() tea.Cmd {
	return m.fetchDueCards()
}

// Summary returns the session counts so far.
func (m *Model) Summary() Summary { return m.summary }

// Err returns the error that ended the session, if any.
func (m *Model) Err() error { return m.err }

// State returns the current view.
func (m *Model) State() ViewState { return m.view }

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.view == DeckView {
			m.deck.SetSize(msg.Width-4, msg.Height-6)
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		switch m.view {
		case DeckView:
			return m.handleDeckKeys(msg)
		case ReviewView:
			return m.handleReviewKeys(msg)
		}
		return m, nil

	case Msg:
		switch msg.kind {
		case MsgDueCardsFetched:
			return m.handleDueCards(msg.data.(dueCardsResult))
		case MsgReviewSubmitted:
			return m.handleReviewResult(msg.data.(reviewResult))
		}
	}

	if m.view == DeckView {
		var cmd tea.Cmd
		m.deck, cmd = m.deck.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleDueCards(res dueCardsResult) (tea.Model, tea.Cmd) {
	if res.err != nil {
		m.err = res.err
		return m, tea.Quit
	}

	m.cards = res.due.DueCards
	m.totalDue = res.due.TotalDueCount
	m.summary = Summary{Total: len(m.cards)}
	if len(m.cards) == 0 {
		m.view = SummaryView
		return m, nil
	}

	m.deck = newDeckList(m.cards, m.totalDue, max(m.width-4, 20), max(m.height-6, 10))
	m.view = DeckView
	return m, nil
}

func (m *Model) handleReviewResult(res reviewResult) (tea.Model, tea.Cmd) {
	m.submitting = false

	if res.err != nil {
		if errors.Is(res.err, shared.ErrNotAuthenticated) {
			m.err = res.err
			return m, tea.Quit
		}
		m.summary.Failed++
		m.status = styles.err.Render(fmt.Sprintf("✗ Review failed: %v", res.err))
		m.advance()
		return m, nil
	}

	m.summary.Reviewed++
	m.summary.Grades[res.grade]++
	m.status = gradeStyle(res.grade).Render(fmt.Sprintf("✓ Graded %d (%s)", res.grade, gradeLabels[res.grade]))
	if res.review != nil && res.review.Updated.DueDate != nil {
		m.status += styles.help.Render(fmt.Sprintf(" • next review %s", *res.review.Updated.DueDate))
	}
	m.advance()
	return m, nil
}

func (m *Model) handleDeckKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.start) && m.deck.FilterState() != list.Filtering {
		m.index = 0
		m.flipped = false
		m.view = ReviewView
		return m, nil
	}

	var cmd tea.Cmd
	m.deck, cmd = m.deck.Update(msg)
	return m, cmd
}

func (m *Model) handleReviewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.flip):
		m.flipped = !m.flipped
		return m, nil
	case key.Matches(msg, m.keys.skip):
		m.summary.Skipped++
		m.status = styles.warn.Render("→ Skipped")
		m.advance()
		return m, nil
	}

	if grade, ok := m.keys.grade(msg); ok && m.flipped {
		m.submitting = true
		return m, m.submitReview(m.cards[m.index].CardID, grade)
	}
	return m, nil
}

func (m *Model) advance() {
	m.index++
	m.flipped = false
	if m.index >= len(m.cards) {
		m.view = SummaryView
	}
}

func (m *Model) fetchDueCards() tea.Cmd {
	return func() tea.Msg {
		due, err := m.api.DueCards(m.ctx, m.limit)
		return dueCardsFetchedMsg(due, err)
	}
}

func (m *Model) submitReview(cardID string, grade int) tea.Cmd {
	return func() tea.Msg {
		review, err := m.api.SubmitReview(m.ctx, cardID, grade)
		return reviewSubmittedMsg(cardID, grade, review, err)
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v", m.err)) + "\n"
	}

	switch m.view {
	case LoadingView:
		return "Loading due cards...\n"
	case DeckView:
		return m.renderDeck()
	case ReviewView:
		return m.renderReview()
	case SummaryView:
		return m.renderSummary()
	default:
		return ""
	}
}

func (m *Model) renderDeck() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.start, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.deck.View(), helpView)
}

func (m *Model) renderReview() string {
	card := m.cards[m.index]

	var b strings.Builder
	b.WriteString(styles.title.Render(fmt.Sprintf("Card %d of %d", m.index+1, len(m.cards))))
	b.WriteString("\n")

	content := card.Front
	if m.flipped {
		content = card.Front + "\n\n" + styles.help.Render("────") + "\n\n" + card.Back
	}
	b.WriteString(styles.card.Render(content))
	b.WriteString("\n\n")

	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n\n")
	}

	var helpKeys []key.Binding
	switch {
	case m.submitting:
		b.WriteString(styles.help.Render("Submitting..."))
		b.WriteString("\n")
	case m.flipped:
		helpKeys = append(helpKeys, m.keys.grades[:]...)
		helpKeys = append(helpKeys, m.keys.flip, m.keys.skip, m.keys.quit)
	default:
		helpKeys = []key.Binding{m.keys.flip, m.keys.skip, m.keys.quit}
	}
	if len(helpKeys) > 0 {
		b.WriteString(m.help.ShortHelpView(helpKeys))
	}
	return b.String()
}

func (m *Model) renderSummary() string {
	if m.summary.Total == 0 {
		return fmt.Sprintf("%s\n\n%s",
			styles.ok.Render("✓ No cards due. Nice work!"),
			m.help.ShortHelpView([]key.Binding{m.keys.quit}),
		)
	}

	var b strings.Builder
	b.WriteString(styles.ok.Render("✓ Session complete!"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Reviewed: %d/%d\n", m.summary.Reviewed, m.summary.Total)
	fmt.Fprintf(&b, "Correct:  %d\n", m.summary.Correct())
	if m.summary.Skipped > 0 {
		fmt.Fprintf(&b, "Skipped:  %d\n", m.summary.Skipped)
	}
	if m.summary.Failed > 0 {
		b.WriteString(styles.warn.Render(fmt.Sprintf("Failed:   %d", m.summary.Failed)))
		b.WriteString("\n")
	}
	if remaining := m.totalDue - m.summary.Total; remaining > 0 {
		fmt.Fprintf(&b, "\n%d more cards are due.\n", remaining)
	}

	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.quit}))
	return b.String()
}
