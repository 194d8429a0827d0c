package ui

import (
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/memoru/internal/models"
)

var gradeLabels = [models.MaxGrade + 1]string{"forgot", "wrong", "hard", "unsure", "good", "perfect"}

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	start  key.Binding
	flip   key.Binding
	grades [models.MaxGrade + 1]key.Binding
	skip   key.Binding
	quit   key.Binding
}

func newKeyMap() keyMap {
	k := keyMap{
		start: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "start")),
		flip:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "flip")),
		skip:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "skip")),
		quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
	for g := range k.grades {
		n := strconv.Itoa(g)
		k.grades[g] = key.NewBinding(key.WithKeys(n), key.WithHelp(n, gradeLabels[g]))
	}
	return k
}

// grade returns the grade bound to msg, if any.
func (k keyMap) grade(msg tea.KeyMsg) (int, bool) {
	for g, b := range k.grades {
		if key.Matches(msg, b) {
			return g, true
		}
	}
	return 0, false
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.start, k.flip, k.skip},
		k.grades[:],
		{k.quit},
	}
}
