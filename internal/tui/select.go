// Package tui provides the interactive Bubble Tea episode picker.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"shufflepod/internal/media"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D")).
			MarginTop(1)
)

// ErrAborted is returned when the user quits the picker without
// confirming a selection.
var ErrAborted = fmt.Errorf("episode selection aborted")

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	All     key.Binding
	None    key.Binding
	Confirm key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k")),
	Down:    key.NewBinding(key.WithKeys("down", "j")),
	Toggle:  key.NewBinding(key.WithKeys(" ", "x")),
	All:     key.NewBinding(key.WithKeys("a")),
	None:    key.NewBinding(key.WithKeys("n")),
	Confirm: key.NewBinding(key.WithKeys("enter")),
	Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c")),
}

// Model is the Bubble Tea model for the episode picker.
type Model struct {
	episodes []media.Episode
	titles   map[string]string
	selected map[int]bool
	cursor   int
	done     bool
	aborted  bool
}

// NewModel creates a picker over the given Up Next episodes. Podcast
// titles are resolved through titles for display; unknown podcasts
// show the episode title alone. Everything except the first episode
// starts selected, since the first one is usually mid-listen.
func NewModel(episodes []media.Episode, titles map[string]string) Model {
	selected := make(map[int]bool, len(episodes))
	for i := range episodes {
		selected[i] = i != 0
	}

	return Model{
		episodes: episodes,
		titles:   titles,
		selected: selected,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles key events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, keys.Quit):
		m.aborted = true

		return m, tea.Quit
	case key.Matches(keyMsg, keys.Confirm):
		m.done = true

		return m, tea.Quit
	case key.Matches(keyMsg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, keys.Down):
		if m.cursor < len(m.episodes)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, keys.Toggle):
		m.selected[m.cursor] = !m.selected[m.cursor]
	case key.Matches(keyMsg, keys.All):
		for i := range m.episodes {
			m.selected[i] = true
		}
	case key.Matches(keyMsg, keys.None):
		for i := range m.episodes {
			m.selected[i] = false
		}
	}

	return m, nil
}

// View renders the picker.
func (m Model) View() string {
	if m.done || m.aborted {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Select episodes to sync"))
	b.WriteString("\n")

	for i, ep := range m.episodes {
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
		}

		check := dimStyle.Render("[ ]")
		label := m.label(ep)

		if m.selected[i] {
			check = selectedStyle.Render("[x]")
		} else {
			label = dimStyle.Render(label)
		}

		b.WriteString(fmt.Sprintf("%s%s %s\n", cursor, check, label))
	}

	b.WriteString(helpStyle.Render("space toggle · a all · n none · enter confirm · q quit"))
	b.WriteString("\n")

	return b.String()
}

func (m Model) label(ep media.Episode) string {
	if title, ok := m.titles[ep.Podcast]; ok && title != "" {
		return fmt.Sprintf("%s - %s", title, ep.Title)
	}

	return ep.Title
}

// Selection returns the confirmed episodes in their queue order.
func (m Model) Selection() []media.Episode {
	picked := make([]media.Episode, 0, len(m.episodes))

	for i, ep := range m.episodes {
		if m.selected[i] {
			picked = append(picked, ep)
		}
	}

	return picked
}

// SelectEpisodes runs the picker and returns the chosen episodes.
// Returns ErrAborted if the user quit without confirming.
func SelectEpisodes(episodes []media.Episode, titles map[string]string) ([]media.Episode, error) {
	if len(episodes) == 0 {
		return nil, nil
	}

	p := tea.NewProgram(NewModel(episodes, titles))

	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("running episode picker: %w", err)
	}

	m, ok := final.(Model)
	if !ok || m.aborted {
		return nil, ErrAborted
	}

	return m.Selection(), nil
}
