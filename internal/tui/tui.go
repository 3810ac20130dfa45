// Package tui is an interactive browser for stored stories.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"storysmith/internal/core"
	"storysmith/internal/quality"
)

// model represents the state of the TUI application.
type model struct {
	stories     []core.Story
	scores      []*quality.InvestScore // parallel to stories
	selectedIdx int
	offset      int // first body line shown in the detail pane
	width       int // Terminal width
	height      int // Terminal height
	quitting    bool
}

// InitialModel scores every story up front so navigation stays instant.
func InitialModel(stories []core.Story, evaluator *quality.Evaluator) model {
	if evaluator == nil {
		evaluator = quality.NewEvaluator()
	}
	scores := make([]*quality.InvestScore, len(stories))
	for i, s := range stories {
		scores[i] = evaluator.Evaluate(s)
	}
	return model{stories: stories, scores: scores, width: 100, height: 30}
}

// Init is the first command that will be run. We don't need any for now.
func (m model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model accordingly.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			if m.selectedIdx > 0 {
				m.selectedIdx--
				m.offset = 0
			}
		case "down", "j":
			if m.selectedIdx < len(m.stories)-1 {
				m.selectedIdx++
				m.offset = 0
			}
		case "pgdown", "J":
			if m.offset < m.bodyLines()-1 {
				m.offset++
			}
		case "pgup", "K":
			if m.offset > 0 {
				m.offset--
			}
		}
	}

	return m, nil
}

func (m model) bodyLines() int {
	if len(m.stories) == 0 {
		return 0
	}
	return strings.Count(m.stories[m.selectedIdx].Body, "\n") + 1
}

var gradeColours = map[string]lipgloss.Color{"A": "2", "B": "6", "C": "3", "D": "1"}

// View renders the TUI.
func (m model) View() string {
	if m.quitting {
		return "Quitting...\n"
	}

	paneWidth := max(m.width/2-5, 20)
	paneHeight := max(m.height-8, 5)
	docStyle := lipgloss.NewStyle().Margin(1, 2)
	listStyle := lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true).Padding(1).Width(paneWidth)
	detailStyle := lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true).Padding(1).Width(paneWidth)

	var list strings.Builder
	list.WriteString(lipgloss.NewStyle().Bold(true).Render("Histórias") + "\n\n")
	if len(m.stories) == 0 {
		list.WriteString("Nenhuma história armazenada.")
	}
	for i, s := range m.stories {
		cursor := " "
		if i == m.selectedIdx {
			cursor = ">"
		}
		grade := lipgloss.NewStyle().Foreground(gradeColours[m.scores[i].Grade]).Render(m.scores[i].Grade)
		fmt.Fprintf(&list, "%s %s [%s] %s\n", cursor, grade, s.Category, s.Title)
	}

	detail := "Selecione uma história."
	if len(m.stories) > 0 {
		s, score := m.stories[m.selectedIdx], m.scores[m.selectedIdx]
		lines := strings.Split(s.Body, "\n")
		end := min(m.offset+paneHeight, len(lines))
		detail = fmt.Sprintf("%s  INVEST %d/100 (%s)\n%s\n\n%s",
			s.ID[:min(8, len(s.ID))], score.Overall, score.Grade,
			strings.Repeat("─", paneWidth-2),
			strings.Join(lines[m.offset:end], "\n"))
	}

	mainContent := lipgloss.JoinHorizontal(lipgloss.Top, listStyle.Render(list.String()), detailStyle.Render(detail))

	help := "\n\n[↑/k] Up | [↓/j] Down | [J/K] Scroll | [q] Quit"

	return docStyle.Render(mainContent + help)
}

// Run starts the Bubble Tea program and blocks until the user quits.
func Run(stories []core.Story, evaluator *quality.Evaluator) error {
	p := tea.NewProgram(InitialModel(stories, evaluator), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
