package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"

	"storysmith/internal/core"
	"storysmith/internal/quality"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	scoreBox     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	gradeColours = map[string]lipgloss.Color{"A": "2", "B": "6", "C": "3", "D": "1"}
)

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func printProblems(w io.Writer, problems []string) {
	fmt.Fprintln(w, errorStyle.Render("❌ Formulário inválido:"))
	for _, p := range problems {
		fmt.Fprintf(w, "   • %s\n", p)
	}
}

// printStories renders the stories as a table, oldest first.
func printStories(w io.Writer, stories []core.Story) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"ID", "Category", "Title", "Points", "Created"})
	for _, s := range stories {
		tw.AppendRow(table.Row{
			s.ID[:min(8, len(s.ID))],
			s.Category,
			truncate(s.Title, 48),
			s.Complexity,
			s.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	tw.AppendFooter(table.Row{"", "", "Total", len(stories), ""})
	tw.Render()
}

// printScore renders one INVEST assessment.
func printScore(w io.Writer, s core.Story, score *quality.InvestScore) {
	grade := lipgloss.NewStyle().Bold(true).Foreground(gradeColours[score.Grade]).Render(score.Grade)
	header := fmt.Sprintf("%s\n%s  %d/100  (%s)", titleStyle.Render(s.Title), grade, score.Overall, score.Source)

	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Dimension", "Score", "Justification"})
	for _, d := range quality.Dimensions() {
		tw.AppendRow(table.Row{d.Label(), score.Get(d), score.Justifications[d]})
	}

	fmt.Fprintln(w, scoreBox.Render(header))
	fmt.Fprintln(w, tw.Render())

	for _, item := range score.Strengths {
		fmt.Fprintln(w, okStyle.Render("✓ "+item))
	}
	for _, item := range score.Weaknesses {
		fmt.Fprintln(w, warnStyle.Render("⚠ "+item))
	}
	if len(score.Suggestions) > 0 {
		fmt.Fprintln(w, titleStyle.Render("\nSugestões:"))
		for i, item := range score.Suggestions {
			fmt.Fprintf(w, "%d. %s\n", i+1, item)
		}
	}
}

// printAudit renders the aggregate report for a set of stories.
func printAudit(w io.Writer, stories []core.Story, report *quality.AuditReport) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"ID", "Title", "Overall", "Grade"})
	for _, s := range stories {
		score := report.Scores[s.ID]
		tw.AppendRow(table.Row{s.ID[:min(8, len(s.ID))], truncate(s.Title, 48), score.Overall, score.Grade})
	}
	tw.AppendFooter(table.Row{"", "Average", fmt.Sprintf("%.1f", report.AvgOverall), ""})
	tw.Render()

	var grades []string
	for _, g := range []string{"A", "B", "C", "D"} {
		grades = append(grades, fmt.Sprintf("%s: %d", g, report.GradeCounts[g]))
	}
	fmt.Fprintln(w, mutedStyle.Render(strings.Join(grades, "  ")))
	fmt.Fprintln(w, titleStyle.Render(report.Recommendation))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
