package quality

import "storysmith/internal/core"

// AuditReport aggregates heuristic scores across a set of stories.
type AuditReport struct {
	TotalStories   int                     `json:"total_stories"`
	AvgOverall     float64                 `json:"avg_overall"`
	GradeCounts    map[string]int          `json:"grade_counts"`
	WeakDimensions map[Dimension]int       `json:"weak_dimensions"` // stories with the dimension below the weakness cutoff
	Scores         map[string]*InvestScore `json:"scores"`          // keyed by story ID
	Recommendation string                  `json:"recommendation"`
}

// Audit scores every story and summarises the results.
func (e *Evaluator) Audit(stories []core.Story) *AuditReport {
	report := &AuditReport{
		TotalStories:   len(stories),
		GradeCounts:    make(map[string]int),
		WeakDimensions: make(map[Dimension]int),
		Scores:         make(map[string]*InvestScore, len(stories)),
	}

	total := 0
	for _, s := range stories {
		score := e.Evaluate(s)
		report.Scores[s.ID] = score
		report.GradeCounts[score.Grade]++
		total += score.Overall
		for _, d := range Dimensions() {
			if score.Get(d) < e.thresholds.WeaknessBelow {
				report.WeakDimensions[d]++
			}
		}
	}
	if report.TotalStories > 0 {
		report.AvgOverall = float64(total) / float64(report.TotalStories)
	}

	// Recommend work on the most frequent weakness.
	var worst Dimension
	for _, d := range Dimensions() {
		if report.WeakDimensions[d] > report.WeakDimensions[worst] {
			worst = d
		}
	}
	switch {
	case report.TotalStories == 0:
		report.Recommendation = "Nenhuma história para avaliar"
	case worst == "":
		report.Recommendation = "Histórias sem pontos fracos recorrentes"
	default:
		report.Recommendation = "Ponto fraco mais frequente: " + worst.Label()
	}
	return report
}
