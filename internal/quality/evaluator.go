package quality

import (
	"fmt"
	"regexp"
	"strings"

	"storysmith/internal/core"
)

// dependencyKeywords signal that a story cannot be delivered on its own.
var dependencyKeywords = []string{
	"depende de",
	"após",
	"depois de",
	"requer que",
	"necessita da",
	"bloqueada por",
	"aguardar",
}

// English keywords match whole words only, so "thereafter" is not a dependency.
var englishDependencyPattern = regexp.MustCompile(`\b(?:depends on|after|requires that|blocked by|awaiting)\b`)

// Evaluator scores stories against the INVEST heuristics. It is pure and safe for concurrent use.
type Evaluator struct {
	thresholds Thresholds
}

// NewEvaluator creates a new evaluator with default thresholds
func NewEvaluator() *Evaluator {
	return &Evaluator{thresholds: DefaultThresholds()}
}

// NewEvaluatorWithThresholds creates an evaluator with custom thresholds
func NewEvaluatorWithThresholds(thresholds Thresholds) *Evaluator {
	return &Evaluator{thresholds: thresholds}
}

// Thresholds returns the evaluator's configuration.
func (e *Evaluator) Thresholds() Thresholds { return e.thresholds }

// Evaluate scores a story. It never modifies the story and never fails; missing fields score as
// their zero values.
func (e *Evaluator) Evaluate(story core.Story) *InvestScore {
	body := strings.ToLower(story.Body)
	criteria := len(story.AcceptanceCriteria())

	score := &InvestScore{
		Independence:   IndependenceScore(body),
		Negotiability:  e.thresholds.NegotiabilityScore,
		Value:          ValueScore(story.Objectives.Filled()),
		Estimability:   EstimabilityScore(story.Complexity),
		SizeFit:        SizeFitScore(story.Complexity),
		Testability:    TestabilityScore(criteria),
		Justifications: make(map[Dimension]string, 6),
		Source:         SourceHeuristic,
	}

	score.Justifications[Independence] = justifyIndependence(score.Independence)
	score.Justifications[Negotiability] = "Avaliação completa requer análise com IA"
	score.Justifications[Value] = justifyValue(score.Value)
	score.Justifications[Estimability] = justifyEstimability(score.Estimability)
	score.Justifications[SizeFit] = justifySize(score.SizeFit, story.Complexity)
	score.Justifications[Testability] = justifyTestability(score.Testability)

	e.finish(score)
	score.Suggestions = e.suggestions(story, body, score)
	return score
}

// finish derives the overall score, grade, strengths and weaknesses from the sub-scores.
func (e *Evaluator) finish(score *InvestScore) {
	score.Overall = e.thresholds.overall(score)
	score.Grade = e.thresholds.grade(score.Overall)
	score.Strengths, score.Weaknesses = e.strengthsAndWeaknesses(score)
}

func (e *Evaluator) strengthsAndWeaknesses(score *InvestScore) ([]string, []string) {
	strengths := []string{}
	weaknesses := []string{}
	for _, d := range Dimensions() {
		v := score.Get(d)
		entry := fmt.Sprintf("%s: %d%%", d.Label(), v)
		if v >= e.thresholds.StrengthMin {
			strengths = append(strengths, entry)
		} else if v < e.thresholds.WeaknessBelow {
			weaknesses = append(weaknesses, entry)
		}
	}
	return strengths, weaknesses
}

// CountDependencyMentions counts dependency phrases in an already lower-cased body.
func CountDependencyMentions(body string) int {
	count := 0
	for _, kw := range dependencyKeywords {
		count += strings.Count(body, kw)
	}
	return count + len(englishDependencyPattern.FindAllStringIndex(body, -1))
}

// IndependenceScore scores a lower-cased body by its dependency mentions.
func IndependenceScore(body string) int {
	switch n := CountDependencyMentions(body); {
	case n == 0:
		return 100
	case n == 1:
		return 70
	default:
		return 40
	}
}

// ValueScore scores the number of non-empty objectives.
func ValueScore(filled int) int {
	switch {
	case filled <= 0:
		return 30
	case filled == 1:
		return 70
	default:
		return 90
	}
}

// EstimabilityScore is 100 when a complexity was estimated.
func EstimabilityScore(complexity int) int {
	if complexity > 0 {
		return 100
	}
	return 20
}

// SizeFitScore scores the complexity estimate; 0 means not estimated.
func SizeFitScore(complexity int) int {
	switch {
	case complexity <= 0:
		return 50
	case complexity <= 5:
		return 100
	case complexity <= 8:
		return 90
	case complexity <= 13:
		return 70
	default:
		return 30
	}
}

// TestabilityScore scores the number of acceptance criteria.
func TestabilityScore(criteria int) int {
	switch {
	case criteria <= 0:
		return 10
	case criteria == 1:
		return 50
	case criteria == 2:
		return 70
	default:
		return 100
	}
}

func justifyIndependence(score int) string {
	switch {
	case score >= 80:
		return "História não menciona dependências explícitas de outras histórias"
	case score >= 50:
		return "História menciona algumas dependências, mas pode ser desenvolvida independentemente"
	default:
		return "História possui múltiplas dependências que podem bloquear o desenvolvimento"
	}
}

func justifyValue(score int) string {
	switch {
	case score >= 80:
		return "Objetivos técnicos e de negócio estão claramente definidos"
	case score >= 50:
		return "Valor está presente mas poderia ser mais explícito"
	default:
		return "Valor de negócio ou técnico não está claro"
	}
}

func justifyEstimability(score int) string {
	if score >= 80 {
		return "Complexidade foi estimada, tornando a história estimável"
	}
	return "Falta estimativa de complexidade"
}

func justifySize(score, complexity int) string {
	switch {
	case complexity <= 0:
		return "Complexidade não definida"
	case score >= 90:
		return fmt.Sprintf("Complexidade de %d pontos é adequada para uma sprint", complexity)
	case score >= 70:
		return fmt.Sprintf("Complexidade de %d pontos está no limite, considere quebrar", complexity)
	default:
		return fmt.Sprintf("Complexidade de %d pontos é muito alta, a história deve ser quebrada", complexity)
	}
}

func justifyTestability(score int) string {
	switch {
	case score >= 80:
		return "Critérios de aceitação estão bem definidos e são testáveis"
	case score >= 50:
		return "Possui alguns critérios, mas poderia ter mais para cobrir casos de borda"
	default:
		return "Faltam critérios de aceitação claros e testáveis"
	}
}
