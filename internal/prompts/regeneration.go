package prompts

import (
	"fmt"
	"strings"

	"storysmith/internal/core"
)

// Section identifiers accepted by the regenerator.
const (
	SectionCriteria      = "criteria"
	SectionTestScenarios = "test-scenarios"
	SectionArchitecture  = "architecture"
	SectionBenefits      = "benefits"
)

var sectionLabels = map[string]string{
	SectionCriteria:      "Criterios de Aceitacao",
	SectionTestScenarios: "Cenarios de Teste Sugeridos",
	SectionArchitecture:  "Estrutura Tecnica/Arquitetura",
	SectionBenefits:      "Beneficios",
}

// SectionIDs lists the regenerable section identifiers in display order.
func SectionIDs() []string {
	return []string{SectionCriteria, SectionTestScenarios, SectionArchitecture, SectionBenefits}
}

// SectionLabel maps a section identifier to the heading text the model must emit.
func SectionLabel(id string) (string, bool) {
	label, ok := sectionLabels[strings.ToLower(strings.TrimSpace(id))]
	return label, ok
}

// categoryLabels holds the headings a category's template uses instead of the Business ones.
var categoryLabels = map[core.Category]map[string]string{
	core.CategorySpike: {
		SectionCriteria: "Critérios de Sucesso",
	},
	core.CategoryKaizen: {
		SectionCriteria: "Critérios de Aceitação",
	},
	core.CategoryFix: {
		SectionCriteria:      "Critérios de Aceitação",
		SectionTestScenarios: "Cenários de Teste",
	},
}

// SectionLabelFor is SectionLabel resolved against the headings the category's template emits.
func SectionLabelFor(id string, category core.Category) (string, bool) {
	label, ok := SectionLabel(id)
	if !ok {
		return "", false
	}
	if override, found := categoryLabels[category][strings.ToLower(strings.TrimSpace(id))]; found {
		return override, true
	}
	return label, true
}

// Regeneration builds the prompt that asks the model to rewrite a single section of an existing
// document. The whole original document and the structured inputs are embedded for context.
func Regeneration(label, original string, form core.FormSubmission) string {
	form = form.Clean()

	var b strings.Builder
	b.WriteString("<task>\n")
	fmt.Fprintf(&b, "Regenere APENAS a seção \"%s\" desta história.\n", label)
	b.WriteString("Mantenha todo o contexto e as informações da história original.\n")
	b.WriteString("</task>\n\n")

	writeCriticalRules(&b,
		"NUNCA ADICIONAR EMOJIS OU SÍMBOLOS DECORATIVOS",
		"USAR APENAS INFORMAÇÕES FORNECIDAS",
		"SER OBJETIVA E DIRETA",
		"NÃO INVENTAR NADA",
	)

	writeBlock(&b, "original_story", original)
	b.WriteString("\n")
	writeBlock(&b, "form_data", formSummary(form))
	b.WriteString("\n")
	writeBlock(&b, "section_to_regenerate", label)
	b.WriteString("\n")

	b.WriteString("<instructions>\n")
	b.WriteString("1. Analise o contexto da história completa\n")
	fmt.Fprintf(&b, "2. Regenere APENAS a seção \"%s\"\n", label)
	b.WriteString("3. Mantenha consistência com o resto da história\n")
	b.WriteString("4. Use o mesmo nível de detalhe técnico\n")
	fmt.Fprintf(&b, "5. Retorne APENAS a seção em Markdown, começando com ### %s\n", label)
	b.WriteString("</instructions>\n\n")

	b.WriteString("<output_format>\n")
	fmt.Fprintf(&b, "### %s\n\n[Conteúdo regenerado da seção]\n", label)
	b.WriteString("</output_format>\n\n")

	b.WriteString("Retorne APENAS a seção solicitada em Markdown, sem texto adicional.")
	return b.String()
}

// formSummary lists the structured inputs of a submission for its category.
func formSummary(form core.FormSubmission) string {
	var lines []string
	add := func(label, value string) {
		if value != "" {
			lines = append(lines, label+": "+value)
		}
	}
	addList := func(label string, items []string) {
		if len(items) == 0 {
			return
		}
		lines = append(lines, label+":", bulletList(items, ""))
	}

	add("Título", form.Title)
	add("Categoria", string(form.Category))
	switch form.Category {
	case core.CategorySpike:
		add("Pergunta/Hipótese", form.Spike.Question)
		addList("Alternativas", form.Spike.Alternatives)
		add("Timebox (horas)", fmt.Sprint(form.Spike.TimeboxHours))
		add("Output esperado", form.Spike.ExpectedOutput)
		addList("Critérios de Sucesso", form.Spike.SuccessCriteria)
	case core.CategoryKaizen:
		add("Processo", form.Kaizen.Process)
		add("Situação atual", form.Kaizen.CurrentState)
		add("Meta", form.Kaizen.Goal)
		addList("Métricas de Sucesso", form.Kaizen.Metrics)
		add("Impacto esperado", form.Kaizen.ExpectedImpact)
	case core.CategoryFix:
		add("Descrição", form.Fix.Description)
		addList("Passos para Reproduzir", form.Fix.ReproductionSteps)
		add("Comportamento esperado", form.Fix.ExpectedBehavior)
		add("Comportamento atual", form.Fix.ActualBehavior)
		add("Ambiente", form.Fix.Environment)
		add("Severidade", form.Fix.Severity)
	default:
		addList("Regras de Negócio", form.Business.BusinessRules)
		addList("APIs/Serviços", form.Business.Integrations)
		addList("Critérios de Aceitação", form.Business.AcceptanceCriteria)
	}
	if form.Objectives.Filled() > 0 {
		lines = append(lines, "Objetivos:", objectiveLines(form.Objectives))
	}
	add("Complexidade", fmt.Sprint(form.Complexity))
	return strings.Join(lines, "\n")
}
