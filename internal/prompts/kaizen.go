package prompts

import (
	"fmt"
	"strings"

	"storysmith/internal/core"
)

// KaizenBuilder builds prompts for continuous-improvement stories.
type KaizenBuilder struct{}

// Build implements Builder.
func (KaizenBuilder) Build(form core.FormSubmission) string {
	form = form.Clean()
	f := form.Kaizen

	var b strings.Builder
	writeTaskHeader(&b, "KAIZEN (melhoria contínua)")
	writeCriticalRules(&b,
		"NUNCA ADICIONAR EMOJIS OU SÍMBOLOS DECORATIVOS",
		"FOCAR EM MÉTRICAS E RESULTADOS MENSURÁVEIS",
		"COMPARAR ESTADO ATUAL COM ESTADO DESEJADO",
		"SER ESPECÍFICO SOBRE O IMPACTO ESPERADO",
		"USAR APENAS AS MÉTRICAS E DADOS FORNECIDOS",
	)

	b.WriteString("<input_data>\n")
	writeTag(&b, "titulo", form.Title)
	writeTag(&b, "processo_area", f.Process)
	writeTag(&b, "situacao_atual", f.CurrentState)
	writeTag(&b, "meta_desejada", f.Goal)
	writeBlock(&b, "metricas_sucesso", bulletList(f.Metrics, ""))
	if f.ExpectedImpact != "" {
		writeTag(&b, "impacto_esperado", f.ExpectedImpact)
	}
	writeTag(&b, "complexidade", fmt.Sprint(form.Complexity))
	b.WriteString("</input_data>\n\n")

	b.WriteString("<mandatory_structure>\n")
	b.WriteString("## [Título]\n\n")
	writeSection(&b, "### Contexto",
		"Descreva o processo atual, por que precisa ser melhorado e o impacto na entrega de valor.")
	writeSection(&b, "### Situação Atual (Baseline)",
		"Detalhe o estado atual com os dados fornecidos:",
		"- Métricas atuais",
		"- Problemas identificados",
		"- Impacto negativo no time ou processo")
	writeSection(&b, "### Meta Desejada",
		"Descreva o estado futuro esperado com métricas alvo e melhorias específicas.")
	writeSection(&b, "### Plano de Melhoria",
		"Liste as ações necessárias para atingir a meta, cada uma com descrição e impacto esperado.")
	writeSection(&b, "### Métricas de Sucesso",
		"Inclua TODAS as métricas fornecidas, com a frequência de medição.")
	writeSection(&b, "### Impacto Esperado",
		"Descreva o impacto no time, no processo e na entrega de valor.")
	writeSection(&b, "### Critérios de Aceitação",
		"CA1 - [Critério mensurável]",
		"Dado que [situação atual]",
		"Quando [melhoria implementada]",
		"Então [resultado esperado com métrica]")
	writeSection(&b, "### Riscos e Mitigações",
		"Liste possíveis riscos na implementação e como mitigá-los.")
	writeSection(&b, complexityHeading, complexityLine(form.Complexity))
	b.WriteString("</mandatory_structure>\n\n")

	b.WriteString(closingInstruction)
	return b.String()
}
