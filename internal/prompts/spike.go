package prompts

import (
	"fmt"
	"strings"

	"storysmith/internal/core"
)

// SpikeBuilder builds prompts for time-boxed investigations.
type SpikeBuilder struct{}

// Build implements Builder.
func (SpikeBuilder) Build(form core.FormSubmission) string {
	form = form.Clean()
	f := form.Spike

	var b strings.Builder
	writeTaskHeader(&b, "SPIKE (exploratória/investigação)")
	writeCriticalRules(&b,
		"NUNCA ADICIONAR EMOJIS OU SÍMBOLOS DECORATIVOS",
		"SER OBJETIVO E TÉCNICO",
		"FOCAR NA INVESTIGAÇÃO, NÃO NA IMPLEMENTAÇÃO",
		"DEFINIR CLARAMENTE O QUE SERÁ ENTREGUE AO FINAL",
		"USAR APENAS AS ALTERNATIVAS E CRITÉRIOS FORNECIDOS, SEM INVENTAR OUTROS",
	)

	b.WriteString("<input_data>\n")
	writeTag(&b, "titulo", form.Title)
	writeTag(&b, "pergunta_hipotese", f.Question)
	writeBlock(&b, "alternativas_investigar", bulletList(f.Alternatives, ""))
	writeTag(&b, "timebox_horas", fmt.Sprint(f.TimeboxHours))
	writeTag(&b, "output_esperado", f.ExpectedOutput)
	writeBlock(&b, "criterios_sucesso", bulletList(f.SuccessCriteria, ""))
	b.WriteString("</input_data>\n\n")

	b.WriteString("<mandatory_structure>\n")
	b.WriteString("## [Título]\n\n")
	writeSection(&b, "### Contexto",
		"Descreva o cenário que motivou esta investigação e a incerteza técnica ou de negócio a resolver.")
	writeSection(&b, "### Pergunta/Hipótese",
		"Formule claramente a pergunta principal que esta spike deve responder.",
		"Se aplicável, liste hipóteses secundárias a serem validadas.")
	writeSection(&b, "### Escopo da Investigação",
		"Liste o que SERÁ e o que NÃO SERÁ investigado, com limites claros.")
	writeSection(&b, "### Alternativas a Avaliar",
		"Para cada alternativa fornecida descreva a abordagem, prós esperados, contras potenciais",
		"e critérios de avaliação.")
	writeSection(&b, "### Timebox",
		fmt.Sprintf("Tempo máximo: %d horas", f.TimeboxHours),
		"- Defina checkpoints intermediários",
		"- Estabeleça o momento de decisão go/no-go")
	writeSection(&b, "### Entregáveis",
		"Output esperado: "+f.ExpectedOutput,
		"Liste especificamente o que será produzido ao final.")
	writeSection(&b, "### Critérios de Sucesso",
		"Inclua TODOS os critérios fornecidos, mensuráveis e verificáveis.")
	writeSection(&b, "### Próximos Passos Potenciais",
		"- Se a hipótese for validada",
		"- Se a hipótese for invalidada",
		"- Se for necessária mais investigação")
	b.WriteString("</mandatory_structure>\n\n")

	b.WriteString(closingInstruction)
	return b.String()
}
