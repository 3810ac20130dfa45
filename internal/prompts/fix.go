package prompts

import (
	"fmt"
	"strings"

	"storysmith/internal/core"
)

// EvidencePlaceholder marks where evidence images are spliced in after generation.
const EvidencePlaceholder = "(As imagens de evidência serão inseridas automaticamente aqui)"

// FixBuilder builds prompts for defects and incidents. Attachments are sent alongside the prompt by
// the generation client; the prompt only lists their names.
type FixBuilder struct{}

// Build implements Builder.
func (FixBuilder) Build(form core.FormSubmission) string {
	form = form.Clean()
	f := form.Fix
	hasImages := len(f.Attachments) > 0
	steps := numberedList(f.ReproductionSteps, "")

	var b strings.Builder
	writeTaskHeader(&b, "FIX/BUG/INCIDENTE")
	rules := []string{
		"NUNCA ADICIONAR EMOJIS OU SÍMBOLOS DECORATIVOS",
		"SER PRECISO NA DESCRIÇÃO DO PROBLEMA",
		"FOCAR NA CORREÇÃO, NÃO EM NOVAS FUNCIONALIDADES",
		"INCLUIR CRITÉRIOS DE VERIFICAÇÃO DA CORREÇÃO",
	}
	if hasImages {
		rules = append(rules, "NÃO DESCREVER O CONTEÚDO DAS IMAGENS; elas serão inseridas automaticamente depois")
	}
	writeCriticalRules(&b, rules...)

	b.WriteString("<input_data>\n")
	writeTag(&b, "titulo", form.Title)
	writeTag(&b, "descricao_bug", f.Description)
	writeBlock(&b, "passos_reproduzir", steps)
	writeTag(&b, "comportamento_esperado", f.ExpectedBehavior)
	writeTag(&b, "comportamento_atual", f.ActualBehavior)
	if f.Environment != "" {
		writeTag(&b, "ambiente_afetado", f.Environment)
	}
	writeTag(&b, "severidade", f.Severity)
	writeOptionalBlock(&b, "logs_evidencias", f.Logs)
	writeTag(&b, "complexidade", fmt.Sprint(form.Complexity))
	if hasImages {
		names := make([]string, 0, len(f.Attachments))
		for i, a := range f.Attachments {
			names = append(names, AttachmentName(a, i))
		}
		var info strings.Builder
		fmt.Fprintf(&info, "Foram anexadas %d imagem(ns) como evidência do bug:\n", len(f.Attachments))
		info.WriteString(bulletList(names, ""))
		info.WriteString("\n\nAs imagens serão inseridas automaticamente na história depois.\n")
		info.WriteString("NÃO descreva o conteúdo das imagens na seção de Evidências.\n")
		info.WriteString("Apenas mencione que há evidências visuais anexadas e foque nos logs ou erros textuais, se houver.")
		writeBlock(&b, "imagens_anexadas", info.String())
	}
	b.WriteString("</input_data>\n\n")

	b.WriteString("<mandatory_structure>\n")
	b.WriteString("## [Título]\n\n")
	writeSection(&b, "### Descrição do Problema",
		"Descreva o bug ou incidente de forma clara e técnica, com o impacto observado.")

	severity := []string{"**Severidade:** " + f.Severity}
	if f.Environment != "" {
		severity = append(severity, "**Ambiente:** "+f.Environment)
	}
	severity = append(severity, "",
		"Descreva o impacto:",
		"- Usuários afetados",
		"- Funcionalidades comprometidas",
		"- Impacto no negócio")
	writeSection(&b, "### Severidade e Impacto", severity...)

	if steps != "" {
		writeSection(&b, "### Passos para Reproduzir", steps)
	} else {
		writeSection(&b, "### Passos para Reproduzir", "Descreva os passos com base na descrição do problema.")
	}
	writeSection(&b, "### Comportamento Esperado", f.ExpectedBehavior)
	writeSection(&b, "### Comportamento Atual", f.ActualBehavior)

	var evidence []string
	if hasImages {
		evidence = append(evidence, EvidencePlaceholder, "")
	}
	if f.Logs != "" {
		evidence = append(evidence, "**Logs/Mensagens de Erro:**", "```", f.Logs, "```")
	}
	if len(evidence) == 0 {
		evidence = append(evidence, "Nenhuma evidência adicional fornecida.")
	}
	writeSection(&b, "### Evidências", evidence...)

	basis := "Baseado na descrição"
	if hasImages {
		basis += " e nas imagens anexadas"
	}
	writeSection(&b, "### Análise Técnica Sugerida",
		basis+", sugira possíveis causas raiz:",
		"- Causa potencial 1",
		"- Causa potencial 2",
		"- Área do código a investigar")

	verifyIn := "no ambiente afetado"
	if f.Environment != "" {
		verifyIn = "em " + f.Environment
	}
	writeSection(&b, "### Critérios de Aceitação",
		"CA1 - Bug Corrigido",
		"Dado que o bug foi identificado",
		"Quando a correção for aplicada",
		"Então o comportamento esperado deve ocorrer",
		"",
		"CA2 - Sem Regressão",
		"Dado que a correção foi aplicada",
		"Quando funcionalidades relacionadas forem testadas",
		"Então não deve haver regressão",
		"",
		"CA3 - Verificação "+verifyIn,
		"Dado que a correção foi implantada "+verifyIn,
		"Quando o cenário do bug for reproduzido",
		"Então o sistema deve funcionar corretamente")
	writeSection(&b, "### Cenários de Teste",
		"1. Cenário de verificação: reproduzir o bug e confirmar a correção",
		"2. Cenário de regressão: testar funcionalidades adjacentes",
		"3. Cenário de carga (se aplicável): verificar sob condições similares")
	writeSection(&b, complexityHeading, complexityLine(form.Complexity))
	b.WriteString("</mandatory_structure>\n\n")

	b.WriteString(closingInstruction)
	return b.String()
}

// AttachmentName returns the attachment's display name, defaulting to "Evidência <i+1>".
func AttachmentName(a core.Attachment, i int) string {
	if name := strings.TrimSpace(a.Name); name != "" {
		return name
	}
	return fmt.Sprintf("Evidência %d", i+1)
}
