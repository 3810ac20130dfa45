package quality

import (
	"fmt"
	"strings"

	"storysmith/internal/core"
)

// suggestions derives content-aware improvement hints from the weak dimensions. Order follows the
// decision table (size, testability, value, independence, keyword hints) and is capped.
func (e *Evaluator) suggestions(story core.Story, body string, score *InvestScore) []string {
	var out []string

	title := story.Title
	if strings.TrimSpace(title) == "" {
		title = "a história"
	}
	integrations := story.Business.Integrations
	rules := story.Business.BusinessRules

	if score.SizeFit < 70 {
		if len(integrations) > 0 {
			out = append(out, fmt.Sprintf(
				"Considere dividir '%s' em histórias menores. Por exemplo, separe a integração com %s em uma história dedicada. Complexidade atual: %d pontos.",
				title, integrations[0], story.Complexity))
		} else {
			out = append(out, fmt.Sprintf(
				"'%s' tem complexidade de %d pontos. Considere dividir em: 1) Backend/lógica, 2) Frontend/UI, 3) Integrações.",
				title, story.Complexity))
		}
	}

	if score.Testability < 80 {
		n := len(story.AcceptanceCriteria())
		switch {
		case strings.Contains(body, "api") || len(integrations) > 0:
			out = append(out, fmt.Sprintf(
				"Adicione critérios de aceitação para cenários de erro da API (timeout, resposta inválida, falha de autenticação). Atualmente: %d critérios.", n))
		case containsAny(body, "usuario", "usuário", "login"):
			out = append(out, fmt.Sprintf(
				"Adicione critérios para validação de entrada do usuário (campos obrigatórios, formatos, limites). Atualmente: %d critérios.", n))
		default:
			out = append(out, fmt.Sprintf(
				"Adicione critérios de aceitação para cenários de borda e erros. Atualmente: %d critérios, recomendado mínimo 3.", n))
		}
	}

	if score.Value < 80 {
		if len(rules) > 0 {
			out = append(out, fmt.Sprintf(
				"Quantifique o valor de negócio. Ex: para a regra '%s...', defina métricas como tempo de resposta esperado ou taxa de sucesso.",
				truncateRunes(rules[0], 50)))
		} else {
			out = append(out, fmt.Sprintf(
				"Defina métricas de sucesso mensuráveis para '%s'. Ex: tempo de carregamento < 2s, taxa de erro < 1%%.", title))
		}
	}

	if score.Independence < 80 && containsAny(body, "depende", "após", "depends") {
		out = append(out, fmt.Sprintf(
			"Identifique as dependências em '%s' e crie mocks/stubs para permitir desenvolvimento paralelo. Considere usar feature flags.", title))
	}

	if containsAny(body, "pesquisa", "busca") {
		out = append(out,
			"Para funcionalidade de busca: adicione critério para busca sem resultados, limite de caracteres e comportamento com caracteres especiais.")
	}
	if containsAny(body, "cadastro", "formulario", "formulário") {
		out = append(out,
			"Para formulários: especifique validações de cada campo, mensagens de erro específicas e comportamento ao perder conexão.")
	}

	return capList(out, e.thresholds.MaxSuggestions)
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func capList(items []string, max int) []string {
	if items == nil {
		return []string{}
	}
	if max > 0 && len(items) > max {
		return items[:max]
	}
	return items
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
