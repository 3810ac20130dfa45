package prompts

import "strings"

// InvestReview builds the prompt asking the model to score a generated document on the six INVEST
// dimensions. The model must answer with a single JSON object.
func InvestReview(body string) string {
	var b strings.Builder

	b.WriteString("<task>\n")
	b.WriteString("Avalie esta história de usuário segundo os critérios INVEST.\n")
	b.WriteString("Seja OBJETIVO e TÉCNICO na avaliação.\n")
	b.WriteString("NÃO INVENTE INFORMAÇÕES; use apenas o que está na história.\n")
	b.WriteString("</task>\n\n")

	writeBlock(&b, "story", body)
	b.WriteString("\n")

	b.WriteString("<criteria>\n")
	b.WriteString("Avalie cada critério de 0 a 100:\n\n")
	b.WriteString("- Independent: a história pode ser desenvolvida independentemente de outras?\n")
	b.WriteString("- Negotiable: tem flexibilidade de implementação ou é rígida demais?\n")
	b.WriteString("- Valuable: entrega valor claro ao negócio ou técnico?\n")
	b.WriteString("- Estimable: é possível estimar o esforço com precisão?\n")
	b.WriteString("- Small: o tamanho é adequado para uma sprint de 1 a 2 semanas?\n")
	b.WriteString("- Testable: possui critérios de aceitação claros e testáveis?\n")
	b.WriteString("</criteria>\n\n")

	b.WriteString("<suggestions_guidelines>\n")
	b.WriteString("As sugestões DEVEM ser específicas para ESTA história:\n")
	b.WriteString("1. Referenciar elementos concretos da história (APIs, regras de negócio, funcionalidades)\n")
	b.WriteString("2. Propor melhorias acionáveis e práticas\n")
	b.WriteString("3. Dar exemplos específicos quando possível\n\n")
	b.WriteString("NUNCA dê sugestões genéricas como \"Adicione mais critérios de aceitação\" sem dizer quais.\n")
	b.WriteString("</suggestions_guidelines>\n\n")

	b.WriteString("<output_format>\n")
	b.WriteString("Retorne APENAS JSON válido neste formato exato:\n")
	b.WriteString("{\n")
	for _, dim := range []string{"independent", "negotiable", "valuable", "estimable", "small", "testable"} {
		b.WriteString("  \"" + dim + "\": {\"score\": 0-100, \"justification\": \"explicação objetiva\"},\n")
	}
	b.WriteString("  \"strengths\": [\"ponto forte específico\"],\n")
	b.WriteString("  \"weaknesses\": [\"ponto fraco específico\"],\n")
	b.WriteString("  \"suggestions\": [\"sugestão específica com referência a elemento da história\"]\n")
	b.WriteString("}\n")
	b.WriteString("</output_format>\n\n")

	b.WriteString("<important>\n")
	b.WriteString("- Cite elementos da história nas justificativas\n")
	b.WriteString("- Mínimo 3, máximo 5 sugestões, todas específicas e acionáveis\n")
	b.WriteString("- Retorne APENAS o JSON, sem texto antes ou depois\n")
	b.WriteString("</important>")
	return b.String()
}

// Improvements builds the prompt asking the model for a list of concrete improvement suggestions.
// The model must answer with a JSON array.
func Improvements(body string) string {
	var b strings.Builder

	b.WriteString("<task>\n")
	b.WriteString("Analise esta história técnica e sugira melhorias específicas.\n")
	b.WriteString("Seja OBJETIVO e PRÁTICO. NÃO INVENTE; use apenas o que está na história.\n")
	b.WriteString("</task>\n\n")

	writeBlock(&b, "story", body)
	b.WriteString("\n")

	b.WriteString("<analysis_points>\n")
	b.WriteString("1. AMBIGUIDADES: termos vagos, falta de especificidade técnica, requisitos pouco claros\n")
	b.WriteString("2. TAMANHO: história grande demais (complexidade acima de 13) e divisões lógicas possíveis\n")
	b.WriteString("3. CRITÉRIOS FALTANTES: cenários não cobertos, casos de erro não tratados, validações ausentes\n")
	b.WriteString("4. CLAREZA: seções que precisam de mais detalhes ou exemplos concretos\n")
	b.WriteString("</analysis_points>\n\n")

	b.WriteString("<output_format>\n")
	b.WriteString("Retorne APENAS um array JSON neste formato:\n")
	b.WriteString("[\n")
	b.WriteString("  {\n")
	b.WriteString("    \"type\": \"ambiguidade|tamanho|criterio|clareza\",\n")
	b.WriteString("    \"severity\": \"baixa|media|alta\",\n")
	b.WriteString("    \"problem\": \"descrição específica do problema encontrado\",\n")
	b.WriteString("    \"suggestion\": \"sugestão específica e acionável\",\n")
	b.WriteString("    \"applicable\": true\n")
	b.WriteString("  }\n")
	b.WriteString("]\n")
	b.WriteString("</output_format>\n\n")

	b.WriteString("<important>\n")
	b.WriteString("- Máximo 5 sugestões, as mais importantes\n")
	b.WriteString("- Retorne APENAS o JSON, sem texto antes ou depois\n")
	b.WriteString("</important>")
	return b.String()
}
