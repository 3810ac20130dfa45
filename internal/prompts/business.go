package prompts

import (
	"fmt"
	"strings"

	"storysmith/internal/core"
)

// BusinessBuilder builds prompts for feature work with business rules and acceptance criteria.
type BusinessBuilder struct{}

// Build implements Builder.
func (BusinessBuilder) Build(form core.FormSubmission) string {
	form = form.Clean()
	f := form.Business
	spec := f.APISpec
	dependencies := f.Dependencies

	var b strings.Builder

	b.WriteString("<task>\n")
	b.WriteString("Você é um Product Owner sênior especializado em metodologias ágeis e documentação técnica de alta qualidade.\n")
	b.WriteString("Sua missão é gerar uma história de usuário COMPLETA, TÉCNICA e PROFISSIONAL seguindo rigorosamente\n")
	b.WriteString("os padrões estabelecidos.\n")
	b.WriteString("</task>\n\n")

	b.WriteString("<critical_rules>\n")
	b.WriteString("REGRAS ABSOLUTAS (NUNCA VIOLAR):\n\n")
	b.WriteString("1. NUNCA ADICIONAR EMOJIS OU SÍMBOLOS DECORATIVOS\n")
	b.WriteString("   - Títulos e seções devem ser puramente textuais\n")
	b.WriteString("   - Formato corporativo e técnico\n\n")
	b.WriteString("2. NUNCA INVENTAR INFORMAÇÕES\n")
	b.WriteString("   - Use APENAS os dados fornecidos em <input_data>\n")
	b.WriteString("   - Não criar APIs, endpoints ou tecnologias não mencionadas\n")
	b.WriteString("   - Não adicionar regras de negócio ou critérios não fornecidos\n")
	b.WriteString("   - Se algo não foi informado, não especular\n\n")
	b.WriteString("3. SER OBJETIVA E DIRETA\n")
	b.WriteString("   - Foco em clareza e precisão técnica\n")
	b.WriteString("   - Tom profissional, sem floreios\n\n")
	b.WriteString("4. FORMATO TÉCNICO\n")
	b.WriteString("   - Esta é uma especificação para desenvolvedores\n")
	b.WriteString("   - Sem formato \"Como usuário, eu quero...\"\n")
	b.WriteString("   - Formato direto: \"Implementar X\", \"Integrar Y\"\n")
	b.WriteString("</critical_rules>\n\n")

	b.WriteString("<input_data>\n")
	writeTag(&b, "titulo", form.Title)
	writeBlock(&b, "regras_negocio", bulletList(f.BusinessRules, ""))
	writeBlock(&b, "apis_servicos", bulletList(f.Integrations, ""))
	writeBlock(&b, "objetivos", objectiveLines(form.Objectives))
	writeTag(&b, "complexidade", fmt.Sprint(form.Complexity))
	writeBlock(&b, "criterios_aceitacao", bulletList(f.AcceptanceCriteria, ""))
	if spec != nil {
		writeBlock(&b, "especificacoes_api", apiSpecLines(*spec))
	}
	writeOptionalBlock(&b, "dependencias", dependencies)
	b.WriteString("</input_data>\n\n")

	b.WriteString("<mandatory_structure>\n")
	b.WriteString("SUA HISTÓRIA DEVE CONTER EXATAMENTE ESTAS SEÇÕES, NESTA ORDEM:\n\n")

	n := 0
	next := func() int { n++; return n }

	writeSection(&b, fmt.Sprintf("%d. TÍTULO (nível ##)", next()),
		"   Formato: ## [Título da Tarefa]")
	writeSection(&b, fmt.Sprintf("%d. CONTEXTO (nível ###)", next()),
		"   Formato: ### Contexto",
		"   Conteúdo: situação atual baseada APENAS nos dados fornecidos")
	writeSection(&b, fmt.Sprintf("%d. OBJETIVO (nível ###)", next()),
		"   Formato: ### Objetivo",
		"   Conteúdo: o que se pretende alcançar, com base nos objetivos fornecidos")
	writeSection(&b, fmt.Sprintf("%d. REGRAS DE NEGÓCIO (nível ###)", next()),
		"   Formato: ### Regras de Negocio",
		"   Conteúdo: TODAS as regras fornecidas, em bullet points, sem omitir nenhuma")

	apiSection := []string{
		"   Formato: ### APIs e Servicos Necessarios",
		"   Conteúdo: TODAS as APIs e serviços fornecidos, com seu uso técnico no fluxo",
	}
	if spec != nil {
		apiSection = append(apiSection,
			"",
			"   SUBSEÇÃO OBRIGATÓRIA (nível ####)",
			"   Formato: #### Especificacoes da API",
			"   Conteúdo: TODOS os campos de <especificacoes_api>, sem omitir nenhum,",
			"   usando blocos de código ```json para estruturas JSON")
	}
	writeSection(&b, fmt.Sprintf("%d. APIS E SERVIÇOS (nível ###)", next()), apiSection...)

	writeSection(&b, fmt.Sprintf("%d. OBJETIVOS TÉCNICOS (nível ###)", next()),
		"   Formato: ### Objetivos Tecnicos",
		"   Conteúdo: TODOS os objetivos fornecidos, em bullet points")
	writeSection(&b, fmt.Sprintf("%d. CRITÉRIOS DE ACEITAÇÃO (nível ###)", next()),
		"   Formato: ### Criterios de Aceitacao",
		"   Conteúdo: no mínimo 3 critérios, em formato Gherkin:",
		"   CA1 - [Nome do critério]",
		"   Dado que [condição]",
		"   Quando [ação]",
		"   Então [resultado esperado]",
		"   Incluir caso de sucesso, caso de erro e validação técnica.",
		"   Todos os critérios fornecidos devem aparecer.")
	writeSection(&b, fmt.Sprintf("%d. CENÁRIOS DE TESTE (nível ###)", next()),
		"   Formato: ### Cenarios de Teste Sugeridos",
		"   Conteúdo: no mínimo 3 cenários numerados:",
		"   1. Cenario de sucesso: [descrição objetiva]",
		"   2. Cenario de erro/excecao: [descrição objetiva]",
		"   3. Cenario edge case: [descrição objetiva]")
	if dependencies != "" {
		writeSection(&b, fmt.Sprintf("%d. DEPENDÊNCIAS (nível ###)", next()),
			"   Formato: ### Dependencias",
			"   Conteúdo: as dependências de <dependencias>, impacto no cronograma",
			"   e pontos de comunicação necessários")
	}
	writeSection(&b, fmt.Sprintf("%d. COMPLEXIDADE (nível ###)", next()),
		"   Formato: "+complexityHeading,
		"   Conteúdo: "+complexityLine(form.Complexity))
	b.WriteString("</mandatory_structure>\n\n")

	if spec != nil {
		b.WriteString("<interpretacao_metodo_http>\n")
		b.WriteString(methodGuide(spec.Method))
		b.WriteString("</interpretacao_metodo_http>\n\n")
	}

	b.WriteString("<generation_instructions>\n")
	b.WriteString("1. Leia TODOS os dados fornecidos e compreenda o contexto de negócio da tarefa.\n")
	b.WriteString("2. Contextualize a necessidade de forma profissional, sem acrescentar fatos novos.\n")
	b.WriteString("3. Para cada regra de negócio, explique seu impacto técnico.\n")
	b.WriteString("4. Para cada API ou serviço, descreva sua integração no fluxo.\n")
	b.WriteString("5. Transforme os critérios fornecidos em critérios Gherkin verificáveis e mensuráveis.\n")
	b.WriteString("6. Cubra fluxos principais, alternativos e de exceção nos cenários de teste.\n")
	b.WriteString("</generation_instructions>\n\n")

	b.WriteString("<output_example>\n")
	b.WriteString("## [Título da Tarefa]\n\n")
	b.WriteString("### Contexto\n\n[Situação atual e motivação, derivadas dos dados fornecidos]\n\n")
	b.WriteString("### Objetivo\n\n[O que será entregue]\n\n")
	b.WriteString("### Regras de Negocio\n\n- [Regra fornecida, literalmente]\n\n")
	b.WriteString("### Criterios de Aceitacao\n\n")
	b.WriteString("CA1 - [Nome do critério]\nDado que [condição]\nQuando [ação]\nEntão [resultado esperado]\n\n")
	b.WriteString(complexityHeading + "\n\n" + complexityLine(form.Complexity) + "\n")
	b.WriteString("</output_example>\n\n")

	b.WriteString("<quality_checklist>\n")
	b.WriteString("- Nenhum emoji presente\n")
	b.WriteString("- Todas as seções obrigatórias presentes\n")
	b.WriteString("- TODAS as regras, APIs, objetivos e critérios fornecidos incluídos\n")
	if spec != nil {
		b.WriteString("- Subseção \"Especificacoes da API\" incluída com todos os campos fornecidos\n")
	}
	b.WriteString("- No mínimo 3 cenários de teste\n")
	b.WriteString("- Nenhuma informação inventada\n")
	b.WriteString("</quality_checklist>\n\n")

	b.WriteString(closingInstruction)
	return b.String()
}

// apiSpecLines renders the fields that are meaningful for the spec's method. PUT and PATCH always
// list both the path parameter and the payload, marking missing values.
func apiSpecLines(spec core.APISpec) string {
	var items []string
	items = append(items, "Método HTTP: "+spec.Method)
	if spec.Endpoint != "" {
		items = append(items, "Endpoint: "+spec.Endpoint)
	}
	switch spec.Method {
	case "GET":
		if spec.QueryParams != "" {
			items = append(items, labelQueryParams+": "+spec.QueryParams)
		}
	case "POST":
		if spec.Body != "" {
			items = append(items, labelBody+": "+spec.Body)
		}
	case "PUT", "PATCH":
		items = append(items, labelPathParam+": "+orNotInformed(spec.PathParam))
		items = append(items, labelBody+": "+orNotInformed(spec.Body))
	case "DELETE":
		items = append(items, labelPathParam+": "+orNotInformed(spec.PathParam))
	}
	if spec.ResponseFormat != "" {
		items = append(items, "Formato de Resposta: "+spec.ResponseFormat)
	}
	return bulletList(items, "")
}

const (
	labelQueryParams = "Parâmetros de Consulta (Query Params)"
	labelBody        = "Corpo da Requisição (Body)"
	labelPathParam   = "Parâmetro de Rota (Path Param)"
)

func orNotInformed(s string) string {
	if s == "" {
		return "Não informado"
	}
	return s
}

// methodGuide returns the interpretation guide for a single HTTP method. Guides for other methods
// are never emitted, so fields that do not apply to the method are never mentioned.
func methodGuide(method string) string {
	var b strings.Builder
	switch method {
	case "GET":
		b.WriteString("GET (consulta de dados)\n")
		b.WriteString("- Endpoint: rota da API\n")
		b.WriteString("- " + labelQueryParams + ": filtros, paginação e ordenação passados na URL\n")
		b.WriteString("- Exemplo: GET /api/v1/usuarios?status=ativo&limit=10&page=1\n")
		b.WriteString("- Não possui corpo de requisição; não descreva payload de envio\n")
	case "POST":
		b.WriteString("POST (criação de recurso)\n")
		b.WriteString("- Endpoint: rota da API\n")
		b.WriteString("- " + labelBody + ": objeto JSON com os dados enviados para criação\n")
		b.WriteString("- Exemplo: POST /api/v1/usuarios com {\"nome\": \"João\", \"email\": \"joao@email.com\"}\n")
		b.WriteString("- Os dados são enviados no payload, não na URL\n")
	case "PUT":
		b.WriteString("PUT (substituição completa de recurso)\n")
		b.WriteString("- Endpoint: rota da API contendo o identificador do recurso\n")
		b.WriteString("- " + labelPathParam + ": identificador do recurso a ser substituído\n")
		b.WriteString("- " + labelBody + ": objeto JSON completo que substituirá o recurso existente\n")
		b.WriteString("- Exemplo: PUT /api/v1/usuarios/123 com todos os campos do recurso\n")
	case "PATCH":
		b.WriteString("PATCH (alteração parcial de recurso)\n")
		b.WriteString("- Endpoint: rota da API contendo o identificador do recurso\n")
		b.WriteString("- " + labelPathParam + ": identificador do recurso a ser alterado\n")
		b.WriteString("- " + labelBody + ": objeto JSON contendo apenas os campos modificados\n")
		b.WriteString("- Exemplo: PATCH /api/v1/usuarios/123 com {\"status\": \"inativo\"}\n")
	case "DELETE":
		b.WriteString("DELETE (exclusão de recurso)\n")
		b.WriteString("- Endpoint: rota da API contendo o identificador do recurso\n")
		b.WriteString("- " + labelPathParam + ": identificador do recurso a ser excluído\n")
		b.WriteString("- Exemplo: DELETE /api/v1/usuarios/123\n")
		b.WriteString("- Não possui corpo de requisição\n")
	}
	b.WriteString("Interprete os campos de <especificacoes_api> exclusivamente segundo o método acima.\n")
	return b.String()
}
