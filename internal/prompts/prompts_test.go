package prompts

import (
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storysmith/internal/core"
)

func oauthForm() core.FormSubmission {
	return core.FormSubmission{
		Category:   core.CategoryBusiness,
		Title:      "Implement OAuth",
		Objectives: core.Objectives{Goal: "login"},
		Complexity: 5,
		Business: core.BusinessFields{
			BusinessRules:      []string{"Rule A", "Rule B"},
			Integrations:       []string{"Google OAuth"},
			AcceptanceCriteria: []string{"CA1", "CA2", "CA3"},
		},
	}
}

func apiForm(method string, spec core.APISpec) core.FormSubmission {
	form := oauthForm()
	spec.Method = method
	if spec.Endpoint == "" {
		spec.Endpoint = "/api/v1/users"
	}
	form.Business.IsAPI = true
	form.Business.APISpec = &spec
	return form
}

func TestBusinessBuilder_EchoesEveryInput(t *testing.T) {
	out := BusinessBuilder{}.Build(oauthForm())

	for _, want := range []string{"Implement OAuth", "Rule A", "Rule B", "Google OAuth", "CA1", "CA2", "CA3", "Quero: login"} {
		assert.Contains(t, out, want)
	}
	assert.Contains(t, out, "### Complexidade")
	assert.Contains(t, out, "Pontos: 5")
}

func TestBusinessBuilder_OmitsAbsentOptionalBlocks(t *testing.T) {
	out := BusinessBuilder{}.Build(oauthForm())

	assert.NotContains(t, out, "Especificacoes da API")
	assert.NotContains(t, out, "especificacoes_api")
	assert.NotContains(t, out, "Dependencias")
	assert.NotContains(t, out, "<dependencias>")
}

func TestBusinessBuilder_IncludesDependencyNote(t *testing.T) {
	form := oauthForm()
	form.Business.HasDependencies = true
	form.Business.Dependencies = "Identity team must publish the client id"

	out := BusinessBuilder{}.Build(form)

	assert.Contains(t, out, "<dependencias>\nIdentity team must publish the client id\n</dependencias>")
	assert.Contains(t, out, "### Dependencias")
}

func TestBusinessBuilder_IgnoresDependencyNoteWithoutFlag(t *testing.T) {
	form := oauthForm()
	form.Business.Dependencies = "stale note"

	out := BusinessBuilder{}.Build(form)
	assert.NotContains(t, out, "stale note")
}

func TestBusinessBuilder_DoesNotEchoFilteredItems(t *testing.T) {
	form := oauthForm()
	form.Business.BusinessRules = append(form.Business.BusinessRules, "   ")

	out := BusinessBuilder{}.Build(form)
	assert.NotContains(t, out, "- \n")
	assert.NotContains(t, out, "Rule C")
}

func TestBusinessBuilder_HTTPMethodRules(t *testing.T) {
	all := core.APISpec{
		QueryParams:    "status=ativo&page=1",
		Body:           `{"nome": "João"}`,
		PathParam:      "id",
		ResponseFormat: `{"ok": true}`,
	}

	t.Run("GET never mentions a body", func(t *testing.T) {
		out := BusinessBuilder{}.Build(apiForm("GET", all))
		assert.NotContains(t, out, "Body")
		assert.NotContains(t, out, `{"nome": "João"}`)
		assert.Contains(t, out, "Parâmetros de Consulta (Query Params): status=ativo&page=1")
		assert.Contains(t, out, "#### Especificacoes da API")
	})

	t.Run("POST never mentions query params", func(t *testing.T) {
		out := BusinessBuilder{}.Build(apiForm("POST", all))
		assert.NotContains(t, out, "Query Params")
		assert.NotContains(t, out, "status=ativo")
		assert.Contains(t, out, `Corpo da Requisição (Body): {"nome": "João"}`)
	})

	for _, method := range []string{"PUT", "PATCH"} {
		t.Run(method+" carries path param and body", func(t *testing.T) {
			out := BusinessBuilder{}.Build(apiForm(method, all))
			assert.Contains(t, out, "Parâmetro de Rota (Path Param): id")
			assert.Contains(t, out, `Corpo da Requisição (Body): {"nome": "João"}`)
			assert.NotContains(t, out, "Query Params")
		})

		t.Run(method+" marks missing fields", func(t *testing.T) {
			out := BusinessBuilder{}.Build(apiForm(method, core.APISpec{}))
			assert.Contains(t, out, "Parâmetro de Rota (Path Param): Não informado")
			assert.Contains(t, out, "Corpo da Requisição (Body): Não informado")
		})
	}

	t.Run("DELETE carries path param only", func(t *testing.T) {
		out := BusinessBuilder{}.Build(apiForm("DELETE", all))
		assert.Contains(t, out, "Parâmetro de Rota (Path Param): id")
		assert.NotContains(t, out, "Body")
		assert.NotContains(t, out, "Query Params")
	})

	t.Run("lower-case method is normalised", func(t *testing.T) {
		out := BusinessBuilder{}.Build(apiForm("get", all))
		assert.Contains(t, out, "Método HTTP: GET")
		assert.NotContains(t, out, "Body")
	})
}

func TestSpikeBuilder(t *testing.T) {
	form := core.FormSubmission{
		Category: core.CategorySpike,
		Title:    "Evaluate message brokers",
		Spike: core.SpikeFields{
			Question:        "Can NATS replace our polling loop?",
			Alternatives:    []string{"NATS JetStream", "", "Kafka"},
			SuccessCriteria: []string{"p99 latency under 50ms", "cost estimate documented"},
		},
	}

	out := SpikeBuilder{}.Build(form)

	for _, want := range []string{
		"Can NATS replace our polling loop?",
		"- NATS JetStream\n- Kafka",
		"p99 latency under 50ms",
		"cost estimate documented",
		"Tempo máximo: 8 horas",
		"Output esperado: Documento de decisão",
		"### Pergunta/Hipótese",
		"### Próximos Passos Potenciais",
	} {
		assert.Contains(t, out, want)
	}
}

func TestKaizenBuilder(t *testing.T) {
	form := core.FormSubmission{
		Category:   core.CategoryKaizen,
		Title:      "Speed up code review",
		Complexity: 3,
		Kaizen: core.KaizenFields{
			Process:      "Code review",
			CurrentState: "PRs wait 3 days",
			Goal:         "PRs reviewed within 1 day",
			Metrics:      []string{"median review time", "PRs older than 48h"},
		},
	}

	out := KaizenBuilder{}.Build(form)

	for _, want := range []string{"Code review", "PRs wait 3 days", "PRs reviewed within 1 day",
		"median review time", "PRs older than 48h", "### Situação Atual (Baseline)", "Pontos: 3"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "<impacto_esperado>")
}

func TestFixBuilder(t *testing.T) {
	form := core.FormSubmission{
		Category:   core.CategoryFix,
		Title:      "Checkout fails on Safari",
		Complexity: 2,
		Fix: core.FixFields{
			Description:       "Payment button does nothing",
			ReproductionSteps: []string{"Open checkout", "Click pay"},
			ExpectedBehavior:  "Payment dialog opens",
			ActualBehavior:    "Nothing happens",
			Environment:       "Produção",
			Severity:          "Alta",
		},
	}

	t.Run("without attachments or logs", func(t *testing.T) {
		out := FixBuilder{}.Build(form)

		assert.Contains(t, out, "1. Open checkout\n2. Click pay")
		assert.Contains(t, out, "**Severidade:** Alta")
		assert.Contains(t, out, "CA3 - Verificação em Produção")
		assert.Contains(t, out, "Nenhuma evidência adicional fornecida.")
		assert.NotContains(t, out, EvidencePlaceholder)
		assert.NotContains(t, out, "<imagens_anexadas>")
		assert.NotContains(t, out, "<logs_evidencias>")
	})

	t.Run("with attachments and logs", func(t *testing.T) {
		f := form
		f.Fix.Logs = "TypeError: undefined is not a function"
		f.Fix.Attachments = []core.Attachment{
			{Name: "console.png", MediaType: "image/png", Data: "aGVsbG8="},
			{MediaType: "image/jpeg", Data: "aGVsbG8="},
		}

		out := FixBuilder{}.Build(f)

		assert.Contains(t, out, EvidencePlaceholder)
		assert.Contains(t, out, "Foram anexadas 2 imagem(ns)")
		assert.Contains(t, out, "- console.png\n- Evidência 2")
		assert.Contains(t, out, "TypeError: undefined is not a function")
		assert.Contains(t, out, "e nas imagens anexadas")
		assert.NotContains(t, out, "aGVsbG8=", "image payloads are sent as parts, never inlined")
	})
}

func TestForCategory(t *testing.T) {
	assert.IsType(t, BusinessBuilder{}, ForCategory(""))
	assert.IsType(t, BusinessBuilder{}, ForCategory(core.CategoryBusiness))
	assert.IsType(t, SpikeBuilder{}, ForCategory(core.CategorySpike))
	assert.IsType(t, KaizenBuilder{}, ForCategory(core.CategoryKaizen))
	assert.IsType(t, FixBuilder{}, ForCategory(core.CategoryFix))
}

func TestBuildersAreDeterministicAndPlain(t *testing.T) {
	forms := []core.FormSubmission{
		oauthForm(),
		apiForm("PATCH", core.APISpec{PathParam: "id", Body: "{}"}),
		{Category: core.CategorySpike, Title: "S", Spike: core.SpikeFields{Question: "q"}},
		{Category: core.CategoryKaizen, Title: "K"},
		{Category: core.CategoryFix, Title: "F", Fix: core.FixFields{Attachments: []core.Attachment{{Data: "eA=="}}}},
	}

	for _, form := range forms {
		first := Build(form)
		require.Equal(t, first, Build(form))

		for _, r := range first {
			if unicode.Is(unicode.So, r) {
				t.Errorf("%s prompt contains symbol %q", form.Category, r)
			}
		}
		assert.True(t, strings.HasSuffix(first, "sem texto adicional antes ou depois."))
	}
}

func TestSectionLabel(t *testing.T) {
	label, ok := SectionLabel("criteria")
	require.True(t, ok)
	assert.Equal(t, "Criterios de Aceitacao", label)

	label, ok = SectionLabel(" Test-Scenarios ")
	require.True(t, ok)
	assert.Equal(t, "Cenarios de Teste Sugeridos", label)

	_, ok = SectionLabel("summary")
	assert.False(t, ok)

	assert.Len(t, SectionIDs(), 4)
}

func TestSectionLabelFor(t *testing.T) {
	cases := []struct {
		id       string
		category core.Category
		want     string
	}{
		{"test-scenarios", core.CategoryBusiness, "Cenarios de Teste Sugeridos"},
		{"test-scenarios", core.CategoryFix, "Cenários de Teste"},
		{"criteria", core.CategoryFix, "Critérios de Aceitação"},
		{"criteria", core.CategorySpike, "Critérios de Sucesso"},
		{"benefits", core.CategoryFix, "Beneficios"},
		{"criteria", "", "Criterios de Aceitacao"},
	}
	for _, tc := range cases {
		label, ok := SectionLabelFor(tc.id, tc.category)
		require.True(t, ok, tc.id)
		assert.Equal(t, tc.want, label, "%s/%s", tc.category, tc.id)
	}

	fix := FixBuilder{}.Build(core.FormSubmission{Category: core.CategoryFix, Title: "T", Fix: core.FixFields{Description: "d"}})
	label, _ := SectionLabelFor("test-scenarios", core.CategoryFix)
	assert.Contains(t, fix, "### "+label)

	_, ok := SectionLabelFor("summary", core.CategoryFix)
	assert.False(t, ok)
}

func TestRegeneration(t *testing.T) {
	original := "## Implement OAuth\n\n### Criterios de Aceitacao\n\nCA1 - old\n"
	out := Regeneration("Criterios de Aceitacao", original, oauthForm())

	assert.Contains(t, out, "<original_story>\n"+original+"\n</original_story>")
	assert.Contains(t, out, "começando com ### Criterios de Aceitacao")
	assert.Contains(t, out, "- Rule A\n- Rule B")
	assert.Contains(t, out, "- Google OAuth")
	assert.Contains(t, out, "Complexidade: 5")
}

func TestReviewPrompts(t *testing.T) {
	body := "## Story\n\n### Contexto\n\nSomething"

	review := InvestReview(body)
	assert.Contains(t, review, body)
	for _, dim := range []string{"independent", "negotiable", "valuable", "estimable", "small", "testable"} {
		assert.Contains(t, review, `"`+dim+`"`)
	}

	improvements := Improvements(body)
	assert.Contains(t, improvements, body)
	assert.Contains(t, improvements, `"applicable"`)
}
