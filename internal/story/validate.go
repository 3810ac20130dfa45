package story

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"storysmith/internal/core"
	"storysmith/internal/prompts"
)

// ErrValidation marks a submission rejected by Check.
var ErrValidation = errors.New("invalid story form")

// acceptedImageTypes are the evidence formats the form accepts.
var acceptedImageTypes = []string{"image/png", "image/jpeg", "image/jpg", "image/gif", "image/webp"}

// ValidateForm checks the fields shared by every Business submission. It returns whether the form is
// valid and the user-facing messages for every problem found. Integrations and objectives are
// optional and only shape the prompt.
func ValidateForm(title string, rules, integrations []string, objectives core.Objectives, complexity int, criteria []string) (bool, []string) {
	var errs []string
	errs = append(errs, checkTitle(title)...)
	errs = append(errs, checkComplexity(complexity)...)
	if len(core.CleanList(rules)) == 0 {
		errs = append(errs, "Adicione pelo menos uma regra de negócio")
	}
	if len(core.CleanList(criteria)) == 0 {
		errs = append(errs, "Adicione pelo menos um critério de aceitação")
	}
	return len(errs) == 0, nonNil(errs)
}

// Validate checks required fields and ranges for the submission's category. It never calls the
// generator and never modifies form.
func Validate(form core.FormSubmission) (bool, []string) {
	category := form.Category
	if category == "" {
		category = core.CategoryBusiness
	}
	if !category.Valid() {
		return false, []string{fmt.Sprintf("Categoria desconhecida: %s", form.Category)}
	}

	var errs []string
	switch category {
	case core.CategoryBusiness:
		b := form.Business
		_, errs = ValidateForm(form.Title, b.BusinessRules, b.Integrations, form.Objectives, form.Complexity, b.AcceptanceCriteria)
		if b.IsAPI {
			errs = append(errs, checkAPISpec(b.APISpec)...)
		}
		if b.HasDependencies && strings.TrimSpace(b.Dependencies) == "" {
			errs = append(errs, "Descreva as dependências ou desmarque a opção")
		}
	case core.CategorySpike:
		errs = append(checkTitle(form.Title), checkComplexity(form.Complexity)...)
		s := form.Spike
		if strings.TrimSpace(s.Question) == "" {
			errs = append(errs, "Pergunta/Hipótese é obrigatória")
		}
		if s.TimeboxHours < 0 {
			errs = append(errs, "Timebox deve ser maior que zero")
		}
		if out := strings.TrimSpace(s.ExpectedOutput); out != "" && !slices.Contains(core.SpikeOutputs, out) {
			errs = append(errs, fmt.Sprintf("Output esperado desconhecido: %s", out))
		}
	case core.CategoryKaizen:
		errs = append(checkTitle(form.Title), checkComplexity(form.Complexity)...)
		k := form.Kaizen
		if strings.TrimSpace(k.Process) == "" {
			errs = append(errs, "Processo/Área é obrigatório")
		}
		if strings.TrimSpace(k.CurrentState) == "" {
			errs = append(errs, "Situação atual é obrigatória")
		}
		if strings.TrimSpace(k.Goal) == "" {
			errs = append(errs, "Meta desejada é obrigatória")
		}
	case core.CategoryFix:
		errs = append(checkTitle(form.Title), checkComplexity(form.Complexity)...)
		errs = append(errs, checkFix(form.Fix)...)
	}
	return len(errs) == 0, nonNil(errs)
}

// Check is Validate as an error wrapping ErrValidation.
func Check(form core.FormSubmission) error {
	if ok, errs := Validate(form); !ok {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(errs, "; "))
	}
	return nil
}

func checkTitle(title string) []string {
	title = strings.TrimSpace(title)
	switch {
	case title == "":
		return []string{"Título é obrigatório"}
	case utf8.RuneCountInString(title) > core.MaxTitleLength:
		return []string{fmt.Sprintf("Título deve ter no máximo %d caracteres", core.MaxTitleLength)}
	}
	return nil
}

func checkComplexity(c int) []string {
	if c < core.MinComplexity || c > core.MaxComplexity {
		return []string{fmt.Sprintf("Complexidade deve estar entre %d e %d", core.MinComplexity, core.MaxComplexity)}
	}
	return nil
}

func checkAPISpec(spec *core.APISpec) []string {
	if spec == nil {
		return []string{"Especificação da API é obrigatória quando a história é uma API"}
	}
	var errs []string
	if !core.ValidMethod(spec.Method) {
		errs = append(errs, fmt.Sprintf("Método HTTP inválido: %q", spec.Method))
	}
	if strings.TrimSpace(spec.Endpoint) == "" {
		errs = append(errs, "Endpoint da API é obrigatório")
	}
	return errs
}

func checkFix(f core.FixFields) []string {
	var errs []string
	if strings.TrimSpace(f.Description) == "" {
		errs = append(errs, "Descrição do bug é obrigatória")
	}
	if sev := strings.TrimSpace(f.Severity); sev != "" && !slices.Contains(core.Severities, sev) {
		errs = append(errs, fmt.Sprintf("Severidade desconhecida: %s", sev))
	}
	if env := strings.TrimSpace(f.Environment); env != "" && !slices.Contains(core.Environments, env) {
		errs = append(errs, fmt.Sprintf("Ambiente desconhecido: %s", env))
	}
	for i, a := range f.Attachments {
		mt := strings.ToLower(strings.TrimSpace(a.MediaType))
		if mt != "" && !slices.Contains(acceptedImageTypes, mt) {
			errs = append(errs, fmt.Sprintf("Formato de imagem não suportado em %q: %s", prompts.AttachmentName(a, i), a.MediaType))
		}
	}
	return errs
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
