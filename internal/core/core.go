package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxTitleLength is the maximum number of runes accepted for a story title.
const MaxTitleLength = 100

// Complexity bounds on the Fibonacci-like sizing scale.
const (
	MinComplexity     = 1
	MaxComplexity     = 21
	DefaultComplexity = 5
)

// DefaultTimeboxHours is used for Spike stories that do not set a timebox.
const DefaultTimeboxHours = 8

// Category selects which structured fields a story carries and which prompt template applies.
type Category string

const (
	CategoryBusiness Category = "Business"
	CategorySpike    Category = "Spike"
	CategoryKaizen   Category = "Kaizen"
	CategoryFix      Category = "Fix"
)

// Categories lists every supported category in display order.
func Categories() []Category {
	return []Category{CategoryBusiness, CategorySpike, CategoryKaizen, CategoryFix}
}

// ParseCategory maps a user-supplied label to a Category. The empty string maps to Business.
// The long form "Fix/Bug/Incidente" used by older form files is accepted as Fix.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "business":
		return CategoryBusiness, nil
	case "spike":
		return CategorySpike, nil
	case "kaizen":
		return CategoryKaizen, nil
	case "fix", "bug", "incidente", "fix/bug/incidente":
		return CategoryFix, nil
	}
	return "", fmt.Errorf("unknown story category %q", s)
}

// UnmarshalText accepts every label ParseCategory does, so JSON request bodies and stored records
// decode to the canonical name. Unrecognised labels are kept as given for Validate to report.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		*c = Category(strings.TrimSpace(string(text)))
		return nil
	}
	*c = parsed
	return nil
}

// Valid reports whether c is one of the supported categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryBusiness, CategorySpike, CategoryKaizen, CategoryFix:
		return true
	}
	return false
}

// Spike deliverable kinds offered by the form.
var SpikeOutputs = []string{
	"Documento de decisão",
	"POC funcional",
	"Relatório técnico",
	"Apresentação para o time",
	"Outro",
}

// Fix severities, most severe first.
var Severities = []string{"Crítica", "Alta", "Média", "Baixa"}

// Fix environments.
var Environments = []string{"Produção", "Homologação", "Desenvolvimento", "Todos"}

// Objectives holds the three recognised objective entries (actor / goal / benefit).
type Objectives struct {
	Actor   string `json:"actor"`   // "Como"
	Goal    string `json:"goal"`    // "Quero"
	Benefit string `json:"benefit"` // "Para que"
}

// ObjectiveEntry is a labelled, non-empty objective.
type ObjectiveEntry struct {
	Key   string
	Label string
	Value string
}

// ObjectivesFromMap builds Objectives from a loosely keyed map. Both the English keys
// (actor, goal, benefit) and the original form keys (como, quero, para_que) are recognised;
// unknown keys are ignored.
func ObjectivesFromMap(m map[string]string) Objectives {
	var o Objectives
	for k, v := range m {
		switch strings.ToLower(strings.TrimSpace(k)) {
		case "actor", "como":
			o.Actor = v
		case "goal", "quero":
			o.Goal = v
		case "benefit", "para_que", "para que":
			o.Benefit = v
		}
	}
	return o.Clean()
}

// UnmarshalJSON decodes an objectives object keyed either way ObjectivesFromMap accepts.
func (o *Objectives) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*o = ObjectivesFromMap(m)
	return nil
}

// Clean returns a copy with every entry trimmed.
func (o Objectives) Clean() Objectives {
	return Objectives{
		Actor:   strings.TrimSpace(o.Actor),
		Goal:    strings.TrimSpace(o.Goal),
		Benefit: strings.TrimSpace(o.Benefit),
	}
}

// Entries returns the non-empty objectives in canonical order.
func (o Objectives) Entries() []ObjectiveEntry {
	all := []ObjectiveEntry{
		{Key: "actor", Label: "Como", Value: o.Actor},
		{Key: "goal", Label: "Quero", Value: o.Goal},
		{Key: "benefit", Label: "Para que", Value: o.Benefit},
	}
	entries := make([]ObjectiveEntry, 0, len(all))
	for _, e := range all {
		e.Value = strings.TrimSpace(e.Value)
		if e.Value != "" {
			entries = append(entries, e)
		}
	}
	return entries
}

// Filled counts non-empty objective entries.
func (o Objectives) Filled() int {
	return len(o.Entries())
}

// Map returns the objectives keyed by their English names, empty strings included.
func (o Objectives) Map() map[string]string {
	return map[string]string{
		"actor":   o.Actor,
		"goal":    o.Goal,
		"benefit": o.Benefit,
	}
}

// Attachment is an image supplied as defect evidence.
type Attachment struct {
	Name      string `json:"name"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"` // base64, standard encoding
}

// BusinessFields are the structured inputs of a Business story.
type BusinessFields struct {
	BusinessRules      []string `json:"business_rules,omitempty"`
	Integrations       []string `json:"integrations,omitempty"`
	AcceptanceCriteria []string `json:"acceptance_criteria,omitempty"`
	IsAPI              bool     `json:"is_api,omitempty"`
	APISpec            *APISpec `json:"api_spec,omitempty"`
	HasDependencies    bool     `json:"has_dependencies,omitempty"`
	Dependencies       string   `json:"dependencies,omitempty"`
}

// SpikeFields are the structured inputs of an exploratory Spike story.
type SpikeFields struct {
	Question        string   `json:"question,omitempty"`
	Alternatives    []string `json:"alternatives,omitempty"`
	TimeboxHours    int      `json:"timebox_hours,omitempty"`
	ExpectedOutput  string   `json:"expected_output,omitempty"`
	SuccessCriteria []string `json:"success_criteria,omitempty"`
}

// KaizenFields are the structured inputs of a continuous-improvement story.
type KaizenFields struct {
	Process        string   `json:"process,omitempty"`
	CurrentState   string   `json:"current_state,omitempty"`
	Goal           string   `json:"goal,omitempty"`
	Metrics        []string `json:"metrics,omitempty"`
	ExpectedImpact string   `json:"expected_impact,omitempty"`
}

// FixFields are the structured inputs of a Fix/Bug/Incident story.
type FixFields struct {
	Description       string       `json:"description,omitempty"`
	ReproductionSteps []string     `json:"reproduction_steps,omitempty"`
	ExpectedBehavior  string       `json:"expected_behavior,omitempty"`
	ActualBehavior    string       `json:"actual_behavior,omitempty"`
	Environment       string       `json:"environment,omitempty"`
	Severity          string       `json:"severity,omitempty"`
	Logs              string       `json:"logs,omitempty"`
	Attachments       []Attachment `json:"attachments,omitempty"`
}

// FormSubmission is the explicit, per-request record of everything the user filled in.
// It is passed by value; nothing about a submission outlives the request that carries it.
type FormSubmission struct {
	Category   Category       `json:"category"`
	Title      string         `json:"title"`
	Objectives Objectives     `json:"objectives"`
	Complexity int            `json:"complexity"`
	Business   BusinessFields `json:"business"`
	Spike      SpikeFields    `json:"spike"`
	Kaizen     KaizenFields   `json:"kaizen"`
	Fix        FixFields      `json:"fix"`
}

// Clean returns a normalised copy of the submission: strings trimmed, blank list items removed,
// defaults applied, and the API spec adapted to its HTTP method. The receiver is not modified.
func (f FormSubmission) Clean() FormSubmission {
	out := FormSubmission{
		Category:   f.Category,
		Title:      strings.TrimSpace(f.Title),
		Objectives: f.Objectives.Clean(),
		Complexity: f.Complexity,
	}
	if out.Category == "" {
		out.Category = CategoryBusiness
	}
	if out.Complexity == 0 {
		out.Complexity = DefaultComplexity
	}

	out.Business = BusinessFields{
		BusinessRules:      CleanList(f.Business.BusinessRules),
		Integrations:       CleanList(f.Business.Integrations),
		AcceptanceCriteria: CleanList(f.Business.AcceptanceCriteria),
		IsAPI:              f.Business.IsAPI,
		HasDependencies:    f.Business.HasDependencies,
	}
	if f.Business.IsAPI && f.Business.APISpec != nil {
		spec, _ := f.Business.APISpec.Normalize()
		out.Business.APISpec = &spec
	}
	if f.Business.HasDependencies {
		out.Business.Dependencies = strings.TrimSpace(f.Business.Dependencies)
	}

	out.Spike = SpikeFields{
		Question:        strings.TrimSpace(f.Spike.Question),
		Alternatives:    CleanList(f.Spike.Alternatives),
		TimeboxHours:    f.Spike.TimeboxHours,
		ExpectedOutput:  strings.TrimSpace(f.Spike.ExpectedOutput),
		SuccessCriteria: CleanList(f.Spike.SuccessCriteria),
	}
	if out.Spike.TimeboxHours <= 0 {
		out.Spike.TimeboxHours = DefaultTimeboxHours
	}
	if out.Spike.ExpectedOutput == "" {
		out.Spike.ExpectedOutput = SpikeOutputs[0]
	}

	out.Kaizen = KaizenFields{
		Process:        strings.TrimSpace(f.Kaizen.Process),
		CurrentState:   strings.TrimSpace(f.Kaizen.CurrentState),
		Goal:           strings.TrimSpace(f.Kaizen.Goal),
		Metrics:        CleanList(f.Kaizen.Metrics),
		ExpectedImpact: strings.TrimSpace(f.Kaizen.ExpectedImpact),
	}

	out.Fix = FixFields{
		Description:       strings.TrimSpace(f.Fix.Description),
		ReproductionSteps: CleanList(f.Fix.ReproductionSteps),
		ExpectedBehavior:  strings.TrimSpace(f.Fix.ExpectedBehavior),
		ActualBehavior:    strings.TrimSpace(f.Fix.ActualBehavior),
		Environment:       strings.TrimSpace(f.Fix.Environment),
		Severity:          strings.TrimSpace(f.Fix.Severity),
		Logs:              strings.TrimSpace(f.Fix.Logs),
	}
	if out.Fix.Severity == "" {
		out.Fix.Severity = "Média"
	}
	if len(f.Fix.Attachments) > 0 {
		out.Fix.Attachments = append([]Attachment(nil), f.Fix.Attachments...)
	}
	return out
}

// CleanList trims every item and drops empty or whitespace-only entries.
// It always returns a non-nil slice.
func CleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Story is a generated technical story together with the inputs that produced it.
// Apart from WithBody, a Story is never modified after construction.
type Story struct {
	ID         string         `json:"id"`
	Category   Category       `json:"category"`
	Title      string         `json:"title"`
	Objectives Objectives     `json:"objectives"`
	Complexity int            `json:"complexity"`
	Business   BusinessFields `json:"business"`
	Spike      SpikeFields    `json:"spike"`
	Kaizen     KaizenFields   `json:"kaizen"`
	Fix        FixFields      `json:"fix"`
	Body       string         `json:"generated_body"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// NewStory builds a story from a submission and the generated document. Only the field group that
// matches the submission's category is carried over.
func NewStory(form FormSubmission, body string, now time.Time) Story {
	f := form.Clean()
	s := Story{
		ID:         uuid.NewString(),
		Category:   f.Category,
		Title:      truncateRunes(f.Title, MaxTitleLength),
		Objectives: f.Objectives,
		Complexity: f.Complexity,
		Body:       body,
		CreatedAt:  now,
	}
	switch f.Category {
	case CategorySpike:
		s.Spike = f.Spike
	case CategoryKaizen:
		s.Kaizen = f.Kaizen
	case CategoryFix:
		s.Fix = f.Fix
	default:
		s.Business = f.Business
	}
	return s
}

// WithBody returns a copy of the story carrying a rewritten document. It is the only way a
// story's body changes after creation (section regeneration).
func (s Story) WithBody(body string, now time.Time) Story {
	out := s
	out.Body = body
	out.UpdatedAt = now
	return out
}

// Form reconstructs the submission a story was created from.
func (s Story) Form() FormSubmission {
	return FormSubmission{
		Category:   s.Category,
		Title:      s.Title,
		Objectives: s.Objectives,
		Complexity: s.Complexity,
		Business:   s.Business,
		Spike:      s.Spike,
		Kaizen:     s.Kaizen,
		Fix:        s.Fix,
	}
}

// AcceptanceCriteria returns the criteria list that describes when the story is done:
// acceptance criteria for Business, success criteria for Spike, success metrics for Kaizen.
// Fix stories carry no user-supplied criteria.
func (s Story) AcceptanceCriteria() []string {
	switch s.Category {
	case CategorySpike:
		return s.Spike.SuccessCriteria
	case CategoryKaizen:
		return s.Kaizen.Metrics
	case CategoryFix:
		return nil
	default:
		return s.Business.AcceptanceCriteria
	}
}

// Record flattens the story into the key/value mapping used for persistence and JSON export.
// created_at (and updated_at, when set) are RFC 3339 strings.
func (s Story) Record() map[string]any {
	rec := map[string]any{
		"id":             s.ID,
		"category":       string(s.Category),
		"title":          s.Title,
		"objectives":     s.Objectives.Map(),
		"complexity":     s.Complexity,
		"generated_body": s.Body,
		"created_at":     s.CreatedAt.Format(time.RFC3339),
	}
	if !s.UpdatedAt.IsZero() {
		rec["updated_at"] = s.UpdatedAt.Format(time.RFC3339)
	}

	switch s.Category {
	case CategorySpike:
		rec["question"] = s.Spike.Question
		rec["alternatives"] = nonNil(s.Spike.Alternatives)
		rec["timebox_hours"] = s.Spike.TimeboxHours
		rec["expected_output"] = s.Spike.ExpectedOutput
		rec["success_criteria"] = nonNil(s.Spike.SuccessCriteria)
	case CategoryKaizen:
		rec["process"] = s.Kaizen.Process
		rec["current_state"] = s.Kaizen.CurrentState
		rec["goal"] = s.Kaizen.Goal
		rec["metrics"] = nonNil(s.Kaizen.Metrics)
		rec["expected_impact"] = s.Kaizen.ExpectedImpact
	case CategoryFix:
		rec["description"] = s.Fix.Description
		rec["reproduction_steps"] = nonNil(s.Fix.ReproductionSteps)
		rec["expected_behavior"] = s.Fix.ExpectedBehavior
		rec["actual_behavior"] = s.Fix.ActualBehavior
		rec["environment"] = s.Fix.Environment
		rec["severity"] = s.Fix.Severity
		rec["logs"] = s.Fix.Logs
		names := make([]string, 0, len(s.Fix.Attachments))
		for _, a := range s.Fix.Attachments {
			names = append(names, a.Name)
		}
		rec["attachments"] = names
	default:
		rec["business_rules"] = nonNil(s.Business.BusinessRules)
		rec["integrations"] = nonNil(s.Business.Integrations)
		rec["acceptance_criteria"] = nonNil(s.Business.AcceptanceCriteria)
		rec["dependencies"] = s.Business.Dependencies
		if s.Business.APISpec != nil {
			rec["api_spec"] = s.Business.APISpec.Map()
		}
	}
	return rec
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
