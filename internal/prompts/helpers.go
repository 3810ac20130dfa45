// Package prompts builds the instruction documents sent to the generation model.
//
// Every builder is a pure function of its form submission: it echoes each supplied item verbatim,
// never invents content, and omits the blocks of optional inputs that were not provided.
package prompts

import (
	"fmt"
	"strings"

	"storysmith/internal/core"
)

// Builder turns a form submission into a complete prompt for one story category.
type Builder interface {
	Build(form core.FormSubmission) string
}

// ForCategory returns the builder for a category. Unknown or empty categories use the Business builder.
func ForCategory(c core.Category) Builder {
	switch c {
	case core.CategorySpike:
		return SpikeBuilder{}
	case core.CategoryKaizen:
		return KaizenBuilder{}
	case core.CategoryFix:
		return FixBuilder{}
	default:
		return BusinessBuilder{}
	}
}

// Build runs the builder for the form's category. Builders clean the form themselves.
func Build(form core.FormSubmission) string {
	return ForCategory(form.Category).Build(form)
}

// bulletList formats items as "- item" lines. Empty input yields fallback (which may be "").
func bulletList(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, "- "+item)
	}
	return strings.Join(lines, "\n")
}

// numberedList formats items as "1. item" lines.
func numberedList(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	lines := make([]string, 0, len(items))
	for i, item := range items {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, item))
	}
	return strings.Join(lines, "\n")
}

// writeTag writes an inline XML-style input tag: <name>value</name>.
func writeTag(b *strings.Builder, name, value string) {
	fmt.Fprintf(b, "<%s>%s</%s>\n", name, value, name)
}

// writeBlock writes a multi-line XML-style input block.
func writeBlock(b *strings.Builder, name, content string) {
	fmt.Fprintf(b, "<%s>\n%s\n</%s>\n", name, content, name)
}

// writeOptionalBlock writes the block only when content is non-empty.
func writeOptionalBlock(b *strings.Builder, name, content string) {
	if strings.TrimSpace(content) == "" {
		return
	}
	writeBlock(b, name, content)
}

// writeSection writes a Markdown section of the mandatory structure, heading first.
func writeSection(b *strings.Builder, heading string, lines ...string) {
	b.WriteString(heading)
	b.WriteString("\n")
	for _, l := range lines {
		b.WriteString(l)
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

// objectiveLines renders the non-empty objectives as "Label: value" bullets.
func objectiveLines(o core.Objectives) string {
	entries := o.Entries()
	items := make([]string, 0, len(entries))
	for _, e := range entries {
		items = append(items, fmt.Sprintf("%s: %s", e.Label, e.Value))
	}
	return bulletList(items, "- Não especificado")
}

func writeTaskHeader(b *strings.Builder, kind string) {
	b.WriteString("<task>\n")
	b.WriteString("Você é um Product Owner sênior especializado em metodologias ágeis e documentação técnica.\n")
	fmt.Fprintf(b, "Gere uma história de usuário do tipo %s completa, técnica e profissional.\n", kind)
	b.WriteString("</task>\n\n")
}

func writeCriticalRules(b *strings.Builder, rules ...string) {
	b.WriteString("<critical_rules>\n")
	for i, r := range rules {
		fmt.Fprintf(b, "%d. %s\n", i+1, r)
	}
	b.WriteString("</critical_rules>\n\n")
}

const closingInstruction = "Retorne APENAS o Markdown da história, sem texto adicional antes ou depois."

const complexityHeading = "### Complexidade"

// complexityLine is the exact content the model must place under the Complexidade heading.
func complexityLine(points int) string {
	return fmt.Sprintf("Pontos: %d", points)
}
