package story

import (
	"fmt"
	"regexp"
	"strings"

	"storysmith/internal/core"
	"storysmith/internal/prompts"
)

var (
	evidenceHeading = regexp.MustCompile(`(?im)^###[ \t]+Evid[êe]ncias?[ \t]*(?:\r?\n|$)`)
	analysisHeading = regexp.MustCompile(`(?im)^###[ \t]+An[áa]lise T[ée]cnica`)
	effortHeading   = regexp.MustCompile(`(?im)^###[ \t]+Complexidade`)
)

// SpliceImages inserts one Markdown block embedding every attachment as a base64 data URI.
// The block goes right after the first "### Evidências" heading; without one, a new Evidências
// section is placed before "### Análise Técnica", else before "### Complexidade", else at the end.
// Everything outside the single insertion point is left byte-identical.
func SpliceImages(body string, attachments []core.Attachment) string {
	block, ok := imageBlock(attachments)
	if !ok {
		return body
	}

	if loc := evidenceHeading.FindStringIndex(body); loc != nil {
		return body[:loc[1]] + block + body[loc[1]:]
	}

	section := "\n### Evidências\n" + block + "\n"
	for _, anchor := range []*regexp.Regexp{analysisHeading, effortHeading} {
		if loc := anchor.FindStringIndex(body); loc != nil {
			return body[:loc[0]] + section + body[loc[0]:]
		}
	}
	return body + "\n\n### Evidências\n" + block
}

// imageBlock renders the attachments with a payload. It reports false when none has one.
func imageBlock(attachments []core.Attachment) (string, bool) {
	var b strings.Builder
	b.WriteString("\n\n**Imagens Anexadas:**\n\n")
	n := 0
	for i, a := range attachments {
		if a.Data == "" {
			continue
		}
		name := prompts.AttachmentName(a, i)
		mediaType := a.MediaType
		if mediaType == "" {
			mediaType = "image/png"
		}
		fmt.Fprintf(&b, "**%s:**\n\n", name)
		fmt.Fprintf(&b, "![%s](data:%s;base64,%s)\n\n", name, mediaType, a.Data)
		n++
	}
	return b.String(), n > 0
}
