// Package document inspects and edits generated Markdown stories section by section.
package document

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Section is a heading together with the byte range it governs in the source document.
// The range runs from the start of the heading line to the next heading of the same or a
// higher level (or the end of the document).
type Section struct {
	Level int
	Title string
	Start int
	End   int
}

// Outline returns every heading of a Markdown document in order. Lines that only look like
// headings (inside code fences, for instance) are not reported.
func Outline(body string) []Section {
	src := []byte(body)
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))

	var sections []Section
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		lines := h.Lines()
		if lines.Len() == 0 {
			return ast.WalkSkipChildren, nil
		}
		first := lines.At(0)
		var title strings.Builder
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			title.Write(seg.Value(src))
		}
		sections = append(sections, Section{
			Level: h.Level,
			Title: strings.TrimSpace(title.String()),
			Start: lineStart(src, first.Start),
		})
		return ast.WalkSkipChildren, nil
	})

	for i := range sections {
		sections[i].End = len(src)
		for j := i + 1; j < len(sections); j++ {
			if sections[j].Level <= sections[i].Level {
				sections[i].End = sections[j].Start
				break
			}
		}
	}
	return sections
}

func lineStart(src []byte, pos int) int {
	for pos > 0 && src[pos-1] != '\n' {
		pos--
	}
	return pos
}

// Find returns the first section whose title matches label, ignoring case and accents.
func Find(body, label string) (Section, bool) {
	want := Fold(label)
	for _, s := range Outline(body) {
		if Fold(s.Title) == want {
			return s, true
		}
	}
	return Section{}, false
}

// ReplaceSection swaps the section titled label for replacement, leaving the rest of the document
// untouched. When the document has no such section the replacement is appended. A replacement that
// does not start with a heading gets "### <label>" prepended.
func ReplaceSection(body, label, replacement string) string {
	replacement = strings.TrimSpace(replacement)
	if !strings.HasPrefix(replacement, "#") {
		replacement = "### " + label + "\n\n" + replacement
	}

	s, ok := Find(body, label)
	if !ok {
		return strings.TrimRight(body, "\n") + "\n\n" + replacement + "\n"
	}

	rest := body[s.End:]
	if rest != "" {
		replacement += "\n\n"
	} else {
		replacement += "\n"
	}
	return body[:s.Start] + replacement + rest
}

var accentFolder = strings.NewReplacer(
	"á", "a", "à", "a", "â", "a", "ã", "a", "ä", "a",
	"é", "e", "ê", "e", "è", "e",
	"í", "i", "ì", "i",
	"ó", "o", "ô", "o", "õ", "o", "ò", "o",
	"ú", "u", "ü", "u", "ù", "u",
	"ç", "c",
)

// Fold lower-cases s, strips Portuguese diacritics and collapses whitespace, so that
// "Critérios de  Aceitação" and "criterios de aceitacao" compare equal.
func Fold(s string) string {
	return strings.Join(strings.Fields(accentFolder.Replace(strings.ToLower(s))), " ")
}
