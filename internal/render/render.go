// Package render exports stories as Markdown, JSON, plain text or HTML.
package render

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	mdparser "github.com/gomarkdown/markdown/parser"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"storysmith/internal/core"
	"storysmith/internal/document"
)

// Format names an export format.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatJSON     Format = "json"
	FormatText     Format = "txt"
	FormatHTML     Format = "html"
)

// Formats lists the supported export formats.
func Formats() []Format {
	return []Format{FormatMarkdown, FormatJSON, FormatText, FormatHTML}
}

// ParseFormat accepts a format name or a common alias ("markdown", "text").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "txt", "text":
		return FormatText, nil
	case "html":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ContentType returns the HTTP media type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json; charset=utf-8"
	case FormatText:
		return "text/plain; charset=utf-8"
	case FormatHTML:
		return "text/html; charset=utf-8"
	default:
		return "text/markdown; charset=utf-8"
	}
}

// Render exports the story in the given format.
func Render(s core.Story, f Format) ([]byte, error) {
	switch f {
	case FormatMarkdown:
		return []byte(Markdown(s)), nil
	case FormatJSON:
		return JSON(s)
	case FormatText:
		return []byte(Text(s)), nil
	case FormatHTML:
		return []byte(HTML(s)), nil
	}
	return nil, fmt.Errorf("unsupported export format %q", f)
}

// Markdown returns the generated document unchanged.
func Markdown(s core.Story) string {
	return s.Body
}

// JSON returns the story record, indented.
func JSON(s core.Story) ([]byte, error) {
	data, err := json.MarshalIndent(s.Record(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode story %s: %w", s.ID, err)
	}
	return append(data, '\n'), nil
}

var blankLines = regexp.MustCompile(`\n{3,}`)

// Text returns the document as plain text: Markdown markers, HTML and decorative symbols removed,
// images reduced to their alt text.
func Text(s core.Story) string {
	src := []byte(s.Body)
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch n := n.(type) {
		case *ast.Text:
			if entering {
				b.Write(n.Segment.Value(src))
				if n.SoftLineBreak() || n.HardLineBreak() {
					b.WriteByte('\n')
				}
			}
		case *ast.String:
			if entering {
				b.Write(n.Value)
			}
		case *ast.AutoLink:
			if entering {
				b.Write(n.URL(src))
			}
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			if entering {
				lines := n.Lines()
				for i := 0; i < lines.Len(); i++ {
					seg := lines.At(i)
					b.Write(seg.Value(src))
				}
				b.WriteByte('\n')
			}
			return ast.WalkSkipChildren, nil
		case *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		case *ast.ListItem:
			if entering {
				b.WriteString(itemMarker(n))
			}
		case *ast.Heading, *ast.Paragraph:
			if !entering {
				if _, inItem := n.Parent().(*ast.ListItem); inItem {
					b.WriteByte('\n')
				} else {
					b.WriteString("\n\n")
				}
			}
		case *ast.TextBlock, *ast.List, *ast.ThematicBreak:
			if !entering {
				b.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})

	out := stripSymbols(b.String())
	out = blankLines.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

func itemMarker(item *ast.ListItem) string {
	list, ok := item.Parent().(*ast.List)
	if !ok || !list.IsOrdered() {
		return "- "
	}
	n := list.Start
	for c := list.FirstChild(); c != nil && c != item; c = c.NextSibling() {
		n++
	}
	return fmt.Sprintf("%d. ", n)
}

// stripSymbols drops emoji and other pictographic symbols together with their joiners.
func stripSymbols(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.Is(unicode.So, r):
			return -1
		case r >= 0x1F3FB && r <= 0x1F3FF: // skin tone modifiers
			return -1
		case r == 0xFE0F || r == 0x200D:
			return -1
		}
		return r
	}, s)
}

// HTML renders the document as a standalone HTML page.
func HTML(s core.Story) string {
	p := mdparser.NewWithExtensions(mdparser.CommonExtensions | mdparser.AutoHeadingIDs)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank | mdhtml.CompletePage,
		Title: s.Title,
	})
	return string(markdown.ToHTML([]byte(s.Body), p, renderer))
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Filename returns a file name for the exported story, e.g. "implementar-oauth-1a2b3c4d.md".
func Filename(s core.Story, f Format) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(document.Fold(s.Title), "-"), "-")
	if slug == "" {
		slug = "historia"
	}
	if len(slug) > 60 {
		slug = strings.TrimRight(slug[:60], "-")
	}
	id := s.ID
	if len(id) > 8 {
		id = id[:8]
	}
	if id != "" {
		slug += "-" + id
	}
	return slug + "." + string(f)
}

// WriteStoryToFile writes the provided content to a file in the specified directory.
func WriteStoryToFile(content []byte, outputDir, filename string) (string, error) {
	if outputDir == "" {
		outputDir = "stories" // Default output directory
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	filePath := filepath.Join(outputDir, filename)
	if err := os.WriteFile(filePath, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write story file %s: %w", filePath, err)
	}
	return filePath, nil
}
