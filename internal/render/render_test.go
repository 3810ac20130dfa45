package render

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"storysmith/internal/core"
)

const body = "## Implementar OAuth 🚀\n\n" +
	"### Contexto\n\nLogin **social** com *Google*.\n\n" +
	"### Criterios de Aceitacao\n\n- CA1\n- CA2\n\n1. Passo\n2. Outro\n\n" +
	"<div>ignored</div>\n\n" +
	"![tela.png](data:image/png;base64,QUJD)\n"

func testStory() core.Story {
	s := core.NewStory(core.FormSubmission{
		Title:      "Implementação de Login!",
		Complexity: 5,
		Business:   core.BusinessFields{BusinessRules: []string{"R"}},
	}, body, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	s.ID = "1a2b3c4d-0000-4000-8000-000000000000"
	return s
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"":         FormatMarkdown,
		"markdown": FormatMarkdown,
		"JSON":     FormatJSON,
		"text":     FormatText,
		"txt":      FormatText,
		"html":     FormatHTML,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		if err != nil {
			t.Fatalf("ParseFormat(%q) failed: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseFormat(%q) = %s, want %s", in, got, want)
		}
	}

	if _, err := ParseFormat("pdf"); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestMarkdown(t *testing.T) {
	if got := Markdown(testStory()); got != body {
		t.Errorf("Markdown export should return the body unchanged, got %q", got)
	}
}

func TestJSON(t *testing.T) {
	data, err := JSON(testStory())
	if err != nil {
		t.Fatalf("JSON failed: %v", err)
	}

	var rec map[string]any
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("JSON export is not valid JSON: %v", err)
	}
	if rec["id"] != "1a2b3c4d-0000-4000-8000-000000000000" {
		t.Errorf("Unexpected id %v", rec["id"])
	}
	if rec["created_at"] != "2025-03-01T10:00:00Z" {
		t.Errorf("Expected ISO-8601 created_at, got %v", rec["created_at"])
	}
	if rec["generated_body"] != body {
		t.Error("Expected generated_body in the record")
	}
}

func TestText(t *testing.T) {
	got := Text(testStory())

	for _, marker := range []string{"#", "**", "🚀", "<div>", "data:image", "!["} {
		if strings.Contains(got, marker) {
			t.Errorf("Text export should not contain %q:\n%s", marker, got)
		}
	}
	for _, want := range []string{
		"Implementar OAuth",
		"Contexto\n\nLogin social com Google.",
		"- CA1\n- CA2\n",
		"1. Passo\n2. Outro\n",
		"tela.png",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Text export should contain %q:\n%s", want, got)
		}
	}
	if got != strings.TrimSpace(got) {
		t.Error("Text export should be trimmed")
	}
}

func TestStripSymbols(t *testing.T) {
	if got := stripSymbols("Pronto ✅ 👍🏽 ok"); got != "Pronto   ok" {
		t.Errorf("stripSymbols = %q", got)
	}
	if got := stripSymbols("Ação → resultado"); got != "Ação → resultado" {
		t.Errorf("stripSymbols should keep letters and arrows, got %q", got)
	}
}

func TestHTML(t *testing.T) {
	got := HTML(testStory())

	for _, want := range []string{"<html", "<title>", "<h3", "Contexto", "<strong>social</strong>", "<li>CA1</li>"} {
		if !strings.Contains(got, want) {
			t.Errorf("HTML export should contain %q", want)
		}
	}
}

func TestRender(t *testing.T) {
	for _, f := range Formats() {
		data, err := Render(testStory(), f)
		if err != nil {
			t.Fatalf("Render(%s) failed: %v", f, err)
		}
		if len(data) == 0 {
			t.Errorf("Render(%s) returned no content", f)
		}
		if f.ContentType() == "" {
			t.Errorf("Missing content type for %s", f)
		}
	}

	if _, err := Render(testStory(), Format("pdf")); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestFilename(t *testing.T) {
	s := testStory()
	if got := Filename(s, FormatMarkdown); got != "implementacao-de-login-1a2b3c4d.md" {
		t.Errorf("Filename = %q", got)
	}

	s.Title = "🚀"
	s.ID = ""
	if got := Filename(s, FormatJSON); got != "historia.json" {
		t.Errorf("Filename = %q", got)
	}
}

func TestWriteStoryToFile(t *testing.T) {
	tmpDir := t.TempDir()

	filePath, err := WriteStoryToFile([]byte("## Story"), tmpDir, "story.md")
	if err != nil {
		t.Fatalf("WriteStoryToFile failed: %v", err)
	}
	if filePath != filepath.Join(tmpDir, "story.md") {
		t.Errorf("Unexpected path %s", filePath)
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		t.Fatalf("Failed to read story file: %v", err)
	}
	if string(content) != "## Story" {
		t.Errorf("Unexpected content %q", content)
	}
}

func TestWriteStoryToFile_DefaultOutputDir(t *testing.T) {
	originalDir, _ := os.Getwd()
	tmpDir := t.TempDir()
	_ = os.Chdir(tmpDir)
	defer func() { _ = os.Chdir(originalDir) }()

	filePath, err := WriteStoryToFile([]byte("x"), "", "story.md")
	if err != nil {
		t.Fatalf("WriteStoryToFile failed: %v", err)
	}
	if !strings.HasPrefix(filePath, "stories") {
		t.Errorf("Expected default 'stories' directory, got %s", filePath)
	}
}

func TestWriteStoryToFile_InvalidOutputDir(t *testing.T) {
	tmpDir := t.TempDir()
	file := filepath.Join(tmpDir, "file.txt")
	_ = os.WriteFile(file, []byte("test"), 0644)

	if _, err := WriteStoryToFile([]byte("x"), file, "story.md"); err == nil {
		t.Error("Expected error when output directory is a file")
	}
}
