package markdown

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-press/pkg/interfaces"
)

func TestParseFrontMatter(t *testing.T) {
	data := readFixture(t, "testdata/basic.md")

	fm, body, err := ParseFrontMatter(data)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}

	if fm.Title != "Sample Document" {
		t.Fatalf("FrontMatter Title mismatch, got %q", fm.Title)
	}
	if fm.Slug != "sample-document" {
		t.Fatalf("FrontMatter Slug mismatch, got %q", fm.Slug)
	}
	if fm.Status != "published" {
		t.Fatalf("FrontMatter Status mismatch, got %q", fm.Status)
	}
	if len(fm.Tags) != 2 || fm.Tags[0] != "go" || fm.Tags[1] != "testing" {
		t.Fatalf("FrontMatter Tags mismatch, got %#v", fm.Tags)
	}
	if fm.Category != "engineering" {
		t.Fatalf("FrontMatter Category mismatch, got %q", fm.Category)
	}
	if fm.Date.IsZero() {
		t.Fatalf("expected date to be parsed")
	}
	if fm.Custom["hero_image"] != "/img/sample.png" {
		t.Fatalf("expected custom key hero_image, got %#v", fm.Custom)
	}
	if _, ok := fm.Raw["draft"]; !ok {
		t.Fatalf("expected draft key in raw front matter")
	}
	if strings.Contains(string(body), "---") && strings.HasPrefix(string(body), "---") {
		t.Fatalf("body still contains front matter delimiters")
	}
	if !strings.Contains(string(body), "# Sample Document") {
		t.Fatalf("body missing heading: %q", string(body))
	}
}

func TestParseFrontMatter_NoBlock(t *testing.T) {
	source := []byte("# Bare Document\n\nNo front matter here.\n")

	fm, body, err := ParseFrontMatter(source)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if fm.Title != "" {
		t.Fatalf("expected empty title, got %q", fm.Title)
	}
	if string(body) != string(source) {
		t.Fatalf("expected body unchanged, got %q", string(body))
	}
}

func TestBuildDocument(t *testing.T) {
	data := readFixture(t, "testdata/basic.md")
	modified := time.Now().UTC()

	doc, err := BuildDocument("testdata/basic.md", "tutorials", data, modified)
	if err != nil {
		t.Fatalf("BuildDocument: %v", err)
	}

	if doc.FilePath != "testdata/basic.md" {
		t.Fatalf("FilePath mismatch, got %q", doc.FilePath)
	}
	if doc.Collection != "tutorials" {
		t.Fatalf("Collection mismatch, got %q", doc.Collection)
	}
	if len(doc.BodyHTML) != 0 {
		t.Fatalf("expected BodyHTML to be empty before rendering")
	}
	if doc.Stats.WordCount == 0 {
		t.Fatalf("expected word count to be computed")
	}
	if len(doc.Stats.Headings) == 0 || doc.Stats.Headings[0] != "Sample Document" {
		t.Fatalf("headings mismatch, got %#v", doc.Stats.Headings)
	}
	if !doc.LastModified.Equal(modified) {
		t.Fatalf("LastModified mismatch")
	}
}

func TestGoldmarkParserRendersHTML(t *testing.T) {
	data := readFixture(t, "testdata/basic.md")
	_, body, err := ParseFrontMatter(data)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}

	parser := NewGoldmarkParser(interfaces.ParseOptions{})
	html, err := parser.Parse(body)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	rendered := string(html)
	if !strings.Contains(rendered, "<h1") {
		t.Fatalf("expected rendered heading, got %q", rendered)
	}
	if !strings.Contains(rendered, "<em>emphasis</em>") {
		t.Fatalf("expected emphasis, got %q", rendered)
	}
	if !strings.Contains(rendered, `<a href="https://example.com"`) {
		t.Fatalf("expected link, got %q", rendered)
	}
	if !strings.Contains(rendered, "<code") {
		t.Fatalf("expected code block, got %q", rendered)
	}
}

func readFixture(tb testing.TB, path string) []byte {
	tb.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		tb.Fatalf("read fixture %s: %v", path, err)
	}
	return data
}
