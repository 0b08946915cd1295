package markdown

import (
	"strings"
	"testing"
	"time"
)

func TestComputeStats(t *testing.T) {
	body := []byte(`# Title

Intro paragraph with five words here.

## Section

` + "```go\ncode words count too\n```" + `

Closing line.
`)

	stats := ComputeStats(body)

	if len(stats.Headings) != 2 {
		t.Fatalf("expected 2 headings, got %#v", stats.Headings)
	}
	if stats.Headings[0] != "Title" || stats.Headings[1] != "Section" {
		t.Fatalf("heading text mismatch: %#v", stats.Headings)
	}
	if stats.WordCount == 0 {
		t.Fatalf("expected non-zero word count")
	}
	if stats.ReadingTime < time.Second {
		t.Fatalf("reading time below floor: %v", stats.ReadingTime)
	}
}

func TestComputeStats_FencedHeadingIgnored(t *testing.T) {
	body := []byte("```\n# not a heading\n```\n\n# Real Heading\n")

	stats := ComputeStats(body)
	if len(stats.Headings) != 1 || stats.Headings[0] != "Real Heading" {
		t.Fatalf("fence heading leaked into outline: %#v", stats.Headings)
	}
}

func TestComputeStats_Empty(t *testing.T) {
	stats := ComputeStats(nil)
	if stats.WordCount != 0 || stats.ReadingTime != 0 || len(stats.Headings) != 0 {
		t.Fatalf("expected zero stats, got %#v", stats)
	}
}

func TestTitleFallback(t *testing.T) {
	stats := ComputeStats([]byte("# First\n\n## Second\n"))
	if got := TitleFallback(stats); got != "First" {
		t.Fatalf("expected First, got %q", got)
	}
	if got := TitleFallback(ComputeStats(nil)); got != "" {
		t.Fatalf("expected empty fallback, got %q", got)
	}
}

func TestExcerpt(t *testing.T) {
	body := []byte(`# Heading

> A quote that should be skipped.

This is the first prose paragraph
spread over two lines.

A second paragraph that must not appear.
`)

	got := Excerpt(body, 0)
	want := "This is the first prose paragraph spread over two lines."
	if got != want {
		t.Fatalf("excerpt mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestExcerpt_Truncates(t *testing.T) {
	body := []byte(strings.Repeat("word ", 100))

	got := Excerpt(body, 20)
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("expected ellipsis suffix, got %q", got)
	}
	if len([]rune(strings.TrimSuffix(got, "…"))) > 20 {
		t.Fatalf("excerpt longer than limit: %q", got)
	}
}
