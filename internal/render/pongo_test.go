package render_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-press/internal/render"
)

func newTestRenderer(t *testing.T, cfg render.Config) *render.Renderer {
	t.Helper()

	renderer, err := render.NewRenderer(cfg)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return renderer
}

func TestRenderString(t *testing.T) {
	renderer := newTestRenderer(t, render.Config{})

	got, err := renderer.RenderString("Hello {{ name }}!", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if got != "Hello Ada!" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRenderTemplateBuiltin(t *testing.T) {
	renderer := newTestRenderer(t, render.Config{})

	got, err := renderer.RenderTemplate("list.html", map[string]any{
		"title": "Tutorials",
		"items": []map[string]any{
			{"url": "/tutorials/getting-started/", "title": "Getting Started"},
		},
	})
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	if !strings.Contains(got, "<h1>Tutorials</h1>") {
		t.Fatalf("missing heading in output: %s", got)
	}
	if !strings.Contains(got, `href="/tutorials/getting-started/"`) {
		t.Fatalf("missing item link in output: %s", got)
	}
}

func TestRenderTemplateDirectoryShadowsBuiltin(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "list.html", "custom: {{ title }}")

	renderer := newTestRenderer(t, render.Config{BaseDir: dir})

	got, err := renderer.RenderTemplate("list.html", map[string]any{"title": "Design"})
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	if got != "custom: Design" {
		t.Fatalf("expected directory template to win, got %q", got)
	}
}

func TestRenderTemplateUnknownName(t *testing.T) {
	renderer := newTestRenderer(t, render.Config{})

	if _, err := renderer.RenderTemplate("missing.html", nil); err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestGlobalContextMergesIntoRender(t *testing.T) {
	renderer := newTestRenderer(t, render.Config{})

	if err := renderer.GlobalContext(map[string]any{"site_name": "Field Notes"}); err != nil {
		t.Fatalf("global context: %v", err)
	}

	got, err := renderer.RenderString("{{ site_name }}: {{ title }}", map[string]any{"title": "Channels"})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if got != "Field Notes: Channels" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRegisterFilter(t *testing.T) {
	renderer := newTestRenderer(t, render.Config{})

	err := renderer.RegisterFilter("shout", func(in any, _ any) (any, error) {
		s, _ := in.(string)
		return strings.ToUpper(s), nil
	})
	if err != nil {
		t.Fatalf("register filter: %v", err)
	}

	got, err := renderer.RenderString("{{ word|shout }}", map[string]any{"word": "quiet"})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if got != "QUIET" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestBuiltinFilters(t *testing.T) {
	renderer := newTestRenderer(t, render.Config{})

	cases := []struct {
		template string
		data     map[string]any
		want     string
	}{
		{`{{ body|excerpt:3 }}`, map[string]any{"body": "one two three four five"}, "one two three…"},
		{`{{ name|slugify }}`, map[string]any{"name": "Hello, Go World!"}, "hello-go-world"},
		{`{{ path|absurl:base }}`, map[string]any{"path": "tags/go/", "base": "https://example.test"}, "https://example.test/tags/go/"},
	}
	for _, tc := range cases {
		got, err := renderer.RenderString(tc.template, tc.data)
		if err != nil {
			t.Fatalf("render %q: %v", tc.template, err)
		}
		if got != tc.want {
			t.Fatalf("render %q = %q, want %q", tc.template, got, tc.want)
		}
	}
}

func writeTemplate(t *testing.T, dir, name, content string) {
	t.Helper()

	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write template %s: %v", name, err)
	}
}
