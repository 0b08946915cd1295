package render

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-press/pkg/interfaces"
)

var (
	ErrTemplateNameRequired = errors.New("render: template name is required")
	ErrTemplateNotFound     = errors.New("render: template not found")
)

// Config controls template resolution for the pongo2 renderer.
type Config struct {
	// BaseDir is the directory templates are loaded from. When empty, only
	// the built-in templates and RenderString are available.
	BaseDir string
	// Globals are merged into every render context.
	Globals map[string]any
	// Aliases remaps requested template names before resolution, letting
	// hosts point well-known names such as "article.html" at their own files.
	Aliases map[string]string
}

// Renderer implements interfaces.TemplateRenderer on top of pongo2.
type Renderer struct {
	mu       sync.RWMutex
	set      *pongo2.TemplateSet
	globals  map[string]any
	aliases  map[string]string
	builtins map[string]*pongo2.Template
}

// NewRenderer constructs a pongo2-backed template renderer.
func NewRenderer(cfg Config) (*Renderer, error) {
	registerFilters()

	r := &Renderer{
		globals:  map[string]any{},
		aliases:  map[string]string{},
		builtins: map[string]*pongo2.Template{},
	}
	for key, value := range cfg.Globals {
		r.globals[key] = value
	}
	for name, target := range cfg.Aliases {
		if name != "" && target != "" {
			r.aliases[name] = target
		}
	}

	if cfg.BaseDir != "" {
		info, err := os.Stat(cfg.BaseDir)
		if err != nil {
			return nil, fmt.Errorf("render: inspect template directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("render: template path %q is not a directory", cfg.BaseDir)
		}
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.BaseDir)
		if err != nil {
			return nil, fmt.Errorf("render: template loader: %w", err)
		}
		r.set = pongo2.NewSet("press", loader)
	}

	for name, source := range builtinTemplates {
		tpl, err := pongo2.FromString(source)
		if err != nil {
			return nil, fmt.Errorf("render: compile builtin %s: %w", name, err)
		}
		r.builtins[name] = tpl
	}

	return r, nil
}

// RenderTemplate renders a named template with the supplied data. Templates in
// the configured directory shadow the built-in fallbacks.
func (r *Renderer) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if name == "" {
		return "", ErrTemplateNameRequired
	}

	tpl, err := r.resolve(name)
	if err != nil {
		return "", err
	}
	return r.execute(tpl, data, out...)
}

// RenderString compiles and renders an inline template.
func (r *Renderer) RenderString(content string, data any, out ...io.Writer) (string, error) {
	tpl, err := pongo2.FromString(content)
	if err != nil {
		return "", fmt.Errorf("render: compile inline template: %w", err)
	}
	return r.execute(tpl, data, out...)
}

// RegisterFilter exposes a custom filter to all templates.
func (r *Renderer) RegisterFilter(name string, fn func(any, any) (any, error)) error {
	if name == "" {
		return errors.New("render: filter name is required")
	}
	if fn == nil {
		return errors.New("render: filter function is required")
	}

	return pongo2.RegisterFilter(name, func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		result, err := fn(in.Interface(), param.Interface())
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	})
}

// GlobalContext merges shared values into every subsequent render.
func (r *Renderer) GlobalContext(data any) error {
	values, err := toContext(data)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for key, value := range values {
		r.globals[key] = value
	}
	return nil
}

func (r *Renderer) resolve(name string) (*pongo2.Template, error) {
	if target, ok := r.aliases[name]; ok {
		name = target
	}
	if r.set != nil {
		tpl, err := r.set.FromCache(name)
		if err == nil {
			return tpl, nil
		}
	}
	if tpl, ok := r.builtins[name]; ok {
		return tpl, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
}

func (r *Renderer) execute(tpl *pongo2.Template, data any, out ...io.Writer) (string, error) {
	values, err := toContext(data)
	if err != nil {
		return "", err
	}

	r.mu.RLock()
	ctx := make(pongo2.Context, len(r.globals)+len(values))
	for key, value := range r.globals {
		ctx[key] = value
	}
	r.mu.RUnlock()
	for key, value := range values {
		ctx[key] = value
	}

	rendered, err := tpl.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("render: execute template: %w", err)
	}

	for _, writer := range out {
		if writer == nil {
			continue
		}
		if _, err := io.WriteString(writer, rendered); err != nil {
			return "", fmt.Errorf("render: write output: %w", err)
		}
	}
	return rendered, nil
}

func toContext(data any) (map[string]any, error) {
	switch typed := data.(type) {
	case nil:
		return map[string]any{}, nil
	case pongo2.Context:
		return typed, nil
	case map[string]any:
		return typed, nil
	default:
		return nil, fmt.Errorf("render: unsupported context type %T", data)
	}
}

// Interface guard.
var _ interfaces.TemplateRenderer = (*Renderer)(nil)
