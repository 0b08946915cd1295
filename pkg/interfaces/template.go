package interfaces

import "io"

// TemplateRenderer abstracts the template engine used by the site generator.
// Implementations render by template name or inline source and may stream to
// the optional writer instead of returning the rendered document.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
