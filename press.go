// Package press turns a directory of front-matter Markdown into a managed
// article corpus: parsed documents, a versioned article store, a navigable
// content index, and a static site generator.
package press

import (
	"github.com/goliatone/go-press/articles"
	"github.com/goliatone/go-press/internal/di"
	"github.com/goliatone/go-press/internal/index"
	"github.com/goliatone/go-press/internal/site"
	"github.com/goliatone/go-press/pkg/interfaces"
)

// ArticleService exports the article service contract for consumers of the press package.
type ArticleService = articles.Service

// CollectionService exports the collection service contract.
type CollectionService = articles.CollectionService

// MarkdownService exports the markdown service contract.
type MarkdownService = interfaces.MarkdownService

// IndexService exports the content index contract.
type IndexService = index.Service

// SiteService exports the static site generator contract.
type SiteService = site.Service

// Module represents the top level press runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a press module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Articles returns the configured article service.
func (m *Module) Articles() ArticleService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.ArticleService()
}

// Collections returns the configured collection service.
func (m *Module) Collections() CollectionService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.CollectionService()
}

// Markdown returns the markdown service when configured.
func (m *Module) Markdown() MarkdownService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.MarkdownService()
}

// Index returns the configured content index.
func (m *Module) Index() IndexService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.IndexService()
}

// Site returns the configured static site generator.
func (m *Module) Site() SiteService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.SiteService()
}

// Logger returns the logger provider, nil when the logging feature is off.
func (m *Module) Logger() interfaces.LoggerProvider {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.LoggerProvider()
}
