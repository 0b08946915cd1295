// Package di wires the press services together from a runtime configuration.
// Hosts construct a Container once and pull fully configured services from it;
// every binding can be overridden through an Option for testing or embedding.
package di

import (
	"fmt"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-press/articles"
	articlestore "github.com/goliatone/go-press/internal/articles"
	"github.com/goliatone/go-press/internal/index"
	"github.com/goliatone/go-press/internal/logging"
	"github.com/goliatone/go-press/internal/markdown"
	"github.com/goliatone/go-press/internal/render"
	"github.com/goliatone/go-press/internal/runtimeconfig"
	"github.com/goliatone/go-press/internal/site"
	"github.com/goliatone/go-press/pkg/interfaces"
)

// Container owns the object graph for a press instance. Repositories default
// to in-memory implementations and switch to bun-backed ones when a database
// is supplied via WithBunDB.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider

	bunDB         *bun.DB
	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	storage  interfaces.StorageProvider
	renderer interfaces.TemplateRenderer
	assets   site.AssetSource

	articleRepo    articlestore.ArticleRepository
	collectionRepo articlestore.CollectionRepository

	articleSvc    articles.Service
	collectionSvc articles.CollectionService
	markdownSvc   interfaces.MarkdownService
	indexSvc      index.Service
	siteSvc       site.Service
}

// Option mutates the container before the default bindings are resolved.
type Option func(*Container)

// WithLoggerProvider overrides the logger provider derived from configuration.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithBunDB switches the article store to bun-backed repositories.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the repository cache provider.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithStorage overrides the storage provider used by the site generator.
func WithStorage(sp interfaces.StorageProvider) Option {
	return func(c *Container) {
		c.storage = sp
	}
}

// WithTemplate overrides the template renderer used by the site generator.
func WithTemplate(tr interfaces.TemplateRenderer) Option {
	return func(c *Container) {
		c.renderer = tr
	}
}

// WithAssets overrides the asset source used by the site generator.
func WithAssets(src site.AssetSource) Option {
	return func(c *Container) {
		c.assets = src
	}
}

// WithArticleRepository overrides the default article repository binding.
func WithArticleRepository(repo articlestore.ArticleRepository) Option {
	return func(c *Container) {
		c.articleRepo = repo
	}
}

// WithCollectionRepository overrides the default collection repository binding.
func WithCollectionRepository(repo articlestore.CollectionRepository) Option {
	return func(c *Container) {
		c.collectionRepo = repo
	}
}

// WithArticleService overrides the default article service binding.
func WithArticleService(svc articles.Service) Option {
	return func(c *Container) {
		c.articleSvc = svc
	}
}

// WithCollectionService overrides the default collection service binding.
func WithCollectionService(svc articles.CollectionService) Option {
	return func(c *Container) {
		c.collectionSvc = svc
	}
}

// WithMarkdownService overrides the default markdown service binding.
func WithMarkdownService(svc interfaces.MarkdownService) Option {
	return func(c *Container) {
		c.markdownSvc = svc
	}
}

// WithIndexService overrides the default index service binding.
func WithIndexService(svc index.Service) Option {
	return func(c *Container) {
		c.indexSvc = svc
	}
}

// WithSiteService overrides the default site generator binding.
func WithSiteService(svc site.Service) Option {
	return func(c *Container) {
		c.siteSvc = svc
	}
}

// NewContainer validates cfg and resolves the service graph. Options are
// applied before defaults so supplied bindings always win.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("di: invalid configuration: %w", err)
	}

	cacheTTL := cfg.Cache.DefaultTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	c := &Container{
		Config:         cfg,
		cacheTTL:       cacheTTL,
		articleRepo:    articlestore.NewMemoryArticleRepository(),
		collectionRepo: articlestore.NewMemoryCollectionRepository(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	if err := c.configureCacheDefaults(); err != nil {
		return nil, err
	}
	c.configureRepositories()
	if err := c.configureServices(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Container) configureCacheDefaults() error {
	if !c.Config.Cache.Enabled {
		return nil
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.cacheTTL > 0 {
			cfg.TTL = c.cacheTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err != nil {
			// Caching is explicit opt-in; a service that cannot be built
			// should fail loudly instead of silently running uncached.
			return fmt.Errorf("di: cache service: %w", err)
		}
		c.cacheService = service
	}

	if c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
	return nil
}

func (c *Container) configureRepositories() {
	if c.bunDB == nil {
		return
	}
	c.articleRepo = articlestore.NewBunArticleRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	c.collectionRepo = articlestore.NewBunCollectionRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
}

func (c *Container) configureServices() error {
	if c.collectionSvc == nil {
		c.collectionSvc = articlestore.NewCollectionService(c.collectionRepo)
	}

	if c.articleSvc == nil {
		c.articleSvc = articlestore.NewService(
			c.articleRepo,
			c.collectionRepo,
			articlestore.WithVersioningEnabled(c.Config.Features.Versioning),
			articlestore.WithLogger(logging.ArticlesLogger(c.loggerProvider)),
		)
	}

	if c.markdownSvc == nil {
		svc, err := markdown.NewService(markdownConfig(c.Config), nil,
			markdown.WithImporter(markdown.NewImporter(markdown.ImporterConfig{
				Articles:    c.articleSvc,
				Collections: c.collectionSvc,
				Logger:      logging.MarkdownLogger(c.loggerProvider),
			})),
		)
		if err != nil {
			return fmt.Errorf("di: markdown service: %w", err)
		}
		c.markdownSvc = svc
	}

	if c.indexSvc == nil {
		c.indexSvc = index.NewService(index.Config{}, index.Dependencies{
			Articles:    c.articleSvc,
			Collections: c.collectionSvc,
			Logger:      logging.IndexLogger(c.loggerProvider),
		})
	}

	if c.siteSvc == nil {
		if !c.Config.Site.Enabled {
			c.siteSvc = site.NewDisabledService()
			return nil
		}

		if c.renderer == nil {
			renderer, err := render.NewRenderer(render.Config{
				BaseDir: c.Config.Site.TemplatesDir,
				Aliases: c.Config.Site.Templates,
			})
			if err != nil {
				return fmt.Errorf("di: template renderer: %w", err)
			}
			c.renderer = renderer
		}
		if c.storage == nil {
			c.storage = site.NewFilesystemStorage(c.Config.Site.OutputDir, c.Config.Site.OutputDir)
		}
		if c.assets == nil && c.Config.Site.CopyAssets && c.Config.Site.AssetsDir != "" {
			c.assets = site.NewDirAssets(c.Config.Site.AssetsDir)
		}

		c.siteSvc = site.NewService(siteConfig(c.Config), site.Dependencies{
			Index:    c.indexSvc,
			Renderer: c.renderer,
			Storage:  c.storage,
			Assets:   c.assets,
			Logger:   logging.SiteLogger(c.loggerProvider),
		})
	}

	return nil
}

func markdownConfig(cfg runtimeconfig.Config) markdown.Config {
	return markdown.Config{
		BasePath:           cfg.Content.Dir,
		DefaultCollection:  cfg.DefaultCollection,
		Collections:        cfg.Content.Collections,
		CollectionPatterns: cfg.Content.CollectionPatterns,
		Pattern:            cfg.Content.Pattern,
		Recursive:          cfg.Content.Recursive,
		Parser: interfaces.ParseOptions{
			Extensions: cfg.Content.Parser.Extensions,
			Sanitize:   cfg.Content.Parser.Sanitize,
			HardWraps:  cfg.Content.Parser.HardWraps,
			SafeMode:   cfg.Content.Parser.SafeMode,
		},
	}
}

func siteConfig(cfg runtimeconfig.Config) site.Config {
	return site.Config{
		OutputDir:       cfg.Site.OutputDir,
		BaseURL:         cfg.Site.BaseURL,
		SiteName:        cfg.Site.Title,
		SiteDescription: cfg.Site.Description,
		CleanBuild:      cfg.Site.CleanBuild,
		Incremental:     cfg.Site.Incremental,
		CopyAssets:      cfg.Site.CopyAssets,
		GenerateSitemap: cfg.Site.GenerateSitemap,
		GenerateRobots:  cfg.Site.GenerateRobots,
		GenerateFeeds:   cfg.Site.GenerateFeeds && cfg.Features.Feeds,
		FeedLimit:       cfg.Site.FeedLimit,
		Workers:         cfg.Site.Workers,
	}
}

// LoggerProvider exposes the configured logger provider. It is nil when the
// logging feature is disabled and no provider was supplied.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// StorageProvider exposes the configured site storage provider.
func (c *Container) StorageProvider() interfaces.StorageProvider {
	return c.storage
}

// TemplateRenderer exposes the configured template renderer.
func (c *Container) TemplateRenderer() interfaces.TemplateRenderer {
	return c.renderer
}

// ArticleRepository exposes the configured article repository.
func (c *Container) ArticleRepository() articlestore.ArticleRepository {
	return c.articleRepo
}

// CollectionRepository exposes the configured collection repository.
func (c *Container) CollectionRepository() articlestore.CollectionRepository {
	return c.collectionRepo
}

// ArticleService returns the configured article service.
func (c *Container) ArticleService() articles.Service {
	return c.articleSvc
}

// CollectionService returns the configured collection service.
func (c *Container) CollectionService() articles.CollectionService {
	return c.collectionSvc
}

// MarkdownService returns the configured markdown service.
func (c *Container) MarkdownService() interfaces.MarkdownService {
	return c.markdownSvc
}

// IndexService returns the configured content index.
func (c *Container) IndexService() index.Service {
	return c.indexSvc
}

// SiteService returns the configured static site generator. When the site
// feature is disabled the returned service fails every call with
// site.ErrServiceDisabled.
func (c *Container) SiteService() site.Service {
	return c.siteSvc
}

// CacheService exposes the repository cache, nil when caching is disabled.
func (c *Container) CacheService() repocache.CacheService {
	return c.cacheService
}

// DB exposes the bun database handle, nil when running on memory repositories.
func (c *Container) DB() *bun.DB {
	return c.bunDB
}
