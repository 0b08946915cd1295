package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrContentDirRequired = errors.New("press config: content directory is required")
var ErrDefaultCollectionRequired = errors.New("press config: default collection is required")
var ErrStorageDriverUnknown = errors.New("press config: storage driver is invalid")
var ErrStorageDSNRequired = errors.New("press config: storage dsn is required")
var ErrSiteOutputDirRequired = errors.New("press config: site output directory is required when the generator is enabled")
var ErrSiteBaseURLInvalid = errors.New("press config: site base url must start with http:// or https://")
var ErrSiteWorkersInvalid = errors.New("press config: site worker count must be zero or positive")
var ErrFeedsRequireBaseURL = errors.New("press config: feeds require a site base url")
var ErrWatchRequiresContentDir = errors.New("press config: watch mode requires a content directory")
var ErrLoggingProviderRequired = errors.New("press config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("press config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("press config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("press config: logging format is invalid")

// Config aggregates feature flags and adapter bindings for the press module.
// Fields intentionally use simple types so host applications can extend them later.
type Config struct {
	Enabled           bool           `yaml:"enabled"`
	DefaultCollection string         `yaml:"default_collection"`
	Content           ContentConfig  `yaml:"content"`
	Storage           StorageConfig  `yaml:"storage"`
	Cache             CacheConfig    `yaml:"cache"`
	Site              SiteConfig     `yaml:"site"`
	Logging           LoggingConfig  `yaml:"logging"`
	Features          Features       `yaml:"features"`
	Commands          CommandsConfig `yaml:"commands"`
}

// ContentConfig captures filesystem and parser behaviour for Markdown ingestion.
type ContentConfig struct {
	Dir                string            `yaml:"dir"`
	Pattern            string            `yaml:"pattern"`
	Recursive          bool              `yaml:"recursive"`
	CollectionPatterns map[string]string `yaml:"collection_patterns"`
	Collections        []string          `yaml:"collections"`
	Parser             ParserConfig      `yaml:"parser"`
}

// ParserConfig mirrors interfaces.ParseOptions for runtime configuration.
type ParserConfig struct {
	Extensions []string `yaml:"extensions"`
	Sanitize   bool     `yaml:"sanitize"`
	HardWraps  bool     `yaml:"hard_wraps"`
	SafeMode   bool     `yaml:"safe_mode"`
}

// StorageConfig selects the persistence backend for the article store.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// CacheConfig captures repository cache behaviour toggles.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled"`
	DefaultTTL time.Duration `yaml:"default_ttl"`
}

// SiteConfig captures behaviour for the static site generator.
type SiteConfig struct {
	Enabled         bool              `yaml:"enabled"`
	OutputDir       string            `yaml:"output_dir"`
	BaseURL         string            `yaml:"base_url"`
	Title           string            `yaml:"title"`
	Description     string            `yaml:"description"`
	AssetsDir       string            `yaml:"assets_dir"`
	TemplatesDir    string            `yaml:"templates_dir"`
	CleanBuild      bool              `yaml:"clean_build"`
	Incremental     bool              `yaml:"incremental"`
	CopyAssets      bool              `yaml:"copy_assets"`
	GenerateSitemap bool              `yaml:"generate_sitemap"`
	GenerateRobots  bool              `yaml:"generate_robots"`
	GenerateFeeds   bool              `yaml:"generate_feeds"`
	FeedLimit       int               `yaml:"feed_limit"`
	Workers         int               `yaml:"workers"`
	Templates       map[string]string `yaml:"templates"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// Features toggles module functionality.
type Features struct {
	Versioning bool `yaml:"versioning"`
	Index      bool `yaml:"index"`
	Feeds      bool `yaml:"feeds"`
	Watch      bool `yaml:"watch"`
	Logger     bool `yaml:"logger"`
}

// CommandsConfig captures optional command-layer behaviour.
type CommandsConfig struct {
	Enabled bool          `yaml:"enabled"`
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultConfig returns opinionated defaults for a filesystem-backed corpus.
func DefaultConfig() Config {
	return Config{
		Enabled:           true,
		DefaultCollection: "articles",
		Content: ContentConfig{
			Dir:                "content",
			Pattern:            "*.md",
			Recursive:          true,
			CollectionPatterns: map[string]string{},
			Parser: ParserConfig{
				Extensions: []string{"gfm", "linkify", "tasklist"},
			},
		},
		Storage: StorageConfig{
			Driver: "sqlite",
			DSN:    "file:press.db?cache=shared&_fk=1",
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: time.Minute,
		},
		Site: SiteConfig{
			OutputDir:       "dist",
			CleanBuild:      true,
			CopyAssets:      true,
			GenerateSitemap: true,
			GenerateRobots:  false,
			GenerateFeeds:   true,
			FeedLimit:       20,
			Workers:         0,
			Templates:       map[string]string{},
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		Features: Features{
			Index: true,
			Feeds: true,
		},
		Commands: CommandsConfig{},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Content.Dir) == "" {
		return ErrContentDirRequired
	}
	if strings.TrimSpace(cfg.DefaultCollection) == "" {
		return ErrDefaultCollectionRequired
	}
	switch normalizeDriver(cfg.Storage.Driver) {
	case "sqlite", "postgres", "memory":
	default:
		return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, cfg.Storage.Driver)
	}
	if driver := normalizeDriver(cfg.Storage.Driver); driver != "memory" {
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return fmt.Errorf("%w: driver %s", ErrStorageDSNRequired, driver)
		}
	}
	if cfg.Site.Enabled {
		if strings.TrimSpace(cfg.Site.OutputDir) == "" {
			return ErrSiteOutputDirRequired
		}
		if base := strings.TrimSpace(cfg.Site.BaseURL); base != "" {
			if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
				return fmt.Errorf("%w: %s", ErrSiteBaseURLInvalid, base)
			}
		}
		if cfg.Site.Workers < 0 {
			return ErrSiteWorkersInvalid
		}
		if cfg.Site.GenerateFeeds && strings.TrimSpace(cfg.Site.BaseURL) == "" {
			return ErrFeedsRequireBaseURL
		}
	}
	if cfg.Features.Watch && strings.TrimSpace(cfg.Content.Dir) == "" {
		return ErrWatchRequiresContentDir
	}
	if cfg.Features.Logger {
		provider := strings.ToLower(strings.TrimSpace(cfg.Logging.Provider))
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func normalizeDriver(driver string) string {
	return strings.ToLower(strings.TrimSpace(driver))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
