// Package bootstrap shares module construction between the press CLI tools.
package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	press "github.com/goliatone/go-press"
	"github.com/goliatone/go-press/internal/di"
	"github.com/goliatone/go-press/internal/logging"
	"github.com/goliatone/go-press/pkg/interfaces"
)

// Options captures the flag surface shared by the press CLI tools.
type Options struct {
	ConfigPath string

	ContentDir string
	Pattern    string
	Recursive  bool
	Collection string

	StorageDriver string
	StorageDSN    string

	OutputDir   string
	BaseURL     string
	SiteEnabled *bool

	Verbose bool

	LoggerProvider interfaces.LoggerProvider
}

// Module wraps the press module and the collaborators the CLI tools use.
type Module struct {
	Module   *press.Module
	Markdown interfaces.MarkdownService
	Site     press.SiteService
	Logger   interfaces.Logger
}

// LoadConfig resolves the effective configuration: file contents when a path
// is supplied, defaults otherwise, with flag overrides applied on top.
func LoadConfig(opts Options) (press.Config, error) {
	cfg := press.DefaultConfig()
	if path := strings.TrimSpace(opts.ConfigPath); path != "" {
		loaded, err := press.LoadConfig(path)
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
		cfg = loaded
	}

	if dir := strings.TrimSpace(opts.ContentDir); dir != "" {
		cfg.Content.Dir = dir
	}
	if pattern := strings.TrimSpace(opts.Pattern); pattern != "" {
		cfg.Content.Pattern = pattern
	}
	if opts.Recursive {
		cfg.Content.Recursive = true
	}
	if collection := strings.TrimSpace(opts.Collection); collection != "" {
		cfg.DefaultCollection = collection
	}
	if driver := strings.TrimSpace(opts.StorageDriver); driver != "" {
		cfg.Storage.Driver = driver
	}
	if dsn := strings.TrimSpace(opts.StorageDSN); dsn != "" {
		cfg.Storage.DSN = dsn
	}
	if dir := strings.TrimSpace(opts.OutputDir); dir != "" {
		cfg.Site.OutputDir = dir
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		cfg.Site.BaseURL = base
	}
	if opts.SiteEnabled != nil {
		cfg.Site.Enabled = *opts.SiteEnabled
	}
	if opts.Verbose {
		cfg.Features.Logger = true
		if strings.TrimSpace(cfg.Logging.Provider) == "" {
			cfg.Logging.Provider = "console"
		}
		cfg.Logging.Level = "debug"
	}

	return cfg, nil
}

// BuildModule constructs a press module configured for CLI operations.
func BuildModule(opts Options) (*Module, error) {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return nil, err
	}

	diOpts := []di.Option{}
	if opts.LoggerProvider != nil {
		diOpts = append(diOpts, di.WithLoggerProvider(opts.LoggerProvider))
	}

	db, err := di.OpenBunDB(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	if db != nil {
		if err := press.CreateTables(context.Background(), db); err != nil {
			return nil, fmt.Errorf("apply schema: %w", err)
		}
		diOpts = append(diOpts, di.WithBunDB(db))
	}

	module, err := press.New(cfg, diOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise press module: %w", err)
	}

	service := module.Markdown()
	if service == nil {
		return nil, fmt.Errorf("markdown service not configured")
	}

	logger := logging.MarkdownLogger(module.Container().LoggerProvider())

	return &Module{
		Module:   module,
		Markdown: service,
		Site:     module.Site(),
		Logger:   logger,
	}, nil
}

// SplitList parses a comma separated flag value into a trimmed slice.
func SplitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// ParseUUID converts the supplied string into a UUID, returning uuid.Nil when the input is empty.
func ParseUUID(value string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(trimmed)
}
