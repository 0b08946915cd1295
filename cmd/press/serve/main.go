package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goliatone/go-press/cmd/press/internal/bootstrap"
	"github.com/goliatone/go-press/internal/logging"
	"github.com/goliatone/go-press/internal/server"
	"github.com/goliatone/go-press/internal/site"
	"github.com/goliatone/go-press/internal/watch"
	"github.com/goliatone/go-press/pkg/interfaces"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	if err := runServe(os.Args[1:]); err != nil {
		log.Fatalf("press serve: %v", err)
	}
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("press-serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to a YAML configuration file")
	contentDir := fs.String("content-dir", "", "Path to the markdown content root")
	storageDriver := fs.String("storage", "", "Storage driver (sqlite, postgres, memory)")
	storageDSN := fs.String("dsn", "", "Storage DSN, driver specific")
	outputDir := fs.String("output", "", "Directory generated pages are served from")
	baseURL := fs.String("base-url", "", "Absolute base URL used in sitemaps and feeds")
	addr := fs.String("addr", "127.0.0.1:8080", "Listen address for the preview server")
	watchMode := fs.Bool("watch", false, "Watch the content directory and rebuild on change")
	debounce := fs.Duration("debounce", 500*time.Millisecond, "Quiet period before a watched change triggers a rebuild")
	verbose := fs.Bool("verbose", false, "Enable debug logging")

	if err := fs.Parse(args); err != nil {
		return err
	}

	siteEnabled := true
	module, err := moduleBuilder(bootstrap.Options{
		ConfigPath:    *configPath,
		ContentDir:    *contentDir,
		StorageDriver: *storageDriver,
		StorageDSN:    *storageDSN,
		OutputDir:     *outputDir,
		BaseURL:       *baseURL,
		SiteEnabled:   &siteEnabled,
		Verbose:       *verbose,
	})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}

	cfg := module.Module.Container().Config
	provider := module.Module.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Bring the store and the output directory up to date before serving.
	if _, err := module.Markdown.Sync(ctx, ".", interfaces.SyncOptions{UpdateExisting: true}); err != nil {
		return fmt.Errorf("sync markdown corpus: %w", err)
	}
	if _, err := module.Site.Build(ctx, site.BuildOptions{}); err != nil {
		return fmt.Errorf("build site: %w", err)
	}

	srv, err := server.New(server.Config{
		Addr:      *addr,
		OutputDir: cfg.Site.OutputDir,
	}, server.Dependencies{
		Index:  module.Module.Index(),
		Site:   module.Site,
		Logger: logging.ModuleLogger(provider, "press.server"),
	})
	if err != nil {
		return fmt.Errorf("configure server: %w", err)
	}

	if *watchMode {
		watcher, err := watch.NewWatcher(watch.Config{
			Directory: cfg.Content.Dir,
			Debounce:  *debounce,
		}, func(ctx context.Context, paths []string) error {
			if _, err := module.Markdown.Sync(ctx, ".", interfaces.SyncOptions{UpdateExisting: true}); err != nil {
				return fmt.Errorf("sync markdown corpus: %w", err)
			}
			if _, err := module.Site.Build(ctx, site.BuildOptions{}); err != nil {
				return fmt.Errorf("rebuild site: %w", err)
			}
			return nil
		}, logging.WatchLogger(provider))
		if err != nil {
			return fmt.Errorf("configure watcher: %w", err)
		}
		if err := watcher.Start(ctx); err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
		defer func() { _ = watcher.Stop() }()
	}

	return srv.ListenAndServe(ctx)
}
