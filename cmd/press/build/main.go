package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/goliatone/go-press/cmd/press/internal/bootstrap"
	sitecmd "github.com/goliatone/go-press/internal/commands/site"
	"github.com/goliatone/go-press/internal/logging"
	"github.com/goliatone/go-press/pkg/interfaces"
)

func syncOptions() interfaces.SyncOptions {
	return interfaces.SyncOptions{UpdateExisting: true}
}

var moduleBuilder = bootstrap.BuildModule

func main() {
	if err := runBuild(os.Args[1:]); err != nil {
		log.Fatalf("press build: %v", err)
	}
}

func runBuild(args []string) error {
	fs := flag.NewFlagSet("press-build", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to a YAML configuration file")
	contentDir := fs.String("content-dir", "", "Path to the markdown content root")
	storageDriver := fs.String("storage", "", "Storage driver (sqlite, postgres, memory)")
	storageDSN := fs.String("dsn", "", "Storage DSN, driver specific")
	outputDir := fs.String("output", "", "Directory generated pages are written to")
	baseURL := fs.String("base-url", "", "Absolute base URL used in sitemaps and feeds")
	routes := fs.String("routes", "", "Comma separated routes to rebuild (empty builds everything)")
	slugs := fs.String("slugs", "", "Comma separated article slugs to rebuild")
	syncFirst := fs.Bool("sync", false, "Sync the markdown corpus into the store before building")
	dryRun := fs.Bool("dry-run", false, "Render pages without writing artifacts")
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

	ctx := context.Background()

	if *syncFirst {
		if _, err := module.Markdown.Sync(ctx, ".", syncOptions()); err != nil {
			return fmt.Errorf("sync markdown corpus: %w", err)
		}
	}

	handler := sitecmd.NewBuildSiteHandler(
		module.Site,
		logging.SiteLogger(module.Module.Logger()),
		sitecmd.FeatureGates{},
	)
	cmd := sitecmd.BuildSiteCommand{
		Routes: bootstrap.SplitList(*routes),
		Slugs:  bootstrap.SplitList(*slugs),
		DryRun: *dryRun,
	}
	if err := handler.Execute(ctx, cmd); err != nil {
		return fmt.Errorf("execute build command: %w", err)
	}

	fmt.Fprintln(os.Stdout, "press build command executed successfully")
	return nil
}
