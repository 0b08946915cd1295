package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/goliatone/go-press/cmd/press/internal/bootstrap"
	markdowncmd "github.com/goliatone/go-press/internal/commands/markdown"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	if err := runImport(os.Args[1:]); err != nil {
		log.Fatalf("press import: %v", err)
	}
}

func runImport(args []string) error {
	fs := flag.NewFlagSet("press-import", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to a YAML configuration file")
	contentDir := fs.String("content-dir", "", "Path to the markdown content root")
	pattern := fs.String("pattern", "", "Glob pattern applied when discovering markdown files")
	collectionCode := fs.String("collection", "", "Default collection for imported documents")
	storageDriver := fs.String("storage", "", "Storage driver (sqlite, postgres, memory)")
	storageDSN := fs.String("dsn", "", "Storage DSN, driver specific")
	directory := fs.String("directory", ".", "Directory to import, relative to the content root")
	collectionID := fs.String("collection-id", "", "Collection ID to associate with imported documents")
	author := fs.String("author", "", "Author ID recorded on imported articles")
	dryRun := fs.Bool("dry-run", false, "Preview changes without persisting articles")
	verbose := fs.Bool("verbose", false, "Enable debug logging")

	if err := fs.Parse(args); err != nil {
		return err
	}

	module, err := moduleBuilder(bootstrap.Options{
		ConfigPath:    *configPath,
		ContentDir:    *contentDir,
		Pattern:       *pattern,
		Collection:    *collectionCode,
		StorageDriver: *storageDriver,
		StorageDSN:    *storageDSN,
		Verbose:       *verbose,
	})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}

	cmd := markdowncmd.ImportDirectoryCommand{
		Directory: *directory,
		DryRun:    *dryRun,
	}
	if cmd.CollectionID, err = bootstrap.ParseUUID(*collectionID); err != nil {
		return fmt.Errorf("parse collection-id: %w", err)
	}
	if cmd.AuthorID, err = bootstrap.ParseUUID(*author); err != nil {
		return fmt.Errorf("parse author: %w", err)
	}

	handler := markdowncmd.NewImportDirectoryHandler(module.Markdown, module.Logger, markdowncmd.FeatureGates{})
	if err := handler.Execute(context.Background(), cmd); err != nil {
		return fmt.Errorf("execute import command: %w", err)
	}

	fmt.Fprintln(os.Stdout, "press import command executed successfully")
	return nil
}
