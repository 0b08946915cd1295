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
	if err := runSync(os.Args[1:]); err != nil {
		log.Fatalf("press sync: %v", err)
	}
}

func runSync(args []string) error {
	fs := flag.NewFlagSet("press-sync", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to a YAML configuration file")
	contentDir := fs.String("content-dir", "", "Path to the markdown content root")
	pattern := fs.String("pattern", "", "Glob pattern applied when discovering markdown files")
	collectionCode := fs.String("collection", "", "Default collection for imported documents")
	storageDriver := fs.String("storage", "", "Storage driver (sqlite, postgres, memory)")
	storageDSN := fs.String("dsn", "", "Storage DSN, driver specific")
	directory := fs.String("directory", ".", "Directory to sync, relative to the content root")
	collectionID := fs.String("collection-id", "", "Collection ID to associate with imported documents")
	author := fs.String("author", "", "Author ID recorded on imported articles")
	deleteOrphaned := fs.Bool("delete-orphaned", false, "Soft delete articles whose source files disappeared")
	updateExisting := fs.Bool("update-existing", true, "Update articles whose source checksum changed")
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

	cmd := markdowncmd.SyncDirectoryCommand{
		Directory:      *directory,
		DeleteOrphaned: *deleteOrphaned,
		UpdateExisting: *updateExisting,
		DryRun:         *dryRun,
	}
	if cmd.CollectionID, err = bootstrap.ParseUUID(*collectionID); err != nil {
		return fmt.Errorf("parse collection-id: %w", err)
	}
	if cmd.AuthorID, err = bootstrap.ParseUUID(*author); err != nil {
		return fmt.Errorf("parse author: %w", err)
	}

	handler := markdowncmd.NewSyncDirectoryHandler(module.Markdown, module.Logger, markdowncmd.FeatureGates{})
	if err := handler.Execute(context.Background(), cmd); err != nil {
		return fmt.Errorf("execute sync command: %w", err)
	}

	fmt.Fprintln(os.Stdout, "press sync command executed successfully")
	return nil
}
