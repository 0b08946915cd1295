package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/goliatone/go-press/cmd/press/internal/bootstrap"
	"github.com/goliatone/go-press/pkg/interfaces"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	var (
		configPath = flag.String("config", "", "Path to a YAML configuration file")
		contentDir = flag.String("content-dir", "", "Path to the markdown content root")
		pattern    = flag.String("pattern", "", "Glob pattern applied when discovering markdown files")
		filePath   = flag.String("file", "", "Markdown file to preview (relative to the content root)")
		renderHTML = flag.Bool("render-html", true, "Render the markdown body into HTML as part of the preview")
	)

	flag.Parse()

	if *filePath == "" {
		log.Fatalf("--file is required")
	}

	module, err := moduleBuilder(bootstrap.Options{
		ConfigPath:    *configPath,
		ContentDir:    *contentDir,
		Pattern:       *pattern,
		StorageDriver: "memory",
	})
	if err != nil {
		log.Fatalf("bootstrap module: %v", err)
	}

	ctx := context.Background()

	doc, err := module.Markdown.Load(ctx, *filePath, interfaces.LoadOptions{})
	if err != nil {
		log.Fatalf("load markdown document: %v", err)
	}

	if *renderHTML {
		if _, err := module.Markdown.RenderDocument(ctx, doc, interfaces.ParseOptions{}); err != nil {
			log.Fatalf("render markdown: %v", err)
		}
	}

	fmt.Fprintf(os.Stdout, "Path: %s\nCollection: %s\nChecksum: %x\n", doc.FilePath, doc.Collection, doc.Checksum)
	fmt.Fprintf(os.Stdout, "Words: %d Reading: %s\n\n", doc.Stats.WordCount, doc.Stats.ReadingTime)

	if frontmatter, err := json.MarshalIndent(doc.FrontMatter, "", "  "); err == nil {
		fmt.Fprintf(os.Stdout, "Frontmatter:\n%s\n\n", frontmatter)
	}

	if *renderHTML {
		fmt.Fprintf(os.Stdout, "Rendered HTML:\n%s\n", string(doc.BodyHTML))
	} else {
		fmt.Fprintf(os.Stdout, "Markdown Body:\n%s\n", string(doc.Body))
	}
}
