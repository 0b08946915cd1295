package site

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeArtifact(t *testing.T, storage *filesystemStorage, path, content string) {
	t.Helper()
	if _, err := storage.Exec(context.Background(), storageOpWrite, path, strings.NewReader(content)); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestFilesystemStorageAbsoluteBase(t *testing.T) {
	root := t.TempDir()
	storage := NewFilesystemStorage(root, root).(*filesystemStorage)

	// The build pipeline prefixes artifact paths with the output dir minus
	// its leading slash; those must land directly under root.
	prefixed := strings.Trim(filepath.ToSlash(root), "/") + "/tutorials/getting-started/index.html"
	writeArtifact(t, storage, prefixed, "<html>ok</html>")

	want := filepath.Join(root, "tutorials", "getting-started", "index.html")
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("expected artifact at %s: %v", want, err)
	}
	nested := filepath.Join(root, strings.Trim(filepath.ToSlash(root), "/"))
	if _, err := os.Stat(nested); !os.IsNotExist(err) {
		t.Fatalf("artifact duplicated output dir under root: %s", nested)
	}
}

func TestFilesystemStorageRelativeBase(t *testing.T) {
	root := t.TempDir()
	storage := NewFilesystemStorage(root, "public").(*filesystemStorage)

	writeArtifact(t, storage, "public/css/site.css", "body{}")
	if _, err := os.Stat(filepath.Join(root, "css", "site.css")); err != nil {
		t.Fatalf("expected trimmed artifact path: %v", err)
	}

	// A sibling directory sharing the prefix is not the output dir.
	writeArtifact(t, storage, "public-notes/readme.txt", "hi")
	if _, err := os.Stat(filepath.Join(root, "public-notes", "readme.txt")); err != nil {
		t.Fatalf("expected sibling path untouched: %v", err)
	}
}
