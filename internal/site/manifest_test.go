package site

import (
	"testing"
	"time"
)

func TestManifestRoundTripPreservesSkipDecisions(t *testing.T) {
	manifest := newBuildManifest()
	manifest.GeneratedAt = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	manifest.setPage(manifestPage{
		Route:    "/tutorials/getting-started/",
		Kind:     "article",
		Output:   "tutorials/getting-started/index.html",
		Template: "article.html",
		Hash:     "abc123",
	})
	manifest.setAsset(manifestAsset{
		Source:   "css/site.css",
		Output:   "assets/css/site.css",
		Checksum: "def456",
		Size:     128,
	})

	data, err := manifest.marshal()
	if err != nil {
		t.Fatalf("marshal manifest: %v", err)
	}

	parsed, err := parseManifest(data)
	if err != nil {
		t.Fatalf("parse manifest: %v", err)
	}
	if parsed.Version != manifestFileVersion {
		t.Fatalf("expected version %d, got %d", manifestFileVersion, parsed.Version)
	}
	if !parsed.shouldSkipPage("/tutorials/getting-started/", "abc123", "tutorials/getting-started/index.html") {
		t.Fatal("expected unchanged page to be skipped after reload")
	}
	if parsed.shouldSkipPage("/tutorials/getting-started/", "changed", "tutorials/getting-started/index.html") {
		t.Fatal("expected changed page hash to force a rebuild")
	}
	if !parsed.shouldSkipAsset("css/site.css", "def456", "assets/css/site.css") {
		t.Fatal("expected unchanged asset to be skipped after reload")
	}
}

func TestParseManifestEmptyInput(t *testing.T) {
	manifest, err := parseManifest(nil)
	if err != nil {
		t.Fatalf("parse manifest: %v", err)
	}
	if manifest.Version != manifestFileVersion || manifest.Pages == nil || manifest.Assets == nil {
		t.Fatalf("expected initialised manifest, got %+v", manifest)
	}
}
