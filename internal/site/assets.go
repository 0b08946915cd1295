package site

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// AssetSource enumerates and opens the static files copied alongside the
// generated pages.
type AssetSource interface {
	List(ctx context.Context) ([]string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// NewDirAssets returns an AssetSource over the given directory. A missing
// directory yields an empty source rather than an error so builds work before
// any assets exist.
func NewDirAssets(dir string) AssetSource {
	return &dirAssets{dir: dir}
}

type dirAssets struct {
	dir string
}

func (d *dirAssets) List(_ context.Context) ([]string, error) {
	info, err := os.Stat(d.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("site: asset path %q is not a directory", d.dir)
	}

	var names []string
	root := os.DirFS(d.dir)
	err = fs.WalkDir(root, ".", func(name string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			return nil
		}
		names = append(names, filepath.ToSlash(name))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

func (d *dirAssets) Open(_ context.Context, name string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(d.dir, filepath.FromSlash(name)))
}

func detectAssetContentType(asset string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(asset), "."))
	switch ext {
	case "css":
		return "text/css"
	case "js":
		return "application/javascript"
	case "json":
		return "application/json"
	case "svg":
		return "image/svg+xml"
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	case "ico":
		return "image/x-icon"
	case "txt":
		return "text/plain; charset=utf-8"
	case "woff2":
		return "font/woff2"
	default:
		return "application/octet-stream"
	}
}
