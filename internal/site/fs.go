package site

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-press/pkg/interfaces"
)

// NewFilesystemStorage returns a StorageProvider that writes artifacts to
// disk under root. The base argument should match the configured OutputDir so
// duplicated prefixes are trimmed from incoming paths.
func NewFilesystemStorage(root, base string) interfaces.StorageProvider {
	// Incoming artifact paths carry the output dir without a leading slash,
	// so absolute bases must drop theirs for the prefix check to hold.
	base = strings.Trim(filepath.ToSlash(filepath.Clean(base)), "/")
	return &filesystemStorage{root: root, base: base}
}

type filesystemStorage struct {
	root string
	base string
}

func (s *filesystemStorage) Query(_ context.Context, op string, args ...any) (interfaces.Rows, error) {
	if op != storageOpRead || len(args) == 0 {
		return nil, nil
	}
	target := s.normalizePath(args[0])
	data, err := os.ReadFile(s.abs(target))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &fileRows{data: data}, nil
}

func (s *filesystemStorage) Exec(_ context.Context, op string, args ...any) (interfaces.Result, error) {
	switch op {
	case storageOpEnsureDir:
		if len(args) == 0 {
			return emptyResult{}, fmt.Errorf("site: ensure_dir requires path")
		}
		path := s.normalizePath(args[0])
		return emptyResult{}, os.MkdirAll(s.abs(path), 0o755)
	case storageOpWrite:
		if len(args) < 2 {
			return emptyResult{}, fmt.Errorf("site: write requires path and reader")
		}
		path := s.normalizePath(args[0])
		reader, ok := args[1].(io.Reader)
		if !ok || reader == nil {
			return emptyResult{}, fmt.Errorf("site: write expects io.Reader content")
		}
		full := s.abs(path)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return emptyResult{}, err
		}
		file, err := os.Create(full)
		if err != nil {
			return emptyResult{}, err
		}
		defer file.Close()
		if _, err := io.Copy(file, reader); err != nil {
			return emptyResult{}, err
		}
		return emptyResult{}, nil
	case storageOpRemove:
		if len(args) == 0 {
			return emptyResult{}, fmt.Errorf("site: remove requires path")
		}
		path := s.normalizePath(args[0])
		err := os.RemoveAll(s.abs(path))
		if errors.Is(err, os.ErrNotExist) {
			return emptyResult{}, nil
		}
		return emptyResult{}, err
	default:
		return emptyResult{}, nil
	}
}

func (s *filesystemStorage) Transaction(_ context.Context, fn func(tx interfaces.Transaction) error) error {
	if fn == nil {
		return nil
	}
	return fn(&filesystemTx{storage: s})
}

func (s *filesystemStorage) abs(rel string) string {
	if rel == "" {
		return s.root
	}
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

func (s *filesystemStorage) normalizePath(arg any) string {
	path, _ := arg.(string)
	path = strings.TrimPrefix(filepath.ToSlash(filepath.Clean(path)), "/")
	if s.base != "" && s.base != "." {
		if path == s.base {
			return ""
		}
		if strings.HasPrefix(path, s.base+"/") {
			path = strings.TrimPrefix(path, s.base+"/")
		}
	}
	return path
}

type filesystemTx struct {
	storage *filesystemStorage
}

func (tx *filesystemTx) Query(ctx context.Context, op string, args ...any) (interfaces.Rows, error) {
	return tx.storage.Query(ctx, op, args...)
}

func (tx *filesystemTx) Exec(ctx context.Context, op string, args ...any) (interfaces.Result, error) {
	return tx.storage.Exec(ctx, op, args...)
}

func (tx *filesystemTx) Transaction(context.Context, func(interfaces.Transaction) error) error {
	return errors.New("site: nested transactions not supported")
}

func (tx *filesystemTx) Commit() error { return nil }

func (tx *filesystemTx) Rollback() error { return nil }

type emptyResult struct{}

func (emptyResult) RowsAffected() (int64, error) { return 0, nil }
func (emptyResult) LastInsertId() (int64, error) { return 0, nil }

type fileRows struct {
	data []byte
	done bool
}

func (r *fileRows) Next() bool {
	if r.done {
		return false
	}
	r.done = true
	return true
}

func (r *fileRows) Scan(dest ...any) error {
	if len(dest) == 0 {
		return fmt.Errorf("site: scan requires destination")
	}
	target, ok := dest[0].(*[]byte)
	if !ok {
		return fmt.Errorf("site: scan expects *[]byte destination")
	}
	*target = append([]byte(nil), r.data...)
	return nil
}

func (r *fileRows) Close() error { return nil }
