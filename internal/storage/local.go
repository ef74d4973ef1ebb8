package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/soochol/filechat/internal/extract"
)

// LocalStorage stores uploads on the local filesystem.
type LocalStorage struct {
	baseDir string
	maxSize int64
}

// NewLocalStorage creates baseDir if needed. A maxSize of zero or less
// disables the size check.
func NewLocalStorage(baseDir string, maxSize int64) (*LocalStorage, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve storage dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalStorage{baseDir: abs, maxSize: maxSize}, nil
}

// Dir returns the absolute upload directory.
func (s *LocalStorage) Dir() string { return s.baseDir }

func (s *LocalStorage) Save(_ context.Context, originalName, contentType string, reader io.Reader) (*extract.FileRecord, error) {
	storedName := uuid.NewString() + filepath.Ext(originalName)
	fullPath := filepath.Join(s.baseDir, storedName)

	f, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	src := reader
	if s.maxSize > 0 {
		src = io.LimitReader(reader, s.maxSize+1)
	}
	n, err := io.Copy(f, src)
	if err == nil && s.maxSize > 0 && n > s.maxSize {
		err = ErrTooLarge
	}
	if err != nil {
		os.Remove(fullPath)
		if errors.Is(err, ErrTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("write file: %w", err)
	}

	return &extract.FileRecord{
		Filename:     storedName,
		OriginalName: originalName,
		Path:         fullPath,
		MimeType:     contentType,
		Size:         n,
	}, nil
}

func (s *LocalStorage) Resolve(rec extract.FileRecord) (extract.FileRecord, error) {
	path := rec.Path
	if path == "" {
		if rec.Filename == "" {
			return rec, fmt.Errorf("record has neither path nor filename: %w", ErrOutsideStore)
		}
		path = rec.Filename
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.baseDir, path)
	}
	path = filepath.Clean(path)

	rel, err := filepath.Rel(s.baseDir, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return rec, fmt.Errorf("%s: %w", rec.Path, ErrOutsideStore)
	}

	rec.Path = path
	return rec, nil
}

func (s *LocalStorage) Delete(_ context.Context, rec extract.FileRecord) error {
	resolved, err := s.Resolve(rec)
	if err != nil {
		return err
	}
	return os.Remove(resolved.Path)
}
