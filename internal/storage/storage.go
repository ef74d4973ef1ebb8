package storage

import (
	"context"
	"errors"
	"io"

	"github.com/soochol/filechat/internal/extract"
)

var (
	// ErrOutsideStore is returned when a client-supplied record points at a
	// path that is not inside the upload directory.
	ErrOutsideStore = errors.New("file is outside the upload directory")
	// ErrTooLarge is returned when an upload exceeds the configured size cap.
	ErrTooLarge = errors.New("file exceeds upload size limit")
)

// Storage is the interface for upload persistence backends.
type Storage interface {
	// Save stores an upload under a server-assigned name and returns its record.
	Save(ctx context.Context, originalName, contentType string, reader io.Reader) (*extract.FileRecord, error)
	// Resolve checks that rec refers to a file held by this store and returns
	// the record with a normalized absolute path.
	Resolve(rec extract.FileRecord) (extract.FileRecord, error)
	// Delete removes the stored file rec refers to.
	Delete(ctx context.Context, rec extract.FileRecord) error
}
