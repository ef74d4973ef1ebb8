package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/soochol/filechat/internal/extract"
	"github.com/soochol/filechat/internal/storage"
)

// multipartOverhead leaves room for boundaries and part headers on top of
// the file payload cap.
const multipartOverhead = 1 << 20

var allowedMimeTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"text/csv":        true,
	"application/csv": true,
	"text/plain":      true,
}

const unsupportedTypeMessage = "Unsupported file type. Please upload PDF, Word, Excel, or CSV files."

var errUnsupportedType = errors.New("unsupported file type")

func mimeTypeOf(header *multipart.FileHeader) string {
	ct := header.Header.Get("Content-Type")
	return strings.TrimSpace(strings.ToLower(strings.SplitN(ct, ";", 2)[0]))
}

type uploadResponse struct {
	Message string              `json:"message"`
	File    *extract.FileRecord `json:"file"`
}

type uploadManyResponse struct {
	Message string                `json:"message"`
	Files   []*extract.FileRecord `json:"files"`
}

func (s *Server) parseUpload(w http.ResponseWriter, r *http.Request, files int) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize*int64(files)+multipartOverhead)
	if err := r.ParseMultipartForm(s.maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "File upload failed",
			fmt.Sprintf("invalid upload (max %dMB per file): %v", s.maxUploadSize>>20, err))
		return false
	}
	return true
}

// saveUpload validates one multipart file and hands it to storage.
func (s *Server) saveUpload(r *http.Request, header *multipart.FileHeader) (*extract.FileRecord, error) {
	mimeType := mimeTypeOf(header)
	if !allowedMimeTypes[mimeType] {
		return nil, errUnsupportedType
	}
	if header.Size > s.maxUploadSize {
		return nil, storage.ErrTooLarge
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	return s.storage.Save(r.Context(), header.Filename, mimeType, file)
}

// uploadFailure maps a save error to its HTTP status and client message.
func uploadFailure(err error) (int, string) {
	switch {
	case errors.Is(err, errUnsupportedType):
		return http.StatusBadRequest, unsupportedTypeMessage
	case errors.Is(err, storage.ErrTooLarge):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

func (s *Server) uploadFile(w http.ResponseWriter, r *http.Request) {
	if !s.parseUpload(w, r, 1) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "No file uploaded", "")
		return
	}

	rec, err := s.saveUpload(r, headers[0])
	if err != nil {
		slog.Error("file upload failed", "original_name", headers[0].Filename, "err", err)
		status, msg := uploadFailure(err)
		writeError(w, status, "File upload failed", msg)
		return
	}

	slog.Info("file uploaded", "filename", rec.Filename, "original_name", rec.OriginalName, "size", rec.Size)
	writeJSON(w, http.StatusOK, uploadResponse{Message: "File uploaded successfully", File: rec})
}

func (s *Server) uploadFiles(w http.ResponseWriter, r *http.Request) {
	if !s.parseUpload(w, r, s.maxFiles) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "No files uploaded", "")
		return
	}
	if len(headers) > s.maxFiles {
		writeError(w, http.StatusBadRequest, "File upload failed",
			fmt.Sprintf("too many files: at most %d per request", s.maxFiles))
		return
	}

	// Validate the whole batch before writing anything to disk.
	for _, h := range headers {
		if !allowedMimeTypes[mimeTypeOf(h)] {
			writeError(w, http.StatusBadRequest, "File upload failed", unsupportedTypeMessage)
			return
		}
	}

	records := make([]*extract.FileRecord, 0, len(headers))
	for _, h := range headers {
		rec, err := s.saveUpload(r, h)
		if err != nil {
			slog.Error("file upload failed", "original_name", h.Filename, "err", err)
			s.discard(r.Context(), records)
			status, msg := uploadFailure(err)
			writeError(w, status, "File upload failed", msg)
			return
		}
		records = append(records, rec)
	}

	writeJSON(w, http.StatusOK, uploadManyResponse{
		Message: fmt.Sprintf("%d files uploaded successfully", len(records)),
		Files:   records,
	})
}

// discard removes files already stored for a batch that failed part way.
func (s *Server) discard(ctx context.Context, records []*extract.FileRecord) {
	for _, rec := range records {
		if err := s.storage.Delete(ctx, *rec); err != nil {
			slog.Warn("failed to remove partial upload", "filename", rec.Filename, "err", err)
		}
	}
}
