// Package extract turns stored uploads into plain text plus metadata that the
// chat proxy can embed into a prompt.
package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned when the original file name carries an
	// extension outside the recognised set. No file I/O happens in that case.
	ErrUnsupportedFormat = errors.New("unsupported file extension")
	// ErrExtractionFailed wraps every parser or I/O failure from an extractor.
	ErrExtractionFailed = errors.New("extraction failed")
)

// FileRecord describes an upload that has already been written to disk.
type FileRecord struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	Path         string `json:"path"`
	MimeType     string `json:"mimetype"`
	Size         int64  `json:"size"`
}

// Result is the normalized output of every extractor.
type Result struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
}

// Format is the closed set of document families the dispatcher understands.
type Format int

const (
	FormatPDF Format = iota + 1
	FormatWord
	FormatExcel
	FormatCSV
	FormatText
)

func (f Format) String() string {
	switch f {
	case FormatPDF:
		return "PDF"
	case FormatWord:
		return "Word document"
	case FormatExcel:
		return "Excel file"
	case FormatCSV:
		return "CSV file"
	case FormatText:
		return "text file"
	default:
		return "unknown"
	}
}

var formatsByExt = map[string]Format{
	".pdf":  FormatPDF,
	".docx": FormatWord,
	".doc":  FormatWord,
	".xlsx": FormatExcel,
	".xls":  FormatExcel,
	".csv":  FormatCSV,
	".txt":  FormatText,
}

// FormatOf maps a file name to its format family using the lower-cased
// extension.
func FormatOf(name string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(name))
	f, ok := formatsByExt[ext]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return f, nil
}

// Supported reports whether name has an extension ProcessFile can handle.
func Supported(name string) bool {
	_, err := FormatOf(name)
	return err == nil
}

type extractorFunc func(path string) (*Result, error)

// extractorFor picks the extractor for f. ext is the lower-cased extension
// of the original name; the Excel reader choice depends on it.
func extractorFor(f Format, ext string) extractorFunc {
	switch f {
	case FormatPDF:
		return extractPDF
	case FormatWord:
		return extractWord
	case FormatExcel:
		return func(path string) (*Result, error) {
			return extractExcel(path, ext)
		}
	case FormatCSV:
		return extractCSV
	default:
		return extractText
	}
}

// ProcessFile selects the extractor for rec.OriginalName, runs it against
// rec.Path and merges the common metadata fields into the result.
func ProcessFile(rec FileRecord) (*Result, error) {
	format, err := FormatOf(rec.OriginalName)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(rec.OriginalName))
	res, err := extractorFor(format, ext)(rec.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to process %s: %w: %w", format, ErrExtractionFailed, err)
	}

	if res.Metadata == nil {
		res.Metadata = map[string]any{}
	}
	res.Metadata["filename"] = rec.Filename
	res.Metadata["originalName"] = rec.OriginalName
	res.Metadata["fileType"] = strings.TrimPrefix(ext, ".")
	res.Metadata["fileSize"] = rec.Size
	return res, nil
}

// extOf returns the extension of path without its leading dot.
func extOf(path string) string {
	return strings.TrimPrefix(filepath.Ext(path), ".")
}
