package extract

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// extractCSV streams the file record by record. The first record names the
// fields; header names are only reported once a data row exists.
func extractCSV(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	// Bare quotes inside unquoted fields are kept as literal text.
	r.LazyQuotes = true

	var (
		fields []string
		lines  []string
	)
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		if fields == nil {
			fields = record
			continue
		}
		lines = append(lines, strings.Join(record, ", "))
	}

	headers := []string{}
	if len(lines) > 0 {
		headers = fields
	}

	var sb strings.Builder
	sb.WriteString(strings.Join(headers, ", "))
	sb.WriteString("\n")
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	return &Result{
		Text: sb.String(),
		Metadata: map[string]any{
			"headers":  headers,
			"rowCount": len(lines),
			"format":   "csv",
		},
	}, nil
}
