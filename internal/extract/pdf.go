package extract

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

func extractPDF(path string) (res *Result, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	// ledongthuc/pdf panics on some malformed object streams.
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("parse pdf: %v", r)
		}
	}()

	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse pdf: %w", err)
	}

	numPages := pdfReader.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		p := pdfReader.Page(i)
		if p.V.IsNull() {
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, content)
	}

	return &Result{
		Text: strings.Join(pages, "\n\n"),
		Metadata: map[string]any{
			"pageCount": numPages,
			"info":      documentInfo(pdfReader.Trailer().Key("Info")),
		},
	}, nil
}

// documentInfo flattens the /Info dictionary into JSON-friendly values.
func documentInfo(v pdf.Value) map[string]any {
	info := map[string]any{}
	if v.Kind() != pdf.Dict {
		return info
	}
	for _, key := range v.Keys() {
		val := v.Key(key)
		switch val.Kind() {
		case pdf.String:
			info[key] = val.Text()
		case pdf.Name:
			info[key] = val.Name()
		case pdf.Integer:
			info[key] = val.Int64()
		case pdf.Real:
			info[key] = val.Float64()
		case pdf.Bool:
			info[key] = val.Bool()
		case pdf.Null:
		default:
			info[key] = val.String()
		}
	}
	return info
}
