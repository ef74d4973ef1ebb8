package extract

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

func extractText(path string) (*Result, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read text file: %w", err)
	}
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("decode text file: invalid UTF-8")
	}

	content := string(raw)
	return &Result{
		Text: content,
		Metadata: map[string]any{
			// Counts newline-separated segments, so a trailing newline adds one.
			"lineCount": strings.Count(content, "\n") + 1,
			"format":    "txt",
		},
	}, nil
}
