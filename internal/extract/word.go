package extract

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// extractWord reads the main document part of an OOXML container. Legacy
// binary .doc files are not zip archives and fail to open.
func extractWord(path string) (*Result, error) {
	doc, err := docx.ReadDocxFile(path)
	if err != nil {
		return nil, fmt.Errorf("open word document: %w", err)
	}
	defer doc.Close()

	text, err := parseDocumentXML(strings.NewReader(doc.Editable().GetContent()))
	if err != nil {
		return nil, fmt.Errorf("parse word document: %w", err)
	}

	return &Result{
		Text: text,
		Metadata: map[string]any{
			"format": extOf(path),
		},
	}, nil
}

func parseDocumentXML(r io.Reader) (string, error) {
	var (
		sb     strings.Builder
		inTabs bool // w:tabs holds tab stop definitions, not tab characters
	)
	decoder := xml.NewDecoder(r)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "t":
				var content struct {
					Text string `xml:",chardata"`
				}
				if err := decoder.DecodeElement(&content, &el); err != nil {
					return "", err
				}
				sb.WriteString(content.Text)
			case "tabs":
				inTabs = true
			case "tab":
				if !inTabs {
					sb.WriteString("\t")
				}
			case "br", "cr":
				sb.WriteString("\n")
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "tabs":
				inTabs = false
			case "p":
				sb.WriteString("\n")
			}
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
