package decode

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

// Text detects the character encoding of raw extracted bytes and decodes
// them to a UTF-8 string. ASCII-compatible input passes through unchanged.
func Text(raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	encoding, name, _ := charset.DetermineEncoding(raw, "")
	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(raw), encoding.NewDecoder()))
	if err != nil {
		return "", fmt.Errorf("failed to decode %s text: %w", name, err)
	}
	return string(decoded), nil
}

// Pages splits decoded document text on the form-feed page marker and each
// page into lines. Line endings may be \n or \r\n.
func Pages(text string) [][]string {
	raw := strings.Split(text, "\f")
	pages := make([][]string, len(raw))
	for i, page := range raw {
		pages[i] = Lines(page)
	}
	return pages
}

// Lines splits one page of text into lines without trailing line endings.
func Lines(page string) []string {
	if page == "" {
		return nil
	}
	page = strings.TrimSuffix(page, "\n")
	lines := strings.Split(page, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// Document decodes raw bytes and splits them into per-page line sequences.
func Document(raw []byte) ([][]string, error) {
	text, err := Text(raw)
	if err != nil {
		return nil, err
	}
	return Pages(text), nil
}
