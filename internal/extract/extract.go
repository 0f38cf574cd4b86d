// Package extract turns uploaded files into the inputs of the comparison
// core: lines of text, styled paragraphs and tabular datasets.
package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"doccompare/internal/domain"
)

// DocumentType resolves the document type of name from its extension.
func DocumentType(name string) (domain.FileType, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	ft, ok := domain.DocumentExtensions[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFileType, filepath.Ext(name))
	}
	return ft, nil
}

// SpreadsheetType resolves the spreadsheet type of name from its extension.
func SpreadsheetType(name string) (domain.FileType, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	ft, ok := domain.SpreadsheetExtensions[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFileType, filepath.Ext(name))
	}
	return ft, nil
}

// Document is an extracted text document. Paragraphs is nil unless the
// source was DOCX.
type Document struct {
	Type       domain.FileType
	Lines      []string
	Paragraphs []domain.Paragraph
}

// ReadDocument extracts the document named name.
func ReadDocument(name string, data []byte) (Document, error) {
	ft, err := DocumentType(name)
	if err != nil {
		return Document{}, err
	}
	switch ft {
	case domain.FileTypeTXT:
		text, err := decodeText(data)
		if err != nil {
			return Document{}, fmt.Errorf("%w: %s: %v", domain.ErrExtractionFailed, name, err)
		}
		return Document{Type: ft, Lines: SplitLines(text)}, nil
	case domain.FileTypeDOCX:
		paras, err := Paragraphs(data)
		if err != nil {
			return Document{}, err
		}
		texts := make([]string, len(paras))
		for i, p := range paras {
			texts[i] = p.Text
		}
		return Document{Type: ft, Lines: SplitLines(strings.Join(texts, "\n")), Paragraphs: paras}, nil
	default:
		// No PDF text extractor is wired in.
		return Document{}, fmt.Errorf("%w: %s text extraction is not available", domain.ErrUnsupportedFileType, ft)
	}
}

// decodeText decodes plain text. A UTF-8 or UTF-16 byte order mark selects
// the encoding and is dropped; without one the text must be UTF-8.
func decodeText(data []byte) (string, error) {
	out, _, err := transform.Bytes(unicode.BOMOverride(encoding.Nop.NewDecoder()), data)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(out) {
		return "", errors.New("not valid UTF-8")
	}
	return string(out), nil
}

// Lines returns the lines of text in the document named name.
func Lines(name string, data []byte) ([]string, error) {
	doc, err := ReadDocument(name, data)
	if err != nil {
		return nil, err
	}
	return doc.Lines, nil
}

// SplitLines splits s at every line boundary recognised by Unicode-aware
// line splitting: \n, \r\n, \r, \v, \f, \x1c-\x1e, U+0085, U+2028 and
// U+2029. A trailing boundary does not produce an empty final line.
func SplitLines(s string) []string {
	lines := []string{}
	start := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !isLineBreak(r) {
			i += size
			continue
		}
		lines = append(lines, s[start:i])
		i += size
		if r == '\r' && i < len(s) && s[i] == '\n' {
			i++
		}
		start = i
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', 0x1c, 0x1d, 0x1e, 0x85, 0x2028, 0x2029:
		return true
	}
	return false
}
