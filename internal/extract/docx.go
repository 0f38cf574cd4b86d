package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"doccompare/internal/domain"
)

const defaultStyleName = "Normal"

// stylesXML mirrors the parts of word/styles.xml needed to name styles.
type stylesXML struct {
	XMLName xml.Name      `xml:"styles"`
	Styles  []styleDefXML `xml:"style"`
}

type styleDefXML struct {
	Type    string `xml:"type,attr"`
	StyleID string `xml:"styleId,attr"`
	Default string `xml:"default,attr"`
	Name    struct {
		Val string `xml:"val,attr"`
	} `xml:"name"`
}

// builtinNames maps the lower-case names Word stores for built-in styles
// to the names shown in its UI.
var builtinNames = map[string]string{
	"caption":       "Caption",
	"footer":        "Footer",
	"header":        "Header",
	"heading 1":     "Heading 1",
	"heading 2":     "Heading 2",
	"heading 3":     "Heading 3",
	"heading 4":     "Heading 4",
	"heading 5":     "Heading 5",
	"heading 6":     "Heading 6",
	"heading 7":     "Heading 7",
	"heading 8":     "Heading 8",
	"heading 9":     "Heading 9",
	"toc 1":         "TOC 1",
	"toc 2":         "TOC 2",
	"toc 3":         "TOC 3",
	"footnote text": "Footnote Text",
}

type styleTable struct {
	names       map[string]string
	defaultName string
}

func (s styleTable) resolve(id string) string {
	if name, ok := s.names[id]; ok && id != "" {
		return name
	}
	return s.defaultName
}

// Paragraphs returns the top-level body paragraphs of a DOCX document with
// their resolved style names. Paragraphs inside tables are not included.
func Paragraphs(data []byte) ([]domain.Paragraph, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a docx archive: %v", domain.ErrExtractionFailed, err)
	}

	doc, err := readPart(zr, "word/document.xml")
	if err != nil {
		return nil, err
	}
	styles, err := loadStyles(zr)
	if err != nil {
		return nil, err
	}

	paras, err := parseBody(doc, styles)
	if err != nil {
		return nil, fmt.Errorf("%w: parse document.xml: %v", domain.ErrExtractionFailed, err)
	}
	return paras, nil
}

func readPart(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %v", domain.ErrExtractionFailed, name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", domain.ErrExtractionFailed, name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%w: %s missing from archive", domain.ErrExtractionFailed, name)
}

// loadStyles reads word/styles.xml. A document without one uses "Normal"
// for every paragraph.
func loadStyles(zr *zip.Reader) (styleTable, error) {
	table := styleTable{names: map[string]string{}, defaultName: defaultStyleName}
	data, err := readPart(zr, "word/styles.xml")
	if err != nil {
		return table, nil
	}
	var sx stylesXML
	if err := xml.Unmarshal(data, &sx); err != nil {
		return table, fmt.Errorf("%w: parse styles.xml: %v", domain.ErrExtractionFailed, err)
	}
	for _, s := range sx.Styles {
		if s.Type != "" && s.Type != "paragraph" {
			continue
		}
		name := s.Name.Val
		if ui, ok := builtinNames[strings.ToLower(name)]; ok {
			name = ui
		}
		table.names[s.StyleID] = name
		if s.Default == "1" || s.Default == "true" {
			table.defaultName = name
		}
	}
	return table, nil
}

// parseBody streams document.xml so paragraph order is preserved and
// nested content (tables, text boxes) can be skipped.
func parseBody(data []byte, styles styleTable) ([]domain.Paragraph, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	paras := []domain.Paragraph{}
	inBody := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return paras, nil
		}
		if err != nil {
			return nil, err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if !inBody {
				inBody = el.Name.Local == "body"
				continue
			}
			if el.Name.Local != "p" {
				if err := dec.Skip(); err != nil {
					return nil, err
				}
				continue
			}
			p, err := readParagraph(dec, styles)
			if err != nil {
				return nil, err
			}
			paras = append(paras, p)
		case xml.EndElement:
			if inBody && el.Name.Local == "body" {
				return paras, nil
			}
		}
	}
}

// readParagraph consumes a <w:p> element whose start tag was already read.
// Only runs that are direct children of the paragraph or of a hyperlink
// contribute text.
func readParagraph(dec *xml.Decoder, styles styleTable) (domain.Paragraph, error) {
	var (
		text    strings.Builder
		styleID string
		stack   = []string{"p"}
	)
	for {
		tok, err := dec.Token()
		if err != nil {
			return domain.Paragraph{}, err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			stack = append(stack, el.Name.Local)
			if len(stack) == 3 && stack[1] == "pPr" && el.Name.Local == "pStyle" {
				styleID = attr(el, "val")
				continue
			}
			if !inRun(stack) {
				continue
			}
			switch el.Name.Local {
			case "t":
				var s string
				if err := dec.DecodeElement(&s, &el); err != nil {
					return domain.Paragraph{}, err
				}
				text.WriteString(s)
				stack = stack[:len(stack)-1]
			case "tab":
				text.WriteByte('\t')
			case "br", "cr":
				if t := attr(el, "type"); t == "" || t == "textWrapping" {
					text.WriteByte('\n')
				}
			}
		case xml.EndElement:
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return domain.Paragraph{Text: text.String(), Style: styles.resolve(styleID)}, nil
			}
		}
	}
}

// inRun reports whether the innermost element is a direct child of a run
// that belongs to the paragraph itself.
func inRun(stack []string) bool {
	n := len(stack)
	switch {
	case n == 3:
		return stack[1] == "r"
	case n == 4:
		return stack[1] == "hyperlink" && stack[2] == "r"
	}
	return false
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
