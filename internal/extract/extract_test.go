package extract_test

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"doccompare/internal/domain"
	"doccompare/internal/extract"
)

func TestSplitLines(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"a", []string{"a"}},
		{"a\n", []string{"a"}},
		{"a\n\nb", []string{"a", "", "b"}},
		{"a\r\nb\rc", []string{"a", "b", "c"}},
		{"a\u2028b\x0cc", []string{"a", "b", "c"}},
		{"\n", []string{""}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extract.SplitLines(tt.in), "%q", tt.in)
	}
}

func TestLines_Text(t *testing.T) {
	got, err := extract.Lines("notes.TXT", []byte("\ufeffHello world\r\nFoo bar\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello world", "Foo bar"}, got)

	_, err = extract.Lines("bad.txt", []byte{'o', 'k', 0x80, 0x81})
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestLines_UTF16(t *testing.T) {
	// "Año\nb" as UTF-16LE behind a byte order mark.
	data := []byte{0xff, 0xfe, 'A', 0, 0xf1, 0, 'o', 0, '\n', 0, 'b', 0}
	got, err := extract.Lines("export.txt", data)
	require.NoError(t, err)
	assert.Equal(t, []string{"Año", "b"}, got)
}

func TestLines_Unsupported(t *testing.T) {
	_, err := extract.Lines("scan.pdf", []byte("%PDF-1.7"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)

	_, err = extract.Lines("image.png", nil)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

const stylesXML = `<?xml version="1.0" encoding="UTF-8"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>
  <w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/></w:style>
  <w:style w:type="paragraph" w:styleId="Title"><w:name w:val="Title"/></w:style>
  <w:style w:type="character" w:styleId="Strong"><w:name w:val="Strong"/></w:style>
</w:styles>`

const documentXML = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:pPr><w:pStyle w:val="Title"/><w:tabs><w:tab w:val="left" w:pos="720"/></w:tabs></w:pPr><w:r><w:t>Quarterly</w:t></w:r><w:r><w:t xml:space="preserve"> report</w:t></w:r></w:p>
    <w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:hyperlink><w:r><w:t>Linked</w:t></w:r></w:hyperlink><w:r><w:tab/><w:t>heading</w:t></w:r></w:p>
    <w:tbl><w:tr><w:tc><w:p><w:r><w:t>in a table</w:t></w:r></w:p></w:tc></w:tr></w:tbl>
    <w:p><w:r><w:rPr><w:rStyle w:val="Strong"/></w:rPr><w:t>Body</w:t><w:br/><w:t>text</w:t></w:r></w:p>
    <w:p/>
    <w:sectPr/>
  </w:body>
</w:document>`

func buildDocx(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestParagraphs(t *testing.T) {
	data := buildDocx(t, map[string]string{
		"word/document.xml": documentXML,
		"word/styles.xml":   stylesXML,
	})

	got, err := extract.Paragraphs(data)
	require.NoError(t, err)
	assert.Equal(t, []domain.Paragraph{
		{Text: "Quarterly report", Style: "Title"},
		{Text: "Linked\theading", Style: "Heading 1"},
		{Text: "Body\ntext", Style: "Normal"},
		{Text: "", Style: "Normal"},
	}, got)
}

func TestParagraphs_WithoutStyles(t *testing.T) {
	data := buildDocx(t, map[string]string{"word/document.xml": documentXML})
	got, err := extract.Paragraphs(data)
	require.NoError(t, err)
	for _, p := range got {
		assert.Equal(t, "Normal", p.Style)
	}
}

func TestParagraphs_Invalid(t *testing.T) {
	_, err := extract.Paragraphs([]byte("not a zip"))
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)

	_, err = extract.Paragraphs(buildDocx(t, map[string]string{"word/styles.xml": stylesXML}))
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestLines_Docx(t *testing.T) {
	data := buildDocx(t, map[string]string{"word/document.xml": documentXML})
	got, err := extract.Lines("report.docx", data)
	require.NoError(t, err)
	assert.Equal(t, []string{"Quarterly report", "Linked\theading", "Body", "text"}, got)
}

func buildWorkbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestReadDataset(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{nil, nil, nil},
		{"ID", " Product ", "", "ID", "Active"},
		{1, "Pen", 9.5, "x", true},
		{nil, nil, nil},
		{2, "100", nil, nil, false},
	})

	ds, err := extract.ReadDataset(buf, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "Product", "Unnamed: 2", "ID.1", "Active"}, ds.Columns)
	require.Len(t, ds.Records, 2)

	first := ds.Records[0]
	assert.Equal(t, domain.NumberValue(1), first.Get("ID"))
	assert.Equal(t, domain.StringValue("Pen"), first.Get("Product"))
	assert.Equal(t, domain.NumberValue(9.5), first.Get("Unnamed: 2"))
	assert.Equal(t, domain.BoolValue(true), first.Get("Active"))

	second := ds.Records[1]
	assert.Equal(t, domain.StringValue("100"), second.Get("Product"))
	assert.True(t, second.Get("Unnamed: 2").IsNull())
	assert.Equal(t, domain.BoolValue(false), second.Get("Active"))
}

func TestReadDataset_MissingSheet(t *testing.T) {
	buf := buildWorkbook(t, [][]any{{"ID"}, {1}})
	_, err := extract.ReadDataset(buf, "Nope")
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestReadDataset_EmptySheet(t *testing.T) {
	buf := buildWorkbook(t, nil)
	ds, err := extract.ReadDataset(buf, "Sheet1")
	require.NoError(t, err)
	assert.Empty(t, ds.Columns)
	assert.Empty(t, ds.Records)
}

func TestParseCell(t *testing.T) {
	assert.Equal(t, domain.NumberValue(-3.25), extract.ParseCell("-3.25"))
	assert.Equal(t, domain.NumberValue(1000), extract.ParseCell("1e3"))
	assert.Equal(t, domain.StringValue("Inf"), extract.ParseCell("Inf"))
	assert.Equal(t, domain.StringValue("0x10"), extract.ParseCell("0x10"))
	assert.Equal(t, domain.StringValue("-"), extract.ParseCell("-"))
	assert.Equal(t, domain.StringValue("true"), extract.ParseCell("true"))
	assert.True(t, extract.ParseCell("").IsNull())
}

func TestDocumentAndSpreadsheetType(t *testing.T) {
	ft, err := extract.DocumentType("a.DOCX")
	require.NoError(t, err)
	assert.Equal(t, domain.FileTypeDOCX, ft)

	ft, err = extract.SpreadsheetType("book.xlsm")
	require.NoError(t, err)
	assert.Equal(t, domain.FileTypeXLSX, ft)

	_, err = extract.SpreadsheetType("book.csv")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestReadDocument(t *testing.T) {
	doc, err := extract.ReadDocument("report.docx", buildDocx(t, map[string]string{
		"word/document.xml": documentXML,
		"word/styles.xml":   stylesXML,
	}))
	require.NoError(t, err)
	assert.Equal(t, domain.FileTypeDOCX, doc.Type)
	assert.Len(t, doc.Paragraphs, 4)
	assert.Equal(t, []string{"Quarterly report", "Linked\theading", "Body", "text"}, doc.Lines)

	doc, err = extract.ReadDocument("notes.txt", []byte("one\ntwo"))
	require.NoError(t, err)
	assert.Equal(t, domain.FileTypeTXT, doc.Type)
	assert.Nil(t, doc.Paragraphs)
}

func TestSheetNames(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	_, err := f.NewSheet("Feb")
	require.NoError(t, err)
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	names, err := extract.SheetNames(buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sheet1", "Feb"}, names)

	_, err = extract.SheetNames(bytes.NewReader([]byte("not a workbook")))
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}
