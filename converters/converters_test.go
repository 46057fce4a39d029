package converters

import (
	"archive/zip"
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/friendsonlinesolution/file-converter-backend1/models"
)

func makeDOCX(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var body bytes.Buffer
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:pPr><w:tabs><w:tab w:val="left" w:pos="720"/></w:tabs></w:pPr><w:r><w:rPr><w:b/></w:rPr><w:t>`)
		body.WriteString(p)
		body.WriteString(`</w:t></w:r></w:p>`)
	}
	doc := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body.String() + `</w:body></w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(doc))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func makeJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 100, G: 150, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func makePDF(t *testing.T, text string) []byte {
	t.Helper()
	doc := fpdf.New("P", "pt", "A4", "")
	doc.AddPage()
	doc.SetFont("Helvetica", "", 12)
	doc.Text(50, 100, text)
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

func writeUpload(t *testing.T, name string, data []byte) models.UploadedFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return models.UploadedFile{Path: path, OriginalName: name, SizeBytes: int64(len(data))}
}

func TestExtractDOCXText(t *testing.T) {
	text, err := ExtractDOCXText(makeDOCX(t, "Quarterly report", "Revenue &amp; costs"))
	require.NoError(t, err)
	assert.Equal(t, "Quarterly report\nRevenue & costs", text)
}

func TestExtractDOCXTextRejectsNonZip(t *testing.T) {
	_, err := ExtractDOCXText([]byte("plain text"))
	assert.Error(t, err)

	legacy := append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, make([]byte, 64)...)
	_, err = ExtractDOCXText(legacy)
	assert.ErrorIs(t, err, ErrLegacyDoc)
}

func TestExtractDOCXTextMissingDocument(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = ExtractDOCXText(buf.Bytes())
	assert.ErrorContains(t, err, "word/document.xml not found")
}

func TestBuildDOCXRoundTrip(t *testing.T) {
	data, err := BuildDOCX("first line\nsecond <line>")
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"[Content_Types].xml", "_rels/.rels", "word/document.xml"}, names)

	text, err := ExtractDOCXText(data)
	require.NoError(t, err)
	assert.Equal(t, "first line\nsecond <line>", text)
}

func TestRenderTextPDF(t *testing.T) {
	out, err := RenderTextPDF("Hello from a Word document")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))

	text, err := ExtractPDFText(out)
	require.NoError(t, err)
	assert.Contains(t, text, "Hello from a Word document")
}

func TestRenderTextPDFRejectsUnencodableText(t *testing.T) {
	for _, text := range []string{"Привет мир", "你好", "café ✓"} {
		_, err := RenderTextPDF(text)
		assert.Error(t, err, text)
	}

	_, err := RenderTextPDF("café crème, 20€")
	assert.NoError(t, err)
}

func TestExtractPDFText(t *testing.T) {
	text, err := ExtractPDFText(makePDF(t, "Invoice"))
	require.NoError(t, err)
	assert.Contains(t, text, "Invoice")
}

func TestExtractPDFTextInvalid(t *testing.T) {
	_, err := ExtractPDFText([]byte("%PDF-1.4 truncated"))
	assert.Error(t, err)
}

func TestJPEGToPDF(t *testing.T) {
	out, err := JPEGToPDF(makeJPEG(t, 320, 200))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Contains(t, string(out), "/DCTDecode")
	assert.Contains(t, string(out), "/MediaBox [0 0 320.00 200.00]")
}

func TestJPEGToPDFScalesOversizedImages(t *testing.T) {
	out, err := JPEGToPDF(makeJPEG(t, 28800, 20))
	require.NoError(t, err)
	assert.Contains(t, string(out), "/MediaBox [0 0 14400.00 10.00]")
}

func TestJPEGToPDFRejectsOtherFormats(t *testing.T) {
	_, err := JPEGToPDF([]byte("not an image"))
	assert.Error(t, err)
}

func TestConverterEnabled(t *testing.T) {
	c := New(Options{})
	assert.True(t, c.Enabled(models.WordToPDF))
	assert.True(t, c.Enabled(models.PDFToWord))
	assert.True(t, c.Enabled(models.JPEGToPDF))
	assert.False(t, c.Enabled(models.PDFToJPEG))
	assert.False(t, c.Enabled(models.ConversionType("bogus")))

	assert.True(t, New(Options{PDFToJPEGEnabled: true}).Enabled(models.PDFToJPEG))
}

func TestConverterConvert(t *testing.T) {
	c := New(Options{})
	ctx := context.Background()

	tests := []struct {
		name     string
		ct       models.ConversionType
		upload   string
		data     []byte
		wantMime string
		wantName string
	}{
		{"word to pdf", models.WordToPDF, "report.docx", makeDOCX(t, "Hello"), models.MimePDF, "report.pdf"},
		{"pdf to word", models.PDFToWord, "scan.pdf", makePDF(t, "Hello"), models.MimeDOCX, "scan.docx"},
		{"jpeg to pdf", models.JPEGToPDF, "photo.jpg", makeJPEG(t, 64, 48), models.MimePDF, "photo.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := c.Convert(ctx, models.ConversionRequest{
				File: writeUpload(t, tt.upload, tt.data),
				Type: tt.ct,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantMime, res.MimeType)
			assert.Equal(t, tt.wantName, res.Filename)
			assert.NotEmpty(t, res.Data)
		})
	}
}

func TestConverterPDFToJPEGDisabled(t *testing.T) {
	c := New(Options{})
	_, err := c.Convert(context.Background(), models.ConversionRequest{
		File: models.UploadedFile{Path: "/does/not/exist.pdf", OriginalName: "scan.pdf"},
		Type: models.PDFToJPEG,
	})
	assert.ErrorIs(t, err, models.ErrFeatureDisabled)
}

func TestConverterCodecFailure(t *testing.T) {
	c := New(Options{})
	_, err := c.Convert(context.Background(), models.ConversionRequest{
		File: writeUpload(t, "broken.docx", []byte("this is not a zip")),
		Type: models.WordToPDF,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrConversionFailed)

	var ce *models.ConversionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, models.WordToPDF, ce.Type)
}

func TestConverterWordToPDFNonLatinText(t *testing.T) {
	_, err := New(Options{}).Convert(context.Background(), models.ConversionRequest{
		File: writeUpload(t, "letter.docx", makeDOCX(t, "Привет мир")),
		Type: models.WordToPDF,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrConversionFailed)
}

func TestExtractDOCXTextStrictNamespace(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://purl.oclc.org/ooxml/wordprocessingml/main"><w:body>
<w:p><w:r><w:t>Strict body</w:t></w:r></w:p></w:body></w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(doc))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	text, err := ExtractDOCXText(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "Strict body", text)
}

func TestConverterUnknownType(t *testing.T) {
	_, err := New(Options{}).Convert(context.Background(), models.ConversionRequest{Type: "pdf-to-gif"})
	assert.ErrorIs(t, err, models.ErrInvalidFormat)
}

func TestLegacyDocWithoutLibreOffice(t *testing.T) {
	_, err := LegacyDocToDOCX(context.Background(), "", []byte{0xD0, 0xCF})
	assert.ErrorIs(t, err, ErrLegacyDoc)
}

func TestFindSofficePrefersConfigured(t *testing.T) {
	assert.Equal(t, "/custom/soffice", FindSoffice("/custom/soffice"))
}
