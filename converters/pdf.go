package converters

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/ledongthuc/pdf"
	"golang.org/x/text/encoding/charmap"
)

const (
	pageMargin = 50.0
	fontFamily = "Helvetica"
	fontSize   = 12.0
	lineHeight = 14.0

	// Largest page side most readers accept without a user unit.
	maxPagePoints = 14400.0
)

// ExtractPDFText returns the text layer of every page, pages separated by a
// blank line. Image-only PDFs yield an empty string.
func ExtractPDFText(data []byte) (text string, err error) {
	// ledongthuc/pdf panics on some malformed objects.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("reading PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}

	var parts []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("reading PDF page %d: %w", i, err)
		}
		if trimmed := strings.TrimSpace(pageText); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

// RenderTextPDF draws text onto one A4 page in 12pt Helvetica. Text that does
// not fit on the page is cut off. Characters outside Windows-1252, the
// encoding of the core fonts, are an error.
func RenderTextPDF(text string) ([]byte, error) {
	encoded, err := winAnsi(text)
	if err != nil {
		return nil, err
	}

	doc := fpdf.New("P", "pt", "A4", "")
	doc.SetMargins(pageMargin, pageMargin, pageMargin)
	doc.SetAutoPageBreak(false, pageMargin)
	doc.AddPage()
	doc.SetFont(fontFamily, "", fontSize)

	doc.MultiCell(0, lineHeight, encoded, "", "L", false)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// winAnsi re-encodes text for the core fonts.
func winAnsi(text string) (string, error) {
	out := make([]byte, 0, len(text))
	for i, r := range text {
		b, ok := charmap.Windows1252.EncodeRune(r)
		if !ok {
			return "", fmt.Errorf("cannot encode %q (offset %d) in %s", r, i, fontFamily)
		}
		out = append(out, b)
	}
	return string(out), nil
}

// JPEGToPDF embeds a JPEG on a single page of the same size, one pixel per
// point, scaled down if a side exceeds the PDF page limit.
func JPEGToPDF(data []byte) ([]byte, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	if format != "jpeg" {
		return nil, fmt.Errorf("expected a JPEG image, got %s", format)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, fmt.Errorf("image has no pixels")
	}

	w, h := float64(cfg.Width), float64(cfg.Height)
	if scale := maxPagePoints / max(w, h); scale < 1 {
		w, h = w*scale, h*scale
	}

	doc := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: w, Ht: h},
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()

	opts := fpdf.ImageOptions{ImageType: "JPG"}
	doc.RegisterImageOptionsReader("upload", opts, bytes.NewReader(data))
	doc.ImageOptions("upload", 0, 0, w, h, false, opts, 0, "")

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing PDF: %w", err)
	}
	return buf.Bytes(), nil
}
