package converters

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"

	"github.com/gen2brain/go-fitz"
)

// RasterizePDF renders up to maxPages pages at dpi and stacks them top to
// bottom into one JPEG.
func RasterizePDF(ctx context.Context, data []byte, dpi float64, maxPages, quality int) ([]byte, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	pageCount := doc.NumPage()
	if pageCount == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}
	if maxPages > 0 && pageCount > maxPages {
		pageCount = maxPages
	}

	pages := make([]*image.RGBA, 0, pageCount)
	width, height := 0, 0
	for n := 0; n < pageCount; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := doc.ImageDPI(n, dpi)
		if err != nil {
			return nil, fmt.Errorf("rendering page %d: %w", n+1, err)
		}
		b := img.Bounds()
		width = max(width, b.Dx())
		height += b.Dy()
		pages = append(pages, img)
	}

	var out image.Image = pages[0]
	if len(pages) > 1 {
		sheet := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.Draw(sheet, sheet.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
		y := 0
		for _, p := range pages {
			b := p.Bounds()
			draw.Draw(sheet, image.Rect(0, y, b.Dx(), y+b.Dy()), p, b.Min, draw.Over)
			y += b.Dy()
		}
		out = sheet
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}
	return buf.Bytes(), nil
}
