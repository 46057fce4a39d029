package converters

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/friendsonlinesolution/file-converter-backend1/models"
)

// Options tunes the codecs. Zero values fall back to the defaults below.
type Options struct {
	PDFToJPEGEnabled bool
	RasterDPI        float64
	RasterPages      int
	JPEGQuality      int
	SofficePath      string
}

const (
	defaultRasterDPI   = 150
	defaultRasterPages = 1
	defaultJPEGQuality = 90
)

// Converter dispatches a request to the codec for its conversion type.
type Converter struct {
	opts Options
}

func New(opts Options) *Converter {
	if opts.RasterDPI <= 0 {
		opts.RasterDPI = defaultRasterDPI
	}
	if opts.RasterPages <= 0 {
		opts.RasterPages = defaultRasterPages
	}
	if opts.JPEGQuality <= 0 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = defaultJPEGQuality
	}
	return &Converter{opts: opts}
}

// Enabled reports whether ct may run under the current configuration.
func (c *Converter) Enabled(ct models.ConversionType) bool {
	switch ct {
	case models.WordToPDF, models.PDFToWord, models.JPEGToPDF:
		return true
	case models.PDFToJPEG:
		return c.opts.PDFToJPEGEnabled
	default:
		return false
	}
}

// Convert reads the uploaded file and produces the target document. Codec
// errors are returned as *models.ConversionError.
func (c *Converter) Convert(ctx context.Context, req models.ConversionRequest) (*models.ConversionResult, error) {
	if _, err := models.ParseConversionType(string(req.Type)); err != nil {
		return nil, err
	}
	if !c.Enabled(req.Type) {
		return nil, fmt.Errorf("%w: %s", models.ErrFeatureDisabled, req.Type)
	}

	data, err := os.ReadFile(req.File.Path)
	if err != nil {
		return nil, &models.ConversionError{Type: req.Type, Err: fmt.Errorf("reading upload: %w", err)}
	}

	log := zerolog.Ctx(ctx)
	log.Info().Str("type", string(req.Type)).Int("bytes", len(data)).Msg("starting conversion")

	var out []byte
	switch req.Type {
	case models.WordToPDF:
		out, err = c.wordToPDF(ctx, data)
	case models.PDFToWord:
		out, err = pdfToWord(data)
	case models.JPEGToPDF:
		out, err = JPEGToPDF(data)
	case models.PDFToJPEG:
		out, err = RasterizePDF(ctx, data, c.opts.RasterDPI, c.opts.RasterPages, c.opts.JPEGQuality)
	default:
		return nil, fmt.Errorf("%w: invalid conversion type %q", models.ErrInvalidFormat, req.Type)
	}
	if err != nil {
		return nil, &models.ConversionError{Type: req.Type, Err: err}
	}

	mime, _ := req.Type.Target()
	log.Info().Str("type", string(req.Type)).Int("bytes", len(out)).Msg("conversion finished")

	return &models.ConversionResult{
		Data:     out,
		MimeType: mime,
		Filename: models.DerivedFilename(req.File.OriginalName, req.Type),
	}, nil
}

func (c *Converter) wordToPDF(ctx context.Context, data []byte) ([]byte, error) {
	text, err := ExtractDOCXText(data)
	if errors.Is(err, ErrLegacyDoc) {
		var upgraded []byte
		upgraded, err = LegacyDocToDOCX(ctx, FindSoffice(c.opts.SofficePath), data)
		if err != nil {
			return nil, err
		}
		text, err = ExtractDOCXText(upgraded)
	}
	if err != nil {
		return nil, err
	}
	return RenderTextPDF(text)
}

func pdfToWord(data []byte) ([]byte, error) {
	text, err := ExtractPDFText(data)
	if err != nil {
		return nil, err
	}
	return BuildDOCX(text)
}
