package models

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// ConversionType selects the source/target format pair of a request.
type ConversionType string

const (
	WordToPDF ConversionType = "word-to-pdf"
	PDFToWord ConversionType = "pdf-to-word"
	JPEGToPDF ConversionType = "jpeg-to-pdf"
	PDFToJPEG ConversionType = "pdf-to-jpeg"
)

const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeJPEG = "image/jpeg"
)

// AllConversionTypes returns every supported conversion type in a stable order.
func AllConversionTypes() []ConversionType {
	return []ConversionType{WordToPDF, PDFToWord, JPEGToPDF, PDFToJPEG}
}

// ParseConversionType maps the form value onto the closed set of types.
func ParseConversionType(s string) (ConversionType, error) {
	ct := ConversionType(strings.TrimSpace(s))
	switch ct {
	case WordToPDF, PDFToWord, JPEGToPDF, PDFToJPEG:
		return ct, nil
	default:
		return "", fmt.Errorf("%w: invalid conversion type %q", ErrInvalidFormat, s)
	}
}

// SourceExtensions lists the accepted upload extensions, lower case with dot.
func (ct ConversionType) SourceExtensions() []string {
	switch ct {
	case WordToPDF:
		return []string{".doc", ".docx"}
	case PDFToWord:
		return []string{".pdf"}
	case JPEGToPDF:
		return []string{".jpg", ".jpeg"}
	case PDFToJPEG:
		return []string{".pdf"}
	default:
		return nil
	}
}

// Target returns the MIME type and file extension of the produced document.
func (ct ConversionType) Target() (mimeType, ext string) {
	switch ct {
	case WordToPDF, JPEGToPDF:
		return MimePDF, ".pdf"
	case PDFToWord:
		return MimeDOCX, ".docx"
	case PDFToJPEG:
		return MimeJPEG, ".jpg"
	default:
		return "application/octet-stream", ""
	}
}

// Label is the human readable name used in messages.
func (ct ConversionType) Label() string {
	switch ct {
	case WordToPDF:
		return "Word to PDF"
	case PDFToWord:
		return "PDF to Word"
	case JPEGToPDF:
		return "JPEG to PDF"
	case PDFToJPEG:
		return "PDF to JPEG"
	default:
		return string(ct)
	}
}

// ValidateExtension checks filename's extension against the set accepted for ct.
// The comparison is case-insensitive.
func ValidateExtension(filename string, ct ConversionType) error {
	allowed := ct.SourceExtensions()
	if len(allowed) == 0 {
		return fmt.Errorf("%w: invalid conversion type %q", ErrInvalidFormat, string(ct))
	}
	ext := strings.ToLower(filepath.Ext(filename))
	for _, a := range allowed {
		if ext == a {
			return nil
		}
	}
	return &FormatError{Ext: ext, Type: ct, Allowed: allowed}
}

// DerivedFilename replaces the last extension of the upload's base name with
// the target extension of ct.
func DerivedFilename(originalName string, ct ConversionType) string {
	_, ext := ct.Target()
	base := filepath.Base(strings.ReplaceAll(originalName, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "converted"
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" {
		base = "converted"
	}
	return base + ext
}

// UploadedFile is a request-scoped temporary copy of the client's upload.
type UploadedFile struct {
	Path         string
	OriginalName string
	SizeBytes    int64
}

type ConversionRequest struct {
	File UploadedFile
	Type ConversionType
}

type ConversionResult struct {
	Data     []byte
	MimeType string
	Filename string
}

// Job is one unit of work for the worker pool.
type Job struct {
	ID         string
	Ctx        context.Context
	Request    ConversionRequest
	ResultChan chan JobResult
}

type JobResult struct {
	Result *ConversionResult
	Error  error
}
