package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingFile is returned when the request carries no file part.
	ErrMissingFile = errors.New("no file uploaded")

	// ErrInvalidFormat covers an unknown conversion type or a wrong extension.
	ErrInvalidFormat = errors.New("invalid file format")

	// ErrConversionFailed wraps any codec error.
	ErrConversionFailed = errors.New("conversion failed")

	// ErrFeatureDisabled is returned for conversion paths switched off by configuration.
	ErrFeatureDisabled = errors.New("feature disabled")

	// ErrUploadTooLarge is returned when the body exceeds the upload limit.
	ErrUploadTooLarge = errors.New("file too large")
)

// FormatError reports an upload whose extension is not accepted for its
// conversion type.
type FormatError struct {
	Ext     string
	Type    ConversionType
	Allowed []string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("Invalid file format. Please upload a %s file.", strings.Join(e.Allowed, " or "))
}

func (e *FormatError) Unwrap() error { return ErrInvalidFormat }

// ConversionError carries a codec failure. It matches ErrConversionFailed
// and the underlying cause.
type ConversionError struct {
	Type ConversionType
	Err  error
}

func (e *ConversionError) Error() string { return e.Err.Error() }

func (e *ConversionError) Unwrap() []error { return []error{ErrConversionFailed, e.Err} }
