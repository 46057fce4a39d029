package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/friendsonlinesolution/file-converter-backend1/models"
	"github.com/friendsonlinesolution/file-converter-backend1/storage"
	"github.com/friendsonlinesolution/file-converter-backend1/workers"
)

// formOverhead is the room left for multipart boundaries and the
// conversionType field on top of the file itself.
const formOverhead = 64 << 10

// Dispatcher runs a conversion, normally on the worker pool.
type Dispatcher interface {
	Submit(ctx context.Context, id string, req models.ConversionRequest) (*models.ConversionResult, error)
}

// FeatureGate reports which conversion types are switched on.
type FeatureGate interface {
	Enabled(ct models.ConversionType) bool
}

type ConversionHandler struct {
	uploads        *storage.UploadDir
	dispatcher     Dispatcher
	gate           FeatureGate
	maxUploadBytes int64
}

func NewConversionHandler(uploads *storage.UploadDir, dispatcher Dispatcher, gate FeatureGate, maxUploadBytes int64) *ConversionHandler {
	return &ConversionHandler{
		uploads:        uploads,
		dispatcher:     dispatcher,
		gate:           gate,
		maxUploadBytes: maxUploadBytes,
	}
}

// MaxBodyBytes is the request body cap the transport layer should enforce.
func (h *ConversionHandler) MaxBodyBytes() int64 { return h.maxUploadBytes + formOverhead }

// HandleConvert serves POST /api/convert.
func (h *ConversionHandler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := zerolog.Ctx(ctx)

	reqID := middleware.GetReqID(ctx)
	if reqID == "" {
		reqID = uuid.NewString()
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxBodyBytes())
	// Keep the whole form in memory so the upload below is the only temp file.
	if err := r.ParseMultipartForm(h.MaxBodyBytes()); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, log, "", models.ErrUploadTooLarge)
			return
		}
		h.writeError(w, log, "", fmt.Errorf("%w: %v", models.ErrMissingFile, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, log, "", models.ErrMissingFile)
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadBytes {
		h.writeError(w, log, "", models.ErrUploadTooLarge)
		return
	}

	conversionType := r.FormValue("conversionType")
	log.Info().
		Str("file", header.Filename).
		Int64("size", header.Size).
		Str("conversion_type", conversionType).
		Msg("received file")

	upload, err := h.uploads.Save(file, header.Filename)
	if err != nil {
		log.Error().Err(err).Msg("failed to store upload")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	defer h.cleanup(log, upload.Path)

	ct, err := models.ParseConversionType(conversionType)
	if err != nil {
		h.writeError(w, log, "", err)
		return
	}
	if err := models.ValidateExtension(upload.OriginalName, ct); err != nil {
		h.writeError(w, log, ct, err)
		return
	}
	if !h.gate.Enabled(ct) {
		h.writeError(w, log, ct, models.ErrFeatureDisabled)
		return
	}

	result, err := h.dispatcher.Submit(ctx, reqID, models.ConversionRequest{File: upload, Type: ct})
	if err != nil {
		h.writeError(w, log, ct, err)
		return
	}

	log.Info().Str("filename", result.Filename).Int("bytes", len(result.Data)).Msg("conversion successful, sending file")

	w.Header().Set("Content-Type", result.MimeType)
	w.Header().Set("Content-Disposition", contentDisposition(result.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Data); err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}

// HandleHealth serves GET /health.
func (h *ConversionHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *ConversionHandler) cleanup(log *zerolog.Logger, path string) {
	if err := h.uploads.Remove(path); err != nil {
		log.Error().Err(err).Str("path", path).Msg("failed to delete temporary file")
		return
	}
	log.Debug().Str("path", path).Msg("temporary file deleted")
}

func (h *ConversionHandler) writeError(w http.ResponseWriter, log *zerolog.Logger, ct models.ConversionType, err error) {
	status, msg := statusFor(ct, err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Int("status", status).Msg("conversion failed")
	} else {
		log.Info().Err(err).Int("status", status).Msg("request rejected")
	}
	http.Error(w, msg, status)
}

// statusFor maps the error taxonomy onto an HTTP status and response body.
func statusFor(ct models.ConversionType, err error) (int, string) {
	var formatErr *models.FormatError
	switch {
	case errors.Is(err, models.ErrUploadTooLarge):
		return http.StatusRequestEntityTooLarge, "File too large"
	case errors.Is(err, models.ErrMissingFile):
		return http.StatusBadRequest, "No file uploaded"
	case errors.As(err, &formatErr):
		return http.StatusBadRequest, formatErr.Error()
	case errors.Is(err, models.ErrInvalidFormat):
		return http.StatusBadRequest, "Invalid conversion type"
	case errors.Is(err, models.ErrFeatureDisabled):
		return http.StatusBadRequest, fmt.Sprintf("%s conversion is currently disabled", ct.Label())
	case errors.Is(err, workers.ErrPoolStopped):
		return http.StatusServiceUnavailable, "Server is shutting down"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "Conversion cancelled"
	default:
		return http.StatusInternalServerError, "Conversion error: " + err.Error()
	}
}

// contentDisposition quotes name for an attachment header, adding an RFC 5987
// filename* parameter when the name is not plain ASCII.
func contentDisposition(name string) string {
	var b strings.Builder
	ascii := true
	for _, r := range name {
		switch {
		case r == '"' || r == '\\' || r < 0x20 || r == 0x7f:
			b.WriteByte('_')
		case r > 0x7e:
			ascii = false
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	header := fmt.Sprintf("attachment; filename=%q", b.String())
	if !ascii {
		header += "; filename*=UTF-8''" + encodeExtValue(name)
	}
	return header
}

// encodeExtValue percent-encodes every byte outside RFC 5987 attr-char.
func encodeExtValue(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isAttrChar(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isAttrChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	return strings.IndexByte("!#$&+-.^_`|~", c) >= 0
}
