package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Format identifies a supported document format.
type Format string

// Supported document formats.
const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// ErrUnsupportedFormat indicates the document format cannot be extracted.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// ErrNoText indicates extraction succeeded mechanically but produced no
// usable text.
var ErrNoText = errors.New("document contains no extractable text")

// TextExtractor converts an uploaded document into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, format Format) (string, error)
}

// FormatFromFilename maps a filename extension onto a Format.
func FormatFromFilename(filename string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(filename))
	switch {
	case strings.HasSuffix(name, ".pdf"):
		return FormatPDF, nil
	case strings.HasSuffix(name, ".docx"):
		return FormatDOCX, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// DocumentExtractor extracts text from PDF and DOCX payloads.
type DocumentExtractor struct {
	logger zerolog.Logger
}

// NewDocumentExtractor constructs the default extractor.
func NewDocumentExtractor(logger zerolog.Logger) *DocumentExtractor {
	return &DocumentExtractor{
		logger: logger.With().Str("component", "extractor").Logger(),
	}
}

// Extract dispatches on the declared format and returns plain text. Empty or
// whitespace-only output is reported as ErrNoText so callers never forward a
// blank document to the grading provider.
func (e *DocumentExtractor) Extract(ctx context.Context, data []byte, format Format) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var (
		text string
		err  error
	)

	switch format {
	case FormatPDF:
		text, err = extractPDF(data)
	case FormatDOCX:
		text, err = extractDOCX(data)
	default:
		return "", ErrUnsupportedFormat
	}

	if err != nil {
		e.logger.Error().Err(err).Str("format", string(format)).Msg("text extraction failed")
		return "", fmt.Errorf("extract %s: %w", format, err)
	}

	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}

	return text, nil
}
