package services

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/resume-ranker/internal/apperr"
	"alfredoptarigan/resume-ranker/internal/logger"
	"alfredoptarigan/resume-ranker/internal/models"
)

// Format is a recognised document container.
type Format string

const (
	FormatUnknown Format = "unknown"
	FormatText    Format = "text"
	FormatPDF     Format = "pdf"
	FormatDOCX    Format = "docx"
	FormatArchive Format = "archive"
)

const docxMediaType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

var (
	pdfMagic = []byte("%PDF-")
	zipMagic = []byte("PK\x03\x04")
)

// SupportedExtensions lists the file extensions accepted for upload.
var SupportedExtensions = []string{".pdf", ".docx", ".txt", ".md", ".zip"}

// FormatExtractor pulls plain text out of one document format.
type FormatExtractor interface {
	Extract(data []byte) (string, error)
}

type TextExtractor interface {
	Detect(doc models.ResumeDocument) Format
	Extract(ctx context.Context, doc models.ResumeDocument) (string, error)
}

type textExtractor struct {
	extractors map[Format]FormatExtractor
	log        *zap.Logger
}

func NewTextExtractor(log *zap.Logger) TextExtractor {
	return &textExtractor{
		extractors: map[Format]FormatExtractor{
			FormatText: NewPlainTextParser(),
			FormatPDF:  NewPDFParser(),
			FormatDOCX: NewDOCXParser(),
		},
		log: logger.OrNop(log),
	}
}

func (e *textExtractor) Detect(doc models.ResumeDocument) Format {
	return DetectFormat(doc.Filename, doc.MediaType, doc.Data)
}

// Extract returns normalized text. Pre-extracted documents pass through.
func (e *textExtractor) Extract(ctx context.Context, doc models.ResumeDocument) (string, error) {
	if doc.Extracted {
		return CleanText(doc.Text), nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	format := e.Detect(doc)
	extractor, ok := e.extractors[format]
	if !ok {
		if format == FormatArchive {
			return "", apperr.New(apperr.CodeUnsupportedFormat, "nested archive is not a resume document")
		}
		return "", apperr.Newf(apperr.CodeUnsupportedFormat, "unsupported file type %q", displayType(doc))
	}

	text, err := extractor.Extract(doc.Data)
	if err != nil {
		e.log.Debug("extraction failed",
			zap.String("filename", doc.Filename),
			zap.String("format", string(format)),
			zap.Error(err))
		return "", apperr.Wrap(err, apperr.CodeExtractionFailure, fmt.Sprintf("failed to extract %s text", format))
	}

	text = CleanText(text)
	if text == "" {
		return "", apperr.Newf(apperr.CodeExtractionFailure, "no text content found in %s", format)
	}
	return text, nil
}

func displayType(doc models.ResumeDocument) string {
	if ext := doc.Ext(); ext != "" {
		return ext
	}
	if doc.MediaType != "" {
		return doc.MediaType
	}
	return "unknown"
}

// DetectFormat uses the declared extension first, then the declared media
// type, then the leading bytes. A present but unrecognised extension is unknown.
func DetectFormat(filename, mediaType string, data []byte) Format {
	doc := models.ResumeDocument{Filename: filename}
	switch doc.Ext() {
	case ".txt", ".text", ".md":
		return FormatText
	case ".pdf":
		return FormatPDF
	case ".docx":
		return FormatDOCX
	case ".zip":
		return FormatArchive
	case "":
	default:
		return FormatUnknown
	}

	if mt, _, err := mime.ParseMediaType(mediaType); err == nil {
		switch mt {
		case "text/plain", "text/markdown":
			return FormatText
		case "application/pdf":
			return FormatPDF
		case docxMediaType:
			return FormatDOCX
		case "application/zip", "application/x-zip-compressed":
			return FormatArchive
		}
	}

	return sniffFormat(data)
}

func sniffFormat(data []byte) Format {
	switch {
	case len(data) == 0:
		return FormatUnknown
	case bytes.HasPrefix(data, pdfMagic):
		return FormatPDF
	case bytes.HasPrefix(data, zipMagic):
		if isDOCX(data) {
			return FormatDOCX
		}
		return FormatArchive
	}
	if strings.HasPrefix(http.DetectContentType(data), "text/") {
		return FormatText
	}
	return FormatUnknown
}

// CleanText normalizes line endings, trims every line and drops blank lines.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	cleaned := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
