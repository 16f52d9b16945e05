package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFContent is the text of a PDF together with its page count.
type PDFContent struct {
	Text      string
	PageCount int
}

type PDFParser interface {
	FormatExtractor
	ExtractWithMetaData(data []byte) (*PDFContent, error)
}

type pdfParser struct{}

func NewPDFParser() PDFParser {
	return &pdfParser{}
}

func (p *pdfParser) Extract(data []byte) (string, error) {
	content, err := p.ExtractWithMetaData(data)
	if err != nil {
		return "", err
	}
	return content.Text, nil
}

// ExtractWithMetaData reads every page's plain text. The parser can panic on
// malformed input; that is reported as an error.
func (p *pdfParser) ExtractWithMetaData(data []byte) (content *PDFContent, err error) {
	defer func() {
		if r := recover(); r != nil {
			content, err = nil, fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// skip unreadable pages
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	text := textBuilder.String()
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("no text content found in PDF")
	}

	return &PDFContent{
		Text:      text,
		PageCount: totalPage,
	}, nil
}
