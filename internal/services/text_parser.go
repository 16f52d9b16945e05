package services

import (
	"errors"
	"unicode/utf8"

	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	binarySampleSize = 1000
	binaryThreshold  = 0.30
)

type plainTextParser struct{}

func NewPlainTextParser() FormatExtractor {
	return &plainTextParser{}
}

// Extract decodes UTF-8 or BOM-marked UTF-16 text. Invalid sequences become
// U+FFFD; content that looks binary is rejected.
func (p *plainTextParser) Extract(data []byte) (string, error) {
	decoder := xunicode.BOMOverride(xunicode.UTF8.NewDecoder())
	decoded, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return "", err
	}

	text := string(decoded)
	if isBinaryText(text) {
		return "", errors.New("content appears to be binary")
	}
	return text, nil
}

// isBinaryText reports NUL characters or a high share of control characters
// and replacement runes in the leading sample.
func isBinaryText(text string) bool {
	var sampled, suspicious int
	for _, r := range text {
		if sampled == binarySampleSize {
			break
		}
		sampled++
		switch {
		case r == 0:
			return true
		case r < 32 && r != '\n' && r != '\r' && r != '\t':
			suspicious++
		case r == utf8.RuneError:
			suspicious++
		}
	}
	if sampled == 0 {
		return false
	}
	return float64(suspicious)/float64(sampled) > binaryThreshold
}
