package models

import (
	"path/filepath"
	"strings"
)

// ResumeDocument is one candidate document after archive expansion. It holds
// either raw bytes to extract or text that was already extracted.
type ResumeDocument struct {
	Filename  string
	MediaType string
	Data      []byte
	Text      string
	Extracted bool
	// Archive names the archive the document was expanded from, if any.
	Archive string
}

// Ext returns the lower-cased file extension including the dot.
func (d ResumeDocument) Ext() string {
	return strings.ToLower(filepath.Ext(d.Filename))
}

// Size returns the number of raw bytes, or the text length when pre-extracted.
func (d ResumeDocument) Size() int {
	if d.Extracted {
		return len(d.Text)
	}
	return len(d.Data)
}

// DocumentState is the last pipeline stage a document reached.
type DocumentState string

const (
	StatePending      DocumentState = "pending"
	StateExtracted    DocumentState = "extracted"
	StateFeatureBuilt DocumentState = "feature_built"
	StateClassified   DocumentState = "classified"
	StateScored       DocumentState = "scored"
	StateIncluded     DocumentState = "included"
	StateFailed       DocumentState = "failed"
)

// IsTerminal reports whether the state ends a document's lifecycle.
func (s DocumentState) IsTerminal() bool {
	return s == StateIncluded || s == StateFailed
}

// DocumentOutcome records what happened to one document in a batch.
type DocumentOutcome struct {
	Filename string        `json:"filename"`
	State    DocumentState `json:"state"`
	// Reached is the last successful stage before a failure.
	Reached DocumentState `json:"reached,omitempty"`
	Code    string        `json:"code,omitempty"`
	Error   string        `json:"error,omitempty"`
}
