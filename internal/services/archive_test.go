package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-ranker/internal/apperr"
	"alfredoptarigan/resume-ranker/internal/models"
)

var testArchiveLimits = ArchiveLimits{MaxEntries: 50, MaxTotalBytes: 1 << 20, MaxDepth: 2}

func newTestExpander(t *testing.T, limits ArchiveLimits) ArchiveExpander {
	t.Helper()
	e, err := NewArchiveExpander(limits)
	require.NoError(t, err)
	return e
}

type expanded struct {
	docs []models.ResumeDocument
	errs []error
}

func collect(seq func(func(models.ResumeDocument, error) bool)) expanded {
	var out expanded
	for doc, err := range seq {
		out.docs = append(out.docs, doc)
		out.errs = append(out.errs, err)
	}
	return out
}

func TestNewArchiveExpanderRequiresLimits(t *testing.T) {
	for _, limits := range []ArchiveLimits{
		{},
		{MaxEntries: 1, MaxTotalBytes: 1},
		{MaxEntries: 1, MaxDepth: 1},
		{MaxTotalBytes: 1, MaxDepth: 1},
	} {
		_, err := NewArchiveExpander(limits)
		assert.Error(t, err)
	}
}

func TestExpandSkipsDirectoriesAndMetadata(t *testing.T) {
	data := buildZip(t,
		zipEntry{name: "resumes/"},
		zipEntry{name: "resumes/alice.txt", data: []byte("Alice")},
		zipEntry{name: "__MACOSX/resumes/._alice.txt", data: []byte{0, 1}},
		zipEntry{name: "resumes/.DS_Store", data: []byte{0}},
		zipEntry{name: "resumes/bob.docx", data: buildDOCX(t, "Bob")},
		zipEntry{name: "resumes/photo.png", data: pngHeader},
	)

	got := collect(newTestExpander(t, testArchiveLimits).Expand(models.ResumeDocument{Filename: "batch.zip", Data: data}))
	require.Len(t, got.docs, 3)
	for _, err := range got.errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, "alice.txt", got.docs[0].Filename)
	assert.Equal(t, "bob.docx", got.docs[1].Filename)
	assert.Equal(t, "photo.png", got.docs[2].Filename)
	assert.Equal(t, "batch.zip", got.docs[0].Archive)
	assert.Equal(t, []byte("Alice"), got.docs[0].Data)
}

func TestExpandKeepsPathForDuplicateNames(t *testing.T) {
	data := buildZip(t,
		zipEntry{name: "team-a/cv.txt", data: []byte("A")},
		zipEntry{name: "team-b/cv.txt", data: []byte("B")},
	)

	got := collect(newTestExpander(t, testArchiveLimits).Expand(models.ResumeDocument{Filename: "batch.zip", Data: data}))
	require.Len(t, got.docs, 2)
	assert.Equal(t, "team-a/cv.txt", got.docs[0].Filename)
	assert.Equal(t, "team-b/cv.txt", got.docs[1].Filename)
}

func TestExpandNestedArchives(t *testing.T) {
	inner := buildZip(t,
		zipEntry{name: "one.txt", data: []byte("one")},
		zipEntry{name: "two.txt", data: []byte("two")},
	)
	outer := buildZip(t,
		zipEntry{name: "top.txt", data: []byte("top")},
		zipEntry{name: "inner.zip", data: inner},
	)
	doc := models.ResumeDocument{Filename: "outer.zip", Data: outer}

	got := collect(newTestExpander(t, testArchiveLimits).Expand(doc))
	require.Len(t, got.docs, 3)
	assert.Equal(t, "top.txt", got.docs[0].Filename)
	assert.Equal(t, "one.txt", got.docs[1].Filename)
	assert.Equal(t, "inner.zip", got.docs[1].Archive)

	shallow := testArchiveLimits
	shallow.MaxDepth = 1
	got = collect(newTestExpander(t, shallow).Expand(doc))
	require.Len(t, got.docs, 2)
	assert.Equal(t, "inner.zip", got.docs[1].Filename)
	assert.NoError(t, got.errs[1])
}

func TestExpandEntryLimit(t *testing.T) {
	data := buildZip(t,
		zipEntry{name: "a.txt", data: []byte("a")},
		zipEntry{name: "b.txt", data: []byte("b")},
		zipEntry{name: "c.txt", data: []byte("c")},
	)
	limits := testArchiveLimits
	limits.MaxEntries = 2

	got := collect(newTestExpander(t, limits).Expand(models.ResumeDocument{Filename: "batch.zip", Data: data}))
	require.Len(t, got.errs, 3)
	assert.NoError(t, got.errs[0])
	assert.NoError(t, got.errs[1])
	assert.Equal(t, apperr.CodeArchiveLimitExceeded, apperr.CodeOf(got.errs[2]))
}

func TestExpandByteLimitIsSharedAcrossBatch(t *testing.T) {
	first := buildZip(t, zipEntry{name: "a.txt", data: []byte(strings.Repeat("a", 60))})
	second := buildZip(t, zipEntry{name: "b.txt", data: []byte(strings.Repeat("b", 60))})
	limits := testArchiveLimits
	limits.MaxTotalBytes = 100

	got := collect(newTestExpander(t, limits).ExpandBatch([]models.ResumeDocument{
		{Filename: "first.zip", Data: first},
		{Filename: "plain.txt", Data: []byte(strings.Repeat("p", 500))},
		{Filename: "second.zip", Data: second},
	}))
	require.Len(t, got.errs, 3)
	assert.NoError(t, got.errs[0])
	assert.NoError(t, got.errs[1])
	assert.Equal(t, "plain.txt", got.docs[1].Filename)
	assert.Equal(t, apperr.CodeArchiveLimitExceeded, apperr.CodeOf(got.errs[2]))
}

func TestExpandCorruptArchive(t *testing.T) {
	got := collect(newTestExpander(t, testArchiveLimits).ExpandBatch([]models.ResumeDocument{
		{Filename: "broken.zip", Data: []byte("PK\x03\x04 definitely not a zip")},
		{Filename: "cv.txt", Data: []byte("text")},
	}))
	require.Len(t, got.docs, 2)
	assert.Equal(t, "broken.zip", got.docs[0].Filename)
	assert.Equal(t, apperr.CodeExtractionFailure, apperr.CodeOf(got.errs[0]))
	assert.NoError(t, got.errs[1])
}

func TestExpandStopsWhenConsumerBreaks(t *testing.T) {
	data := buildZip(t,
		zipEntry{name: "a.txt", data: []byte("a")},
		zipEntry{name: "b.txt", data: []byte("b")},
	)

	var seen int
	for range newTestExpander(t, testArchiveLimits).Expand(models.ResumeDocument{Filename: "batch.zip", Data: data}) {
		seen++
		break
	}
	assert.Equal(t, 1, seen)
}
