package services

import (
	"bytes"
	"errors"
	"io"
	"iter"
	"path"
	"strings"

	"github.com/klauspost/compress/zip"

	"alfredoptarigan/resume-ranker/internal/apperr"
	"alfredoptarigan/resume-ranker/internal/models"
)

// ArchiveLimits bound the expansion of all archives in one request.
type ArchiveLimits struct {
	MaxEntries    int
	MaxTotalBytes int64
	MaxDepth      int
}

type ArchiveExpander interface {
	// Expand lazily yields the documents of one upload. Non-archives are
	// yielded unchanged.
	Expand(doc models.ResumeDocument) iter.Seq2[models.ResumeDocument, error]
	// ExpandBatch expands every upload against one shared budget.
	ExpandBatch(docs []models.ResumeDocument) iter.Seq2[models.ResumeDocument, error]
}

type archiveExpander struct {
	limits ArchiveLimits
}

func NewArchiveExpander(limits ArchiveLimits) (ArchiveExpander, error) {
	if limits.MaxEntries <= 0 || limits.MaxTotalBytes <= 0 || limits.MaxDepth <= 0 {
		return nil, errors.New("archive limits must all be positive")
	}
	return &archiveExpander{limits: limits}, nil
}

type archiveBudget struct {
	limits  ArchiveLimits
	entries int
	bytes   int64
}

func (b *archiveBudget) remaining() int64 { return b.limits.MaxTotalBytes - b.bytes }

func (e *archiveExpander) Expand(doc models.ResumeDocument) iter.Seq2[models.ResumeDocument, error] {
	return e.ExpandBatch([]models.ResumeDocument{doc})
}

// ExpandBatch yields (doc, nil) for each document, (placeholder, err) for a
// corrupt archive, and stops after an ARCHIVE_LIMIT_EXCEEDED error.
func (e *archiveExpander) ExpandBatch(docs []models.ResumeDocument) iter.Seq2[models.ResumeDocument, error] {
	return func(yield func(models.ResumeDocument, error) bool) {
		budget := &archiveBudget{limits: e.limits}
		for _, doc := range docs {
			if DetectFormat(doc.Filename, doc.MediaType, doc.Data) != FormatArchive || doc.Extracted {
				if !yield(doc, nil) {
					return
				}
				continue
			}
			if !e.expandZip(doc, 1, budget, yield) {
				return
			}
		}
	}
}

// expandZip returns false when iteration must stop.
func (e *archiveExpander) expandZip(archive models.ResumeDocument, depth int, budget *archiveBudget, yield func(models.ResumeDocument, error) bool) bool {
	zr, err := zip.NewReader(bytes.NewReader(archive.Data), int64(len(archive.Data)))
	if err != nil {
		return yield(models.ResumeDocument{Filename: archive.Filename, Archive: archive.Archive},
			apperr.Wrap(err, apperr.CodeExtractionFailure, "corrupt archive"))
	}

	files := make([]*zip.File, 0, len(zr.File))
	baseCount := make(map[string]int)
	for _, f := range zr.File {
		if skipArchiveEntry(f) {
			continue
		}
		files = append(files, f)
		baseCount[path.Base(f.Name)]++
	}

	for _, f := range files {
		budget.entries++
		if budget.entries > budget.limits.MaxEntries {
			return yieldLimit(yield, "archive entry count exceeds %d", budget.limits.MaxEntries)
		}
		if f.UncompressedSize64 > uint64(budget.remaining()) {
			return yieldLimit(yield, "archive content exceeds %d bytes", budget.limits.MaxTotalBytes)
		}

		name := path.Base(f.Name)
		if baseCount[name] > 1 {
			name = strings.TrimPrefix(path.Clean(f.Name), "/")
		}
		entry := models.ResumeDocument{Filename: name, Archive: archive.Filename}

		data, err := readArchiveEntry(f, budget.remaining())
		if errors.Is(err, errEntryTooLarge) {
			return yieldLimit(yield, "archive content exceeds %d bytes", budget.limits.MaxTotalBytes)
		}
		if err != nil {
			if !yield(entry, apperr.Wrap(err, apperr.CodeExtractionFailure, "failed to read archive entry")) {
				return false
			}
			continue
		}
		budget.bytes += int64(len(data))
		entry.Data = data

		if depth < budget.limits.MaxDepth && DetectFormat(entry.Filename, "", data) == FormatArchive {
			if !e.expandZip(entry, depth+1, budget, yield) {
				return false
			}
			continue
		}
		if !yield(entry, nil) {
			return false
		}
	}
	return true
}

var errEntryTooLarge = errors.New("archive entry exceeds remaining budget")

func readArchiveEntry(f *zip.File, remaining int64) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, remaining+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > remaining {
		return nil, errEntryTooLarge
	}
	return data, nil
}

func skipArchiveEntry(f *zip.File) bool {
	if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
		return true
	}
	if strings.HasPrefix(f.Name, "__MACOSX/") || strings.Contains(f.Name, "/__MACOSX/") {
		return true
	}
	base := path.Base(f.Name)
	return strings.HasPrefix(base, "._") || base == ".DS_Store"
}

func yieldLimit(yield func(models.ResumeDocument, error) bool, format string, args ...any) bool {
	yield(models.ResumeDocument{}, apperr.Newf(apperr.CodeArchiveLimitExceeded, format, args...))
	return false
}
