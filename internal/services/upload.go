package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"alfredoptarigan/resume-ranker/internal/apperr"
	"alfredoptarigan/resume-ranker/internal/models"
)

// UploadService turns uploaded or local files into in-memory resume documents.
type UploadService interface {
	ReadUpload(file *multipart.FileHeader) (models.ResumeDocument, error)
	ReadUploads(files []*multipart.FileHeader) ([]models.ResumeDocument, error)
	ReadFile(path string) (models.ResumeDocument, error)
}

type uploadService struct {
	maxFileSize int64
}

func NewUploadService(maxFileSize int64) UploadService {
	return &uploadService{
		maxFileSize: maxFileSize,
	}
}

func (s *uploadService) ReadUpload(file *multipart.FileHeader) (models.ResumeDocument, error) {
	if s.maxFileSize > 0 && file.Size > s.maxFileSize {
		return models.ResumeDocument{}, apperr.Newf(apperr.CodeInvalidParameter,
			"file %q too large. Max size: %d bytes", file.Filename, s.maxFileSize)
	}

	src, err := file.Open()
	if err != nil {
		return models.ResumeDocument{}, apperr.Wrap(err, apperr.CodeInternal, "failed to open uploaded file")
	}
	defer src.Close()

	data, err := s.readAll(src, file.Filename)
	if err != nil {
		return models.ResumeDocument{}, err
	}

	return models.ResumeDocument{
		Filename:  filepath.Base(file.Filename),
		MediaType: file.Header.Get("Content-Type"),
		Data:      data,
	}, nil
}

func (s *uploadService) ReadUploads(files []*multipart.FileHeader) ([]models.ResumeDocument, error) {
	docs := make([]models.ResumeDocument, 0, len(files))
	for _, fh := range files {
		doc, err := s.ReadUpload(fh)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *uploadService) ReadFile(path string) (models.ResumeDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.ResumeDocument{}, apperr.Wrap(err, apperr.CodeInvalidParameter, fmt.Sprintf("failed to open %s", path))
	}
	defer f.Close()

	data, err := s.readAll(f, path)
	if err != nil {
		return models.ResumeDocument{}, err
	}
	return models.ResumeDocument{Filename: filepath.Base(path), Data: data}, nil
}

func (s *uploadService) readAll(r io.Reader, name string) ([]byte, error) {
	if s.maxFileSize > 0 {
		r = io.LimitReader(r, s.maxFileSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeInternal, "failed to read file")
	}
	if s.maxFileSize > 0 && int64(len(data)) > s.maxFileSize {
		return nil, apperr.Newf(apperr.CodeInvalidParameter, "file %q too large. Max size: %d bytes", name, s.maxFileSize)
	}
	return data, nil
}
