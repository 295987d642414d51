package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"

	"PMS-FORMS/internal/storage"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

type UploadService struct {
	gcs *storage.GCSClient
}

func NewUploadService(gcs *storage.GCSClient) *UploadService {
	return &UploadService{gcs: gcs}
}

type UploadedFile struct {
	FileURL    string             `json:"file_url"`
	Filename   string             `json:"filename"`
	PageCount  int                `json:"page_count"`
	Dimensions map[string]float64 `json:"dimensions"`
}

// Upload verifies the incoming PDF, measures it, and stores it. The
// returned file_url is the opaque reference the compositor later resolves
// back into bytes; dimensions come pre-filled so a version created from
// this upload carries a truthful page count.
func (s *UploadService) Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*UploadedFile, error) {
	tempFile, err := s.createTempFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer s.cleanupTempFile(tempFile)

	pdfCtx, err := api.ReadContextFile(tempFile)
	if err != nil {
		return nil, fmt.Errorf("not a readable PDF: %w", err)
	}

	dimensions := map[string]float64{
		"pages": float64(pdfCtx.PageCount),
	}
	if dims, err := pdfCtx.PageDims(); err == nil && len(dims) > 0 {
		dimensions["width"] = dims[0].Width
		dimensions["height"] = dims[0].Height
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind upload: %w", err)
	}

	objectName := storage.GenerateUploadObjectName(header.Filename)
	if _, err := s.gcs.UploadFile(ctx, file, objectName, "application/pdf"); err != nil {
		return nil, fmt.Errorf("failed to upload to GCS: %w", err)
	}

	return &UploadedFile{
		FileURL:    "/api/v1/files/" + objectName,
		Filename:   header.Filename,
		PageCount:  pdfCtx.PageCount,
		Dimensions: dimensions,
	}, nil
}

func (s *UploadService) createTempFile(reader io.Reader) (string, error) {
	tempFile, err := os.CreateTemp("", "*.pdf")
	if err != nil {
		return "", err
	}
	defer tempFile.Close()

	_, err = io.Copy(tempFile, reader)
	if err != nil {
		os.Remove(tempFile.Name())
		return "", err
	}

	return tempFile.Name(), nil
}

func (s *UploadService) cleanupTempFile(filePath string) {
	os.Remove(filePath)
}
