package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"PMS-FORMS/internal/apperrors"
	"PMS-FORMS/internal/models"
	"PMS-FORMS/internal/renderer"
	"PMS-FORMS/internal/storage"
	"PMS-FORMS/internal/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VersionLatest selects the template's active published version.
const VersionLatest = "latest"

// GenerationService resolves a generation request to a concrete version,
// validates the payload, delegates rendering to the external compositor,
// and appends the accepted submission to the ledger. All row state needed
// for rendering is read up front; no lock is held across the render call.
type GenerationService struct {
	db       *gorm.DB
	renderer renderer.Renderer
	files    *storage.GCSClient // optional; nil disables output backfill
}

func NewGenerationService(db *gorm.DB, r renderer.Renderer, files *storage.GCSClient) *GenerationService {
	return &GenerationService{db: db, renderer: r, files: files}
}

type GenerateResult struct {
	SubmissionID string
	// PDFData carries the base64 output inline when the caller asked for
	// output "base64"; empty otherwise.
	PDFData string
	// OutputURL references the stored output when it was not returned
	// inline; empty otherwise.
	OutputURL string
}

// Generate runs the full pipeline for one submission. Failures at every
// stage before the ledger write leave no partial state, so resubmitting
// with the same or corrected payload is always safe.
func (s *GenerationService) Generate(ctx context.Context, templateKey, versionSelector string, payload map[string]any, opts *renderer.Options) (*GenerateResult, error) {
	options := renderer.DefaultOptions()
	if opts != nil {
		options = *opts
	}

	var template models.Template
	if err := s.db.WithContext(ctx).First(&template, "`key` = ?", templateKey).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to fetch template: %w", err)
	}

	versionID := versionSelector
	if versionSelector == VersionLatest {
		if template.ActiveVersionID == nil || *template.ActiveVersionID == "" {
			return nil, apperrors.ErrNoPublishedVersion
		}
		versionID = *template.ActiveVersionID
	}

	var version models.TemplateVersion
	if err := s.db.WithContext(ctx).First(&version, "id = ?", versionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrVersionNotFound
		}
		return nil, fmt.Errorf("failed to fetch version: %w", err)
	}

	fields, err := version.DecodedFieldSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to decode field schema: %w", err)
	}
	if violations := validation.Validate(fields, payload); len(violations) > 0 {
		return nil, &apperrors.ValidationError{Violations: violations}
	}

	output, err := s.renderer.Render(ctx, renderer.Request{
		FileURL:     version.FileURL,
		FieldSchema: json.RawMessage(version.FieldSchema),
		Payload:     payload,
		Options:     options,
	})
	if err != nil {
		return nil, err
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	submission := &models.Submission{
		ID:         uuid.New().String(),
		TemplateID: template.ID,
		VersionID:  version.ID,
		Payload:    string(payloadJSON),
		Status:     models.SubmissionCompleted,
	}

	result := &GenerateResult{SubmissionID: submission.ID}
	if options.Output == "base64" {
		result.PDFData = strings.TrimSpace(string(output))
	} else if s.files != nil {
		// Output stays server-side: park the bytes in storage and record
		// the reference on the submission.
		objectName := storage.GenerateOutputObjectName(submission.ID)
		if _, err := s.files.UploadFile(ctx, bytes.NewReader(output), objectName, "application/pdf"); err != nil {
			return nil, fmt.Errorf("failed to store rendered output: %w", err)
		}
		submission.OutputURL = &objectName
		result.OutputURL = objectName
	}

	if err := s.db.WithContext(ctx).Create(submission).Error; err != nil {
		return nil, fmt.Errorf("failed to record submission: %w", err)
	}

	return result, nil
}

// Download re-renders a past submission from its frozen version and payload
// and returns the decoded bytes. Validation is not re-run (the payload was
// accepted when the submission was created) and the submission row is not
// touched, so the result is reproducible even after newer versions publish.
func (s *GenerationService) Download(ctx context.Context, submissionID string) ([]byte, error) {
	submission, err := s.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	var version models.TemplateVersion
	if err := s.db.WithContext(ctx).First(&version, "id = ?", submission.VersionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrVersionNotFound
		}
		return nil, fmt.Errorf("failed to fetch version: %w", err)
	}

	payload, err := submission.DecodedPayload()
	if err != nil {
		return nil, fmt.Errorf("failed to decode submission payload: %w", err)
	}

	output, err := s.renderer.Render(ctx, renderer.Request{
		FileURL:     version.FileURL,
		FieldSchema: json.RawMessage(version.FieldSchema),
		Payload:     payload,
		Options:     renderer.Options{Flatten: true, Output: "base64"},
	})
	if err != nil {
		return nil, err
	}

	pdf, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(output)))
	if err != nil {
		return nil, &apperrors.RenderError{Detail: fmt.Sprintf("invalid base64 output: %v", err)}
	}

	return pdf, nil
}

func (s *GenerationService) GetSubmission(ctx context.Context, submissionID string) (*models.Submission, error) {
	var submission models.Submission
	if err := s.db.WithContext(ctx).First(&submission, "id = ?", submissionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to fetch submission: %w", err)
	}
	return &submission, nil
}

func (s *GenerationService) ListSubmissionsByTemplate(ctx context.Context, templateID string) ([]models.Submission, error) {
	var submissions []models.Submission
	err := s.db.WithContext(ctx).
		Where("template_id = ?", templateID).
		Order("created_at DESC").
		Find(&submissions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return submissions, nil
}
