package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"PMS-FORMS/internal/apperrors"
	"PMS-FORMS/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// versionCreateRetries bounds the retry loop that absorbs concurrent
// version-number allocations on the same template.
const versionCreateRetries = 3

type VersionService struct {
	db *gorm.DB
}

func NewVersionService(db *gorm.DB) *VersionService {
	return &VersionService{db: db}
}

// Create allocates the next version number for the template (current max
// plus one, or 1 when none exist) and inserts the version as DRAFT. The
// read-then-insert is made race-free by the unique index on
// (template_id, version_number): a concurrent writer that claims the same
// number forces a re-read and retry, so the sequence stays gapless.
func (s *VersionService) Create(ctx context.Context, templateID, fileURL string, dimensions map[string]float64, fields []models.FieldSchema) (*models.TemplateVersion, error) {
	if err := models.ValidateFieldSchemas(fields, dimensions); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidFieldSchema, err)
	}

	var template models.Template
	if err := s.db.WithContext(ctx).First(&template, "id = ?", templateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to fetch template: %w", err)
	}

	dimsJSON, err := json.Marshal(dimensions)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal dimensions: %w", err)
	}
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal field schema: %w", err)
	}

	for attempt := 1; attempt <= versionCreateRetries; attempt++ {
		var lastNumber int
		err := s.db.WithContext(ctx).Model(&models.TemplateVersion{}).
			Where("template_id = ?", templateID).
			Select("COALESCE(MAX(version_number), 0)").
			Scan(&lastNumber).Error
		if err != nil {
			return nil, fmt.Errorf("failed to read last version number: %w", err)
		}

		version := &models.TemplateVersion{
			ID:            uuid.New().String(),
			TemplateID:    templateID,
			VersionNumber: lastNumber + 1,
			FileURL:       fileURL,
			Dimensions:    string(dimsJSON),
			FieldSchema:   string(fieldsJSON),
			Status:        models.StatusDraft,
		}

		err = s.db.WithContext(ctx).Create(version).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create version: %w", err)
		}
		return version, nil
	}

	return nil, fmt.Errorf("failed to allocate version number for template %s after %d attempts", templateID, versionCreateRetries)
}

func (s *VersionService) Get(ctx context.Context, versionID string) (*models.TemplateVersion, error) {
	var version models.TemplateVersion
	if err := s.db.WithContext(ctx).First(&version, "id = ?", versionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrVersionNotFound
		}
		return nil, fmt.Errorf("failed to fetch version: %w", err)
	}
	return &version, nil
}

func (s *VersionService) ListByTemplate(ctx context.Context, templateID string) ([]models.TemplateVersion, error) {
	var versions []models.TemplateVersion
	err := s.db.WithContext(ctx).
		Where("template_id = ?", templateID).
		Order("version_number DESC").
		Find(&versions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	return versions, nil
}

// Update replaces the version's field schema wholesale (the new list fully
// supersedes the old) and optionally writes a new status. A transition into
// PUBLISHED is the publish transition: the version's status and the owning
// template's active_version_id change in the same transaction, so a reader
// never observes the pointer referencing an unpublished version. Other
// status values are written as given; ARCHIVED carries no further rule and
// never demotes the active pointer.
func (s *VersionService) Update(ctx context.Context, versionID string, fields []models.FieldSchema, status *models.VersionStatus) (*models.TemplateVersion, error) {
	if status != nil && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status '%s'", apperrors.ErrInvalidFieldSchema, *status)
	}

	var updated *models.TemplateVersion
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var version models.TemplateVersion
		if err := tx.First(&version, "id = ?", versionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrVersionNotFound
			}
			return fmt.Errorf("failed to fetch version: %w", err)
		}

		dims, err := version.DecodedDimensions()
		if err != nil {
			return fmt.Errorf("failed to decode dimensions: %w", err)
		}
		if err := models.ValidateFieldSchemas(fields, dims); err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrInvalidFieldSchema, err)
		}

		fieldsJSON, err := json.Marshal(fields)
		if err != nil {
			return fmt.Errorf("failed to marshal field schema: %w", err)
		}
		version.FieldSchema = string(fieldsJSON)

		if status != nil {
			version.Status = *status
			if *status == models.StatusPublished {
				err := tx.Model(&models.Template{}).
					Where("id = ?", version.TemplateID).
					Update("active_version_id", version.ID).Error
				if err != nil {
					return fmt.Errorf("failed to set active version: %w", err)
				}
			}
		}

		if err := tx.Save(&version).Error; err != nil {
			return fmt.Errorf("failed to update version: %w", err)
		}

		updated = &version
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
