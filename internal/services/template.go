package services

import (
	"context"
	"errors"
	"fmt"

	"PMS-FORMS/internal/apperrors"
	"PMS-FORMS/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TemplateService struct {
	db *gorm.DB
}

func NewTemplateService(db *gorm.DB) *TemplateService {
	return &TemplateService{db: db}
}

// Create inserts a new template with no active version. Key uniqueness is
// enforced by the unique index, so two concurrent creates with the same key
// cannot both succeed; the loser gets ErrDuplicateKey.
func (s *TemplateService) Create(ctx context.Context, name, key string) (*models.Template, error) {
	template := &models.Template{
		ID:   uuid.New().String(),
		Name: name,
		Key:  key,
	}

	if err := s.db.WithContext(ctx).Create(template).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateKey
		}
		return nil, fmt.Errorf("failed to create template: %w", err)
	}

	return template, nil
}

func (s *TemplateService) Get(ctx context.Context, templateID string) (*models.Template, error) {
	var template models.Template
	if err := s.db.WithContext(ctx).First(&template, "id = ?", templateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to fetch template: %w", err)
	}
	return &template, nil
}

func (s *TemplateService) GetByKey(ctx context.Context, key string) (*models.Template, error) {
	var template models.Template
	if err := s.db.WithContext(ctx).First(&template, "`key` = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to fetch template by key: %w", err)
	}
	return &template, nil
}

func (s *TemplateService) List(ctx context.Context) ([]models.Template, error) {
	var templates []models.Template
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

// Delete removes a template and cascades to its versions. It refuses with
// ErrConflict while any submission references the template, so the ledger
// never loses its referent.
func (s *TemplateService) Delete(ctx context.Context, templateID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var template models.Template
		if err := tx.First(&template, "id = ?", templateID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrTemplateNotFound
			}
			return fmt.Errorf("failed to fetch template: %w", err)
		}

		var submissions int64
		if err := tx.Model(&models.Submission{}).Where("template_id = ?", templateID).Count(&submissions).Error; err != nil {
			return fmt.Errorf("failed to count submissions: %w", err)
		}
		if submissions > 0 {
			return apperrors.ErrConflict
		}

		if err := tx.Where("template_id = ?", templateID).Delete(&models.TemplateVersion{}).Error; err != nil {
			return fmt.Errorf("failed to delete versions: %w", err)
		}
		if err := tx.Delete(&template).Error; err != nil {
			return fmt.Errorf("failed to delete template: %w", err)
		}
		return nil
	})
}
