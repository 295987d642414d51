package models

import (
	"encoding/json"
	"time"
)

type Template struct {
	ID              string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name            string    `gorm:"not null" json:"name"`
	Key             string    `gorm:"type:varchar(191);uniqueIndex;not null" json:"key"`
	ActiveVersionID *string   `gorm:"type:varchar(36)" json:"active_version_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Versions []TemplateVersion `gorm:"foreignKey:TemplateID" json:"versions,omitempty"`
}

// TemplateVersion is one numbered snapshot of a template's source document
// and field layout. Dimensions and FieldSchema are stored as JSON columns;
// the Decoded* helpers unpack them for callers.
type TemplateVersion struct {
	ID            string        `gorm:"type:varchar(36);primaryKey" json:"id"`
	TemplateID    string        `gorm:"type:varchar(36);not null;index;uniqueIndex:idx_template_version_number,priority:1" json:"template_id"`
	VersionNumber int           `gorm:"not null;uniqueIndex:idx_template_version_number,priority:2" json:"version_number"`
	FileURL       string        `gorm:"type:text;not null" json:"file_url"`
	Dimensions    string        `gorm:"type:json" json:"-"`
	FieldSchema   string        `gorm:"type:json" json:"-"`
	Status        VersionStatus `gorm:"type:varchar(20);not null;default:'DRAFT'" json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
}

func (v *TemplateVersion) DecodedDimensions() (map[string]float64, error) {
	dims := make(map[string]float64)
	if v.Dimensions == "" {
		return dims, nil
	}
	err := json.Unmarshal([]byte(v.Dimensions), &dims)
	return dims, err
}

func (v *TemplateVersion) DecodedFieldSchema() ([]FieldSchema, error) {
	var fields []FieldSchema
	if v.FieldSchema == "" {
		return fields, nil
	}
	err := json.Unmarshal([]byte(v.FieldSchema), &fields)
	return fields, err
}

const (
	SubmissionPending   = "pending"
	SubmissionCompleted = "completed"
	SubmissionFailed    = "failed"
)

// Submission is one accepted generation. It references, never owns, the
// version it was rendered against so a later re-render reproduces the same
// document even after newer versions are published. Rows are append-only;
// only OutputURL is backfilled after creation.
type Submission struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	TemplateID string    `gorm:"type:varchar(36);not null;index" json:"template_id"`
	VersionID  string    `gorm:"type:varchar(36);not null;index" json:"version_id"`
	Payload    string    `gorm:"type:json;not null" json:"-"`
	OutputURL  *string   `gorm:"type:text" json:"output_url"`
	Status     string    `gorm:"type:varchar(20);default:'pending'" json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

func (s *Submission) DecodedPayload() (map[string]any, error) {
	payload := make(map[string]any)
	if s.Payload == "" {
		return payload, nil
	}
	err := json.Unmarshal([]byte(s.Payload), &payload)
	return payload, err
}
