package models

import (
	"fmt"
	"math"
	"regexp"
)

type VersionStatus string

const (
	StatusDraft     VersionStatus = "DRAFT"
	StatusPublished VersionStatus = "PUBLISHED"
	StatusArchived  VersionStatus = "ARCHIVED"
)

func (s VersionStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

type FieldType string

const (
	FieldText            FieldType = "TEXT"
	FieldCheckbox        FieldType = "CHECKBOX"
	FieldImage           FieldType = "IMAGE"
	FieldDate            FieldType = "DATE"
	FieldSignatureAnchor FieldType = "SIGNATURE_ANCHOR"
)

func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldCheckbox, FieldImage, FieldDate, FieldSignatureAnchor:
		return true
	}
	return false
}

// FieldRect places a field on the page in document coordinate space.
type FieldRect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

type FieldStyle struct {
	FontFamily string `json:"fontFamily"`
	FontSize   int    `json:"fontSize"`
	Alignment  string `json:"alignment"`
	Color      string `json:"color"`
	TickChar   string `json:"tickChar,omitempty"`
}

func DefaultFieldStyle() FieldStyle {
	return FieldStyle{
		FontFamily: "Helvetica",
		FontSize:   11,
		Alignment:  "LEFT",
		Color:      "#000000",
		TickChar:   "✓",
	}
}

type FieldValidation struct {
	Required    bool     `json:"required"`
	Regex       string   `json:"regex,omitempty"`
	MaxLen      *int     `json:"maxLen,omitempty"`
	CharSpacing *float64 `json:"charSpacing,omitempty"`
}

// FieldSchema describes one fillable region of a template version: where
// it sits, how it is styled, and what rule its submitted value must pass.
// Key is a dot path into the submission payload, e.g. "client.name".
type FieldSchema struct {
	ID         string          `json:"id"`
	Key        string          `json:"key"`
	Type       FieldType       `json:"type"`
	PageIndex  int             `json:"pageIndex"`
	Rect       FieldRect       `json:"rect"`
	Style      FieldStyle      `json:"style"`
	Validation FieldValidation `json:"validation"`
}

func (f FieldSchema) checkShape(pageCount int) error {
	if f.ID == "" {
		return fmt.Errorf("field id must not be empty")
	}
	if f.Key == "" {
		return fmt.Errorf("field '%s' has an empty key", f.ID)
	}
	if !f.Type.Valid() {
		return fmt.Errorf("field '%s' has unknown type '%s'", f.Key, f.Type)
	}
	if f.PageIndex < 0 {
		return fmt.Errorf("field '%s' has negative pageIndex %d", f.Key, f.PageIndex)
	}
	if pageCount > 0 && f.PageIndex >= pageCount {
		return fmt.Errorf("field '%s' pageIndex %d is outside the document's %d page(s)", f.Key, f.PageIndex, pageCount)
	}
	for name, v := range map[string]float64{"x": f.Rect.X, "y": f.Rect.Y, "w": f.Rect.W, "h": f.Rect.H} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("field '%s' rect.%s must be finite and non-negative", f.Key, name)
		}
	}
	if f.Validation.Regex != "" {
		if _, err := regexp.Compile(f.Validation.Regex); err != nil {
			return fmt.Errorf("field '%s' has invalid regex: %v", f.Key, err)
		}
	}
	return nil
}

// ValidateFieldSchemas checks the shape of a whole schema list before it is
// written to a version. Field ids must be unique within the list; keys need
// not be. When dimensions carries a "pages" entry, every pageIndex must fall
// inside it.
func ValidateFieldSchemas(fields []FieldSchema, dimensions map[string]float64) error {
	pageCount := 0
	if pages, ok := dimensions["pages"]; ok {
		pageCount = int(pages)
	}

	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if err := f.checkShape(pageCount); err != nil {
			return err
		}
		if _, dup := seen[f.ID]; dup {
			return fmt.Errorf("duplicate field id '%s'", f.ID)
		}
		seen[f.ID] = struct{}{}
	}
	return nil
}
