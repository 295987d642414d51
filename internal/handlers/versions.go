package handlers

import (
	"net/http"
	"time"

	"PMS-FORMS/internal/models"
	"PMS-FORMS/internal/services"

	"github.com/gin-gonic/gin"
)

type VersionHandler struct {
	versions *services.VersionService
}

func NewVersionHandler(versions *services.VersionService) *VersionHandler {
	return &VersionHandler{versions: versions}
}

type VersionCreateRequest struct {
	TemplateID  string               `json:"template_id" binding:"required"`
	FileURL     string               `json:"file_url" binding:"required"`
	Dimensions  map[string]float64   `json:"dimensions" binding:"required"`
	FieldSchema []models.FieldSchema `json:"field_schema"`
}

type VersionUpdateRequest struct {
	FieldSchema []models.FieldSchema  `json:"field_schema" binding:"required"`
	Status      *models.VersionStatus `json:"status"`
}

// versionResponse exposes dimensions and field schema as structured JSON
// rather than the stored column text.
type versionResponse struct {
	ID            string               `json:"id"`
	TemplateID    string               `json:"template_id"`
	VersionNumber int                  `json:"version_number"`
	FileURL       string               `json:"file_url"`
	Dimensions    map[string]float64   `json:"dimensions"`
	FieldSchema   []models.FieldSchema `json:"field_schema"`
	Status        models.VersionStatus `json:"status"`
	CreatedAt     time.Time            `json:"created_at"`
}

func newVersionResponse(v *models.TemplateVersion) (versionResponse, error) {
	dims, err := v.DecodedDimensions()
	if err != nil {
		return versionResponse{}, err
	}
	fields, err := v.DecodedFieldSchema()
	if err != nil {
		return versionResponse{}, err
	}
	if fields == nil {
		fields = []models.FieldSchema{}
	}
	return versionResponse{
		ID:            v.ID,
		TemplateID:    v.TemplateID,
		VersionNumber: v.VersionNumber,
		FileURL:       v.FileURL,
		Dimensions:    dims,
		FieldSchema:   fields,
		Status:        v.Status,
		CreatedAt:     v.CreatedAt,
	}, nil
}

func (h *VersionHandler) Create(c *gin.Context) {
	var req VersionCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON: template_id, file_url and dimensions are required"})
		return
	}

	version, err := h.versions.Create(c.Request.Context(), req.TemplateID, req.FileURL, req.Dimensions, req.FieldSchema)
	if err != nil {
		writeError(c, err)
		return
	}

	resp, err := newVersionResponse(version)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *VersionHandler) Get(c *gin.Context) {
	version, err := h.versions.Get(c.Request.Context(), c.Param("versionId"))
	if err != nil {
		writeError(c, err)
		return
	}

	resp, err := newVersionResponse(version)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *VersionHandler) Update(c *gin.Context) {
	var req VersionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON: field_schema is required"})
		return
	}

	version, err := h.versions.Update(c.Request.Context(), c.Param("versionId"), req.FieldSchema, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}

	resp, err := newVersionResponse(version)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
