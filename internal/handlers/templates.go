package handlers

import (
	"net/http"

	"PMS-FORMS/internal/services"

	"github.com/gin-gonic/gin"
)

type TemplateHandler struct {
	templates   *services.TemplateService
	versions    *services.VersionService
	generations *services.GenerationService
}

func NewTemplateHandler(templates *services.TemplateService, versions *services.VersionService, generations *services.GenerationService) *TemplateHandler {
	return &TemplateHandler{templates: templates, versions: versions, generations: generations}
}

type TemplateCreateRequest struct {
	Name string `json:"name" binding:"required"`
	Key  string `json:"key" binding:"required"`
}

func (h *TemplateHandler) Create(c *gin.Context) {
	var req TemplateCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON: name and key are required"})
		return
	}

	template, err := h.templates.Create(c.Request.Context(), req.Name, req.Key)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, template)
}

func (h *TemplateHandler) List(c *gin.Context) {
	templates, err := h.templates.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

func (h *TemplateHandler) Get(c *gin.Context) {
	template, err := h.templates.Get(c.Request.Context(), c.Param("templateId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

func (h *TemplateHandler) Delete(c *gin.Context) {
	if err := h.templates.Delete(c.Request.Context(), c.Param("templateId")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Template deleted successfully"})
}

func (h *TemplateHandler) ListVersions(c *gin.Context) {
	versions, err := h.versions.ListByTemplate(c.Request.Context(), c.Param("templateId"))
	if err != nil {
		writeError(c, err)
		return
	}

	responses := make([]versionResponse, 0, len(versions))
	for i := range versions {
		resp, err := newVersionResponse(&versions[i])
		if err != nil {
			writeError(c, err)
			return
		}
		responses = append(responses, resp)
	}
	c.JSON(http.StatusOK, responses)
}

func (h *TemplateHandler) ListSubmissions(c *gin.Context) {
	submissions, err := h.generations.ListSubmissionsByTemplate(c.Request.Context(), c.Param("templateId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, submissions)
}
