package handlers

import (
	"net/http"

	"PMS-FORMS/internal/renderer"
	"PMS-FORMS/internal/services"

	"github.com/gin-gonic/gin"
)

type GenerateHandler struct {
	generations *services.GenerationService
}

func NewGenerateHandler(generations *services.GenerationService) *GenerateHandler {
	return &GenerateHandler{generations: generations}
}

type GenerateRequest struct {
	TemplateKey string            `json:"template_key" binding:"required"`
	Version     string            `json:"version"`
	Payload     map[string]any    `json:"payload"`
	Options     *renderer.Options `json:"options"`
}

type GenerateResponse struct {
	PDFData      string `json:"pdf_data,omitempty"`
	URL          string `json:"url,omitempty"`
	SubmissionID string `json:"submission_id"`
}

func (h *GenerateHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON: template_key is required"})
		return
	}
	if req.Version == "" {
		req.Version = services.VersionLatest
	}
	if req.Payload == nil {
		req.Payload = map[string]any{}
	}

	result, err := h.generations.Generate(c.Request.Context(), req.TemplateKey, req.Version, req.Payload, req.Options)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := GenerateResponse{
		PDFData:      result.PDFData,
		SubmissionID: result.SubmissionID,
	}
	if result.OutputURL != "" {
		resp.URL = "/api/v1/files/" + result.OutputURL
	}
	c.JSON(http.StatusOK, resp)
}

func (h *GenerateHandler) Download(c *gin.Context) {
	pdf, err := h.generations.Download(c.Request.Context(), c.Param("submissionId"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=generated.pdf")
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (h *GenerateHandler) GetSubmission(c *gin.Context) {
	submission, err := h.generations.GetSubmission(c.Request.Context(), c.Param("submissionId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, submission)
}
