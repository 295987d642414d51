package handlers

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"PMS-FORMS/internal/services"
	"PMS-FORMS/internal/storage"

	"github.com/gin-gonic/gin"
)

type FileHandler struct {
	uploads *services.UploadService
	gcs     *storage.GCSClient
}

func NewFileHandler(uploads *services.UploadService, gcs *storage.GCSClient) *FileHandler {
	return &FileHandler{uploads: uploads, gcs: gcs}
}

func (h *FileHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only PDF files are allowed"})
		return
	}

	uploaded, err := h.uploads.Upload(c.Request.Context(), file, header)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, uploaded)
}

func (h *FileHandler) Serve(c *gin.Context) {
	objectName := strings.TrimPrefix(c.Param("object"), "/")
	if objectName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Object name is required"})
		return
	}

	reader, err := h.gcs.ReadFile(c.Request.Context(), objectName)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}
	defer reader.Close()

	c.Header("Content-Type", "application/pdf")
	if _, err := io.Copy(c.Writer, reader); err != nil {
		// Too late for a status change; the copy failed mid-stream.
		c.Abort()
	}
}
