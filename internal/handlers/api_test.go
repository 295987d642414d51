package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"PMS-FORMS/internal/apperrors"
	"PMS-FORMS/internal/models"
	"PMS-FORMS/internal/renderer"
	"PMS-FORMS/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeRenderer struct {
	output []byte
	err    error
}

func (f *fakeRenderer) Render(ctx context.Context, req renderer.Request) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.output, nil
}

const fakePDF = "%PDF-1.4 fake"

func newTestRouter(t *testing.T) (*gin.Engine, *fakeRenderer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.Template{}, &models.TemplateVersion{}, &models.Submission{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	fake := &fakeRenderer{output: []byte(base64.StdEncoding.EncodeToString([]byte(fakePDF)))}

	templateService := services.NewTemplateService(db)
	versionService := services.NewVersionService(db)
	generationService := services.NewGenerationService(db, fake, nil)

	templateHandler := NewTemplateHandler(templateService, versionService, generationService)
	versionHandler := NewVersionHandler(versionService)
	generateHandler := NewGenerateHandler(generationService)

	r := gin.New()
	v1 := r.Group("/api/v1")
	v1.POST("/templates", templateHandler.Create)
	v1.GET("/templates", templateHandler.List)
	v1.GET("/templates/:templateId", templateHandler.Get)
	v1.DELETE("/templates/:templateId", templateHandler.Delete)
	v1.GET("/templates/:templateId/versions", templateHandler.ListVersions)
	v1.POST("/versions", versionHandler.Create)
	v1.GET("/versions/:versionId", versionHandler.Get)
	v1.PATCH("/versions/:versionId", versionHandler.Update)
	v1.POST("/generate", generateHandler.Generate)
	v1.GET("/generate/:submissionId/download", generateHandler.Download)

	return r, fake
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func requiredFieldSchema() []map[string]any {
	return []map[string]any{{
		"id":        "f1",
		"key":       "client.name",
		"type":      "TEXT",
		"pageIndex": 0,
		"rect":      map[string]any{"x": 50, "y": 700, "w": 200, "h": 16},
		"style":     map[string]any{"fontFamily": "Helvetica", "fontSize": 11, "alignment": "LEFT", "color": "#000000"},
		"validation": map[string]any{
			"required": true,
		},
	}}
}

func TestEndToEndGenerateAndDownload(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/templates", map[string]any{"name": "KYC", "key": "kyc_v1"})
	if w.Code != http.StatusOK {
		t.Fatalf("create template: %d %s", w.Code, w.Body.String())
	}
	templateID := decodeBody(t, w)["id"].(string)

	w = doJSON(t, r, http.MethodPost, "/api/v1/versions", map[string]any{
		"template_id":  templateID,
		"file_url":     "/api/v1/files/uploads/1_kyc.pdf",
		"dimensions":   map[string]any{"pages": 1, "width": 612, "height": 792},
		"field_schema": requiredFieldSchema(),
	})
	if w.Code != http.StatusOK {
		t.Fatalf("create version: %d %s", w.Code, w.Body.String())
	}
	versionBody := decodeBody(t, w)
	versionID := versionBody["id"].(string)
	if versionBody["version_number"].(float64) != 1 || versionBody["status"].(string) != "DRAFT" {
		t.Fatalf("unexpected version: %v", versionBody)
	}

	w = doJSON(t, r, http.MethodPatch, "/api/v1/versions/"+versionID, map[string]any{
		"field_schema": requiredFieldSchema(),
		"status":       "PUBLISHED",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("publish version: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/templates/"+templateID, nil)
	if got := decodeBody(t, w)["active_version_id"]; got != versionID {
		t.Fatalf("expected active_version_id %q, got %v", versionID, got)
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/generate", map[string]any{
		"template_key": "kyc_v1",
		"payload":      map[string]any{"client": map[string]any{"name": "Jane"}},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("generate: %d %s", w.Code, w.Body.String())
	}
	genBody := decodeBody(t, w)
	submissionID := genBody["submission_id"].(string)
	if genBody["pdf_data"].(string) == "" {
		t.Fatal("expected inline pdf_data")
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/generate/"+submissionID+"/download", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("download: %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("expected application/pdf, got %s", w.Header().Get("Content-Type"))
	}
	if w.Body.String() != fakePDF {
		t.Fatalf("unexpected download body %q", w.Body.String())
	}
}

func TestErrorMapping(t *testing.T) {
	r, fake := newTestRouter(t)

	// Unknown template id → 404.
	if w := doJSON(t, r, http.MethodGet, "/api/v1/templates/none", nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	// Duplicate key → 400.
	doJSON(t, r, http.MethodPost, "/api/v1/templates", map[string]any{"name": "A", "key": "dup"})
	if w := doJSON(t, r, http.MethodPost, "/api/v1/templates", map[string]any{"name": "B", "key": "dup"}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate key, got %d", w.Code)
	}

	// Generate against a template without a published version → 400.
	w := doJSON(t, r, http.MethodPost, "/api/v1/generate", map[string]any{"template_key": "dup", "payload": map[string]any{}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unpublished template, got %d", w.Code)
	}

	// Unknown template key → 404.
	w = doJSON(t, r, http.MethodPost, "/api/v1/generate", map[string]any{"template_key": "missing_key", "payload": map[string]any{}})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing key, got %d", w.Code)
	}

	// Validation failure → 400 carrying the violation list.
	w = doJSON(t, r, http.MethodPost, "/api/v1/templates", map[string]any{"name": "V", "key": "val_map"})
	templateID := decodeBody(t, w)["id"].(string)
	w = doJSON(t, r, http.MethodPost, "/api/v1/versions", map[string]any{
		"template_id":  templateID,
		"file_url":     "/api/v1/files/uploads/1_v.pdf",
		"dimensions":   map[string]any{"pages": 1},
		"field_schema": requiredFieldSchema(),
	})
	versionID := decodeBody(t, w)["id"].(string)
	doJSON(t, r, http.MethodPatch, "/api/v1/versions/"+versionID, map[string]any{
		"field_schema": requiredFieldSchema(),
		"status":       "PUBLISHED",
	})

	w = doJSON(t, r, http.MethodPost, "/api/v1/generate", map[string]any{
		"template_key": "val_map",
		"payload":      map[string]any{"client": map[string]any{}},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for validation failure, got %d %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	violations, ok := body["validation_errors"].([]any)
	if !ok || len(violations) != 1 {
		t.Fatalf("expected one violation in validation_errors, got %v", body)
	}

	// Renderer timeout → 500.
	fake.err = apperrors.ErrRenderTimeout
	w = doJSON(t, r, http.MethodPost, "/api/v1/generate", map[string]any{
		"template_key": "val_map",
		"payload":      map[string]any{"client": map[string]any{"name": "Jane"}},
	})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for renderer timeout, got %d", w.Code)
	}
}
