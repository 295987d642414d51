package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"PMS-FORMS/internal"
	"PMS-FORMS/internal/config"
	"PMS-FORMS/internal/handlers"
	"PMS-FORMS/internal/renderer"
	"PMS-FORMS/internal/services"
	"PMS-FORMS/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := internal.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer internal.CloseDB(db)

	ctx := context.Background()

	// File storage is optional in local development; without a bucket the
	// upload and file-serving routes are disabled and rendered outputs are
	// only ever returned inline.
	var gcsClient *storage.GCSClient
	var retention *services.RetentionService
	if cfg.GCS.BucketName != "" {
		gcsClient, err = storage.NewGCSClient(ctx, cfg.GCS.BucketName, cfg.GCS.ProjectID, cfg.GCS.CredentialsPath)
		if err != nil {
			log.Fatalf("Failed to create GCS client: %v", err)
		}
		defer gcsClient.Close()

		maxAge, err := time.ParseDuration(cfg.Retention.MaxAge)
		if err != nil {
			maxAge = 24 * time.Hour
			log.Printf("Warning: failed to parse retention max age '%s', using default 24h: %v", cfg.Retention.MaxAge, err)
		}
		interval, err := time.ParseDuration(cfg.Retention.SweepInterval)
		if err != nil {
			interval = time.Hour
			log.Printf("Warning: failed to parse retention sweep interval '%s', using default 1h: %v", cfg.Retention.SweepInterval, err)
		}
		retention = services.NewRetentionService(gcsClient, []string{"submissions/", "uploads/"}, maxAge, interval)
		retention.Start()
	} else {
		log.Println("GCS_BUCKET_NAME not set, running without file storage")
	}

	pdfRenderer := renderer.NewHTTPRenderer(cfg.Renderer.URL, cfg.Renderer.Timeout)

	templateService := services.NewTemplateService(db)
	versionService := services.NewVersionService(db)
	generationService := services.NewGenerationService(db, pdfRenderer, gcsClient)
	activityLogService := services.NewActivityLogService(db)

	templateHandler := handlers.NewTemplateHandler(templateService, versionService, generationService)
	versionHandler := handlers.NewVersionHandler(versionService)
	generateHandler := handlers.NewGenerateHandler(generationService)
	logsHandler := handlers.NewLogsHandler(activityLogService)

	// Graceful shutdown handling
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Println("Shutting down server...")
		if retention != nil {
			retention.Stop()
		}
		internal.CloseDB(db)
		os.Exit(0)
	}()

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(handlers.ActivityLogger(activityLogService))

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.POST("/templates", templateHandler.Create)
		v1.GET("/templates", templateHandler.List)
		v1.GET("/templates/:templateId", templateHandler.Get)
		v1.DELETE("/templates/:templateId", templateHandler.Delete)
		v1.GET("/templates/:templateId/versions", templateHandler.ListVersions)
		v1.GET("/templates/:templateId/submissions", templateHandler.ListSubmissions)

		v1.POST("/versions", versionHandler.Create)
		v1.GET("/versions/:versionId", versionHandler.Get)
		v1.PATCH("/versions/:versionId", versionHandler.Update)

		v1.POST("/generate", generateHandler.Generate)
		v1.GET("/generate/:submissionId", generateHandler.GetSubmission)
		v1.GET("/generate/:submissionId/download", generateHandler.Download)

		v1.GET("/logs", logsHandler.List)

		if gcsClient != nil {
			uploadService := services.NewUploadService(gcsClient)
			fileHandler := handlers.NewFileHandler(uploadService, gcsClient)
			v1.POST("/upload", fileHandler.Upload)
			v1.GET("/files/*object", fileHandler.Serve)
		}
	}

	log.Printf("Starting server on :%s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Server exited: %v", err)
	}
}
