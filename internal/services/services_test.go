package services

import (
	"fmt"
	"strings"
	"testing"

	"PMS-FORMS/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a per-test in-memory database. TranslateError is on, the
// same as production, so unique-constraint violations surface as
// gorm.ErrDuplicatedKey regardless of driver.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.Exec("PRAGMA busy_timeout = 5000")

	err = db.AutoMigrate(
		&models.Template{},
		&models.TemplateVersion{},
		&models.Submission{},
		&models.ActivityLog{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

func requiredTestField(id, key string) models.FieldSchema {
	return models.FieldSchema{
		ID:         id,
		Key:        key,
		Type:       models.FieldText,
		Rect:       models.FieldRect{X: 10, Y: 20, W: 120, H: 14},
		Style:      models.DefaultFieldStyle(),
		Validation: models.FieldValidation{Required: true},
	}
}
