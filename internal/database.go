package internal

import (
	"fmt"

	"PMS-FORMS/internal/config"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.Database.DSN()

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	fmt.Println("Database connected and migrated successfully")
	return db, nil
}

func autoMigrate(db *gorm.DB) error {
	// Create tables only if they don't exist (preserve existing data)
	fmt.Println("Ensuring templates table exists...")
	result := db.Exec(`
        CREATE TABLE IF NOT EXISTS templates (
            id varchar(36) PRIMARY KEY,
            name longtext NOT NULL,
            ` + "`key`" + ` varchar(191) NOT NULL,
            active_version_id varchar(36) NULL,
            created_at datetime(3) NULL,
            updated_at datetime(3) NULL,
            UNIQUE KEY idx_templates_key (` + "`key`" + `)
        )
    `)
	if result.Error != nil {
		return fmt.Errorf("failed to create templates table: %w", result.Error)
	}

	fmt.Println("Ensuring template_versions table exists...")
	result = db.Exec(`
        CREATE TABLE IF NOT EXISTS template_versions (
            id varchar(36) PRIMARY KEY,
            template_id varchar(36) NOT NULL,
            version_number int NOT NULL,
            file_url text NOT NULL,
            dimensions json,
            field_schema json,
            status varchar(20) NOT NULL DEFAULT 'DRAFT',
            created_at datetime(3) NULL,
            INDEX idx_template_versions_template_id (template_id),
            UNIQUE KEY idx_template_version_number (template_id, version_number)
        )
    `)
	if result.Error != nil {
		return fmt.Errorf("failed to create template_versions table: %w", result.Error)
	}

	ensureVersionColumns := map[string]string{
		"dimensions":   "ALTER TABLE template_versions ADD COLUMN dimensions json",
		"field_schema": "ALTER TABLE template_versions ADD COLUMN field_schema json",
		"status":       "ALTER TABLE template_versions ADD COLUMN status varchar(20) NOT NULL DEFAULT 'DRAFT'",
	}

	for column, stmt := range ensureVersionColumns {
		if err := ensureColumn(db, "template_versions", column, stmt); err != nil {
			return err
		}
	}

	fmt.Println("Ensuring submissions table exists...")
	result = db.Exec(`
        CREATE TABLE IF NOT EXISTS submissions (
            id varchar(36) PRIMARY KEY,
            template_id varchar(36) NOT NULL,
            version_id varchar(36) NOT NULL,
            payload json NOT NULL,
            output_url text,
            status varchar(20) DEFAULT 'pending',
            created_at datetime(3) NULL,
            INDEX idx_submissions_template_id (template_id),
            INDEX idx_submissions_version_id (version_id)
        )
    `)
	if result.Error != nil {
		return fmt.Errorf("failed to create submissions table: %w", result.Error)
	}

	if err := ensureColumn(db, "submissions", "output_url",
		"ALTER TABLE submissions ADD COLUMN output_url text"); err != nil {
		return err
	}

	fmt.Println("Ensuring activity_logs table exists...")
	result = db.Exec(`
        CREATE TABLE IF NOT EXISTS activity_logs (
            id varchar(36) PRIMARY KEY,
            method varchar(10) NOT NULL,
            path varchar(255) NOT NULL,
            user_agent text,
            ip_address varchar(45),
            query_params text,
            status_code int NOT NULL,
            response_time bigint NOT NULL,
            created_at datetime(3) NULL,
            updated_at datetime(3) NULL,
            deleted_at datetime(3) NULL,
            INDEX idx_activity_logs_deleted_at (deleted_at),
            INDEX idx_activity_logs_method (method),
            INDEX idx_activity_logs_created_at (created_at)
        )
    `)
	if result.Error != nil {
		return fmt.Errorf("failed to create activity_logs table: %w", result.Error)
	}

	fmt.Println("Tables created/verified successfully")
	return nil
}

func ensureColumn(db *gorm.DB, table, column, statement string) error {
	if db.Migrator().HasColumn(table, column) {
		return nil
	}

	fmt.Printf("Adding missing column %s.%s...\n", table, column)
	if err := db.Exec(statement).Error; err != nil {
		return fmt.Errorf("failed to add column %s.%s: %w", table, column, err)
	}

	return nil
}

func CloseDB(db *gorm.DB) error {
	if db != nil {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
