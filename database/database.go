package database

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"limitfree/logging"
	"limitfree/models"
)

// Init opens the sqlite database named by dsn.
// "memory" (or an empty dsn) opens a shared in-memory database.
func Init(dsn string, log *zap.Logger) (*gorm.DB, error) {
	log = log.Named("Database")
	gormConfig := &gorm.Config{
		Logger: logging.NewGormLogger(log),
	}

	var (
		db  *gorm.DB
		err error
	)
	if dsn == "memory" || dsn == "" {
		log.Info("Initializing in-memory SQLite database")
		db, err = gorm.Open(sqlite.Open("file::memory:?cache=shared"), gormConfig)
	} else {
		log.Info("Initializing file-based SQLite database", zap.String("dsn", dsn))
		dbDir := filepath.Dir(dsn)
		if dbDir != "." && dbDir != "/" {
			if mkdirErr := os.MkdirAll(dbDir, 0755); mkdirErr != nil {
				return nil, fmt.Errorf("failed to create database directory '%s': %w", dbDir, mkdirErr)
			}
		}
		db, err = gorm.Open(sqlite.Open(dsn), gormConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database (DSN: '%s'): %w", dsn, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	// sqlite allows a single writer; quest trees are generated concurrently.
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Info("Database connection established")
	return db, nil
}

// Migrate creates or updates every table the application uses.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.AssessmentSession{},
		&models.AssessmentResult{},
		&models.GuestQuota{},
		&models.PassionShuttle{},
		&models.QuestTree{},
		&models.Quest{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}
