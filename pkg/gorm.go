package pkg

import (
	"fmt"

	"github.com/SAP-F-2025/attempt-service/internal/config"
	"github.com/SAP-F-2025/attempt-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	logLevel := logger.Info
	if cfg.IsProduction() {
		logLevel = logger.Error
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Creates missing tables only; schema changes are handled outside this service.
	if err := db.AutoMigrate(&models.Question{}, &models.Test{}, &models.TestQuestion{}, &models.Attempt{}); err != nil {
		return nil, fmt.Errorf("failed to prepare schema: %w", err)
	}

	return db, nil
}
