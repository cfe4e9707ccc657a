package database

import (
	"fmt"

	"github.com/justsurfingit/hireme-ai/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the Postgres database and runs migrations.
func Connect(dsn string, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	log.Info("database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Info("database migrations applied")
	return db, nil
}

// Migrate creates or updates the tables for every model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Application{}, &models.Skill{}, &models.ApplicationEvent{}); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
