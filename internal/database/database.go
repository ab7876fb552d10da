package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/irenemg8/chatbot-sub001/internal/models"
)

// Open connects to the custom-pattern database and migrates the schema.
// The database is optional: deployments without a DSN run on the
// built-in pattern set only.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect pattern database: %w", err)
	}
	if err := db.AutoMigrate(&models.Pattern{}); err != nil {
		return nil, fmt.Errorf("migrate pattern schema: %w", err)
	}
	return db, nil
}
