package db

import (
	"fmt"

	"boarddash/internal/logging"
	"boarddash/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to PostgreSQL and migrates the schema.
func Open(dsn string) (*gorm.DB, error) {
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	logging.L().Info("Database connection established")

	if err := Migrate(conn); err != nil {
		return nil, err
	}
	return conn, nil
}

// Migrate creates or updates all tables. Unique (post_id, user_id) indexes on
// likes and bookmarks are created here, so the store itself rejects duplicates.
func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Bookmark{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	logging.L().Info("Database migration completed")
	return nil
}

// SeedCategories creates the given categories when none exist yet.
func SeedCategories(conn *gorm.DB, names []string) error {
	if len(names) == 0 {
		return nil
	}

	var count int64
	if err := conn.Model(&models.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logging.L().Debug("Categories already seeded, skipping")
		return nil
	}

	for _, name := range names {
		if err := conn.Create(&models.Category{Name: name}).Error; err != nil {
			logging.L().Warn("Failed to create category", zap.String("name", name), zap.Error(err))
		}
	}
	logging.L().Info("Initial categories created", zap.Int("count", len(names)))
	return nil
}
