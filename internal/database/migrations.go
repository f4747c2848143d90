package database

import (
	"fmt"

	"github.com/mkume/task-tracker/internal/models"
	"github.com/rs/zerolog/log"
)

// Migrate creates or updates the users and tasks tables. Index creation is
// driven by the gorm index tags on the models.
func Migrate() error {
	log.Info().Msg("Running database migrations")
	err := DB.AutoMigrate(
		&models.User{},
		&models.Task{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info().Msg("Database migrations completed")
	return nil
}
