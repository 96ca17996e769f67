package db

import (
	"errors"

	"github.com/storerate/storerate-backend/internal/app/model"
	"github.com/storerate/storerate-backend/pkg/logger"
	"github.com/storerate/storerate-backend/pkg/util"
	"gorm.io/gorm"
)

// Migrate runs schema migrations before the server accepts traffic.
func Migrate(database *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.User{},
		&model.Store{},
		&model.Rating{},
	}

	if err := database.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// EnsureAdmin creates the default admin account if no user exists with the
// given email. Idempotent across restarts.
func EnsureAdmin(database *gorm.DB, name, email, password string) error {
	var existing model.User
	err := database.Where("email = ?", email).First(&existing).Error
	if err == nil {
		logger.Debug("Admin account already present, skipping seed", map[string]interface{}{
			"email": email,
		})
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return err
	}

	admin := model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	}
	if err := database.Create(&admin).Error; err != nil {
		logger.Error("Failed to seed admin account", err, map[string]interface{}{
			"email": email,
		})
		return err
	}

	logger.Info("Default admin account created", map[string]interface{}{
		"user_id": admin.ID,
		"email":   email,
	})
	return nil
}
