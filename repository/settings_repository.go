package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"sonicpdf/model"
)

// SettingsRepository persists per-user reader preferences.
type SettingsRepository interface {
	GetByUserID(userID int64) (*model.ReaderSettings, error)
	Save(settings *model.ReaderSettings) error
}

// gormSettingsRepository implements SettingsRepository on GORM.
type gormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository creates a new gormSettingsRepository.
func NewGormSettingsRepository(db *gorm.DB) SettingsRepository {
	return &gormSettingsRepository{db: db}
}

// GetByUserID returns the user's settings, or the defaults when the user
// never saved any.
func (r *gormSettingsRepository) GetByUserID(userID int64) (*model.ReaderSettings, error) {
	var settings model.ReaderSettings
	err := r.db.Where("user_id = ?", userID).First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.DefaultReaderSettings(userID), nil
		}
		return nil, fmt.Errorf("failed to load settings for user %d: %w", userID, err)
	}
	return &settings, nil
}

// Save upserts the user's settings.
func (r *gormSettingsRepository) Save(settings *model.ReaderSettings) error {
	var existing model.ReaderSettings
	err := r.db.Where("user_id = ?", settings.UserID).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := r.db.Create(settings).Error; err != nil {
			return fmt.Errorf("failed to create settings for user %d: %w", settings.UserID, err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("failed to look up settings for user %d: %w", settings.UserID, err)
	default:
		settings.ID = existing.ID
		if err := r.db.Save(settings).Error; err != nil {
			return fmt.Errorf("failed to update settings for user %d: %w", settings.UserID, err)
		}
		return nil
	}
}
