package model

import "time"

// ReaderSettings holds per-user reader preferences. Persisted through GORM,
// separate from the sql.DB repositories used by the older tables.
type ReaderSettings struct {
	ID            int64     `gorm:"primaryKey" json:"-"`
	UserID        int64     `gorm:"uniqueIndex;not null" json:"userId"`
	MusicVolume   float64   `gorm:"default:0.3" json:"musicVolume"`
	EffectsVolume float64   `gorm:"default:0.5" json:"effectsVolume"`
	SpeechRate    float64   `gorm:"default:0.85" json:"speechRate"`
	VoiceLang     string    `gorm:"size:16;default:en-US" json:"voiceLang"`
	ListeningMode bool      `gorm:"default:false" json:"listeningMode"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"-"`
}

// TableName keeps the table name in line with the other snake_case tables.
func (ReaderSettings) TableName() string { return "reader_settings" }

// DefaultReaderSettings returns the settings applied to a user who has never
// saved any.
func DefaultReaderSettings(userID int64) *ReaderSettings {
	return &ReaderSettings{
		UserID:        userID,
		MusicVolume:   0.3,
		EffectsVolume: 0.5,
		SpeechRate:    0.85,
		VoiceLang:     "en-US",
	}
}
