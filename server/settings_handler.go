package server

import (
	"encoding/json"
	"net/http"

	"sonicpdf/logger"
	"sonicpdf/model"
)

// GetSettingsHandler returns the caller's reader settings, or defaults when
// nothing has been saved yet.
func (h *APIHandler) GetSettingsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	settings, err := h.settingsRepo.GetByUserID(userID)
	if err != nil {
		logger.Error("failed to load settings", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// SaveSettingsHandler upserts the caller's reader settings.
func (h *APIHandler) SaveSettingsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var settings model.ReaderSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	settings.UserID = userID

	if !validVolume(settings.MusicVolume) || !validVolume(settings.EffectsVolume) {
		writeError(w, http.StatusBadRequest, "Volumes must be between 0 and 1")
		return
	}
	if settings.SpeechRate < 0.1 || settings.SpeechRate > 10 {
		writeError(w, http.StatusBadRequest, "Speech rate must be between 0.1 and 10")
		return
	}

	if err := h.settingsRepo.Save(&settings); err != nil {
		logger.Error("failed to save settings", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to save settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func validVolume(v float64) bool { return v >= 0 && v <= 1 }
