package server

import (
	"encoding/json"
	"net/http"

	"sonicpdf/logger"
)

// RecommendRequest carries one page of text for cue recommendation.
type RecommendRequest struct {
	DocumentID int64  `json:"documentId,omitempty"`
	Page       int    `json:"page,omitempty"`
	Text       string `json:"text"`
}

// RecommendHandler returns validated audio cues for a page of text. The
// result is safe to schedule as-is: every ID exists in the catalogs and the
// timelines are sane.
func (h *APIHandler) RecommendHandler(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	rec, err := h.recommender.ForPage(r.Context(), req.DocumentID, req.Page, req.Text, h.isPremium(userID))
	if err != nil {
		logger.Error("recommendation failed", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to build recommendation")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
