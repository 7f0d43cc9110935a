package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"sonicpdf/cache"
	"sonicpdf/config"
	"sonicpdf/core/auth"
	"sonicpdf/core/recommend"
	"sonicpdf/logger"
	"sonicpdf/repository"
	"sonicpdf/storage"
)

// APIHandler bundles the dependencies of the HTTP and WebSocket endpoints.
type APIHandler struct {
	cfg          *config.Config
	userRepo     repository.UserRepository
	documentRepo repository.DocumentRepository
	settingsRepo repository.SettingsRepository
	documents    *storage.DocumentStore
	assets       *storage.AssetLibrary
	recommender  *recommend.Service
	recCache     *cache.RecommendationCache
}

// NewAPIHandler creates the handler with its dependencies.
func NewAPIHandler(
	cfg *config.Config,
	userRepo repository.UserRepository,
	documentRepo repository.DocumentRepository,
	settingsRepo repository.SettingsRepository,
	documents *storage.DocumentStore,
	assets *storage.AssetLibrary,
	recommender *recommend.Service,
	recCache *cache.RecommendationCache,
) *APIHandler {
	return &APIHandler{
		cfg:          cfg,
		userRepo:     userRepo,
		documentRepo: documentRepo,
		settingsRepo: settingsRepo,
		documents:    documents,
		assets:       assets,
		recommender:  recommender,
		recCache:     recCache,
	}
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Error("failed to encode response", logger.ErrorField(err))
		}
	}
}

// writeError writes a JSON error body.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// AuthMiddleware checks for a valid JWT token and stores the caller's
// identity in the request context.
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := auth.ParseToken(parts[1])
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), "userID", claims.UserID)
		ctx = context.WithValue(ctx, "username", claims.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// isPremium reports the account tier. Lookup failures read as non-premium
// so recommendations degrade to the keyword matcher instead of erroring.
func (h *APIHandler) isPremium(userID int64) bool {
	user, err := h.userRepo.GetUserByID(userID)
	if err != nil {
		logger.Warn("premium lookup failed", logger.Int64("user", userID), logger.ErrorField(err))
		return false
	}
	return user != nil && user.IsPremium
}

// GetUserIDFromContext extracts the user ID from the request context.
func GetUserIDFromContext(ctx context.Context) (int64, error) {
	userID, ok := ctx.Value("userID").(int64)
	if !ok {
		return 0, fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// GetUsernameFromContext extracts the username from the request context.
func GetUsernameFromContext(ctx context.Context) (string, error) {
	username, ok := ctx.Value("username").(string)
	if !ok {
		return "", fmt.Errorf("username not found in context")
	}
	return username, nil
}
