package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"sonicpdf/cache"
	"sonicpdf/config"
	"sonicpdf/core/auth"
	"sonicpdf/core/recommend"
	"sonicpdf/db"
	"sonicpdf/logger"
	"sonicpdf/model"
	"sonicpdf/repository"
	"sonicpdf/storage"
)

// Start wires the application together and runs the HTTP server until a
// shutdown signal arrives.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     30,
	})

	auth.Configure(cfg.JWTSecret, cfg.JWTExpiresIn)

	if err := db.ConnectDB(cfg); err != nil {
		logger.Fatal("Failed to connect to database", logger.ErrorField(err))
	}
	defer db.CloseDB()
	if err := db.InitDB(); err != nil {
		logger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}

	if err := db.ConnectGormDB(cfg); err != nil {
		logger.Fatal("Failed to connect GORM", logger.ErrorField(err))
	}
	defer db.CloseGormDB()
	if err := db.AutoMigrateModels(&model.ReaderSettings{}); err != nil {
		logger.Fatal("Failed to migrate models", logger.ErrorField(err))
	}

	if err := db.ConnectRedis(cfg); err != nil {
		logger.Fatal("Failed to connect to Redis", logger.ErrorField(err))
	}
	defer db.CloseRedis()

	documents, err := storage.NewDocumentStore(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize document store", logger.ErrorField(err))
	}

	assets, err := storage.NewAssetLibrary(cfg.AssetDir, "/assets")
	if err != nil {
		logger.Fatal("Failed to index audio assets", logger.ErrorField(err))
	}
	defer assets.Close()

	recCache := cache.NewRecommendationCache(db.RedisClient, cfg.RecCacheTTL)

	var gemini recommend.Recommender
	if cfg.GeminiAPIKey != "" {
		gemini = recommend.NewGeminiRecommender(recommend.GeminiConfig{
			APIBaseURL: cfg.GeminiBaseURL,
			APIKey:     cfg.GeminiAPIKey,
			Model:      cfg.GeminiModel,
			Timeout:    cfg.GeminiTimeout,
		})
	} else {
		logger.Warn("no Gemini API key configured, keyword matcher serves all recommendations")
	}
	heuristic := recommend.NewHeuristicRecommender(time.Now().UnixNano())
	recommender := recommend.NewService(gemini, heuristic, recCache)

	userRepo := repository.NewMySQLUserRepository(db.DB)
	documentRepo := repository.NewMySQLDocumentRepository(db.DB)
	settingsRepo := repository.NewGormSettingsRepository(db.GormDB)

	apiHandler := NewAPIHandler(cfg, userRepo, documentRepo, settingsRepo,
		documents, assets, recommender, recCache)

	router := mux.NewRouter()
	router.Use(corsMiddleware(cfg.AllowOrigins))

	// Auth
	router.HandleFunc("/api/auth/register", apiHandler.RegisterHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", apiHandler.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/users/premium", apiHandler.AuthMiddleware(apiHandler.SetPremiumHandler)).Methods(http.MethodPut)

	// Documents
	router.HandleFunc("/api/documents", apiHandler.AuthMiddleware(apiHandler.UploadDocumentHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/documents", apiHandler.AuthMiddleware(apiHandler.ListDocumentsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/documents/{id}/url", apiHandler.AuthMiddleware(apiHandler.GetDocumentURLHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/documents/{id}/page", apiHandler.AuthMiddleware(apiHandler.UpdateLastPageHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/documents/{id}", apiHandler.AuthMiddleware(apiHandler.DeleteDocumentHandler)).Methods(http.MethodDelete)

	// Reader settings
	router.HandleFunc("/api/settings", apiHandler.AuthMiddleware(apiHandler.GetSettingsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/settings", apiHandler.AuthMiddleware(apiHandler.SaveSettingsHandler)).Methods(http.MethodPut)

	// Recommendations and the reading session
	router.HandleFunc("/api/recommend", apiHandler.AuthMiddleware(apiHandler.RecommendHandler)).Methods(http.MethodPost)
	router.HandleFunc("/ws/session", apiHandler.SessionHandler)

	// Audio catalog files
	router.PathPrefix("/assets/").Handler(
		http.StripPrefix("/assets/", http.FileServer(http.Dir(assets.Root()))))

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server listening", logger.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", logger.ErrorField(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", logger.ErrorField(err))
	}
}

// corsMiddleware applies permissive CORS headers for the reader frontend.
func corsMiddleware(allowOrigins string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowOrigins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Range")
			w.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Range")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
