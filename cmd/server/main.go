package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"vstepprep/internal/config"
	"vstepprep/internal/database"
	"vstepprep/internal/handlers"
	"vstepprep/internal/logger"
	"vstepprep/internal/metrics"
	"vstepprep/internal/models"
	"vstepprep/internal/repository"
	"vstepprep/internal/security"
	"vstepprep/internal/service"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	defer db.Close()

	log.WithField("type", cfg.DatabaseType).Info("database connection established")

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}
	log.Info("migrations completed")

	// Repositories
	userRepo := repository.NewUserRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	answerRepo := repository.NewAnswerRepository(db)
	leaderboardRepo := repository.NewLeaderboardRepository(db)

	// Services
	tokens := security.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	authService := service.NewAuthService(userRepo, tokens)
	questionService := service.NewQuestionService(questionRepo)
	practiceService := service.NewPracticeService(questionRepo, sessionRepo, answerRepo)
	statsService := service.NewStatsService(leaderboardRepo)

	emailService, err := service.NewEmailService(log, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize email service")
	}

	oauthConfig := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.OAuthRedirectBaseURL + "/api/auth/google/callback",
		Scopes:       []string{"openid", "email", "profile"},
	}

	// Handlers
	m := metrics.New()
	limiter := security.NewRateLimiter(30, time.Minute)
	middleware := handlers.NewMiddleware(tokens, authService, limiter, log, m)
	authHandler := handlers.NewAuthHandler(authService, log, oauthConfig, googleUserInfoURL)
	practiceHandler := handlers.NewPracticeHandler(practiceService, emailService, log, m)
	questionHandler := handlers.NewQuestionHandler(questionService, log)
	statsHandler := handlers.NewStatsHandler(statsService, log)

	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("POST /api/auth/register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /api/auth/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("GET /api/auth/google/start", authHandler.StartOAuth)
	mux.HandleFunc("GET /api/auth/google/callback", authHandler.OAuthCallback)
	mux.Handle("GET /metrics", m.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Authenticated routes
	mux.HandleFunc("GET /api/auth/me", middleware.RequireAuth(authHandler.Me))
	mux.HandleFunc("POST /api/sessions", middleware.RequireAuth(practiceHandler.StartSession))
	mux.HandleFunc("GET /api/sessions", middleware.RequireAuth(practiceHandler.History))
	mux.HandleFunc("GET /api/sessions/{id}", middleware.RequireAuth(practiceHandler.GetSession))
	mux.HandleFunc("POST /api/sessions/{id}/answers", middleware.RequireAuth(practiceHandler.SubmitAnswer))
	mux.HandleFunc("POST /api/sessions/{id}/pause", middleware.RequireAuth(practiceHandler.PauseSession))
	mux.HandleFunc("POST /api/sessions/{id}/resume", middleware.RequireAuth(practiceHandler.ResumeSession))
	mux.HandleFunc("POST /api/sessions/{id}/complete", middleware.RequireAuth(practiceHandler.CompleteSession))
	mux.HandleFunc("POST /api/sessions/{id}/abandon", middleware.RequireAuth(practiceHandler.AbandonSession))
	mux.HandleFunc("GET /api/sessions/{id}/results", middleware.RequireAuth(practiceHandler.SessionResults))
	mux.HandleFunc("GET /api/questions/{id}", middleware.RequireAuth(questionHandler.GetQuestion))
	mux.HandleFunc("GET /api/leaderboard", middleware.RequireAuth(statsHandler.Leaderboard))
	mux.HandleFunc("GET /api/stats/me", middleware.RequireAuth(statsHandler.MyStats))

	// Authoring routes
	mux.HandleFunc("POST /api/questions", middleware.RequireRole(questionHandler.CreateQuestion, models.RoleTeacher, models.RoleAdmin))
	mux.HandleFunc("GET /api/questions", middleware.RequireRole(questionHandler.ListQuestions, models.RoleTeacher, models.RoleAdmin))

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      middleware.Instrument(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("addr", addr).Info("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
