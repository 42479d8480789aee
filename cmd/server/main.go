package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/globetrotter/api/internal/config"
	"github.com/globetrotter/api/internal/database"
	"github.com/globetrotter/api/internal/handler"
	"github.com/globetrotter/api/internal/middleware"
	"github.com/globetrotter/api/internal/repository"
	"github.com/globetrotter/api/internal/service"
)

func main() {
	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection
	db := database.NewSurrealDB(database.Config{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
	})

	ctx := context.Background()
	if err := db.Connect(ctx); err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	slog.Info("connected to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Database),
	)

	// Initialize repositories
	destRepo := repository.NewDestinationRepository(db)
	userRepo := repository.NewUserRepository(db)
	gameRepo := repository.NewGameRepository(db)

	// Initialize services
	userService := service.NewUserService(userRepo)

	destinationService := service.NewDestinationService(service.DestinationServiceConfig{
		Repo:  destRepo,
		Games: gameRepo,
		Users: userRepo,
	})

	gameService := service.NewGameService(service.GameServiceConfig{
		GameRepo:     gameRepo,
		UserRepo:     userRepo,
		UserService:  userService,
		Destinations: destinationService,
		FrontendURL:  cfg.Game.FrontendURL,
	})

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Rate:   100, // 100 requests per minute
		Window: time.Minute,
		Burst:  20, // Allow bursts up to 20
	})
	defer rateLimiter.Stop()

	// Initialize handlers
	destinationHandler := handler.NewDestinationHandler(destinationService, userService)
	userHandler := handler.NewUserHandler(userService, gameService)
	gameHandler := handler.NewGameHandler(gameService)

	// Create router and register routes
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("GET /health", handler.Health)

	// Destination endpoints
	mux.HandleFunc("GET /v1/destinations/random", destinationHandler.Random)
	mux.HandleFunc("POST /v1/destinations/validate", destinationHandler.Validate)
	mux.HandleFunc("GET /v1/destinations", destinationHandler.List)
	mux.HandleFunc("POST /v1/destinations", destinationHandler.Create)
	mux.HandleFunc("POST /v1/destinations/import", destinationHandler.Import)
	mux.HandleFunc("GET /v1/destinations/count", destinationHandler.Count)

	// Game endpoints
	mux.HandleFunc("POST /v1/games", gameHandler.Start)
	mux.HandleFunc("GET /v1/games/{gameId}", gameHandler.Get)
	mux.HandleFunc("POST /v1/games/{gameId}/round", gameHandler.NextRound)
	mux.HandleFunc("POST /v1/games/{gameId}/answer", gameHandler.SubmitAnswer)
	mux.HandleFunc("POST /v1/games/{gameId}/end", gameHandler.End)
	mux.HandleFunc("GET /v1/games/user/{userId}", gameHandler.ListByUser)

	// User endpoints
	mux.HandleFunc("POST /v1/users/register", userHandler.Register)
	mux.HandleFunc("GET /v1/users/{userId}", userHandler.Get)
	mux.HandleFunc("GET /v1/users/username/{username}", userHandler.GetByUsername)
	mux.HandleFunc("GET /v1/users/challenge/{token}", userHandler.GetByChallengeToken)
	mux.HandleFunc("POST /v1/users/challenge", userHandler.CreateChallenge)
	mux.HandleFunc("POST /v1/users/challenge/accept", userHandler.AcceptChallenge)

	// Apply global middleware
	wrapped := middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.Logger,
		middleware.Recovery,
		middleware.CORS(cfg.Server.AllowedOrigins),
		middleware.RateLimit(rateLimiter),
		middleware.Compress,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      wrapped,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	slog.Info("server exited")
}
