package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"dicteeclash/internal/audio"
	"dicteeclash/internal/config"
	"dicteeclash/internal/database"
	"dicteeclash/internal/handlers"
	"dicteeclash/internal/morph"
	"dicteeclash/internal/observe"
	"dicteeclash/internal/repository"
	"dicteeclash/internal/security"
	"dicteeclash/internal/service"
	"dicteeclash/internal/textgen"
	"dicteeclash/internal/textgen/remote"
	"dicteeclash/internal/wordlist"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatalf("JWT_SECRET must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(ctx, database.MigrationsFS(cfg.MigrationsPath)); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Seed blocked words filter for student names
	if err := db.SeedBlockedWords(ctx, database.BlockedWordsURL); err != nil {
		log.Printf("Warning: Failed to seed blocked words filter: %v", err)
	}

	// Metrics
	metrics := observe.Noop()
	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		mp, shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceVersion: version})
		if err != nil {
			log.Fatalf("Failed to initialize metrics: %v", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Printf("Warning: Failed to shut down metrics: %v", err)
			}
		}()
		if metrics, err = observe.NewMetrics(mp); err != nil {
			log.Fatalf("Failed to create metrics: %v", err)
		}
		metricsHandler = observe.Handler()
	}

	tokens, err := security.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatalf("Failed to create token issuer: %v", err)
	}

	emailService, err := service.NewEmailService(ctx, cfg.SESRegion, cfg.SESFromEmail, "DictéeClash", cfg.AppBaseURL)
	if err != nil {
		log.Printf("Warning: Email disabled: %v", err)
	}

	// Dictation text synthesis
	library := textgen.DefaultLibrary()
	adapter := remote.New(service.LocalGenerator(library), morph.Default(),
		remote.WithAPIKey(cfg.SynthesisAPIKey),
		remote.WithBaseURL(cfg.SynthesisBaseURL),
		remote.WithModel(cfg.SynthesisModel),
		remote.WithTimeout(cfg.SynthesisTimeout),
	)
	if !adapter.Enabled() {
		log.Println("Remote text synthesis has no API key, dictations use local templates unless a key is sent")
	}

	var ttsService *audio.TTSService
	if cfg.TTSEnabled {
		ttsService = audio.NewTTSService(cfg.AudioCacheDir, "")
	}

	// Initialize repositories
	teacherRepo := repository.NewTeacherRepository(db)
	listRepo := repository.NewListRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	sessionRepo := repository.NewSessionRepository(db)

	// Initialize services
	authService := service.NewAuthService(teacherRepo, tokens, emailService)
	listService := service.NewListService(listRepo, emailService)
	studentService := service.NewStudentService(studentRepo, db)
	sessionService := service.NewSessionService(sessionRepo, studentRepo, listService)
	importService := service.NewImportService(wordlist.DefaultDetector(), metrics)
	drillService := service.NewDrillService(listService, library, adapter, ttsService, metrics)

	var googleProvider *handlers.OAuthProvider
	if cfg.GoogleOAuthEnabled() {
		googleProvider = &handlers.OAuthProvider{
			Name: "google",
			Config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				RedirectURL:  cfg.GoogleRedirectURL,
				Endpoint:     google.Endpoint,
				Scopes:       []string{"openid", "email", "profile"},
			},
			UserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		}
	}

	// Initialize handlers
	routes := &handlers.Routes{
		Middleware:    handlers.NewMiddleware(authService),
		Auth:          handlers.NewAuthHandler(authService, googleProvider),
		Lists:         handlers.NewListHandler(listService),
		Imports:       handlers.NewImportHandler(importService, cfg.UploadMaxSize),
		Drills:        handlers.NewDrillHandler(drillService),
		Sessions:      handlers.NewSessionHandler(sessionService, studentService),
		Students:      handlers.NewStudentHandler(studentService),
		AuthLimiter:   security.NewRateLimiter(10, time.Minute),
		ImportLimiter: security.NewRateLimiter(20, time.Minute),
		Ping:          db.PingContext,
		Metrics:       metricsHandler,
	}

	// Setup routes
	mux := http.NewServeMux()
	routes.Register(mux)

	// Wrap with request ID, logging and metrics middleware
	handler := handlers.RequestID(handlers.Logging(observe.Middleware(metrics)(mux)))

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()

	log.Println("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Warning: Graceful shutdown failed: %v", err)
	}
}
