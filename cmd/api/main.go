package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/carelink/carelink-api/internal/config"
	"github.com/carelink/carelink-api/internal/event"
	"github.com/carelink/carelink-api/internal/handler"
	authHandler "github.com/carelink/carelink-api/internal/handler/auth"
	doctorHandler "github.com/carelink/carelink-api/internal/handler/doctor"
	mappingHandler "github.com/carelink/carelink-api/internal/handler/mapping"
	patientHandler "github.com/carelink/carelink-api/internal/handler/patient"
	"github.com/carelink/carelink-api/internal/middleware"
	"github.com/carelink/carelink-api/internal/repository/mongodb"
	"github.com/carelink/carelink-api/internal/router"
	authService "github.com/carelink/carelink-api/internal/service/auth"
	doctorService "github.com/carelink/carelink-api/internal/service/doctor"
	mappingService "github.com/carelink/carelink-api/internal/service/mapping"
	patientService "github.com/carelink/carelink-api/internal/service/patient"
	"github.com/carelink/carelink-api/internal/worker"
	"github.com/carelink/carelink-api/pkg/auth"
	"github.com/carelink/carelink-api/pkg/logger"
	"github.com/carelink/carelink-api/pkg/messaging"
	redisBroker "github.com/carelink/carelink-api/pkg/messaging/redis"
	"github.com/carelink/carelink-api/pkg/security"
)

func main() {
	// Optional .env for local development
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	appLogger := logger.NewLogger(&logger.Config{
		Level:      level,
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		Pretty:     cfg.Log.Pretty,
	})
	log.Logger = *appLogger.Zerolog()

	// Connect to the store and bootstrap the unique indexes the services
	// depend on.
	db, err := mongodb.NewDB(mongodb.Config{
		URI:            cfg.Mongo.URI,
		Database:       cfg.Mongo.Database,
		ConnectTimeout: cfg.Mongo.ConnectTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	if err := db.EnsureIndexes(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to create indexes")
	}

	// Optional event broker
	var broker messaging.Broker
	if cfg.Redis.URL != "" {
		broker, err = redisBroker.NewRedisBroker(redisBroker.Config{URL: cfg.Redis.URL}, appLogger.Zerolog())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer broker.Close()
	}
	events := event.NewEmitter(broker, cfg.Redis.Channel)

	// Repositories
	userRepo := mongodb.NewUserRepository(db)
	patientRepo := mongodb.NewPatientRepository(db)
	doctorRepo := mongodb.NewDoctorRepository(db)
	mappingRepo := mongodb.NewMappingRepository(db)

	// Services
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	hasher := security.NewBcryptHasher(12)
	authSvc := authService.NewService(userRepo, jwtSvc, hasher)
	patientSvc := patientService.NewService(patientRepo)
	doctorSvc := doctorService.NewService(doctorRepo)
	mappingSvc := mappingService.NewService(mappingRepo, patientRepo, doctorRepo)

	// Background integrity scan over assignments
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	if cfg.Metrics.Enabled {
		integrity := worker.NewIntegrityWorker(mappingRepo, patientRepo, doctorRepo, 15*time.Minute, appLogger.Zerolog())
		go integrity.Start(workerCtx)
	}

	// Handlers and router
	authMiddleware := middleware.NewAuthMiddleware(authSvc)
	r := router.NewRouter(
		authMiddleware,
		authHandler.NewHandler(authSvc, events),
		patientHandler.NewHandler(patientSvc, events),
		doctorHandler.NewHandler(doctorSvc, events),
		mappingHandler.NewHandler(mappingSvc, events),
		handler.NewHealthHandler(db),
		router.Config{
			RateLimitRPS:   rateLimitRPS(cfg),
			RateLimitBurst: cfg.RateLimit.Burst,
			CORS:           middleware.DefaultCORSConfig(),
			MetricsEnabled: cfg.Metrics.Enabled,
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}
	if err := db.Close(ctx); err != nil {
		log.Error().Err(err).Msg("failed to close mongodb connection")
	}

	log.Info().Msg("server exited properly")
}

func rateLimitRPS(cfg *config.Config) float64 {
	if !cfg.RateLimit.Enabled {
		return 0
	}
	return cfg.RateLimit.RPS
}
