package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"
	"github.com/sirupsen/logrus"

	"gatewarden/internal/caching"
	"gatewarden/internal/db"
	"gatewarden/internal/handlers"
	"gatewarden/internal/jobs/background"
	"gatewarden/internal/middleware"
	"gatewarden/internal/models"
	"gatewarden/internal/recognition"
	"gatewarden/internal/repositories"
	"gatewarden/internal/services"
)

const version = "1.0.0"

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using environment")
	}

	// Database connection
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	if err := db.Migrate(databaseURL); err != nil {
		log.WithError(err).Fatal("failed to apply migrations")
	}

	pool, err := pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer pool.Close()

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Warn("JWT_SECRET not set, using a generated development secret")
	}
	tokenTTL := durationEnv("TOKEN_TTL", 12*time.Hour)

	// Redis configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if parsed, err := strconv.Atoi(dbStr); err == nil {
			redisDB = parsed
		}
	}
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB, log)
	defer cacheSvc.Close()

	// MinIO configuration for snapshot archival
	minioEndpoint := envOr("MINIO_ENDPOINT", "localhost:9000")
	minioAccessKey := envOr("MINIO_ACCESS_KEY", "minioadmin")
	minioSecretKey := envOr("MINIO_SECRET_KEY", "minioadmin")
	minioBucket := envOr("MINIO_BUCKET", "gate-snapshots")
	minioUseSSL := os.Getenv("MINIO_USE_SSL") == "true"

	snapshotSvc, err := services.NewMinioSnapshotService(minioEndpoint, minioAccessKey, minioSecretKey, minioBucket, minioUseSSL)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize snapshot storage")
	}
	if err := snapshotSvc.EnsureBucket(context.Background()); err != nil {
		log.WithError(err).Warn("failed to ensure snapshot bucket")
	}

	// Recognizer collaborators
	recognizerTimeout := durationEnv("RECOGNIZER_TIMEOUT", 15*time.Second)
	plateReader := recognition.NewPlateClient(envOr("OCR_SERVICE_URL", "http://localhost:5001"), recognizerTimeout)
	faceRecognizer := recognition.NewFaceClient(envOr("FACE_SERVICE_URL", "http://localhost:5002"), recognizerTimeout)

	// Create repositories
	userRepo := repositories.NewUserRepo(pool)
	residentRepo := repositories.NewResidentRepo(pool)
	carRepo := repositories.NewCarRepo(pool)
	guestRepo := repositories.NewGuestRepo(pool)
	auditLogRepo := repositories.NewAuditLogsRepo(pool)

	// Create services
	auditSvc := services.NewAuditLogsService(auditLogRepo)
	authSvc := services.NewAuthService(userRepo, cacheSvc, jwtSecret, tokenTTL)
	plateSvc := services.NewPlateService(carRepo, guestRepo, auditSvc, log)
	faceSvc := services.NewFaceService(residentRepo, guestRepo, auditSvc, log)
	entrySvc := services.NewEntryService(plateReader, faceRecognizer, residentRepo, guestRepo, auditSvc, log)

	// Create handlers
	authHandlers := handlers.NewAuthHandlers(authSvc, userRepo, cacheSvc, log)
	gateHandlers := handlers.NewGateHandlers(
		plateReader,
		faceRecognizer,
		plateSvc,
		faceSvc,
		entrySvc,
		snapshotSvc,
		cacheSvc,
		durationEnv("GATE_PLATE_COOLDOWN", 10*time.Second),
		log,
	)
	guestHandlers := handlers.NewGuestHandlers(guestRepo, residentRepo, log)
	carHandlers := handlers.NewCarHandlers(carRepo, residentRepo, log)
	adminHandlers := handlers.NewAdminHandlers(userRepo, residentRepo, log)
	auditHandlers := handlers.NewAuditLogsHandlers(auditSvc, snapshotSvc, log)

	// Background maintenance
	scheduler, err := background.NewJobScheduler(auditSvc, snapshotSvc, cacheSvc, durationEnv("SNAPSHOT_RETENTION", 30*24*time.Hour), log)
	if err != nil {
		log.WithError(err).Fatal("failed to create job scheduler")
	}
	scheduler.Start()
	defer scheduler.Shutdown()

	// Create Echo instance
	e := echo.New()
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", handlers.HealthCheck)
	e.GET("/health/ready", func(c echo.Context) error {
		return handlers.ReadinessCheck(c, pool)
	})

	// Authentication
	e.POST("/login", authHandlers.Login)

	// Protected routes
	protected := e.Group("")
	protected.Use(middleware.JWTMiddleware(jwtSecret, authSvc))
	protected.POST("/logout", authHandlers.Logout)
	protected.GET("/me", authHandlers.Me)

	// Gatekeeper routes
	gate := protected.Group("/gate")
	gate.Use(middleware.RequireRole(models.RoleGatekeeper))
	gate.POST("/plate", gateHandlers.RecognizePlate)
	gate.POST("/face", gateHandlers.RecognizeFace)
	gate.POST("/verify", gateHandlers.VerifyEntry)

	// Resident routes
	my := protected.Group("/my")
	my.Use(middleware.RequireRole(models.RoleResident))
	my.GET("/guests", guestHandlers.ListGuests)
	my.POST("/guests", guestHandlers.InviteGuest)
	my.DELETE("/guests/:id", guestHandlers.DeleteGuest)
	my.GET("/cars", carHandlers.ListCars)
	my.POST("/cars", carHandlers.RegisterCar)

	// Admin routes
	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	admin.GET("/users", adminHandlers.ListUsers)
	admin.POST("/users", adminHandlers.CreateUser)
	admin.DELETE("/users/:id", adminHandlers.DeleteUser)
	admin.GET("/residents", adminHandlers.ListResidents)
	admin.PUT("/residents/:id/face", adminHandlers.EnrollFace)
	admin.GET("/audit-logs", auditHandlers.ListAuditLogs)
	admin.GET("/audit-logs/summary", auditHandlers.AuditSummary)
	admin.GET("/snapshots", auditHandlers.SnapshotURL)

	// Start server
	portStr := envOr("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.WithField("port", portStr).Fatal("invalid port")
	}

	log.WithFields(logrus.Fields{"version": version, "port": port}).Info("gatewarden server starting")
	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", port)))
}

func envOr(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}
