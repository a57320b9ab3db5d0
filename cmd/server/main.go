package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eventzone/booking-backend/internal/cache"
	"github.com/eventzone/booking-backend/internal/config"
	"github.com/eventzone/booking-backend/internal/database"
	"github.com/eventzone/booking-backend/internal/handlers"
	"github.com/eventzone/booking-backend/internal/kafka"
	"github.com/eventzone/booking-backend/internal/middleware"
	"github.com/eventzone/booking-backend/internal/services"
	"github.com/eventzone/booking-backend/pkg/clock"
	"github.com/eventzone/booking-backend/pkg/jwt"
	"github.com/eventzone/booking-backend/pkg/notify"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting EventZone booking backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	if cfg.Database.AutoMigrate {
		logger.Info("Applying database migrations...")
		if err := runMigrations(cfg.Database.URL, logger); err != nil {
			logger.Fatalf("Failed to migrate database: %v", err)
		}
	}

	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Optional infrastructure
	var bookingOpts []services.BookingServiceOption

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		cancel()
		if err != nil {
			logger.Fatalf("Failed to connect to redis: %v", err)
		}
		bookingOpts = append(bookingOpts, services.WithBookingLocker(cache.NewBookingLock(redisClient, cfg.Redis.BookingLockTTL)))
		logger.WithField("addr", cfg.Redis.Addr).Info("Booking locks enabled")
	}

	var producer *kafka.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer = kafka.NewProducer(cfg.Kafka, logger)
		bookingOpts = append(bookingOpts, services.WithEventPublisher(producer))
		logger.WithFields(logrus.Fields{
			"brokers": cfg.Kafka.Brokers,
			"topic":   cfg.Kafka.BookingTopic,
		}).Info("Booking event publishing enabled")
	}

	credentials, err := services.NewFileCredentialStore(cfg.Security.AdminCredentialsFile)
	if err != nil {
		logger.Fatalf("Failed to load admin credentials: %v", err)
	}

	// Initialize repositories
	userRepository := database.NewUserRepository(db)
	bookingRepository := database.NewBookingRepository(db)
	couponRepository := database.NewCouponRepository(db)
	eventRepository := database.NewEventRepository(db)
	selectionRepository := database.NewSelectionRepository(db)
	chatRepository := database.NewChatRepository(db)
	feedbackRepository := database.NewFeedbackRepository(db)
	statsRepository := database.NewStatsRepository(db)

	// Initialize services
	logger.Info("Initializing services...")
	realClock := clock.NewRealClock()
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	otpExpiry := time.Duration(cfg.OTP.ExpiryMinutes) * time.Minute

	couponService := services.NewCouponService(couponRepository, logger)
	bookingService := services.NewBookingService(bookingRepository, couponService, logger, bookingOpts...)
	receiptService := services.NewReceiptService(bookingService, realClock)
	otpService := services.NewOTPService(db, userRepository, otpExpiry, cfg.Security.BcryptCost, realClock, logger)
	authService := services.NewAuthService(userRepository, credentials, jwtService, cfg.Security.BcryptCost, logger)
	userService := services.NewUserService(userRepository, cfg.Security.BcryptCost, logger)
	auditService := services.NewAuditService(logger, cfg.Security.EnableAuditLog)
	rateLimitService := services.NewRateLimitService(db, services.RateLimitConfig{
		MaxIdentifierRequests: cfg.OTP.MaxRequests,
		IdentifierWindow:      cfg.OTP.RequestWindow,
		MaxIPRequests:         cfg.OTP.MaxIPRequests,
		IPWindow:              cfg.OTP.IPWindow,
		MaxFailedResets:       cfg.OTP.MaxFailedResets,
		FailedResetWindow:     cfg.OTP.FailedResetWindow,
		MaxFailedResetsIP:     cfg.OTP.MaxFailedResetsIP,
		FailedResetIPWin:      cfg.OTP.FailedResetIPWin,
	}, realClock)
	catalogService := services.NewCatalogService(eventRepository, selectionRepository, logger)
	messageService := services.NewMessageService(chatRepository, feedbackRepository, realClock, logger)
	reportService := services.NewReportService(statsRepository, userRepository)

	exposeOTP := cfg.OTP.Mode == "dev" && !cfg.IsProduction()
	if exposeOTP {
		logger.Warn("OTP dev mode: reset codes are returned in API responses")
	}

	cronService := services.NewCronService(otpService, cfg.OTP.CleanupCron, logger)
	cronService.AddCleanupJob("OTP rate limit", rateLimitService)
	if err := cronService.Start(); err != nil {
		logger.Fatalf("Failed to start cron service: %v", err)
	}

	h := handlers.Handlers{
		Auth:    handlers.NewAuthHandler(authService, otpService, userService, auditService, rateLimitService, notify.NewLogSender(logger), exposeOTP, logger),
		Profile: handlers.NewProfileHandler(userService, cfg.Storage.UploadDir, cfg.Storage.MaxUploadSize, logger),
		Booking: handlers.NewBookingHandler(bookingService, receiptService, logger),
		Catalog: handlers.NewCatalogHandler(catalogService, logger),
		Message: handlers.NewMessageHandler(messageService, logger),
		Admin:   handlers.NewAdminHandler(userService, catalogService, couponService, bookingService, messageService, reportService, logger),
	}

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	if cfg.Security.EnableRequestLog {
		router.Use(middleware.RequestLogger(logger))
	}

	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", handlers.HealthCheck(db, version))
	router.Static(handlers.UploadURLPrefix, cfg.Storage.UploadDir)
	handlers.RegisterRoutes(router, h, jwtService, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cronService.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.WithError(err).Warn("Failed to flush booking events")
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close redis client")
		}
	}

	logger.Info("Server exited successfully")
}

func runMigrations(databaseURL string, logger logrus.FieldLogger) error {
	migrator, err := database.NewMigrator(databaseURL, logger)
	if err != nil {
		return err
	}
	defer migrator.Close()
	return migrator.Up()
}
