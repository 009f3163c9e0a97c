package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	deliveryHTTP "github.com/frontandrew/fleet/internal/delivery/http"
	"github.com/frontandrew/fleet/internal/delivery/http/middleware"
	"github.com/frontandrew/fleet/internal/infrastructure/events"
	"github.com/frontandrew/fleet/internal/infrastructure/storage"
	"github.com/frontandrew/fleet/internal/pkg/config"
	"github.com/frontandrew/fleet/internal/pkg/database"
	"github.com/frontandrew/fleet/internal/pkg/jwt"
	"github.com/frontandrew/fleet/internal/pkg/logger"
	"github.com/frontandrew/fleet/internal/pkg/redis"
	"github.com/frontandrew/fleet/internal/repository"
	"github.com/frontandrew/fleet/internal/repository/cached"
	"github.com/frontandrew/fleet/internal/repository/postgres"
	"github.com/frontandrew/fleet/internal/usecase/auth"
	"github.com/frontandrew/fleet/internal/usecase/fleet"
	"github.com/frontandrew/fleet/internal/usecase/image"
	"github.com/frontandrew/fleet/internal/usecase/maintenance"
	"github.com/frontandrew/fleet/internal/usecase/protocol"
	"github.com/frontandrew/fleet/internal/usecase/rental"
	"github.com/frontandrew/fleet/internal/usecase/report"
	"github.com/frontandrew/fleet/migrations"
)

// tokenCleanupInterval - период удаления истекших refresh токенов
const tokenCleanupInterval = time.Hour

func main() {
	// =========================================================================
	// Загрузка конфигурации
	// =========================================================================

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// =========================================================================
	// Инициализация logger
	// =========================================================================

	log := logger.New(cfg.Logger.Level, cfg.Logger.Format, cfg.Logger.Output)
	logger.SetGlobalLogger(log)
	log.Info("Starting fleet API server", map[string]interface{}{
		"service": cfg.Server.ServiceName,
	})

	// =========================================================================
	// Подключение к PostgreSQL и миграции
	// =========================================================================

	ctx := context.Background()
	db, err := database.Connect(ctx, &cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer database.Close(db)

	log.Info("Connected to PostgreSQL", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Database,
	})

	applied, err := database.Migrate(ctx, db, migrations.FS)
	if err != nil {
		log.Fatal("Failed to apply migrations", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if len(applied) > 0 {
		log.Info("Migrations applied", map[string]interface{}{
			"migrations": applied,
		})
	}

	// =========================================================================
	// Подключение к Redis. Без Redis сервер работает без кэша
	// =========================================================================

	health := map[string]deliveryHTTP.Pinger{"postgres": db}

	redisClient, err := redis.NewClient(redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis is not available, caching disabled", map[string]interface{}{
			"error":   err.Error(),
			"address": cfg.Redis.Address(),
		})
	} else {
		defer redisClient.Close()
		health["redis"] = redisClient
		log.Info("Connected to Redis", map[string]interface{}{
			"address": cfg.Redis.Address(),
		})
	}

	// =========================================================================
	// Создание repositories
	// =========================================================================

	userRepo := postgres.NewUserRepository(db)
	refreshTokenRepo := postgres.NewRefreshTokenRepository(db)
	rentalRepo := postgres.NewRentalRepository(db)
	maintenanceRepo := postgres.NewMaintenanceRepository(db)
	fuelRepo := postgres.NewFuelEntryRepository(db)
	protocolRepo := postgres.NewProtocolRepository(db)
	imageRepo := postgres.NewImageRepository(db)

	var vehicleRepo repository.VehicleRepository = postgres.NewVehicleRepository(db)
	var reportCache report.Cache
	if redisClient != nil {
		vehicleRepo = cached.NewVehicleRepository(vehicleRepo, redisClient, cfg.Cache.VehicleTTL, log)
		reportCache = redisClient
	}

	log.Info("Repositories initialized")

	// =========================================================================
	// Публикация событий и хранилище файлов
	// =========================================================================

	var publisher events.Publisher = events.Noop{}
	if cfg.Events.NATSURL != "" {
		natsPublisher, err := events.NewNATSPublisher(cfg.Events.NATSURL, cfg.Events.SubjectPrefix, cfg.Server.ServiceName)
		if err != nil {
			log.Warn("NATS is not available, events disabled", map[string]interface{}{
				"error": err.Error(),
				"url":   cfg.Events.NATSURL,
			})
		} else {
			publisher = natsPublisher
			log.Info("Publishing events to NATS", map[string]interface{}{
				"url":    cfg.Events.NATSURL,
				"prefix": cfg.Events.SubjectPrefix,
			})
		}
	}
	defer func() { _ = publisher.Close() }()

	fileStore, err := storage.NewLocalStore(cfg.Storage.UploadDir, cfg.Storage.PublicPath)
	if err != nil {
		log.Fatal("Failed to prepare upload directory", map[string]interface{}{
			"error": err.Error(),
			"dir":   cfg.Storage.UploadDir,
		})
	}

	// =========================================================================
	// Создание JWT token service
	// =========================================================================

	tokenService := jwt.NewTokenService(
		cfg.JWT.SecretKey,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	// =========================================================================
	// Создание use case services
	// =========================================================================

	authService := auth.NewService(userRepo, refreshTokenRepo, tokenService, log)
	fleetService := fleet.NewService(vehicleRepo, rentalRepo, publisher, log)
	rentalService := rental.NewService(rentalRepo, vehicleRepo, publisher, log)
	maintenanceService := maintenance.NewService(maintenanceRepo, fuelRepo, vehicleRepo, log)
	imageService := image.NewService(imageRepo, fileStore, log)
	protocolService := protocol.NewService(protocolRepo, publisher, log)
	reportService := report.NewService(
		vehicleRepo,
		rentalRepo,
		maintenanceRepo,
		fuelRepo,
		protocolRepo,
		reportCache,
		report.Config{
			FixedMonthlyCosts: cfg.Finance.FixedMonthlyCosts,
			DashboardTTL:      cfg.Cache.DashboardTTL,
		},
		log,
	)

	log.Info("Use case services initialized")

	// =========================================================================
	// Создание HTTP handlers и router
	// =========================================================================

	handlers := deliveryHTTP.Handlers{
		Auth:        deliveryHTTP.NewAuthHandler(authService, log),
		Fleet:       deliveryHTTP.NewFleetHandler(fleetService, log),
		Rental:      deliveryHTTP.NewRentalHandler(rentalService, log),
		Maintenance: deliveryHTTP.NewMaintenanceHandler(maintenanceService, log),
		Image:       deliveryHTTP.NewImageHandler(imageService, cfg.Storage.MaxUploadSize, log),
		Protocol:    deliveryHTTP.NewProtocolHandler(protocolService, authService, log),
		Report:      deliveryHTTP.NewReportHandler(reportService, log),
	}

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	router := deliveryHTTP.NewRouter(
		handlers,
		authService,
		rateLimiter,
		health,
		cfg.Storage.UploadDir,
		cfg,
		log,
	)

	handler := router.Setup()

	log.Info("HTTP router configured")

	// =========================================================================
	// Создание HTTP сервера
	// =========================================================================

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// =========================================================================
	// Запуск сервера и фоновой очистки
	// =========================================================================

	serverErrors := make(chan error, 1)

	go func() {
		log.Info("API server listening", map[string]interface{}{
			"address": srv.Addr,
		})
		serverErrors <- srv.ListenAndServe()
	}()

	stopCleanup := make(chan struct{})
	if rateLimiter != nil {
		go func() {
			ticker := time.NewTicker(time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					rateLimiter.Cleanup()
				case <-stopCleanup:
					return
				}
			}
		}()
	}

	// Истекшие refresh токены удаляем раз в час
	go func() {
		ticker := time.NewTicker(tokenCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				_ = authService.PurgeExpiredTokens(ctx)
				cancel()
			case <-stopCleanup:
				return
			}
		}
	}()
	defer close(stopCleanup)

	// =========================================================================
	// Graceful shutdown
	// =========================================================================

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error", map[string]interface{}{
				"error": err.Error(),
			})
		}

	case sig := <-shutdown:
		log.Info("Shutdown signal received", map[string]interface{}{
			"signal": sig.String(),
		})

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Graceful shutdown failed", map[string]interface{}{
				"error": err.Error(),
			})

			// Принудительное закрытие
			if err := srv.Close(); err != nil {
				log.Error("Failed to close server", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}

		log.Info("Server stopped gracefully")
	}
}
