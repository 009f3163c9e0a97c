package http

import (
	"context"
	"net/http"
	"time"

	"github.com/frontandrew/fleet/internal/delivery/http/middleware"
	"github.com/frontandrew/fleet/internal/domain"
	"github.com/frontandrew/fleet/internal/pkg/config"
	"github.com/frontandrew/fleet/internal/pkg/logger"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Pinger - зависимость, доступность которой показывает /health
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers - набор HTTP обработчиков API
type Handlers struct {
	Auth        *AuthHandler
	Fleet       *FleetHandler
	Rental      *RentalHandler
	Maintenance *MaintenanceHandler
	Image       *ImageHandler
	Protocol    *ProtocolHandler
	Report      *ReportHandler
}

// Router содержит все зависимости для HTTP роутера
type Router struct {
	handlers    Handlers
	tokens      middleware.TokenValidator
	rateLimiter *middleware.RateLimiter
	health      map[string]Pinger
	uploadDir   string
	config      *config.Config
	logger      logger.Logger
}

// NewRouter создает новый HTTP router. rateLimiter может быть nil
func NewRouter(
	handlers Handlers,
	tokens middleware.TokenValidator,
	rateLimiter *middleware.RateLimiter,
	health map[string]Pinger,
	uploadDir string,
	config *config.Config,
	logger logger.Logger,
) *Router {
	return &Router{
		handlers:    handlers,
		tokens:      tokens,
		rateLimiter: rateLimiter,
		health:      health,
		uploadDir:   uploadDir,
		config:      config,
		logger:      logger,
	}
}

// Setup настраивает все маршруты
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Глобальные middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.TracingMiddleware(rt.config.Server.ServiceName))
	r.Use(middleware.RecoveryMiddleware(rt.logger))
	r.Use(middleware.LoggingMiddleware(rt.logger))
	r.Use(middleware.CORSMiddleware(middleware.CORSConfig{
		AllowedOrigins: rt.config.CORS.AllowedOrigins,
		AllowedMethods: rt.config.CORS.AllowedMethods,
		AllowedHeaders: rt.config.CORS.AllowedHeaders,
	}))
	if rt.rateLimiter != nil {
		r.Use(rt.rateLimiter.Middleware())
	}

	r.Get("/health", rt.healthCheck)

	// Загруженные фотографии раздаются статикой
	publicPath := rt.config.Storage.PublicPath
	r.Handle(publicPath+"/*", http.StripPrefix(publicPath+"/", http.FileServer(http.Dir(rt.uploadDir))))

	h := rt.handlers
	managers := middleware.RequireRole(domain.RoleAdmin, domain.RoleManager)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", rt.healthCheck)

		// Public routes (без аутентификации)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.Post("/refresh", h.Auth.Refresh)
		})

		// Protected routes (требуют аутентификации)
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(rt.tokens))

			r.Get("/auth/me", h.Auth.GetMe)
			r.Post("/auth/logout", h.Auth.Logout)

			r.Route("/fleet", func(r chi.Router) {
				r.Get("/dictionaries", h.Fleet.Dictionaries)
				r.Get("/availability", h.Fleet.Availability)

				r.Route("/vehicles", func(r chi.Router) {
					r.Get("/", h.Fleet.ListVehicles)
					r.Post("/", h.Fleet.CreateVehicle)
					r.Get("/upcoming-service", h.Fleet.UpcomingService)

					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", h.Fleet.GetVehicle)
						r.Put("/", h.Fleet.UpdateVehicle)
						r.With(managers).Delete("/", h.Fleet.DeleteVehicle)
						r.Patch("/status", h.Fleet.UpdateStatus)
						r.Get("/maintenance", h.Maintenance.ListVehicleMaintenance)
						r.Get("/fuel", h.Maintenance.ListVehicleFuel)
						r.Get("/fuel/stats", h.Maintenance.FuelStats)
					})
				})

				r.Route("/rentals", func(r chi.Router) {
					r.Get("/", h.Rental.ListRentals)
					r.Post("/", h.Rental.CreateRental)

					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", h.Rental.GetRental)
						r.Put("/", h.Rental.UpdateRental)
						r.With(managers).Delete("/", h.Rental.DeleteRental)
						r.Post("/start", h.Rental.StartRental)
						r.Post("/complete", h.Rental.CompleteRental)
						r.Post("/cancel", h.Rental.CancelRental)
						r.Patch("/status", h.Rental.UpdateStatus)
					})
				})

				r.Route("/maintenance", func(r chi.Router) {
					r.Get("/", h.Maintenance.ListMaintenance)
					r.Post("/", h.Maintenance.CreateMaintenance)
					r.Get("/{id}", h.Maintenance.GetMaintenance)
					r.With(managers).Delete("/{id}", h.Maintenance.DeleteMaintenance)
				})

				r.Route("/fuel", func(r chi.Router) {
					r.Post("/", h.Maintenance.CreateFuel)
					r.With(managers).Delete("/{id}", h.Maintenance.DeleteFuel)
				})

				r.Route("/images", func(r chi.Router) {
					r.Get("/", h.Image.List)
					r.Post("/", h.Image.Upload)
					r.Delete("/{id}", h.Image.Delete)
				})
			})

			r.Route("/protocols", func(r chi.Router) {
				r.Get("/", h.Protocol.ListProtocols)
				r.Post("/", h.Protocol.CreateProtocol)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Protocol.GetProtocol)
					r.Put("/", h.Protocol.UpdateProtocol)
					r.With(managers).Delete("/", h.Protocol.DeleteProtocol)
					r.Patch("/status", h.Protocol.UpdateStatus)
					r.Post("/comments", h.Protocol.AddComment)
				})
			})

			r.Route("/financial-reports", func(r chi.Router) {
				r.Get("/dashboard", h.Report.Dashboard)
				r.Get("/summary", h.Report.Summary)
				r.Get("/comparison", h.Report.Comparison)
				r.Get("/break-even", h.Report.BreakEven)
			})
		})
	})

	return r
}

// healthCheck проверяет зависимости; при недоступности любой из них - 503
func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	code := http.StatusOK
	checks := make(map[string]string, len(rt.health))
	for name, p := range rt.health {
		if err := p.Ping(ctx); err != nil {
			checks[name] = err.Error()
			status = "unhealthy"
			code = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	respondJSON(w, code, map[string]interface{}{
		"status": status,
		"checks": checks,
	})
}
