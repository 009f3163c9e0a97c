package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frontandrew/fleet/internal/domain"
	"github.com/frontandrew/fleet/internal/pkg/logger"
	"github.com/frontandrew/fleet/internal/repository"
	"github.com/frontandrew/fleet/internal/usecase/fleet"
	"github.com/google/uuid"
)

// FleetService определяет интерфейс сервиса автопарка
type FleetService interface {
	ListVehicles(ctx context.Context, filter repository.VehicleFilter) (*fleet.VehicleList, error)
	GetVehicle(ctx context.Context, id uuid.UUID) (*domain.FleetVehicle, error)
	CreateVehicle(ctx context.Context, req *fleet.VehicleInput) (*domain.FleetVehicle, error)
	UpdateVehicle(ctx context.Context, id uuid.UUID, req *fleet.UpdateVehicleRequest) (*domain.FleetVehicle, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, req *fleet.UpdateStatusRequest) (*domain.FleetVehicle, error)
	DeleteVehicle(ctx context.Context, id uuid.UUID) error
	UpcomingService(ctx context.Context) ([]*domain.FleetVehicle, error)
	Availability(ctx context.Context, dr domain.DateRange, category domain.VehicleCategory) ([]*domain.FleetVehicle, error)
	Dictionaries() domain.Dictionaries
}

// FleetHandler обрабатывает запросы по автомобилям автопарка
type FleetHandler struct {
	fleetService FleetService
	logger       logger.Logger
}

// NewFleetHandler создает новый handler
func NewFleetHandler(fleetService FleetService, logger logger.Logger) *FleetHandler {
	return &FleetHandler{
		fleetService: fleetService,
		logger:       logger,
	}
}

// ListVehicles возвращает автомобили по фильтру
// GET /api/v1/fleet/vehicles?status=&category=&usage_type=&search=&sort_by=&sort_desc=&include_inactive=
func (h *FleetHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.VehicleFilter{
		Status:    domain.VehicleStatus(q.Get("status")),
		Category:  domain.VehicleCategory(q.Get("category")),
		UsageType: domain.VehicleUsageType(q.Get("usage_type")),
		Search:    q.Get("search"),
		SortBy:    q.Get("sort_by"),
		Page:      queryPage(r),
	}
	filter.IncludeInactive, _ = strconv.ParseBool(q.Get("include_inactive"))
	filter.SortDesc, _ = strconv.ParseBool(q.Get("sort_desc"))

	list, err := h.fleetService.ListVehicles(r.Context(), filter)
	if err != nil {
		respondServiceError(w, h.logger, err, "list vehicles")
		return
	}

	respondList(w, list.Items, list.Total)
}

// GetVehicle возвращает автомобиль по ID
// GET /api/v1/fleet/vehicles/{id}
func (h *FleetHandler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	v, err := h.fleetService.GetVehicle(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get vehicle")
		return
	}

	respondData(w, http.StatusOK, v)
}

// CreateVehicle добавляет автомобиль в автопарк
// POST /api/v1/fleet/vehicles
func (h *FleetHandler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	var req fleet.VehicleInput
	if !decodeJSON(w, r, &req) {
		return
	}

	v, err := h.fleetService.CreateVehicle(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create vehicle")
		return
	}

	respondData(w, http.StatusCreated, v)
}

// UpdateVehicle обновляет автомобиль; version обязателен
// PUT /api/v1/fleet/vehicles/{id}
func (h *FleetHandler) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req fleet.UpdateVehicleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	v, err := h.fleetService.UpdateVehicle(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update vehicle")
		return
	}

	respondData(w, http.StatusOK, v)
}

// UpdateStatus меняет статус автомобиля
// PATCH /api/v1/fleet/vehicles/{id}/status
func (h *FleetHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req fleet.UpdateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	v, err := h.fleetService.UpdateStatus(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update vehicle status")
		return
	}

	respondData(w, http.StatusOK, v)
}

// DeleteVehicle выводит автомобиль из автопарка
// DELETE /api/v1/fleet/vehicles/{id}
func (h *FleetHandler) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.fleetService.DeleteVehicle(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete vehicle")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpcomingService возвращает автомобили, которым скоро на обслуживание
// GET /api/v1/fleet/vehicles/upcoming-service
func (h *FleetHandler) UpcomingService(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.fleetService.UpcomingService(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "list upcoming service")
		return
	}

	respondData(w, http.StatusOK, vehicles)
}

// Availability возвращает автомобили, свободные на весь диапазон
// GET /api/v1/fleet/availability?from=2026-10-01&to=2026-10-05&category=
func (h *FleetHandler) Availability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dr, err := domain.ParseDateRange(q.Get("from"), q.Get("to"))
	if err != nil {
		respondServiceError(w, h.logger, err, "check availability")
		return
	}

	vehicles, err := h.fleetService.Availability(r.Context(), dr, domain.VehicleCategory(q.Get("category")))
	if err != nil {
		respondServiceError(w, h.logger, err, "check availability")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    vehicles,
		"period":  dr,
	})
}

// Dictionaries возвращает подписи и цвета перечислений для интерфейса
// GET /api/v1/fleet/dictionaries
func (h *FleetHandler) Dictionaries(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, h.fleetService.Dictionaries())
}
