package http

import (
	"context"
	"net/http"

	"github.com/frontandrew/fleet/internal/domain"
	"github.com/frontandrew/fleet/internal/pkg/logger"
	"github.com/frontandrew/fleet/internal/repository"
	"github.com/frontandrew/fleet/internal/usecase/maintenance"
	"github.com/google/uuid"
)

// MaintenanceService определяет интерфейс журналов обслуживания и заправок
type MaintenanceService interface {
	ListMaintenance(ctx context.Context, filter repository.JournalFilter) ([]*domain.FleetMaintenance, error)
	GetMaintenance(ctx context.Context, id uuid.UUID) (*domain.FleetMaintenance, error)
	CreateMaintenance(ctx context.Context, req *maintenance.CreateMaintenanceRequest, createdBy *uuid.UUID) (*domain.FleetMaintenance, error)
	DeleteMaintenance(ctx context.Context, id uuid.UUID) error
	ListFuel(ctx context.Context, filter repository.JournalFilter) ([]*domain.FleetFuelEntry, error)
	CreateFuel(ctx context.Context, req *maintenance.CreateFuelRequest, createdBy *uuid.UUID) (*domain.FleetFuelEntry, error)
	DeleteFuel(ctx context.Context, id uuid.UUID) error
	FuelStats(ctx context.Context, vehicleID uuid.UUID) (domain.FuelStats, error)
}

// MaintenanceHandler обрабатывает запросы журналов обслуживания и заправок
type MaintenanceHandler struct {
	maintenanceService MaintenanceService
	logger             logger.Logger
}

// NewMaintenanceHandler создает новый handler
func NewMaintenanceHandler(maintenanceService MaintenanceService, logger logger.Logger) *MaintenanceHandler {
	return &MaintenanceHandler{
		maintenanceService: maintenanceService,
		logger:             logger,
	}
}

// journalFilter собирает фильтр из ?vehicle_id=&from=&to= и параметра маршрута {id}
func journalFilter(r *http.Request, vehicleID *uuid.UUID) (repository.JournalFilter, error) {
	filter := repository.JournalFilter{VehicleID: vehicleID, Page: queryPage(r)}

	if filter.VehicleID == nil {
		id, err := queryUUID(r, "vehicle_id")
		if err != nil {
			return filter, err
		}
		filter.VehicleID = id
	}

	q := r.URL.Query()
	if q.Get("from") != "" || q.Get("to") != "" {
		dr, err := domain.ParseDateRange(q.Get("from"), q.Get("to"))
		if err != nil {
			return filter, err
		}
		filter.Period = &dr
	}
	return filter, nil
}

// ListMaintenance возвращает записи журнала обслуживания
// GET /api/v1/fleet/maintenance?vehicle_id=&from=&to=
func (h *MaintenanceHandler) ListMaintenance(w http.ResponseWriter, r *http.Request) {
	h.listMaintenance(w, r, nil)
}

// ListVehicleMaintenance возвращает обслуживание одного автомобиля
// GET /api/v1/fleet/vehicles/{id}/maintenance
func (h *MaintenanceHandler) ListVehicleMaintenance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	h.listMaintenance(w, r, &id)
}

func (h *MaintenanceHandler) listMaintenance(w http.ResponseWriter, r *http.Request, vehicleID *uuid.UUID) {
	filter, err := journalFilter(r, vehicleID)
	if err != nil {
		respondServiceError(w, h.logger, err, "list maintenance")
		return
	}

	records, err := h.maintenanceService.ListMaintenance(r.Context(), filter)
	if err != nil {
		respondServiceError(w, h.logger, err, "list maintenance")
		return
	}

	respondData(w, http.StatusOK, records)
}

// GetMaintenance возвращает запись обслуживания
// GET /api/v1/fleet/maintenance/{id}
func (h *MaintenanceHandler) GetMaintenance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	m, err := h.maintenanceService.GetMaintenance(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get maintenance")
		return
	}

	respondData(w, http.StatusOK, m)
}

// CreateMaintenance добавляет запись обслуживания
// POST /api/v1/fleet/maintenance
func (h *MaintenanceHandler) CreateMaintenance(w http.ResponseWriter, r *http.Request) {
	var req maintenance.CreateMaintenanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	m, err := h.maintenanceService.CreateMaintenance(r.Context(), &req, currentUserID(r))
	if err != nil {
		respondServiceError(w, h.logger, err, "create maintenance")
		return
	}

	respondData(w, http.StatusCreated, m)
}

// DeleteMaintenance удаляет запись обслуживания
// DELETE /api/v1/fleet/maintenance/{id}
func (h *MaintenanceHandler) DeleteMaintenance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.maintenanceService.DeleteMaintenance(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete maintenance")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListVehicleFuel возвращает заправки автомобиля
// GET /api/v1/fleet/vehicles/{id}/fuel?from=&to=
func (h *MaintenanceHandler) ListVehicleFuel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	filter, err := journalFilter(r, &id)
	if err != nil {
		respondServiceError(w, h.logger, err, "list fuel entries")
		return
	}

	entries, err := h.maintenanceService.ListFuel(r.Context(), filter)
	if err != nil {
		respondServiceError(w, h.logger, err, "list fuel entries")
		return
	}

	respondData(w, http.StatusOK, entries)
}

// FuelStats возвращает статистику расхода топлива автомобиля
// GET /api/v1/fleet/vehicles/{id}/fuel/stats
func (h *MaintenanceHandler) FuelStats(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	stats, err := h.maintenanceService.FuelStats(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get fuel stats")
		return
	}

	respondData(w, http.StatusOK, stats)
}

// CreateFuel добавляет заправку
// POST /api/v1/fleet/fuel
func (h *MaintenanceHandler) CreateFuel(w http.ResponseWriter, r *http.Request) {
	var req maintenance.CreateFuelRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	f, err := h.maintenanceService.CreateFuel(r.Context(), &req, currentUserID(r))
	if err != nil {
		respondServiceError(w, h.logger, err, "create fuel entry")
		return
	}

	respondData(w, http.StatusCreated, f)
}

// DeleteFuel удаляет заправку
// DELETE /api/v1/fleet/fuel/{id}
func (h *MaintenanceHandler) DeleteFuel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.maintenanceService.DeleteFuel(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete fuel entry")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
