package http

import (
	"context"
	"net/http"

	"github.com/frontandrew/fleet/internal/domain"
	"github.com/frontandrew/fleet/internal/pkg/logger"
	"github.com/frontandrew/fleet/internal/repository"
	"github.com/frontandrew/fleet/internal/usecase/rental"
	"github.com/google/uuid"
)

// RentalService определяет интерфейс сервиса аренды
type RentalService interface {
	ListRentals(ctx context.Context, filter repository.RentalFilter) (*rental.RentalList, error)
	GetRental(ctx context.Context, id uuid.UUID) (*domain.FleetRental, error)
	CreateRental(ctx context.Context, req *rental.RentalInput, employeeID *uuid.UUID) (*domain.FleetRental, error)
	UpdateRental(ctx context.Context, id uuid.UUID, req *rental.UpdateRentalRequest) (*domain.FleetRental, error)
	StartRental(ctx context.Context, id uuid.UUID, req *rental.StartRequest) (*domain.FleetRental, error)
	CompleteRental(ctx context.Context, id uuid.UUID, req *rental.CompleteRequest) (*domain.FleetRental, error)
	CancelRental(ctx context.Context, id uuid.UUID, req *rental.CancelRequest) (*domain.FleetRental, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.RentalStatus) (*domain.FleetRental, error)
	DeleteRental(ctx context.Context, id uuid.UUID) error
}

// RentalStatusRequest - тело PATCH /rentals/{id}/status
type RentalStatusRequest struct {
	Status domain.RentalStatus `json:"status"`
}

// RentalHandler обрабатывает запросы по арендам
type RentalHandler struct {
	rentalService RentalService
	logger        logger.Logger
}

// NewRentalHandler создает новый handler
func NewRentalHandler(rentalService RentalService, logger logger.Logger) *RentalHandler {
	return &RentalHandler{
		rentalService: rentalService,
		logger:        logger,
	}
}

// ListRentals возвращает аренды по фильтру. Границы дат полуоткрытые
// GET /api/v1/fleet/rentals?vehicle_id=&status=&start_date_from=&start_date_to=&end_date_from=&end_date_to=
func (h *RentalHandler) ListRentals(w http.ResponseWriter, r *http.Request) {
	filter, err := rentalFilter(r)
	if err != nil {
		respondServiceError(w, h.logger, err, "list rentals")
		return
	}

	list, err := h.rentalService.ListRentals(r.Context(), filter)
	if err != nil {
		respondServiceError(w, h.logger, err, "list rentals")
		return
	}

	respondList(w, list.Items, list.Total)
}

func rentalFilter(r *http.Request) (repository.RentalFilter, error) {
	filter := repository.RentalFilter{
		Status: domain.RentalStatus(r.URL.Query().Get("status")),
		Page:   queryPage(r),
	}

	var err error
	if filter.VehicleID, err = queryUUID(r, "vehicle_id"); err != nil {
		return filter, err
	}
	if filter.StartDateFrom, err = queryTime(r, "start_date_from"); err != nil {
		return filter, err
	}
	if filter.StartDateTo, err = queryTime(r, "start_date_to"); err != nil {
		return filter, err
	}
	if filter.EndDateFrom, err = queryTime(r, "end_date_from"); err != nil {
		return filter, err
	}
	if filter.EndDateTo, err = queryTime(r, "end_date_to"); err != nil {
		return filter, err
	}
	return filter, nil
}

// GetRental возвращает аренду вместе с автомобилем
// GET /api/v1/fleet/rentals/{id}
func (h *RentalHandler) GetRental(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	rn, err := h.rentalService.GetRental(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get rental")
		return
	}

	respondData(w, http.StatusOK, rn)
}

// CreateRental бронирует автомобиль
// POST /api/v1/fleet/rentals
func (h *RentalHandler) CreateRental(w http.ResponseWriter, r *http.Request) {
	var req rental.RentalInput
	if !decodeJSON(w, r, &req) {
		return
	}

	rn, err := h.rentalService.CreateRental(r.Context(), &req, currentUserID(r))
	if err != nil {
		respondServiceError(w, h.logger, err, "create rental")
		return
	}

	respondData(w, http.StatusCreated, rn)
}

// UpdateRental меняет условия запланированной аренды
// PUT /api/v1/fleet/rentals/{id}
func (h *RentalHandler) UpdateRental(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req rental.UpdateRentalRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rn, err := h.rentalService.UpdateRental(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update rental")
		return
	}

	respondData(w, http.StatusOK, rn)
}

// StartRental выдает автомобиль клиенту
// POST /api/v1/fleet/rentals/{id}/start
func (h *RentalHandler) StartRental(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req rental.StartRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}

	rn, err := h.rentalService.StartRental(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "start rental")
		return
	}

	respondData(w, http.StatusOK, rn)
}

// CompleteRental принимает автомобиль обратно
// POST /api/v1/fleet/rentals/{id}/complete
func (h *RentalHandler) CompleteRental(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req rental.CompleteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rn, err := h.rentalService.CompleteRental(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "complete rental")
		return
	}

	respondData(w, http.StatusOK, rn)
}

// CancelRental отменяет аренду
// POST /api/v1/fleet/rentals/{id}/cancel
func (h *RentalHandler) CancelRental(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req rental.CancelRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}

	rn, err := h.rentalService.CancelRental(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "cancel rental")
		return
	}

	respondData(w, http.StatusOK, rn)
}

// UpdateStatus переводит аренду в статус с параметрами по умолчанию
// PATCH /api/v1/fleet/rentals/{id}/status
func (h *RentalHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req RentalStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rn, err := h.rentalService.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		respondServiceError(w, h.logger, err, "update rental status")
		return
	}

	respondData(w, http.StatusOK, rn)
}

// DeleteRental удаляет запланированную или отмененную аренду
// DELETE /api/v1/fleet/rentals/{id}
func (h *RentalHandler) DeleteRental(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.rentalService.DeleteRental(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete rental")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
