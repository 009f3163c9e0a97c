package rental

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/frontandrew/fleet/internal/domain"
	"github.com/frontandrew/fleet/internal/infrastructure/events"
	"github.com/frontandrew/fleet/internal/pkg/logger"
	"github.com/frontandrew/fleet/internal/repository"
	"github.com/google/uuid"
)

// RentalInput - условия аренды, которые задаются при бронировании
type RentalInput struct {
	VehicleID      uuid.UUID  `json:"vehicle_id" validate:"required"`
	ClientID       *uuid.UUID `json:"client_id,omitempty"`
	ClientName     string     `json:"client_name"`
	ClientPhone    string     `json:"client_phone,omitempty"`
	ClientEmail    string     `json:"client_email,omitempty"`
	StartDate      time.Time  `json:"start_date" validate:"required"`
	PlannedEndDate time.Time  `json:"planned_end_date" validate:"required"`
	FuelLevelStart *int       `json:"fuel_level_start,omitempty"`
	DailyRate      *float64   `json:"daily_rate,omitempty"` // По умолчанию - тариф автомобиля
	Deposit        float64    `json:"deposit"`
	Notes          string     `json:"notes,omitempty"`
}

// UpdateRentalRequest - изменение забронированной аренды
type UpdateRentalRequest struct {
	RentalInput
	Version int `json:"version" validate:"required"`
}

// StartRequest - данные выдачи автомобиля
type StartRequest struct {
	MileageStart   *int `json:"mileage_start,omitempty"`
	FuelLevelStart *int `json:"fuel_level_start,omitempty"`
}

// CompleteRequest - данные возврата автомобиля
type CompleteRequest struct {
	MileageEnd        int        `json:"mileage_end" validate:"required"`
	FuelLevelEnd      int        `json:"fuel_level_end"`
	ReturnedAt        *time.Time `json:"returned_at,omitempty"`
	DamageReported    bool       `json:"damage_reported"`
	DamageDescription string     `json:"damage_description,omitempty"`
	DamageCost        float64    `json:"damage_cost"`
}

// CancelRequest - отмена аренды
type CancelRequest struct {
	Reason string `json:"reason,omitempty"`
}

// RentalList - страница аренд
type RentalList struct {
	Items []*domain.FleetRental `json:"items"`
	Total int                   `json:"total"`
}

// Service содержит бизнес-логику аренды
type Service struct {
	rentalRepo  repository.RentalRepository
	vehicleRepo repository.VehicleRepository
	publisher   events.Publisher
	logger      logger.Logger
	now         func() time.Time
}

// NewService создает новый экземпляр RentalService
func NewService(
	rentalRepo repository.RentalRepository,
	vehicleRepo repository.VehicleRepository,
	publisher events.Publisher,
	logger logger.Logger,
) *Service {
	return &Service{
		rentalRepo:  rentalRepo,
		vehicleRepo: vehicleRepo,
		publisher:   publisher,
		logger:      logger,
		now:         time.Now,
	}
}

// ListRentals возвращает страницу аренд по фильтру
func (s *Service) ListRentals(ctx context.Context, filter repository.RentalFilter) (*RentalList, error) {
	rentals, total, err := s.rentalRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list rentals: %w", err)
	}
	return &RentalList{Items: rentals, Total: total}, nil
}

// GetRental возвращает аренду вместе с карточкой автомобиля
func (s *Service) GetRental(ctx context.Context, id uuid.UUID) (*domain.FleetRental, error) {
	rental, err := s.rentalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, rental.VehicleID)
	if err != nil && !errors.Is(err, domain.ErrVehicleNotFound) {
		return nil, fmt.Errorf("failed to get rental vehicle: %w", err)
	}
	rental.Vehicle = vehicle

	return rental, nil
}

// CreateRental бронирует автомобиль. Пересекающиеся аренды того же автомобиля запрещены
func (s *Service) CreateRental(ctx context.Context, req *RentalInput, employeeID *uuid.UUID) (*domain.FleetRental, error) {
	s.logger.Info("Creating rental", map[string]interface{}{
		"vehicle_id": req.VehicleID,
		"start_date": req.StartDate,
	})

	vehicle, err := s.bookableVehicle(ctx, req.VehicleID)
	if err != nil {
		return nil, err
	}

	rental := &domain.FleetRental{
		EmployeeID:   employeeID,
		Status:       domain.RentalStatusScheduled,
		MileageStart: vehicle.CurrentMileage,
		DailyRate:    vehicle.DailyRate,
	}
	req.applyTo(rental)
	if err := rental.Validate(); err != nil {
		return nil, err
	}

	if err := s.checkOverlap(ctx, rental); err != nil {
		return nil, err
	}

	if err := s.rentalRepo.Create(ctx, rental); err != nil {
		if errors.Is(err, domain.ErrVehicleNotFound) {
			return nil, err
		}
		s.logger.Error("Failed to create rental", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("failed to create rental: %w", err)
	}

	s.logger.Info("Rental created", map[string]interface{}{
		"rental_id":  rental.ID,
		"vehicle_id": rental.VehicleID,
	})
	s.publish(ctx, events.New(events.RentalCreated, rental.ID, rental))

	rental.Vehicle = vehicle
	return rental, nil
}

// UpdateRental меняет условия аренды, пока она не началась
func (s *Service) UpdateRental(ctx context.Context, id uuid.UUID, req *UpdateRentalRequest) (*domain.FleetRental, error) {
	rental, err := s.rentalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rental.IsEditable() {
		return nil, domain.ErrRentalNotEditable
	}
	if rental.Version != req.Version {
		return nil, domain.ErrConcurrentModification
	}

	if req.VehicleID != rental.VehicleID {
		vehicle, err := s.bookableVehicle(ctx, req.VehicleID)
		if err != nil {
			return nil, err
		}
		rental.MileageStart = vehicle.CurrentMileage
	}

	req.applyTo(rental)
	if err := rental.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkOverlap(ctx, rental); err != nil {
		return nil, err
	}

	if err := s.rentalRepo.Update(ctx, rental); err != nil {
		return nil, s.wrapWrite("update rental", err)
	}
	return rental, nil
}

// StartRental выдает автомобиль клиенту: аренда ACTIVE, автомобиль RENTED
func (s *Service) StartRental(ctx context.Context, id uuid.UUID, req *StartRequest) (*domain.FleetRental, error) {
	rental, err := s.rentalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	vehicle, err := s.vehicleRepo.GetByID(ctx, rental.VehicleID)
	if err != nil {
		return nil, err
	}

	if err := rental.TransitionTo(domain.RentalStatusActive); err != nil {
		return nil, err
	}
	if !vehicle.IsActive {
		return nil, domain.ErrVehicleInactive
	}
	if err := vehicle.TransitionTo(domain.VehicleStatusRented); err != nil {
		return nil, fmt.Errorf("%w: vehicle is %s", domain.ErrVehicleUnavailable, vehicle.Status)
	}

	rental.MileageStart = vehicle.CurrentMileage
	if req != nil {
		if req.MileageStart != nil {
			rental.MileageStart = *req.MileageStart
		}
		if req.FuelLevelStart != nil {
			rental.FuelLevelStart = *req.FuelLevelStart
		}
	}
	if err := rental.Validate(); err != nil {
		return nil, err
	}
	vehicle.RecordMileage(rental.MileageStart)

	if err := s.rentalRepo.Update(ctx, rental); err != nil {
		return nil, s.wrapWrite("start rental", err)
	}
	if err := s.vehicleRepo.Update(ctx, vehicle); err != nil {
		s.logger.Error("Rental started but vehicle status not updated", map[string]interface{}{
			"rental_id":  rental.ID,
			"vehicle_id": vehicle.ID,
			"error":      err.Error(),
		})
		return nil, fmt.Errorf("failed to update vehicle: %w", err)
	}

	s.logger.Info("Rental started", map[string]interface{}{
		"rental_id":  rental.ID,
		"vehicle_id": vehicle.ID,
	})
	s.publish(ctx, events.New(events.RentalStarted, rental.ID, rental))

	rental.Vehicle = vehicle
	return rental, nil
}

// CompleteRental принимает автомобиль обратно. При заявленном ущербе автомобиль
// уходит на обслуживание, иначе снова доступен
func (s *Service) CompleteRental(ctx context.Context, id uuid.UUID, req *CompleteRequest) (*domain.FleetRental, error) {
	rental, err := s.rentalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	vehicle, err := s.vehicleRepo.GetByID(ctx, rental.VehicleID)
	if err != nil {
		return nil, err
	}

	if err := rental.TransitionTo(domain.RentalStatusCompleted); err != nil {
		return nil, err
	}

	returnedAt := s.now().UTC()
	if req.ReturnedAt != nil {
		returnedAt = req.ReturnedAt.UTC()
	}
	mileageEnd := req.MileageEnd
	fuelLevelEnd := req.FuelLevelEnd
	rental.ActualEndDate = &returnedAt
	rental.MileageEnd = &mileageEnd
	rental.FuelLevelEnd = &fuelLevelEnd
	rental.DamageReported = req.DamageReported
	rental.DamageDescription = strings.TrimSpace(req.DamageDescription)
	rental.DamageCost = req.DamageCost
	if err := rental.Validate(); err != nil {
		return nil, err
	}

	next := domain.VehicleStatusAvailable
	if rental.DamageReported {
		next = domain.VehicleStatusMaintenance
	}
	vehicle.RecordMileage(mileageEnd)
	// Статус меняем, только если автомобиль все еще числится в аренде
	if vehicle.Status == domain.VehicleStatusRented {
		if err := vehicle.TransitionTo(next); err != nil {
			return nil, err
		}
	}

	if err := s.rentalRepo.Update(ctx, rental); err != nil {
		return nil, s.wrapWrite("complete rental", err)
	}
	if err := s.vehicleRepo.Update(ctx, vehicle); err != nil {
		s.logger.Error("Rental completed but vehicle not updated", map[string]interface{}{
			"rental_id":  rental.ID,
			"vehicle_id": vehicle.ID,
			"error":      err.Error(),
		})
		return nil, fmt.Errorf("failed to update vehicle: %w", err)
	}

	s.logger.Info("Rental completed", map[string]interface{}{
		"rental_id":    rental.ID,
		"total_amount": rental.TotalAmount(),
		"damage":       rental.DamageReported,
	})
	s.publish(ctx, events.New(events.RentalCompleted, rental.ID, map[string]interface{}{
		"vehicle_id":      rental.VehicleID,
		"days":            rental.Days(),
		"total_amount":    rental.TotalAmount(),
		"driven_distance": rental.DrivenDistance(),
		"damage_reported": rental.DamageReported,
	}))

	rental.Vehicle = vehicle
	return rental, nil
}

// CancelRental отменяет забронированную аренду; автомобиль освобождается на ее период
func (s *Service) CancelRental(ctx context.Context, id uuid.UUID, req *CancelRequest) (*domain.FleetRental, error) {
	rental, err := s.rentalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := rental.TransitionTo(domain.RentalStatusCancelled); err != nil {
		return nil, err
	}

	if req != nil && strings.TrimSpace(req.Reason) != "" {
		reason := "Cancelled: " + strings.TrimSpace(req.Reason)
		if rental.Notes != "" {
			rental.Notes += "\n"
		}
		rental.Notes += reason
	}

	if err := s.rentalRepo.Update(ctx, rental); err != nil {
		return nil, s.wrapWrite("cancel rental", err)
	}

	s.logger.Info("Rental cancelled", map[string]interface{}{
		"rental_id": rental.ID,
	})
	s.publish(ctx, events.New(events.RentalCancelled, rental.ID, rental))

	return rental, nil
}

// UpdateStatus - универсальная смена статуса. Завершение без данных возврата
// берет пробег из карточки автомобиля и уровень топлива на момент выдачи
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.RentalStatus) (*domain.FleetRental, error) {
	switch status {
	case domain.RentalStatusActive:
		return s.StartRental(ctx, id, nil)
	case domain.RentalStatusCancelled:
		return s.CancelRental(ctx, id, nil)
	case domain.RentalStatusCompleted:
		rental, err := s.rentalRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		vehicle, err := s.vehicleRepo.GetByID(ctx, rental.VehicleID)
		if err != nil {
			return nil, err
		}
		mileage := rental.MileageStart
		if vehicle.CurrentMileage > mileage {
			mileage = vehicle.CurrentMileage
		}
		return s.CompleteRental(ctx, id, &CompleteRequest{
			MileageEnd:   mileage,
			FuelLevelEnd: rental.FuelLevelStart,
		})
	case domain.RentalStatusScheduled:
		return nil, domain.ErrInvalidStatusTransition
	}
	return nil, domain.ErrInvalidStatus
}

// DeleteRental удаляет аренду, которая не началась или отменена
func (s *Service) DeleteRental(ctx context.Context, id uuid.UUID) error {
	rental, err := s.rentalRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rental.Status != domain.RentalStatusScheduled && rental.Status != domain.RentalStatusCancelled {
		return domain.ErrRentalNotEditable
	}
	return s.rentalRepo.Delete(ctx, id)
}

func (s *Service) bookableVehicle(ctx context.Context, id uuid.UUID) (*domain.FleetVehicle, error) {
	vehicle, err := s.vehicleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !vehicle.IsActive {
		return nil, domain.ErrVehicleInactive
	}
	if vehicle.Status == domain.VehicleStatusOutOfService {
		return nil, domain.ErrVehicleUnavailable
	}
	return vehicle, nil
}

// checkOverlap ищет другие неотмененные аренды автомобиля на тот же период
func (s *Service) checkOverlap(ctx context.Context, rental *domain.FleetRental) error {
	dr := domain.DateRange{From: rental.StartDate, To: rental.EndDate()}
	existing, err := s.rentalRepo.ListOverlapping(ctx, dr, &rental.VehicleID)
	if err != nil {
		return fmt.Errorf("failed to check overlapping rentals: %w", err)
	}
	if domain.HasConflict(rental, existing) {
		s.logger.Warn("Rental overlaps existing booking", map[string]interface{}{
			"vehicle_id": rental.VehicleID,
			"start_date": rental.StartDate,
		})
		return domain.ErrRentalOverlap
	}
	return nil
}

func (s *Service) wrapWrite(op string, err error) error {
	if errors.Is(err, domain.ErrConcurrentModification) || errors.Is(err, domain.ErrRentalNotFound) {
		return err
	}
	s.logger.Error("Failed to "+op, map[string]interface{}{
		"error": err.Error(),
	})
	return fmt.Errorf("failed to %s: %w", op, err)
}

// publish отправляет событие; ошибка публикации только логируется
func (s *Service) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("Failed to publish event", map[string]interface{}{
			"type":  e.Type,
			"error": err.Error(),
		})
	}
}

func (in *RentalInput) applyTo(r *domain.FleetRental) {
	r.VehicleID = in.VehicleID
	r.ClientID = in.ClientID
	r.ClientName = strings.TrimSpace(in.ClientName)
	r.ClientPhone = in.ClientPhone
	r.ClientEmail = in.ClientEmail
	r.StartDate = in.StartDate.UTC()
	r.PlannedEndDate = in.PlannedEndDate.UTC()
	if in.FuelLevelStart != nil {
		r.FuelLevelStart = *in.FuelLevelStart
	}
	if in.DailyRate != nil {
		r.DailyRate = *in.DailyRate
	}
	r.Deposit = in.Deposit
	r.Notes = in.Notes
}
