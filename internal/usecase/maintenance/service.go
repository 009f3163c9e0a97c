package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frontandrew/fleet/internal/domain"
	"github.com/frontandrew/fleet/internal/pkg/logger"
	"github.com/frontandrew/fleet/internal/repository"
	"github.com/google/uuid"
)

// Сколько раз перечитываем карточку автомобиля при конфликте версий
const vehicleUpdateAttempts = 3

// CreateMaintenanceRequest - запись журнала обслуживания
type CreateMaintenanceRequest struct {
	VehicleID          uuid.UUID              `json:"vehicle_id" validate:"required"`
	Type               domain.MaintenanceType `json:"type" validate:"required"`
	Description        string                 `json:"description,omitempty"`
	Date               time.Time              `json:"date" validate:"required"`
	Mileage            int                    `json:"mileage"`
	LaborCost          float64                `json:"labor_cost"`
	PartsCost          float64                `json:"parts_cost"`
	TotalCost          float64                `json:"total_cost"`
	ServiceProvider    string                 `json:"service_provider,omitempty"`
	NextServiceDate    *time.Time             `json:"next_service_date,omitempty"`
	NextServiceMileage *int                   `json:"next_service_mileage,omitempty"`
}

// CreateFuelRequest - запись о заправке
type CreateFuelRequest struct {
	VehicleID     uuid.UUID       `json:"vehicle_id" validate:"required"`
	RentalID      *uuid.UUID      `json:"rental_id,omitempty"`
	Date          time.Time       `json:"date" validate:"required"`
	Mileage       int             `json:"mileage"`
	Liters        float64         `json:"liters" validate:"required"`
	PricePerLiter float64         `json:"price_per_liter"`
	TotalCost     float64         `json:"total_cost"`
	FuelType      domain.FuelType `json:"fuel_type,omitempty"` // По умолчанию - топливо автомобиля
	Station       string          `json:"station,omitempty"`
	FullTank      bool            `json:"full_tank"`
}

// Service ведет журналы обслуживания и заправок
type Service struct {
	maintenanceRepo repository.MaintenanceRepository
	fuelRepo        repository.FuelEntryRepository
	vehicleRepo     repository.VehicleRepository
	logger          logger.Logger
}

// NewService создает новый экземпляр MaintenanceService
func NewService(
	maintenanceRepo repository.MaintenanceRepository,
	fuelRepo repository.FuelEntryRepository,
	vehicleRepo repository.VehicleRepository,
	logger logger.Logger,
) *Service {
	return &Service{
		maintenanceRepo: maintenanceRepo,
		fuelRepo:        fuelRepo,
		vehicleRepo:     vehicleRepo,
		logger:          logger,
	}
}

// ListMaintenance возвращает записи журнала обслуживания
func (s *Service) ListMaintenance(ctx context.Context, filter repository.JournalFilter) ([]*domain.FleetMaintenance, error) {
	return s.maintenanceRepo.List(ctx, filter)
}

// GetMaintenance возвращает запись по ID
func (s *Service) GetMaintenance(ctx context.Context, id uuid.UUID) (*domain.FleetMaintenance, error) {
	return s.maintenanceRepo.GetByID(ctx, id)
}

// CreateMaintenance добавляет запись и переносит сроки сервиса в карточку автомобиля
func (s *Service) CreateMaintenance(ctx context.Context, req *CreateMaintenanceRequest, createdBy *uuid.UUID) (*domain.FleetMaintenance, error) {
	if _, err := s.vehicleRepo.GetByID(ctx, req.VehicleID); err != nil {
		return nil, err
	}

	m := &domain.FleetMaintenance{
		VehicleID:          req.VehicleID,
		Type:               req.Type,
		Description:        req.Description,
		Date:               req.Date.UTC(),
		Mileage:            req.Mileage,
		LaborCost:          req.LaborCost,
		PartsCost:          req.PartsCost,
		TotalCost:          req.TotalCost,
		ServiceProvider:    req.ServiceProvider,
		NextServiceDate:    req.NextServiceDate,
		NextServiceMileage: req.NextServiceMileage,
		CreatedBy:          createdBy,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	if err := s.maintenanceRepo.Create(ctx, m); err != nil {
		s.logger.Error("Failed to create maintenance record", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("failed to create maintenance record: %w", err)
	}

	// Запись журнала уже сохранена, ошибка обновления карточки ее не отменяет
	s.syncVehicle(ctx, m.VehicleID, func(v *domain.FleetVehicle) bool {
		m.ApplyTo(v)
		return true
	})

	s.logger.Info("Maintenance recorded", map[string]interface{}{
		"maintenance_id": m.ID,
		"vehicle_id":     m.VehicleID,
		"type":           m.Type,
	})
	return m, nil
}

// DeleteMaintenance удаляет запись журнала; карточка автомобиля не пересчитывается
func (s *Service) DeleteMaintenance(ctx context.Context, id uuid.UUID) error {
	return s.maintenanceRepo.Delete(ctx, id)
}

// ListFuel возвращает записи о заправках
func (s *Service) ListFuel(ctx context.Context, filter repository.JournalFilter) ([]*domain.FleetFuelEntry, error) {
	return s.fuelRepo.List(ctx, filter)
}

// CreateFuel добавляет запись о заправке и поднимает пробег автомобиля
func (s *Service) CreateFuel(ctx context.Context, req *CreateFuelRequest, createdBy *uuid.UUID) (*domain.FleetFuelEntry, error) {
	vehicle, err := s.vehicleRepo.GetByID(ctx, req.VehicleID)
	if err != nil {
		return nil, err
	}

	f := &domain.FleetFuelEntry{
		VehicleID:     req.VehicleID,
		RentalID:      req.RentalID,
		Date:          req.Date.UTC(),
		Mileage:       req.Mileage,
		Liters:        req.Liters,
		PricePerLiter: req.PricePerLiter,
		TotalCost:     req.TotalCost,
		FuelType:      req.FuelType,
		Station:       req.Station,
		FullTank:      req.FullTank,
		CreatedBy:     createdBy,
	}
	if f.FuelType == "" {
		f.FuelType = vehicle.FuelType
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}

	if err := s.fuelRepo.Create(ctx, f); err != nil {
		s.logger.Error("Failed to create fuel entry", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("failed to create fuel entry: %w", err)
	}

	if f.Mileage > vehicle.CurrentMileage {
		s.syncVehicle(ctx, f.VehicleID, func(v *domain.FleetVehicle) bool {
			return v.RecordMileage(f.Mileage)
		})
	}

	return f, nil
}

// DeleteFuel удаляет запись о заправке
func (s *Service) DeleteFuel(ctx context.Context, id uuid.UUID) error {
	return s.fuelRepo.Delete(ctx, id)
}

// FuelStats считает расход топлива по всем заправкам автомобиля
func (s *Service) FuelStats(ctx context.Context, vehicleID uuid.UUID) (domain.FuelStats, error) {
	if _, err := s.vehicleRepo.GetByID(ctx, vehicleID); err != nil {
		return domain.FuelStats{}, err
	}
	entries, err := s.fuelRepo.List(ctx, repository.JournalFilter{VehicleID: &vehicleID})
	if err != nil {
		return domain.FuelStats{}, fmt.Errorf("failed to list fuel entries: %w", err)
	}
	return domain.CalculateFuelStats(vehicleID, entries), nil
}

// syncVehicle применяет изменение к свежей карточке автомобиля после записи в журнал.
// При конфликте версий карточка перечитывается; apply возвращает false, если менять нечего.
// Ошибка только логируется: запись журнала остается, карточку можно поправить вручную
func (s *Service) syncVehicle(ctx context.Context, id uuid.UUID, apply func(v *domain.FleetVehicle) bool) {
	var err error
	for attempt := 0; attempt < vehicleUpdateAttempts; attempt++ {
		var vehicle *domain.FleetVehicle
		vehicle, err = s.vehicleRepo.GetByID(ctx, id)
		if err != nil {
			break
		}
		if !apply(vehicle) {
			return
		}
		err = s.vehicleRepo.Update(ctx, vehicle)
		if !errors.Is(err, domain.ErrConcurrentModification) {
			break
		}
	}
	if err != nil {
		s.logger.Warn("Vehicle not updated after journal entry", map[string]interface{}{
			"vehicle_id": id,
			"error":      err.Error(),
		})
	}
}
