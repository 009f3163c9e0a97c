package fleet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frontandrew/fleet/internal/domain"
	"github.com/frontandrew/fleet/internal/infrastructure/events"
	"github.com/frontandrew/fleet/internal/pkg/logger"
	"github.com/frontandrew/fleet/internal/repository"
	"github.com/google/uuid"
)

// VehicleInput - редактируемые поля карточки автомобиля
type VehicleInput struct {
	Make                 string                  `json:"make" validate:"required"`
	Model                string                  `json:"model" validate:"required"`
	Year                 int                     `json:"year" validate:"required"`
	LicensePlate         string                  `json:"license_plate" validate:"required"`
	VIN                  string                  `json:"vin,omitempty"`
	Color                string                  `json:"color,omitempty"`
	Category             domain.VehicleCategory  `json:"category" validate:"required"`
	UsageType            domain.VehicleUsageType `json:"usage_type" validate:"required"`
	FuelType             domain.FuelType         `json:"fuel_type" validate:"required"`
	InitialMileage       int                     `json:"initial_mileage"`
	CurrentMileage       int                     `json:"current_mileage"`
	NextServiceDate      *time.Time              `json:"next_service_date,omitempty"`
	NextServiceMileage   *int                    `json:"next_service_mileage,omitempty"`
	InsuranceExpiryDate  *time.Time              `json:"insurance_expiry_date,omitempty"`
	InspectionExpiryDate *time.Time              `json:"inspection_expiry_date,omitempty"`
	DailyRate            float64                 `json:"daily_rate"`
	Notes                string                  `json:"notes,omitempty"`
}

// UpdateVehicleRequest - полное обновление карточки; Version должна совпадать с текущей
type UpdateVehicleRequest struct {
	VehicleInput
	Version int `json:"version" validate:"required"`
}

// UpdateStatusRequest - смена статуса автомобиля
type UpdateStatusRequest struct {
	Status  domain.VehicleStatus `json:"status" validate:"required"`
	Version *int                 `json:"version,omitempty"`
}

// VehicleList - страница автомобилей
type VehicleList struct {
	Items []*domain.FleetVehicle `json:"items"`
	Total int                    `json:"total"`
}

// Service содержит бизнес-логику автопарка
type Service struct {
	vehicleRepo repository.VehicleRepository
	rentalRepo  repository.RentalRepository
	publisher   events.Publisher
	logger      logger.Logger
	now         func() time.Time
}

// NewService создает новый экземпляр FleetService
func NewService(
	vehicleRepo repository.VehicleRepository,
	rentalRepo repository.RentalRepository,
	publisher events.Publisher,
	logger logger.Logger,
) *Service {
	return &Service{
		vehicleRepo: vehicleRepo,
		rentalRepo:  rentalRepo,
		publisher:   publisher,
		logger:      logger,
		now:         time.Now,
	}
}

// ListVehicles возвращает страницу автомобилей по фильтру
func (s *Service) ListVehicles(ctx context.Context, filter repository.VehicleFilter) (*VehicleList, error) {
	vehicles, total, err := s.vehicleRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	return &VehicleList{Items: vehicles, Total: total}, nil
}

// GetVehicle возвращает автомобиль по ID
func (s *Service) GetVehicle(ctx context.Context, id uuid.UUID) (*domain.FleetVehicle, error) {
	return s.vehicleRepo.GetByID(ctx, id)
}

// CreateVehicle добавляет автомобиль в автопарк в статусе AVAILABLE
func (s *Service) CreateVehicle(ctx context.Context, req *VehicleInput) (*domain.FleetVehicle, error) {
	s.logger.Info("Creating fleet vehicle", map[string]interface{}{
		"license_plate": req.LicensePlate,
	})

	vehicle := &domain.FleetVehicle{
		Status:   domain.VehicleStatusAvailable,
		IsActive: true,
	}
	req.applyTo(vehicle)
	if vehicle.CurrentMileage < vehicle.InitialMileage {
		vehicle.CurrentMileage = vehicle.InitialMileage
	}

	if err := vehicle.Validate(); err != nil {
		return nil, err
	}

	// Проверяем, что автомобиль с таким номером еще не зарегистрирован
	existing, err := s.vehicleRepo.GetByLicensePlate(ctx, vehicle.LicensePlate)
	if err != nil && !errors.Is(err, domain.ErrVehicleNotFound) {
		return nil, fmt.Errorf("failed to check existing vehicle: %w", err)
	}
	if existing != nil {
		s.logger.Warn("Vehicle already exists", map[string]interface{}{
			"license_plate": vehicle.LicensePlate,
		})
		return nil, domain.ErrVehicleAlreadyExists
	}

	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		if errors.Is(err, domain.ErrVehicleAlreadyExists) {
			return nil, err
		}
		s.logger.Error("Failed to create vehicle", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("failed to create vehicle: %w", err)
	}

	s.logger.Info("Fleet vehicle created", map[string]interface{}{
		"vehicle_id": vehicle.ID,
	})

	return vehicle, nil
}

// UpdateVehicle обновляет карточку автомобиля. Статус меняется только через UpdateStatus
func (s *Service) UpdateVehicle(ctx context.Context, id uuid.UUID, req *UpdateVehicleRequest) (*domain.FleetVehicle, error) {
	vehicle, err := s.vehicleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if vehicle.Version != req.Version {
		return nil, domain.ErrConcurrentModification
	}

	req.applyTo(vehicle)
	if err := vehicle.Validate(); err != nil {
		return nil, err
	}

	if err := s.vehicleRepo.Update(ctx, vehicle); err != nil {
		return nil, s.wrapWrite("update vehicle", err)
	}

	return vehicle, nil
}

// UpdateStatus переводит автомобиль в новый статус по таблице переходов
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, req *UpdateStatusRequest) (*domain.FleetVehicle, error) {
	vehicle, err := s.vehicleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Version != nil && *req.Version != vehicle.Version {
		return nil, domain.ErrConcurrentModification
	}
	if !vehicle.IsActive {
		return nil, domain.ErrVehicleInactive
	}

	from := vehicle.Status
	if err := vehicle.TransitionTo(req.Status); err != nil {
		return nil, err
	}

	if err := s.vehicleRepo.Update(ctx, vehicle); err != nil {
		return nil, s.wrapWrite("update vehicle status", err)
	}

	s.logger.Info("Vehicle status changed", map[string]interface{}{
		"vehicle_id": vehicle.ID,
		"from":       from,
		"to":         vehicle.Status,
	})
	s.publish(ctx, events.New(events.VehicleStatusChanged, vehicle.ID, events.StatusChange{
		From: string(from),
		To:   string(vehicle.Status),
	}))

	return vehicle, nil
}

// DeleteVehicle выводит автомобиль из автопарка (мягкое удаление).
// Автомобиль, выданный в аренду, удалить нельзя
func (s *Service) DeleteVehicle(ctx context.Context, id uuid.UUID) error {
	vehicle, err := s.vehicleRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if vehicle.Status == domain.VehicleStatusRented {
		return domain.ErrVehicleUnavailable
	}

	if err := s.vehicleRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Vehicle deactivated", map[string]interface{}{
		"vehicle_id": id,
	})
	return nil
}

// UpcomingService возвращает автомобили, которым скоро нужно обслуживание
func (s *Service) UpcomingService(ctx context.Context) ([]*domain.FleetVehicle, error) {
	before := s.now().UTC().Add(domain.ServiceDueWithin)
	vehicles, err := s.vehicleRepo.ListUpcomingService(ctx, before, domain.ServiceDueMileageMargin)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming service: %w", err)
	}
	return vehicles, nil
}

// Availability возвращает автомобили, свободные на весь диапазон.
// Пересечение с арендами перепроверяется в памяти
func (s *Service) Availability(ctx context.Context, dr domain.DateRange, category domain.VehicleCategory) ([]*domain.FleetVehicle, error) {
	if err := dr.Validate(); err != nil {
		return nil, err
	}
	if category != "" && !category.IsValid() {
		return nil, domain.ErrInvalidVehicleData
	}

	vehicles, _, err := s.vehicleRepo.List(ctx, repository.VehicleFilter{
		Status:   domain.VehicleStatusAvailable,
		Category: category,
		SortBy:   "make",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}

	rentals, err := s.rentalRepo.ListOverlapping(ctx, dr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list overlapping rentals: %w", err)
	}

	return domain.AvailableVehicles(vehicles, rentals, dr), nil
}

// Dictionaries возвращает подписи и цвета всех перечислений
func (s *Service) Dictionaries() domain.Dictionaries {
	return domain.BuildDictionaries()
}

func (s *Service) wrapWrite(op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrConcurrentModification),
		errors.Is(err, domain.ErrVehicleNotFound),
		errors.Is(err, domain.ErrVehicleAlreadyExists):
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

func (in *VehicleInput) applyTo(v *domain.FleetVehicle) {
	v.Make = in.Make
	v.Model = in.Model
	v.Year = in.Year
	v.LicensePlate = in.LicensePlate
	v.VIN = in.VIN
	v.Color = in.Color
	v.Category = in.Category
	v.UsageType = in.UsageType
	v.FuelType = in.FuelType
	v.InitialMileage = in.InitialMileage
	// Пробег только растет
	v.RecordMileage(in.CurrentMileage)
	v.NextServiceDate = in.NextServiceDate
	v.NextServiceMileage = in.NextServiceMileage
	v.InsuranceExpiryDate = in.InsuranceExpiryDate
	v.InspectionExpiryDate = in.InspectionExpiryDate
	v.DailyRate = in.DailyRate
	v.Notes = in.Notes
}
