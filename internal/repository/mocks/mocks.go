// Package mocks содержит testify-моки репозиториев для тестов use case и кэширующего слоя
package mocks

import (
	"context"
	"time"

	"github.com/frontandrew/fleet/internal/domain"
	"github.com/frontandrew/fleet/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// UserRepository - мок repository.UserRepository
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *UserRepository) Update(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// RefreshTokenRepository - мок repository.RefreshTokenRepository
type RefreshTokenRepository struct {
	mock.Mock
}

func (m *RefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *RefreshTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefreshToken), args.Error(1)
}

func (m *RefreshTokenRepository) Revoke(ctx context.Context, tokenHash string) error {
	return m.Called(ctx, tokenHash).Error(0)
}

func (m *RefreshTokenRepository) RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *RefreshTokenRepository) DeleteExpired(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// VehicleRepository - мок repository.VehicleRepository
type VehicleRepository struct {
	mock.Mock
}

func (m *VehicleRepository) Create(ctx context.Context, vehicle *domain.FleetVehicle) error {
	return m.Called(ctx, vehicle).Error(0)
}

func (m *VehicleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.FleetVehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FleetVehicle), args.Error(1)
}

func (m *VehicleRepository) GetByLicensePlate(ctx context.Context, licensePlate string) (*domain.FleetVehicle, error) {
	args := m.Called(ctx, licensePlate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FleetVehicle), args.Error(1)
}

func (m *VehicleRepository) Update(ctx context.Context, vehicle *domain.FleetVehicle) error {
	return m.Called(ctx, vehicle).Error(0)
}

func (m *VehicleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *VehicleRepository) List(ctx context.Context, filter repository.VehicleFilter) ([]*domain.FleetVehicle, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.FleetVehicle), args.Int(1), args.Error(2)
}

func (m *VehicleRepository) ListUpcomingService(ctx context.Context, before time.Time, mileageMargin int) ([]*domain.FleetVehicle, error) {
	args := m.Called(ctx, before, mileageMargin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.FleetVehicle), args.Error(1)
}

// RentalRepository - мок repository.RentalRepository
type RentalRepository struct {
	mock.Mock
}

func (m *RentalRepository) Create(ctx context.Context, rental *domain.FleetRental) error {
	return m.Called(ctx, rental).Error(0)
}

func (m *RentalRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.FleetRental, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FleetRental), args.Error(1)
}

func (m *RentalRepository) Update(ctx context.Context, rental *domain.FleetRental) error {
	return m.Called(ctx, rental).Error(0)
}

func (m *RentalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *RentalRepository) List(ctx context.Context, filter repository.RentalFilter) ([]*domain.FleetRental, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.FleetRental), args.Int(1), args.Error(2)
}

func (m *RentalRepository) ListOverlapping(ctx context.Context, dr domain.DateRange, vehicleID *uuid.UUID) ([]*domain.FleetRental, error) {
	args := m.Called(ctx, dr, vehicleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.FleetRental), args.Error(1)
}

// MaintenanceRepository - мок repository.MaintenanceRepository
type MaintenanceRepository struct {
	mock.Mock
}

func (m *MaintenanceRepository) Create(ctx context.Context, entry *domain.FleetMaintenance) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MaintenanceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.FleetMaintenance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FleetMaintenance), args.Error(1)
}

func (m *MaintenanceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MaintenanceRepository) List(ctx context.Context, filter repository.JournalFilter) ([]*domain.FleetMaintenance, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.FleetMaintenance), args.Error(1)
}

// FuelEntryRepository - мок repository.FuelEntryRepository
type FuelEntryRepository struct {
	mock.Mock
}

func (m *FuelEntryRepository) Create(ctx context.Context, entry *domain.FleetFuelEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *FuelEntryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.FleetFuelEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FleetFuelEntry), args.Error(1)
}

func (m *FuelEntryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *FuelEntryRepository) List(ctx context.Context, filter repository.JournalFilter) ([]*domain.FleetFuelEntry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.FleetFuelEntry), args.Error(1)
}

// ProtocolRepository - мок repository.ProtocolRepository
type ProtocolRepository struct {
	mock.Mock
}

func (m *ProtocolRepository) Create(ctx context.Context, p *domain.CarReceptionProtocol) error {
	return m.Called(ctx, p).Error(0)
}

func (m *ProtocolRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.CarReceptionProtocol, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CarReceptionProtocol), args.Error(1)
}

func (m *ProtocolRepository) Update(ctx context.Context, p *domain.CarReceptionProtocol) error {
	return m.Called(ctx, p).Error(0)
}

func (m *ProtocolRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ProtocolRepository) List(ctx context.Context, filter repository.ProtocolFilter) ([]*domain.CarReceptionProtocol, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.CarReceptionProtocol), args.Int(1), args.Error(2)
}

func (m *ProtocolRepository) AddComment(ctx context.Context, c *domain.ProtocolComment) error {
	return m.Called(ctx, c).Error(0)
}

func (m *ProtocolRepository) CountOpen(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// ImageRepository - мок repository.ImageRepository
type ImageRepository struct {
	mock.Mock
}

func (m *ImageRepository) Create(ctx context.Context, img *domain.FleetImage) error {
	return m.Called(ctx, img).Error(0)
}

func (m *ImageRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.FleetImage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FleetImage), args.Error(1)
}

func (m *ImageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ImageRepository) ListByEntity(ctx context.Context, entityType domain.ImageEntityType, entityID uuid.UUID) ([]*domain.FleetImage, error) {
	args := m.Called(ctx, entityType, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.FleetImage), args.Error(1)
}

var (
	_ repository.UserRepository         = (*UserRepository)(nil)
	_ repository.RefreshTokenRepository = (*RefreshTokenRepository)(nil)
	_ repository.VehicleRepository      = (*VehicleRepository)(nil)
	_ repository.RentalRepository       = (*RentalRepository)(nil)
	_ repository.MaintenanceRepository  = (*MaintenanceRepository)(nil)
	_ repository.FuelEntryRepository    = (*FuelEntryRepository)(nil)
	_ repository.ProtocolRepository     = (*ProtocolRepository)(nil)
	_ repository.ImageRepository        = (*ImageRepository)(nil)
)
