package http

import (
	"context"

	"github.com/frontandrew/fleet/internal/domain"
	"github.com/frontandrew/fleet/internal/repository"
	"github.com/frontandrew/fleet/internal/usecase/auth"
	"github.com/frontandrew/fleet/internal/usecase/fleet"
	"github.com/frontandrew/fleet/internal/usecase/image"
	"github.com/frontandrew/fleet/internal/usecase/maintenance"
	"github.com/frontandrew/fleet/internal/usecase/protocol"
	"github.com/frontandrew/fleet/internal/usecase/rental"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockAuthService - мок для auth service
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, req *auth.RegisterRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, req *auth.LoginRequest) (*auth.LoginResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.LoginResponse), args.Error(1)
}

func (m *MockAuthService) Refresh(ctx context.Context, req *auth.RefreshRequest) (*auth.LoginResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.LoginResponse), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, refreshToken string) error {
	return m.Called(ctx, refreshToken).Error(0)
}

func (m *MockAuthService) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockAuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockFleetService - мок для fleet service
type MockFleetService struct {
	mock.Mock
}

func (m *MockFleetService) ListVehicles(ctx context.Context, filter repository.VehicleFilter) (*fleet.VehicleList, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fleet.VehicleList), args.Error(1)
}

func (m *MockFleetService) GetVehicle(ctx context.Context, id uuid.UUID) (*domain.FleetVehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FleetVehicle), args.Error(1)
}

func (m *MockFleetService) CreateVehicle(ctx context.Context, req *fleet.VehicleInput) (*domain.FleetVehicle, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FleetVehicle), args.Error(1)
}

func (m *MockFleetService) UpdateVehicle(ctx context.Context, id uuid.UUID, req *fleet.UpdateVehicleRequest) (*domain.FleetVehicle, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FleetVehicle), args.Error(1)
}

func (m *MockFleetService) UpdateStatus(ctx context.Context, id uuid.UUID, req *fleet.UpdateStatusRequest) (*domain.FleetVehicle, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FleetVehicle), args.Error(1)
}

func (m *MockFleetService) DeleteVehicle(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockFleetService) UpcomingService(ctx context.Context) ([]*domain.FleetVehicle, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.FleetVehicle), args.Error(1)
}

func (m *MockFleetService) Availability(ctx context.Context, dr domain.DateRange, category domain.VehicleCategory) ([]*domain.FleetVehicle, error) {
	args := m.Called(ctx, dr, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.FleetVehicle), args.Error(1)
}

func (m *MockFleetService) Dictionaries() domain.Dictionaries {
	return m.Called().Get(0).(domain.Dictionaries)
}

// MockRentalService - мок для rental service
type MockRentalService struct {
	mock.Mock
}

func (m *MockRentalService) rental(args mock.Arguments) (*domain.FleetRental, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FleetRental), args.Error(1)
}

func (m *MockRentalService) ListRentals(ctx context.Context, filter repository.RentalFilter) (*rental.RentalList, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rental.RentalList), args.Error(1)
}

func (m *MockRentalService) GetRental(ctx context.Context, id uuid.UUID) (*domain.FleetRental, error) {
	return m.rental(m.Called(ctx, id))
}

func (m *MockRentalService) CreateRental(ctx context.Context, req *rental.RentalInput, employeeID *uuid.UUID) (*domain.FleetRental, error) {
	return m.rental(m.Called(ctx, req, employeeID))
}

func (m *MockRentalService) UpdateRental(ctx context.Context, id uuid.UUID, req *rental.UpdateRentalRequest) (*domain.FleetRental, error) {
	return m.rental(m.Called(ctx, id, req))
}

func (m *MockRentalService) StartRental(ctx context.Context, id uuid.UUID, req *rental.StartRequest) (*domain.FleetRental, error) {
	return m.rental(m.Called(ctx, id, req))
}

func (m *MockRentalService) CompleteRental(ctx context.Context, id uuid.UUID, req *rental.CompleteRequest) (*domain.FleetRental, error) {
	return m.rental(m.Called(ctx, id, req))
}

func (m *MockRentalService) CancelRental(ctx context.Context, id uuid.UUID, req *rental.CancelRequest) (*domain.FleetRental, error) {
	return m.rental(m.Called(ctx, id, req))
}

func (m *MockRentalService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.RentalStatus) (*domain.FleetRental, error) {
	return m.rental(m.Called(ctx, id, status))
}

func (m *MockRentalService) DeleteRental(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockImageService - мок для image service
type MockImageService struct {
	mock.Mock
}

func (m *MockImageService) Upload(ctx context.Context, req *image.UploadRequest, uploadedBy *uuid.UUID) (*domain.FleetImage, error) {
	args := m.Called(ctx, req, uploadedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FleetImage), args.Error(1)
}

func (m *MockImageService) ListByEntity(ctx context.Context, entityType domain.ImageEntityType, entityID uuid.UUID) ([]*domain.FleetImage, error) {
	args := m.Called(ctx, entityType, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.FleetImage), args.Error(1)
}

func (m *MockImageService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockProtocolService - мок для protocol service
type MockProtocolService struct {
	mock.Mock
}

func (m *MockProtocolService) details(args mock.Arguments) (*protocol.Details, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*protocol.Details), args.Error(1)
}

func (m *MockProtocolService) ListProtocols(ctx context.Context, filter repository.ProtocolFilter) (*protocol.ProtocolList, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*protocol.ProtocolList), args.Error(1)
}

func (m *MockProtocolService) GetProtocol(ctx context.Context, id uuid.UUID) (*protocol.Details, error) {
	return m.details(m.Called(ctx, id))
}

func (m *MockProtocolService) CreateProtocol(ctx context.Context, req *protocol.ProtocolInput, createdBy *uuid.UUID) (*protocol.Details, error) {
	return m.details(m.Called(ctx, req, createdBy))
}

func (m *MockProtocolService) UpdateProtocol(ctx context.Context, id uuid.UUID, req *protocol.ProtocolInput) (*protocol.Details, error) {
	return m.details(m.Called(ctx, id, req))
}

func (m *MockProtocolService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ProtocolStatus) (*protocol.Details, error) {
	return m.details(m.Called(ctx, id, status))
}

func (m *MockProtocolService) AddComment(ctx context.Context, id uuid.UUID, req *protocol.CommentRequest, author protocol.Author) (*domain.ProtocolComment, error) {
	args := m.Called(ctx, id, req, author)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProtocolComment), args.Error(1)
}

func (m *MockProtocolService) DeleteProtocol(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockReportService - мок для report service
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dashboard), args.Error(1)
}

func (m *MockReportService) Summary(ctx context.Context, dr domain.DateRange) (*domain.FinancialSummary, error) {
	args := m.Called(ctx, dr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinancialSummary), args.Error(1)
}

func (m *MockReportService) Comparison(ctx context.Context, period domain.ReportPeriod) (*domain.PeriodComparison, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PeriodComparison), args.Error(1)
}

func (m *MockReportService) BreakEven(ctx context.Context, dr domain.DateRange) (*domain.BreakEvenAnalysis, error) {
	args := m.Called(ctx, dr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BreakEvenAnalysis), args.Error(1)
}

// MockMaintenanceService - мок для maintenance service
type MockMaintenanceService struct {
	mock.Mock
}

func (m *MockMaintenanceService) ListMaintenance(ctx context.Context, filter repository.JournalFilter) ([]*domain.FleetMaintenance, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.FleetMaintenance), args.Error(1)
}

func (m *MockMaintenanceService) GetMaintenance(ctx context.Context, id uuid.UUID) (*domain.FleetMaintenance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FleetMaintenance), args.Error(1)
}

func (m *MockMaintenanceService) CreateMaintenance(ctx context.Context, req *maintenance.CreateMaintenanceRequest, createdBy *uuid.UUID) (*domain.FleetMaintenance, error) {
	args := m.Called(ctx, req, createdBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FleetMaintenance), args.Error(1)
}

func (m *MockMaintenanceService) DeleteMaintenance(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockMaintenanceService) ListFuel(ctx context.Context, filter repository.JournalFilter) ([]*domain.FleetFuelEntry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.FleetFuelEntry), args.Error(1)
}

func (m *MockMaintenanceService) CreateFuel(ctx context.Context, req *maintenance.CreateFuelRequest, createdBy *uuid.UUID) (*domain.FleetFuelEntry, error) {
	args := m.Called(ctx, req, createdBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FleetFuelEntry), args.Error(1)
}

func (m *MockMaintenanceService) DeleteFuel(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockMaintenanceService) FuelStats(ctx context.Context, vehicleID uuid.UUID) (domain.FuelStats, error) {
	args := m.Called(ctx, vehicleID)
	return args.Get(0).(domain.FuelStats), args.Error(1)
}

var (
	_ AuthService        = (*MockAuthService)(nil)
	_ FleetService       = (*MockFleetService)(nil)
	_ RentalService      = (*MockRentalService)(nil)
	_ MaintenanceService = (*MockMaintenanceService)(nil)
	_ ImageService       = (*MockImageService)(nil)
	_ ProtocolService    = (*MockProtocolService)(nil)
	_ ReportService      = (*MockReportService)(nil)
)
