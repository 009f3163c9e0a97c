package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/frontandrew/fleet/internal/domain"
	"github.com/frontandrew/fleet/internal/pkg/logger"
	"github.com/frontandrew/fleet/internal/repository"
	"github.com/frontandrew/fleet/internal/usecase/maintenance"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// TestMaintenanceHandler_ListVehicleMaintenance тестирует фильтр журнала автомобиля
func TestMaintenanceHandler_ListVehicleMaintenance(t *testing.T) {
	vehicleID := uuid.New()
	october := domain.DateRange{
		From: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name           string
		query          string
		expectedFilter *repository.JournalFilter
		expectedStatus int
	}{
		{
			name:  "весь журнал",
			query: "",
			expectedFilter: &repository.JournalFilter{
				VehicleID: &vehicleID,
				Page:      repository.Page{Limit: maxPageSize},
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:  "за месяц",
			query: "?from=2026-10-01&to=2026-10-31",
			expectedFilter: &repository.JournalFilter{
				VehicleID: &vehicleID,
				Period:    &october,
				Page:      repository.Page{Limit: maxPageSize},
			},
			expectedStatus: http.StatusOK,
		},
		{name: "без конца периода", query: "?from=2026-10-01", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockMaintenanceService)
			if tt.expectedFilter != nil {
				mockService.On("ListMaintenance", mock.Anything, *tt.expectedFilter).Return([]*domain.FleetMaintenance{
					{ID: uuid.New(), VehicleID: vehicleID, Type: domain.MaintenanceTypeOilChange, TotalCost: 350},
				}, nil)
			}
			handler := NewMaintenanceHandler(mockService, logger.NewNoop())

			w := httptest.NewRecorder()
			handler.ListVehicleMaintenance(w, newTestRequest(t, http.MethodGet, "/"+tt.query, nil, nil,
				map[string]string{"id": vehicleID.String()}))

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

// TestMaintenanceHandler_ListMaintenance_InvalidVehicle тестирует неверный vehicle_id
func TestMaintenanceHandler_ListMaintenance_InvalidVehicle(t *testing.T) {
	mockService := new(MockMaintenanceService)
	handler := NewMaintenanceHandler(mockService, logger.NewNoop())

	w := httptest.NewRecorder()
	handler.ListMaintenance(w, newTestRequest(t, http.MethodGet, "/api/v1/fleet/maintenance?vehicle_id=abc", nil, nil, nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "ListMaintenance", mock.Anything, mock.Anything)
}

// TestMaintenanceHandler_CreateFuel тестирует запись заправки от имени пользователя
func TestMaintenanceHandler_CreateFuel(t *testing.T) {
	userID := uuid.New()
	vehicleID := uuid.New()

	tests := []struct {
		name           string
		mockErr        error
		expectedStatus int
	}{
		{name: "успешная запись", expectedStatus: http.StatusCreated},
		{name: "пробег меньше текущего", mockErr: domain.ErrInvalidMileage, expectedStatus: http.StatusBadRequest},
		{name: "автомобиль не найден", mockErr: domain.ErrVehicleNotFound, expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockMaintenanceService)
			call := mockService.On("CreateFuel", mock.Anything,
				mock.MatchedBy(func(req *maintenance.CreateFuelRequest) bool {
					return req.VehicleID == vehicleID && req.Liters == 42.5
				}), &userID)
			if tt.mockErr != nil {
				call.Return(nil, tt.mockErr)
			} else {
				call.Return(&domain.FleetFuelEntry{ID: uuid.New(), VehicleID: vehicleID, Liters: 42.5}, nil)
			}
			handler := NewMaintenanceHandler(mockService, logger.NewNoop())

			w := httptest.NewRecorder()
			handler.CreateFuel(w, newTestRequest(t, http.MethodPost, "/api/v1/fleet/fuel", map[string]interface{}{
				"vehicle_id": vehicleID,
				"date":       "2026-10-14T09:00:00Z",
				"mileage":    18600,
				"liters":     42.5,
				"full_tank":  true,
			}, CreateAuthContext(userID, domain.RoleEmployee), nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

// TestMaintenanceHandler_FuelStats тестирует статистику расхода
func TestMaintenanceHandler_FuelStats(t *testing.T) {
	vehicleID := uuid.New()
	mockService := new(MockMaintenanceService)
	mockService.On("FuelStats", mock.Anything, vehicleID).Return(domain.FuelStats{
		VehicleID:          vehicleID,
		Entries:            3,
		AverageConsumption: 6.8,
	}, nil)
	handler := NewMaintenanceHandler(mockService, logger.NewNoop())

	w := httptest.NewRecorder()
	handler.FuelStats(w, newTestRequest(t, http.MethodGet, "/", nil, nil, map[string]string{"id": vehicleID.String()}))

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["entries"])
	assert.Equal(t, 6.8, data["average_consumption"])
}
