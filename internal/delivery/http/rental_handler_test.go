package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/frontandrew/fleet/internal/domain"
	"github.com/frontandrew/fleet/internal/pkg/logger"
	"github.com/frontandrew/fleet/internal/repository"
	"github.com/frontandrew/fleet/internal/usecase/rental"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func testRental(id, vehicleID uuid.UUID, status domain.RentalStatus) *domain.FleetRental {
	return &domain.FleetRental{
		ID:             id,
		VehicleID:      vehicleID,
		ClientName:     "Anna Nowak",
		Status:         status,
		StartDate:      time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC),
		PlannedEndDate: time.Date(2026, 10, 23, 9, 0, 0, 0, time.UTC),
		DailyRate:      150,
		Version:        1,
	}
}

// TestRentalHandler_ListRentals тестирует разбор фильтра аренд
func TestRentalHandler_ListRentals(t *testing.T) {
	vehicleID := uuid.New()

	tests := []struct {
		name           string
		query          string
		mockSetup      func(*MockRentalService)
		expectedStatus int
	}{
		{
			name:  "фильтр по автомобилю и датам",
			query: "?vehicle_id=" + vehicleID.String() + "&status=SCHEDULED&start_date_from=2026-10-01&end_date_to=2026-11-01T00:00:00Z",
			mockSetup: func(m *MockRentalService) {
				m.On("ListRentals", mock.Anything, mock.MatchedBy(func(f repository.RentalFilter) bool {
					return f.VehicleID != nil && *f.VehicleID == vehicleID &&
						f.Status == domain.RentalStatusScheduled &&
						f.StartDateFrom.Equal(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)) &&
						f.EndDateTo.Equal(time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)) &&
						f.StartDateTo == nil && f.EndDateFrom == nil
				})).Return(&rental.RentalList{
					Items: []*domain.FleetRental{testRental(uuid.New(), vehicleID, domain.RentalStatusScheduled)},
					Total: 1,
				}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "невалидный vehicle_id",
			query:          "?vehicle_id=abc",
			mockSetup:      func(m *MockRentalService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "невалидная дата",
			query:          "?start_date_from=yesterday",
			mockSetup:      func(m *MockRentalService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockRentalService)
			tt.mockSetup(mockService)
			handler := NewRentalHandler(mockService, logger.NewNoop())

			w := httptest.NewRecorder()
			handler.ListRentals(w, newTestRequest(t, http.MethodGet, "/api/v1/fleet/rentals"+tt.query, nil, nil, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

// TestRentalHandler_CreateRental тестирует бронирование
func TestRentalHandler_CreateRental(t *testing.T) {
	employeeID := uuid.New()
	vehicleID := uuid.New()

	tests := []struct {
		name           string
		mockErr        error
		expectedStatus int
	}{
		{name: "успешное бронирование", expectedStatus: http.StatusCreated},
		{name: "пересечение с другой арендой", mockErr: domain.ErrRentalOverlap, expectedStatus: http.StatusConflict},
		{name: "автомобиль в ремонте", mockErr: domain.ErrVehicleUnavailable, expectedStatus: http.StatusConflict},
		{name: "некорректные даты", mockErr: domain.ErrInvalidDateRange, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockRentalService)
			call := mockService.On("CreateRental", mock.Anything, mock.MatchedBy(func(r *rental.RentalInput) bool {
				return r.VehicleID == vehicleID && r.ClientName == "Anna Nowak"
			}), &employeeID)
			if tt.mockErr != nil {
				call.Return(nil, tt.mockErr)
			} else {
				call.Return(testRental(uuid.New(), vehicleID, domain.RentalStatusScheduled), nil)
			}
			handler := NewRentalHandler(mockService, logger.NewNoop())

			body := map[string]interface{}{
				"vehicle_id":       vehicleID,
				"client_name":      "Anna Nowak",
				"start_date":       "2026-10-20T09:00:00Z",
				"planned_end_date": "2026-10-23T09:00:00Z",
			}
			w := httptest.NewRecorder()
			handler.CreateRental(w, newTestRequest(t, http.MethodPost, "/api/v1/fleet/rentals", body,
				CreateAuthContext(employeeID, domain.RoleEmployee), nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

// TestRentalHandler_Lifecycle тестирует выдачу, возврат и отмену
func TestRentalHandler_Lifecycle(t *testing.T) {
	rentalID := uuid.New()
	vehicleID := uuid.New()
	params := map[string]string{"id": rentalID.String()}

	t.Run("выдача без тела", func(t *testing.T) {
		mockService := new(MockRentalService)
		mockService.On("StartRental", mock.Anything, rentalID, &rental.StartRequest{}).
			Return(testRental(rentalID, vehicleID, domain.RentalStatusActive), nil)
		handler := NewRentalHandler(mockService, logger.NewNoop())

		w := httptest.NewRecorder()
		handler.StartRental(w, newTestRequest(t, http.MethodPost, "/", nil, nil, params))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ACTIVE", decodeResponse(t, w)["data"].(map[string]interface{})["status"])
	})

	t.Run("возврат с повреждениями", func(t *testing.T) {
		mockService := new(MockRentalService)
		mockService.On("CompleteRental", mock.Anything, rentalID, mock.MatchedBy(func(r *rental.CompleteRequest) bool {
			return r.MileageEnd == 15400 && r.DamageReported && r.DamageCost == 800
		})).Return(testRental(rentalID, vehicleID, domain.RentalStatusCompleted), nil)
		handler := NewRentalHandler(mockService, logger.NewNoop())

		w := httptest.NewRecorder()
		handler.CompleteRental(w, newTestRequest(t, http.MethodPost, "/", map[string]interface{}{
			"mileage_end":     15400,
			"fuel_level_end":  50,
			"damage_reported": true,
			"damage_cost":     800,
		}, nil, params))

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("отмена завершенной аренды", func(t *testing.T) {
		mockService := new(MockRentalService)
		mockService.On("CancelRental", mock.Anything, rentalID, mock.Anything).
			Return(nil, domain.ErrInvalidStatusTransition)
		handler := NewRentalHandler(mockService, logger.NewNoop())

		w := httptest.NewRecorder()
		handler.CancelRental(w, newTestRequest(t, http.MethodPost, "/", map[string]string{"reason": "client no-show"}, nil, params))

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("смена статуса", func(t *testing.T) {
		mockService := new(MockRentalService)
		mockService.On("UpdateStatus", mock.Anything, rentalID, domain.RentalStatusCancelled).
			Return(testRental(rentalID, vehicleID, domain.RentalStatusCancelled), nil)
		handler := NewRentalHandler(mockService, logger.NewNoop())

		w := httptest.NewRecorder()
		handler.UpdateStatus(w, newTestRequest(t, http.MethodPatch, "/", RentalStatusRequest{Status: domain.RentalStatusCancelled}, nil, params))

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})
}
