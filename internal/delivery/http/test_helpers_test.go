package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/frontandrew/fleet/internal/delivery/http/middleware"
	"github.com/frontandrew/fleet/internal/domain"
	"github.com/frontandrew/fleet/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// CreateTestUser создает тестового пользователя
func CreateTestUser(id uuid.UUID, email string, role domain.UserRole) *domain.User {
	return &domain.User{
		ID:       id,
		Email:    email,
		FullName: "Test User",
		Phone:    "+48 600 000 000",
		Role:     role,
		IsActive: true,
	}
}

// CreateTestVehicle создает тестовый автомобиль
func CreateTestVehicle(id uuid.UUID, licensePlate string) *domain.FleetVehicle {
	return &domain.FleetVehicle{
		ID:           id,
		Make:         "Toyota",
		Model:        "Corolla",
		Year:         2023,
		LicensePlate: licensePlate,
		Category:     domain.VehicleCategoryCompact,
		UsageType:    domain.UsageTypeRental,
		FuelType:     domain.FuelTypePetrol,
		Status:       domain.VehicleStatusAvailable,
		DailyRate:    150,
		IsActive:     true,
		Version:      1,
	}
}

// CreateAuthContext создает контекст с claims пользователя
func CreateAuthContext(userID uuid.UUID, role domain.UserRole) context.Context {
	return middleware.WithUserClaims(context.Background(), &jwt.Claims{
		UserID: userID,
		Email:  "test@example.com",
		Role:   role,
	})
}

// newTestRequest собирает запрос с JSON телом, claims и параметрами маршрута chi
func newTestRequest(t *testing.T, method, target string, body interface{}, ctx context.Context, params map[string]string) *http.Request {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)

	req := httptest.NewRequest(method, target, reader).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// decodeResponse разбирает JSON ответ в map
func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	if w.Body.Len() == 0 {
		return response
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return response
}

// AssertSuccess проверяет успешный ответ API
func AssertSuccess(t *testing.T, response map[string]interface{}) {
	t.Helper()
	success, ok := response["success"].(bool)
	if !ok || !success {
		t.Errorf("Expected success=true, got %v", response)
	}
}

// AssertError проверяет ошибочный ответ API
func AssertError(t *testing.T, response map[string]interface{}) {
	t.Helper()
	success, ok := response["success"].(bool)
	if !ok || success {
		t.Errorf("Expected success=false, got %v", response)
	}
}
