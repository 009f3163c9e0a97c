package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/frontandrew/fleet/internal/domain"
	"github.com/frontandrew/fleet/internal/pkg/config"
	"github.com/frontandrew/fleet/internal/pkg/jwt"
	"github.com/frontandrew/fleet/internal/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// stubTokens принимает токены вида "<role>" и выдает claims с этой ролью
type stubTokens struct {
	userID uuid.UUID
}

func (s stubTokens) ValidateToken(token string) (*jwt.Claims, error) {
	switch domain.UserRole(token) {
	case domain.RoleAdmin, domain.RoleManager, domain.RoleEmployee:
		return &jwt.Claims{UserID: s.userID, Email: "test@example.com", Role: domain.UserRole(token)}, nil
	}
	return nil, domain.ErrInvalidToken
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func testRouterConfig() *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{ServiceName: "fleet-api-test"},
		CORS:    config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
		Storage: config.StorageConfig{PublicPath: "/uploads"},
	}
}

func newTestRouter(fleet *MockFleetService, health map[string]Pinger, uploadDir string) http.Handler {
	log := logger.NewNoop()
	handlers := Handlers{
		Auth:        NewAuthHandler(new(MockAuthService), log),
		Fleet:       NewFleetHandler(fleet, log),
		Rental:      NewRentalHandler(new(MockRentalService), log),
		Maintenance: NewMaintenanceHandler(new(MockMaintenanceService), log),
		Image:       NewImageHandler(new(MockImageService), 0, log),
		Protocol:    NewProtocolHandler(new(MockProtocolService), new(MockAuthService), log),
		Report:      NewReportHandler(new(MockReportService), log),
	}
	return NewRouter(handlers, stubTokens{userID: uuid.New()}, nil, health, uploadDir, testRouterConfig(), log).Setup()
}

// TestRouter_DeleteRequiresManager тестирует ограничение удаления по роли
func TestRouter_DeleteRequiresManager(t *testing.T) {
	vehicleID := uuid.New()

	tests := []struct {
		name           string
		token          string
		expectDelete   bool
		expectedStatus int
	}{
		{name: "без токена", token: "", expectedStatus: http.StatusUnauthorized},
		{name: "сотрудник", token: string(domain.RoleEmployee), expectedStatus: http.StatusForbidden},
		{name: "менеджер", token: string(domain.RoleManager), expectDelete: true, expectedStatus: http.StatusNoContent},
		{name: "администратор", token: string(domain.RoleAdmin), expectDelete: true, expectedStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fleet := new(MockFleetService)
			if tt.expectDelete {
				fleet.On("DeleteVehicle", mock.Anything, vehicleID).Return(nil)
			}
			router := newTestRouter(fleet, nil, t.TempDir())

			req := httptest.NewRequest(http.MethodDelete, "/api/v1/fleet/vehicles/"+vehicleID.String(), nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			fleet.AssertExpectations(t)
		})
	}
}

// TestRouter_Health тестирует проверку зависимостей
func TestRouter_Health(t *testing.T) {
	tests := []struct {
		name           string
		health         map[string]Pinger
		expectedStatus int
		expectedState  string
	}{
		{
			name: "все доступны",
			health: map[string]Pinger{
				"postgres": pingerFunc(func(context.Context) error { return nil }),
				"redis":    pingerFunc(func(context.Context) error { return nil }),
			},
			expectedStatus: http.StatusOK,
			expectedState:  "healthy",
		},
		{
			name: "redis недоступен",
			health: map[string]Pinger{
				"postgres": pingerFunc(func(context.Context) error { return nil }),
				"redis":    pingerFunc(func(context.Context) error { return errors.New("connection refused") }),
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedState:  "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(new(MockFleetService), tt.health, t.TempDir())

			for _, path := range []string{"/health", "/api/v1/health"} {
				w := httptest.NewRecorder()
				router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

				assert.Equal(t, tt.expectedStatus, w.Code, path)
				assert.Equal(t, tt.expectedState, decodeResponse(t, w)["status"], path)
			}
		})
	}
}

// TestRouter_ServesUploads тестирует раздачу загруженных файлов
func TestRouter_ServesUploads(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "photo.txt"), []byte("stored"), 0o644))
	router := newTestRouter(new(MockFleetService), nil, dir)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads/photo.txt", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "stored", w.Body.String())
}
