package fleetapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/frontandrew/fleet/internal/domain"
	"github.com/frontandrew/fleet/internal/usecase/fleet"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(t *testing.T, w http.ResponseWriter, status int, data interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]interface{}{"success": status < 400}
	if status < 400 {
		body["data"] = data
	} else {
		body["error"] = data
	}
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

// writePage отдает срез items по limit и offset запроса вместе с total, как сервер
func writePage[T any](t *testing.T, w http.ResponseWriter, r *http.Request, items []T) {
	t.Helper()
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 || limit > pageSize {
		limit = pageSize
	}
	if offset > len(items) {
		offset = len(items)
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}

	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data":    items[offset:end],
		"total":   len(items),
	}))
}

func newTestClient(srv *httptest.Server, opts ...Option) *Client {
	opts = append([]Option{WithRetries(3, 0)}, opts...)
	return NewClient(srv.URL, 5*time.Second, opts...)
}

// TestClient_ListVehicles тестирует успешный запрос с фильтром и токеном
func TestClient_ListVehicles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/fleet/vehicles", r.URL.Path)
		assert.Equal(t, "AVAILABLE", r.URL.Query().Get("status"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		writeEnvelope(t, w, http.StatusOK, MockVehicles()[:2])
	}))
	defer srv.Close()

	res := newTestClient(srv, WithToken("secret")).ListVehicles(context.Background(), VehicleQuery{Status: domain.VehicleStatusAvailable})

	require.True(t, res.OK())
	assert.Len(t, res.Value, 2)
	assert.Equal(t, "WX1001A", res.Value[0].LicensePlate)
	assert.False(t, res.Substituted)
}

// TestClient_ResultKinds тестирует классификацию ответов
func TestClient_ResultKinds(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		message  string
		kind     Kind
		attempts int32
	}{
		{name: "не найден", status: http.StatusNotFound, message: "vehicle not found", kind: KindNotFound, attempts: 1},
		{name: "ошибка клиента", status: http.StatusConflict, message: "version conflict", kind: KindClientError, attempts: 1},
		{name: "ошибка сервера повторяется", status: http.StatusInternalServerError, message: "Failed to get vehicle", kind: KindServerError, attempts: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				writeEnvelope(t, w, tt.status, tt.message)
			}))
			defer srv.Close()

			res := newTestClient(srv).GetVehicle(context.Background(), uuid.New())

			assert.Equal(t, tt.kind, res.Kind)
			assert.Equal(t, tt.status, res.Status)
			assert.Equal(t, tt.attempts, atomic.LoadInt32(&calls))

			var apiErr *APIError
			require.ErrorAs(t, res.Err, &apiErr)
			assert.Equal(t, tt.message, apiErr.Message)
		})
	}
}

// TestClient_WritesAreNotRetried тестирует однократную отправку изменений
func TestClient_WritesAreNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeEnvelope(t, w, http.StatusBadGateway, "upstream failed")
	}))
	defer srv.Close()

	res := newTestClient(srv).CreateVehicle(context.Background(), &fleet.VehicleInput{Make: "Toyota"})

	assert.Equal(t, KindServerError, res.Kind)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

// TestClient_Fallback тестирует явную подстановку демонстрационных данных
func TestClient_Fallback(t *testing.T) {
	t.Run("сервер недоступен", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		client := newTestClient(srv, WithRetries(1, 0))
		srv.Close()

		res := client.ListVehicles(context.Background(), VehicleQuery{}).Fallback(MockVehicles)

		assert.Equal(t, KindNetworkError, res.Kind)
		assert.True(t, res.Substituted)
		assert.Len(t, res.Value, len(MockVehicles()))

		vehicles, err := res.Unwrap()
		assert.NoError(t, err)
		assert.NotEmpty(t, vehicles)
	})

	t.Run("отсутствие не подменяется", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(t, w, http.StatusNotFound, "rental not found")
		}))
		defer srv.Close()

		res := newTestClient(srv).GetRental(context.Background(), uuid.New()).
			Fallback(func() *domain.FleetRental { return MockRentals()[0] })

		assert.Equal(t, KindNotFound, res.Kind)
		assert.False(t, res.Substituted)
		assert.Nil(t, res.Value)

		_, err := res.Unwrap()
		assert.Error(t, err)
		assert.Nil(t, res.UnwrapOr(nil))
	})
}

// TestClient_CheckAvailability тестирует расчет свободных автомобилей на клиенте
func TestClient_CheckAvailability(t *testing.T) {
	vehicles := MockVehicles()
	dr := domain.DateRange{
		From: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC),
	}
	// Corolla занята, X3 свободен, остальные не в статусе AVAILABLE
	blocking := &domain.FleetRental{
		ID:             uuid.New(),
		VehicleID:      vehicles[0].ID,
		Status:         domain.RentalStatusScheduled,
		StartDate:      time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
		PlannedEndDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/fleet/vehicles":
			writeEnvelope(t, w, http.StatusOK, vehicles)
		case "/api/v1/fleet/rentals":
			assert.Equal(t, "2026-03-13T00:00:00Z", r.URL.Query().Get("start_date_to"))
			assert.Equal(t, "2026-03-10T00:00:00Z", r.URL.Query().Get("end_date_from"))
			writeEnvelope(t, w, http.StatusOK, []*domain.FleetRental{blocking})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	res := newTestClient(srv).CheckAvailability(context.Background(), dr)

	require.True(t, res.OK())
	plates := make([]string, 0, len(res.Value))
	for _, v := range res.Value {
		plates = append(plates, v.LicensePlate)
	}
	assert.Equal(t, []string{"WX1004D", "WX1005E"}, plates)
}

// TestClient_CheckAvailability_AllPages тестирует загрузку списков длиннее одной страницы
func TestClient_CheckAvailability_AllPages(t *testing.T) {
	dr := domain.DateRange{
		From: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC),
	}

	// Занятый автомобиль и его аренда оказываются последними, за первой страницей
	vehicles := make([]*domain.FleetVehicle, 0, pageSize+1)
	for i := 0; i <= pageSize; i++ {
		vehicles = append(vehicles, &domain.FleetVehicle{
			ID:           uuid.New(),
			LicensePlate: fmt.Sprintf("WX%04d", i),
			Status:       domain.VehicleStatusAvailable,
			IsActive:     true,
		})
	}
	target := vehicles[pageSize]

	// Сервер сортирует аренды по start_date DESC: более поздние аренды других
	// автомобилей идут раньше давно начавшейся аренды target
	rentals := make([]*domain.FleetRental, 0, pageSize+1)
	for i := 0; i < pageSize; i++ {
		rentals = append(rentals, &domain.FleetRental{
			ID:             uuid.New(),
			VehicleID:      uuid.New(),
			Status:         domain.RentalStatusScheduled,
			StartDate:      time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
			PlannedEndDate: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		})
	}
	rentals = append(rentals, &domain.FleetRental{
		ID:             uuid.New(),
		VehicleID:      target.ID,
		Status:         domain.RentalStatusActive,
		StartDate:      time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		PlannedEndDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	})

	var rentalPages int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/fleet/vehicles":
			writePage(t, w, r, vehicles)
		case "/api/v1/fleet/rentals":
			atomic.AddInt32(&rentalPages, 1)
			writePage(t, w, r, rentals)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	res := newTestClient(srv).CheckAvailability(context.Background(), dr)

	require.True(t, res.OK())
	assert.Len(t, res.Value, pageSize)
	for _, v := range res.Value {
		assert.NotEqual(t, target.ID, v.ID, "vehicle %s has an overlapping rental", v.LicensePlate)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&rentalPages))
}

// TestClient_NetworkErrors тестирует, что любой запрос на чтение при недоступном
// сервере возвращает KindNetworkError, а не панику
func TestClient_NetworkErrors(t *testing.T) {
	id := uuid.New()
	dr := domain.DateRange{
		From: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name  string
		fetch func(c *Client) (Kind, bool)
	}{
		{name: "GetVehicle", fetch: func(c *Client) (Kind, bool) {
			res := c.GetVehicle(context.Background(), id)
			return res.Kind, res.Value == nil
		}},
		{name: "ListAllVehicles", fetch: func(c *Client) (Kind, bool) {
			res := c.ListAllVehicles(context.Background(), VehicleQuery{})
			return res.Kind, res.Value == nil
		}},
		{name: "UpcomingService", fetch: func(c *Client) (Kind, bool) {
			res := c.UpcomingService(context.Background())
			return res.Kind, res.Value == nil
		}},
		{name: "Availability", fetch: func(c *Client) (Kind, bool) {
			res := c.Availability(context.Background(), dr, "")
			return res.Kind, res.Value == nil
		}},
		{name: "CheckAvailability", fetch: func(c *Client) (Kind, bool) {
			res := c.CheckAvailability(context.Background(), dr)
			return res.Kind, res.Value == nil
		}},
		{name: "ListRentals", fetch: func(c *Client) (Kind, bool) {
			res := c.ListRentals(context.Background(), RentalQuery{})
			return res.Kind, res.Value == nil
		}},
		{name: "GetRental", fetch: func(c *Client) (Kind, bool) {
			res := c.GetRental(context.Background(), id)
			return res.Kind, res.Value == nil
		}},
		{name: "ListVehicleMaintenance", fetch: func(c *Client) (Kind, bool) {
			res := c.ListVehicleMaintenance(context.Background(), id)
			return res.Kind, res.Value == nil
		}},
		{name: "ListVehicleFuel", fetch: func(c *Client) (Kind, bool) {
			res := c.ListVehicleFuel(context.Background(), id)
			return res.Kind, res.Value == nil
		}},
		{name: "FuelStats", fetch: func(c *Client) (Kind, bool) {
			res := c.FuelStats(context.Background(), id)
			return res.Kind, res.Value == nil
		}},
		{name: "ListImages", fetch: func(c *Client) (Kind, bool) {
			res := c.ListImages(context.Background(), domain.ImageEntityVehicle, id)
			return res.Kind, res.Value == nil
		}},
		{name: "ListProtocols", fetch: func(c *Client) (Kind, bool) {
			res := c.ListProtocols(context.Background(), ProtocolQuery{})
			return res.Kind, res.Value == nil
		}},
		{name: "GetProtocol", fetch: func(c *Client) (Kind, bool) {
			res := c.GetProtocol(context.Background(), id)
			return res.Kind, res.Value == nil
		}},
		{name: "Dashboard", fetch: func(c *Client) (Kind, bool) {
			res := c.Dashboard(context.Background())
			return res.Kind, res.Value == nil
		}},
		{name: "Summary", fetch: func(c *Client) (Kind, bool) {
			res := c.Summary(context.Background(), dr)
			return res.Kind, res.Value == nil
		}},
		{name: "Comparison", fetch: func(c *Client) (Kind, bool) {
			res := c.Comparison(context.Background(), domain.PeriodMonth)
			return res.Kind, res.Value == nil
		}},
		{name: "BreakEven", fetch: func(c *Client) (Kind, bool) {
			res := c.BreakEven(context.Background(), dr)
			return res.Kind, res.Value == nil
		}},
	}

	srv := httptest.NewServer(http.NotFoundHandler())
	client := newTestClient(srv, WithRetries(2, 0))
	srv.Close()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				kind  Kind
				empty bool
			)
			require.NotPanics(t, func() { kind, empty = tt.fetch(client) })
			assert.Equal(t, KindNetworkError, kind)
			assert.True(t, empty)
		})
	}
}

// TestClient_CheckAvailability_InvalidRange тестирует проверку диапазона до запросов
func TestClient_CheckAvailability_InvalidRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	}))
	defer srv.Close()

	at := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	res := newTestClient(srv).CheckAvailability(context.Background(), domain.DateRange{From: at, To: at})

	assert.Equal(t, KindClientError, res.Kind)
	assert.ErrorIs(t, res.Err, domain.ErrInvalidDateRange)
}

// TestClient_UploadImage тестирует отправку multipart формы
func TestClient_UploadImage(t *testing.T) {
	entityID := uuid.New()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "VEHICLE", r.FormValue("entity_type"))
		assert.Equal(t, entityID.String(), r.FormValue("entity_id"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		content, _ := io.ReadAll(file)
		assert.Equal(t, "front.jpg", header.Filename)
		assert.Equal(t, "jpeg-bytes", string(content))

		writeEnvelope(t, w, http.StatusCreated, &domain.FleetImage{ID: uuid.New(), EntityID: entityID, FileName: header.Filename})
	}))
	defer srv.Close()

	res := newTestClient(srv).UploadImage(context.Background(), domain.ImageEntityVehicle, entityID, "front.jpg", strings.NewReader("jpeg-bytes"))

	require.True(t, res.OK())
	assert.Equal(t, http.StatusCreated, res.Status)
	assert.Equal(t, entityID, res.Value.EntityID)
}

// TestClient_DeleteNoContent тестирует ответ без тела
func TestClient_DeleteNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	res := newTestClient(srv).DeleteVehicle(context.Background(), uuid.New())

	assert.True(t, res.OK())
	assert.Equal(t, http.StatusNoContent, res.Status)
}

// TestMockDashboard тестирует сводку по демонстрационным данным
func TestMockDashboard(t *testing.T) {
	d := MockDashboard()

	assert.Equal(t, 5, d.TotalVehicles)
	assert.Equal(t, 1, d.ActiveRentals)
	assert.Equal(t, 1, d.ScheduledRentals)
	assert.Equal(t, float64(20), d.UtilizationPercent)
}
