package cached

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/frontandrew/fleet/internal/domain"
	"github.com/frontandrew/fleet/internal/pkg/logger"
	"github.com/frontandrew/fleet/internal/pkg/redis"
	"github.com/frontandrew/fleet/internal/repository/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// memoryCache - кэш в памяти с семантикой Redis для промаха
type memoryCache struct {
	data   map[string]string
	getErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string]string{}}
}

func (c *memoryCache) Get(_ context.Context, key string) (string, error) {
	if c.getErr != nil {
		return "", c.getErr
	}
	v, ok := c.data[key]
	if !ok {
		return "", redis.ErrCacheMiss
	}
	return v, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	switch v := value.(type) {
	case []byte:
		c.data[key] = string(v)
	case string:
		c.data[key] = v
	}
	return nil
}

func (c *memoryCache) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func testVehicle() *domain.FleetVehicle {
	return &domain.FleetVehicle{
		ID:           uuid.New(),
		Make:         "Skoda",
		Model:        "Octavia",
		Year:         2022,
		LicensePlate: "WA12345",
		Category:     domain.VehicleCategoryStandard,
		UsageType:    domain.UsageTypeRental,
		FuelType:     domain.FuelTypePetrol,
		Status:       domain.VehicleStatusAvailable,
		IsActive:     true,
		Version:      3,
	}
}

func TestVehicleRepository_GetByID(t *testing.T) {
	t.Run("Промах кэша - читаем из БД один раз", func(t *testing.T) {
		vehicle := testVehicle()
		repo := new(mocks.VehicleRepository)
		repo.On("GetByID", mock.Anything, vehicle.ID).Return(vehicle, nil).Once()

		cache := newMemoryCache()
		r := NewVehicleRepository(repo, cache, time.Minute, logger.NewNoop())

		first, err := r.GetByID(context.Background(), vehicle.ID)
		require.NoError(t, err)
		assert.Equal(t, vehicle.Make, first.Make)
		assert.Contains(t, cache.data, vehicleKey(vehicle.ID))

		second, err := r.GetByID(context.Background(), vehicle.ID)
		require.NoError(t, err)
		assert.Equal(t, vehicle.LicensePlate, second.LicensePlate)
		assert.Equal(t, vehicle.Version, second.Version)

		repo.AssertExpectations(t)
	})

	t.Run("Ошибка кэша не мешает чтению из БД", func(t *testing.T) {
		vehicle := testVehicle()
		repo := new(mocks.VehicleRepository)
		repo.On("GetByID", mock.Anything, vehicle.ID).Return(vehicle, nil).Twice()

		cache := newMemoryCache()
		cache.getErr = errors.New("connection refused")
		r := NewVehicleRepository(repo, cache, time.Minute, logger.NewNoop())

		for i := 0; i < 2; i++ {
			got, err := r.GetByID(context.Background(), vehicle.ID)
			require.NoError(t, err)
			assert.Equal(t, vehicle.ID, got.ID)
		}
		repo.AssertExpectations(t)
	})

	t.Run("Не найден - ошибка не кэшируется", func(t *testing.T) {
		id := uuid.New()
		repo := new(mocks.VehicleRepository)
		repo.On("GetByID", mock.Anything, id).Return(nil, domain.ErrVehicleNotFound)

		cache := newMemoryCache()
		r := NewVehicleRepository(repo, cache, time.Minute, logger.NewNoop())

		_, err := r.GetByID(context.Background(), id)
		assert.ErrorIs(t, err, domain.ErrVehicleNotFound)
		assert.Empty(t, cache.data)
	})

	t.Run("Битая запись в кэше перечитывается", func(t *testing.T) {
		vehicle := testVehicle()
		repo := new(mocks.VehicleRepository)
		repo.On("GetByID", mock.Anything, vehicle.ID).Return(vehicle, nil).Once()

		cache := newMemoryCache()
		cache.data[vehicleKey(vehicle.ID)] = "{not json"
		r := NewVehicleRepository(repo, cache, time.Minute, logger.NewNoop())

		got, err := r.GetByID(context.Background(), vehicle.ID)
		require.NoError(t, err)
		assert.Equal(t, vehicle.ID, got.ID)
		repo.AssertExpectations(t)
	})
}

func TestVehicleRepository_Invalidation(t *testing.T) {
	tests := []struct {
		name        string
		updateErr   error
		expectEvict bool
	}{
		{name: "Успешное обновление сбрасывает кэш", updateErr: nil, expectEvict: true},
		{name: "Конфликт версий сбрасывает кэш", updateErr: domain.ErrConcurrentModification, expectEvict: true},
		{name: "Прочая ошибка кэш не трогает", updateErr: errors.New("db down"), expectEvict: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vehicle := testVehicle()
			repo := new(mocks.VehicleRepository)
			repo.On("Update", mock.Anything, vehicle).Return(tt.updateErr)

			cache := newMemoryCache()
			cache.data[vehicleKey(vehicle.ID)] = `{"id":"` + vehicle.ID.String() + `"}`
			r := NewVehicleRepository(repo, cache, time.Minute, logger.NewNoop())

			err := r.Update(context.Background(), vehicle)
			if tt.updateErr != nil {
				assert.ErrorIs(t, err, tt.updateErr)
			} else {
				assert.NoError(t, err)
			}

			_, cached := cache.data[vehicleKey(vehicle.ID)]
			assert.Equal(t, !tt.expectEvict, cached)
		})
	}

	t.Run("Удаление сбрасывает кэш", func(t *testing.T) {
		id := uuid.New()
		repo := new(mocks.VehicleRepository)
		repo.On("Delete", mock.Anything, id).Return(nil)

		cache := newMemoryCache()
		cache.data[vehicleKey(id)] = "{}"
		r := NewVehicleRepository(repo, cache, time.Minute, logger.NewNoop())

		require.NoError(t, r.Delete(context.Background(), id))
		assert.NotContains(t, cache.data, vehicleKey(id))
	})
}
