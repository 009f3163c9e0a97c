package cached

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/frontandrew/fleet/internal/domain"
	"github.com/frontandrew/fleet/internal/pkg/logger"
	"github.com/frontandrew/fleet/internal/pkg/redis"
	"github.com/frontandrew/fleet/internal/repository"
	"github.com/google/uuid"
)

const vehicleCachePrefix = "fleet:vehicle:"

// Cache - операции Redis, нужные кэширующему слою
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// VehicleRepository добавляет кэширование карточек автомобилей по ID.
// Любая запись сбрасывает кэш автомобиля; списки не кэшируются
type VehicleRepository struct {
	repo   repository.VehicleRepository
	cache  Cache
	ttl    time.Duration
	logger logger.Logger
}

// NewVehicleRepository создает новый кэшируемый vehicle repository
func NewVehicleRepository(repo repository.VehicleRepository, cache Cache, ttl time.Duration, log logger.Logger) *VehicleRepository {
	return &VehicleRepository{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		logger: log,
	}
}

var _ repository.VehicleRepository = (*VehicleRepository)(nil)

func vehicleKey(id uuid.UUID) string {
	return vehicleCachePrefix + id.String()
}

// GetByID возвращает автомобиль из кэша, при промахе - из БД
func (r *VehicleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.FleetVehicle, error) {
	key := vehicleKey(id)

	// 1. Проверяем кэш
	cached, err := r.cache.Get(ctx, key)
	if err == nil {
		vehicle := &domain.FleetVehicle{}
		if err := json.Unmarshal([]byte(cached), vehicle); err == nil {
			return vehicle, nil
		}
		// Битая запись - перечитываем из БД
		_ = r.cache.Del(ctx, key)
	} else if !errors.Is(err, redis.ErrCacheMiss) {
		// Недоступность кэша не мешает работе с БД
		r.logger.Warn("vehicle cache read failed", map[string]interface{}{
			"vehicle_id": id.String(),
			"error":      err.Error(),
		})
	}

	// 2. Cache miss - идем в БД
	vehicle, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// 3. Сохраняем результат в кэш
	if data, err := json.Marshal(vehicle); err == nil {
		_ = r.cache.Set(ctx, key, data, r.ttl)
	}

	return vehicle, nil
}

// Create создает автомобиль; кэш заполнится при первом чтении
func (r *VehicleRepository) Create(ctx context.Context, vehicle *domain.FleetVehicle) error {
	return r.repo.Create(ctx, vehicle)
}

// GetByLicensePlate не кэшируется - используется при проверке уникальности номера
func (r *VehicleRepository) GetByLicensePlate(ctx context.Context, licensePlate string) (*domain.FleetVehicle, error) {
	return r.repo.GetByLicensePlate(ctx, licensePlate)
}

// Update обновляет автомобиль и инвалидирует кэш
func (r *VehicleRepository) Update(ctx context.Context, vehicle *domain.FleetVehicle) error {
	err := r.repo.Update(ctx, vehicle)
	// Сбрасываем кэш и при конфликте версий: в кэше могла остаться устаревшая карточка
	if err == nil || errors.Is(err, domain.ErrConcurrentModification) {
		r.invalidate(ctx, vehicle.ID)
	}
	return err
}

// Delete удаляет автомобиль и инвалидирует кэш
func (r *VehicleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.repo.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

// List не кэшируется
func (r *VehicleRepository) List(ctx context.Context, filter repository.VehicleFilter) ([]*domain.FleetVehicle, int, error) {
	return r.repo.List(ctx, filter)
}

// ListUpcomingService не кэшируется
func (r *VehicleRepository) ListUpcomingService(ctx context.Context, before time.Time, mileageMargin int) ([]*domain.FleetVehicle, error) {
	return r.repo.ListUpcomingService(ctx, before, mileageMargin)
}

func (r *VehicleRepository) invalidate(ctx context.Context, id uuid.UUID) {
	if err := r.cache.Del(ctx, vehicleKey(id)); err != nil {
		r.logger.Warn("vehicle cache invalidation failed", map[string]interface{}{
			"vehicle_id": id.String(),
			"error":      err.Error(),
		})
	}
}
