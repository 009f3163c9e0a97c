package repository

import (
	"context"
	"time"

	"github.com/frontandrew/fleet/internal/domain"
	"github.com/google/uuid"
)

// Page - параметры пагинации
type Page struct {
	Limit  int
	Offset int
}

// VehicleFilter - условия выборки автомобилей
type VehicleFilter struct {
	Status          domain.VehicleStatus
	Category        domain.VehicleCategory
	UsageType       domain.VehicleUsageType
	Search          string // Подстрока марки, модели или номера
	IncludeInactive bool
	SortBy          string // make, year, current_mileage, daily_rate, created_at
	SortDesc        bool
	Page
}

// RentalFilter - условия выборки аренд.
// Границы по датам полуоткрытые: StartDateFrom <= start_date < StartDateTo,
// EndDateFrom <= конец аренды < EndDateTo, где конец - фактическая дата возврата,
// а если ее нет - плановая. Незаданная граница не ограничивает выборку.
type RentalFilter struct {
	VehicleID     *uuid.UUID
	Status        domain.RentalStatus
	StartDateFrom *time.Time
	StartDateTo   *time.Time
	EndDateFrom   *time.Time
	EndDateTo     *time.Time
	Page
}

// JournalFilter - условия выборки записей журналов обслуживания и заправок
type JournalFilter struct {
	VehicleID *uuid.UUID
	Period    *domain.DateRange
	Page
}

// ProtocolFilter - условия выборки протоколов приемки
type ProtocolFilter struct {
	Status   domain.ProtocolStatus
	OpenOnly bool
	Search   string // Подстрока номера, госномера или имени владельца
	Page
}

// UserRepository определяет методы для работы с пользователями
type UserRepository interface {
	// Create создает нового пользователя
	Create(ctx context.Context, user *domain.User) error

	// GetByID возвращает пользователя по ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail возвращает пользователя по email
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update обновляет данные пользователя
	Update(ctx context.Context, user *domain.User) error

	// UpdateLastLogin обновляет время последнего входа
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
}

// RefreshTokenRepository определяет методы для работы с refresh токенами
type RefreshTokenRepository interface {
	// Create сохраняет новый refresh token
	Create(ctx context.Context, token *domain.RefreshToken) error

	// GetByTokenHash возвращает refresh token по хешу
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)

	// Revoke отзывает refresh token
	Revoke(ctx context.Context, tokenHash string) error

	// RevokeAllUserTokens отзывает все токены пользователя
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error

	// DeleteExpired удаляет истекшие токены
	DeleteExpired(ctx context.Context) error
}

// VehicleRepository определяет методы для работы с автомобилями автопарка
type VehicleRepository interface {
	// Create создает новый автомобиль
	Create(ctx context.Context, vehicle *domain.FleetVehicle) error

	// GetByID возвращает автомобиль по ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.FleetVehicle, error)

	// GetByLicensePlate возвращает автомобиль по номеру
	GetByLicensePlate(ctx context.Context, licensePlate string) (*domain.FleetVehicle, error)

	// Update сохраняет автомобиль, если версия в БД совпадает с vehicle.Version.
	// При успехе версия увеличивается, иначе - ErrConcurrentModification
	Update(ctx context.Context, vehicle *domain.FleetVehicle) error

	// Delete удаляет автомобиль (мягкое удаление - is_active = false)
	Delete(ctx context.Context, id uuid.UUID) error

	// List возвращает страницу автомобилей и общее число подходящих под фильтр
	List(ctx context.Context, filter VehicleFilter) ([]*domain.FleetVehicle, int, error)

	// ListUpcomingService возвращает активные автомобили, у которых до сервиса
	// осталось не больше mileageMargin км или срок наступает до before
	ListUpcomingService(ctx context.Context, before time.Time, mileageMargin int) ([]*domain.FleetVehicle, error)
}

// RentalRepository определяет методы для работы с арендами
type RentalRepository interface {
	// Create создает новую аренду
	Create(ctx context.Context, rental *domain.FleetRental) error

	// GetByID возвращает аренду по ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.FleetRental, error)

	// Update сохраняет аренду с проверкой версии
	Update(ctx context.Context, rental *domain.FleetRental) error

	// Delete удаляет аренду
	Delete(ctx context.Context, id uuid.UUID) error

	// List возвращает страницу аренд и общее число подходящих под фильтр
	List(ctx context.Context, filter RentalFilter) ([]*domain.FleetRental, int, error)

	// ListOverlapping возвращает неотмененные аренды, пересекающиеся с диапазоном.
	// Если vehicleID задан - только по этому автомобилю
	ListOverlapping(ctx context.Context, dr domain.DateRange, vehicleID *uuid.UUID) ([]*domain.FleetRental, error)
}

// MaintenanceRepository определяет методы для работы с журналом обслуживания
type MaintenanceRepository interface {
	// Create добавляет запись
	Create(ctx context.Context, m *domain.FleetMaintenance) error

	// GetByID возвращает запись по ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.FleetMaintenance, error)

	// Delete удаляет запись
	Delete(ctx context.Context, id uuid.UUID) error

	// List возвращает записи, новые первыми
	List(ctx context.Context, filter JournalFilter) ([]*domain.FleetMaintenance, error)
}

// FuelEntryRepository определяет методы для работы с журналом заправок
type FuelEntryRepository interface {
	// Create добавляет запись
	Create(ctx context.Context, f *domain.FleetFuelEntry) error

	// GetByID возвращает запись по ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.FleetFuelEntry, error)

	// Delete удаляет запись
	Delete(ctx context.Context, id uuid.UUID) error

	// List возвращает записи, новые первыми
	List(ctx context.Context, filter JournalFilter) ([]*domain.FleetFuelEntry, error)
}

// ProtocolRepository определяет методы для работы с протоколами приемки
type ProtocolRepository interface {
	// Create сохраняет протокол и присваивает ему очередной номер за месяц приемки
	Create(ctx context.Context, p *domain.CarReceptionProtocol) error

	// GetByID возвращает протокол вместе с комментариями
	GetByID(ctx context.Context, id uuid.UUID) (*domain.CarReceptionProtocol, error)

	// Update обновляет протокол (без комментариев)
	Update(ctx context.Context, p *domain.CarReceptionProtocol) error

	// Delete удаляет протокол и его комментарии
	Delete(ctx context.Context, id uuid.UUID) error

	// List возвращает страницу протоколов (без комментариев) и общее число
	List(ctx context.Context, filter ProtocolFilter) ([]*domain.CarReceptionProtocol, int, error)

	// AddComment добавляет комментарий
	AddComment(ctx context.Context, c *domain.ProtocolComment) error

	// CountOpen возвращает число незавершенных протоколов
	CountOpen(ctx context.Context) (int, error)
}

// ImageRepository определяет методы для работы с метаданными изображений
type ImageRepository interface {
	// Create сохраняет метаданные загруженного файла
	Create(ctx context.Context, img *domain.FleetImage) error

	// GetByID возвращает изображение по ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.FleetImage, error)

	// Delete удаляет запись
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByEntity возвращает изображения сущности в порядке загрузки
	ListByEntity(ctx context.Context, entityType domain.ImageEntityType, entityID uuid.UUID) ([]*domain.FleetImage, error)
}
