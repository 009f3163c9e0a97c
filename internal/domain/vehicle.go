package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// VehicleStatus представляет текущее состояние автомобиля автопарка
type VehicleStatus string

const (
	VehicleStatusAvailable    VehicleStatus = "AVAILABLE"      // Свободен, можно выдавать
	VehicleStatusRented       VehicleStatus = "RENTED"         // Выдан по аренде
	VehicleStatusMaintenance  VehicleStatus = "MAINTENANCE"    // На обслуживании
	VehicleStatusOutOfService VehicleStatus = "OUT_OF_SERVICE" // Выведен из эксплуатации
)

// VehicleCategory - класс автомобиля
type VehicleCategory string

const (
	VehicleCategoryEconomy  VehicleCategory = "ECONOMY"
	VehicleCategoryCompact  VehicleCategory = "COMPACT"
	VehicleCategoryStandard VehicleCategory = "STANDARD"
	VehicleCategoryPremium  VehicleCategory = "PREMIUM"
	VehicleCategorySUV      VehicleCategory = "SUV"
	VehicleCategoryVan      VehicleCategory = "VAN"
)

// VehicleUsageType - назначение автомобиля в автопарке
type VehicleUsageType string

const (
	UsageTypeRental      VehicleUsageType = "RENTAL"      // Коммерческая аренда
	UsageTypeReplacement VehicleUsageType = "REPLACEMENT" // Подменный автомобиль для клиентов сервиса
	UsageTypeCompany     VehicleUsageType = "COMPANY"     // Служебный автомобиль
)

// FuelType - тип топлива
type FuelType string

const (
	FuelTypePetrol   FuelType = "PETROL"
	FuelTypeDiesel   FuelType = "DIESEL"
	FuelTypeHybrid   FuelType = "HYBRID"
	FuelTypeElectric FuelType = "ELECTRIC"
	FuelTypeLPG      FuelType = "LPG"
)

// Пороговые значения для напоминаний о сервисе
const (
	ServiceDueWithin        = 14 * 24 * time.Hour
	ServiceDueMileageMargin = 1000
)

var vehicleTransitions = transitionTable[VehicleStatus]{
	VehicleStatusAvailable:    {VehicleStatusRented, VehicleStatusMaintenance, VehicleStatusOutOfService},
	VehicleStatusRented:       {VehicleStatusAvailable, VehicleStatusMaintenance},
	VehicleStatusMaintenance:  {VehicleStatusAvailable, VehicleStatusOutOfService},
	VehicleStatusOutOfService: {VehicleStatusAvailable, VehicleStatusMaintenance},
}

// FleetVehicle - автомобиль автопарка
type FleetVehicle struct {
	ID                   uuid.UUID        `json:"id"`
	Make                 string           `json:"make"`
	Model                string           `json:"model"`
	Year                 int              `json:"year"`
	LicensePlate         string           `json:"license_plate"`
	VIN                  string           `json:"vin"`
	Color                string           `json:"color,omitempty"`
	Category             VehicleCategory  `json:"category"`
	UsageType            VehicleUsageType `json:"usage_type"`
	FuelType             FuelType         `json:"fuel_type"`
	Status               VehicleStatus    `json:"status"`
	InitialMileage       int              `json:"initial_mileage"`
	CurrentMileage       int              `json:"current_mileage"`
	LastServiceDate      *time.Time       `json:"last_service_date,omitempty"`
	NextServiceDate      *time.Time       `json:"next_service_date,omitempty"`
	NextServiceMileage   *int             `json:"next_service_mileage,omitempty"`
	InsuranceExpiryDate  *time.Time       `json:"insurance_expiry_date,omitempty"`
	InspectionExpiryDate *time.Time       `json:"inspection_expiry_date,omitempty"`
	DailyRate            float64          `json:"daily_rate"`
	Notes                string           `json:"notes,omitempty"`
	IsActive             bool             `json:"is_active"`
	Version              int              `json:"version"` // Для оптимистичной блокировки
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

// NormalizeLicensePlate нормализует номер автомобиля (убирает пробелы, приводит к верхнему регистру)
func NormalizeLicensePlate(plate string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(plate), " ", ""))
}

// DisplayName возвращает "Марка Модель (номер)"
func (v *FleetVehicle) DisplayName() string {
	return strings.TrimSpace(v.Make+" "+v.Model) + " (" + v.LicensePlate + ")"
}

// IsRentable проверяет, можно ли выдать автомобиль прямо сейчас
func (v *FleetVehicle) IsRentable() bool {
	return v.IsActive && v.Status == VehicleStatusAvailable
}

// NeedsService проверяет, подходит ли срок очередного обслуживания
func (v *FleetVehicle) NeedsService(now time.Time) bool {
	if v.NextServiceDate != nil && !v.NextServiceDate.After(now.Add(ServiceDueWithin)) {
		return true
	}
	if v.NextServiceMileage != nil && v.CurrentMileage+ServiceDueMileageMargin >= *v.NextServiceMileage {
		return true
	}
	return false
}

// RecordMileage поднимает текущий пробег; меньшие значения игнорируются
func (v *FleetVehicle) RecordMileage(mileage int) bool {
	if mileage > v.CurrentMileage {
		v.CurrentMileage = mileage
		return true
	}
	return false
}

// TransitionTo переводит автомобиль в новый статус, если переход разрешен
func (v *FleetVehicle) TransitionTo(next VehicleStatus) error {
	if !next.IsValid() {
		return ErrInvalidStatus
	}
	status, err := transition(vehicleTransitions, v.Status, next)
	if err != nil {
		return err
	}
	v.Status = status
	return nil
}

// Validate проверяет корректность данных автомобиля
func (v *FleetVehicle) Validate() error {
	if strings.TrimSpace(v.Make) == "" || strings.TrimSpace(v.Model) == "" {
		return ErrInvalidVehicleData
	}
	if v.Year < 1950 || v.Year > time.Now().Year()+1 {
		return ErrInvalidVehicleData
	}

	v.LicensePlate = NormalizeLicensePlate(v.LicensePlate)
	if len(v.LicensePlate) < 4 || len(v.LicensePlate) > 12 {
		return ErrInvalidLicensePlate
	}

	// VIN не обязателен, но если указан - 17 символов
	v.VIN = strings.ToUpper(strings.TrimSpace(v.VIN))
	if v.VIN != "" && len(v.VIN) != 17 {
		return ErrInvalidVIN
	}

	if !v.Category.IsValid() || !v.UsageType.IsValid() || !v.FuelType.IsValid() {
		return ErrInvalidVehicleData
	}
	if !v.Status.IsValid() {
		return ErrInvalidStatus
	}
	if v.InitialMileage < 0 || v.CurrentMileage < v.InitialMileage {
		return ErrInvalidMileage
	}
	if v.DailyRate < 0 {
		return ErrInvalidVehicleData
	}
	return nil
}

// AllowedNextStatuses возвращает статусы, в которые можно перевести автомобиль
func (s VehicleStatus) AllowedNextStatuses() []VehicleStatus {
	return vehicleTransitions.next(s)
}

// IsValid проверяет, что значение входит в перечисление
func (s VehicleStatus) IsValid() bool {
	_, ok := VehicleStatusLabels[s]
	return ok
}

// IsValid проверяет, что значение входит в перечисление
func (c VehicleCategory) IsValid() bool {
	_, ok := VehicleCategoryLabels[c]
	return ok
}

// IsValid проверяет, что значение входит в перечисление
func (u VehicleUsageType) IsValid() bool {
	_, ok := UsageTypeLabels[u]
	return ok
}

// IsValid проверяет, что значение входит в перечисление
func (f FuelType) IsValid() bool {
	_, ok := FuelTypeLabels[f]
	return ok
}
