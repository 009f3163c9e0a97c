package domain

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// MaintenanceType - вид обслуживания
type MaintenanceType string

const (
	MaintenanceTypeOilChange  MaintenanceType = "OIL_CHANGE"
	MaintenanceTypeTireChange MaintenanceType = "TIRE_CHANGE"
	MaintenanceTypeInspection MaintenanceType = "INSPECTION"
	MaintenanceTypeBrakes     MaintenanceType = "BRAKES"
	MaintenanceTypeRepair     MaintenanceType = "REPAIR"
	MaintenanceTypeBodywork   MaintenanceType = "BODYWORK"
	MaintenanceTypeOther      MaintenanceType = "OTHER"
)

// FleetMaintenance - запись журнала обслуживания автомобиля
// Журнал только дополняется: записи не редактируются
type FleetMaintenance struct {
	ID                 uuid.UUID       `json:"id"`
	VehicleID          uuid.UUID       `json:"vehicle_id"`
	Type               MaintenanceType `json:"type"`
	Description        string          `json:"description,omitempty"`
	Date               time.Time       `json:"date"`
	Mileage            int             `json:"mileage"`
	LaborCost          float64         `json:"labor_cost"`
	PartsCost          float64         `json:"parts_cost"`
	TotalCost          float64         `json:"total_cost"`
	ServiceProvider    string          `json:"service_provider,omitempty"`
	NextServiceDate    *time.Time      `json:"next_service_date,omitempty"`
	NextServiceMileage *int            `json:"next_service_mileage,omitempty"`
	CreatedBy          *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

// Validate проверяет запись и досчитывает итоговую стоимость
func (m *FleetMaintenance) Validate() error {
	if m.VehicleID == uuid.Nil || m.Date.IsZero() {
		return ErrInvalidMaintenanceData
	}
	if !m.Type.IsValid() {
		return ErrInvalidMaintenanceData
	}
	if m.Mileage < 0 {
		return ErrInvalidMileage
	}
	if m.LaborCost < 0 || m.PartsCost < 0 || m.TotalCost < 0 {
		return ErrInvalidMaintenanceData
	}
	if m.TotalCost == 0 {
		m.TotalCost = m.LaborCost + m.PartsCost
	}
	if m.NextServiceDate != nil && m.NextServiceDate.Before(m.Date) {
		return ErrInvalidDateRange
	}
	if m.NextServiceMileage != nil && *m.NextServiceMileage <= m.Mileage {
		return ErrInvalidMileage
	}
	return nil
}

// ApplyTo переносит результаты обслуживания в карточку автомобиля
func (m *FleetMaintenance) ApplyTo(v *FleetVehicle) {
	if v.LastServiceDate == nil || m.Date.After(*v.LastServiceDate) {
		date := m.Date
		v.LastServiceDate = &date
		if m.NextServiceDate != nil {
			v.NextServiceDate = m.NextServiceDate
		}
		if m.NextServiceMileage != nil {
			v.NextServiceMileage = m.NextServiceMileage
		}
	}
	v.RecordMileage(m.Mileage)
}

// IsValid проверяет, что значение входит в перечисление
func (t MaintenanceType) IsValid() bool {
	_, ok := MaintenanceTypeLabels[t]
	return ok
}

// FleetFuelEntry - запись о заправке
type FleetFuelEntry struct {
	ID            uuid.UUID  `json:"id"`
	VehicleID     uuid.UUID  `json:"vehicle_id"`
	RentalID      *uuid.UUID `json:"rental_id,omitempty"`
	Date          time.Time  `json:"date"`
	Mileage       int        `json:"mileage"`
	Liters        float64    `json:"liters"`
	PricePerLiter float64    `json:"price_per_liter"`
	TotalCost     float64    `json:"total_cost"`
	FuelType      FuelType   `json:"fuel_type"`
	Station       string     `json:"station,omitempty"`
	FullTank      bool       `json:"full_tank"`
	CreatedBy     *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Validate проверяет запись и досчитывает итоговую стоимость
func (f *FleetFuelEntry) Validate() error {
	if f.VehicleID == uuid.Nil || f.Date.IsZero() {
		return ErrInvalidFuelEntryData
	}
	if f.Liters <= 0 || f.PricePerLiter < 0 || f.TotalCost < 0 {
		return ErrInvalidFuelEntryData
	}
	if f.Mileage < 0 {
		return ErrInvalidMileage
	}
	if !f.FuelType.IsValid() {
		return ErrInvalidFuelEntryData
	}
	if f.TotalCost == 0 {
		f.TotalCost = math.Round(f.Liters*f.PricePerLiter*100) / 100
	}
	return nil
}

// FuelStats - статистика расхода топлива по автомобилю
type FuelStats struct {
	VehicleID            uuid.UUID `json:"vehicle_id"`
	Entries              int       `json:"entries"`
	TotalLiters          float64   `json:"total_liters"`
	TotalCost            float64   `json:"total_cost"`
	AveragePricePerLiter float64   `json:"average_price_per_liter"`
	DistanceMeasured     int       `json:"distance_measured"`
	AverageConsumption   float64   `json:"average_consumption"` // л/100 км, 0 если не хватает данных
	CostPerKm            float64   `json:"cost_per_km"`
}

// CalculateFuelStats считает расход по методу "от полного бака до полного бака".
// Учитываются только отрезки между двумя заправками до полного бака.
func CalculateFuelStats(vehicleID uuid.UUID, entries []*FleetFuelEntry) FuelStats {
	stats := FuelStats{VehicleID: vehicleID}
	if len(entries) == 0 {
		return stats
	}

	sorted := make([]*FleetFuelEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Mileage == sorted[j].Mileage {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].Mileage < sorted[j].Mileage
	})

	var measuredLiters, measuredCost float64
	lastFull := -1
	var pendingLiters, pendingCost float64

	for i, e := range sorted {
		stats.Entries++
		stats.TotalLiters += e.Liters
		stats.TotalCost += e.TotalCost

		if lastFull >= 0 {
			pendingLiters += e.Liters
			pendingCost += e.TotalCost
		}
		if !e.FullTank {
			continue
		}
		if lastFull >= 0 {
			distance := e.Mileage - sorted[lastFull].Mileage
			if distance > 0 {
				stats.DistanceMeasured += distance
				measuredLiters += pendingLiters
				measuredCost += pendingCost
			}
		}
		lastFull = i
		pendingLiters, pendingCost = 0, 0
	}

	if stats.TotalLiters > 0 {
		stats.AveragePricePerLiter = round2(stats.TotalCost / stats.TotalLiters)
	}
	if stats.DistanceMeasured > 0 {
		stats.AverageConsumption = round2(measuredLiters / float64(stats.DistanceMeasured) * 100)
		stats.CostPerKm = round2(measuredCost / float64(stats.DistanceMeasured))
	}
	stats.TotalLiters = round2(stats.TotalLiters)
	stats.TotalCost = round2(stats.TotalCost)
	return stats
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
