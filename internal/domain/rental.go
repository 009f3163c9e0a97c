package domain

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RentalStatus представляет этап жизненного цикла аренды
type RentalStatus string

const (
	RentalStatusScheduled RentalStatus = "SCHEDULED" // Забронирована
	RentalStatusActive    RentalStatus = "ACTIVE"    // Автомобиль выдан
	RentalStatusCompleted RentalStatus = "COMPLETED" // Автомобиль возвращен
	RentalStatusCancelled RentalStatus = "CANCELLED" // Отменена
)

var rentalTransitions = transitionTable[RentalStatus]{
	RentalStatusScheduled: {RentalStatusActive, RentalStatusCancelled},
	RentalStatusActive:    {RentalStatusCompleted},
}

// FleetRental - аренда автомобиля клиентом или сотрудником
type FleetRental struct {
	ID                uuid.UUID    `json:"id"`
	VehicleID         uuid.UUID    `json:"vehicle_id"`
	ClientID          *uuid.UUID   `json:"client_id,omitempty"`
	ClientName        string       `json:"client_name"`
	ClientPhone       string       `json:"client_phone,omitempty"`
	ClientEmail       string       `json:"client_email,omitempty"`
	EmployeeID        *uuid.UUID   `json:"employee_id,omitempty"` // Кто оформил аренду
	Status            RentalStatus `json:"status"`
	StartDate         time.Time    `json:"start_date"`
	PlannedEndDate    time.Time    `json:"planned_end_date"`
	ActualEndDate     *time.Time   `json:"actual_end_date,omitempty"`
	MileageStart      int          `json:"mileage_start"`
	MileageEnd        *int         `json:"mileage_end,omitempty"`
	FuelLevelStart    int          `json:"fuel_level_start"` // 0-100 %
	FuelLevelEnd      *int         `json:"fuel_level_end,omitempty"`
	DailyRate         float64      `json:"daily_rate"`
	Deposit           float64      `json:"deposit"`
	DamageReported    bool         `json:"damage_reported"`
	DamageDescription string       `json:"damage_description,omitempty"`
	DamageCost        float64      `json:"damage_cost"`
	Notes             string       `json:"notes,omitempty"`
	Version           int          `json:"version"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`

	// Связанные данные (не хранятся в таблице аренды)
	Vehicle *FleetVehicle `json:"vehicle,omitempty"`
}

// EndDate возвращает фактическую дату возврата, а если ее нет - плановую
func (r *FleetRental) EndDate() time.Time {
	if r.ActualEndDate != nil {
		return *r.ActualEndDate
	}
	return r.PlannedEndDate
}

// Occupies проверяет, занимает ли аренда автомобиль в указанном диапазоне.
// Отмененные аренды автомобиль не занимают.
func (r *FleetRental) Occupies(dr DateRange) bool {
	if r.Status == RentalStatusCancelled {
		return false
	}
	var end *time.Time
	if e := r.EndDate(); !e.IsZero() {
		end = &e
	}
	return dr.Overlaps(r.StartDate, end)
}

// Days возвращает количество оплачиваемых суток (минимум одни)
func (r *FleetRental) Days() int {
	d := r.EndDate().Sub(r.StartDate)
	days := int(math.Ceil(d.Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}

// TotalAmount возвращает итоговую сумму аренды с учетом ущерба
func (r *FleetRental) TotalAmount() float64 {
	return float64(r.Days())*r.DailyRate + r.DamageCost
}

// DrivenDistance возвращает пробег за время аренды
func (r *FleetRental) DrivenDistance() int {
	if r.MileageEnd == nil {
		return 0
	}
	return *r.MileageEnd - r.MileageStart
}

// IsEditable проверяет, можно ли еще менять условия аренды
func (r *FleetRental) IsEditable() bool {
	return r.Status == RentalStatusScheduled
}

// TransitionTo переводит аренду в новый статус, если переход разрешен
func (r *FleetRental) TransitionTo(next RentalStatus) error {
	if !next.IsValid() {
		return ErrInvalidStatus
	}
	status, err := transition(rentalTransitions, r.Status, next)
	if err != nil {
		return err
	}
	r.Status = status
	return nil
}

// Validate проверяет корректность данных аренды
func (r *FleetRental) Validate() error {
	if r.VehicleID == uuid.Nil {
		return ErrInvalidRentalData
	}
	if strings.TrimSpace(r.ClientName) == "" && r.ClientID == nil && r.EmployeeID == nil {
		return ErrInvalidRentalData
	}
	if !r.Status.IsValid() {
		return ErrInvalidStatus
	}
	if r.StartDate.IsZero() || !r.PlannedEndDate.After(r.StartDate) {
		return ErrInvalidDateRange
	}
	if r.ActualEndDate != nil && r.ActualEndDate.Before(r.StartDate) {
		return ErrInvalidDateRange
	}
	if !validFuelLevel(r.FuelLevelStart) || (r.FuelLevelEnd != nil && !validFuelLevel(*r.FuelLevelEnd)) {
		return ErrInvalidFuelLevel
	}
	if r.MileageStart < 0 || (r.MileageEnd != nil && *r.MileageEnd < r.MileageStart) {
		return ErrInvalidMileage
	}
	if r.DailyRate < 0 || r.Deposit < 0 || r.DamageCost < 0 {
		return ErrInvalidRentalData
	}
	return nil
}

func validFuelLevel(level int) bool {
	return level >= 0 && level <= 100
}

// AllowedNextStatuses возвращает статусы, в которые можно перевести аренду
func (s RentalStatus) AllowedNextStatuses() []RentalStatus {
	return rentalTransitions.next(s)
}

// IsTerminal проверяет, завершен ли жизненный цикл
func (s RentalStatus) IsTerminal() bool {
	return s == RentalStatusCompleted || s == RentalStatusCancelled
}

// IsValid проверяет, что значение входит в перечисление
func (s RentalStatus) IsValid() bool {
	_, ok := RentalStatusLabels[s]
	return ok
}
