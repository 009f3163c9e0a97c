package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// ReportPeriod - шаг сравнения периодов (неделя к неделе, месяц к месяцу, год к году)
type ReportPeriod string

const (
	PeriodWeek  ReportPeriod = "week"
	PeriodMonth ReportPeriod = "month"
	PeriodYear  ReportPeriod = "year"
)

// IsValid проверяет, что значение входит в перечисление
func (p ReportPeriod) IsValid() bool {
	return p == PeriodWeek || p == PeriodMonth || p == PeriodYear
}

// Bounds возвращает текущий и предыдущий периоды, в которые попадает момент at.
// Неделя начинается с понедельника; все границы в UTC.
func (p ReportPeriod) Bounds(at time.Time) (current, previous DateRange, err error) {
	at = at.UTC()
	day := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)

	switch p {
	case PeriodWeek:
		offset := (int(day.Weekday()) + 6) % 7
		start := day.AddDate(0, 0, -offset)
		current = DateRange{From: start, To: start.AddDate(0, 0, 7)}
		previous = DateRange{From: start.AddDate(0, 0, -7), To: start}
	case PeriodMonth:
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		current = DateRange{From: start, To: start.AddDate(0, 1, 0)}
		previous = DateRange{From: start.AddDate(0, -1, 0), To: start}
	case PeriodYear:
		start := time.Date(day.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
		current = DateRange{From: start, To: start.AddDate(1, 0, 0)}
		previous = DateRange{From: start.AddDate(-1, 0, 0), To: start}
	default:
		return DateRange{}, DateRange{}, ErrInvalidReportPeriod
	}
	return current, previous, nil
}

// FinancialSummary - финансовые итоги за период
type FinancialSummary struct {
	Period          DateRange `json:"period"`
	Revenue         float64   `json:"revenue"`
	RentalCount     int       `json:"rental_count"`
	RentalDays      int       `json:"rental_days"`
	MaintenanceCost float64   `json:"maintenance_cost"`
	FuelCost        float64   `json:"fuel_cost"`
	FixedCost       float64   `json:"fixed_cost"`
	TotalCost       float64   `json:"total_cost"`
	Profit          float64   `json:"profit"`
	Margin          float64   `json:"margin"` // % от выручки
}

// Summarize считает итоги периода. Выручка учитывается по завершенным арендам,
// вернувшимся в пределах периода; постоянные расходы берутся пропорционально длине периода.
func Summarize(dr DateRange, rentals []*FleetRental, maintenance []*FleetMaintenance, fuel []*FleetFuelEntry, fixedMonthly float64) FinancialSummary {
	s := FinancialSummary{Period: dr}

	for _, r := range rentals {
		if r.Status != RentalStatusCompleted || !dr.Contains(r.EndDate()) {
			continue
		}
		s.Revenue += r.TotalAmount()
		s.RentalCount++
		s.RentalDays += r.Days()
	}
	for _, m := range maintenance {
		if dr.Contains(m.Date) {
			s.MaintenanceCost += m.TotalCost
		}
	}
	for _, f := range fuel {
		if dr.Contains(f.Date) {
			s.FuelCost += f.TotalCost
		}
	}

	// Средний месяц - 30.44 суток
	months := dr.Duration().Hours() / 24 / 30.44
	s.FixedCost = round2(fixedMonthly * months)

	s.Revenue = round2(s.Revenue)
	s.MaintenanceCost = round2(s.MaintenanceCost)
	s.FuelCost = round2(s.FuelCost)
	s.TotalCost = round2(s.MaintenanceCost + s.FuelCost + s.FixedCost)
	s.Profit = round2(s.Revenue - s.TotalCost)
	if s.Revenue > 0 {
		s.Margin = round2(s.Profit / s.Revenue * 100)
	}
	return s
}

// MetricChange - изменение показателя между периодами
type MetricChange struct {
	Current       float64 `json:"current"`
	Previous      float64 `json:"previous"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	NoBaseline    bool    `json:"no_baseline"` // Предыдущее значение равно нулю, процент не определен
}

// NewMetricChange считает абсолютное и относительное изменение
func NewMetricChange(current, previous float64) MetricChange {
	c := MetricChange{
		Current:  round2(current),
		Previous: round2(previous),
		Change:   round2(current - previous),
	}
	if previous == 0 {
		c.NoBaseline = true
		return c
	}
	c.ChangePercent = round2((current - previous) / math.Abs(previous) * 100)
	return c
}

// PeriodComparison - сравнение текущего периода с предыдущим
type PeriodComparison struct {
	Period      ReportPeriod     `json:"period"`
	Current     FinancialSummary `json:"current"`
	Previous    FinancialSummary `json:"previous"`
	Revenue     MetricChange     `json:"revenue"`
	TotalCost   MetricChange     `json:"total_cost"`
	Profit      MetricChange     `json:"profit"`
	RentalCount MetricChange     `json:"rental_count"`
}

// Compare собирает сравнение двух итогов
func Compare(period ReportPeriod, current, previous FinancialSummary) PeriodComparison {
	return PeriodComparison{
		Period:      period,
		Current:     current,
		Previous:    previous,
		Revenue:     NewMetricChange(current.Revenue, previous.Revenue),
		TotalCost:   NewMetricChange(current.TotalCost, previous.TotalCost),
		Profit:      NewMetricChange(current.Profit, previous.Profit),
		RentalCount: NewMetricChange(float64(current.RentalCount), float64(previous.RentalCount)),
	}
}

// BreakEvenAnalysis - анализ точки безубыточности
type BreakEvenAnalysis struct {
	Period                  DateRange `json:"period"`
	FixedCosts              float64   `json:"fixed_costs"`
	RevenuePerRentalDay     float64   `json:"revenue_per_rental_day"`
	VariableCostPerDay      float64   `json:"variable_cost_per_day"`
	ContributionPerDay      float64   `json:"contribution_per_day"`
	ContributionMarginRatio float64   `json:"contribution_margin_ratio"`
	BreakEvenRentalDays     float64   `json:"break_even_rental_days"`
	BreakEvenRevenue        float64   `json:"break_even_revenue"`
	ActualRentalDays        int       `json:"actual_rental_days"`
	ActualRevenue           float64   `json:"actual_revenue"`
	Reachable               bool      `json:"reachable"`     // false, если каждый день аренды приносит убыток
	SafetyMargin            float64   `json:"safety_margin"` // % выручки сверх точки безубыточности
}

// BreakEven считает точку безубыточности на основе итогов периода.
// Переменные расходы - обслуживание и топливо, отнесенные на день аренды.
func BreakEven(s FinancialSummary) BreakEvenAnalysis {
	b := BreakEvenAnalysis{
		Period:           s.Period,
		FixedCosts:       s.FixedCost,
		ActualRentalDays: s.RentalDays,
		ActualRevenue:    s.Revenue,
	}
	if s.RentalDays == 0 {
		return b
	}

	days := float64(s.RentalDays)
	b.RevenuePerRentalDay = round2(s.Revenue / days)
	b.VariableCostPerDay = round2((s.MaintenanceCost + s.FuelCost) / days)
	b.ContributionPerDay = round2(b.RevenuePerRentalDay - b.VariableCostPerDay)
	if b.ContributionPerDay <= 0 || b.RevenuePerRentalDay == 0 {
		return b
	}

	b.Reachable = true
	b.ContributionMarginRatio = round2(b.ContributionPerDay / b.RevenuePerRentalDay)
	b.BreakEvenRentalDays = round2(s.FixedCost / b.ContributionPerDay)
	b.BreakEvenRevenue = round2(b.BreakEvenRentalDays * b.RevenuePerRentalDay)
	if s.Revenue > 0 {
		b.SafetyMargin = round2((s.Revenue - b.BreakEvenRevenue) / s.Revenue * 100)
	}
	return b
}

// Dashboard - сводка для главной страницы
type Dashboard struct {
	GeneratedAt         time.Time             `json:"generated_at"`
	TotalVehicles       int                   `json:"total_vehicles"`
	VehiclesByStatus    map[VehicleStatus]int `json:"vehicles_by_status"`
	ActiveRentals       int                   `json:"active_rentals"`
	ScheduledRentals    int                   `json:"scheduled_rentals"`
	OverdueRentals      int                   `json:"overdue_rentals"`
	VehiclesNeedService []uuid.UUID           `json:"vehicles_need_service"`
	UtilizationPercent  float64               `json:"utilization_percent"`
	MonthRevenue        float64               `json:"month_revenue"`
	MonthCosts          float64               `json:"month_costs"`
	OpenProtocols       int                   `json:"open_protocols"`
}

// BuildDashboard собирает сводку по текущему состоянию автопарка
func BuildDashboard(now time.Time, vehicles []*FleetVehicle, rentals []*FleetRental, month FinancialSummary, openProtocols int) Dashboard {
	d := Dashboard{
		GeneratedAt:         now,
		VehiclesByStatus:    make(map[VehicleStatus]int, len(VehicleStatusLabels)),
		VehiclesNeedService: []uuid.UUID{},
		MonthRevenue:        month.Revenue,
		MonthCosts:          round2(month.MaintenanceCost + month.FuelCost),
		OpenProtocols:       openProtocols,
	}
	for _, s := range AllVehicleStatuses() {
		d.VehiclesByStatus[s] = 0
	}

	for _, v := range vehicles {
		if !v.IsActive {
			continue
		}
		d.TotalVehicles++
		d.VehiclesByStatus[v.Status]++
		if v.NeedsService(now) {
			d.VehiclesNeedService = append(d.VehiclesNeedService, v.ID)
		}
	}

	for _, r := range rentals {
		switch r.Status {
		case RentalStatusActive:
			d.ActiveRentals++
			if r.PlannedEndDate.Before(now) {
				d.OverdueRentals++
			}
		case RentalStatusScheduled:
			d.ScheduledRentals++
		}
	}

	if d.TotalVehicles > 0 {
		d.UtilizationPercent = round2(float64(d.VehiclesByStatus[VehicleStatusRented]) / float64(d.TotalVehicles) * 100)
	}
	return d
}
