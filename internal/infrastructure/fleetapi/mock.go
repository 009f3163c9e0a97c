package fleetapi

import (
	"fmt"
	"time"

	"github.com/frontandrew/fleet/internal/domain"
	"github.com/google/uuid"
)

// Демонстрационные данные для работы без сервера. Подставляются только явно,
// через Result.Fallback; идентификаторы стабильны между вызовами

func mockID(kind string, n int) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("fleet-mock/%s/%d", kind, n)))
}

// mockEpoch - опорная дата демонстрационных данных
var mockEpoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// MockVehicles возвращает демонстрационный автопарк
func MockVehicles() []*domain.FleetVehicle {
	specs := []struct {
		make, model, plate string
		year               int
		category           domain.VehicleCategory
		fuel               domain.FuelType
		status             domain.VehicleStatus
		mileage            int
		rate               float64
	}{
		{"Toyota", "Corolla", "WX1001A", 2023, domain.VehicleCategoryCompact, domain.FuelTypeHybrid, domain.VehicleStatusAvailable, 18400, 180},
		{"Skoda", "Octavia", "WX1002B", 2022, domain.VehicleCategoryStandard, domain.FuelTypeDiesel, domain.VehicleStatusRented, 52300, 210},
		{"Volkswagen", "Transporter", "WX1003C", 2021, domain.VehicleCategoryVan, domain.FuelTypeDiesel, domain.VehicleStatusMaintenance, 98100, 320},
		{"BMW", "X3", "WX1004D", 2024, domain.VehicleCategorySUV, domain.FuelTypePetrol, domain.VehicleStatusAvailable, 7600, 390},
		{"Fiat", "500e", "WX1005E", 2023, domain.VehicleCategoryEconomy, domain.FuelTypeElectric, domain.VehicleStatusAvailable, 12900, 140},
	}

	vehicles := make([]*domain.FleetVehicle, 0, len(specs))
	for i, s := range specs {
		nextService := mockEpoch.AddDate(0, i+1, 0)
		vehicles = append(vehicles, &domain.FleetVehicle{
			ID:              mockID("vehicle", i+1),
			Make:            s.make,
			Model:           s.model,
			Year:            s.year,
			LicensePlate:    s.plate,
			VIN:             fmt.Sprintf("MOCKVIN%010d", i+1),
			Category:        s.category,
			UsageType:       domain.UsageTypeRental,
			FuelType:        s.fuel,
			Status:          s.status,
			InitialMileage:  s.mileage / 2,
			CurrentMileage:  s.mileage,
			NextServiceDate: &nextService,
			DailyRate:       s.rate,
			IsActive:        true,
			Version:         1,
			CreatedAt:       mockEpoch,
			UpdatedAt:       mockEpoch,
		})
	}
	return vehicles
}

// MockRentals возвращает аренды демонстрационного автопарка
func MockRentals() []*domain.FleetRental {
	vehicles := MockVehicles()
	returned := mockEpoch.AddDate(0, 1, 4)
	mileageEnd := vehicles[0].CurrentMileage

	return []*domain.FleetRental{
		{
			ID:             mockID("rental", 1),
			VehicleID:      vehicles[0].ID,
			ClientName:     "Anna Nowak",
			Status:         domain.RentalStatusCompleted,
			StartDate:      mockEpoch.AddDate(0, 1, 0),
			PlannedEndDate: mockEpoch.AddDate(0, 1, 4),
			ActualEndDate:  &returned,
			MileageStart:   mileageEnd - 640,
			MileageEnd:     &mileageEnd,
			DailyRate:      vehicles[0].DailyRate,
			Deposit:        500,
			Version:        3,
		},
		{
			ID:             mockID("rental", 2),
			VehicleID:      vehicles[1].ID,
			ClientName:     "Piotr Zielinski",
			Status:         domain.RentalStatusActive,
			StartDate:      mockEpoch.AddDate(0, 2, 0),
			PlannedEndDate: mockEpoch.AddDate(0, 2, 7),
			MileageStart:   vehicles[1].CurrentMileage,
			DailyRate:      vehicles[1].DailyRate,
			Deposit:        800,
			Version:        2,
		},
		{
			ID:             mockID("rental", 3),
			VehicleID:      vehicles[3].ID,
			ClientName:     "Katarzyna Lewandowska",
			Status:         domain.RentalStatusScheduled,
			StartDate:      mockEpoch.AddDate(0, 2, 10),
			PlannedEndDate: mockEpoch.AddDate(0, 2, 12),
			DailyRate:      vehicles[3].DailyRate,
			Deposit:        1000,
			Version:        1,
		},
	}
}

// MockMaintenance возвращает журнал обслуживания автомобиля
func MockMaintenance(vehicleID uuid.UUID) []*domain.FleetMaintenance {
	return []*domain.FleetMaintenance{
		{
			ID:              mockID("maintenance", 1),
			VehicleID:       vehicleID,
			Type:            domain.MaintenanceTypeOilChange,
			Date:            mockEpoch.AddDate(0, 0, 20),
			Mileage:         15000,
			LaborCost:       120,
			PartsCost:       230,
			TotalCost:       350,
			ServiceProvider: "Auto Serwis Mokotow",
			CreatedAt:       mockEpoch.AddDate(0, 0, 20),
		},
	}
}

// MockFuelEntries возвращает заправки автомобиля
func MockFuelEntries(vehicleID uuid.UUID) []*domain.FleetFuelEntry {
	entries := make([]*domain.FleetFuelEntry, 0, 3)
	for i := 0; i < 3; i++ {
		liters := 40.0 + float64(i)*2
		entries = append(entries, &domain.FleetFuelEntry{
			ID:            mockID("fuel", i+1),
			VehicleID:     vehicleID,
			Date:          mockEpoch.AddDate(0, 0, 7*(i+1)),
			Mileage:       15000 + 600*i,
			Liters:        liters,
			PricePerLiter: 6.5,
			TotalCost:     liters * 6.5,
			FuelType:      domain.FuelTypePetrol,
			FullTank:      true,
			CreatedAt:     mockEpoch.AddDate(0, 0, 7*(i+1)),
		})
	}
	return entries
}

// MockDashboard собирает сводку по демонстрационным данным
func MockDashboard() *domain.Dashboard {
	d := domain.BuildDashboard(mockEpoch.AddDate(0, 2, 3), MockVehicles(), MockRentals(), domain.FinancialSummary{}, 0)
	return &d
}
