package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frontandrew/fleet/internal/domain"
	"github.com/frontandrew/fleet/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type vehicleRepository struct {
	db *pgxpool.Pool
}

func NewVehicleRepository(db *pgxpool.Pool) repository.VehicleRepository {
	return &vehicleRepository{db: db}
}

const vehicleColumns = `
	id, make, model, year, license_plate, vin, color, category, usage_type, fuel_type, status,
	initial_mileage, current_mileage, last_service_date, next_service_date, next_service_mileage,
	insurance_expiry_date, inspection_expiry_date, daily_rate, notes, is_active, version,
	created_at, updated_at`

// Колонки, по которым разрешена сортировка списка
var vehicleSortColumns = map[string]string{
	"make":            "make",
	"year":            "year",
	"current_mileage": "current_mileage",
	"daily_rate":      "daily_rate",
	"created_at":      "created_at",
	"license_plate":   "license_plate",
}

func scanVehicle(row pgx.Row) (*domain.FleetVehicle, error) {
	v := &domain.FleetVehicle{}
	err := row.Scan(
		&v.ID,
		&v.Make,
		&v.Model,
		&v.Year,
		&v.LicensePlate,
		&v.VIN,
		&v.Color,
		&v.Category,
		&v.UsageType,
		&v.FuelType,
		&v.Status,
		&v.InitialMileage,
		&v.CurrentMileage,
		&v.LastServiceDate,
		&v.NextServiceDate,
		&v.NextServiceMileage,
		&v.InsuranceExpiryDate,
		&v.InspectionExpiryDate,
		&v.DailyRate,
		&v.Notes,
		&v.IsActive,
		&v.Version,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *vehicleRepository) Create(ctx context.Context, vehicle *domain.FleetVehicle) error {
	query := `
		INSERT INTO fleet_vehicles (
			id, make, model, year, license_plate, vin, color, category, usage_type, fuel_type, status,
			initial_mileage, current_mileage, last_service_date, next_service_date, next_service_mileage,
			insurance_expiry_date, inspection_expiry_date, daily_rate, notes, is_active, version,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
	`

	vehicle.ID = uuid.New()
	vehicle.CreatedAt = time.Now().UTC()
	vehicle.UpdatedAt = vehicle.CreatedAt
	vehicle.Version = 1

	// Нормализуем номер перед сохранением
	vehicle.LicensePlate = domain.NormalizeLicensePlate(vehicle.LicensePlate)

	_, err := r.db.Exec(ctx, query,
		vehicle.ID,
		vehicle.Make,
		vehicle.Model,
		vehicle.Year,
		vehicle.LicensePlate,
		vehicle.VIN,
		vehicle.Color,
		vehicle.Category,
		vehicle.UsageType,
		vehicle.FuelType,
		vehicle.Status,
		vehicle.InitialMileage,
		vehicle.CurrentMileage,
		vehicle.LastServiceDate,
		vehicle.NextServiceDate,
		vehicle.NextServiceMileage,
		vehicle.InsuranceExpiryDate,
		vehicle.InspectionExpiryDate,
		vehicle.DailyRate,
		vehicle.Notes,
		vehicle.IsActive,
		vehicle.Version,
		vehicle.CreatedAt,
		vehicle.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrVehicleAlreadyExists
		}
		return err
	}

	return nil
}

func (r *vehicleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.FleetVehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM fleet_vehicles WHERE id = $1`

	vehicle, err := scanVehicle(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrVehicleNotFound
		}
		return nil, err
	}

	return vehicle, nil
}

func (r *vehicleRepository) GetByLicensePlate(ctx context.Context, licensePlate string) (*domain.FleetVehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM fleet_vehicles WHERE license_plate = $1`

	// Нормализуем номер перед поиском
	normalizedPlate := domain.NormalizeLicensePlate(licensePlate)

	vehicle, err := scanVehicle(r.db.QueryRow(ctx, query, normalizedPlate))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrVehicleNotFound
		}
		return nil, err
	}

	return vehicle, nil
}

func (r *vehicleRepository) Update(ctx context.Context, vehicle *domain.FleetVehicle) error {
	query := `
		UPDATE fleet_vehicles
		SET make = $3, model = $4, year = $5, license_plate = $6, vin = $7, color = $8,
		    category = $9, usage_type = $10, fuel_type = $11, status = $12,
		    initial_mileage = $13, current_mileage = $14, last_service_date = $15,
		    next_service_date = $16, next_service_mileage = $17, insurance_expiry_date = $18,
		    inspection_expiry_date = $19, daily_rate = $20, notes = $21, is_active = $22,
		    updated_at = $23, version = version + 1
		WHERE id = $1 AND version = $2
	`

	updatedAt := time.Now().UTC()
	vehicle.LicensePlate = domain.NormalizeLicensePlate(vehicle.LicensePlate)

	result, err := r.db.Exec(ctx, query,
		vehicle.ID,
		vehicle.Version,
		vehicle.Make,
		vehicle.Model,
		vehicle.Year,
		vehicle.LicensePlate,
		vehicle.VIN,
		vehicle.Color,
		vehicle.Category,
		vehicle.UsageType,
		vehicle.FuelType,
		vehicle.Status,
		vehicle.InitialMileage,
		vehicle.CurrentMileage,
		vehicle.LastServiceDate,
		vehicle.NextServiceDate,
		vehicle.NextServiceMileage,
		vehicle.InsuranceExpiryDate,
		vehicle.InspectionExpiryDate,
		vehicle.DailyRate,
		vehicle.Notes,
		vehicle.IsActive,
		updatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrVehicleAlreadyExists
		}
		return err
	}

	if result.RowsAffected() == 0 {
		return r.missingOrStale(ctx, vehicle.ID)
	}

	vehicle.Version++
	vehicle.UpdatedAt = updatedAt
	return nil
}

// missingOrStale различает отсутствующую запись и устаревшую версию
func (r *vehicleRepository) missingOrStale(ctx context.Context, id uuid.UUID) error {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM fleet_vehicles WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrVehicleNotFound
	}
	return domain.ErrConcurrentModification
}

func (r *vehicleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Мягкое удаление - устанавливаем is_active = false
	query := `
		UPDATE fleet_vehicles
		SET is_active = false, updated_at = $2, version = version + 1
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, id, time.Now().UTC())
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrVehicleNotFound
	}

	return nil
}

func (r *vehicleRepository) List(ctx context.Context, filter repository.VehicleFilter) ([]*domain.FleetVehicle, int, error) {
	var c conditions
	if !filter.IncludeInactive {
		c.addRaw("is_active = true")
	}
	if filter.Status != "" {
		c.add("status = $%d", filter.Status)
	}
	if filter.Category != "" {
		c.add("category = $%d", filter.Category)
	}
	if filter.UsageType != "" {
		c.add("usage_type = $%d", filter.UsageType)
	}
	if filter.Search != "" {
		c.add("(make ILIKE $%[1]d OR model ILIKE $%[1]d OR license_plate ILIKE $%[1]d)", "%"+filter.Search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM fleet_vehicles`+c.where(), c.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	column, ok := vehicleSortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}

	query := `SELECT ` + vehicleColumns + ` FROM fleet_vehicles` + c.where() +
		fmt.Sprintf(" ORDER BY %s %s, id", column, direction)
	query += c.page(filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, c.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	vehicles, err := collectVehicles(rows)
	if err != nil {
		return nil, 0, err
	}
	return vehicles, total, nil
}

func (r *vehicleRepository) ListUpcomingService(ctx context.Context, before time.Time, mileageMargin int) ([]*domain.FleetVehicle, error) {
	query := `
		SELECT ` + vehicleColumns + `
		FROM fleet_vehicles
		WHERE is_active = true
		  AND status <> 'OUT_OF_SERVICE'
		  AND (next_service_date <= $1 OR next_service_mileage <= current_mileage + $2)
		ORDER BY next_service_date NULLS LAST, next_service_mileage NULLS LAST
	`

	rows, err := r.db.Query(ctx, query, before, mileageMargin)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectVehicles(rows)
}

func collectVehicles(rows pgx.Rows) ([]*domain.FleetVehicle, error) {
	vehicles := []*domain.FleetVehicle{}
	for rows.Next() {
		vehicle, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, vehicle)
	}
	return vehicles, rows.Err()
}
