package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frontandrew/fleet/internal/domain"
	"github.com/frontandrew/fleet/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type rentalRepository struct {
	db *pgxpool.Pool
}

func NewRentalRepository(db *pgxpool.Pool) repository.RentalRepository {
	return &rentalRepository{db: db}
}

const rentalColumns = `
	id, vehicle_id, client_id, client_name, client_phone, client_email, employee_id, status,
	start_date, planned_end_date, actual_end_date, mileage_start, mileage_end,
	fuel_level_start, fuel_level_end, daily_rate, deposit, damage_reported,
	damage_description, damage_cost, notes, version, created_at, updated_at`

// Фактический конец аренды: дата возврата, а если ее нет - плановая
const rentalEnd = `COALESCE(actual_end_date, planned_end_date)`

func scanRental(row pgx.Row) (*domain.FleetRental, error) {
	rental := &domain.FleetRental{}
	err := row.Scan(
		&rental.ID,
		&rental.VehicleID,
		&rental.ClientID,
		&rental.ClientName,
		&rental.ClientPhone,
		&rental.ClientEmail,
		&rental.EmployeeID,
		&rental.Status,
		&rental.StartDate,
		&rental.PlannedEndDate,
		&rental.ActualEndDate,
		&rental.MileageStart,
		&rental.MileageEnd,
		&rental.FuelLevelStart,
		&rental.FuelLevelEnd,
		&rental.DailyRate,
		&rental.Deposit,
		&rental.DamageReported,
		&rental.DamageDescription,
		&rental.DamageCost,
		&rental.Notes,
		&rental.Version,
		&rental.CreatedAt,
		&rental.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rental, nil
}

func (r *rentalRepository) Create(ctx context.Context, rental *domain.FleetRental) error {
	query := `
		INSERT INTO fleet_rentals (
			id, vehicle_id, client_id, client_name, client_phone, client_email, employee_id, status,
			start_date, planned_end_date, actual_end_date, mileage_start, mileage_end,
			fuel_level_start, fuel_level_end, daily_rate, deposit, damage_reported,
			damage_description, damage_cost, notes, version, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
	`

	rental.ID = uuid.New()
	rental.CreatedAt = time.Now().UTC()
	rental.UpdatedAt = rental.CreatedAt
	rental.Version = 1

	_, err := r.db.Exec(ctx, query,
		rental.ID,
		rental.VehicleID,
		rental.ClientID,
		rental.ClientName,
		rental.ClientPhone,
		rental.ClientEmail,
		rental.EmployeeID,
		rental.Status,
		rental.StartDate,
		rental.PlannedEndDate,
		rental.ActualEndDate,
		rental.MileageStart,
		rental.MileageEnd,
		rental.FuelLevelStart,
		rental.FuelLevelEnd,
		rental.DailyRate,
		rental.Deposit,
		rental.DamageReported,
		rental.DamageDescription,
		rental.DamageCost,
		rental.Notes,
		rental.Version,
		rental.CreatedAt,
		rental.UpdatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrVehicleNotFound
		}
		return err
	}

	return nil
}

func (r *rentalRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.FleetRental, error) {
	query := `SELECT ` + rentalColumns + ` FROM fleet_rentals WHERE id = $1`

	rental, err := scanRental(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRentalNotFound
		}
		return nil, err
	}

	return rental, nil
}

func (r *rentalRepository) Update(ctx context.Context, rental *domain.FleetRental) error {
	query := `
		UPDATE fleet_rentals
		SET vehicle_id = $3, client_id = $4, client_name = $5, client_phone = $6, client_email = $7,
		    employee_id = $8, status = $9, start_date = $10, planned_end_date = $11,
		    actual_end_date = $12, mileage_start = $13, mileage_end = $14, fuel_level_start = $15,
		    fuel_level_end = $16, daily_rate = $17, deposit = $18, damage_reported = $19,
		    damage_description = $20, damage_cost = $21, notes = $22, updated_at = $23,
		    version = version + 1
		WHERE id = $1 AND version = $2
	`

	updatedAt := time.Now().UTC()

	result, err := r.db.Exec(ctx, query,
		rental.ID,
		rental.Version,
		rental.VehicleID,
		rental.ClientID,
		rental.ClientName,
		rental.ClientPhone,
		rental.ClientEmail,
		rental.EmployeeID,
		rental.Status,
		rental.StartDate,
		rental.PlannedEndDate,
		rental.ActualEndDate,
		rental.MileageStart,
		rental.MileageEnd,
		rental.FuelLevelStart,
		rental.FuelLevelEnd,
		rental.DailyRate,
		rental.Deposit,
		rental.DamageReported,
		rental.DamageDescription,
		rental.DamageCost,
		rental.Notes,
		updatedAt,
	)

	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM fleet_rentals WHERE id = $1)`, rental.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrRentalNotFound
		}
		return domain.ErrConcurrentModification
	}

	rental.Version++
	rental.UpdatedAt = updatedAt
	return nil
}

func (r *rentalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM fleet_rentals WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrRentalNotFound
	}

	return nil
}

func (r *rentalRepository) List(ctx context.Context, filter repository.RentalFilter) ([]*domain.FleetRental, int, error) {
	var c conditions
	if filter.VehicleID != nil {
		c.add("vehicle_id = $%d", *filter.VehicleID)
	}
	if filter.Status != "" {
		c.add("status = $%d", filter.Status)
	}
	if filter.StartDateFrom != nil {
		c.add("start_date >= $%d", *filter.StartDateFrom)
	}
	if filter.StartDateTo != nil {
		c.add("start_date < $%d", *filter.StartDateTo)
	}
	if filter.EndDateFrom != nil {
		c.add(rentalEnd+" >= $%d", *filter.EndDateFrom)
	}
	if filter.EndDateTo != nil {
		c.add(rentalEnd+" < $%d", *filter.EndDateTo)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM fleet_rentals`+c.where(), c.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + rentalColumns + ` FROM fleet_rentals` + c.where() + ` ORDER BY start_date DESC, id`
	query += c.page(filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, c.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	rentals, err := collectRentals(rows)
	if err != nil {
		return nil, 0, err
	}
	return rentals, total, nil
}

// ListOverlapping - пересечение полуоткрытых интервалов [start, end) и [from, to)
func (r *rentalRepository) ListOverlapping(ctx context.Context, dr domain.DateRange, vehicleID *uuid.UUID) ([]*domain.FleetRental, error) {
	var c conditions
	c.add("start_date < $%d", dr.To)
	c.add(rentalEnd+" > $%d", dr.From)
	c.add("status <> $%d", domain.RentalStatusCancelled)
	if vehicleID != nil {
		c.add("vehicle_id = $%d", *vehicleID)
	}

	query := `SELECT ` + rentalColumns + ` FROM fleet_rentals` + c.where() + ` ORDER BY start_date`

	rows, err := r.db.Query(ctx, query, c.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRentals(rows)
}

func collectRentals(rows pgx.Rows) ([]*domain.FleetRental, error) {
	rentals := []*domain.FleetRental{}
	for rows.Next() {
		rental, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, rental)
	}
	return rentals, rows.Err()
}
