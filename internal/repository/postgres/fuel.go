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

type fuelEntryRepository struct {
	db *pgxpool.Pool
}

func NewFuelEntryRepository(db *pgxpool.Pool) repository.FuelEntryRepository {
	return &fuelEntryRepository{db: db}
}

const fuelColumns = `
	id, vehicle_id, rental_id, date, mileage, liters, price_per_liter, total_cost,
	fuel_type, station, full_tank, created_by, created_at`

func scanFuelEntry(row pgx.Row) (*domain.FleetFuelEntry, error) {
	f := &domain.FleetFuelEntry{}
	err := row.Scan(
		&f.ID,
		&f.VehicleID,
		&f.RentalID,
		&f.Date,
		&f.Mileage,
		&f.Liters,
		&f.PricePerLiter,
		&f.TotalCost,
		&f.FuelType,
		&f.Station,
		&f.FullTank,
		&f.CreatedBy,
		&f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *fuelEntryRepository) Create(ctx context.Context, f *domain.FleetFuelEntry) error {
	query := `
		INSERT INTO fleet_fuel_entries (
			id, vehicle_id, rental_id, date, mileage, liters, price_per_liter, total_cost,
			fuel_type, station, full_tank, created_by, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	f.ID = uuid.New()
	f.CreatedAt = time.Now().UTC()

	_, err := r.db.Exec(ctx, query,
		f.ID,
		f.VehicleID,
		f.RentalID,
		f.Date,
		f.Mileage,
		f.Liters,
		f.PricePerLiter,
		f.TotalCost,
		f.FuelType,
		f.Station,
		f.FullTank,
		f.CreatedBy,
		f.CreatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrInvalidFuelEntryData
		}
		return err
	}

	return nil
}

func (r *fuelEntryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.FleetFuelEntry, error) {
	query := `SELECT ` + fuelColumns + ` FROM fleet_fuel_entries WHERE id = $1`

	f, err := scanFuelEntry(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFuelEntryNotFound
		}
		return nil, err
	}

	return f, nil
}

func (r *fuelEntryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM fleet_fuel_entries WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrFuelEntryNotFound
	}

	return nil
}

func (r *fuelEntryRepository) List(ctx context.Context, filter repository.JournalFilter) ([]*domain.FleetFuelEntry, error) {
	c := journalConditions(filter)
	query := `SELECT ` + fuelColumns + ` FROM fleet_fuel_entries` + c.where() + ` ORDER BY date DESC, mileage DESC`
	query += c.page(filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, c.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*domain.FleetFuelEntry{}
	for rows.Next() {
		f, err := scanFuelEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, f)
	}
	return entries, rows.Err()
}
