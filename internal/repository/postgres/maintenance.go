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

type maintenanceRepository struct {
	db *pgxpool.Pool
}

func NewMaintenanceRepository(db *pgxpool.Pool) repository.MaintenanceRepository {
	return &maintenanceRepository{db: db}
}

const maintenanceColumns = `
	id, vehicle_id, type, description, date, mileage, labor_cost, parts_cost, total_cost,
	service_provider, next_service_date, next_service_mileage, created_by, created_at`

func scanMaintenance(row pgx.Row) (*domain.FleetMaintenance, error) {
	m := &domain.FleetMaintenance{}
	err := row.Scan(
		&m.ID,
		&m.VehicleID,
		&m.Type,
		&m.Description,
		&m.Date,
		&m.Mileage,
		&m.LaborCost,
		&m.PartsCost,
		&m.TotalCost,
		&m.ServiceProvider,
		&m.NextServiceDate,
		&m.NextServiceMileage,
		&m.CreatedBy,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *maintenanceRepository) Create(ctx context.Context, m *domain.FleetMaintenance) error {
	query := `
		INSERT INTO fleet_maintenance (
			id, vehicle_id, type, description, date, mileage, labor_cost, parts_cost, total_cost,
			service_provider, next_service_date, next_service_mileage, created_by, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	m.ID = uuid.New()
	m.CreatedAt = time.Now().UTC()

	_, err := r.db.Exec(ctx, query,
		m.ID,
		m.VehicleID,
		m.Type,
		m.Description,
		m.Date,
		m.Mileage,
		m.LaborCost,
		m.PartsCost,
		m.TotalCost,
		m.ServiceProvider,
		m.NextServiceDate,
		m.NextServiceMileage,
		m.CreatedBy,
		m.CreatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrVehicleNotFound
		}
		return err
	}

	return nil
}

func (r *maintenanceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.FleetMaintenance, error) {
	query := `SELECT ` + maintenanceColumns + ` FROM fleet_maintenance WHERE id = $1`

	m, err := scanMaintenance(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMaintenanceNotFound
		}
		return nil, err
	}

	return m, nil
}

func (r *maintenanceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM fleet_maintenance WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrMaintenanceNotFound
	}

	return nil
}

func (r *maintenanceRepository) List(ctx context.Context, filter repository.JournalFilter) ([]*domain.FleetMaintenance, error) {
	c := journalConditions(filter)
	query := `SELECT ` + maintenanceColumns + ` FROM fleet_maintenance` + c.where() + ` ORDER BY date DESC, created_at DESC`
	query += c.page(filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, c.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*domain.FleetMaintenance{}
	for rows.Next() {
		m, err := scanMaintenance(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, m)
	}
	return entries, rows.Err()
}

// journalConditions - общие условия выборки для журналов обслуживания и заправок
func journalConditions(filter repository.JournalFilter) *conditions {
	c := &conditions{}
	if filter.VehicleID != nil {
		c.add("vehicle_id = $%d", *filter.VehicleID)
	}
	if filter.Period != nil {
		c.add("date >= $%d", filter.Period.From)
		c.add("date < $%d", filter.Period.To)
	}
	return c
}
