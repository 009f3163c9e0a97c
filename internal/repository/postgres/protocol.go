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

type protocolRepository struct {
	db *pgxpool.Pool
}

func NewProtocolRepository(db *pgxpool.Pool) repository.ProtocolRepository {
	return &protocolRepository{db: db}
}

const protocolColumns = `
	id, number, vehicle_make, vehicle_model, license_plate, vin, mileage, fuel_level,
	owner_name, owner_phone, owner_email, selected_services, intake_notes, damages, status,
	received_at, completed_at, created_by, created_at, updated_at`

func scanProtocol(row pgx.Row) (*domain.CarReceptionProtocol, error) {
	p := &domain.CarReceptionProtocol{}
	err := row.Scan(
		&p.ID,
		&p.Number,
		&p.VehicleMake,
		&p.VehicleModel,
		&p.LicensePlate,
		&p.VIN,
		&p.Mileage,
		&p.FuelLevel,
		&p.OwnerName,
		&p.OwnerPhone,
		&p.OwnerEmail,
		&p.SelectedServices,
		&p.IntakeNotes,
		&p.Damages,
		&p.Status,
		&p.ReceivedAt,
		&p.CompletedAt,
		&p.CreatedBy,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Comments = []*domain.ProtocolComment{}
	return p, nil
}

// Create выполняется в транзакции: счетчик номеров за месяц увеличивается
// только вместе с успешной вставкой протокола
func (r *protocolRepository) Create(ctx context.Context, p *domain.CarReceptionProtocol) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	p.ReceivedAt = p.ReceivedAt.UTC()
	period := p.ReceivedAt.Format("2006-01")

	var seq int
	err = tx.QueryRow(ctx, `
		INSERT INTO protocol_number_counters (period, value)
		VALUES ($1, 1)
		ON CONFLICT (period) DO UPDATE SET value = protocol_number_counters.value + 1
		RETURNING value
	`, period).Scan(&seq)
	if err != nil {
		return fmt.Errorf("failed to allocate protocol number: %w", err)
	}

	p.ID = uuid.New()
	p.Number = domain.ProtocolNumber(p.ReceivedAt, seq)
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt

	_, err = tx.Exec(ctx, `
		INSERT INTO car_reception_protocols (
			id, number, vehicle_make, vehicle_model, license_plate, vin, mileage, fuel_level,
			owner_name, owner_phone, owner_email, selected_services, intake_notes, damages, status,
			received_at, completed_at, created_by, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`,
		p.ID,
		p.Number,
		p.VehicleMake,
		p.VehicleModel,
		p.LicensePlate,
		p.VIN,
		p.Mileage,
		p.FuelLevel,
		p.OwnerName,
		p.OwnerPhone,
		p.OwnerEmail,
		p.SelectedServices,
		p.IntakeNotes,
		p.Damages,
		p.Status,
		p.ReceivedAt,
		p.CompletedAt,
		p.CreatedBy,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if p.Comments == nil {
		p.Comments = []*domain.ProtocolComment{}
	}
	return tx.Commit(ctx)
}

func (r *protocolRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.CarReceptionProtocol, error) {
	query := `SELECT ` + protocolColumns + ` FROM car_reception_protocols WHERE id = $1`

	p, err := scanProtocol(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProtocolNotFound
		}
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, protocol_id, author_id, author_name, text, created_at
		FROM protocol_comments
		WHERE protocol_id = $1
		ORDER BY created_at
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		c := &domain.ProtocolComment{}
		if err := rows.Scan(&c.ID, &c.ProtocolID, &c.AuthorID, &c.AuthorName, &c.Text, &c.CreatedAt); err != nil {
			return nil, err
		}
		p.Comments = append(p.Comments, c)
	}

	return p, rows.Err()
}

func (r *protocolRepository) Update(ctx context.Context, p *domain.CarReceptionProtocol) error {
	query := `
		UPDATE car_reception_protocols
		SET vehicle_make = $2, vehicle_model = $3, license_plate = $4, vin = $5, mileage = $6,
		    fuel_level = $7, owner_name = $8, owner_phone = $9, owner_email = $10,
		    selected_services = $11, intake_notes = $12, damages = $13, status = $14,
		    completed_at = $15, updated_at = $16
		WHERE id = $1
	`

	p.UpdatedAt = time.Now().UTC()

	result, err := r.db.Exec(ctx, query,
		p.ID,
		p.VehicleMake,
		p.VehicleModel,
		p.LicensePlate,
		p.VIN,
		p.Mileage,
		p.FuelLevel,
		p.OwnerName,
		p.OwnerPhone,
		p.OwnerEmail,
		p.SelectedServices,
		p.IntakeNotes,
		p.Damages,
		p.Status,
		p.CompletedAt,
		p.UpdatedAt,
	)

	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrProtocolNotFound
	}

	return nil
}

// Delete - комментарии удаляются каскадно
func (r *protocolRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM car_reception_protocols WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrProtocolNotFound
	}

	return nil
}

func (r *protocolRepository) List(ctx context.Context, filter repository.ProtocolFilter) ([]*domain.CarReceptionProtocol, int, error) {
	var c conditions
	if filter.Status != "" {
		c.add("status = $%d", filter.Status)
	}
	if filter.OpenOnly {
		c.addRaw("status NOT IN ('COMPLETED', 'CANCELLED')")
	}
	if filter.Search != "" {
		c.add("(number ILIKE $%[1]d OR license_plate ILIKE $%[1]d OR owner_name ILIKE $%[1]d)", "%"+filter.Search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM car_reception_protocols`+c.where(), c.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + protocolColumns + ` FROM car_reception_protocols` + c.where() + ` ORDER BY received_at DESC, id`
	query += c.page(filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, c.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	protocols := []*domain.CarReceptionProtocol{}
	for rows.Next() {
		p, err := scanProtocol(rows)
		if err != nil {
			return nil, 0, err
		}
		protocols = append(protocols, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return protocols, total, nil
}

func (r *protocolRepository) AddComment(ctx context.Context, c *domain.ProtocolComment) error {
	query := `
		INSERT INTO protocol_comments (id, protocol_id, author_id, author_name, text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	c.ID = uuid.New()
	c.CreatedAt = time.Now().UTC()

	_, err := r.db.Exec(ctx, query, c.ID, c.ProtocolID, c.AuthorID, c.AuthorName, c.Text, c.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrProtocolNotFound
		}
		return err
	}

	return nil
}

func (r *protocolRepository) CountOpen(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM car_reception_protocols
		WHERE status NOT IN ('COMPLETED', 'CANCELLED')
	`).Scan(&n)
	return n, err
}
