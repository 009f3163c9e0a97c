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

type imageRepository struct {
	db *pgxpool.Pool
}

func NewImageRepository(db *pgxpool.Pool) repository.ImageRepository {
	return &imageRepository{db: db}
}

const imageColumns = `id, entity_id, entity_type, url, file_name, content_type, size, uploaded_by, created_at`

func scanImage(row pgx.Row) (*domain.FleetImage, error) {
	img := &domain.FleetImage{}
	err := row.Scan(
		&img.ID,
		&img.EntityID,
		&img.EntityType,
		&img.URL,
		&img.FileName,
		&img.ContentType,
		&img.Size,
		&img.UploadedBy,
		&img.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// Create сохраняет метаданные; ID и URL проставляет вызывающий код, так как они
// определяются до записи файла на диск
func (r *imageRepository) Create(ctx context.Context, img *domain.FleetImage) error {
	query := `
		INSERT INTO fleet_images (id, entity_id, entity_type, url, file_name, content_type, size, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	if img.ID == uuid.Nil {
		img.ID = uuid.New()
	}
	img.CreatedAt = time.Now().UTC()

	_, err := r.db.Exec(ctx, query,
		img.ID,
		img.EntityID,
		img.EntityType,
		img.URL,
		img.FileName,
		img.ContentType,
		img.Size,
		img.UploadedBy,
		img.CreatedAt,
	)

	return err
}

func (r *imageRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.FleetImage, error) {
	query := `SELECT ` + imageColumns + ` FROM fleet_images WHERE id = $1`

	img, err := scanImage(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrImageNotFound
		}
		return nil, err
	}

	return img, nil
}

func (r *imageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM fleet_images WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrImageNotFound
	}

	return nil
}

func (r *imageRepository) ListByEntity(ctx context.Context, entityType domain.ImageEntityType, entityID uuid.UUID) ([]*domain.FleetImage, error) {
	query := `
		SELECT ` + imageColumns + `
		FROM fleet_images
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, entityType, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := []*domain.FleetImage{}
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}
