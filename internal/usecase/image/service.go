package image

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/frontandrew/fleet/internal/domain"
	"github.com/frontandrew/fleet/internal/pkg/logger"
	"github.com/frontandrew/fleet/internal/repository"
	"github.com/google/uuid"
)

// FileStore сохраняет содержимое файла и возвращает публичный URL
type FileStore interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Delete(ctx context.Context, name string) error
}

// UploadRequest - загружаемый файл и сущность, к которой он прикреплен
type UploadRequest struct {
	EntityType  domain.ImageEntityType
	EntityID    uuid.UUID
	FileName    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// Service управляет вложениями
type Service struct {
	imageRepo repository.ImageRepository
	store     FileStore
	logger    logger.Logger
}

// NewService создает новый экземпляр ImageService
func NewService(imageRepo repository.ImageRepository, store FileStore, logger logger.Logger) *Service {
	return &Service{
		imageRepo: imageRepo,
		store:     store,
		logger:    logger,
	}
}

// Upload сохраняет файл и его метаданные. Если запись в БД не удалась,
// файл удаляется
func (s *Service) Upload(ctx context.Context, req *UploadRequest, uploadedBy *uuid.UUID) (*domain.FleetImage, error) {
	img := &domain.FleetImage{
		ID:          uuid.New(),
		EntityID:    req.EntityID,
		EntityType:  req.EntityType,
		FileName:    path.Base(req.FileName),
		ContentType: req.ContentType,
		Size:        req.Size,
		UploadedBy:  uploadedBy,
	}
	if err := img.Validate(); err != nil {
		return nil, err
	}

	ext, _ := domain.ImageExtension(img.ContentType)
	name := img.ID.String() + ext

	// Читаем не больше лимита, даже если заявленный размер занижен
	content := io.LimitReader(req.Content, domain.MaxImageSize)
	url, err := s.store.Save(ctx, name, content)
	if err != nil {
		s.logger.Error("Failed to store image", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("failed to store image: %w", err)
	}
	img.URL = url

	if err := s.imageRepo.Create(ctx, img); err != nil {
		if delErr := s.store.Delete(ctx, name); delErr != nil {
			s.logger.Warn("Failed to remove orphan image", map[string]interface{}{
				"file":  name,
				"error": delErr.Error(),
			})
		}
		return nil, fmt.Errorf("failed to save image: %w", err)
	}

	s.logger.Info("Image uploaded", map[string]interface{}{
		"image_id":    img.ID,
		"entity_type": img.EntityType,
		"entity_id":   img.EntityID,
		"size":        img.Size,
	})

	return img, nil
}

// ListByEntity возвращает вложения сущности
func (s *Service) ListByEntity(ctx context.Context, entityType domain.ImageEntityType, entityID uuid.UUID) ([]*domain.FleetImage, error) {
	if !entityType.IsValid() || entityID == uuid.Nil {
		return nil, domain.ErrInvalidImageData
	}
	images, err := s.imageRepo.ListByEntity(ctx, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	return images, nil
}

// Delete удаляет запись и файл. Ошибка удаления файла только логируется
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	img, err := s.imageRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.imageRepo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, path.Base(img.URL)); err != nil {
		s.logger.Warn("Failed to remove image file", map[string]interface{}{
			"image_id": id,
			"error":    err.Error(),
		})
	}
	return nil
}
