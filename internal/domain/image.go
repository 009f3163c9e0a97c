package domain

import (
	"time"

	"github.com/google/uuid"
)

// ImageEntityType - к какой сущности прикреплено изображение
type ImageEntityType string

const (
	ImageEntityVehicle  ImageEntityType = "VEHICLE"
	ImageEntityRental   ImageEntityType = "RENTAL"
	ImageEntityProtocol ImageEntityType = "PROTOCOL"
)

// MaxImageSize - максимальный размер загружаемого файла
const MaxImageSize = 10 << 20

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// FleetImage - вложение (фотография) к автомобилю, аренде или протоколу
type FleetImage struct {
	ID          uuid.UUID       `json:"id"`
	EntityID    uuid.UUID       `json:"entity_id"`
	EntityType  ImageEntityType `json:"entity_type"`
	URL         string          `json:"url"`
	FileName    string          `json:"file_name"`
	ContentType string          `json:"content_type"`
	Size        int64           `json:"size"`
	UploadedBy  *uuid.UUID      `json:"uploaded_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ImageExtension возвращает расширение файла для допустимого типа содержимого
func ImageExtension(contentType string) (string, bool) {
	ext, ok := allowedImageTypes[contentType]
	return ext, ok
}

// Validate проверяет метаданные изображения
func (i *FleetImage) Validate() error {
	if i.EntityID == uuid.Nil || !i.EntityType.IsValid() {
		return ErrInvalidImageData
	}
	if _, ok := ImageExtension(i.ContentType); !ok {
		return ErrUnsupportedContentType
	}
	if i.Size <= 0 {
		return ErrInvalidImageData
	}
	if i.Size > MaxImageSize {
		return ErrImageTooLarge
	}
	return nil
}

// IsValid проверяет, что значение входит в перечисление
func (t ImageEntityType) IsValid() bool {
	switch t {
	case ImageEntityVehicle, ImageEntityRental, ImageEntityProtocol:
		return true
	}
	return false
}
