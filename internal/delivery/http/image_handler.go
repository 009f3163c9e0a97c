package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/frontandrew/fleet/internal/domain"
	"github.com/frontandrew/fleet/internal/pkg/logger"
	"github.com/frontandrew/fleet/internal/usecase/image"
	"github.com/google/uuid"
)

// sniffLen - сколько байт нужно http.DetectContentType
const sniffLen = 512

// ImageService определяет интерфейс сервиса вложений
type ImageService interface {
	Upload(ctx context.Context, req *image.UploadRequest, uploadedBy *uuid.UUID) (*domain.FleetImage, error)
	ListByEntity(ctx context.Context, entityType domain.ImageEntityType, entityID uuid.UUID) ([]*domain.FleetImage, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ImageHandler обрабатывает загрузку фотографий
type ImageHandler struct {
	imageService  ImageService
	maxUploadSize int64
	logger        logger.Logger
}

// NewImageHandler создает новый handler
func NewImageHandler(imageService ImageService, maxUploadSize int64, logger logger.Logger) *ImageHandler {
	if maxUploadSize <= 0 || maxUploadSize > domain.MaxImageSize {
		maxUploadSize = domain.MaxImageSize
	}
	return &ImageHandler{
		imageService:  imageService,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// Upload принимает multipart форму с полями file, entity_type и entity_id.
// Тип содержимого определяется по самим байтам, а не по заголовку клиента
// POST /api/v1/fleet/images
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// Запас на служебные части multipart формы
	limit := h.maxUploadSize + 1<<20
	if r.ContentLength > limit {
		respondError(w, http.StatusRequestEntityTooLarge, domain.ErrImageTooLarge.Error())
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, domain.ErrImageTooLarge.Error())
			return
		}
		respondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	entityID, err := uuid.Parse(r.FormValue("entity_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid entity_id")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		respondServiceError(w, h.logger, err, "read upload")
		return
	}
	head = head[:n]

	req := &image.UploadRequest{
		EntityType:  domain.ImageEntityType(strings.ToUpper(r.FormValue("entity_type"))),
		EntityID:    entityID,
		FileName:    header.Filename,
		ContentType: http.DetectContentType(head),
		Size:        header.Size,
		Content:     io.MultiReader(bytes.NewReader(head), file),
	}

	img, err := h.imageService.Upload(r.Context(), req, currentUserID(r))
	if err != nil {
		respondServiceError(w, h.logger, err, "upload image")
		return
	}

	respondData(w, http.StatusCreated, img)
}

// List возвращает вложения сущности
// GET /api/v1/fleet/images?entity_type=VEHICLE&entity_id=
func (h *ImageHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entityID, err := uuid.Parse(q.Get("entity_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid entity_id")
		return
	}

	images, err := h.imageService.ListByEntity(r.Context(), domain.ImageEntityType(strings.ToUpper(q.Get("entity_type"))), entityID)
	if err != nil {
		respondServiceError(w, h.logger, err, "list images")
		return
	}

	respondData(w, http.StatusOK, images)
}

// Delete удаляет вложение вместе с файлом
// DELETE /api/v1/fleet/images/{id}
func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.imageService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete image")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
