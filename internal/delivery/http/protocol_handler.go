package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frontandrew/fleet/internal/delivery/http/middleware"
	"github.com/frontandrew/fleet/internal/domain"
	"github.com/frontandrew/fleet/internal/pkg/logger"
	"github.com/frontandrew/fleet/internal/repository"
	"github.com/frontandrew/fleet/internal/usecase/protocol"
	"github.com/google/uuid"
)

// ProtocolService определяет интерфейс сервиса протоколов приемки
type ProtocolService interface {
	ListProtocols(ctx context.Context, filter repository.ProtocolFilter) (*protocol.ProtocolList, error)
	GetProtocol(ctx context.Context, id uuid.UUID) (*protocol.Details, error)
	CreateProtocol(ctx context.Context, req *protocol.ProtocolInput, createdBy *uuid.UUID) (*protocol.Details, error)
	UpdateProtocol(ctx context.Context, id uuid.UUID, req *protocol.ProtocolInput) (*protocol.Details, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ProtocolStatus) (*protocol.Details, error)
	AddComment(ctx context.Context, id uuid.UUID, req *protocol.CommentRequest, author protocol.Author) (*domain.ProtocolComment, error)
	DeleteProtocol(ctx context.Context, id uuid.UUID) error
}

// UserLookup возвращает пользователя для подписи комментариев
type UserLookup interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// ProtocolStatusRequest - тело PATCH /protocols/{id}/status
type ProtocolStatusRequest struct {
	Status domain.ProtocolStatus `json:"status"`
}

// ProtocolHandler обрабатывает запросы по протоколам приемки
type ProtocolHandler struct {
	protocolService ProtocolService
	users           UserLookup
	logger          logger.Logger
}

// NewProtocolHandler создает новый handler
func NewProtocolHandler(protocolService ProtocolService, users UserLookup, logger logger.Logger) *ProtocolHandler {
	return &ProtocolHandler{
		protocolService: protocolService,
		users:           users,
		logger:          logger,
	}
}

// ListProtocols возвращает протоколы
// GET /api/v1/protocols?status=&open=true&search=
func (h *ProtocolHandler) ListProtocols(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.ProtocolFilter{
		Status: domain.ProtocolStatus(q.Get("status")),
		Search: q.Get("search"),
		Page:   queryPage(r),
	}
	filter.OpenOnly, _ = strconv.ParseBool(q.Get("open"))

	list, err := h.protocolService.ListProtocols(r.Context(), filter)
	if err != nil {
		respondServiceError(w, h.logger, err, "list protocols")
		return
	}

	respondList(w, list.Items, list.Total)
}

// GetProtocol возвращает протокол с комментариями
// GET /api/v1/protocols/{id}
func (h *ProtocolHandler) GetProtocol(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	p, err := h.protocolService.GetProtocol(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get protocol")
		return
	}

	respondData(w, http.StatusOK, p)
}

// CreateProtocol регистрирует прием автомобиля
// POST /api/v1/protocols
func (h *ProtocolHandler) CreateProtocol(w http.ResponseWriter, r *http.Request) {
	var req protocol.ProtocolInput
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.protocolService.CreateProtocol(r.Context(), &req, currentUserID(r))
	if err != nil {
		respondServiceError(w, h.logger, err, "create protocol")
		return
	}

	respondData(w, http.StatusCreated, p)
}

// UpdateProtocol меняет данные приемки
// PUT /api/v1/protocols/{id}
func (h *ProtocolHandler) UpdateProtocol(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req protocol.ProtocolInput
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.protocolService.UpdateProtocol(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update protocol")
		return
	}

	respondData(w, http.StatusOK, p)
}

// UpdateStatus переводит протокол на следующий этап
// PATCH /api/v1/protocols/{id}/status
func (h *ProtocolHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req ProtocolStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.protocolService.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		respondServiceError(w, h.logger, err, "update protocol status")
		return
	}

	respondData(w, http.StatusOK, p)
}

// AddComment добавляет комментарий от имени текущего пользователя
// POST /api/v1/protocols/{id}/comments
func (h *ProtocolHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req protocol.CommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.protocolService.AddComment(r.Context(), id, &req, h.author(r))
	if err != nil {
		respondServiceError(w, h.logger, err, "add comment")
		return
	}

	respondData(w, http.StatusCreated, c)
}

// author подписывает комментарий полным именем; если пользователя не удалось
// загрузить, используется email из токена
func (h *ProtocolHandler) author(r *http.Request) protocol.Author {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		return protocol.Author{}
	}

	a := protocol.Author{ID: claims.UserID, Name: claims.Email}
	if user, err := h.users.GetUserByID(r.Context(), claims.UserID); err == nil && user.FullName != "" {
		a.Name = user.FullName
	}
	return a
}

// DeleteProtocol удаляет протокол
// DELETE /api/v1/protocols/{id}
func (h *ProtocolHandler) DeleteProtocol(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.protocolService.DeleteProtocol(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete protocol")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
