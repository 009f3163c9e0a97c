package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/frontandrew/fleet/internal/delivery/http/middleware"
	"github.com/frontandrew/fleet/internal/domain"
	"github.com/frontandrew/fleet/internal/pkg/logger"
	"github.com/frontandrew/fleet/internal/repository"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxPageSize = 200

// errorStatuses сопоставляет доменные ошибки HTTP статусам. Проверяются по порядку через errors.Is
var errorStatuses = []struct {
	err    error
	status int
}{
	{domain.ErrUserNotFound, http.StatusNotFound},
	{domain.ErrVehicleNotFound, http.StatusNotFound},
	{domain.ErrRentalNotFound, http.StatusNotFound},
	{domain.ErrMaintenanceNotFound, http.StatusNotFound},
	{domain.ErrFuelEntryNotFound, http.StatusNotFound},
	{domain.ErrProtocolNotFound, http.StatusNotFound},
	{domain.ErrImageNotFound, http.StatusNotFound},
	{domain.ErrNotFound, http.StatusNotFound},

	{domain.ErrUserAlreadyExists, http.StatusConflict},
	{domain.ErrVehicleAlreadyExists, http.StatusConflict},
	{domain.ErrVehicleUnavailable, http.StatusConflict},
	{domain.ErrVehicleInactive, http.StatusConflict},
	{domain.ErrRentalOverlap, http.StatusConflict},
	{domain.ErrRentalNotEditable, http.StatusConflict},
	{domain.ErrProtocolClosed, http.StatusConflict},
	{domain.ErrInvalidStatusTransition, http.StatusConflict},
	{domain.ErrConcurrentModification, http.StatusConflict},
	{domain.ErrConflict, http.StatusConflict},

	{domain.ErrInvalidCredentials, http.StatusUnauthorized},
	{domain.ErrInvalidToken, http.StatusUnauthorized},
	{domain.ErrTokenExpired, http.StatusUnauthorized},
	{domain.ErrUnauthorized, http.StatusUnauthorized},
	{domain.ErrUserInactive, http.StatusForbidden},
	{domain.ErrForbidden, http.StatusForbidden},

	{domain.ErrImageTooLarge, http.StatusRequestEntityTooLarge},
	{domain.ErrUnsupportedContentType, http.StatusUnsupportedMediaType},

	{domain.ErrInvalidEmail, http.StatusBadRequest},
	{domain.ErrInvalidPassword, http.StatusBadRequest},
	{domain.ErrInvalidUserData, http.StatusBadRequest},
	{domain.ErrInvalidRole, http.StatusBadRequest},
	{domain.ErrInvalidLicensePlate, http.StatusBadRequest},
	{domain.ErrInvalidVIN, http.StatusBadRequest},
	{domain.ErrInvalidVehicleData, http.StatusBadRequest},
	{domain.ErrInvalidRentalData, http.StatusBadRequest},
	{domain.ErrInvalidFuelLevel, http.StatusBadRequest},
	{domain.ErrInvalidMileage, http.StatusBadRequest},
	{domain.ErrInvalidMaintenanceData, http.StatusBadRequest},
	{domain.ErrInvalidFuelEntryData, http.StatusBadRequest},
	{domain.ErrInvalidProtocolData, http.StatusBadRequest},
	{domain.ErrInvalidCommentData, http.StatusBadRequest},
	{domain.ErrInvalidImageData, http.StatusBadRequest},
	{domain.ErrInvalidDateRange, http.StatusBadRequest},
	{domain.ErrInvalidStatus, http.StatusBadRequest},
	{domain.ErrInvalidReportPeriod, http.StatusBadRequest},
	{domain.ErrBadRequest, http.StatusBadRequest},
}

// statusFor возвращает HTTP статус для ошибки; неизвестные ошибки - 500
func statusFor(err error) int {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// respondJSON отправляет JSON ответ
func respondJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"error":"Failed to marshal response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondData отправляет успешный ответ в формате {"success": true, "data": ...}
func respondData(w http.ResponseWriter, code int, data interface{}) {
	respondJSON(w, code, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

// respondList отправляет страницу с общим числом записей
func respondList(w http.ResponseWriter, data interface{}, total int) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    data,
		"total":   total,
	})
}

// respondError отправляет JSON ответ с ошибкой
func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// respondServiceError переводит ошибку use case в HTTP ответ. Для 5xx клиент
// получает общее сообщение, подробности уходят в лог
func respondServiceError(w http.ResponseWriter, log logger.Logger, err error, action string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error("Failed to "+action, map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, status, "Failed to "+action)
		return
	}
	respondError(w, status, rootMessage(err))
}

// rootMessage отрезает контекст, добавленный через fmt.Errorf("...: %w")
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

// decodeJSON разбирает тело запроса; неизвестные поля допускаются
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// decodeOptionalJSON разбирает тело запроса, если оно есть; пустое тело допустимо
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// pathID извлекает UUID из параметра маршрута chi
func pathID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid "+param)
		return uuid.Nil, false
	}
	return id, true
}

// queryUUID разбирает необязательный UUID из строки запроса
func queryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, domain.ErrBadRequest
	}
	return &id, nil
}

// queryTime разбирает необязательную дату (YYYY-MM-DD или RFC3339)
func queryTime(r *http.Request, name string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, raw, time.UTC); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, domain.ErrInvalidDateRange
	}
	t = t.UTC()
	return &t, nil
}

// queryPage читает limit и offset; limit ограничен maxPageSize
func queryPage(r *http.Request) repository.Page {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return repository.Page{Limit: limit, Offset: offset}
}

// currentUserID возвращает ID пользователя из claims, если запрос аутентифицирован
func currentUserID(r *http.Request) *uuid.UUID {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		return nil
	}
	id := claims.UserID
	return &id
}
