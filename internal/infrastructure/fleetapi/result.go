package fleetapi

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind - итог обращения к API
type Kind int

const (
	KindOK           Kind = iota
	KindNotFound          // Ресурса нет, это не сбой
	KindNetworkError      // Сервер недоступен или запрос прерван
	KindServerError       // 5xx или нечитаемый ответ
	KindClientError       // 4xx, кроме 404
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindNotFound:
		return "not_found"
	case KindNetworkError:
		return "network_error"
	case KindServerError:
		return "server_error"
	case KindClientError:
		return "client_error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// kindForStatus классифицирует HTTP статус ответа
func kindForStatus(status int) Kind {
	switch {
	case status < http.StatusBadRequest:
		return KindOK
	case status == http.StatusNotFound:
		return KindNotFound
	case status < http.StatusInternalServerError:
		return KindClientError
	default:
		return KindServerError
	}
}

// APIError - ошибка, которую вернул сервер в поле error
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("fleet api returned status %d: %s", e.Status, e.Message)
}

// Result - значение вместе с тем, как закончился запрос.
// Total - общее число записей для списков, Substituted выставляется,
// когда Value подставлено через Fallback
type Result[T any] struct {
	Value       T
	Kind        Kind
	Status      int
	Total       int
	Err         error
	Substituted bool
}

func ok[T any](value T, status int) Result[T] {
	return Result[T]{Value: value, Kind: KindOK, Status: status}
}

func failed[T any](kind Kind, status int, err error) Result[T] {
	return Result[T]{Kind: kind, Status: status, Err: err}
}

// OK проверяет, что запрос выполнен успешно
func (r Result[T]) OK() bool {
	return r.Kind == KindOK
}

// Unwrap возвращает значение или ошибку запроса
func (r Result[T]) Unwrap() (T, error) {
	if r.Kind == KindOK || r.Substituted {
		return r.Value, nil
	}
	if r.Err != nil {
		return r.Value, r.Err
	}
	return r.Value, errors.New(r.Kind.String())
}

// UnwrapOr возвращает значение, а при любой неудаче - fallback
func (r Result[T]) UnwrapOr(fallback T) T {
	if r.Kind == KindOK || r.Substituted {
		return r.Value
	}
	return fallback
}

// Fallback подставляет значение из fn, если сервер недоступен или ответил 5xx.
// NotFound и ошибки клиента не подменяются. Kind и Err сохраняются
func (r Result[T]) Fallback(fn func() T) Result[T] {
	if r.Kind != KindNetworkError && r.Kind != KindServerError {
		return r
	}
	r.Value = fn()
	r.Substituted = true
	return r
}
