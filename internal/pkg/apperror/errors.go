// Package apperror provides structured application error types.
// Пакет apperror предоставляет структурированные типы ошибок приложения.
//
// Every failure the use cases can produce carries one of a closed set of
// error codes; the HTTP layer maps codes to status exhaustively instead of
// pattern-matching on message text.
// Каждая ошибка, которую могут породить сценарии использования, несёт один
// из закрытого набора кодов; HTTP слой сопоставляет коды со статусами
// исчерпывающе, вместо сопоставления по тексту сообщения.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes for the different failure categories.
// Коды ошибок для различных категорий сбоев.
const (
	CodeValidation   = "VALIDATION_ERROR"    // Malformed input / Некорректный ввод
	CodeBadRequest   = "BAD_REQUEST"         // Invalid request / Неверный запрос
	CodeUnauthorized = "UNAUTHORIZED"        // Missing or invalid credential / Отсутствующие или неверные учётные данные
	CodeForbidden    = "FORBIDDEN"           // Hierarchy or access violation / Нарушение иерархии или доступа
	CodeDeactivated  = "ACCOUNT_DEACTIVATED" // Valid credential, ineligible account / Валидные данные, непригодный аккаунт
	CodeNotFound     = "NOT_FOUND"           // Target does not exist / Цель не существует
	CodeConflict     = "CONFLICT"            // Duplicate registration / Дублирующая регистрация
	CodeTooMany      = "TOO_MANY_REQUESTS"   // Rate limit exceeded / Превышен лимит запросов
	CodeInternal     = "INTERNAL_ERROR"      // Unexpected failure / Непредвиденный сбой
)

// AppError represents a structured application error.
// AppError представляет структурированную ошибку приложения.
type AppError struct {
	Code       string `json:"code"`    // Machine-readable error code / Машиночитаемый код ошибки
	Message    string `json:"message"` // Human-readable message / Человекочитаемое сообщение
	HTTPStatus int    `json:"-"`       // HTTP status / HTTP статус
	Err        error  `json:"-"`       // Wrapped error / Обёрнутая ошибка
}

// Error implements the error interface.
// Error реализует интерфейс error.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for errors.Is/As support.
// Unwrap возвращает обёрнутую ошибку для поддержки errors.Is/As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the specified code, message, and HTTP status.
// New создаёт новую AppError с указанным кодом, сообщением и HTTP статусом.
func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Validation creates a validation error (HTTP 400).
// Validation создаёт ошибку валидации (HTTP 400).
func Validation(message string) *AppError {
	return New(CodeValidation, message, http.StatusBadRequest)
}

// BadRequest creates a bad request error (HTTP 400).
// BadRequest создаёт ошибку неверного запроса (HTTP 400).
func BadRequest(message string) *AppError {
	return New(CodeBadRequest, message, http.StatusBadRequest)
}

// Unauthorized creates an authentication error (HTTP 401).
// Unauthorized создаёт ошибку аутентификации (HTTP 401).
func Unauthorized(message string) *AppError {
	if message == "" {
		message = "authentication required" // Требуется аутентификация
	}
	return New(CodeUnauthorized, message, http.StatusUnauthorized)
}

// Forbidden creates an authorization error (HTTP 403).
// Forbidden создаёт ошибку авторизации (HTTP 403).
func Forbidden(message string) *AppError {
	if message == "" {
		message = "access denied" // Доступ запрещён
	}
	return New(CodeForbidden, message, http.StatusForbidden)
}

// Deactivated creates an error for a structurally valid credential whose
// account is no longer eligible (HTTP 403).
// Deactivated создаёт ошибку для структурно валидных учётных данных,
// чей аккаунт более не пригоден (HTTP 403).
//
// Distinct from Unauthorized on purpose: "wrong password" and "unknown
// email" are indistinguishable to the client, but a deactivated account
// is not a secret.
// Намеренно отличается от Unauthorized: "неверный пароль" и "неизвестный
// email" неразличимы для клиента, но деактивированный аккаунт — не секрет.
func Deactivated() *AppError {
	return New(CodeDeactivated, "account is deactivated", http.StatusForbidden)
}

// NotFound creates a not found error for a specific resource (HTTP 404).
// NotFound создаёт ошибку "не найдено" для конкретного ресурса (HTTP 404).
func NotFound(resource string, id interface{}) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s %v not found", resource, id), http.StatusNotFound)
}

// Conflict creates a resource conflict error (HTTP 409).
// Conflict создаёт ошибку конфликта ресурсов (HTTP 409).
func Conflict(message string) *AppError {
	return New(CodeConflict, message, http.StatusConflict)
}

// TooManyRequests creates a rate limit exceeded error (HTTP 429).
// TooManyRequests создаёт ошибку превышения лимита запросов (HTTP 429).
func TooManyRequests(message string) *AppError {
	return New(CodeTooMany, message, http.StatusTooManyRequests)
}

// Internal creates an internal server error with an optional wrapped error.
// Internal создаёт внутреннюю ошибку сервера с опциональной обёрнутой ошибкой.
func Internal(message string, err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// Is reports whether err is an AppError carrying the given code.
// Is сообщает, является ли err AppError с указанным кодом.
func Is(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// AsAppError converts an error to AppError if possible.
// AsAppError преобразует ошибку в AppError, если это возможно.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// FromError wraps a generic error as an internal AppError.
// FromError оборачивает обычную ошибку как внутреннюю AppError.
// If the error is already an AppError, it returns it as-is.
// Если ошибка уже является AppError, возвращает её без изменений.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return Internal("an unexpected error occurred", err) // Произошла непредвиденная ошибка
}
