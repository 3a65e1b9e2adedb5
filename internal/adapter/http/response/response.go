// Package response provides standardized API response helpers.
// Пакет response предоставляет стандартизированные хелперы ответов API.
//
// Successful endpoints return their payload directly; failures return
// a flat error envelope with a machine-readable code. All endpoints
// must go through these helpers.
// Успешные эндпоинты возвращают полезные данные напрямую; сбои —
// плоский конверт ошибки с машиночитаемым кодом. Все эндпоинты
// должны использовать эти хелперы.
package response

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/planwisehq/planwise/internal/pkg/apperror"
)

// ErrorEnvelope represents the error body of a failed API response.
// ErrorEnvelope представляет тело ошибки неуспешного ответа API.
type ErrorEnvelope struct {
	Error      string `json:"error"`      // Machine-readable error code / Машиночитаемый код ошибки
	Message    string `json:"message"`    // Human-readable error message / Человекочитаемое сообщение
	StatusCode int    `json:"statusCode"` // HTTP status code echoed in the body / HTTP статус, продублированный в теле
}

// ListEnvelope wraps a paginated collection with its total count.
// ListEnvelope оборачивает пагинированную коллекцию с общим количеством.
type ListEnvelope struct {
	Items    interface{} `json:"items"`    // Page of items / Страница элементов
	Total    int64       `json:"total"`    // Total matching items / Всего подходящих элементов
	Page     int         `json:"page"`     // Current page number / Номер текущей страницы
	PageSize int         `json:"pageSize"` // Items per page / Элементов на странице
}

// Success sends a successful response with data (HTTP 200).
// Success отправляет успешный ответ с данными (HTTP 200).
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created sends a successful response for resource creation (HTTP 201).
// Created отправляет успешный ответ при создании ресурса (HTTP 201).
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// NoContent sends a successful response with no content (HTTP 204).
// NoContent отправляет успешный ответ без содержимого (HTTP 204).
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// List sends a paginated collection response (HTTP 200).
// List отправляет ответ с пагинированной коллекцией (HTTP 200).
func List(c *gin.Context, items interface{}, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, ListEnvelope{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// Error sends an error response from any error value.
// Error отправляет ответ с ошибкой из любого значения ошибки.
// The HTTP status is determined by the error code, never by matching
// on message text.
// HTTP статус определяется кодом ошибки, никогда — сопоставлением
// по тексту сообщения.
func Error(c *gin.Context, err error) {
	appErr := apperror.FromError(err)

	if appErr.Code == apperror.CodeTooMany {
		c.Header("Retry-After", strconv.Itoa(60))
	}

	c.JSON(appErr.HTTPStatus, ErrorEnvelope{
		Error:      appErr.Code,
		Message:    appErr.Message,
		StatusCode: appErr.HTTPStatus,
	})
}

// BadRequest sends a 400 Bad Request response.
// BadRequest отправляет ответ 400 Bad Request.
func BadRequest(c *gin.Context, message string) {
	Error(c, apperror.BadRequest(message))
}

// Unauthorized sends a 401 Unauthorized response.
// Unauthorized отправляет ответ 401 Unauthorized.
func Unauthorized(c *gin.Context, message string) {
	Error(c, apperror.Unauthorized(message))
}

// Forbidden sends a 403 Forbidden response.
// Forbidden отправляет ответ 403 Forbidden.
func Forbidden(c *gin.Context, message string) {
	Error(c, apperror.Forbidden(message))
}

// NotFound sends a 404 Not Found response.
// NotFound отправляет ответ 404 Not Found.
func NotFound(c *gin.Context, resource string, id interface{}) {
	Error(c, apperror.NotFound(resource, id))
}

// ValidationError sends a 400 response for validation failures.
// ValidationError отправляет ответ 400 для ошибок валидации.
func ValidationError(c *gin.Context, message string) {
	Error(c, apperror.Validation(message))
}
