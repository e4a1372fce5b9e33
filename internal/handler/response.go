package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mederror/internal/domain"
	"mederror/internal/middleware"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrMissingSource):
		return http.StatusNotFound, "SOURCE_NOT_FOUND", err.Error()
	case errors.Is(err, domain.ErrEmptyDocument):
		return http.StatusBadRequest, "EMPTY_DOCUMENT", "document is empty"
	case errors.Is(err, domain.ErrInvalidParseMode):
		return http.StatusBadRequest, "INVALID_PARSE_MODE", "invalid parse mode; allowed: table, tab, labeled, auto"
	case errors.Is(err, domain.ErrUnsupportedScheme):
		return http.StatusBadRequest, "UNSUPPORTED_SCHEME", err.Error()
	case errors.Is(err, domain.ErrNoData):
		return http.StatusUnprocessableEntity, "NO_DATA", "document contains no response blocks"
	case errors.Is(err, domain.ErrOriginExhausted), errors.Is(err, domain.ErrOriginUnconsumed):
		return http.StatusUnprocessableEntity, "ORIGIN_MISMATCH", err.Error()
	case errors.Is(err, domain.ErrRowCountMismatch):
		return http.StatusUnprocessableEntity, "ROW_COUNT_MISMATCH", err.Error()
	case errors.Is(err, domain.ErrColumnNotFound):
		return http.StatusUnprocessableEntity, "COLUMN_NOT_FOUND", err.Error()
	case errors.Is(err, domain.ErrPersistenceDisabled):
		return http.StatusServiceUnavailable, "PERSISTENCE_DISABLED", "run history requires db.enabled"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, log *zap.Logger, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		log.Error("internal error",
			zap.String("request_id", c.GetString(middleware.RequestIDKey)),
			zap.Error(err),
		)
	}
	_ = c.Error(err)
	RespondError(c, status, code, msg)
}
