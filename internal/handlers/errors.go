package handlers

import (
	"errors"
	"net/http"
	"taskmanager/internal/logger"
	"taskmanager/internal/middleware"
	"taskmanager/internal/service"

	"go.uber.org/zap"
)

// handleError пишет ответ для ошибки сервиса: бизнес-ошибки по коду, остальное 500.
func handleError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	if handleBusinessError(w, r, err) {
		return
	}

	logger.Error("HTTP: Ошибка Service", err,
		zap.String("operation", operation),
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("client_ip", r.RemoteAddr))

	responseWithError(w, http.StatusInternalServerError, err.Error())
}

func handleBusinessError(w http.ResponseWriter, r *http.Request, err error) bool {
	var businessErr *service.BusinessError
	if !errors.As(err, &businessErr) {
		return false
	}

	statusCode := mapBusinessErrorToHTTP(businessErr.Code)

	logger.Warn("HTTP: Бизнес-ошибка",
		zap.String("error_code", businessErr.Code),
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.Int("http_status", statusCode))

	if businessErr.Code == service.CodeValidation {
		responseWithValidationError(w, businessErr.Message, businessErr.Details)
		return true
	}
	responseWithError(w, statusCode, businessErr.Message)
	return true
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeValidation:
		return http.StatusBadRequest
	case service.CodeUnauthorized:
		return http.StatusUnauthorized
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
