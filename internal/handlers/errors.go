package handlers

import (
	"errors"
	"net/http"

	"todoService/internal/logger"
	"todoService/internal/service"

	"go.uber.org/zap"
)

const messageSomethingWrong = "Something went wrong"

type errorBody struct {
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}

// handleBusinessError отвечает клиенту, если err - ошибка бизнес-логики
func handleBusinessError(w http.ResponseWriter, err error, message string) bool {
	var businessErr *service.BusinessError
	if !errors.As(err, &businessErr) {
		return false
	}

	statusCode := mapBusinessErrorToHTTP(businessErr.Code)

	logger.Warn("HTTP: Бизнес-ошибка",
		zap.String("error_code", businessErr.Code),
		zap.Int("http_status", statusCode),
		zap.Error(err))

	if message == "" {
		message = businessErr.Message
	}
	responseWithError(w, statusCode, message, errorBody{
		Code:    businessErr.Code,
		Details: businessErr.Details,
	})
	return true
}

// handleServiceError: бизнес-ошибки уходят клиенту как есть,
// остальные логируются целиком, а клиент видит только общее сообщение
func handleServiceError(w http.ResponseWriter, err error, fallbackStatus int, operation string) {
	if handleBusinessError(w, err, "") {
		return
	}

	logger.Error("HTTP: Ошибка Service", err, zap.String("operation", operation))
	responseWithError(w, fallbackStatus, messageSomethingWrong, nil)
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}
