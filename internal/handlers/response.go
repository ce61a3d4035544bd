package handlers

import (
	"encoding/json"
	"net/http"

	"todoService/internal/logger"
)

type Payload struct {
	Key     string
	Payload any
}

func toPayload(key string, pl any) Payload {
	return Payload{Key: key, Payload: pl}
}

func toJSON(storage map[string]any, payload Payload) {
	storage[payload.Key] = payload.Payload
}

func responseWithJSON(w http.ResponseWriter, code int, payload ...Payload) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	storage := make(map[string]any)
	for _, pl := range payload {
		toJSON(storage, pl)
	}
	if err := json.NewEncoder(w).Encode(storage); err != nil {
		logger.Error("HTTP: Не удалось записать ответ", err)
	}
}

// конверт {success, message, data}
func responseWithSuccess(w http.ResponseWriter, code int, message string, data any) {
	responseWithJSON(w, code,
		toPayload("success", true),
		toPayload("message", message),
		toPayload("data", data),
	)
}

// конверт {success, message, error}
func responseWithError(w http.ResponseWriter, code int, message string, errPayload any) {
	responseWithJSON(w, code,
		toPayload("success", false),
		toPayload("message", message),
		toPayload("error", errPayload),
	)
}
