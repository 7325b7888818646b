package handlers

import (
	"encoding/json"
	"net/http"
	"taskmanager/internal/logger"
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
		logger.Error("HTTP: Ошибка записи ответа", err)
	}
}

type errorBody struct {
	Message string         `json:"message"`
	Fields  map[string]any `json:"fields,omitempty"`
}

func responseWithError(w http.ResponseWriter, code int, message string) {
	responseWithJSON(w, code, toPayload("error", errorBody{Message: message}))
}

func responseWithValidationError(w http.ResponseWriter, message string, fields map[string]any) {
	responseWithJSON(w, http.StatusBadRequest, toPayload("error", errorBody{Message: message, Fields: fields}))
}

func NotFound(w http.ResponseWriter, r *http.Request) {
	responseWithError(w, http.StatusNotFound, "Route not found")
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	responseWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
}
