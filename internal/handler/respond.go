package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/smsleopard-activation/internal/engine"
	appErrors "github.com/unclebandit/smsleopard-activation/internal/errors"
	"github.com/unclebandit/smsleopard-activation/internal/logger"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.WithError(err).Warn("⚠️ Failed to encode response")
	}
}

func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"error": msg})
}

// WriteServiceError maps service errors onto HTTP status codes.
func WriteServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appErrors.ErrEmptySelection):
		WriteError(w, http.StatusBadRequest, err.Error())
	case appErrors.IsNotFound(err):
		WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, engine.ErrInvalidTransition):
		WriteError(w, http.StatusConflict, err.Error())
	default:
		logger.Log.WithError(err).Error("❌ Request failed")
		WriteError(w, http.StatusInternalServerError, "internal error")
	}
}

// IntParam reads a positive integer URL parameter.
func IntParam(r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// TenantID reads {tenantID}, writing a 400 when it is missing or invalid.
func TenantID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, ok := IntParam(r, "tenantID")
	if !ok {
		WriteError(w, http.StatusBadRequest, "invalid tenant id")
	}
	return id, ok
}
