// internal/handler/event_handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/unclebandit/smsleopard-activation/internal/model"
	"github.com/unclebandit/smsleopard-activation/internal/service"
)

// EventHandler serves the read-only side: quota, estimates and event listings.
type EventHandler struct {
	Service *service.ActivationService
}

func (h *EventHandler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *EventHandler) GetQuota(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := TenantID(w, r)
	if !ok {
		return
	}

	quota, err := h.Service.Quota(r.Context(), tenantID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, quota)
}

// Estimate prices an audience_override before it is saved on an event.
func (h *EventHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := TenantID(w, r)
	if !ok {
		return
	}

	var body struct {
		Audience model.AudienceRule `json:"audience_override"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid body")
		return
	}

	res, err := h.Service.Estimate(r.Context(), tenantID, body.Audience)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

// ListEvents returns a paginated list of events
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := TenantID(w, r)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	kind := r.URL.Query().Get("kind")

	events, pagination, err := h.Service.ListEvents(r.Context(), tenantID, kind, page, pageSize)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"data":       events,
		"pagination": pagination,
	})
}

// GetEvent returns one event with its current SMS estimate.
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := TenantID(w, r)
	if !ok {
		return
	}
	eventID, ok := IntParam(r, "eventID")
	if !ok {
		WriteError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	ev, err := h.Service.GetEvent(r.Context(), tenantID, eventID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, ev)
}
