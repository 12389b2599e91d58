// internal/controller/activation_controller.go
package controller

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/smsleopard-activation/internal/handler"
	"github.com/unclebandit/smsleopard-activation/internal/service"
)

// ActivationController drives the activate -> confirm/cancel flow.
type ActivationController struct {
	Service *service.ActivationService
}

type eventIDsBody struct {
	EventIDs    []int  `json:"event_ids"`
	PeriodLabel string `json:"period_label"`
}

// Activate answers 200 when the batch was switched on and 202 when it waits
// for confirmation.
func (c *ActivationController) Activate(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := handler.TenantID(w, r)
	if !ok {
		return
	}

	var body eventIDsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		handler.WriteError(w, http.StatusBadRequest, "invalid body")
		return
	}

	res, err := c.Service.RequestActivation(r.Context(), tenantID, body.EventIDs, body.PeriodLabel)
	if err != nil {
		handler.WriteServiceError(w, err)
		return
	}

	status := http.StatusOK
	if res.Decision == service.DecisionNeedsConfirmation {
		status = http.StatusAccepted
	}
	handler.WriteJSON(w, status, res)
}

func (c *ActivationController) Confirm(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := handler.TenantID(w, r)
	if !ok {
		return
	}

	res, err := c.Service.Confirm(r.Context(), tenantID, chi.URLParam(r, "requestID"))
	if err != nil {
		handler.WriteServiceError(w, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, res)
}

func (c *ActivationController) Cancel(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := handler.TenantID(w, r)
	if !ok {
		return
	}

	res, err := c.Service.Cancel(r.Context(), tenantID, chi.URLParam(r, "requestID"))
	if err != nil {
		handler.WriteServiceError(w, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, res)
}

func (c *ActivationController) Deactivate(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := handler.TenantID(w, r)
	if !ok {
		return
	}

	var body eventIDsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		handler.WriteError(w, http.StatusBadRequest, "invalid body")
		return
	}

	n, err := c.Service.Deactivate(r.Context(), tenantID, body.EventIDs)
	if err != nil {
		handler.WriteServiceError(w, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, map[string]int{"updated": n})
}
