package handler

import (
	"net/http"
	"strconv"

	"github.com/unclebandit/smsleopard-activation/internal/service"
)

type ClientHandler struct {
	Service *service.ActivationService
}

// ListClients returns a paginated list of the tenant's clients
func (h *ClientHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := TenantID(w, r)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	clients, pagination, err := h.Service.ListClients(r.Context(), tenantID, page, pageSize)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"data":       clients,
		"pagination": pagination,
	})
}

func (h *ClientHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := TenantID(w, r)
	if !ok {
		return
	}
	clientID, ok := IntParam(r, "clientID")
	if !ok {
		WriteError(w, http.StatusBadRequest, "invalid client id")
		return
	}

	c, err := h.Service.GetClient(r.Context(), tenantID, clientID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, c)
}
