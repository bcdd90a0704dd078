package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"greek-row/chapterhouse/internal/common"
	"greek-row/chapterhouse/internal/models/dtos"
	"greek-row/chapterhouse/internal/services"
)

// ListConnectionsHandler handles GET /api/connections?status=
func ListConnectionsHandler(svc *services.ConnectionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		me, ok := currentProfile(w, r, initTime)
		if !ok {
			return
		}

		list, err := svc.List(r.Context(), me, r.URL.Query().Get("status"))
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Connections fetched", list)
	}
}

// CreateConnectionHandler handles POST /api/connections
func CreateConnectionHandler(svc *services.ConnectionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		me, ok := currentProfile(w, r, initTime)
		if !ok {
			return
		}

		var req dtos.CreateConnectionRequest
		if !decodeJSON(w, r, initTime, &req) {
			return
		}

		view, err := svc.Create(r.Context(), me, req)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Connection requested", view, http.StatusCreated)
	}
}

// UpdateConnectionHandler handles PATCH /api/connections/{id}
func UpdateConnectionHandler(svc *services.ConnectionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		me, ok := currentProfile(w, r, initTime)
		if !ok {
			return
		}

		var req dtos.UpdateConnectionRequest
		if !decodeJSON(w, r, initTime, &req) {
			return
		}

		view, err := svc.UpdateStatus(r.Context(), me, chi.URLParam(r, "id"), req)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Connection updated", view)
	}
}

// DeleteConnectionHandler handles DELETE /api/connections/{id}
func DeleteConnectionHandler(svc *services.ConnectionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		me, ok := currentProfile(w, r, initTime)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), me, chi.URLParam(r, "id")); err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Connection removed", nil)
	}
}

func (h *Handlers) ListConnections() http.HandlerFunc {
	return ListConnectionsHandler(h.deps.Services.Connections)
}

func (h *Handlers) CreateConnection() http.HandlerFunc {
	return CreateConnectionHandler(h.deps.Services.Connections)
}

func (h *Handlers) UpdateConnection() http.HandlerFunc {
	return UpdateConnectionHandler(h.deps.Services.Connections)
}

func (h *Handlers) DeleteConnection() http.HandlerFunc {
	return DeleteConnectionHandler(h.deps.Services.Connections)
}
