package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"greek-row/chapterhouse/internal/common"
	"greek-row/chapterhouse/internal/models/dtos"
	"greek-row/chapterhouse/internal/services"
)

// ListMessagesHandler handles GET /api/messages?with={profileID}
func ListMessagesHandler(svc *services.MessageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		me, ok := currentProfile(w, r, initTime)
		if !ok {
			return
		}

		list, err := svc.List(r.Context(), me, r.URL.Query().Get("with"),
			queryInt(r, "page", 1), queryInt(r, "limit", services.DefaultPageSize))
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Messages fetched", list)
	}
}

// SendMessageHandler handles POST /api/messages
func SendMessageHandler(svc *services.MessageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		me, ok := currentProfile(w, r, initTime)
		if !ok {
			return
		}

		var req dtos.SendMessageRequest
		if !decodeJSON(w, r, initTime, &req) {
			return
		}

		view, err := svc.Send(r.Context(), me, req)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Message sent", view, http.StatusCreated)
	}
}

// MarkMessageReadHandler handles PATCH /api/messages/{id}/read
func MarkMessageReadHandler(svc *services.MessageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		me, ok := currentProfile(w, r, initTime)
		if !ok {
			return
		}

		if err := svc.MarkRead(r.Context(), me, chi.URLParam(r, "id")); err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Marked as read", nil)
	}
}

func (h *Handlers) ListMessages() http.HandlerFunc {
	return ListMessagesHandler(h.deps.Services.Messages)
}
func (h *Handlers) SendMessage() http.HandlerFunc {
	return SendMessageHandler(h.deps.Services.Messages)
}
func (h *Handlers) MarkMessageRead() http.HandlerFunc {
	return MarkMessageReadHandler(h.deps.Services.Messages)
}
