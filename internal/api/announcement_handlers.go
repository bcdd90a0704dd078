package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"greek-row/chapterhouse/internal/common"
	"greek-row/chapterhouse/internal/models/dtos"
	"greek-row/chapterhouse/internal/services"
)

// ListAnnouncementsHandler handles GET /api/announcements
func ListAnnouncementsHandler(svc *services.AnnouncementService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		me, ok := currentProfile(w, r, initTime)
		if !ok {
			return
		}

		feed, err := svc.Feed(r.Context(), me, queryInt(r, "page", 1), queryInt(r, "limit", services.DefaultPageSize))
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Announcements fetched", feed)
	}
}

// CreateAnnouncementHandler handles POST /api/announcements
func CreateAnnouncementHandler(svc *services.AnnouncementService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		me, ok := currentProfile(w, r, initTime)
		if !ok {
			return
		}

		var req dtos.CreateAnnouncementRequest
		if !decodeJSON(w, r, initTime, &req) {
			return
		}

		view, err := svc.Create(r.Context(), me, req)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Announcement created", view, http.StatusCreated)
	}
}

// MarkAnnouncementReadHandler handles PATCH /api/announcements/{id}/read
func MarkAnnouncementReadHandler(svc *services.AnnouncementService) http.HandlerFunc {
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

// DeleteAnnouncementHandler handles DELETE /api/announcements/{id} (admin)
func DeleteAnnouncementHandler(svc *services.AnnouncementService) http.HandlerFunc {
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
		common.RespondSuccess(w, initTime, "Announcement deleted", nil)
	}
}

func (h *Handlers) ListAnnouncements() http.HandlerFunc {
	return ListAnnouncementsHandler(h.deps.Services.Announcements)
}

func (h *Handlers) CreateAnnouncement() http.HandlerFunc {
	return CreateAnnouncementHandler(h.deps.Services.Announcements)
}

func (h *Handlers) MarkAnnouncementRead() http.HandlerFunc {
	return MarkAnnouncementReadHandler(h.deps.Services.Announcements)
}

func (h *Handlers) DeleteAnnouncement() http.HandlerFunc {
	return DeleteAnnouncementHandler(h.deps.Services.Announcements)
}
