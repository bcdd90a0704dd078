package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"greek-row/chapterhouse/internal/common"
	"greek-row/chapterhouse/internal/models/dtos"
	"greek-row/chapterhouse/internal/services"
)

// GetMeHandler handles GET /api/profiles/me
func GetMeHandler(svc *services.ProfileService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		me, ok := currentProfile(w, r, initTime)
		if !ok {
			return
		}

		view, err := svc.Me(r.Context(), me.ID)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Profile fetched", view)
	}
}

// UpdateMeHandler handles PATCH /api/profiles/me
func UpdateMeHandler(svc *services.ProfileService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		me, ok := currentProfile(w, r, initTime)
		if !ok {
			return
		}

		var req dtos.UpdateProfileRequest
		if !decodeJSON(w, r, initTime, &req) {
			return
		}

		view, err := svc.UpdateMe(r.Context(), me, req)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Profile updated", view)
	}
}

// ListMembersHandler handles GET /api/members
func ListMembersHandler(svc *services.ProfileService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		me, ok := currentProfile(w, r, initTime)
		if !ok {
			return
		}

		q := r.URL.Query()
		list, err := svc.ListMembers(r.Context(), me.ChapterID,
			q.Get("role"), q.Get("q"), queryInt(r, "page", 1), queryInt(r, "limit", services.DefaultPageSize))
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Members fetched", list)
	}
}

// ListAlumniHandler handles GET /api/alumni
func ListAlumniHandler(svc *services.ProfileService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		me, ok := currentProfile(w, r, initTime)
		if !ok {
			return
		}

		q := r.URL.Query()
		list, err := svc.ListAlumni(r.Context(), me.ChapterID,
			q.Get("industry"), q.Get("location"), q.Get("q"),
			queryInt(r, "page", 1), queryInt(r, "limit", services.DefaultPageSize))
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Alumni fetched", list)
	}
}

// UpdateMemberHandler handles PATCH /api/members/{id} (admin)
func UpdateMemberHandler(svc *services.ProfileService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		me, ok := currentProfile(w, r, initTime)
		if !ok {
			return
		}

		var req dtos.UpdateMemberRequest
		if !decodeJSON(w, r, initTime, &req) {
			return
		}

		view, err := svc.UpdateMember(r.Context(), me, chi.URLParam(r, "id"), req)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Member updated", view)
	}
}

func (h *Handlers) GetMe() http.HandlerFunc    { return GetMeHandler(h.deps.Services.Profiles) }
func (h *Handlers) UpdateMe() http.HandlerFunc { return UpdateMeHandler(h.deps.Services.Profiles) }
func (h *Handlers) ListMembers() http.HandlerFunc {
	return ListMembersHandler(h.deps.Services.Profiles)
}
func (h *Handlers) ListAlumni() http.HandlerFunc { return ListAlumniHandler(h.deps.Services.Profiles) }
func (h *Handlers) UpdateMember() http.HandlerFunc {
	return UpdateMemberHandler(h.deps.Services.Profiles)
}
