package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"greek-row/chapterhouse/internal/common"
	"greek-row/chapterhouse/internal/constants"
	"greek-row/chapterhouse/internal/services"
)

// GetChapterHandler handles GET /api/chapters/{id}
func GetChapterHandler(svc *services.ChapterService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		me, ok := currentProfile(w, r, initTime)
		if !ok {
			return
		}

		view, err := svc.Get(r.Context(), me, chi.URLParam(r, "id"))
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Chapter fetched", view)
	}
}

// GetFeaturesHandler handles GET /api/chapters/{id}/features
func GetFeaturesHandler(svc *services.ChapterService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		me, ok := currentProfile(w, r, initTime)
		if !ok {
			return
		}

		features, err := svc.Features(r.Context(), me, chi.URLParam(r, "id"))
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Features fetched", features)
	}
}

// UpdateFeaturesHandler handles PATCH /api/chapters/{id}/features (admin).
// The body is a flat map of flag name to boolean.
func UpdateFeaturesHandler(svc *services.ChapterService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		me, ok := currentProfile(w, r, initTime)
		if !ok {
			return
		}

		var patch map[string]bool
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidJSON, http.StatusBadRequest)
			return
		}

		features, err := svc.UpdateFeatures(r.Context(), me, chi.URLParam(r, "id"), patch)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Features updated", features)
	}
}

// GetBrandingHandler handles GET /api/chapters/{id}/branding
func GetBrandingHandler(svc *services.ChapterService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		me, ok := currentProfile(w, r, initTime)
		if !ok {
			return
		}

		branding, err := svc.Branding(r.Context(), me, chi.URLParam(r, "id"))
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Branding fetched", branding)
	}
}

// UpdateBrandingHandler handles PATCH /api/chapters/{id}/branding (admin)
func UpdateBrandingHandler(svc *services.ChapterService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		me, ok := currentProfile(w, r, initTime)
		if !ok {
			return
		}

		var patch map[string]string
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			common.RespondError(w, initTime, err, constants.MsgInvalidJSON, http.StatusBadRequest)
			return
		}

		branding, err := svc.UpdateBranding(r.Context(), me, chi.URLParam(r, "id"), patch)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Branding updated", branding)
	}
}

func (h *Handlers) GetChapter() http.HandlerFunc { return GetChapterHandler(h.deps.Services.Chapters) }
func (h *Handlers) GetFeatures() http.HandlerFunc {
	return GetFeaturesHandler(h.deps.Services.Chapters)
}
func (h *Handlers) UpdateFeatures() http.HandlerFunc {
	return UpdateFeaturesHandler(h.deps.Services.Chapters)
}
func (h *Handlers) GetBranding() http.HandlerFunc {
	return GetBrandingHandler(h.deps.Services.Chapters)
}
func (h *Handlers) UpdateBranding() http.HandlerFunc {
	return UpdateBrandingHandler(h.deps.Services.Chapters)
}
