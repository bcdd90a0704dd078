package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"greek-row/chapterhouse/internal/auth"
	"greek-row/chapterhouse/internal/common"
	"greek-row/chapterhouse/internal/constants"
	"greek-row/chapterhouse/internal/db/repositories"
	"greek-row/chapterhouse/internal/models/dtos"
	"greek-row/chapterhouse/internal/services"
)

// recruitScope returns the chapter-bound recruit store for the request
func recruitScope(w http.ResponseWriter, r *http.Request, initTime time.Time) (*repositories.ChapterRecruits, bool) {
	scope := auth.GetRecruitScope(r.Context())
	if scope == nil {
		common.RespondError(w, initTime, nil, constants.MsgForbidden, http.StatusForbidden)
		return nil, false
	}
	return scope, true
}

// ListRecruitsHandler handles GET /api/recruitment/recruits?stage=&q=
func ListRecruitsHandler(svc *services.RecruitmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		scope, ok := recruitScope(w, r, initTime)
		if !ok {
			return
		}

		q := r.URL.Query()
		list, err := svc.List(r.Context(), scope, q.Get("stage"), q.Get("q"))
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Recruits fetched", list)
	}
}

// GetRecruitHandler handles GET /api/recruitment/recruits/{id}
func GetRecruitHandler(svc *services.RecruitmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		scope, ok := recruitScope(w, r, initTime)
		if !ok {
			return
		}

		view, err := svc.Get(r.Context(), scope, chi.URLParam(r, "id"))
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Recruit fetched", view)
	}
}

// CreateRecruitHandler handles POST /api/recruitment/recruits
func CreateRecruitHandler(svc *services.RecruitmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		scope, ok := recruitScope(w, r, initTime)
		if !ok {
			return
		}
		me, ok := currentProfile(w, r, initTime)
		if !ok {
			return
		}

		var req dtos.RecruitRequest
		if !decodeJSON(w, r, initTime, &req) {
			return
		}

		view, err := svc.Create(r.Context(), scope, me, req)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Recruit created", view, http.StatusCreated)
	}
}

// UpdateRecruitHandler handles PATCH /api/recruitment/recruits/{id}
func UpdateRecruitHandler(svc *services.RecruitmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		scope, ok := recruitScope(w, r, initTime)
		if !ok {
			return
		}

		var req dtos.RecruitRequest
		if !decodeJSON(w, r, initTime, &req) {
			return
		}

		view, err := svc.Update(r.Context(), scope, chi.URLParam(r, "id"), req)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Recruit updated", view)
	}
}

// DeleteRecruitHandler handles DELETE /api/recruitment/recruits/{id}
func DeleteRecruitHandler(svc *services.RecruitmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		scope, ok := recruitScope(w, r, initTime)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), scope, chi.URLParam(r, "id")); err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Recruit deleted", nil)
	}
}

func (h *Handlers) ListRecruits() http.HandlerFunc {
	return ListRecruitsHandler(h.deps.Services.Recruitment)
}
func (h *Handlers) GetRecruit() http.HandlerFunc {
	return GetRecruitHandler(h.deps.Services.Recruitment)
}
func (h *Handlers) CreateRecruit() http.HandlerFunc {
	return CreateRecruitHandler(h.deps.Services.Recruitment)
}
func (h *Handlers) UpdateRecruit() http.HandlerFunc {
	return UpdateRecruitHandler(h.deps.Services.Recruitment)
}
func (h *Handlers) DeleteRecruit() http.HandlerFunc {
	return DeleteRecruitHandler(h.deps.Services.Recruitment)
}
