package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"greek-row/chapterhouse/internal/common"
	"greek-row/chapterhouse/internal/constants"
	"greek-row/chapterhouse/internal/models/dtos"
	"greek-row/chapterhouse/internal/services"
)

// CreateInvitationHandler handles POST /api/invitations (admin)
func CreateInvitationHandler(svc *services.InvitationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		me, ok := currentProfile(w, r, initTime)
		if !ok {
			return
		}

		var req dtos.CreateInvitationRequest
		if !decodeJSON(w, r, initTime, &req) {
			return
		}

		created, err := svc.Create(r.Context(), me, req)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Invitation created", created, http.StatusCreated)
	}
}

// ListInvitationsHandler handles GET /api/invitations (admin)
func ListInvitationsHandler(svc *services.InvitationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		me, ok := currentProfile(w, r, initTime)
		if !ok {
			return
		}

		list, err := svc.List(r.Context(), me.ChapterID)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Invitations fetched", list)
	}
}

// DeactivateInvitationHandler handles DELETE /api/invitations/{id} (admin)
func DeactivateInvitationHandler(svc *services.InvitationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		me, ok := currentProfile(w, r, initTime)
		if !ok {
			return
		}

		if err := svc.Deactivate(r.Context(), me.ChapterID, chi.URLParam(r, "id")); err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Invitation deactivated", nil)
	}
}

// ValidateInvitationHandler handles GET /api/invitations/validate/{token}.
// Validation failures are reported in the body with a 200.
func ValidateInvitationHandler(svc *services.InvitationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		result, err := svc.Validate(r.Context(), chi.URLParam(r, "token"))
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Invitation checked", result)
	}
}

// AcceptInvitationHandler handles the public join forms. invType selects
// which invitation type the form accepts.
func AcceptInvitationHandler(svc *services.InvitationService, invType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.AcceptInvitationRequest
		if !decodeJSON(w, r, initTime, &req) {
			return
		}

		accepted, err := svc.Accept(r.Context(), chi.URLParam(r, "token"), req, invType)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		msg := "Account created"
		if accepted.MemberStatus == string(constants.MemberStatusPendingApproval) {
			msg = "Account created, awaiting admin approval"
		}
		common.RespondSuccess(w, initTime, msg, accepted, http.StatusCreated)
	}
}

func (h *Handlers) CreateInvitation() http.HandlerFunc {
	return CreateInvitationHandler(h.deps.Services.Invitations)
}

func (h *Handlers) ListInvitations() http.HandlerFunc {
	return ListInvitationsHandler(h.deps.Services.Invitations)
}

func (h *Handlers) DeactivateInvitation() http.HandlerFunc {
	return DeactivateInvitationHandler(h.deps.Services.Invitations)
}

func (h *Handlers) ValidateInvitation() http.HandlerFunc {
	return ValidateInvitationHandler(h.deps.Services.Invitations)
}

func (h *Handlers) AcceptInvitation() http.HandlerFunc {
	return AcceptInvitationHandler(h.deps.Services.Invitations, constants.InvitationTypeActiveMember)
}

func (h *Handlers) AcceptAlumniInvitation() http.HandlerFunc {
	return AcceptInvitationHandler(h.deps.Services.Invitations, constants.InvitationTypeAlumni)
}
