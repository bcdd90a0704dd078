package api

import (
	"net/http"
	"time"

	"greek-row/chapterhouse/internal/auth"
	"greek-row/chapterhouse/internal/common"
	"greek-row/chapterhouse/internal/constants"
	gormModels "greek-row/chapterhouse/internal/models/gorm"
)

type Handlers struct {
	deps *Dependencies
}

// NewHandlers creates a new handlers instance with injected dependencies
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		deps: deps,
	}
}

// currentProfile returns the profile loaded by the auth chain, writing a 401
// when it is missing
func currentProfile(w http.ResponseWriter, r *http.Request, initTime time.Time) (*gormModels.Profile, bool) {
	p := auth.GetProfile(r.Context())
	if p == nil {
		common.RespondError(w, initTime, nil, constants.MsgUnauthenticated, http.StatusUnauthorized)
		return nil, false
	}
	return p, true
}
