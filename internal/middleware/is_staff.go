package middleware

import (
	"net/http"
	"time"

	"greek-row/chapterhouse/internal/auth"
	"greek-row/chapterhouse/internal/common"
	"greek-row/chapterhouse/internal/constants"
	"greek-row/chapterhouse/internal/services"
)

// IsRecruitmentStaffMiddleware admits admins and exec chapter roles
func IsRecruitmentStaffMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !services.CanManageRecruits(auth.GetProfile(r.Context())) {
				common.RespondError(w, time.Now(), nil, constants.MsgForbidden, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
