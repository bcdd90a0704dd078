package middleware

import (
	"net/http"
	"time"

	"greek-row/chapterhouse/internal/auth"
	"greek-row/chapterhouse/internal/common"
	"greek-row/chapterhouse/internal/constants"
)

// IsActiveMemberMiddleware keeps members awaiting approval out of chapter data
func IsActiveMemberMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			profile := auth.GetProfile(r.Context())

			if profile == nil || profile.MemberStatus != constants.MemberStatusActive {
				common.RespondError(w, time.Now(), nil, "Your membership is awaiting approval", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
