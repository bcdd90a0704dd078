package middleware

import (
	"context"
	"net/http"
	"time"

	"greek-row/chapterhouse/internal/auth"
	"greek-row/chapterhouse/internal/common"
	"greek-row/chapterhouse/internal/constants"
)

type FeatureChecker interface {
	FeatureEnabled(ctx context.Context, chapterID, key string) bool
}

// RequireFeature blocks the route when the caller's chapter has switched key off
func RequireFeature(features FeatureChecker, key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			profile := auth.GetProfile(r.Context())
			if profile == nil {
				common.RespondError(w, time.Now(), nil, constants.MsgUnauthenticated, http.StatusUnauthorized)
				return
			}
			if !features.FeatureEnabled(r.Context(), profile.ChapterID, key) {
				common.RespondError(w, time.Now(), nil, constants.MsgFeatureDisabled, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
