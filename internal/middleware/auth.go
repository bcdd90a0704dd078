package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"greek-row/chapterhouse/internal/auth"
	"greek-row/chapterhouse/internal/common"
	"greek-row/chapterhouse/internal/constants"
	"greek-row/chapterhouse/internal/db/repositories"
	"greek-row/chapterhouse/internal/logging"
	"greek-row/chapterhouse/internal/services"
)

// Authenticator resolves credentials to claims. Implemented by services.AuthService.
type Authenticator interface {
	ResolveBearer(ctx context.Context, token string) (auth.UserClaims, error)
	ResolveSession(ctx context.Context, sessionID string) (auth.UserClaims, error)
}

// AuthMiddleware accepts a Bearer token first, then the session cookie
func AuthMiddleware(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			initTime := time.Now()

			var (
				claims auth.UserClaims
				err    error
			)

			authHeader := r.Header.Get("Authorization")
			cookie, cookieErr := r.Cookie(constants.SessionCookieName)

			switch {
			case strings.HasPrefix(authHeader, "Bearer "):
				claims, err = authn.ResolveBearer(r.Context(), strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")))

			case cookieErr == nil && cookie.Value != "":
				claims, err = authn.ResolveSession(r.Context(), cookie.Value)

			default:
				common.RespondError(w, initTime, nil, constants.MsgUnauthenticated, http.StatusUnauthorized)
				return
			}

			if err != nil {
				if errors.Is(err, services.ErrUnauthenticated) {
					common.RespondError(w, initTime, nil, constants.MsgUnauthenticated, http.StatusUnauthorized)
					return
				}
				common.RespondError(w, initTime, err, constants.MsgInternal)
				return
			}

			ctx := auth.SetUserClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LoadProfile fetches the caller's profile once per request and exposes the
// chapter-scoped recruit repository. A caller without a profile gets 403.
func LoadProfile(profiles *repositories.ProfileRepository, recruits *repositories.RecruitRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			initTime := time.Now()

			claims := auth.GetUserClaims(r.Context())
			if claims == nil || claims.UserID() == "" {
				common.RespondError(w, initTime, nil, constants.MsgUnauthenticated, http.StatusUnauthorized)
				return
			}

			profile, err := profiles.GetByID(r.Context(), claims.UserID())
			if err != nil {
				common.RespondError(w, initTime, err, constants.MsgInternal)
				return
			}
			if profile == nil {
				common.RespondError(w, initTime, nil, constants.MsgProfileNotFound, http.StatusForbidden)
				return
			}
			if profile.MemberStatus == constants.MemberStatusInactive {
				common.RespondError(w, initTime, nil, constants.MsgForbidden, http.StatusForbidden)
				return
			}

			ctx := auth.SetProfile(r.Context(), profile)
			ctx = auth.SetRecruitScope(ctx, recruits.ForChapter(profile.ChapterID))
			ctx = logging.NewContext(ctx, logging.WithRequest(
				auth.GetRequestID(ctx), profile.ChapterID, profile.ID, r.URL.Path,
			))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
