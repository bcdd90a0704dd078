package api

import (
	"net/http"
	"time"

	"greek-row/chapterhouse/internal/auth"
	"greek-row/chapterhouse/internal/common"
	"greek-row/chapterhouse/internal/config"
	"greek-row/chapterhouse/internal/constants"
	"greek-row/chapterhouse/internal/models/dtos"
	"greek-row/chapterhouse/internal/services"
)

// LoginHandler handles POST /api/auth/login
func LoginHandler(svc *services.AuthService, cfg config.AuthConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.LoginRequest
		if !decodeJSON(w, r, initTime, &req) {
			return
		}

		result, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     constants.SessionCookieName,
			Value:    result.Session.SessionID,
			Path:     "/",
			Expires:  result.Session.ExpiresAt,
			HttpOnly: true,
			Secure:   cfg.SecureCookies,
			SameSite: http.SameSiteLaxMode,
		})

		common.RespondSuccess(w, initTime, "Logged in", dtos.LoginResponse{
			AccessToken: result.AccessToken,
			TokenType:   "Bearer",
			ExpiresIn:   int64(time.Until(result.ExpiresAt).Seconds()),
			User:        result.User,
		})
	}
}

// LogoutHandler handles POST /api/auth/logout
func LogoutHandler(svc *services.AuthService, cfg config.AuthConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		claims := auth.GetUserClaims(r.Context())
		if claims == nil {
			common.RespondError(w, initTime, nil, constants.MsgUnauthenticated, http.StatusUnauthorized)
			return
		}

		if err := svc.Logout(r.Context(), claims.SessionID()); err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     constants.SessionCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   cfg.SecureCookies,
			SameSite: http.SameSiteLaxMode,
		})
		common.RespondSuccess(w, initTime, "Logged out", nil)
	}
}

func (h *Handlers) Login() http.HandlerFunc {
	return LoginHandler(h.deps.Services.Auth, h.deps.Config.Auth)
}

func (h *Handlers) Logout() http.HandlerFunc {
	return LogoutHandler(h.deps.Services.Auth, h.deps.Config.Auth)
}
