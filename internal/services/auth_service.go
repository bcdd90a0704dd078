package services

import (
	"context"
	"errors"
	"time"

	"greek-row/chapterhouse/internal/auth"
	"greek-row/chapterhouse/internal/common"
	"greek-row/chapterhouse/internal/constants"
	"greek-row/chapterhouse/internal/db/repositories"
	"greek-row/chapterhouse/internal/logging"
	"greek-row/chapterhouse/internal/models/dtos"
	gormModels "greek-row/chapterhouse/internal/models/gorm"
)

// LoginResult is a fresh session plus the bearer token bound to it
type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	Session     *common.SessionData
	Profile     *gormModels.Profile
	User        *dtos.ProfileView
}

type AuthService struct {
	identity auth.IdentityProvider
	tokens   *auth.TokenIssuer
	sessions common.SessionStore
	profiles *repositories.ProfileRepository
}

func NewAuthService(
	identity auth.IdentityProvider,
	tokens *auth.TokenIssuer,
	sessions common.SessionStore,
	profiles *repositories.ProfileRepository,
) *AuthService {
	return &AuthService{identity: identity, tokens: tokens, sessions: sessions, profiles: profiles}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.identity.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return nil, unauthenticated("Invalid email or password")
		}
		return nil, err
	}

	profile, err := s.profiles.GetByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, forbidden(constants.MsgProfileNotFound)
	}
	if profile.MemberStatus == constants.MemberStatusInactive {
		return nil, forbidden("This account has been deactivated")
	}

	session, err := s.sessions.CreateSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, session.SessionID)
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Infow("User logged in", "user_id", user.ID, "chapter_id", profile.ChapterID)
	return &LoginResult{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		Session:     session,
		Profile:     profile,
		User:        toProfileView(profile, nil),
	}, nil
}

// Logout drops the session; tokens bound to it stop resolving
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessions.DeleteSession(ctx, sessionID)
}

// ResolveBearer validates an access token. Tokens issued for a session die with it.
func (s *AuthService) ResolveBearer(ctx context.Context, token string) (auth.UserClaims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, unauthenticated(constants.MsgUnauthenticated)
	}
	if claims.SessionID() != "" {
		if _, err := s.sessions.GetSession(ctx, claims.SessionID()); err != nil {
			if errors.Is(err, common.ErrSessionNotFound) {
				return nil, unauthenticated(constants.MsgUnauthenticated)
			}
			return nil, err
		}
	}
	return claims, nil
}

func (s *AuthService) ResolveSession(ctx context.Context, sessionID string) (auth.UserClaims, error) {
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, common.ErrSessionNotFound) {
			return nil, unauthenticated(constants.MsgUnauthenticated)
		}
		return nil, err
	}
	return &auth.SessionClaims{UserUUID: session.UserID, Session: session.SessionID}, nil
}

// IssueForEmail mints a session-less token for ops tooling
func (s *AuthService) IssueForEmail(ctx context.Context, email string) (string, time.Time, error) {
	user, err := s.identity.FindByEmail(ctx, email)
	if err != nil {
		return "", time.Time{}, err
	}
	if user == nil {
		return "", time.Time{}, notFound("No user with that email")
	}
	return s.tokens.Issue(user.ID, "")
}
