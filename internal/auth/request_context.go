package auth

import (
	"context"

	"greek-row/chapterhouse/internal/db/repositories"
	gormModels "greek-row/chapterhouse/internal/models/gorm"
)

type contextKey string

var (
	userClaimsKey   contextKey = "user_claims"
	profileKey      contextKey = "profile"
	recruitScopeKey contextKey = "recruit_scope"
	requestIDKey    contextKey = "request_id"
)

func SetUserClaims(ctx context.Context, claims UserClaims) context.Context {
	return context.WithValue(ctx, userClaimsKey, claims)
}

func GetUserClaims(ctx context.Context) UserClaims {
	if claims, ok := ctx.Value(userClaimsKey).(UserClaims); ok {
		return claims
	}
	return nil
}

// SetProfile stores the caller profile loaded once per request
func SetProfile(ctx context.Context, p *gormModels.Profile) context.Context {
	return context.WithValue(ctx, profileKey, p)
}

func GetProfile(ctx context.Context) *gormModels.Profile {
	if p, ok := ctx.Value(profileKey).(*gormModels.Profile); ok {
		return p
	}
	return nil
}

// SetRecruitScope stores the caller's chapter-scoped recruit repository
func SetRecruitScope(ctx context.Context, r *repositories.ChapterRecruits) context.Context {
	return context.WithValue(ctx, recruitScopeKey, r)
}

func GetRecruitScope(ctx context.Context) *repositories.ChapterRecruits {
	if r, ok := ctx.Value(recruitScopeKey).(*repositories.ChapterRecruits); ok {
		return r
	}
	return nil
}

func SetRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
