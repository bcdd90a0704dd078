package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greek-row/chapterhouse/internal/auth"
	"greek-row/chapterhouse/internal/common"
	"greek-row/chapterhouse/internal/constants"
	"greek-row/chapterhouse/internal/db/repositories"
	gormModels "greek-row/chapterhouse/internal/models/gorm"
)

func TestAuthService_LoginAndLogout(t *testing.T) {
	orm := setupTestDB(t)
	ctx := context.Background()
	identity := auth.NewLocalIdentityProvider(repositories.NewAuthUserRepository(orm))
	profiles := repositories.NewProfileRepository(orm)
	svc := NewAuthService(identity, auth.NewTokenIssuer("auth-service-test", time.Hour), common.NewMemorySessionStore(time.Hour), profiles)

	chapter := seedChapter(t, orm, "Phi Chi")
	user, err := identity.CreateUser(ctx, "sam@example.edu", "hunter2-hunter2")
	require.NoError(t, err)
	require.NoError(t, profiles.Create(ctx, &gormModels.Profile{
		ID: user.ID, ChapterID: chapter.ID, Email: "sam@example.edu", FullName: "Sam",
		Role: constants.RoleActiveMember, MemberStatus: constants.MemberStatusActive,
	}))

	_, err = svc.Login(ctx, "sam@example.edu", "wrong-password")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthenticated))

	res, err := svc.Login(ctx, "sam@example.edu", "hunter2-hunter2")
	require.NoError(t, err)
	require.NotNil(t, res.Session)
	assert.Equal(t, "Sam", res.User.FullName)

	claims, err := svc.ResolveBearer(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID())
	assert.Equal(t, res.Session.SessionID, claims.SessionID())

	claims, err = svc.ResolveSession(ctx, res.Session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "SESSION", claims.Source())

	require.NoError(t, svc.Logout(ctx, res.Session.SessionID))

	// the bearer token dies with its session
	_, err = svc.ResolveBearer(ctx, res.AccessToken)
	assert.True(t, errors.Is(err, ErrUnauthenticated))
	_, err = svc.ResolveSession(ctx, res.Session.SessionID)
	assert.True(t, errors.Is(err, ErrUnauthenticated))

	// ops tokens have no session and survive logout
	token, _, err := svc.IssueForEmail(ctx, "sam@example.edu")
	require.NoError(t, err)
	_, err = svc.ResolveBearer(ctx, token)
	assert.NoError(t, err)

	_, _, err = svc.IssueForEmail(ctx, "nobody@example.edu")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestAuthService_InactiveCannotLogin(t *testing.T) {
	orm := setupTestDB(t)
	ctx := context.Background()
	identity := auth.NewLocalIdentityProvider(repositories.NewAuthUserRepository(orm))
	profiles := repositories.NewProfileRepository(orm)
	svc := NewAuthService(identity, auth.NewTokenIssuer("auth-service-test", time.Hour), common.NewMemorySessionStore(time.Hour), profiles)

	chapter := seedChapter(t, orm, "Phi Chi")
	user, err := identity.CreateUser(ctx, "gone@example.edu", "hunter2-hunter2")
	require.NoError(t, err)
	require.NoError(t, profiles.Create(ctx, &gormModels.Profile{
		ID: user.ID, ChapterID: chapter.ID, Email: "gone@example.edu",
		Role: constants.RoleActiveMember, MemberStatus: constants.MemberStatusInactive,
	}))

	_, err = svc.Login(ctx, "gone@example.edu", "hunter2-hunter2")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrForbidden))
}
