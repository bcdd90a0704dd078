package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greek-row/chapterhouse/internal/auth"
	"greek-row/chapterhouse/internal/constants"
	"greek-row/chapterhouse/internal/db"
	"greek-row/chapterhouse/internal/db/repositories"
	"greek-row/chapterhouse/internal/models/dtos"
	gormModels "greek-row/chapterhouse/internal/models/gorm"
	"greek-row/chapterhouse/internal/services"
)

type stubAuthenticator struct {
	bearer  map[string]string
	session map[string]string
	err     error
}

func (s stubAuthenticator) ResolveBearer(_ context.Context, token string) (auth.UserClaims, error) {
	if s.err != nil {
		return nil, s.err
	}
	if id, ok := s.bearer[token]; ok {
		return &auth.JWTClaims{UserUUID: id}, nil
	}
	return nil, &services.ServiceError{Kind: services.ErrUnauthenticated, Msg: constants.MsgUnauthenticated}
}

func (s stubAuthenticator) ResolveSession(_ context.Context, id string) (auth.UserClaims, error) {
	if uid, ok := s.session[id]; ok {
		return &auth.SessionClaims{UserUUID: uid, Session: id}, nil
	}
	return nil, &services.ServiceError{Kind: services.ErrUnauthenticated, Msg: constants.MsgUnauthenticated}
}

// okHandler echoes who the request was authenticated as
var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	if claims := auth.GetUserClaims(r.Context()); claims != nil {
		w.Header().Set("X-User", claims.UserID()+"/"+claims.Source())
	}
	w.WriteHeader(http.StatusNoContent)
})

func serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body dtos.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestAuthMiddleware(t *testing.T) {
	h := AuthMiddleware(stubAuthenticator{
		bearer:  map[string]string{"good": "user-1"},
		session: map[string]string{"sess": "user-2"},
	})(okHandler)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, constants.MsgUnauthenticated, errorBody(t, rec))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec = serve(h, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "user-1/JWT", rec.Header().Get("X-User"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer forged")
	assert.Equal(t, http.StatusUnauthorized, serve(h, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: "sess"})
	rec = serve(h, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "user-2/SESSION", rec.Header().Get("X-User"))

	broken := AuthMiddleware(stubAuthenticator{err: errors.New("redis down")})(okHandler)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec = serve(broken, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, constants.MsgInternal, errorBody(t, rec))
}

func TestLoadProfile(t *testing.T) {
	orm, err := db.OpenSQLiteMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := orm.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	chapter := &gormModels.Chapter{Name: "Mu Nu", Slug: "mu-nu-" + uuid.NewString()[:8], IsActive: true}
	require.NoError(t, orm.Create(chapter).Error)
	active := &gormModels.Profile{ID: uuid.NewString(), ChapterID: chapter.ID, Email: "active@example.edu",
		Role: constants.RoleActiveMember, MemberStatus: constants.MemberStatusActive}
	inactive := &gormModels.Profile{ID: uuid.NewString(), ChapterID: chapter.ID, Email: "gone@example.edu",
		Role: constants.RoleActiveMember, MemberStatus: constants.MemberStatusInactive}
	require.NoError(t, orm.Create(active).Error)
	require.NoError(t, orm.Create(inactive).Error)

	var seen *gormModels.Profile
	var scoped bool
	h := LoadProfile(repositories.NewProfileRepository(orm), repositories.NewRecruitRepository(orm))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = auth.GetProfile(r.Context())
			scoped = auth.GetRecruitScope(r.Context()) != nil
			w.WriteHeader(http.StatusNoContent)
		}))

	withClaims := func(id string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		return req.WithContext(auth.SetUserClaims(req.Context(), &auth.JWTClaims{UserUUID: id}))
	}

	rec := serve(h, withClaims(active.ID))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, active.ID, seen.ID)
	assert.True(t, scoped)

	rec = serve(h, withClaims(inactive.ID))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(h, withClaims(uuid.NewString()))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, constants.MsgProfileNotFound, errorBody(t, rec))

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func withProfile(p *gormModels.Profile) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if p == nil {
		return req
	}
	return req.WithContext(auth.SetProfile(req.Context(), p))
}

func TestRoleGuards(t *testing.T) {
	rush := constants.ChapterRoleRushChair
	member := &gormModels.Profile{ChapterID: "c1", Role: constants.RoleActiveMember, MemberStatus: constants.MemberStatusActive}
	pending := &gormModels.Profile{ChapterID: "c1", Role: constants.RoleActiveMember, MemberStatus: constants.MemberStatusPendingApproval}
	admin := &gormModels.Profile{ChapterID: "c1", Role: constants.RoleAdmin, MemberStatus: constants.MemberStatusActive}
	chair := &gormModels.Profile{ChapterID: "c1", Role: constants.RoleActiveMember, ChapterRole: &rush, MemberStatus: constants.MemberStatusActive}

	cases := []struct {
		name    string
		guard   func(http.Handler) http.Handler
		profile *gormModels.Profile
		want    int
	}{
		{"active member passes", IsActiveMemberMiddleware(), member, http.StatusNoContent},
		{"pending member blocked", IsActiveMemberMiddleware(), pending, http.StatusForbidden},
		{"no profile blocked", IsActiveMemberMiddleware(), nil, http.StatusForbidden},
		{"admin passes admin guard", IsAdminMiddleware(), admin, http.StatusNoContent},
		{"member fails admin guard", IsAdminMiddleware(), member, http.StatusForbidden},
		{"rush chair is staff", IsRecruitmentStaffMiddleware(), chair, http.StatusNoContent},
		{"admin is staff", IsRecruitmentStaffMiddleware(), admin, http.StatusNoContent},
		{"member is not staff", IsRecruitmentStaffMiddleware(), member, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, serve(tc.guard(okHandler), withProfile(tc.profile)).Code)
		})
	}
}

type flagSet map[string]bool

func (f flagSet) FeatureEnabled(_ context.Context, _ string, key string) bool { return f[key] }

func TestRequireFeature(t *testing.T) {
	flags := flagSet{"messaging": true}
	member := &gormModels.Profile{ChapterID: "c1", Role: constants.RoleActiveMember}

	assert.Equal(t, http.StatusNoContent, serve(RequireFeature(flags, "messaging")(okHandler), withProfile(member)).Code)

	rec := serve(RequireFeature(flags, "recruitment")(okHandler), withProfile(member))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, constants.MsgFeatureDisabled, errorBody(t, rec))

	assert.Equal(t, http.StatusUnauthorized, serve(RequireFeature(flags, "messaging")(okHandler), withProfile(nil)).Code)
}

func TestRateLimiter(t *testing.T) {
	h := NewRateLimiter(0.001, 2).Middleware(okHandler)

	from := func(addr string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = addr
		return req
	}

	assert.Equal(t, http.StatusNoContent, serve(h, from("10.0.0.1:5000")).Code)
	assert.Equal(t, http.StatusNoContent, serve(h, from("10.0.0.1:5001")).Code)
	rec := serve(h, from("10.0.0.1:5002"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, constants.MsgTooManyRequests, errorBody(t, rec))

	// buckets are per IP
	assert.Equal(t, http.StatusNoContent, serve(h, from("10.0.0.2:5000")).Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	var got string
	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = auth.GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := serve(h, req)
	assert.Equal(t, "abc-123", got)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, got, 26)
	assert.Equal(t, got, rec.Header().Get("X-Request-ID"))
}
