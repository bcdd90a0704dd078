package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greek-row/chapterhouse/internal/api"
	"greek-row/chapterhouse/internal/auth"
	"greek-row/chapterhouse/internal/config"
	"greek-row/chapterhouse/internal/constants"
	"greek-row/chapterhouse/internal/db"
	"greek-row/chapterhouse/internal/metrics"
	gormModels "greek-row/chapterhouse/internal/models/gorm"
	"greek-row/chapterhouse/internal/providers"
)

type testServer struct {
	handler http.Handler
	deps    *api.Dependencies
	chapter *gormModels.Chapter
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	orm, err := db.OpenSQLiteMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := orm.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	sqlxDB, err := db.SqlxFromORM(orm)
	require.NoError(t, err)

	cfg := &config.Config{
		BaseURL:            "https://app.example.edu",
		CORSAllowedOrigins: []string{"https://app.example.edu"},
		Auth:               config.AuthConfig{JWTSecret: "router-test-secret", AccessTokenTTL: time.Hour, SessionTTL: time.Hour},
		SMS:                config.SMSConfig{MaxConcurrentSends: 1},
		Notify:             config.NotifyConfig{LocalBuffer: 64},
	}
	email, err := providers.NewEmailProvider(config.EmailConfig{Provider: "console"})
	require.NoError(t, err)
	sms, err := providers.NewSMSProvider(config.SMSConfig{Provider: "console"})
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	deps := api.NewDependencies(cfg, orm, sqlxDB, nil, metrics.NewMetricsRegistry(registry), email, sms)

	chapter := &gormModels.Chapter{Name: "Omega Psi", Slug: "omega-psi-" + uuid.NewString()[:8], IsActive: true}
	require.NoError(t, orm.Create(chapter).Error)

	return &testServer{
		handler: RegisterRoutes(deps, registry, time.Now()),
		deps:    deps,
		chapter: chapter,
	}
}

// seedAdmin creates a login and an admin profile sharing its id
func (s *testServer) seedAdmin(t *testing.T, email, password string) {
	t.Helper()
	ctx := context.Background()
	user, err := auth.NewLocalIdentityProvider(s.deps.Repo.AuthUsers).CreateUser(ctx, email, password)
	require.NoError(t, err)
	require.NoError(t, s.deps.Repo.Profiles.Create(ctx, &gormModels.Profile{
		ID:           user.ID,
		ChapterID:    s.chapter.ID,
		Email:        email,
		FullName:     "Chapter Admin",
		Role:         constants.RoleAdmin,
		MemberStatus: constants.MemberStatusActive,
	}))
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, code, env.Error)
	var out struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	require.NotEmpty(t, out.AccessToken)
	return out.AccessToken
}

func TestInvitationToMemberFlow(t *testing.T) {
	s := newTestServer(t)
	s.seedAdmin(t, "admin@state.edu", "admin-password-1")
	adminToken := s.login(t, "admin@state.edu", "admin-password-1")

	code, env := s.do(t, http.MethodPost, "/api/invitations", adminToken, map[string]any{
		"chapter_id":             s.chapter.ID,
		"email_domain_allowlist": []string{"state.edu"},
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	var created struct {
		Token string `json:"token"`
		URL   string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotEmpty(t, created.Token)
	assert.Contains(t, created.URL, created.Token)

	code, env = s.do(t, http.MethodGet, "/api/invitations/validate/"+created.Token, "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"valid":true`)
	assert.Contains(t, string(env.Data), "Omega Psi")

	code, env = s.do(t, http.MethodPost, "/api/invitations/accept/"+created.Token, "", map[string]any{
		"email":     "new.member@state.edu",
		"password":  "member-password-1",
		"full_name": "New Member",
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	assert.Equal(t, "Account created", env.Message)

	memberToken := s.login(t, "new.member@state.edu", "member-password-1")
	code, env = s.do(t, http.MethodGet, "/api/profiles/me", memberToken, nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Contains(t, string(env.Data), `"chapter_id":"`+s.chapter.ID+`"`)

	// admin-only and staff-only routes stay closed to a plain member
	code, _ = s.do(t, http.MethodGet, "/api/invitations", memberToken, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = s.do(t, http.MethodGet, "/api/recruitment/recruits", memberToken, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.do(t, http.MethodGet, "/api/members", memberToken, nil)
	require.Equal(t, http.StatusOK, code, env.Error)
}

func TestFeatureFlagsGateRoutes(t *testing.T) {
	s := newTestServer(t)
	s.seedAdmin(t, "admin@state.edu", "admin-password-1")
	token := s.login(t, "admin@state.edu", "admin-password-1")

	code, _ := s.do(t, http.MethodGet, "/api/recruitment/recruits", token, nil)
	require.Equal(t, http.StatusOK, code)

	code, env := s.do(t, http.MethodPatch, "/api/chapters/"+s.chapter.ID+"/features", token, map[string]bool{"recruitment": false})
	require.Equal(t, http.StatusOK, code, env.Error)

	code, env = s.do(t, http.MethodGet, "/api/recruitment/recruits", token, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, constants.MsgFeatureDisabled, env.Error)

	// other features are untouched
	code, _ = s.do(t, http.MethodGet, "/api/announcements", token, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestAnnouncementDeleteIsFeatureGated(t *testing.T) {
	s := newTestServer(t)
	s.seedAdmin(t, "admin@state.edu", "admin-password-1")
	token := s.login(t, "admin@state.edu", "admin-password-1")

	code, env := s.do(t, http.MethodPost, "/api/announcements", token, map[string]interface{}{
		"title": "Retreat", "content": "Cabins are booked",
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	features := "/api/chapters/" + s.chapter.ID + "/features"
	code, env = s.do(t, http.MethodPatch, features, token, map[string]bool{"announcements": false})
	require.Equal(t, http.StatusOK, code, env.Error)

	code, env = s.do(t, http.MethodDelete, "/api/announcements/"+created.ID, token, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, constants.MsgFeatureDisabled, env.Error)

	code, env = s.do(t, http.MethodPatch, features, token, map[string]bool{"announcements": true})
	require.Equal(t, http.StatusOK, code, env.Error)

	code, env = s.do(t, http.MethodDelete, "/api/announcements/"+created.ID, token, nil)
	assert.Equal(t, http.StatusOK, code, env.Error)
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodGet, "/api/profiles/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, constants.MsgUnauthenticated, env.Error)

	code, _ = s.do(t, http.MethodGet, "/api/profiles/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "nobody@state.edu", "password": "whatever1"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid email or password", env.Error)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodGet, "/healthCheck", "", nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Contains(t, string(env.Data), `"database"`)

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}
