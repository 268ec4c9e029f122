package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/shyam-539/GoTicket-server/internal/config"
	"github.com/shyam-539/GoTicket-server/internal/handler"
	"github.com/shyam-539/GoTicket-server/internal/model"
	"github.com/shyam-539/GoTicket-server/internal/observability"
	"github.com/shyam-539/GoTicket-server/internal/service"
	"github.com/shyam-539/GoTicket-server/internal/utils"
)

const jwtSecret = "router-test-secret"

type mockUsers struct{ mock.Mock }

func (m *mockUsers) Create(ctx context.Context, u *model.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUsers) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUsers) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockUsers) UpdateProfile(ctx context.Context, id uint64, name, phone, pic string) error {
	return m.Called(ctx, id, name, phone, pic).Error(0)
}

func (m *mockUsers) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	return m.Called(ctx, id, hash).Error(0)
}

func (m *mockUsers) SetActive(ctx context.Context, id uint64, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

func (m *mockUsers) SetVerified(ctx context.Context, id uint64, verified bool) error {
	return m.Called(ctx, id, verified).Error(0)
}

func (m *mockUsers) List(ctx context.Context, role string) ([]model.User, error) {
	args := m.Called(ctx, role)
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *mockUsers) Delete(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

type mockTokens struct{ mock.Mock }

func (m *mockTokens) StoreRefresh(ctx context.Context, userID uint64, hash string, exp time.Time) error {
	return m.Called(ctx, userID, hash, exp).Error(0)
}

func (m *mockTokens) ValidateRefresh(ctx context.Context, hash string) (uint64, error) {
	args := m.Called(ctx, hash)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockTokens) RevokeByHash(ctx context.Context, hash string) error {
	return m.Called(ctx, hash).Error(0)
}

func (m *mockTokens) RevokeAllForUser(ctx context.Context, userID uint64) error {
	return m.Called(ctx, userID).Error(0)
}

type testServer struct {
	http   http.Handler
	users  *mockUsers
	tokens *mockTokens
}

func newTestServer(env string) *testServer {
	cfg := config.Config{
		Env:               env,
		JWTSecret:         jwtSecret,
		AccessTTLMin:      15,
		RefreshTTLDays:    7,
		BcryptCost:        bcrypt.MinCost,
		RefreshCookiePath: "/api/auth",
		AdminSignupKey:    "open-sesame",
	}
	log := observability.NewNopLogger()
	users, tokens := &mockUsers{}, &mockTokens{}
	auth := service.NewAuthService(users, tokens, nil, nil, cfg, log)
	e := New(Handlers{Auth: handler.NewAuthHandler(auth, cfg)}, Options{Config: cfg, Log: log})
	return &testServer{http: e, users: users, tokens: tokens}
}

func (s *testServer) do(method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.http.ServeHTTP(rec, req)
	return rec
}

func bearer(t *testing.T, id uint64, role string, ttlMin int) map[string]string {
	t.Helper()
	tok, err := utils.NewAccessToken(jwtSecret, id, role, ttlMin)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + tok.Token}
}

type body struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Stack   string          `json:"stack"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) body {
	t.Helper()
	var b body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b), rec.Body.String())
	return b
}

func TestHealth(t *testing.T) {
	s := newTestServer("test")
	rec := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"UP"}`, rec.Body.String())
}

func TestAdminRoleSurvivesProfileUpdate(t *testing.T) {
	s := newTestServer("test")
	s.users.On("EmailExists", mock.Anything, "root@example.com").Return(false, nil)
	s.users.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).
		Run(func(args mock.Arguments) { args.Get(1).(*model.User).ID = 1 }).
		Return(nil)

	rec := s.do(http.MethodPost, "/api/auth/signup",
		`{"name":"Root","email":"root@example.com","password":"longenough","role":"admin"}`, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code, "admin signup needs the key")

	rec = s.do(http.MethodPost, "/api/auth/signup",
		`{"name":"Root","email":"root@example.com","password":"longenough","role":"admin"}`,
		map[string]string{"X-Admin-Signup-Key": "open-sesame"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	admin := &model.User{ID: 1, Name: "Root", Email: "root@example.com", Role: model.RoleAdmin, IsActive: true, IsVerified: true}
	renamed := *admin
	renamed.Name = "Super Root"
	s.users.On("GetByID", mock.Anything, uint64(1)).Return(admin, nil).Once()
	s.users.On("UpdateProfile", mock.Anything, uint64(1), "Super Root", "", "").Return(nil)
	s.users.On("GetByID", mock.Anything, uint64(1)).Return(&renamed, nil).Once()

	rec = s.do(http.MethodPut, "/api/users/me", `{"name":"Super Root","role":"user"}`, bearer(t, 1, model.RoleAdmin, 15))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var u model.User
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &u))
	assert.Equal(t, model.RoleAdmin, u.Role)
	assert.Equal(t, "Super Root", u.Name)
	s.users.AssertExpectations(t)
}

func TestLoginSetsRefreshCookie(t *testing.T) {
	for _, env := range []string{"development", "production"} {
		t.Run(env, func(t *testing.T) {
			s := newTestServer(env)
			hash, err := utils.HashPassword("correct-horse", bcrypt.MinCost)
			require.NoError(t, err)
			u := &model.User{ID: 5, Email: "asha@example.com", PasswordHash: hash, Role: model.RoleUser, IsActive: true, IsVerified: true}
			s.users.On("GetByEmail", mock.Anything, "asha@example.com").Return(u, nil)
			s.tokens.On("StoreRefresh", mock.Anything, uint64(5), mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil)

			rec := s.do(http.MethodPost, "/api/auth/login", `{"email":"asha@example.com","password":"correct-horse"}`, nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			res := rec.Result()
			defer res.Body.Close()
			var ck *http.Cookie
			for _, c := range res.Cookies() {
				if c.Name == "refreshToken" {
					ck = c
				}
			}
			require.NotNil(t, ck)
			assert.True(t, ck.HttpOnly)
			assert.Equal(t, http.SameSiteStrictMode, ck.SameSite)
			assert.Equal(t, "/api/auth", ck.Path)
			assert.Equal(t, env == "production", ck.Secure)
			assert.Len(t, ck.Value, 96)

			var data struct {
				AccessToken string `json:"accessToken"`
				Role        string `json:"role"`
			}
			require.NoError(t, json.Unmarshal(decode(t, rec).Data, &data))
			assert.NotEmpty(t, data.AccessToken)
			assert.Equal(t, model.RoleUser, data.Role)
			assert.NotContains(t, rec.Body.String(), ck.Value, "refresh token only travels in the cookie")
		})
	}
}

func TestLoginWithWrongPassword(t *testing.T) {
	s := newTestServer("test")
	hash, err := utils.HashPassword("correct-horse", bcrypt.MinCost)
	require.NoError(t, err)
	s.users.On("GetByEmail", mock.Anything, "asha@example.com").
		Return(&model.User{ID: 5, PasswordHash: hash, Role: model.RoleUser, IsActive: true, IsVerified: true}, nil)

	rec := s.do(http.MethodPost, "/api/auth/login", `{"email":"asha@example.com","password":"battery-staple"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	b := decode(t, rec)
	assert.False(t, b.Success)
	assert.Equal(t, "Invalid email or password", b.Message)
	s.tokens.AssertNotCalled(t, "StoreRefresh", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTokenErrors(t *testing.T) {
	s := newTestServer("test")

	rec := s.do(http.MethodGet, "/api/users/me", "", bearer(t, 1, model.RoleUser, -1))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token expired, please refresh", decode(t, rec).Message)
	assert.Equal(t, `Bearer error="invalid_token", error_description="token expired"`, rec.Header().Get("WWW-Authenticate"))

	rec = s.do(http.MethodGet, "/api/users/me", "", map[string]string{"Authorization": "Bearer not.a.token"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid token, please log in again", decode(t, rec).Message)
	assert.Empty(t, rec.Header().Get("WWW-Authenticate"))

	rec = s.do(http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authorization token missing", decode(t, rec).Message)
}

func TestErrorEnvelopeStackOnlyInDevelopment(t *testing.T) {
	dev := newTestServer("development")
	b := decode(t, dev.do(http.MethodGet, "/api/users/me", "", nil))
	assert.False(t, b.Success)
	assert.NotEmpty(t, b.Stack)

	prod := newTestServer("production")
	rec := prod.do(http.MethodGet, "/api/users/me", "", nil)
	assert.NotContains(t, rec.Body.String(), `"stack"`)
}

func TestValidationErrorsNameFields(t *testing.T) {
	s := newTestServer("test")
	rec := s.do(http.MethodPost, "/api/auth/login", `{"email":"not-an-email"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	b := decode(t, rec)
	assert.Contains(t, b.Message, "email")
	assert.Contains(t, b.Message, "password")

	rec = s.do(http.MethodPost, "/api/auth/login", `{"email":`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, decode(t, rec).Success)
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer("test")
	rec := s.do(http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, decode(t, rec).Success)
}

func TestRoleGate(t *testing.T) {
	s := newTestServer("test")
	rec := s.do(http.MethodGet, "/api/admin/users", "", bearer(t, 2, model.RoleUser, 15))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, decode(t, rec).Success)
}
