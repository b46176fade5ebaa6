package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/admin-console/internal/models"
	"github.com/noah-isme/admin-console/internal/service"
	appErrors "github.com/noah-isme/admin-console/pkg/errors"
)

type stubSessionService struct {
	loginErr  error
	logins    []models.LoginRequest
	loggedOut []string
}

func (s *stubSessionService) Login(ctx context.Context, sessionID string, req models.LoginRequest) (*service.LoginResult, error) {
	s.logins = append(s.logins, req)
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &service.LoginResult{
		Session: &models.Session{
			ID:              sessionID,
			IsAuthenticated: true,
			Token:           "tok",
			User: &models.Account{
				ID:            7,
				Roles:         []models.Role{{ID: 5, Name: models.RoleWorker}},
				AccountStatus: &models.AccountStatus{IsActive: true},
			},
		},
		Landing: "/worker/dashboard",
	}, nil
}

func (s *stubSessionService) Logout(ctx context.Context, sessionID string) error {
	s.loggedOut = append(s.loggedOut, sessionID)
	return nil
}

type stubAccountService struct {
	registered []models.RegisterRequest
	linkErr    error
	resetErr   error
}

func (s *stubAccountService) Register(ctx context.Context, req models.RegisterRequest) (*models.BackendMessage, error) {
	s.registered = append(s.registered, req)
	return &models.BackendMessage{Message: "Registered"}, nil
}

func (s *stubAccountService) Verify(ctx context.Context, req models.VerifyAccountRequest) (*models.BackendMessage, error) {
	return &models.BackendMessage{Status: "SUCCESS"}, nil
}

func (s *stubAccountService) ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) error {
	return nil
}

func (s *stubAccountService) CheckResetLink(ctx context.Context, req models.ResetLinkRequest) error {
	return s.linkErr
}

func (s *stubAccountService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	return s.resetErr
}

func newAuthRouter(sessions *stubSessionService, accounts *stubAccountService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(sessions, accounts)
	r := gin.New()
	r.Use(testSession)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/logout", h.Logout)
	r.GET("/auth/session", h.Session)
	r.POST("/auth/register", h.Register)
	r.GET("/auth/verify", h.Verify)
	r.GET("/auth/reset-link", h.CheckResetLink)
	r.POST("/auth/reset-password", h.ResetPassword)
	return r
}

func TestAuthHandlerLogin(t *testing.T) {
	sessions := &stubSessionService{}
	r := newAuthRouter(sessions, &stubAccountService{})

	w := performRequest(r, http.MethodPost, "/auth/login", payload{"usernameOrEmail": "wk", "password": "secret"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "/worker/dashboard", env.Meta["redirect"])

	var view SessionView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.True(t, view.IsAuthenticated)
	require.Len(t, view.Panels, 1)
	assert.Equal(t, "worker", view.Panels[0].Name)
	assert.Equal(t, []models.LoginRequest{{UsernameOrEmail: "wk", Password: "secret"}}, sessions.logins)
}

func TestAuthHandlerLoginRejected(t *testing.T) {
	sessions := &stubSessionService{loginErr: appErrors.Clone(appErrors.ErrInvalidCredentials, "Bad credentials")}
	r := newAuthRouter(sessions, &stubAccountService{})

	w := performRequest(r, http.MethodPost, "/auth/login", payload{"usernameOrEmail": "wk", "password": "nope"}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "Bad credentials", env.Error.Message)

	w = performRequest(r, http.MethodPost, "/auth/login", nil, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandlerSessionAndLogout(t *testing.T) {
	sessions := &stubSessionService{}
	r := newAuthRouter(sessions, &stubAccountService{})

	w := performRequest(r, http.MethodGet, "/auth/session", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var view SessionView
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &view))
	assert.False(t, view.IsAuthenticated)
	assert.Empty(t, view.Panels)
	assert.Equal(t, "/", view.Landing)

	w = performRequest(r, http.MethodPost, "/auth/logout", nil, models.RoleAdmin)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"sid-1"}, sessions.loggedOut)
}

func TestAuthHandlerAccountFlows(t *testing.T) {
	accounts := &stubAccountService{
		linkErr: appErrors.Clone(appErrors.ErrValidation, "Reset link is invalid or has expired"),
	}
	r := newAuthRouter(&stubSessionService{}, accounts)

	w := performRequest(r, http.MethodPost, "/auth/register", payload{"name": "N", "username": "nn", "email": "n@x.io", "password": "abc12345!"}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, accounts.registered, 1)

	w = performRequest(r, http.MethodGet, "/auth/verify?uid=1&code=xyz", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = performRequest(r, http.MethodGet, "/auth/reset-link?uid=1&token=t", nil, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Reset link is invalid or has expired", decodeEnvelope(t, w).Error.Message)

	w = performRequest(r, http.MethodPost, "/auth/reset-password", payload{"uid": "1", "token": "t", "newPassword": "abc12345!", "confirmPassword": "abc12345!"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/login", decodeEnvelope(t, w).Meta["redirect"])
}
