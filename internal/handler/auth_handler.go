package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/admin-console/internal/guard"
	"github.com/noah-isme/admin-console/internal/models"
	"github.com/noah-isme/admin-console/internal/service"
	appErrors "github.com/noah-isme/admin-console/pkg/errors"
	"github.com/noah-isme/admin-console/pkg/response"
)

type authSessionService interface {
	Login(ctx context.Context, sessionID string, req models.LoginRequest) (*service.LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
}

type authAccountService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.BackendMessage, error)
	Verify(ctx context.Context, req models.VerifyAccountRequest) (*models.BackendMessage, error)
	ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) error
	CheckResetLink(ctx context.Context, req models.ResetLinkRequest) error
	ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error
}

// SessionView is what the console learns about its session.
type SessionView struct {
	IsAuthenticated bool            `json:"isAuthenticated"`
	User            *models.Account `json:"user,omitempty"`
	Panels          []guard.Panel   `json:"panels"`
	Landing         string          `json:"landing"`
}

func newSessionView(session *models.Session) SessionView {
	view := SessionView{Panels: guard.Panels(session), Landing: guard.LandingRoute(session)}
	if session != nil && session.IsAuthenticated {
		view.IsAuthenticated = true
		view.User = session.User
	}
	return view
}

// AuthHandler wires HTTP endpoints to the session and account services.
type AuthHandler struct {
	sessions authSessionService
	accounts authAccountService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(sessions authSessionService, accounts authAccountService) *AuthHandler {
	return &AuthHandler{sessions: sessions, accounts: accounts}
}

// Login godoc
// @Summary Log in to the console
// @Description Exchanges credentials with the backend and binds the token to the console session
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}

	session := sessionFromContext(c)
	if session == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}

	res, err := h.sessions.Login(c.Request.Context(), session.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, newSessionView(res.Session), nil, map[string]interface{}{"redirect": res.Landing})
}

// Logout godoc
// @Summary Log out of the console
// @Tags Authentication
// @Success 204
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessionFromContext(c)
	if session == nil {
		response.NoContent(c)
		return
	}
	if err := h.sessions.Logout(c.Request.Context(), session.ID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Session godoc
// @Summary Current console session
// @Description Returns the restored session, reachable panels and landing route
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	response.JSON(c, http.StatusOK, newSessionView(sessionFromContext(c)), nil)
}

// Register godoc
// @Summary Register an account
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.RegisterRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration payload"))
		return
	}
	msg, err := h.accounts.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, msg)
}

// Verify godoc
// @Summary Verify an account from the emailed link
// @Tags Authentication
// @Produce json
// @Param uid query string true "User id"
// @Param code query string true "Verification code"
// @Success 200 {object} response.Envelope
// @Router /auth/verify [get]
func (h *AuthHandler) Verify(c *gin.Context) {
	var req models.VerifyAccountRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid verification link"))
		return
	}
	msg, err := h.accounts.Verify(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, msg, nil)
}

// ForgotPassword godoc
// @Summary Request a password reset email
// @Tags Authentication
// @Accept json
// @Param payload body models.ForgotPasswordRequest true "Email"
// @Success 202 {object} response.Envelope
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid email address"))
		return
	}
	if err := h.accounts.ForgotPassword(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"message": "Password reset link sent to your email"}, nil)
}

// CheckResetLink godoc
// @Summary Check a password reset link
// @Tags Authentication
// @Param uid query string true "User id"
// @Param token query string true "Reset token"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Router /auth/reset-link [get]
func (h *AuthHandler) CheckResetLink(c *gin.Context) {
	var req models.ResetLinkRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reset link"))
		return
	}
	if err := h.accounts.CheckResetLink(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ResetPassword godoc
// @Summary Reset a password
// @Tags Authentication
// @Accept json
// @Param payload body models.ResetPasswordRequest true "Reset payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reset payload"))
		return
	}
	if err := h.accounts.ResetPassword(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "Password has been reset"}, nil, map[string]interface{}{"redirect": guard.RouteLogin})
}
