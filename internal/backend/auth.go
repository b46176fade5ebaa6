package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/noah-isme/admin-console/internal/models"
	appErrors "github.com/noah-isme/admin-console/pkg/errors"
)

// Login exchanges credentials for a backend token and the user profile.
// The backend may answer with the {data: {...}} envelope or a bare object.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	var out struct {
		Data  *models.LoginResponse `json:"data"`
		Token string                `json:"token"`
		User  *models.Account       `json:"user"`
	}
	if err := c.do(ctx, request{method: http.MethodPost, path: "/auth/login", body: req}, &out); err != nil {
		return nil, err
	}

	resp := out.Data
	if resp == nil {
		resp = &models.LoginResponse{Token: out.Token, User: out.User}
	}
	if resp.Token == "" {
		return nil, appErrors.Clone(appErrors.ErrBackendRejected, "login response carried no token")
	}
	return resp, nil
}

// CurrentUser loads the profile of the token owner.
func (c *Client) CurrentUser(ctx context.Context, token string) (*models.Account, error) {
	var out envelope[*models.Account]
	if err := c.do(ctx, request{method: http.MethodGet, path: "/users/current", token: token}, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "current user not found")
	}
	return out.Data, nil
}

// Register creates an account from the public registration form.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.BackendMessage, error) {
	var out models.BackendMessage
	if err := c.do(ctx, request{method: http.MethodPost, path: "/auth/register/admin", body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyAccount confirms an account from the emailed verification link.
func (c *Client) VerifyAccount(ctx context.Context, req models.VerifyAccountRequest) (*models.BackendMessage, error) {
	var out models.BackendMessage
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/v1/home/verify",
		query:  url.Values{"uid": []string{req.UID}, "code": []string{req.Code}},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SendResetEmail asks the backend to email a password reset link.
func (c *Client) SendResetEmail(ctx context.Context, email string) error {
	return c.do(ctx, request{
		method: http.MethodGet,
		path:   "/v1/home/send-email-reset",
		query:  url.Values{"email": []string{email}},
	}, nil)
}

// VerifyResetLink checks that a reset link is still valid.
func (c *Client) VerifyResetLink(ctx context.Context, req models.ResetLinkRequest) error {
	return c.do(ctx, request{
		method: http.MethodGet,
		path:   "/v1/home/verify-pswd-link",
		query:  url.Values{"uid": []string{req.UID}, "code": []string{req.Token}},
	}, nil)
}

// ResetPassword completes the reset flow.
func (c *Client) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	return c.do(ctx, request{method: http.MethodPost, path: "/v1/home/reset-password", body: req}, nil)
}
