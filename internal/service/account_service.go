package service

import (
	"context"
	"errors"
	"io"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/admin-console/internal/backend"
	"github.com/noah-isme/admin-console/internal/models"
	appErrors "github.com/noah-isme/admin-console/pkg/errors"
)

type accountBackend interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.BackendMessage, error)
	VerifyAccount(ctx context.Context, req models.VerifyAccountRequest) (*models.BackendMessage, error)
	SendResetEmail(ctx context.Context, email string) error
	VerifyResetLink(ctx context.Context, req models.ResetLinkRequest) error
	ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error
	CurrentUser(ctx context.Context, token string) (*models.Account, error)
	UploadImage(ctx context.Context, token, filename string, content io.Reader) (*models.ImageUploadResult, error)
	UserImage(ctx context.Context, token string, userID int64) (*backend.Image, error)
}

type sessionUserUpdater interface {
	UpdateUser(ctx context.Context, session *models.Session, user *models.Account) error
}

// AccountService wraps the public account flows and the profile screen.
type AccountService struct {
	backend   accountBackend
	sessions  sessionUserUpdater
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAccountService constructs an AccountService instance.
func NewAccountService(client accountBackend, sessions sessionUserUpdater, validate *validator.Validate, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &AccountService{backend: client, sessions: sessions, validator: validate, logger: logger}
}

// Register creates an account through the backend registration endpoint.
func (s *AccountService) Register(ctx context.Context, req models.RegisterRequest) (*models.BackendMessage, error) {
	if err := s.validate(req, "invalid registration payload"); err != nil {
		return nil, err
	}
	return s.backend.Register(ctx, req)
}

// Verify confirms an account from the emailed link.
func (s *AccountService) Verify(ctx context.Context, req models.VerifyAccountRequest) (*models.BackendMessage, error) {
	if err := s.validate(req, "invalid verification link"); err != nil {
		return nil, err
	}
	return s.backend.VerifyAccount(ctx, req)
}

// ForgotPassword requests a reset email.
func (s *AccountService) ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) error {
	if err := s.validate(req, "invalid email address"); err != nil {
		return err
	}
	return s.backend.SendResetEmail(ctx, req.Email)
}

// CheckResetLink reports whether a reset link may still be used.
func (s *AccountService) CheckResetLink(ctx context.Context, req models.ResetLinkRequest) error {
	if err := s.validate(req, "invalid reset link"); err != nil {
		return err
	}
	if err := s.backend.VerifyResetLink(ctx, req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.MessageOr(err, "Reset link is invalid or has expired"))
	}
	return nil
}

// ResetPassword validates the new password locally before sending it.
func (s *AccountService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	if err := s.validate(req, "invalid reset payload"); err != nil {
		return err
	}
	return s.backend.ResetPassword(ctx, req)
}

// Profile returns the user cached on the session.
func (s *AccountService) Profile(session *models.Session) (*models.Account, error) {
	if session == nil || !session.IsAuthenticated || session.User == nil {
		return nil, appErrors.ErrUnauthorized
	}
	return session.User, nil
}

// UploadImage stores a new profile image and refreshes the cached user.
func (s *AccountService) UploadImage(ctx context.Context, session *models.Session, filename string, content io.Reader) (*models.Account, error) {
	if session == nil || !session.IsAuthenticated {
		return nil, appErrors.ErrUnauthorized
	}

	result, err := s.backend.UploadImage(ctx, session.Token, filename, content)
	if err != nil {
		return nil, err
	}
	if result != nil && !result.Success && result.Message != "" {
		return nil, appErrors.Clone(appErrors.ErrBackendRejected, result.Message)
	}

	user, err := s.backend.CurrentUser(ctx, session.Token)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.UpdateUser(ctx, session, user); err != nil {
		s.logger.Warn("failed to cache refreshed user", zap.Int64("user_id", user.ID), zap.Error(err))
	}
	return user, nil
}

// Image fetches a profile image; users without one yield ErrNotFound.
func (s *AccountService) Image(ctx context.Context, session *models.Session, userID int64) (*backend.Image, error) {
	if session == nil || !session.IsAuthenticated {
		return nil, appErrors.ErrUnauthorized
	}
	img, err := s.backend.UserImage(ctx, session.Token, userID)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "image not found")
	}
	return img, nil
}

func (s *AccountService) validate(payload interface{}, fallback string) error {
	err := s.validator.Struct(payload)
	if err == nil {
		return nil
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validationMessage(err, fallback))
}

// validationMessage turns the first failed rule into the message shown on the form.
func validationMessage(err error, fallback string) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fallback
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "eqfield":
		return "Passwords do not match"
	case "strongpassword":
		return "Password must be at least 8 characters and contain a number and a special character"
	case "email":
		return "Please enter a valid email address"
	case "required":
		return fe.Field() + " is required"
	}
	return fallback
}
