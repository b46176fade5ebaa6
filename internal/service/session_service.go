package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/admin-console/internal/backend"
	"github.com/noah-isme/admin-console/internal/guard"
	"github.com/noah-isme/admin-console/internal/models"
	"github.com/noah-isme/admin-console/internal/repository"
	appErrors "github.com/noah-isme/admin-console/pkg/errors"
)

// Session lifecycle events reported to metrics.
const (
	EventLogin    = "login"
	EventLogout   = "logout"
	EventRestore  = "restore"
	EventExpired  = "expired"
	EventTeardown = "teardown"
)

type sessionBackend interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	CurrentUser(ctx context.Context, token string) (*models.Account, error)
}

type sessionEventRecorder interface {
	RecordSessionEvent(event string)
}

type workspaceEvictor interface {
	Evict(sessionID string)
}

// LoginResult is what a successful login hands back to the console.
type LoginResult struct {
	Session *models.Session `json:"session"`
	Landing string          `json:"landing"`
}

// SessionService owns the console session: restore, login, logout and teardown.
type SessionService struct {
	repo       repository.SessionRepository
	backend    sessionBackend
	validator  *validator.Validate
	logger     *zap.Logger
	events     sessionEventRecorder
	workspaces workspaceEvictor
	now        func() time.Time
}

// NewSessionService constructs a SessionService instance.
func NewSessionService(repo repository.SessionRepository, client sessionBackend, workspaces workspaceEvictor, events sessionEventRecorder, validate *validator.Validate, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &SessionService{
		repo:       repo,
		backend:    client,
		validator:  validate,
		logger:     logger,
		events:     events,
		workspaces: workspaces,
		now:        time.Now,
	}
}

// Restore rebuilds the session from the store. A stored token and user authenticate
// without a network call; a token alone fetches the current user; an expired token
// or a backend 401 clears the session.
func (s *SessionService) Restore(ctx context.Context, sessionID string) (*models.Session, error) {
	anonymous := models.AnonymousSession(sessionID)

	var token string
	if err := s.repo.Get(ctx, sessionID, repository.KeyToken, &token); err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return anonymous, nil
		}
		return anonymous, err
	}
	if token == "" {
		return anonymous, nil
	}

	if s.tokenExpired(token) {
		s.logger.Info("stored token expired", zap.String("session_id", sessionID))
		s.record(EventExpired)
		return anonymous, s.clear(ctx, sessionID)
	}

	var user models.Account
	err := s.repo.Get(ctx, sessionID, repository.KeyUser, &user)
	switch {
	case err == nil:
		return &models.Session{ID: sessionID, IsAuthenticated: true, Token: token, User: &user}, nil
	case !errors.Is(err, appErrors.ErrCacheMiss):
		return anonymous, err
	}

	current, err := s.backend.CurrentUser(ctx, token)
	if err != nil {
		if backend.IsUnauthorized(err) {
			return anonymous, s.Teardown(ctx, sessionID)
		}
		return anonymous, err
	}
	if err := s.repo.Set(ctx, sessionID, repository.KeyUser, current); err != nil {
		s.logger.Warn("failed to persist restored user", zap.String("session_id", sessionID), zap.Error(err))
	}
	s.record(EventRestore)
	return &models.Session{ID: sessionID, IsAuthenticated: true, Token: token, User: current}, nil
}

// Login authenticates against the backend and persists the token and user.
func (s *SessionService) Login(ctx context.Context, sessionID string, req models.LoginRequest) (*LoginResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	resp, err := s.backend.Login(ctx, req)
	if err != nil {
		if backend.IsUnauthorized(err) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, appErrors.MessageOr(err, appErrors.ErrInvalidCredentials.Message))
		}
		return nil, err
	}

	user := resp.User
	if user == nil {
		user, err = s.backend.CurrentUser(ctx, resp.Token)
		if err != nil {
			return nil, err
		}
	}

	if s.workspaces != nil {
		s.workspaces.Evict(sessionID)
	}
	if err := s.repo.Set(ctx, sessionID, repository.KeyToken, resp.Token); err != nil {
		return nil, err
	}
	if err := s.repo.Set(ctx, sessionID, repository.KeyUser, user); err != nil {
		return nil, err
	}

	session := &models.Session{ID: sessionID, IsAuthenticated: true, Token: resp.Token, User: user}
	s.record(EventLogin)
	s.logger.Info("console login", zap.String("session_id", sessionID), zap.Int64("user_id", user.ID))
	return &LoginResult{Session: session, Landing: guard.LandingRoute(session)}, nil
}

// UpdateUser replaces the cached user of an authenticated session.
func (s *SessionService) UpdateUser(ctx context.Context, session *models.Session, user *models.Account) error {
	if session == nil || !session.IsAuthenticated {
		return appErrors.ErrUnauthorized
	}
	if err := s.repo.Set(ctx, session.ID, repository.KeyUser, user); err != nil {
		return err
	}
	session.User = user
	return nil
}

// Logout ends the session on explicit user request.
func (s *SessionService) Logout(ctx context.Context, sessionID string) error {
	s.record(EventLogout)
	return s.clear(ctx, sessionID)
}

// Teardown ends the session after the backend rejected its token.
func (s *SessionService) Teardown(ctx context.Context, sessionID string) error {
	s.logger.Info("session teardown", zap.String("session_id", sessionID))
	s.record(EventTeardown)
	return s.clear(ctx, sessionID)
}

func (s *SessionService) clear(ctx context.Context, sessionID string) error {
	if s.workspaces != nil {
		s.workspaces.Evict(sessionID)
	}
	return s.repo.Delete(ctx, sessionID, repository.KeyToken, repository.KeyUser)
}

// tokenExpired inspects the exp claim without verifying the signature; the console
// does not hold the backend signing key. Opaque tokens never expire here.
func (s *SessionService) tokenExpired(token string) bool {
	claims := &models.TokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.Time.After(s.now())
}

func (s *SessionService) record(event string) {
	if s.events != nil {
		s.events.RecordSessionEvent(event)
	}
}
