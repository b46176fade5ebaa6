package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/admin-console/internal/backend"
	"github.com/noah-isme/admin-console/internal/guard"
	"github.com/noah-isme/admin-console/internal/middleware"
	"github.com/noah-isme/admin-console/internal/models"
	appErrors "github.com/noah-isme/admin-console/pkg/errors"
	"github.com/noah-isme/admin-console/pkg/response"
)

type sessionTerminator interface {
	Teardown(ctx context.Context, sessionID string) error
}

func sessionFromContext(c *gin.Context) *models.Session {
	return middleware.SessionFromContext(c)
}

// tearDownIfRejected ends the session when the backend answered 401 and tells
// the console to go to the login page. It reports whether it responded.
func tearDownIfRejected(c *gin.Context, sessions sessionTerminator, logger *zap.Logger, err error) bool {
	if !backend.IsUnauthorized(err) {
		return false
	}
	if session := sessionFromContext(c); session != nil && sessions != nil {
		if tdErr := sessions.Teardown(c.Request.Context(), session.ID); tdErr != nil {
			logger.Warn("session teardown failed", zap.String("session_id", session.ID), zap.Error(tdErr))
		}
	}
	response.Redirect(c, appErrors.Clone(appErrors.ErrUnauthorized, "session expired"), guard.RouteLogin)
	return true
}

func parseID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, name+" must be a positive integer")
	}
	return id, nil
}
