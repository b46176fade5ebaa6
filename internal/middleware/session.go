package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/admin-console/internal/models"
	"github.com/noah-isme/admin-console/pkg/config"
	"github.com/noah-isme/admin-console/pkg/logger"
	"github.com/noah-isme/admin-console/pkg/middleware/cors"
)

// ContextSessionKey stores the restored console session in the gin context.
const ContextSessionKey = "consoleSession"

type sessionRestorer interface {
	Restore(ctx context.Context, sessionID string) (*models.Session, error)
}

// Session resolves the console session id from the cookie or header, issuing a
// new id when none is present, and restores the session for downstream handlers.
func Session(restorer sessionRestorer, cfg config.SessionConfig, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		sessionID := sessionIDFromRequest(c, cfg.CookieName)
		if sessionID == "" {
			sessionID = uuid.NewString()
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cfg.CookieName, sessionID, int(cfg.TTL.Seconds()), "/", "", cfg.CookieSecure, true)
		c.Header(cors.SessionHeader, sessionID)
		c.Set(logger.SessionIDKey, sessionID)

		session, err := restorer.Restore(c.Request.Context(), sessionID)
		if err != nil {
			log.Warn("session restore failed", zap.String("session_id", sessionID), zap.Error(err))
		}
		if session == nil {
			session = models.AnonymousSession(sessionID)
		}
		c.Set(ContextSessionKey, session)
		c.Next()
	}
}

func sessionIDFromRequest(c *gin.Context, cookieName string) string {
	candidates := []string{c.GetHeader(cors.SessionHeader)}
	if cookie, err := c.Cookie(cookieName); err == nil {
		candidates = append(candidates, cookie)
	}
	for _, candidate := range candidates {
		if _, err := uuid.Parse(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// SessionFromContext returns the console session placed by the Session middleware.
func SessionFromContext(c *gin.Context) *models.Session {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil
	}
	session, ok := value.(*models.Session)
	if !ok {
		return nil
	}
	return session
}
