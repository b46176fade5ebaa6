package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/admin-console/pkg/middleware/requestid"
)

// MutationAppliedKey is set by a handler once the backend accepted the
// mutation, whatever status the response ends up with.
const MutationAppliedKey = "consoleMutationApplied"

// MarkMutationApplied flags the request for the audit log.
func MarkMutationApplied(c *gin.Context) {
	c.Set(MutationAppliedKey, true)
}

// Audit records account mutations the backend accepted. A mutation whose
// refetch failed afterwards is still recorded with the failing status.
func Audit(log *zap.Logger, action string) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("audit")
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if !c.GetBool(MutationAppliedKey) {
			return
		}

		fields := []zap.Field{
			zap.String("action", action),
			zap.String("path", c.FullPath()),
			zap.String("method", c.Request.Method),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
			zap.String("ip", c.ClientIP()),
			zap.String("user_agent", c.GetHeader("User-Agent")),
			zap.String("request_id", requestid.Value(c)),
		}
		if id := c.Param("id"); id != "" {
			fields = append(fields, zap.String("resource_id", id))
		}
		if session := SessionFromContext(c); session != nil {
			fields = append(fields, zap.String("session_id", session.ID), zap.Int64("actor_id", session.UserID()))
		}
		log.Info("account mutation", fields...)
	}
}
