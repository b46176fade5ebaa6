package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/admin-console/internal/guard"
	"github.com/noah-isme/admin-console/internal/models"
	appErrors "github.com/noah-isme/admin-console/pkg/errors"
	"github.com/noah-isme/admin-console/pkg/response"
)

// RequireRole guards a route subtree: anonymous sessions get 401 with a redirect
// to the login page, sessions lacking the role get 403 with a redirect to the
// unauthorized page.
func RequireRole(role models.RoleName) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := guard.Check(SessionFromContext(c), role)
		if decision.Allowed() {
			c.Next()
			return
		}
		abortWith(c, decision, fmt.Sprintf("%s is required", role))
	}
}

// RequireAuth lets any authenticated session through.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := SessionFromContext(c)
		if session == nil || !session.IsAuthenticated {
			abortWith(c, guard.Decision{Outcome: guard.RedirectLogin, Redirect: guard.RouteLogin}, "")
			return
		}
		c.Next()
	}
}

// RequireChat applies the chat screen rules. A signed-in but deactivated
// account is told so on its way back to login.
func RequireChat() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := SessionFromContext(c)
		decision := guard.CheckChat(session)
		if decision.Allowed() {
			c.Next()
			return
		}
		if decision.Outcome == guard.RedirectLogin && session != nil && session.IsAuthenticated && session.User != nil && !session.User.Active() {
			response.Redirect(c, appErrors.ErrInactiveAccount, decision.Redirect)
			c.Abort()
			return
		}
		abortWith(c, decision, "chat is not available for this account")
	}
}

func abortWith(c *gin.Context, decision guard.Decision, forbidden string) {
	switch decision.Outcome {
	case guard.RedirectLogin:
		response.Redirect(c, appErrors.Clone(appErrors.ErrUnauthorized, "login required"), decision.Redirect)
	default:
		response.Redirect(c, appErrors.Clone(appErrors.ErrForbidden, forbidden), decision.Redirect)
	}
	c.Abort()
}
