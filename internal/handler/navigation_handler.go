package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/admin-console/internal/guard"
	"github.com/noah-isme/admin-console/internal/models"
	appErrors "github.com/noah-isme/admin-console/pkg/errors"
	"github.com/noah-isme/admin-console/pkg/response"
)

// NavigationHandler answers route checks for the console shell.
type NavigationHandler struct{}

// NewNavigationHandler constructs the handler.
func NewNavigationHandler() *NavigationHandler {
	return &NavigationHandler{}
}

// Panels godoc
// @Summary Panels reachable by the session
// @Tags Navigation
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /navigation [get]
func (h *NavigationHandler) Panels(c *gin.Context) {
	session := sessionFromContext(c)
	response.JSON(c, http.StatusOK, gin.H{
		"panels":  guard.Panels(session),
		"landing": guard.LandingRoute(session),
	}, nil)
}

// Check godoc
// @Summary Evaluate the access guard for a role
// @Description Lets the console decide whether to render a role-restricted subtree
// @Tags Navigation
// @Produce json
// @Param role query string true "Required role, e.g. ROLE_ADMIN"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /navigation/check [get]
func (h *NavigationHandler) Check(c *gin.Context) {
	role := c.Query("role")
	if role == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "role is required"))
		return
	}
	decision := guard.Check(sessionFromContext(c), models.RoleName(role))
	switch decision.Outcome {
	case guard.Allow:
		response.JSON(c, http.StatusOK, gin.H{"allowed": true}, nil)
	case guard.RedirectLogin:
		response.Redirect(c, appErrors.Clone(appErrors.ErrUnauthorized, "login required"), decision.Redirect)
	default:
		response.Redirect(c, appErrors.Clone(appErrors.ErrForbidden, role+" is required"), decision.Redirect)
	}
}

// Chat godoc
// @Summary Chat screen access
// @Tags Navigation
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /chat/access [get]
func (h *NavigationHandler) Chat(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{"allowed": true}, nil)
}
