// Package guard decides which console routes a session may reach.
package guard

import "github.com/noah-isme/admin-console/internal/models"

// Console destinations used by the guard.
const (
	RouteLogin        = "/login"
	RouteUnauthorized = "/unauthorized"
	RouteHome         = "/"
)

// Outcome is the result of a guard decision.
type Outcome int

const (
	Allow Outcome = iota
	RedirectLogin
	RedirectUnauthorized
	RedirectHome
)

// Decision tells the caller whether to render the subtree and where to send the user otherwise.
type Decision struct {
	Outcome  Outcome
	Redirect string
}

// Allowed reports whether the protected subtree may render.
func (d Decision) Allowed() bool {
	return d.Outcome == Allow
}

// Check applies the role requirement to a session. It performs no I/O.
// Role membership is a set test, so a user holding several roles passes several guards.
func Check(session *models.Session, required models.RoleName) Decision {
	if session == nil || !session.IsAuthenticated {
		return Decision{Outcome: RedirectLogin, Redirect: RouteLogin}
	}
	if !session.HasRole(required) {
		return Decision{Outcome: RedirectUnauthorized, Redirect: RouteUnauthorized}
	}
	return Decision{Outcome: Allow}
}

// chatRoles may open the chat screen.
var chatRoles = []models.RoleName{models.RoleNormal, models.RoleAdmin, models.RoleWorker}

// CheckChat guards the chat screen: inactive accounts are sent back to login and
// accounts without a console role go home.
func CheckChat(session *models.Session) Decision {
	if session == nil || !session.IsAuthenticated || session.User == nil {
		return Decision{Outcome: RedirectLogin, Redirect: RouteLogin}
	}
	if !session.User.Active() {
		return Decision{Outcome: RedirectLogin, Redirect: RouteLogin}
	}
	if !session.User.HasAnyRole(chatRoles...) {
		return Decision{Outcome: RedirectHome, Redirect: RouteHome}
	}
	return Decision{Outcome: Allow}
}
