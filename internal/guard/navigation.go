package guard

import "github.com/noah-isme/admin-console/internal/models"

// Panel is a role-scoped area of the console.
type Panel struct {
	Name      string          `json:"name"`
	Path      string          `json:"path"`
	Dashboard string          `json:"dashboard"`
	Role      models.RoleName `json:"role"`
}

var (
	AdminPanel  = Panel{Name: "admin", Path: "/admin", Dashboard: "/admin/dashboard", Role: models.RoleAdmin}
	UserPanel   = Panel{Name: "user", Path: "/user", Dashboard: "/user/dashboard", Role: models.RoleNormal}
	WorkerPanel = Panel{Name: "worker", Path: "/worker", Dashboard: "/worker/dashboard", Role: models.RoleWorker}
)

var panels = []Panel{AdminPanel, UserPanel, WorkerPanel}

// landingOrder ranks panels for the post-login redirect.
var landingOrder = []Panel{AdminPanel, WorkerPanel, UserPanel}

// Panels lists the panels the session may enter, in display order.
func Panels(session *models.Session) []Panel {
	out := make([]Panel, 0, len(panels))
	for _, p := range panels {
		if session.HasRole(p.Role) {
			out = append(out, p)
		}
	}
	return out
}

// LandingRoute picks the dashboard a freshly logged-in user is sent to.
func LandingRoute(session *models.Session) string {
	for _, p := range landingOrder {
		if session.HasRole(p.Role) {
			return p.Dashboard
		}
	}
	return RouteHome
}
