package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/admin-console/internal/models"
)

func sessionWith(active bool, roles ...models.RoleName) *models.Session {
	user := &models.Account{ID: 7, AccountStatus: &models.AccountStatus{IsActive: active}}
	for i, r := range roles {
		user.Roles = append(user.Roles, models.Role{ID: int64(i + 1), Name: r})
	}
	return &models.Session{ID: "s1", IsAuthenticated: true, Token: "t", User: user}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name     string
		session  *models.Session
		required models.RoleName
		outcome  Outcome
		redirect string
	}{
		{"nil session", nil, models.RoleAdmin, RedirectLogin, RouteLogin},
		{"anonymous", models.AnonymousSession("s1"), models.RoleAdmin, RedirectLogin, RouteLogin},
		{"worker on admin route", sessionWith(true, models.RoleWorker), models.RoleAdmin, RedirectUnauthorized, RouteUnauthorized},
		{"admin and worker on worker route", sessionWith(true, models.RoleAdmin, models.RoleWorker), models.RoleWorker, Allow, ""},
		{"admin and worker on admin route", sessionWith(true, models.RoleAdmin, models.RoleWorker), models.RoleAdmin, Allow, ""},
		{"normal on user route", sessionWith(true, models.RoleNormal), models.RoleNormal, Allow, ""},
		{"authenticated without user", &models.Session{IsAuthenticated: true}, models.RoleNormal, RedirectUnauthorized, RouteUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			decision := Check(tc.session, tc.required)
			assert.Equal(t, tc.outcome, decision.Outcome)
			assert.Equal(t, tc.redirect, decision.Redirect)
			assert.Equal(t, tc.outcome == Allow, decision.Allowed())
		})
	}
}

func TestCheckChat(t *testing.T) {
	assert.Equal(t, RouteLogin, CheckChat(models.AnonymousSession("x")).Redirect)
	assert.Equal(t, RouteLogin, CheckChat(sessionWith(false, models.RoleNormal)).Redirect)
	assert.Equal(t, RouteHome, CheckChat(sessionWith(true, models.RoleSuperUser)).Redirect)
	assert.True(t, CheckChat(sessionWith(true, models.RoleWorker)).Allowed())

	noStatus := sessionWith(true, models.RoleNormal)
	noStatus.User.AccountStatus = nil
	assert.Equal(t, RedirectLogin, CheckChat(noStatus).Outcome)
}

func TestPanels(t *testing.T) {
	assert.Empty(t, Panels(models.AnonymousSession("x")))
	assert.Equal(t, []Panel{WorkerPanel}, Panels(sessionWith(true, models.RoleWorker)))
	assert.Equal(t, []Panel{AdminPanel, UserPanel, WorkerPanel},
		Panels(sessionWith(true, models.RoleWorker, models.RoleNormal, models.RoleAdmin)))
}

func TestLandingRoute(t *testing.T) {
	assert.Equal(t, "/admin/dashboard", LandingRoute(sessionWith(true, models.RoleNormal, models.RoleAdmin)))
	assert.Equal(t, "/worker/dashboard", LandingRoute(sessionWith(true, models.RoleNormal, models.RoleWorker)))
	assert.Equal(t, "/user/dashboard", LandingRoute(sessionWith(true, models.RoleNormal)))
	assert.Equal(t, "/", LandingRoute(sessionWith(true, models.RoleSuperUser)))
	assert.Equal(t, "/", LandingRoute(nil))
}
