package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/admin-console/internal/middleware"
	"github.com/noah-isme/admin-console/internal/models"
	"github.com/noah-isme/admin-console/internal/service"
)

// Routes bundles the handlers mounted under the API prefix.
type Routes struct {
	Auth       *AuthHandler
	Profile    *ProfileHandler
	Navigation *NavigationHandler
	Metrics    *MetricsHandler
	Users      *ScreenHandler
	Workers    *ScreenHandler

	// Session restores the console session before any handler runs.
	Session gin.HandlerFunc
	// AuditLog receives one entry per account mutation the backend accepted.
	AuditLog *zap.Logger
}

// Register mounts the console API on the given router group.
func (r *Routes) Register(api *gin.RouterGroup) {
	api.Use(r.Session)

	auth := api.Group("/auth")
	auth.POST("/login", r.Auth.Login)
	auth.POST("/logout", r.Auth.Logout)
	auth.GET("/session", r.Auth.Session)
	auth.POST("/register", r.Auth.Register)
	auth.GET("/verify", r.Auth.Verify)
	auth.POST("/forgot-password", r.Auth.ForgotPassword)
	auth.GET("/reset-link", r.Auth.CheckResetLink)
	auth.POST("/reset-password", r.Auth.ResetPassword)

	api.GET("/navigation", r.Navigation.Panels)
	api.GET("/navigation/check", r.Navigation.Check)
	api.GET("/chat/access", middleware.RequireChat(), r.Navigation.Chat)

	secured := api.Group("")
	secured.Use(middleware.RequireAuth())
	secured.GET("/profile", r.Profile.Get)
	secured.POST("/profile/image", r.Profile.UploadImage)
	secured.GET("/users/:id/image", r.Profile.Image)

	admin := api.Group("/admin")
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	r.registerScreen(admin.Group("/users"), r.Users)
	if r.Metrics != nil {
		admin.GET("/system/metrics", r.Metrics.Snapshot)
	}

	user := api.Group("/user")
	user.Use(middleware.RequireRole(models.RoleNormal))
	r.registerScreen(user.Group("/workers"), r.Workers)
}

func (r *Routes) registerScreen(g *gin.RouterGroup, h *ScreenHandler) {
	g.GET("", h.List)
	g.POST("/reload", h.Reload)
	g.PUT("/tab", h.SetTab)
	g.PUT("/keyword", h.SetKeyword)
	g.PUT("/page-size", h.SetPageSize)
	g.PUT("/page", h.GoToPage)
	g.POST("/next", h.Next)
	g.POST("/previous", h.Previous)

	g.PATCH("/:id/status", middleware.Audit(r.AuditLog, "toggle-status"), h.ToggleStatus)
	g.DELETE("/:id", middleware.Audit(r.AuditLog, "soft-delete"), h.SoftDelete)
	g.PATCH("/:id/restore", middleware.Audit(r.AuditLog, "restore"), h.Restore)
	g.DELETE("/:id/permanent", middleware.Audit(r.AuditLog, "permanent-delete"), h.PermanentDelete)

	g.POST("/:id/roles", h.OpenRoles)
	g.GET("/roles", h.Roles)
	g.POST("/roles/toggle", h.ToggleRole)
	g.POST("/roles/submit", middleware.Audit(r.AuditLog, "replace-roles"), h.SubmitRoles)
	g.DELETE("/roles", h.CloseRoles)
}

// NewRoutes builds the handler set from the console services.
func NewRoutes(sessions *service.SessionService, accounts *service.AccountService, workspaces *service.WorkspaceRegistry, metrics *service.MetricsService, session gin.HandlerFunc, logger *zap.Logger) *Routes {
	return &Routes{
		Auth:       NewAuthHandler(sessions, accounts),
		Profile:    NewProfileHandler(accounts, sessions, logger),
		Navigation: NewNavigationHandler(),
		Metrics:    NewMetricsHandler(metrics),
		Users:      NewScreenHandler(workspaces, service.ScreenUsers, sessions, logger),
		Workers:    NewScreenHandler(workspaces, service.ScreenWorkers, sessions, logger),
		Session:    session,
		AuditLog:   logger,
	}
}
