package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/admin-console/internal/middleware"
	"github.com/noah-isme/admin-console/internal/models"
	"github.com/noah-isme/admin-console/internal/pagination"
	"github.com/noah-isme/admin-console/internal/roles"
	"github.com/noah-isme/admin-console/internal/service"
	appErrors "github.com/noah-isme/admin-console/pkg/errors"
	"github.com/noah-isme/admin-console/pkg/response"
)

type workspaceProvider interface {
	Get(session *models.Session) *service.Workspace
}

type tabRequest struct {
	Tab models.Tab `json:"tab"`
}

type keywordRequest struct {
	Keyword string `json:"keyword"`
}

type pageSizeRequest struct {
	PageSize int `json:"pageSize" binding:"required"`
}

type pageRequest struct {
	Page int `json:"page" binding:"required"`
}

type roleToggleRequest struct {
	RoleID int64 `json:"roleId" binding:"required"`
}

// ScreenHandler serves one account list screen and its role editor.
type ScreenHandler struct {
	workspaces workspaceProvider
	screen     service.Screen
	sessions   sessionTerminator
	logger     *zap.Logger
}

// NewScreenHandler constructs a handler for the given screen.
func NewScreenHandler(workspaces workspaceProvider, screen service.Screen, sessions sessionTerminator, logger *zap.Logger) *ScreenHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScreenHandler{workspaces: workspaces, screen: screen, sessions: sessions, logger: logger}
}

func (h *ScreenHandler) current(c *gin.Context) *service.AccountScreen {
	session := sessionFromContext(c)
	return h.workspaces.Get(session).Screen(h.screen, session)
}

func (h *ScreenHandler) respond(c *gin.Context, view pagination.View[models.Account], err error) {
	if err != nil && tearDownIfRejected(c, h.sessions, h.logger, err) {
		return
	}
	response.Partial(c, view, &view.Pagination, err)
}

// List godoc
// @Summary Open a list screen
// @Description Returns the current view, fetching the first page on first open
// @Tags Screens
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/users [get]
// @Router /user/workers [get]
func (h *ScreenHandler) List(c *gin.Context) {
	view, err := h.current(c).Controller.Open(c.Request.Context())
	h.respond(c, view, err)
}

// Reload godoc
// @Summary Refetch keeping tab, keyword, page and size
// @Tags Screens
// @Router /admin/users/reload [post]
func (h *ScreenHandler) Reload(c *gin.Context) {
	view, err := h.current(c).Controller.Reload(c.Request.Context())
	h.respond(c, view, err)
}

// SetTab godoc
// @Summary Switch tab (all, active, deleted, expired)
// @Tags Screens
// @Accept json
// @Router /admin/users/tab [put]
func (h *ScreenHandler) SetTab(c *gin.Context) {
	var req tabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid tab"))
		return
	}
	view, err := h.current(c).Controller.SetTab(c.Request.Context(), req.Tab)
	h.respond(c, view, err)
}

// SetKeyword godoc
// @Summary Change the search keyword
// @Tags Screens
// @Accept json
// @Router /admin/users/keyword [put]
func (h *ScreenHandler) SetKeyword(c *gin.Context) {
	var req keywordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid keyword"))
		return
	}
	view, err := h.current(c).Controller.SetKeyword(c.Request.Context(), req.Keyword)
	h.respond(c, view, err)
}

// SetPageSize godoc
// @Summary Change the page size
// @Tags Screens
// @Accept json
// @Router /admin/users/page-size [put]
func (h *ScreenHandler) SetPageSize(c *gin.Context) {
	var req pageSizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid page size"))
		return
	}
	view, err := h.current(c).Controller.SetPageSize(c.Request.Context(), req.PageSize)
	h.respond(c, view, err)
}

// GoToPage godoc
// @Summary Navigate to a page
// @Tags Screens
// @Accept json
// @Router /admin/users/page [put]
func (h *ScreenHandler) GoToPage(c *gin.Context) {
	var req pageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid page"))
		return
	}
	view, err := h.current(c).Controller.GoToPage(c.Request.Context(), req.Page)
	h.respond(c, view, err)
}

// Next godoc
// @Summary Next page
// @Tags Screens
// @Router /admin/users/next [post]
func (h *ScreenHandler) Next(c *gin.Context) {
	view, err := h.current(c).Controller.Next(c.Request.Context())
	h.respond(c, view, err)
}

// Previous godoc
// @Summary Previous page
// @Tags Screens
// @Router /admin/users/previous [post]
func (h *ScreenHandler) Previous(c *gin.Context) {
	view, err := h.current(c).Controller.Previous(c.Request.Context())
	h.respond(c, view, err)
}

// ToggleStatus godoc
// @Summary Activate or deactivate a record
// @Tags Screens
// @Param id path int true "Record id"
// @Router /admin/users/{id}/status [patch]
func (h *ScreenHandler) ToggleStatus(c *gin.Context) {
	h.mutate(c, (*pagination.Controller[models.Account]).ToggleStatus)
}

// SoftDelete godoc
// @Summary Soft delete a record
// @Tags Screens
// @Param id path int true "Record id"
// @Router /admin/users/{id} [delete]
func (h *ScreenHandler) SoftDelete(c *gin.Context) {
	h.mutate(c, (*pagination.Controller[models.Account]).SoftDelete)
}

// Restore godoc
// @Summary Restore a soft-deleted record
// @Tags Screens
// @Param id path int true "Record id"
// @Router /admin/users/{id}/restore [patch]
func (h *ScreenHandler) Restore(c *gin.Context) {
	h.mutate(c, (*pagination.Controller[models.Account]).Restore)
}

// PermanentDelete godoc
// @Summary Permanently delete a soft-deleted record
// @Tags Screens
// @Param id path int true "Record id"
// @Router /admin/users/{id}/permanent [delete]
func (h *ScreenHandler) PermanentDelete(c *gin.Context) {
	h.mutate(c, (*pagination.Controller[models.Account]).PermanentDelete)
}

type mutation func(*pagination.Controller[models.Account], context.Context, int64) (pagination.View[models.Account], error)

func (h *ScreenHandler) mutate(c *gin.Context, op mutation) {
	id, err := parseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	view, err := op(h.current(c).Controller, c.Request.Context(), id)
	if pagination.Applied(err) {
		middleware.MarkMutationApplied(c)
	}
	h.respond(c, view, err)
}

func (h *ScreenHandler) respondEditor(c *gin.Context, state roles.State, err error) {
	if err != nil {
		if tearDownIfRejected(c, h.sessions, h.logger, err) {
			return
		}
		response.Partial(c, state, nil, err)
		return
	}
	response.JSON(c, http.StatusOK, state, nil)
}

// OpenRoles godoc
// @Summary Open the role editor for a record on the current page
// @Tags Roles
// @Param id path int true "Record id"
// @Router /admin/users/{id}/roles [post]
func (h *ScreenHandler) OpenRoles(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	screen := h.current(c)
	if !pagination.ActionAllowed(screen.Controller.View().Tab, models.ActionEditRoles) {
		response.Error(c, appErrors.Clone(appErrors.ErrActionNotAvailable, "edit-roles is not available on this tab"))
		return
	}
	record, ok := screen.Controller.Record(id)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "record is not on the current page"))
		return
	}
	state, err := screen.Roles.Open(c.Request.Context(), record)
	h.respondEditor(c, state, err)
}

// Roles godoc
// @Summary Current role editor state
// @Tags Roles
// @Router /admin/users/roles [get]
func (h *ScreenHandler) Roles(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.current(c).Roles.State(), nil)
}

// ToggleRole godoc
// @Summary Toggle a role in the editor selection
// @Tags Roles
// @Accept json
// @Router /admin/users/roles/toggle [post]
func (h *ScreenHandler) ToggleRole(c *gin.Context) {
	var req roleToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid role"))
		return
	}
	state, err := h.current(c).Roles.Toggle(req.RoleID)
	h.respondEditor(c, state, err)
}

// SubmitRoles godoc
// @Summary Replace the record's roles with the editor selection
// @Tags Roles
// @Router /admin/users/roles/submit [post]
func (h *ScreenHandler) SubmitRoles(c *gin.Context) {
	screen := h.current(c)
	state, err := screen.Roles.Submit(c.Request.Context())
	if !pagination.Applied(err) {
		h.respondEditor(c, state, err)
		return
	}
	middleware.MarkMutationApplied(c)
	if err != nil && tearDownIfRejected(c, h.sessions, h.logger, err) {
		return
	}
	view := screen.Controller.View()
	response.Partial(c, gin.H{"editor": state, "screen": view}, &view.Pagination, err)
}

// CloseRoles godoc
// @Summary Close the role editor
// @Tags Roles
// @Router /admin/users/roles [delete]
func (h *ScreenHandler) CloseRoles(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.current(c).Roles.Close(), nil)
}
