package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/admin-console/internal/backend"
	"github.com/noah-isme/admin-console/internal/models"
	appErrors "github.com/noah-isme/admin-console/pkg/errors"
	"github.com/noah-isme/admin-console/pkg/response"
)

// maxImageSize bounds profile image uploads.
const maxImageSize = 5 << 20

type profileService interface {
	Profile(session *models.Session) (*models.Account, error)
	UploadImage(ctx context.Context, session *models.Session, filename string, content io.Reader) (*models.Account, error)
	Image(ctx context.Context, session *models.Session, userID int64) (*backend.Image, error)
}

// ProfileHandler serves the profile screen.
type ProfileHandler struct {
	service  profileService
	sessions sessionTerminator
	logger   *zap.Logger
}

// NewProfileHandler constructs the handler.
func NewProfileHandler(svc profileService, sessions sessionTerminator, logger *zap.Logger) *ProfileHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileHandler{service: svc, sessions: sessions, logger: logger}
}

// Get godoc
// @Summary Current user profile
// @Tags Profile
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /profile [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	user, err := h.service.Profile(sessionFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// UploadImage godoc
// @Summary Upload a profile image
// @Tags Profile
// @Accept mpfd
// @Produce json
// @Param userImage formData file true "Image"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /profile/image [post]
func (h *ProfileHandler) UploadImage(c *gin.Context) {
	header, err := c.FormFile("userImage")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "userImage file is required"))
		return
	}
	if header.Size > maxImageSize {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "image exceeds 5MB"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unable to read image"))
		return
	}
	defer file.Close()

	user, err := h.service.UploadImage(c.Request.Context(), sessionFromContext(c), header.Filename, file)
	if err != nil {
		if tearDownIfRejected(c, h.sessions, h.logger, err) {
			return
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil, map[string]interface{}{"notice": "Profile image updated"})
}

// Image godoc
// @Summary Profile image of a user
// @Tags Profile
// @Produce octet-stream
// @Param id path int true "User id"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /users/{id}/image [get]
func (h *ProfileHandler) Image(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	img, err := h.service.Image(c.Request.Context(), sessionFromContext(c), id)
	if err != nil {
		if tearDownIfRejected(c, h.sessions, h.logger, err) {
			return
		}
		response.Error(c, err)
		return
	}
	contentType := img.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(img.Data)
	}
	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, contentType, img.Data)
}
